package seeders

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"shift-scheduler/pkg/utils"
)

func seedAdminUser(ctx context.Context, db *pgxpool.Pool, login, password string) error {
	log.Printf("  - Создание администратора '%s'...", login)

	var exists bool
	if err := db.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE lower(login) = lower($1))", login).Scan(&exists); err != nil {
		return err
	}
	if exists {
		log.Println("    - Администратор уже существует. Пропускаем.")
		return nil
	}

	var roleID string
	if err := db.QueryRow(ctx, "SELECT id::text FROM roles WHERE is_system_admin = TRUE ORDER BY name LIMIT 1").Scan(&roleID); err != nil {
		return fmt.Errorf("не найдена роль системного администратора: %w", err)
	}

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return err
	}

	_, err = db.Exec(ctx,
		`INSERT INTO users (id, login, fio, password, role_id, has_all_departments, is_active)
		 VALUES ($1, $2, $3, $4, $5, TRUE, TRUE)`,
		seedID("user", login), login, "Администратор системы", hashedPassword, roleID,
	)
	return err
}

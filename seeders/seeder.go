package seeders

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SeedRolesAndAdmin создает роли по умолчанию и администратора.
func SeedRolesAndAdmin(db *pgxpool.Pool, adminLogin, adminPassword string) {
	ctx := context.Background()
	log.Println("▶️  Запуск настройки ролей и администратора...")

	if err := seedRoles(ctx, db); err != nil {
		log.Fatalf("❌ Ошибка наполнения Ролей (Roles): %v", err)
	}
	if err := seedAdminUser(ctx, db, adminLogin, adminPassword); err != nil {
		log.Fatalf("❌ Ошибка создания администратора: %v", err)
	}
	log.Println("✅ Настройка ролей и администратора завершена!")
}

// SeedCatalog наполняет каталог техники, правила зависимостей и оргструктуру.
func SeedCatalog(db *pgxpool.Pool) {
	ctx := context.Background()
	log.Println("▶️  Запуск наполнения каталога...")

	if err := seedDepartments(ctx, db); err != nil {
		log.Fatalf("❌ Ошибка наполнения Подразделений: %v", err)
	}
	if err := seedEquipment(ctx, db); err != nil {
		log.Fatalf("❌ Ошибка наполнения Техники: %v", err)
	}
	if err := seedDependencies(ctx, db); err != nil {
		log.Fatalf("❌ Ошибка наполнения Зависимостей: %v", err)
	}
	log.Println("✅ Наполнение каталога завершено!")
}

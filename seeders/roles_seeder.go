package seeders

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

func seedRoles(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - Наполнение таблицы 'roles'...")

	query := `
		INSERT INTO roles (id, name, description,
			shift_requests_level, equipment_level, dependencies_level, departments_level,
			warehouses_level, users_level, roles_level, access_grants_level, reports_level,
			can_export_data, can_view_reports, can_manage_all_departments, can_manage_users, is_system_admin)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (name) DO UPDATE SET description = EXCLUDED.description`

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, r := range rolesData {
		l := r.Levels
		if _, err := tx.Exec(ctx, query, seedID("role", r.Name), r.Name, r.Description,
			l[0], l[1], l[2], l[3], l[4], l[5], l[6], l[7], l[8],
			r.CanExportData, r.CanViewReports, r.CanManageAllDepartments, r.CanManageUsers, r.IsSystemAdmin,
		); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

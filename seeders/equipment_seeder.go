package seeders

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

func seedEquipment(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - Наполнение таблицы 'equipment'...")

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, e := range equipmentData {
		if _, err := tx.Exec(ctx,
			`INSERT INTO equipment (id, name, allow_multiple_units, is_active) VALUES ($1, $2, $3, TRUE)
			 ON CONFLICT (name) DO NOTHING`,
			seedID("equipment", e.Name), e.Name, e.AllowMultipleUnits,
		); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func seedDependencies(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - Наполнение таблицы 'equipment_dependencies'...")

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, d := range dependencyData {
		var mainID, dependentID string
		if err := tx.QueryRow(ctx, "SELECT id::text FROM equipment WHERE name = $1", d.Main).Scan(&mainID); err != nil {
			return fmt.Errorf("не найдена техника '%s': %w", d.Main, err)
		}
		if err := tx.QueryRow(ctx, "SELECT id::text FROM equipment WHERE name = $1", d.Dependent).Scan(&dependentID); err != nil {
			return fmt.Errorf("не найдена техника '%s': %w", d.Dependent, err)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO equipment_dependencies (id, main_equipment_id, dependent_equipment_id, required_count, is_mandatory, description)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (main_equipment_id, dependent_equipment_id) DO UPDATE
			SET required_count = EXCLUDED.required_count, is_mandatory = EXCLUDED.is_mandatory, description = EXCLUDED.description`,
			seedID("edge", d.Main+">"+d.Dependent), mainID, dependentID, d.RequiredCount, d.IsMandatory, d.Description,
		); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func seedDepartments(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - Наполнение таблиц 'departments' и 'warehouses'...")

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, d := range departmentsData {
		departmentID := seedID("department", d.Name)
		if _, err := tx.Exec(ctx,
			`INSERT INTO departments (id, name) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`,
			departmentID, d.Name,
		); err != nil {
			return err
		}
		for _, w := range d.Warehouses {
			if _, err := tx.Exec(ctx,
				`INSERT INTO warehouses (id, department_id, name) VALUES ($1, $2, $3) ON CONFLICT (id) DO NOTHING`,
				seedID("warehouse", d.Name+"/"+w), departmentID, w,
			); err != nil {
				return err
			}
		}
	}
	return tx.Commit(ctx)
}

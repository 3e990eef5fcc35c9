package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"shift-scheduler/internal/entities"
)

type WarehouseRepositoryInterface interface {
	FindWarehouse(ctx context.Context, id string) (*entities.Warehouse, error)
	// LoadWarehouseOwningDepartment возвращает ErrNotFound, если склада нет.
	LoadWarehouseOwningDepartment(ctx context.Context, warehouseID string) (string, error)
}

type WarehouseRepository struct {
	storage *pgxpool.Pool
}

func NewWarehouseRepository(storage *pgxpool.Pool) WarehouseRepositoryInterface {
	return &WarehouseRepository{storage: storage}
}

func (r *WarehouseRepository) FindWarehouse(ctx context.Context, id string) (*entities.Warehouse, error) {
	var w entities.Warehouse
	err := conn(ctx, r.storage).QueryRow(ctx,
		`SELECT id::text, department_id::text, name FROM warehouses WHERE id = $1`, id,
	).Scan(&w.ID, &w.DepartmentID, &w.Name)
	if err != nil {
		return nil, mapPgError(err, "FindWarehouse")
	}
	return &w, nil
}

func (r *WarehouseRepository) LoadWarehouseOwningDepartment(ctx context.Context, warehouseID string) (string, error) {
	var departmentID string
	err := conn(ctx, r.storage).QueryRow(ctx,
		`SELECT department_id::text FROM warehouses WHERE id = $1`, warehouseID,
	).Scan(&departmentID)
	if err != nil {
		return "", mapPgError(err, "LoadWarehouseOwningDepartment")
	}
	return departmentID, nil
}

package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"shift-scheduler/internal/entities"
	apperrors "shift-scheduler/pkg/errors"
)

type AccessGrantRepositoryInterface interface {
	LoadDepartmentGrants(ctx context.Context, userID string) ([]entities.DepartmentAccessGrant, error)
	LoadWarehouseGrants(ctx context.Context, departmentAccessGrantID string) ([]entities.WarehouseAccessGrant, error)

	FindDepartmentGrant(ctx context.Context, id string) (*entities.DepartmentAccessGrant, error)
	UpsertDepartmentGrant(ctx context.Context, grant *entities.DepartmentAccessGrant) error
	DeleteDepartmentGrant(ctx context.Context, id string) error

	FindWarehouseGrant(ctx context.Context, id string) (*entities.WarehouseAccessGrant, error)
	CreateWarehouseGrant(ctx context.Context, grant *entities.WarehouseAccessGrant) error
	DeleteWarehouseGrant(ctx context.Context, id string) error
}

type AccessGrantRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewAccessGrantRepository(storage *pgxpool.Pool, logger *zap.Logger) AccessGrantRepositoryInterface {
	return &AccessGrantRepository{storage: storage, logger: logger}
}

func (r *AccessGrantRepository) LoadDepartmentGrants(ctx context.Context, userID string) ([]entities.DepartmentAccessGrant, error) {
	rows, err := conn(ctx, r.storage).Query(ctx, `
		SELECT id::text, user_id::text, department_id::text, has_all_warehouses
		FROM department_access_grants
		WHERE user_id = $1`, userID)
	if err != nil {
		return nil, mapPgError(err, "LoadDepartmentGrants")
	}
	defer rows.Close()

	var grants []entities.DepartmentAccessGrant
	for rows.Next() {
		var g entities.DepartmentAccessGrant
		if err := rows.Scan(&g.ID, &g.UserID, &g.DepartmentID, &g.HasAllWarehouses); err != nil {
			return nil, fmt.Errorf("LoadDepartmentGrants scan: %w", err)
		}
		grants = append(grants, g)
	}
	return grants, rows.Err()
}

func (r *AccessGrantRepository) LoadWarehouseGrants(ctx context.Context, departmentAccessGrantID string) ([]entities.WarehouseAccessGrant, error) {
	rows, err := conn(ctx, r.storage).Query(ctx, `
		SELECT id::text, department_access_grant_id::text, warehouse_id::text
		FROM warehouse_access_grants
		WHERE department_access_grant_id = $1`, departmentAccessGrantID)
	if err != nil {
		return nil, mapPgError(err, "LoadWarehouseGrants")
	}
	defer rows.Close()
	return scanWarehouseGrants(rows)
}

type warehouseGrantRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanWarehouseGrants(rows warehouseGrantRows) ([]entities.WarehouseAccessGrant, error) {
	var grants []entities.WarehouseAccessGrant
	for rows.Next() {
		var g entities.WarehouseAccessGrant
		if err := rows.Scan(&g.ID, &g.DepartmentAccessGrantID, &g.WarehouseID); err != nil {
			return nil, fmt.Errorf("scan warehouse grant: %w", err)
		}
		grants = append(grants, g)
	}
	return grants, rows.Err()
}

func (r *AccessGrantRepository) FindDepartmentGrant(ctx context.Context, id string) (*entities.DepartmentAccessGrant, error) {
	var g entities.DepartmentAccessGrant
	err := conn(ctx, r.storage).QueryRow(ctx, `
		SELECT id::text, user_id::text, department_id::text, has_all_warehouses
		FROM department_access_grants WHERE id = $1`, id,
	).Scan(&g.ID, &g.UserID, &g.DepartmentID, &g.HasAllWarehouses)
	if err != nil {
		return nil, mapPgError(err, "FindDepartmentGrant")
	}
	return &g, nil
}

// UpsertDepartmentGrant - пара (user, department) уникальна, повторная выдача
// обновляет признак "все склады" и возвращает существующий ID.
func (r *AccessGrantRepository) UpsertDepartmentGrant(ctx context.Context, grant *entities.DepartmentAccessGrant) error {
	if grant.ID == "" {
		grant.ID = uuid.NewString()
	}
	err := conn(ctx, r.storage).QueryRow(ctx, `
		INSERT INTO department_access_grants (id, user_id, department_id, has_all_warehouses)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, department_id) DO UPDATE SET has_all_warehouses = EXCLUDED.has_all_warehouses
		RETURNING id::text`,
		grant.ID, grant.UserID, grant.DepartmentID, grant.HasAllWarehouses,
	).Scan(&grant.ID)
	return mapPgError(err, "UpsertDepartmentGrant")
}

// DeleteDepartmentGrant - складские гранты удаляются каскадом (FK ON DELETE CASCADE).
func (r *AccessGrantRepository) DeleteDepartmentGrant(ctx context.Context, id string) error {
	result, err := conn(ctx, r.storage).Exec(ctx, `DELETE FROM department_access_grants WHERE id = $1`, id)
	if err != nil {
		return mapPgError(err, "DeleteDepartmentGrant")
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *AccessGrantRepository) FindWarehouseGrant(ctx context.Context, id string) (*entities.WarehouseAccessGrant, error) {
	var g entities.WarehouseAccessGrant
	err := conn(ctx, r.storage).QueryRow(ctx, `
		SELECT id::text, department_access_grant_id::text, warehouse_id::text
		FROM warehouse_access_grants WHERE id = $1`, id,
	).Scan(&g.ID, &g.DepartmentAccessGrantID, &g.WarehouseID)
	if err != nil {
		return nil, mapPgError(err, "FindWarehouseGrant")
	}
	return &g, nil
}

func (r *AccessGrantRepository) CreateWarehouseGrant(ctx context.Context, grant *entities.WarehouseAccessGrant) error {
	if grant.ID == "" {
		grant.ID = uuid.NewString()
	}
	_, err := conn(ctx, r.storage).Exec(ctx, `
		INSERT INTO warehouse_access_grants (id, department_access_grant_id, warehouse_id)
		VALUES ($1, $2, $3)`,
		grant.ID, grant.DepartmentAccessGrantID, grant.WarehouseID,
	)
	return mapPgError(err, "CreateWarehouseGrant")
}

func (r *AccessGrantRepository) DeleteWarehouseGrant(ctx context.Context, id string) error {
	result, err := conn(ctx, r.storage).Exec(ctx, `DELETE FROM warehouse_access_grants WHERE id = $1`, id)
	if err != nil {
		return mapPgError(err, "DeleteWarehouseGrant")
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

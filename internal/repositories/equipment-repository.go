package repositories

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"shift-scheduler/internal/entities"
	apperrors "shift-scheduler/pkg/errors"
)

const equipmentTable = "equipment"

type EquipmentRepositoryInterface interface {
	ListEquipment(ctx context.Context, onlyActive bool) ([]entities.Equipment, error)
	FindEquipment(ctx context.Context, id string) (*entities.Equipment, error)
	CreateEquipment(ctx context.Context, equipment *entities.Equipment) error
	SetEquipmentActive(ctx context.Context, id string, active bool) error
}

type EquipmentRepository struct {
	storage *pgxpool.Pool
}

func NewEquipmentRepository(storage *pgxpool.Pool) EquipmentRepositoryInterface {
	return &EquipmentRepository{storage: storage}
}

func (r *EquipmentRepository) ListEquipment(ctx context.Context, onlyActive bool) ([]entities.Equipment, error) {
	builder := psql.Select("id::text", "name", "allow_multiple_units", "is_active", "created_at", "updated_at").
		From(equipmentTable).
		OrderBy("name")
	if onlyActive {
		builder = builder.Where(sq.Eq{"is_active": true})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("ListEquipment ToSql: %w", err)
	}

	rows, err := conn(ctx, r.storage).Query(ctx, query, args...)
	if err != nil {
		return nil, mapPgError(err, "ListEquipment")
	}
	defer rows.Close()

	var items []entities.Equipment
	for rows.Next() {
		var e entities.Equipment
		if err := rows.Scan(&e.ID, &e.Name, &e.AllowMultipleUnits, &e.IsActive, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("ListEquipment scan: %w", err)
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

func (r *EquipmentRepository) FindEquipment(ctx context.Context, id string) (*entities.Equipment, error) {
	var e entities.Equipment
	err := conn(ctx, r.storage).QueryRow(ctx,
		`SELECT id::text, name, allow_multiple_units, is_active, created_at, updated_at FROM equipment WHERE id = $1`, id,
	).Scan(&e.ID, &e.Name, &e.AllowMultipleUnits, &e.IsActive, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, mapPgError(err, "FindEquipment")
	}
	return &e, nil
}

func (r *EquipmentRepository) CreateEquipment(ctx context.Context, equipment *entities.Equipment) error {
	if equipment.ID == "" {
		equipment.ID = uuid.NewString()
	}
	err := conn(ctx, r.storage).QueryRow(ctx,
		`INSERT INTO equipment (id, name, allow_multiple_units, is_active) VALUES ($1, $2, $3, $4) RETURNING created_at`,
		equipment.ID, equipment.Name, equipment.AllowMultipleUnits, equipment.IsActive,
	).Scan(&equipment.CreatedAt)
	return mapPgError(err, "CreateEquipment")
}

func (r *EquipmentRepository) SetEquipmentActive(ctx context.Context, id string, active bool) error {
	result, err := conn(ctx, r.storage).Exec(ctx,
		`UPDATE equipment SET is_active = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`, active, id)
	if err != nil {
		return mapPgError(err, "SetEquipmentActive")
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

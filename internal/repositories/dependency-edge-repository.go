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

type DependencyEdgeRepositoryInterface interface {
	// LoadDependencyEdges - все ребра (обязательные и нет) для основной техники.
	LoadDependencyEdges(ctx context.Context, mainEquipmentID string) ([]entities.DependencyEdge, error)
	FindDependencyEdge(ctx context.Context, id string) (*entities.DependencyEdge, error)
	CreateDependencyEdge(ctx context.Context, edge *entities.DependencyEdge) error
	UpdateDependencyEdge(ctx context.Context, edge *entities.DependencyEdge) error
	DeleteDependencyEdge(ctx context.Context, id string) error
}

type DependencyEdgeRepository struct {
	storage *pgxpool.Pool
}

func NewDependencyEdgeRepository(storage *pgxpool.Pool) DependencyEdgeRepositoryInterface {
	return &DependencyEdgeRepository{storage: storage}
}

func edgeSelect() sq.SelectBuilder {
	return psql.Select(
		"d.id::text", "d.main_equipment_id::text", "d.dependent_equipment_id::text",
		"d.required_count", "d.is_mandatory", "d.description",
		"m.name", "dep.name",
	).
		From("equipment_dependencies AS d").
		Join("equipment AS m ON m.id = d.main_equipment_id").
		Join("equipment AS dep ON dep.id = d.dependent_equipment_id")
}

func scanEdge(row rowScanner) (*entities.DependencyEdge, error) {
	var e entities.DependencyEdge
	if err := row.Scan(
		&e.ID, &e.MainEquipmentID, &e.DependentEquipmentID,
		&e.RequiredCount, &e.IsMandatory, &e.Description,
		&e.MainEquipmentName, &e.DependentEquipmentName,
	); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *DependencyEdgeRepository) LoadDependencyEdges(ctx context.Context, mainEquipmentID string) ([]entities.DependencyEdge, error) {
	query, args, err := edgeSelect().
		Where(sq.Eq{"d.main_equipment_id": mainEquipmentID}).
		OrderBy("dep.name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("LoadDependencyEdges ToSql: %w", err)
	}

	rows, err := conn(ctx, r.storage).Query(ctx, query, args...)
	if err != nil {
		return nil, mapPgError(err, "LoadDependencyEdges")
	}
	defer rows.Close()

	var edges []entities.DependencyEdge
	for rows.Next() {
		edge, err := scanEdge(rows)
		if err != nil {
			return nil, fmt.Errorf("LoadDependencyEdges scan: %w", err)
		}
		edges = append(edges, *edge)
	}
	return edges, rows.Err()
}

func (r *DependencyEdgeRepository) FindDependencyEdge(ctx context.Context, id string) (*entities.DependencyEdge, error) {
	query, args, err := edgeSelect().Where(sq.Eq{"d.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("FindDependencyEdge ToSql: %w", err)
	}
	edge, err := scanEdge(conn(ctx, r.storage).QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapPgError(err, "FindDependencyEdge")
	}
	return edge, nil
}

// CreateDependencyEdge - пара (main, dependent) уникальна, повтор дает ErrConflict.
func (r *DependencyEdgeRepository) CreateDependencyEdge(ctx context.Context, edge *entities.DependencyEdge) error {
	if edge.ID == "" {
		edge.ID = uuid.NewString()
	}
	_, err := conn(ctx, r.storage).Exec(ctx, `
		INSERT INTO equipment_dependencies (id, main_equipment_id, dependent_equipment_id, required_count, is_mandatory, description)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		edge.ID, edge.MainEquipmentID, edge.DependentEquipmentID, edge.RequiredCount, edge.IsMandatory, edge.Description,
	)
	return mapPgError(err, "CreateDependencyEdge")
}

func (r *DependencyEdgeRepository) UpdateDependencyEdge(ctx context.Context, edge *entities.DependencyEdge) error {
	result, err := conn(ctx, r.storage).Exec(ctx, `
		UPDATE equipment_dependencies
		SET required_count = $1, is_mandatory = $2, description = $3, updated_at = CURRENT_TIMESTAMP
		WHERE id = $4`,
		edge.RequiredCount, edge.IsMandatory, edge.Description, edge.ID,
	)
	if err != nil {
		return mapPgError(err, "UpdateDependencyEdge")
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *DependencyEdgeRepository) DeleteDependencyEdge(ctx context.Context, id string) error {
	result, err := conn(ctx, r.storage).Exec(ctx, `DELETE FROM equipment_dependencies WHERE id = $1`, id)
	if err != nil {
		return mapPgError(err, "DeleteDependencyEdge")
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

package repositories

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"shift-scheduler/internal/entities"
	apperrors "shift-scheduler/pkg/errors"
)

const shiftRequestTable = "shift_requests"

var shiftRequestSelectColumns = []string{
	"id::text", "request_date", "shift", "equipment_id::text", "warehouse_id::text",
	"department_id::text", "area_id::text",
	"plate_number", "vehicle_brand", "vehicle_model", "driver_name", "lessor_name",
	"requested_count", "worked_hours", "actual_cost", "comment", "program_year", "program_month",
	"generated_from_request_id::text", "created_by_user_id::text", "created_at", "blocked",
}

type ShiftRequestRepositoryInterface interface {
	LoadSiblingRequests(ctx context.Context, date time.Time, shift entities.Shift) ([]entities.ShiftRequest, error)
	LoadRequestByID(ctx context.Context, id string) (*entities.ShiftRequest, error)
	PersistNewRequest(ctx context.Context, request *entities.ShiftRequest) (string, error)
	PersistUpdatedRequest(ctx context.Context, request *entities.ShiftRequest) error
	MarkBlocked(ctx context.Context, id string) error
	// LockSlot сериализует проверку и запись в пределах (дата, смена) до конца транзакции.
	LockSlot(ctx context.Context, date time.Time, shift entities.Shift) error
}

type ShiftRequestRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewShiftRequestRepository(storage *pgxpool.Pool, logger *zap.Logger) ShiftRequestRepositoryInterface {
	return &ShiftRequestRepository{storage: storage, logger: logger}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanShiftRequest(row rowScanner) (*entities.ShiftRequest, error) {
	var r entities.ShiftRequest
	err := row.Scan(
		&r.ID, &r.Date, &r.Shift, &r.EquipmentID, &r.WarehouseID,
		&r.DepartmentID, &r.AreaID,
		&r.PlateNumber, &r.VehicleBrand, &r.VehicleModel, &r.DriverName, &r.LessorName,
		&r.RequestedCount, &r.WorkedHours, &r.ActualCost, &r.Comment, &r.ProgramYear, &r.ProgramMonth,
		&r.GeneratedFromRequestID, &r.CreatedByUserID, &r.CreatedAt, &r.Blocked,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *ShiftRequestRepository) LoadSiblingRequests(ctx context.Context, date time.Time, shift entities.Shift) ([]entities.ShiftRequest, error) {
	query, args, err := psql.Select(shiftRequestSelectColumns...).
		From(shiftRequestTable).
		Where(sq.Eq{"request_date": entities.SlotDate(date), "shift": int(shift)}).
		OrderBy("created_at", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("LoadSiblingRequests ToSql: %w", err)
	}

	rows, err := conn(ctx, r.storage).Query(ctx, query, args...)
	if err != nil {
		return nil, mapPgError(err, "LoadSiblingRequests")
	}
	defer rows.Close()

	var requests []entities.ShiftRequest
	for rows.Next() {
		request, err := scanShiftRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("LoadSiblingRequests scan: %w", err)
		}
		requests = append(requests, *request)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("LoadSiblingRequests rows: %w", err)
	}
	return requests, nil
}

func (r *ShiftRequestRepository) LoadRequestByID(ctx context.Context, id string) (*entities.ShiftRequest, error) {
	query, args, err := psql.Select(shiftRequestSelectColumns...).
		From(shiftRequestTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("LoadRequestByID ToSql: %w", err)
	}

	request, err := scanShiftRequest(conn(ctx, r.storage).QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapPgError(err, "LoadRequestByID")
	}
	return request, nil
}

func (r *ShiftRequestRepository) PersistNewRequest(ctx context.Context, request *entities.ShiftRequest) (string, error) {
	if request.ID == "" {
		request.ID = uuid.NewString()
	}

	query, args, err := psql.Insert(shiftRequestTable).
		Columns(
			"id", "request_date", "shift", "equipment_id", "warehouse_id", "department_id", "area_id",
			"plate_number", "vehicle_brand", "vehicle_model", "driver_name", "lessor_name",
			"requested_count", "worked_hours", "actual_cost", "comment", "program_year", "program_month",
			"generated_from_request_id", "created_by_user_id", "created_at", "blocked",
		).
		Values(
			request.ID, entities.SlotDate(request.Date), int(request.Shift), request.EquipmentID, request.WarehouseID,
			request.DepartmentID, request.AreaID,
			request.PlateNumber, request.VehicleBrand, request.VehicleModel, request.DriverName, request.LessorName,
			request.RequestedCount, request.WorkedHours, request.ActualCost, request.Comment, request.ProgramYear, request.ProgramMonth,
			request.GeneratedFromRequestID, request.CreatedByUserID, request.CreatedAt, request.Blocked,
		).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("PersistNewRequest ToSql: %w", err)
	}

	if _, err := conn(ctx, r.storage).Exec(ctx, query, args...); err != nil {
		return "", mapPgError(err, "PersistNewRequest")
	}
	r.logger.Debug("Заявка на смену записана", zap.String("id", request.ID))
	return request.ID, nil
}

// PersistUpdatedRequest обновляет только изменяемые поля и только у незаблокированной заявки.
func (r *ShiftRequestRepository) PersistUpdatedRequest(ctx context.Context, request *entities.ShiftRequest) error {
	query, args, err := psql.Update(shiftRequestTable).
		SetMap(map[string]interface{}{
			"request_date":    entities.SlotDate(request.Date),
			"shift":           int(request.Shift),
			"equipment_id":    request.EquipmentID,
			"warehouse_id":    request.WarehouseID,
			"department_id":   request.DepartmentID,
			"area_id":         request.AreaID,
			"plate_number":    request.PlateNumber,
			"vehicle_brand":   request.VehicleBrand,
			"vehicle_model":   request.VehicleModel,
			"driver_name":     request.DriverName,
			"lessor_name":     request.LessorName,
			"requested_count": request.RequestedCount,
			"worked_hours":    request.WorkedHours,
			"actual_cost":     request.ActualCost,
			"comment":         request.Comment,
			"program_year":    request.ProgramYear,
			"program_month":   request.ProgramMonth,
			"updated_at":      sq.Expr("CURRENT_TIMESTAMP"),
		}).
		Where(sq.Eq{"id": request.ID, "blocked": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("PersistUpdatedRequest ToSql: %w", err)
	}

	result, err := conn(ctx, r.storage).Exec(ctx, query, args...)
	if err != nil {
		return mapPgError(err, "PersistUpdatedRequest")
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrAlreadyBlocked
	}
	return nil
}

func (r *ShiftRequestRepository) MarkBlocked(ctx context.Context, id string) error {
	result, err := conn(ctx, r.storage).Exec(ctx,
		`UPDATE shift_requests SET blocked = TRUE, updated_at = CURRENT_TIMESTAMP WHERE id = $1 AND blocked = FALSE`, id)
	if err != nil {
		return mapPgError(err, "MarkBlocked")
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrAlreadyBlocked
	}
	return nil
}

func (r *ShiftRequestRepository) LockSlot(ctx context.Context, date time.Time, shift entities.Shift) error {
	key := fmt.Sprintf("shift-slot:%s:%d", entities.SlotDate(date).Format("2006-01-02"), int(shift))
	if _, err := conn(ctx, r.storage).Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
		return mapPgError(err, "LockSlot")
	}
	return nil
}

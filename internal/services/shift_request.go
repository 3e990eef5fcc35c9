package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"shift-scheduler/internal/authz"
	"shift-scheduler/internal/dto"
	"shift-scheduler/internal/entities"
	"shift-scheduler/internal/events"
	"shift-scheduler/internal/repositories"
	apperrors "shift-scheduler/pkg/errors"
	"shift-scheduler/pkg/validation"
)

type ShiftRequestServiceInterface interface {
	CreateRequest(ctx context.Context, principal authz.Principal, payload dto.CreateShiftRequestDTO) (*dto.CreatedShiftRequestDTO, error)
	UpdateRequest(ctx context.Context, principal authz.Principal, id string, payload dto.UpdateShiftRequestDTO) error
	BlockRequest(ctx context.Context, principal authz.Principal, id string) error
	ValidateRequest(ctx context.Context, payload dto.ShiftRequestFieldsDTO, excludeID string) (*dto.ValidationResultDTO, error)
	ListRequests(ctx context.Context, principal authz.Principal, filter dto.ShiftRequestListFilterDTO) ([]entities.ShiftRequest, error)
}

type ShiftRequestService struct {
	txManager     repositories.TxManagerInterface
	requestRepo   repositories.ShiftRequestRepositoryInterface
	equipmentRepo repositories.EquipmentRepositoryInterface
	resolver      DependencyResolverInterface
	scope         AccessScopeServiceInterface
	bus           EventPublisher
	validator     *validation.CustomValidator
	logger        *zap.Logger
	now           func() time.Time
}

func NewShiftRequestService(
	txManager repositories.TxManagerInterface,
	requestRepo repositories.ShiftRequestRepositoryInterface,
	equipmentRepo repositories.EquipmentRepositoryInterface,
	resolver DependencyResolverInterface,
	scope AccessScopeServiceInterface,
	bus EventPublisher,
	validator *validation.CustomValidator,
	logger *zap.Logger,
) ShiftRequestServiceInterface {
	return &ShiftRequestService{
		txManager:     txManager,
		requestRepo:   requestRepo,
		equipmentRepo: equipmentRepo,
		resolver:      resolver,
		scope:         scope,
		bus:           bus,
		validator:     validator,
		logger:        logger,
		now:           time.Now,
	}
}

func violationMessages(violations []dto.DependencyViolationDTO) []string {
	messages := make([]string, 0, len(violations))
	for _, v := range violations {
		messages = append(messages, v.Message())
	}
	return messages
}

// applyFields переносит изменяемые поля. blocked, created_by и created_at не трогаются.
func applyFields(target *entities.ShiftRequest, fields dto.ShiftRequestFieldsDTO) error {
	date, err := time.Parse(dto.DateLayout, fields.Date)
	if err != nil {
		return apperrors.NewValidationError(fmt.Sprintf("date: ожидается дата в формате %s", dto.DateLayout))
	}

	target.Date = entities.SlotDate(date)
	target.Shift = fields.Shift
	target.EquipmentID = fields.EquipmentID
	target.WarehouseID = fields.WarehouseID
	target.DepartmentID = fields.DepartmentID
	target.AreaID = fields.AreaID
	target.PlateNumber = fields.PlateNumber
	target.VehicleBrand = fields.VehicleBrand
	target.VehicleModel = fields.VehicleModel
	target.DriverName = fields.DriverName
	target.LessorName = fields.LessorName
	target.RequestedCount = fields.RequestedCount
	target.WorkedHours = fields.WorkedHours
	target.ActualCost = fields.ActualCost
	target.Comment = fields.Comment
	target.ProgramYear = fields.ProgramYear
	target.ProgramMonth = fields.ProgramMonth
	return nil
}

func isEntityID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// equipmentMessages проверяет технику по каталогу. checkActive=false, когда
// техника в заявке не меняется: старые заявки на выведенную технику можно править.
func (s *ShiftRequestService) equipmentMessages(ctx context.Context, fields dto.ShiftRequestFieldsDTO, checkActive bool) ([]string, error) {
	if !isEntityID(fields.EquipmentID) {
		return nil, nil
	}
	equipment, err := s.equipmentRepo.FindEquipment(ctx, fields.EquipmentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return []string{fmt.Sprintf("equipment_id: техника %s не найдена", fields.EquipmentID)}, nil
		}
		return nil, err
	}

	var messages []string
	if checkActive && !equipment.IsActive {
		messages = append(messages, fmt.Sprintf("equipment_id: техника %q выведена из эксплуатации", equipment.Name))
	}
	if !equipment.AllowMultipleUnits && fields.RequestedCount > 1 {
		messages = append(messages, fmt.Sprintf("requested_count: для техники %q допускается только одна единица в заявке", equipment.Name))
	}
	return messages, nil
}

func (s *ShiftRequestService) ensureWarehouseAccess(ctx context.Context, principal authz.Principal, warehouseID string) error {
	allowed, err := s.scope.CanAccessWarehouse(ctx, principal, warehouseID)
	if err != nil {
		return err
	}
	if !allowed {
		return apperrors.ErrForbidden
	}
	return nil
}

// unprovisionable - нарушения, которые сопутствующая заявка не закроет: на складе
// уже есть заявка на зависимую технику или ее количества не хватит.
func unprovisionable(candidate entities.ShiftRequest, siblings []entities.ShiftRequest, violations []dto.DependencyViolationDTO) []dto.DependencyViolationDTO {
	present := make(map[string]bool)
	for _, sibling := range siblings {
		if sibling.WarehouseID == candidate.WarehouseID && sibling.SameSlot(candidate) {
			present[sibling.EquipmentID] = true
		}
	}

	var blocking []dto.DependencyViolationDTO
	for _, v := range violations {
		if present[v.DependentEquipmentID] || v.RequiredCount < v.Shortfall {
			blocking = append(blocking, v)
		}
	}
	return blocking
}

func isQuietError(err error) bool {
	if _, ok := apperrors.AsValidationError(err); ok {
		return true
	}
	return errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, apperrors.ErrForbidden)
}

func (s *ShiftRequestService) CreateRequest(ctx context.Context, principal authz.Principal, payload dto.CreateShiftRequestDTO) (*dto.CreatedShiftRequestDTO, error) {
	if !principal.CanWrite(authz.TableShiftRequests) {
		return nil, apperrors.ErrForbidden
	}
	userID := principal.User.ID

	messages := s.validator.Messages(payload)
	if !isEntityID(userID) {
		messages = append(messages, fmt.Sprintf("created_by_user_id: неверный формат идентификатора %q", userID))
	}
	equipmentMessages, err := s.equipmentMessages(ctx, payload.ShiftRequestFieldsDTO, true)
	if err != nil {
		return nil, err
	}
	messages = append(messages, equipmentMessages...)
	if len(messages) > 0 {
		return nil, apperrors.NewValidationError(messages...)
	}

	var request entities.ShiftRequest
	if err := applyFields(&request, payload.ShiftRequestFieldsDTO); err != nil {
		return nil, err
	}
	if err := s.ensureWarehouseAccess(ctx, principal, request.WarehouseID); err != nil {
		return nil, err
	}

	var companions []entities.ShiftRequest
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.requestRepo.LockSlot(ctx, request.Date, request.Shift); err != nil {
			return err
		}
		siblings, err := s.requestRepo.LoadSiblingRequests(ctx, request.Date, request.Shift)
		if err != nil {
			return err
		}
		violations, err := s.resolver.Validate(ctx, request, siblings)
		if err != nil {
			return err
		}
		if len(violations) > 0 {
			if !payload.AutoProvision {
				return apperrors.NewValidationError(violationMessages(violations)...)
			}
			if blocking := unprovisionable(request, siblings, violations); len(blocking) > 0 {
				return apperrors.NewValidationError(violationMessages(blocking)...)
			}
			s.logger.Info("Зависимости будут созданы автоматически",
				zap.String("equipmentId", request.EquipmentID), zap.Int("violations", len(violations)))
		}

		// Отмена возможна только до записи.
		if err := ctx.Err(); err != nil {
			return err
		}

		request.CreatedAt = s.now()
		request.CreatedByUserID = userID
		request.Blocked = false
		if _, err := s.requestRepo.PersistNewRequest(ctx, &request); err != nil {
			return err
		}
		if len(violations) == 0 {
			return nil
		}
		companions, err = s.resolver.ProvisionCompanions(ctx, request, violations, userID)
		return err
	})
	if err != nil {
		if !isQuietError(err) {
			s.logger.Error("Ошибка при создании заявки на смену", zap.String("userId", userID), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("Заявка на смену создана",
		zap.String("id", request.ID),
		zap.String("equipmentId", request.EquipmentID),
		zap.String("userId", userID),
	)

	s.bus.Publish(ctx, events.NewShiftRequestChangedEvent(request, events.ShiftRequestCreated, userID))

	result := &dto.CreatedShiftRequestDTO{ID: request.ID}
	if payload.AutoProvision {
		// Нарушения уже закрыты в транзакции, здесь добираются склады без своей заявки.
		companions = append(companions, s.resolver.ProcessDependencies(context.WithoutCancel(ctx), request, userID)...)
		for _, companion := range companions {
			result.AutoProvisionedIDs = append(result.AutoProvisionedIDs, companion.ID)
			s.bus.Publish(ctx, events.NewShiftRequestChangedEvent(companion, events.ShiftRequestAutoProvisioned, userID))
		}
	}
	return result, nil
}

func (s *ShiftRequestService) UpdateRequest(ctx context.Context, principal authz.Principal, id string, payload dto.UpdateShiftRequestDTO) error {
	if !principal.CanWrite(authz.TableShiftRequests) {
		return apperrors.ErrForbidden
	}
	if !isEntityID(id) {
		return apperrors.ErrNotFound
	}

	var updated entities.ShiftRequest
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		prior, err := s.requestRepo.LoadRequestByID(ctx, id)
		if err != nil {
			return err
		}
		if err := s.ensureWarehouseAccess(ctx, principal, prior.WarehouseID); err != nil {
			return err
		}
		if prior.Blocked {
			return apperrors.ErrAlreadyBlocked
		}

		messages := s.validator.Messages(payload)
		equipmentMessages, err := s.equipmentMessages(ctx, payload.ShiftRequestFieldsDTO, payload.EquipmentID != prior.EquipmentID)
		if err != nil {
			return err
		}
		messages = append(messages, equipmentMessages...)
		if len(messages) > 0 {
			return apperrors.NewValidationError(messages...)
		}

		candidate := *prior
		if err := applyFields(&candidate, payload.ShiftRequestFieldsDTO); err != nil {
			return err
		}
		if candidate.WarehouseID != prior.WarehouseID {
			if err := s.ensureWarehouseAccess(ctx, principal, candidate.WarehouseID); err != nil {
				return err
			}
		}

		if err := s.requestRepo.LockSlot(ctx, candidate.Date, candidate.Shift); err != nil {
			return err
		}
		siblings, err := s.requestRepo.LoadSiblingRequests(ctx, candidate.Date, candidate.Shift)
		if err != nil {
			return err
		}
		violations, err := s.resolver.Validate(ctx, candidate, siblings)
		if err != nil {
			return err
		}
		if len(violations) > 0 {
			return apperrors.NewValidationError(violationMessages(violations)...)
		}

		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.requestRepo.PersistUpdatedRequest(ctx, &candidate); err != nil {
			return err
		}
		updated = candidate
		return nil
	})
	if err != nil {
		if !isQuietError(err) {
			s.logger.Error("Ошибка при обновлении заявки на смену", zap.String("id", id), zap.Error(err))
		}
		return err
	}

	s.logger.Info("Заявка на смену обновлена", zap.String("id", id), zap.String("userId", principal.User.ID))
	s.bus.Publish(ctx, events.NewShiftRequestChangedEvent(updated, events.ShiftRequestUpdated, principal.User.ID))
	return nil
}

// BlockRequest - необратимый переход. Повторная блокировка - ошибка, а не no-op.
func (s *ShiftRequestService) BlockRequest(ctx context.Context, principal authz.Principal, id string) error {
	if !principal.CanWrite(authz.TableShiftRequests) {
		return apperrors.ErrForbidden
	}
	if !isEntityID(id) {
		return apperrors.ErrNotFound
	}

	prior, err := s.requestRepo.LoadRequestByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.ensureWarehouseAccess(ctx, principal, prior.WarehouseID); err != nil {
		return err
	}
	if prior.Blocked {
		return apperrors.ErrAlreadyBlocked
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.requestRepo.MarkBlocked(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Заявка на смену заблокирована", zap.String("id", id), zap.String("userId", principal.User.ID))
	prior.Blocked = true
	s.bus.Publish(ctx, events.NewShiftRequestChangedEvent(*prior, events.ShiftRequestBlocked, principal.User.ID))
	return nil
}

// ValidateRequest - проверка без записи. excludeID - редактируемая заявка.
func (s *ShiftRequestService) ValidateRequest(ctx context.Context, payload dto.ShiftRequestFieldsDTO, excludeID string) (*dto.ValidationResultDTO, error) {
	result := &dto.ValidationResultDTO{Messages: s.validator.Messages(payload)}
	checkActive := true
	if isEntityID(excludeID) {
		if prior, err := s.requestRepo.LoadRequestByID(ctx, excludeID); err == nil && prior.EquipmentID == payload.EquipmentID {
			checkActive = false
		}
	}
	equipmentMessages, err := s.equipmentMessages(ctx, payload, checkActive)
	if err != nil {
		return nil, err
	}
	result.Messages = append(result.Messages, equipmentMessages...)
	if len(result.Messages) > 0 {
		return result, nil
	}

	candidate := entities.ShiftRequest{ID: excludeID}
	if err := applyFields(&candidate, payload); err != nil {
		vErr, _ := apperrors.AsValidationError(err)
		result.Messages = vErr.Messages
		return result, nil
	}

	siblings, err := s.requestRepo.LoadSiblingRequests(ctx, candidate.Date, candidate.Shift)
	if err != nil {
		return nil, err
	}
	violations, err := s.resolver.Validate(ctx, candidate, siblings)
	if err != nil {
		return nil, err
	}

	result.Violations = violations
	result.Messages = violationMessages(violations)
	result.Valid = len(violations) == 0
	return result, nil
}

// ListRequests возвращает заявки слота, видимые пользователю.
func (s *ShiftRequestService) ListRequests(ctx context.Context, principal authz.Principal, filter dto.ShiftRequestListFilterDTO) ([]entities.ShiftRequest, error) {
	if !principal.CanRead(authz.TableShiftRequests) {
		return nil, apperrors.ErrForbidden
	}
	if messages := s.validator.Messages(filter); len(messages) > 0 {
		return nil, apperrors.NewValidationError(messages...)
	}
	date, _ := time.Parse(dto.DateLayout, filter.Date)

	requests, err := s.requestRepo.LoadSiblingRequests(ctx, date, filter.Shift)
	if err != nil {
		return nil, err
	}

	visible := make([]entities.ShiftRequest, 0, len(requests))
	allowed := make(map[string]bool)
	for _, request := range requests {
		ok, seen := allowed[request.WarehouseID]
		if !seen {
			ok, err = s.scope.CanAccessWarehouse(ctx, principal, request.WarehouseID)
			if err != nil {
				return nil, err
			}
			allowed[request.WarehouseID] = ok
		}
		if ok {
			visible = append(visible, request)
		}
	}
	return visible, nil
}

package services

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"shift-scheduler/internal/authz"
	"shift-scheduler/internal/dto"
	"shift-scheduler/internal/entities"
	"shift-scheduler/internal/events"
	"shift-scheduler/internal/repositories"
	apperrors "shift-scheduler/pkg/errors"
	"shift-scheduler/pkg/eventbus"
	"shift-scheduler/pkg/validation"
)

// EventPublisher - часть шины событий, нужная сервисам.
type EventPublisher interface {
	Publish(ctx context.Context, event eventbus.Event)
}

type AccessGrantServiceInterface interface {
	GrantDepartment(ctx context.Context, principal authz.Principal, payload dto.GrantDepartmentDTO) (*entities.DepartmentAccessGrant, error)
	RevokeDepartment(ctx context.Context, principal authz.Principal, grantID string) error
	GrantWarehouse(ctx context.Context, principal authz.Principal, payload dto.GrantWarehouseDTO) (*entities.WarehouseAccessGrant, error)
	RevokeWarehouse(ctx context.Context, principal authz.Principal, grantID string) error
	SetAllDepartments(ctx context.Context, principal authz.Principal, userID string, payload dto.SetAllDepartmentsDTO) error
}

type AccessGrantService struct {
	txManager     repositories.TxManagerInterface
	grantRepo     repositories.AccessGrantRepositoryInterface
	warehouseRepo repositories.WarehouseRepositoryInterface
	userRepo      repositories.UserRepositoryInterface
	validator     *validation.CustomValidator
	bus           EventPublisher
	logger        *zap.Logger
}

func NewAccessGrantService(
	txManager repositories.TxManagerInterface,
	grantRepo repositories.AccessGrantRepositoryInterface,
	warehouseRepo repositories.WarehouseRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	validator *validation.CustomValidator,
	bus EventPublisher,
	logger *zap.Logger,
) AccessGrantServiceInterface {
	return &AccessGrantService{
		txManager:     txManager,
		grantRepo:     grantRepo,
		warehouseRepo: warehouseRepo,
		userRepo:      userRepo,
		validator:     validator,
		bus:           bus,
		logger:        logger,
	}
}

func (s *AccessGrantService) notify(ctx context.Context, userID, reason string) {
	s.bus.Publish(ctx, events.AccessGrantsChangedEvent{UserID: userID, Reason: reason})
}

func (s *AccessGrantService) GrantDepartment(ctx context.Context, principal authz.Principal, payload dto.GrantDepartmentDTO) (*entities.DepartmentAccessGrant, error) {
	if !principal.CanWrite(authz.TableAccessGrants) {
		return nil, apperrors.ErrForbidden
	}
	if messages := s.validator.Messages(payload); len(messages) > 0 {
		return nil, apperrors.NewValidationError(messages...)
	}

	grant := &entities.DepartmentAccessGrant{
		UserID:           payload.UserID,
		DepartmentID:     payload.DepartmentID,
		HasAllWarehouses: payload.HasAllWarehouses,
	}
	if err := s.grantRepo.UpsertDepartmentGrant(ctx, grant); err != nil {
		return nil, err
	}

	s.logger.Info("Выдан доступ к подразделению",
		zap.String("grantId", grant.ID),
		zap.String("userId", grant.UserID),
		zap.String("departmentId", grant.DepartmentID),
		zap.Bool("hasAllWarehouses", grant.HasAllWarehouses),
		zap.String("grantedBy", principal.User.ID),
	)
	s.notify(ctx, grant.UserID, "department_granted")
	return grant, nil
}

func (s *AccessGrantService) RevokeDepartment(ctx context.Context, principal authz.Principal, grantID string) error {
	if !principal.CanWrite(authz.TableAccessGrants) {
		return apperrors.ErrForbidden
	}
	if !isEntityID(grantID) {
		return apperrors.ErrNotFound
	}

	var userID string
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		grant, err := s.grantRepo.FindDepartmentGrant(ctx, grantID)
		if err != nil {
			return err
		}
		userID = grant.UserID
		return s.grantRepo.DeleteDepartmentGrant(ctx, grantID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Отозван доступ к подразделению", zap.String("grantId", grantID), zap.String("userId", userID))
	s.notify(ctx, userID, "department_revoked")
	return nil
}

// GrantWarehouse - склад должен принадлежать подразделению родительского гранта.
func (s *AccessGrantService) GrantWarehouse(ctx context.Context, principal authz.Principal, payload dto.GrantWarehouseDTO) (*entities.WarehouseAccessGrant, error) {
	if !principal.CanWrite(authz.TableAccessGrants) {
		return nil, apperrors.ErrForbidden
	}
	if messages := s.validator.Messages(payload); len(messages) > 0 {
		return nil, apperrors.NewValidationError(messages...)
	}

	grant := &entities.WarehouseAccessGrant{
		DepartmentAccessGrantID: payload.DepartmentAccessGrantID,
		WarehouseID:             payload.WarehouseID,
	}
	var userID string
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		parent, err := s.grantRepo.FindDepartmentGrant(ctx, payload.DepartmentAccessGrantID)
		if err != nil {
			return err
		}
		owner, err := s.warehouseRepo.LoadWarehouseOwningDepartment(ctx, payload.WarehouseID)
		if err != nil {
			return err
		}
		if owner != parent.DepartmentID {
			return apperrors.NewValidationError("warehouse_id: склад не относится к подразделению гранта")
		}
		if parent.HasAllWarehouses {
			s.logger.Warn("Складской грант не учитывается: у родительского гранта доступ ко всем складам",
				zap.String("grantId", parent.ID))
		}
		userID = parent.UserID
		return s.grantRepo.CreateWarehouseGrant(ctx, grant)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Выдан доступ к складу",
		zap.String("grantId", grant.ID),
		zap.String("warehouseId", grant.WarehouseID),
		zap.String("userId", userID),
	)
	s.notify(ctx, userID, "warehouse_granted")
	return grant, nil
}

func (s *AccessGrantService) RevokeWarehouse(ctx context.Context, principal authz.Principal, grantID string) error {
	if !principal.CanWrite(authz.TableAccessGrants) {
		return apperrors.ErrForbidden
	}
	if !isEntityID(grantID) {
		return apperrors.ErrNotFound
	}

	var userID string
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		grant, err := s.grantRepo.FindWarehouseGrant(ctx, grantID)
		if err != nil {
			return err
		}
		parent, err := s.grantRepo.FindDepartmentGrant(ctx, grant.DepartmentAccessGrantID)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		if parent != nil {
			userID = parent.UserID
		}
		return s.grantRepo.DeleteWarehouseGrant(ctx, grantID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Отозван доступ к складу", zap.String("grantId", grantID), zap.String("userId", userID))
	if userID != "" {
		s.notify(ctx, userID, "warehouse_revoked")
	}
	return nil
}

// SetAllDepartments меняет глобальный уровень. Требует отдельной возможности роли.
func (s *AccessGrantService) SetAllDepartments(ctx context.Context, principal authz.Principal, userID string, payload dto.SetAllDepartmentsDTO) error {
	if !principal.CanWrite(authz.TableAccessGrants) || !principal.HasCapability(authz.CapabilityManageAllDepartments) {
		return apperrors.ErrForbidden
	}
	if !isEntityID(userID) {
		return apperrors.ErrNotFound
	}
	if err := s.userRepo.SetHasAllDepartments(ctx, userID, payload.HasAllDepartments); err != nil {
		return err
	}

	s.logger.Info("Изменен глобальный доступ",
		zap.String("userId", userID),
		zap.Bool("hasAllDepartments", payload.HasAllDepartments),
		zap.String("changedBy", principal.User.ID),
	)
	s.notify(ctx, userID, "global_flag_changed")
	return nil
}

package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"shift-scheduler/internal/dto"
	"shift-scheduler/internal/entities"
	"shift-scheduler/internal/repositories"
	apperrors "shift-scheduler/pkg/errors"
	"shift-scheduler/pkg/validation"
)

type EquipmentServiceInterface interface {
	ListEquipment(ctx context.Context, onlyActive bool) ([]entities.Equipment, error)
	FindEquipment(ctx context.Context, id string) (*entities.Equipment, error)
	CreateEquipment(ctx context.Context, payload dto.CreateEquipmentDTO) (*entities.Equipment, error)
	SetEquipmentActive(ctx context.Context, id string, payload dto.SetEquipmentActiveDTO) error

	ListDependencyEdges(ctx context.Context, mainEquipmentID string) ([]entities.DependencyEdge, error)
	CreateDependencyEdge(ctx context.Context, payload dto.CreateDependencyEdgeDTO) (*entities.DependencyEdge, error)
	UpdateDependencyEdge(ctx context.Context, id string, payload dto.UpdateDependencyEdgeDTO) (*entities.DependencyEdge, error)
	DeleteDependencyEdge(ctx context.Context, id string) error
}

// EquipmentService - каталог техники и правила зависимостей между ней.
type EquipmentService struct {
	txManager     repositories.TxManagerInterface
	equipmentRepo repositories.EquipmentRepositoryInterface
	edgeRepo      repositories.DependencyEdgeRepositoryInterface
	validator     *validation.CustomValidator
	logger        *zap.Logger
}

func NewEquipmentService(
	txManager repositories.TxManagerInterface,
	equipmentRepo repositories.EquipmentRepositoryInterface,
	edgeRepo repositories.DependencyEdgeRepositoryInterface,
	validator *validation.CustomValidator,
	logger *zap.Logger,
) EquipmentServiceInterface {
	return &EquipmentService{
		txManager:     txManager,
		equipmentRepo: equipmentRepo,
		edgeRepo:      edgeRepo,
		validator:     validator,
		logger:        logger,
	}
}

func (s *EquipmentService) ListEquipment(ctx context.Context, onlyActive bool) ([]entities.Equipment, error) {
	return s.equipmentRepo.ListEquipment(ctx, onlyActive)
}

func (s *EquipmentService) FindEquipment(ctx context.Context, id string) (*entities.Equipment, error) {
	if !isEntityID(id) {
		return nil, apperrors.ErrNotFound
	}
	return s.equipmentRepo.FindEquipment(ctx, id)
}

func (s *EquipmentService) CreateEquipment(ctx context.Context, payload dto.CreateEquipmentDTO) (*entities.Equipment, error) {
	payload.Name = strings.TrimSpace(payload.Name)
	if messages := s.validator.Messages(payload); len(messages) > 0 {
		return nil, apperrors.NewValidationError(messages...)
	}

	equipment := &entities.Equipment{
		Name:               payload.Name,
		AllowMultipleUnits: payload.AllowMultipleUnits,
		IsActive:           true,
	}
	if err := s.equipmentRepo.CreateEquipment(ctx, equipment); err != nil {
		s.logger.Error("Ошибка при создании техники", zap.String("name", payload.Name), zap.Error(err))
		return nil, err
	}
	s.logger.Info("Техника добавлена в каталог", zap.String("id", equipment.ID), zap.String("name", equipment.Name))
	return equipment, nil
}

// SetEquipmentActive - техника не удаляется, только деактивируется.
func (s *EquipmentService) SetEquipmentActive(ctx context.Context, id string, payload dto.SetEquipmentActiveDTO) error {
	if !isEntityID(id) {
		return apperrors.ErrNotFound
	}
	if err := s.equipmentRepo.SetEquipmentActive(ctx, id, payload.IsActive); err != nil {
		return err
	}
	s.logger.Info("Изменена активность техники", zap.String("id", id), zap.Bool("isActive", payload.IsActive))
	return nil
}

func (s *EquipmentService) ListDependencyEdges(ctx context.Context, mainEquipmentID string) ([]entities.DependencyEdge, error) {
	if !isEntityID(mainEquipmentID) {
		return nil, apperrors.ErrNotFound
	}
	if _, err := s.equipmentRepo.FindEquipment(ctx, mainEquipmentID); err != nil {
		return nil, err
	}
	edges, err := s.edgeRepo.LoadDependencyEdges(ctx, mainEquipmentID)
	if err != nil {
		return nil, err
	}
	if edges == nil {
		edges = []entities.DependencyEdge{}
	}
	return edges, nil
}

func (s *EquipmentService) CreateDependencyEdge(ctx context.Context, payload dto.CreateDependencyEdgeDTO) (*entities.DependencyEdge, error) {
	if messages := s.validator.Messages(payload); len(messages) > 0 {
		return nil, apperrors.NewValidationError(messages...)
	}

	edge := &entities.DependencyEdge{
		MainEquipmentID:      payload.MainEquipmentID,
		DependentEquipmentID: payload.DependentEquipmentID,
		RequiredCount:        payload.RequiredCount,
		IsMandatory:          payload.IsMandatory,
		Description:          payload.Description,
	}
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		main, err := s.equipmentRepo.FindEquipment(ctx, edge.MainEquipmentID)
		if err != nil {
			return err
		}
		dependent, err := s.equipmentRepo.FindEquipment(ctx, edge.DependentEquipmentID)
		if err != nil {
			return err
		}
		edge.MainEquipmentName = main.Name
		edge.DependentEquipmentName = dependent.Name
		return s.edgeRepo.CreateDependencyEdge(ctx, edge)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Добавлено правило зависимости",
		zap.String("id", edge.ID),
		zap.String("main", edge.MainLabel()),
		zap.String("dependent", edge.DependentLabel()),
		zap.Int("requiredCount", edge.RequiredCount),
	)
	return edge, nil
}

func (s *EquipmentService) UpdateDependencyEdge(ctx context.Context, id string, payload dto.UpdateDependencyEdgeDTO) (*entities.DependencyEdge, error) {
	if !isEntityID(id) {
		return nil, apperrors.ErrNotFound
	}
	if messages := s.validator.Messages(payload); len(messages) > 0 {
		return nil, apperrors.NewValidationError(messages...)
	}

	var edge *entities.DependencyEdge
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.edgeRepo.FindDependencyEdge(ctx, id)
		if err != nil {
			return err
		}
		existing.RequiredCount = payload.RequiredCount
		existing.IsMandatory = payload.IsMandatory
		existing.Description = payload.Description
		if err := s.edgeRepo.UpdateDependencyEdge(ctx, existing); err != nil {
			return err
		}
		edge = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return edge, nil
}

func (s *EquipmentService) DeleteDependencyEdge(ctx context.Context, id string) error {
	if !isEntityID(id) {
		return apperrors.ErrNotFound
	}
	if err := s.edgeRepo.DeleteDependencyEdge(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Удалено правило зависимости", zap.String("id", id))
	return nil
}

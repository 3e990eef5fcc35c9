package services

import (
	"context"
	"fmt"
	"time"

	"github.com/aarondl/null/v8"
	"go.uber.org/zap"

	"shift-scheduler/internal/dto"
	"shift-scheduler/internal/entities"
	"shift-scheduler/internal/repositories"
)

type DependencyResolverInterface interface {
	// Validate возвращает все невыполненные обязательные зависимости заявки.
	// siblings - заявки того же слота; прежняя версия самой заявки игнорируется.
	Validate(ctx context.Context, candidate entities.ShiftRequest, siblings []entities.ShiftRequest) ([]dto.DependencyViolationDTO, error)
	// ProcessDependencies создает недостающие сопутствующие заявки. Ошибки
	// только логируются: автосоздание - удобство, а не гарантия.
	ProcessDependencies(ctx context.Context, main entities.ShiftRequest, actingUserID string) []entities.ShiftRequest
	// ProvisionCompanions закрывает нарушения сопутствующими заявками в текущей
	// транзакции вызывающего. Слот должен быть уже заблокирован. Любая ошибка
	// возвращается: основная заявка без них недействительна.
	ProvisionCompanions(ctx context.Context, main entities.ShiftRequest, violations []dto.DependencyViolationDTO, actingUserID string) ([]entities.ShiftRequest, error)
}

type DependencyResolver struct {
	txManager   repositories.TxManagerInterface
	edgeRepo    repositories.DependencyEdgeRepositoryInterface
	requestRepo repositories.ShiftRequestRepositoryInterface
	logger      *zap.Logger
	now         func() time.Time
}

func NewDependencyResolver(
	txManager repositories.TxManagerInterface,
	edgeRepo repositories.DependencyEdgeRepositoryInterface,
	requestRepo repositories.ShiftRequestRepositoryInterface,
	logger *zap.Logger,
) *DependencyResolver {
	return &DependencyResolver{
		txManager:   txManager,
		edgeRepo:    edgeRepo,
		requestRepo: requestRepo,
		logger:      logger,
		now:         time.Now,
	}
}

func (r *DependencyResolver) mandatoryEdges(ctx context.Context, equipmentID string) ([]entities.DependencyEdge, error) {
	edges, err := r.edgeRepo.LoadDependencyEdges(ctx, equipmentID)
	if err != nil {
		return nil, fmt.Errorf("не удалось загрузить зависимости техники %s: %w", equipmentID, err)
	}
	var mandatory []entities.DependencyEdge
	for _, edge := range edges {
		if edge.IsMandatory && edge.DependentEquipmentID != edge.MainEquipmentID {
			mandatory = append(mandatory, edge)
		}
	}
	return mandatory, nil
}

func (r *DependencyResolver) Validate(ctx context.Context, candidate entities.ShiftRequest, siblings []entities.ShiftRequest) ([]dto.DependencyViolationDTO, error) {
	edges, err := r.mandatoryEdges(ctx, candidate.EquipmentID)
	if err != nil {
		return nil, err
	}
	if len(edges) == 0 {
		return nil, nil
	}

	totals := make(map[string]int, len(siblings)+1)
	for _, sibling := range siblings {
		if candidate.ID != "" && sibling.ID == candidate.ID {
			continue
		}
		if !sibling.SameSlot(candidate) {
			continue
		}
		totals[sibling.EquipmentID] += sibling.RequestedCount
	}
	totals[candidate.EquipmentID] += candidate.RequestedCount

	var violations []dto.DependencyViolationDTO
	for _, edge := range edges {
		satisfied := totals[edge.DependentEquipmentID]
		if satisfied >= edge.RequiredCount {
			continue
		}
		violations = append(violations, dto.DependencyViolationDTO{
			MainEquipmentID:        edge.MainEquipmentID,
			MainEquipmentName:      edge.MainEquipmentName,
			DependentEquipmentID:   edge.DependentEquipmentID,
			DependentEquipmentName: edge.DependentEquipmentName,
			RequiredCount:          edge.RequiredCount,
			Satisfied:              satisfied,
			Shortfall:              edge.RequiredCount - satisfied,
		})
	}

	if len(violations) > 0 {
		r.logger.Debug("Зависимости заявки не выполнены",
			zap.String("equipmentId", candidate.EquipmentID),
			zap.Time("date", candidate.Date),
			zap.Stringer("shift", candidate.Shift),
			zap.Int("violations", len(violations)),
		)
	}
	return violations, nil
}

func (r *DependencyResolver) ProcessDependencies(ctx context.Context, main entities.ShiftRequest, actingUserID string) []entities.ShiftRequest {
	edges, err := r.mandatoryEdges(ctx, main.EquipmentID)
	if err != nil {
		r.logger.Error("Автосоздание зависимостей: не удалось загрузить ребра",
			zap.String("requestId", main.ID), zap.Error(err))
		return nil
	}

	var created []entities.ShiftRequest
	for _, edge := range edges {
		companion, err := r.provisionCompanion(ctx, main, edge, actingUserID)
		if err != nil {
			r.logger.Error("Автосоздание зависимостей: не удалось создать сопутствующую заявку",
				zap.String("requestId", main.ID),
				zap.String("dependentEquipmentId", edge.DependentEquipmentID),
				zap.Error(err),
			)
			continue
		}
		if companion != nil {
			created = append(created, *companion)
		}
	}
	return created
}

// provisionCompanion создает заявку на зависимую технику, если в том же
// слоте и на том же складе ее еще нет. nil без ошибки - заявка уже есть.
func (r *DependencyResolver) provisionCompanion(ctx context.Context, main entities.ShiftRequest, edge entities.DependencyEdge, actingUserID string) (*entities.ShiftRequest, error) {
	var companion *entities.ShiftRequest

	err := r.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := r.requestRepo.LockSlot(ctx, main.Date, main.Shift); err != nil {
			return err
		}
		siblings, err := r.requestRepo.LoadSiblingRequests(ctx, main.Date, main.Shift)
		if err != nil {
			return err
		}
		for _, sibling := range siblings {
			if sibling.WarehouseID == main.WarehouseID && sibling.EquipmentID == edge.DependentEquipmentID {
				return nil
			}
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		request := r.companionFor(main, edge.MainLabel(), edge.DependentEquipmentID, edge.RequiredCount, actingUserID)
		if _, err := r.requestRepo.PersistNewRequest(ctx, &request); err != nil {
			return err
		}
		companion = &request
		return nil
	})
	if err != nil {
		return nil, err
	}

	if companion != nil {
		r.logger.Info("Создана сопутствующая заявка",
			zap.String("requestId", companion.ID),
			zap.String("generatedFrom", main.ID),
			zap.String("equipmentId", companion.EquipmentID),
			zap.Int("count", companion.RequestedCount),
		)
	}
	return companion, nil
}

func (r *DependencyResolver) companionFor(main entities.ShiftRequest, mainLabel, dependentID string, count int, actingUserID string) entities.ShiftRequest {
	return entities.ShiftRequest{
		Date:                   entities.SlotDate(main.Date),
		Shift:                  main.Shift,
		EquipmentID:            dependentID,
		WarehouseID:            main.WarehouseID,
		DepartmentID:           main.DepartmentID,
		AreaID:                 main.AreaID,
		RequestedCount:         count,
		ProgramYear:            main.ProgramYear,
		ProgramMonth:           main.ProgramMonth,
		Comment:                fmt.Sprintf("Создано автоматически: зависимость для %s (заявка %s)", mainLabel, main.ID),
		GeneratedFromRequestID: null.StringFrom(main.ID),
		CreatedByUserID:        actingUserID,
		CreatedAt:              r.now(),
	}
}

func (r *DependencyResolver) ProvisionCompanions(ctx context.Context, main entities.ShiftRequest, violations []dto.DependencyViolationDTO, actingUserID string) ([]entities.ShiftRequest, error) {
	created := make([]entities.ShiftRequest, 0, len(violations))
	for _, v := range violations {
		mainLabel := v.MainEquipmentName
		if mainLabel == "" {
			mainLabel = v.MainEquipmentID
		}
		request := r.companionFor(main, mainLabel, v.DependentEquipmentID, v.RequiredCount, actingUserID)
		if _, err := r.requestRepo.PersistNewRequest(ctx, &request); err != nil {
			return nil, fmt.Errorf("не удалось создать сопутствующую заявку на технику %s: %w", v.DependentEquipmentID, err)
		}
		r.logger.Info("Создана сопутствующая заявка",
			zap.String("requestId", request.ID),
			zap.String("generatedFrom", main.ID),
			zap.String("equipmentId", request.EquipmentID),
			zap.Int("count", request.RequestedCount),
		)
		created = append(created, request)
	}
	return created, nil
}

package listeners

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"shift-scheduler/internal/authz"
	"shift-scheduler/internal/dto"
	"shift-scheduler/internal/events"
	"shift-scheduler/internal/services"
	apperrors "shift-scheduler/pkg/errors"
	"shift-scheduler/pkg/eventbus"
)

// FeedMessageType - тип сообщения в конверте WebSocket.
const FeedMessageType = "shift_request"

type FeedHub interface {
	ConnectedUsers() []string
	SendToUser(userID, messageType string, payload interface{}) error
}

type PrincipalLoader interface {
	LoadPrincipal(ctx context.Context, userID string) (*authz.Principal, error)
}

// SlotFeedListener рассылает изменения заявок подключенным пользователям,
// которым виден склад заявки.
type SlotFeedListener struct {
	hub        FeedHub
	principals PrincipalLoader
	scope      services.AccessScopeServiceInterface
	logger     *zap.Logger
}

func NewSlotFeedListener(hub FeedHub, principals PrincipalLoader, scope services.AccessScopeServiceInterface, logger *zap.Logger) *SlotFeedListener {
	return &SlotFeedListener{hub: hub, principals: principals, scope: scope, logger: logger}
}

func (l *SlotFeedListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(events.ShiftRequestChanged, l.handleShiftRequestChanged)
	l.logger.Info("SlotFeedListener подписан на событие", zap.String("event", events.ShiftRequestChanged))
}

func (l *SlotFeedListener) handleShiftRequestChanged(ctx context.Context, event eventbus.Event) error {
	changed, ok := event.(events.ShiftRequestChangedEvent)
	if !ok {
		return fmt.Errorf("SlotFeedListener: неожиданный тип события %T", event)
	}

	payload := dto.ShiftRequestFeedDTO{
		ID:          changed.RequestID,
		Action:      changed.Action,
		Date:        changed.Date.Format(dto.DateLayout),
		Shift:       changed.Shift,
		EquipmentID: changed.EquipmentID,
		WarehouseID: changed.WarehouseID,
		ActorID:     changed.ActorID,
	}

	delivered := 0
	for _, userID := range l.hub.ConnectedUsers() {
		visible, err := l.visibleTo(ctx, userID, changed.WarehouseID)
		if err != nil {
			l.logger.Warn("SlotFeedListener: не удалось проверить доступ",
				zap.String("userId", userID), zap.Error(err))
			continue
		}
		if !visible {
			continue
		}
		if err := l.hub.SendToUser(userID, FeedMessageType, payload); err != nil {
			l.logger.Warn("SlotFeedListener: не удалось отправить сообщение", zap.String("userId", userID), zap.Error(err))
			continue
		}
		delivered++
	}

	l.logger.Debug("SlotFeedListener: изменение разослано",
		zap.String("requestId", changed.RequestID),
		zap.String("action", changed.Action),
		zap.Int("recipients", delivered),
	)
	return nil
}

func (l *SlotFeedListener) visibleTo(ctx context.Context, userID, warehouseID string) (bool, error) {
	principal, err := l.principals.LoadPrincipal(ctx, userID)
	if err != nil {
		// Пользователь мог быть деактивирован после подключения.
		if errors.Is(err, apperrors.ErrUserInactive) || errors.Is(err, apperrors.ErrUnauthorized) {
			return false, nil
		}
		return false, err
	}
	if !principal.CanRead(authz.TableShiftRequests) {
		return false, nil
	}
	return l.scope.CanAccessWarehouse(ctx, *principal, warehouseID)
}

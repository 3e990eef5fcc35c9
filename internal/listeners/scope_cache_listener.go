package listeners

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"shift-scheduler/internal/events"
	"shift-scheduler/internal/services"
	"shift-scheduler/pkg/eventbus"
)

// ScopeCacheListener сбрасывает кешированный снимок прав после изменения грантов.
type ScopeCacheListener struct {
	scopeService services.AccessScopeServiceInterface
	logger       *zap.Logger
}

func NewScopeCacheListener(scopeService services.AccessScopeServiceInterface, logger *zap.Logger) *ScopeCacheListener {
	return &ScopeCacheListener{scopeService: scopeService, logger: logger}
}

func (l *ScopeCacheListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(events.AccessGrantsChanged, l.handleGrantsChanged)
	l.logger.Info("ScopeCacheListener подписан на событие", zap.String("event", events.AccessGrantsChanged))
}

func (l *ScopeCacheListener) handleGrantsChanged(ctx context.Context, event eventbus.Event) error {
	changed, ok := event.(events.AccessGrantsChangedEvent)
	if !ok {
		return fmt.Errorf("ScopeCacheListener: неожиданный тип события %T", event)
	}
	l.logger.Debug("ScopeCacheListener: сброс кеша прав",
		zap.String("userId", changed.UserID),
		zap.String("reason", changed.Reason),
	)
	return l.scopeService.InvalidateUser(ctx, changed.UserID)
}

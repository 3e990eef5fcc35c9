package events

import (
	"time"

	"shift-scheduler/internal/entities"
)

const ShiftRequestChanged = "shift_requests.changed"

// Действия над заявкой, которые видят подписчики ленты.
const (
	ShiftRequestCreated         = "created"
	ShiftRequestUpdated         = "updated"
	ShiftRequestBlocked         = "blocked"
	ShiftRequestAutoProvisioned = "auto_provisioned"
)

type ShiftRequestChangedEvent struct {
	RequestID   string
	WarehouseID string
	EquipmentID string
	Date        time.Time
	Shift       entities.Shift
	Action      string
	ActorID     string
}

func (e ShiftRequestChangedEvent) Name() string {
	return ShiftRequestChanged
}

// NewShiftRequestChangedEvent собирает событие из заявки.
func NewShiftRequestChangedEvent(request entities.ShiftRequest, action, actorID string) ShiftRequestChangedEvent {
	return ShiftRequestChangedEvent{
		RequestID:   request.ID,
		WarehouseID: request.WarehouseID,
		EquipmentID: request.EquipmentID,
		Date:        request.Date,
		Shift:       request.Shift,
		Action:      action,
		ActorID:     actorID,
	}
}

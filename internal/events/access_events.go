package events

// AccessGrantsChangedEvent - гранты или глобальный флаг пользователя изменились.
type AccessGrantsChangedEvent struct {
	UserID string
	Reason string
}

// Name - реализуем интерфейс eventbus.Event
func (e AccessGrantsChangedEvent) Name() string {
	return AccessGrantsChanged
}

const AccessGrantsChanged = "access.grants.changed"

package authz

import "shift-scheduler/internal/entities"

// TableLevel возвращает уровень доступа роли к таблице.
// Неизвестная таблица или отсутствующая роль - LevelNone.
func TableLevel(role *entities.Role, table Table) Level {
	if role == nil {
		return LevelNone
	}
	get, ok := tableLevels[table]
	if !ok {
		return LevelNone
	}
	switch level := Level(get(role)); {
	case level <= LevelNone:
		return LevelNone
	case level >= LevelWrite:
		return LevelWrite
	default:
		return level
	}
}

func CanRead(role *entities.Role, table Table) bool {
	return TableLevel(role, table) >= LevelRead
}

func CanWrite(role *entities.Role, table Table) bool {
	return TableLevel(role, table) >= LevelWrite
}

// HasCapability - неизвестная возможность всегда false.
func HasCapability(role *entities.Role, capability Capability) bool {
	if role == nil {
		return false
	}
	get, ok := capabilityFlags[capability]
	if !ok {
		return false
	}
	return get(role)
}

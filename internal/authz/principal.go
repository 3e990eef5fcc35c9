package authz

import "shift-scheduler/internal/entities"

// Principal - аутентифицированный пользователь вместе с его ролью.
// Передается явно в каждую проверку, никакого состояния сессии.
type Principal struct {
	User entities.User
	Role entities.Role
}

func (p Principal) CanRead(table Table) bool {
	return CanRead(&p.Role, table)
}

func (p Principal) CanWrite(table Table) bool {
	return CanWrite(&p.Role, table)
}

func (p Principal) HasCapability(capability Capability) bool {
	return HasCapability(&p.Role, capability)
}

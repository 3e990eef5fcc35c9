// Файл: internal/entities/user-entity.go
package entities

import (
	"shift-scheduler/pkg/types"
)

type User struct {
	ID       string `json:"id" db:"id"`
	Login    string `json:"login" db:"login"`
	Fio      string `json:"fio" db:"fio"`
	Password string `json:"-" db:"password"`
	RoleID   string `json:"role_id" db:"role_id"`

	// Глобальный уровень: доступ ко всем подразделениям и складам.
	HasAllDepartments bool `json:"has_all_departments" db:"has_all_departments"`
	IsActive          bool `json:"is_active" db:"is_active"`

	types.BaseEntity
}

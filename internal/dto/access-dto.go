package dto

import "shift-scheduler/internal/authz"

type GrantDepartmentDTO struct {
	UserID           string `json:"user_id" validate:"required,entity_id"`
	DepartmentID     string `json:"department_id" validate:"required,entity_id"`
	HasAllWarehouses bool   `json:"has_all_warehouses"`
}

type GrantWarehouseDTO struct {
	DepartmentAccessGrantID string `json:"department_access_grant_id" validate:"required,entity_id"`
	WarehouseID             string `json:"warehouse_id" validate:"required,entity_id"`
}

type SetAllDepartmentsDTO struct {
	HasAllDepartments bool `json:"has_all_departments"`
}

// AccessScopeDTO - итоговая область видимости пользователя.
type AccessScopeDTO struct {
	UserID       string                 `json:"user_id"`
	Departments  authz.Scope            `json:"departments"`
	Warehouses   map[string]authz.Scope `json:"warehouses,omitempty"`
	Capabilities []authz.Capability     `json:"capabilities"`
}

type AccessCheckDTO struct {
	ID      string `json:"id"`
	Allowed bool   `json:"allowed"`
}

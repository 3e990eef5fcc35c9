package entities

// DepartmentAccessGrant - уровень подразделения. Уникален по (UserID, DepartmentID).
type DepartmentAccessGrant struct {
	ID               string `json:"id" db:"id"`
	UserID           string `json:"user_id" db:"user_id"`
	DepartmentID     string `json:"department_id" db:"department_id"`
	HasAllWarehouses bool   `json:"has_all_warehouses" db:"has_all_warehouses"`
}

// WarehouseAccessGrant - уровень склада. Учитывается только если
// у родительского гранта HasAllWarehouses = false.
type WarehouseAccessGrant struct {
	ID                      string `json:"id" db:"id"`
	DepartmentAccessGrantID string `json:"department_access_grant_id" db:"department_access_grant_id"`
	WarehouseID             string `json:"warehouse_id" db:"warehouse_id"`
}

package entities

type Department struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// Warehouse всегда принадлежит ровно одному подразделению.
type Warehouse struct {
	ID           string `json:"id" db:"id"`
	DepartmentID string `json:"department_id" db:"department_id"`
	Name         string `json:"name" db:"name"`
}

package entities

import (
	"shift-scheduler/pkg/types"
)

// Equipment - единица техники из каталога. После появления в заявках
// меняется только признак активности.
type Equipment struct {
	ID                 string `json:"id" db:"id"`
	Name               string `json:"name" db:"name"`
	AllowMultipleUnits bool   `json:"allow_multiple_units" db:"allow_multiple_units"`
	IsActive           bool   `json:"is_active" db:"is_active"`

	types.BaseEntity
}

// DependencyEdge - правило "для техники Main в слоте нужна техника Dependent
// в количестве не меньше RequiredCount".
type DependencyEdge struct {
	ID                   string `json:"id" db:"id"`
	MainEquipmentID      string `json:"main_equipment_id" db:"main_equipment_id"`
	DependentEquipmentID string `json:"dependent_equipment_id" db:"dependent_equipment_id"`
	RequiredCount        int    `json:"required_count" db:"required_count"`
	IsMandatory          bool   `json:"is_mandatory" db:"is_mandatory"`
	Description          string `json:"description" db:"description"`

	// Поля для связанных данных (не колонки в таблице)
	MainEquipmentName      string `json:"main_equipment_name,omitempty" db:"-"`
	DependentEquipmentName string `json:"dependent_equipment_name,omitempty" db:"-"`
}

// MainLabel возвращает название основной техники, а если его нет - идентификатор.
func (e DependencyEdge) MainLabel() string {
	if e.MainEquipmentName != "" {
		return e.MainEquipmentName
	}
	return e.MainEquipmentID
}

func (e DependencyEdge) DependentLabel() string {
	if e.DependentEquipmentName != "" {
		return e.DependentEquipmentName
	}
	return e.DependentEquipmentID
}

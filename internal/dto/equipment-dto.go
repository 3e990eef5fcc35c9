package dto

type CreateEquipmentDTO struct {
	Name               string `json:"name" validate:"required,max=150"`
	AllowMultipleUnits bool   `json:"allow_multiple_units"`
}

type SetEquipmentActiveDTO struct {
	IsActive bool `json:"is_active"`
}

type CreateDependencyEdgeDTO struct {
	MainEquipmentID      string `json:"main_equipment_id" validate:"required,entity_id"`
	DependentEquipmentID string `json:"dependent_equipment_id" validate:"required,entity_id,nefield=MainEquipmentID"`
	RequiredCount        int    `json:"required_count" validate:"min=1"`
	IsMandatory          bool   `json:"is_mandatory"`
	Description          string `json:"description" validate:"max=500"`
}

type UpdateDependencyEdgeDTO struct {
	RequiredCount int    `json:"required_count" validate:"min=1"`
	IsMandatory   bool   `json:"is_mandatory"`
	Description   string `json:"description" validate:"max=500"`
}

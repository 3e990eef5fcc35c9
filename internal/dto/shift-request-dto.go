package dto

import (
	"fmt"

	"github.com/aarondl/null/v8"
	"github.com/shopspring/decimal"

	"shift-scheduler/internal/entities"
)

const DateLayout = "2006-01-02"

// ShiftRequestFieldsDTO - изменяемые поля заявки. Общие для создания и обновления.
type ShiftRequestFieldsDTO struct {
	Date         string         `json:"date" validate:"required,datetime=2006-01-02"`
	Shift        entities.Shift `json:"shift" validate:"shift"`
	EquipmentID  string         `json:"equipment_id" validate:"required,entity_id"`
	WarehouseID  string         `json:"warehouse_id" validate:"required,entity_id"`
	DepartmentID null.String    `json:"department_id" validate:"omitempty,entity_id"`
	AreaID       null.String    `json:"area_id" validate:"omitempty,entity_id"`

	PlateNumber  string `json:"plate_number" validate:"max=20"`
	VehicleBrand string `json:"vehicle_brand" validate:"max=100"`
	VehicleModel string `json:"vehicle_model" validate:"max=100"`
	DriverName   string `json:"driver_name" validate:"max=150"`
	LessorName   string `json:"lessor_name" validate:"max=150"`

	RequestedCount int                 `json:"requested_count" validate:"min=1"`
	WorkedHours    null.Float64        `json:"worked_hours" validate:"omitempty,min=0,max=24"`
	ActualCost     decimal.NullDecimal `json:"actual_cost"`
	Comment        string              `json:"comment" validate:"max=1000"`
	ProgramYear    int                 `json:"program_year" validate:"omitempty,min=2000,max=2100"`
	ProgramMonth   int                 `json:"program_month" validate:"omitempty,min=1,max=12"`
}

type CreateShiftRequestDTO struct {
	ShiftRequestFieldsDTO

	// Недостающую зависимую технику создать автоматически, а не отклонять заявку.
	AutoProvision bool `json:"auto_provision"`
}

type UpdateShiftRequestDTO struct {
	ShiftRequestFieldsDTO
}

type ShiftRequestListFilterDTO struct {
	Date  string         `query:"date" json:"date" validate:"required,datetime=2006-01-02"`
	Shift entities.Shift `query:"shift" json:"shift" validate:"shift"`
}

// DependencyViolationDTO - одно невыполненное требование зависимости.
type DependencyViolationDTO struct {
	MainEquipmentID        string `json:"main_equipment_id"`
	MainEquipmentName      string `json:"main_equipment_name"`
	DependentEquipmentID   string `json:"dependent_equipment_id"`
	DependentEquipmentName string `json:"dependent_equipment_name"`
	RequiredCount          int    `json:"required_count"`
	Satisfied              int    `json:"satisfied"`
	Shortfall              int    `json:"shortfall"`
}

func (v DependencyViolationDTO) Message() string {
	main, dependent := v.MainEquipmentName, v.DependentEquipmentName
	if main == "" {
		main = v.MainEquipmentID
	}
	if dependent == "" {
		dependent = v.DependentEquipmentID
	}
	return fmt.Sprintf("%s requires ≥%d of %s; found %d, short by %d",
		main, v.RequiredCount, dependent, v.Satisfied, v.Shortfall)
}

type ValidationResultDTO struct {
	Valid      bool                     `json:"valid"`
	Messages   []string                 `json:"messages"`
	Violations []DependencyViolationDTO `json:"violations"`
}

type CreatedShiftRequestDTO struct {
	ID                 string   `json:"id"`
	AutoProvisionedIDs []string `json:"auto_provisioned_ids,omitempty"`
}

// ShiftRequestFeedDTO - сообщение ленты изменений заявок.
type ShiftRequestFeedDTO struct {
	ID          string         `json:"id"`
	Action      string         `json:"action"`
	Date        string         `json:"date"`
	Shift       entities.Shift `json:"shift"`
	EquipmentID string         `json:"equipment_id"`
	WarehouseID string         `json:"warehouse_id"`
	ActorID     string         `json:"actor_id,omitempty"`
}

package entities

import (
	"time"

	"github.com/aarondl/null/v8"
	"github.com/shopspring/decimal"
)

// Shift - половина суток для планирования.
type Shift int

const (
	ShiftNight Shift = 0
	ShiftDay   Shift = 1
)

func (s Shift) IsValid() bool {
	return s == ShiftNight || s == ShiftDay
}

func (s Shift) String() string {
	switch s {
	case ShiftNight:
		return "night"
	case ShiftDay:
		return "day"
	}
	return "unknown"
}

// SlotDate обрезает время: слот определяется только календарной датой.
func SlotDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type ShiftRequest struct {
	ID           string      `json:"id" db:"id"`
	Date         time.Time   `json:"date" db:"request_date"`
	Shift        Shift       `json:"shift" db:"shift"`
	EquipmentID  string      `json:"equipment_id" db:"equipment_id"`
	WarehouseID  string      `json:"warehouse_id" db:"warehouse_id"`
	DepartmentID null.String `json:"department_id" db:"department_id"`
	AreaID       null.String `json:"area_id" db:"area_id"`

	PlateNumber  string `json:"plate_number" db:"plate_number"`
	VehicleBrand string `json:"vehicle_brand" db:"vehicle_brand"`
	VehicleModel string `json:"vehicle_model" db:"vehicle_model"`
	DriverName   string `json:"driver_name" db:"driver_name"`
	LessorName   string `json:"lessor_name" db:"lessor_name"`

	RequestedCount int                 `json:"requested_count" db:"requested_count"`
	WorkedHours    null.Float64        `json:"worked_hours" db:"worked_hours"`
	ActualCost     decimal.NullDecimal `json:"actual_cost" db:"actual_cost"`
	Comment        string              `json:"comment" db:"comment"`
	ProgramYear    int                 `json:"program_year" db:"program_year"`
	ProgramMonth   int                 `json:"program_month" db:"program_month"`

	// Заявка, ради которой эта была создана автоматически.
	GeneratedFromRequestID null.String `json:"generated_from_request_id" db:"generated_from_request_id"`

	CreatedByUserID string    `json:"created_by_user_id" db:"created_by_user_id"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	Blocked         bool      `json:"blocked" db:"blocked"`
}

// SameSlot - совпадают ли дата и смена.
func (r ShiftRequest) SameSlot(other ShiftRequest) bool {
	return r.Shift == other.Shift && SlotDate(r.Date).Equal(SlotDate(other.Date))
}

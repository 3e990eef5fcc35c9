// internal/authz/permissions.go
package authz

import "shift-scheduler/internal/entities"

// Level - уровень доступа к таблице.
type Level int

const (
	LevelNone  Level = 0
	LevelRead  Level = 1
	LevelWrite Level = 2
)

// Table - имя таблицы в матрице прав роли.
type Table string

// --- СПИСОК ВСЕХ ТАБЛИЦ В МАТРИЦЕ ПРАВ ---
const (
	TableShiftRequests Table = "shift_requests"
	TableEquipment     Table = "equipment"
	TableDependencies  Table = "equipment_dependencies"
	TableDepartments   Table = "departments"
	TableWarehouses    Table = "warehouses"
	TableUsers         Table = "users"
	TableRoles         Table = "roles"
	TableAccessGrants  Table = "access_grants"
	TableReports       Table = "reports"
)

// Capability - именованная особая возможность роли.
type Capability string

const (
	CapabilityExportData           Capability = "export_data"
	CapabilityViewReports          Capability = "view_reports"
	CapabilityManageAllDepartments Capability = "manage_all_departments"
	CapabilityManageUsers          Capability = "manage_users"
	CapabilitySystemAdmin          Capability = "system_admin"
)

// Явное сопоставление "таблица -> поле роли". Набор закрыт:
// новое поле роли без строки здесь не даст доступа.
var tableLevels = map[Table]func(r *entities.Role) int{
	TableShiftRequests: func(r *entities.Role) int { return r.ShiftRequestsLevel },
	TableEquipment:     func(r *entities.Role) int { return r.EquipmentLevel },
	TableDependencies:  func(r *entities.Role) int { return r.DependenciesLevel },
	TableDepartments:   func(r *entities.Role) int { return r.DepartmentsLevel },
	TableWarehouses:    func(r *entities.Role) int { return r.WarehousesLevel },
	TableUsers:         func(r *entities.Role) int { return r.UsersLevel },
	TableRoles:         func(r *entities.Role) int { return r.RolesLevel },
	TableAccessGrants:  func(r *entities.Role) int { return r.AccessGrantsLevel },
	TableReports:       func(r *entities.Role) int { return r.ReportsLevel },
}

var capabilityFlags = map[Capability]func(r *entities.Role) bool{
	CapabilityExportData:           func(r *entities.Role) bool { return r.CanExportData },
	CapabilityViewReports:          func(r *entities.Role) bool { return r.CanViewReports },
	CapabilityManageAllDepartments: func(r *entities.Role) bool { return r.CanManageAllDepartments },
	CapabilityManageUsers:          func(r *entities.Role) bool { return r.CanManageUsers },
	CapabilitySystemAdmin:          func(r *entities.Role) bool { return r.IsSystemAdmin },
}

// Tables возвращает все известные таблицы.
func Tables() []Table {
	return []Table{
		TableShiftRequests, TableEquipment, TableDependencies, TableDepartments,
		TableWarehouses, TableUsers, TableRoles, TableAccessGrants, TableReports,
	}
}

// Capabilities возвращает все известные возможности.
func Capabilities() []Capability {
	return []Capability{
		CapabilityExportData, CapabilityViewReports, CapabilityManageAllDepartments,
		CapabilityManageUsers, CapabilitySystemAdmin,
	}
}

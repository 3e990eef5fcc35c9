package entities

// Role - матрица уровней доступа к таблицам (0 - нет, 1 - чтение, 2 - запись)
// и набор особых возможностей. Одну роль разделяют многие пользователи.
type Role struct {
	ID          string `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`

	ShiftRequestsLevel int `json:"shift_requests_level" db:"shift_requests_level"`
	EquipmentLevel     int `json:"equipment_level" db:"equipment_level"`
	DependenciesLevel  int `json:"dependencies_level" db:"dependencies_level"`
	DepartmentsLevel   int `json:"departments_level" db:"departments_level"`
	WarehousesLevel    int `json:"warehouses_level" db:"warehouses_level"`
	UsersLevel         int `json:"users_level" db:"users_level"`
	RolesLevel         int `json:"roles_level" db:"roles_level"`
	AccessGrantsLevel  int `json:"access_grants_level" db:"access_grants_level"`
	ReportsLevel       int `json:"reports_level" db:"reports_level"`

	CanExportData           bool `json:"can_export_data" db:"can_export_data"`
	CanViewReports          bool `json:"can_view_reports" db:"can_view_reports"`
	CanManageAllDepartments bool `json:"can_manage_all_departments" db:"can_manage_all_departments"`
	CanManageUsers          bool `json:"can_manage_users" db:"can_manage_users"`
	IsSystemAdmin           bool `json:"is_system_admin" db:"is_system_admin"`
}

package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"shift-scheduler/internal/entities"
)

type RoleRepositoryInterface interface {
	FindRole(ctx context.Context, id string) (*entities.Role, error)
}

type RoleRepository struct {
	storage *pgxpool.Pool
}

func NewRoleRepository(storage *pgxpool.Pool) RoleRepositoryInterface {
	return &RoleRepository{storage: storage}
}

func (r *RoleRepository) FindRole(ctx context.Context, id string) (*entities.Role, error) {
	var role entities.Role
	err := conn(ctx, r.storage).QueryRow(ctx, `
		SELECT id::text, name, description,
			shift_requests_level, equipment_level, dependencies_level, departments_level,
			warehouses_level, users_level, roles_level, access_grants_level, reports_level,
			can_export_data, can_view_reports, can_manage_all_departments, can_manage_users, is_system_admin
		FROM roles WHERE id = $1`, id,
	).Scan(
		&role.ID, &role.Name, &role.Description,
		&role.ShiftRequestsLevel, &role.EquipmentLevel, &role.DependenciesLevel, &role.DepartmentsLevel,
		&role.WarehousesLevel, &role.UsersLevel, &role.RolesLevel, &role.AccessGrantsLevel, &role.ReportsLevel,
		&role.CanExportData, &role.CanViewReports, &role.CanManageAllDepartments, &role.CanManageUsers, &role.IsSystemAdmin,
	)
	if err != nil {
		return nil, mapPgError(err, "FindRole")
	}
	return &role, nil
}

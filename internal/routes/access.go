package routes

import (
	"github.com/labstack/echo/v4"

	"shift-scheduler/internal/authz"
	"shift-scheduler/internal/controllers"
	"shift-scheduler/pkg/middleware"
)

func runAccessRouter(secureGroup *echo.Group, ctrl *controllers.AccessController) {
	group := secureGroup.Group("/access")
	{
		group.GET("/scope", ctrl.DescribeScope)
		group.GET("/departments/:id", ctrl.CheckDepartment)
		group.GET("/warehouses/:id", ctrl.CheckWarehouse)
	}

	// Проверка прав на запись выполняется и в сервисе: для глобального флага
	// дополнительно нужна возможность manage_all_departments.
	grants := group.Group("/grants", middleware.RequireWrite(authz.TableAccessGrants))
	{
		grants.POST("/departments", ctrl.GrantDepartment)
		grants.DELETE("/departments/:id", ctrl.RevokeDepartment)
		grants.POST("/warehouses", ctrl.GrantWarehouse)
		grants.DELETE("/warehouses/:id", ctrl.RevokeWarehouse)
		grants.PUT("/users/:id/all-departments", ctrl.SetAllDepartments)
	}
}

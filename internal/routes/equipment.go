package routes

import (
	"github.com/labstack/echo/v4"

	"shift-scheduler/internal/authz"
	"shift-scheduler/internal/controllers"
	"shift-scheduler/pkg/middleware"
)

func runEquipmentRouter(secureGroup *echo.Group, ctrl *controllers.EquipmentController) {
	group := secureGroup.Group("/equipment")
	{
		group.GET("", ctrl.ListEquipment, middleware.RequireRead(authz.TableEquipment))
		group.POST("", ctrl.CreateEquipment, middleware.RequireWrite(authz.TableEquipment))
		group.PATCH("/:id/active", ctrl.SetEquipmentActive, middleware.RequireWrite(authz.TableEquipment))

		group.GET("/:id/dependencies", ctrl.ListDependencyEdges, middleware.RequireRead(authz.TableDependencies))
		group.POST("/:id/dependencies", ctrl.CreateDependencyEdge, middleware.RequireWrite(authz.TableDependencies))
		group.PUT("/dependencies/:id", ctrl.UpdateDependencyEdge, middleware.RequireWrite(authz.TableDependencies))
		group.DELETE("/dependencies/:id", ctrl.DeleteDependencyEdge, middleware.RequireWrite(authz.TableDependencies))
	}
}

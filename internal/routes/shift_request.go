package routes

import (
	"github.com/labstack/echo/v4"

	"shift-scheduler/internal/authz"
	"shift-scheduler/internal/controllers"
	"shift-scheduler/pkg/middleware"
)

func runShiftRequestRouter(secureGroup *echo.Group, ctrl *controllers.ShiftRequestController) {
	read := middleware.RequireRead(authz.TableShiftRequests)
	write := middleware.RequireWrite(authz.TableShiftRequests)

	group := secureGroup.Group("/shift-requests")
	{
		group.GET("", ctrl.ListRequests, read)
		group.POST("", ctrl.CreateRequest, write)
		group.POST("/validate", ctrl.ValidateRequest, read)
		group.PUT("/:id", ctrl.UpdateRequest, write)
		group.POST("/:id/block", ctrl.BlockRequest, write)
	}
}

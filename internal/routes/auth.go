package routes

import (
	"github.com/labstack/echo/v4"

	"shift-scheduler/internal/controllers"
)

func runAuthRouter(api *echo.Group, secureGroup *echo.Group, authCtrl *controllers.AuthController) {
	api.POST("/auth/login", authCtrl.Login)
	secureGroup.GET("/auth/me", authCtrl.Me)
}

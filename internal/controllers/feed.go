package controllers

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"shift-scheduler/internal/authz"
	apperrors "shift-scheduler/pkg/errors"
	"shift-scheduler/pkg/middleware"
	"shift-scheduler/pkg/service"
	"shift-scheduler/pkg/utils"
	appwebsocket "shift-scheduler/pkg/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// FeedController - лента изменений заявок по WebSocket.
type FeedController struct {
	hub        *appwebsocket.Hub
	jwtService service.JWTService
	principals middleware.PrincipalLoader
	logger     *zap.Logger
}

func NewFeedController(hub *appwebsocket.Hub, jwtService service.JWTService, principals middleware.PrincipalLoader, logger *zap.Logger) *FeedController {
	return &FeedController{
		hub:        hub,
		jwtService: jwtService,
		principals: principals,
		logger:     logger,
	}
}

// ServeWs - браузер не передает заголовки при открытии WebSocket, поэтому токен в query.
func (c *FeedController) ServeWs(ctx echo.Context) error {
	tokenString := ctx.QueryParam("token")
	if tokenString == "" {
		return utils.ErrorResponse(ctx, apperrors.ErrUnauthorized)
	}

	claims, err := c.jwtService.ValidateToken(tokenString)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	principal, err := c.principals.LoadPrincipal(ctx.Request().Context(), claims.UserID)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	if !principal.CanRead(authz.TableShiftRequests) {
		return utils.ErrorResponse(ctx, apperrors.ErrForbidden)
	}

	conn, err := upgrader.Upgrade(ctx.Response(), ctx.Request(), nil)
	if err != nil {
		c.logger.Error("WebSocket: не удалось установить соединение", zap.Error(err))
		return nil
	}

	client := appwebsocket.NewClient(c.hub, conn, principal.User.ID)
	if !c.hub.Register(client) {
		_ = conn.Close()
		return nil
	}
	go client.WritePump()
	go client.ReadPump()

	c.logger.Info("WebSocket: клиент подключен к ленте заявок", zap.String("userId", principal.User.ID))
	return nil
}

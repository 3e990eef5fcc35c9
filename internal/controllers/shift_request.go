package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"shift-scheduler/internal/dto"
	"shift-scheduler/internal/services"
	apperrors "shift-scheduler/pkg/errors"
	"shift-scheduler/pkg/utils"
)

type ShiftRequestController struct {
	shiftRequestService services.ShiftRequestServiceInterface
	logger              *zap.Logger
}

func NewShiftRequestController(service services.ShiftRequestServiceInterface, logger *zap.Logger) *ShiftRequestController {
	return &ShiftRequestController{
		shiftRequestService: service,
		logger:              logger,
	}
}

func (c *ShiftRequestController) CreateRequest(ctx echo.Context) error {
	var payload dto.CreateShiftRequestDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат запроса", err, nil))
	}
	principal, err := utils.GetPrincipalFromContext(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	res, err := c.shiftRequestService.CreateRequest(ctx.Request().Context(), *principal, payload)
	if err != nil {
		c.logger.Warn("CreateRequest: заявка отклонена", zap.String("userId", principal.User.ID), zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Заявка успешно создана", http.StatusCreated)
}

func (c *ShiftRequestController) UpdateRequest(ctx echo.Context) error {
	var payload dto.UpdateShiftRequestDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат запроса", err, nil))
	}
	id := ctx.Param("id")
	principal, err := utils.GetPrincipalFromContext(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	if err := c.shiftRequestService.UpdateRequest(ctx.Request().Context(), *principal, id, payload); err != nil {
		c.logger.Warn("UpdateRequest: изменение отклонено", zap.String("id", id), zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, map[string]string{"id": id}, "Заявка успешно обновлена", http.StatusOK)
}

func (c *ShiftRequestController) BlockRequest(ctx echo.Context) error {
	id := ctx.Param("id")
	principal, err := utils.GetPrincipalFromContext(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	if err := c.shiftRequestService.BlockRequest(ctx.Request().Context(), *principal, id); err != nil {
		c.logger.Warn("BlockRequest: блокировка отклонена", zap.String("id", id), zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, nil, "Заявка заблокирована", http.StatusOK)
}

// ValidateRequest проверяет заявку без сохранения. exclude_id - для редактирования.
func (c *ShiftRequestController) ValidateRequest(ctx echo.Context) error {
	var payload dto.ShiftRequestFieldsDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат запроса", err, nil))
	}

	res, err := c.shiftRequestService.ValidateRequest(ctx.Request().Context(), payload, ctx.QueryParam("exclude_id"))
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Проверка выполнена", http.StatusOK)
}

func (c *ShiftRequestController) ListRequests(ctx echo.Context) error {
	var filter dto.ShiftRequestListFilterDTO
	if err := ctx.Bind(&filter); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверные параметры запроса", err, nil))
	}
	principal, err := utils.GetPrincipalFromContext(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	res, err := c.shiftRequestService.ListRequests(ctx.Request().Context(), *principal, filter)
	if err != nil {
		c.logger.Error("ListRequests: ошибка при получении заявок", zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Список заявок успешно получен", http.StatusOK)
}

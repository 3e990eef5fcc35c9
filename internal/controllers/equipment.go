package controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"shift-scheduler/internal/dto"
	"shift-scheduler/internal/services"
	apperrors "shift-scheduler/pkg/errors"
	"shift-scheduler/pkg/utils"
)

type EquipmentController struct {
	equipmentService services.EquipmentServiceInterface
	logger           *zap.Logger
}

func NewEquipmentController(service services.EquipmentServiceInterface, logger *zap.Logger) *EquipmentController {
	return &EquipmentController{
		equipmentService: service,
		logger:           logger,
	}
}

// ----- КАТАЛОГ ТЕХНИКИ -----

func (c *EquipmentController) ListEquipment(ctx echo.Context) error {
	onlyActive, _ := strconv.ParseBool(ctx.QueryParam("only_active"))

	res, err := c.equipmentService.ListEquipment(ctx.Request().Context(), onlyActive)
	if err != nil {
		c.logger.Error("ListEquipment: ошибка при получении каталога", zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Каталог техники успешно получен", http.StatusOK)
}

func (c *EquipmentController) CreateEquipment(ctx echo.Context) error {
	var payload dto.CreateEquipmentDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат запроса", err, nil))
	}
	res, err := c.equipmentService.CreateEquipment(ctx.Request().Context(), payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Техника успешно добавлена", http.StatusCreated)
}

func (c *EquipmentController) SetEquipmentActive(ctx echo.Context) error {
	var payload dto.SetEquipmentActiveDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат запроса", err, nil))
	}
	if err := c.equipmentService.SetEquipmentActive(ctx.Request().Context(), ctx.Param("id"), payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, nil, "Активность техники изменена", http.StatusOK)
}

// ----- ПРАВИЛА ЗАВИСИМОСТЕЙ -----

func (c *EquipmentController) ListDependencyEdges(ctx echo.Context) error {
	res, err := c.equipmentService.ListDependencyEdges(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Правила зависимостей получены", http.StatusOK)
}

// CreateDependencyEdge - основная техника берется из пути.
func (c *EquipmentController) CreateDependencyEdge(ctx echo.Context) error {
	var payload dto.CreateDependencyEdgeDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат запроса", err, nil))
	}
	payload.MainEquipmentID = ctx.Param("id")

	res, err := c.equipmentService.CreateDependencyEdge(ctx.Request().Context(), payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Правило зависимости добавлено", http.StatusCreated)
}

func (c *EquipmentController) UpdateDependencyEdge(ctx echo.Context) error {
	var payload dto.UpdateDependencyEdgeDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат запроса", err, nil))
	}
	res, err := c.equipmentService.UpdateDependencyEdge(ctx.Request().Context(), ctx.Param("id"), payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Правило зависимости обновлено", http.StatusOK)
}

func (c *EquipmentController) DeleteDependencyEdge(ctx echo.Context) error {
	if err := c.equipmentService.DeleteDependencyEdge(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, nil, "Правило зависимости удалено", http.StatusOK)
}

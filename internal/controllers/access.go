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

type AccessController struct {
	scopeService services.AccessScopeServiceInterface
	grantService services.AccessGrantServiceInterface
	logger       *zap.Logger
}

func NewAccessController(
	scopeService services.AccessScopeServiceInterface,
	grantService services.AccessGrantServiceInterface,
	logger *zap.Logger,
) *AccessController {
	return &AccessController{
		scopeService: scopeService,
		grantService: grantService,
		logger:       logger,
	}
}

func (c *AccessController) DescribeScope(ctx echo.Context) error {
	principal, err := utils.GetPrincipalFromContext(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	res, err := c.scopeService.DescribeScope(ctx.Request().Context(), *principal)
	if err != nil {
		c.logger.Error("DescribeScope: ошибка вычисления области видимости", zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Область видимости получена", http.StatusOK)
}

func (c *AccessController) CheckDepartment(ctx echo.Context) error {
	principal, err := utils.GetPrincipalFromContext(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	id := ctx.Param("id")
	allowed, err := c.scopeService.CanAccessDepartment(ctx.Request().Context(), *principal, id)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, dto.AccessCheckDTO{ID: id, Allowed: allowed}, "Проверка доступа выполнена", http.StatusOK)
}

func (c *AccessController) CheckWarehouse(ctx echo.Context) error {
	principal, err := utils.GetPrincipalFromContext(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	id := ctx.Param("id")
	allowed, err := c.scopeService.CanAccessWarehouse(ctx.Request().Context(), *principal, id)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, dto.AccessCheckDTO{ID: id, Allowed: allowed}, "Проверка доступа выполнена", http.StatusOK)
}

func (c *AccessController) GrantDepartment(ctx echo.Context) error {
	var payload dto.GrantDepartmentDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат запроса", err, nil))
	}
	principal, err := utils.GetPrincipalFromContext(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	res, err := c.grantService.GrantDepartment(ctx.Request().Context(), *principal, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Доступ к подразделению выдан", http.StatusCreated)
}

func (c *AccessController) RevokeDepartment(ctx echo.Context) error {
	principal, err := utils.GetPrincipalFromContext(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	if err := c.grantService.RevokeDepartment(ctx.Request().Context(), *principal, ctx.Param("id")); err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, nil, "Доступ к подразделению отозван", http.StatusOK)
}

func (c *AccessController) GrantWarehouse(ctx echo.Context) error {
	var payload dto.GrantWarehouseDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат запроса", err, nil))
	}
	principal, err := utils.GetPrincipalFromContext(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	res, err := c.grantService.GrantWarehouse(ctx.Request().Context(), *principal, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Доступ к складу выдан", http.StatusCreated)
}

func (c *AccessController) RevokeWarehouse(ctx echo.Context) error {
	principal, err := utils.GetPrincipalFromContext(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	if err := c.grantService.RevokeWarehouse(ctx.Request().Context(), *principal, ctx.Param("id")); err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, nil, "Доступ к складу отозван", http.StatusOK)
}

func (c *AccessController) SetAllDepartments(ctx echo.Context) error {
	var payload dto.SetAllDepartmentsDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат запроса", err, nil))
	}
	principal, err := utils.GetPrincipalFromContext(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	if err := c.grantService.SetAllDepartments(ctx.Request().Context(), *principal, ctx.Param("id"), payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, nil, "Глобальный доступ изменен", http.StatusOK)
}

package utils

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "shift-scheduler/pkg/errors"
)

type HttpResponse struct {
	Status   bool        `json:"status"`
	Body     interface{} `json:"body,omitempty"`
	Message  string      `json:"message"`
	Messages []string    `json:"messages,omitempty"`
}

func SuccessResponse(ctx echo.Context, body interface{}, message string, code int) error {
	response := &HttpResponse{
		Status:  true,
		Body:    body,
		Message: message,
	}
	return ctx.JSON(code, response)
}

// Порядок важен: ErrAlreadyBlocked оборачивает ErrNotFound.
var errorStatuses = []struct {
	err  error
	code int
}{
	{apperrors.ErrAlreadyBlocked, http.StatusNotFound},
	{apperrors.ErrNotFound, http.StatusNotFound},
	{apperrors.ErrForbidden, http.StatusForbidden},
	{apperrors.ErrUserInactive, http.StatusForbidden},
	{apperrors.ErrUnauthorized, http.StatusUnauthorized},
	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized},
	{apperrors.ErrInvalidToken, http.StatusUnauthorized},
	{apperrors.ErrTokenExpired, http.StatusUnauthorized},
	{apperrors.ErrInvalidSigningMethod, http.StatusUnauthorized},
	{apperrors.ErrEmptyAuthHeader, http.StatusUnauthorized},
	{apperrors.ErrInvalidAuthHeader, http.StatusUnauthorized},
	{apperrors.ErrPrincipalNotFoundInContext, http.StatusUnauthorized},
	{apperrors.ErrAccountLocked, http.StatusTooManyRequests},
	{apperrors.ErrConflict, http.StatusConflict},
	{apperrors.ErrBadRequest, http.StatusBadRequest},
}

// StatusFor сопоставляет ошибку сервиса с HTTP-статусом.
func StatusFor(err error) int {
	if _, ok := apperrors.AsValidationError(err); ok {
		return http.StatusBadRequest
	}
	var httpErr *apperrors.HttpError
	if errors.As(err, &httpErr) {
		return httpErr.Code
	}
	for _, item := range errorStatuses {
		if errors.Is(err, item.err) {
			return item.code
		}
	}
	return http.StatusInternalServerError
}

func ErrorResponse(ctx echo.Context, err error) error {
	code := StatusFor(err)
	response := &HttpResponse{
		Status:  false,
		Message: err.Error(),
	}

	if vErr, ok := apperrors.AsValidationError(err); ok {
		response.Message = "Ошибка проверки данных"
		response.Messages = vErr.Messages
	}
	var httpErr *apperrors.HttpError
	if errors.As(err, &httpErr) {
		response.Message = httpErr.Message
		response.Body = httpErr.Details
	}
	if code == http.StatusInternalServerError {
		response.Message = "Внутренняя ошибка сервера"
	}

	return ctx.JSON(code, response)
}

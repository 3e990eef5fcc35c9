package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"shift-scheduler/pkg/utils"
)

// InjectLogger - мидлвэр для добавления логгера в контекст запроса.
func InjectLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestLogger := logger.With(
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
			)
			c.Set("logger", requestLogger)

			start := time.Now()
			err := next(c)
			fields := []zap.Field{
				zap.Int("status", c.Response().Status),
				zap.Duration("latency", time.Since(start)),
			}
			// Идентификатор появляется только после Auth.
			if userID, uerr := utils.GetUserIDFromContext(c.Request().Context()); uerr == nil {
				fields = append(fields, zap.String("userId", userID))
			}
			requestLogger.Debug("HTTP запрос обработан", fields...)
			return err
		}
	}
}

package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"shift-scheduler/internal/authz"
	"shift-scheduler/pkg/contextkeys"
	apperrors "shift-scheduler/pkg/errors"
	"shift-scheduler/pkg/service"
	"shift-scheduler/pkg/utils"
)

// PrincipalLoader загружает пользователя с ролью по ID из токена.
type PrincipalLoader interface {
	LoadPrincipal(ctx context.Context, userID string) (*authz.Principal, error)
}

type AuthMiddleware struct {
	jwtService service.JWTService
	principals PrincipalLoader
	logger     *zap.Logger
}

func NewAuthMiddleware(jwtSvc service.JWTService, principals PrincipalLoader, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtSvc,
		principals: principals,
		logger:     logger,
	}
}

// Auth проверяет токен и кладет в контекст запроса ID пользователя и Principal.
func (m *AuthMiddleware) Auth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			m.logger.Warn("AuthMiddleware: Пустой заголовок Authorization")
			return utils.ErrorResponse(c, apperrors.ErrEmptyAuthHeader)
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			m.logger.Warn("AuthMiddleware: Неверный формат заголовка Authorization")
			return utils.ErrorResponse(c, apperrors.ErrInvalidAuthHeader)
		}

		claims, err := m.jwtService.ValidateToken(parts[1])
		if err != nil {
			m.logger.Warn("AuthMiddleware: Ошибка валидации токена", zap.Error(err))
			return utils.ErrorResponse(c, err)
		}

		ctx := c.Request().Context()
		principal, err := m.principals.LoadPrincipal(ctx, claims.UserID)
		if err != nil {
			m.logger.Warn("AuthMiddleware: Не удалось загрузить пользователя", zap.String("userId", claims.UserID), zap.Error(err))
			return utils.ErrorResponse(c, err)
		}

		ctx = context.WithValue(ctx, contextkeys.UserIDKey, principal.User.ID)
		ctx = context.WithValue(ctx, contextkeys.PrincipalKey, principal)
		c.SetRequest(c.Request().WithContext(ctx))

		m.logger.Debug("AuthMiddleware: Пользователь аутентифицирован", zap.String("userId", principal.User.ID))
		return next(c)
	}
}

// RequireRead пропускает запрос, если у роли есть хотя бы чтение таблицы.
func RequireRead(table authz.Table) echo.MiddlewareFunc {
	return guard(func(p *authz.Principal) bool { return p.CanRead(table) })
}

func RequireWrite(table authz.Table) echo.MiddlewareFunc {
	return guard(func(p *authz.Principal) bool { return p.CanWrite(table) })
}

func RequireCapability(capability authz.Capability) echo.MiddlewareFunc {
	return guard(func(p *authz.Principal) bool { return p.HasCapability(capability) })
}

func guard(allowed func(p *authz.Principal) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, err := utils.GetPrincipalFromContext(c.Request().Context())
			if err != nil {
				return utils.ErrorResponse(c, err)
			}
			if !allowed(principal) {
				return utils.ErrorResponse(c, apperrors.ErrForbidden)
			}
			return next(c)
		}
	}
}

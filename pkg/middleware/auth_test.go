package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"shift-scheduler/internal/authz"
	"shift-scheduler/internal/entities"
	apperrors "shift-scheduler/pkg/errors"
	"shift-scheduler/pkg/service"
	"shift-scheduler/pkg/utils"
)

type staticPrincipals map[string]*authz.Principal

func (s staticPrincipals) LoadPrincipal(_ context.Context, userID string) (*authz.Principal, error) {
	principal, ok := s[userID]
	if !ok {
		return nil, apperrors.ErrUnauthorized
	}
	return principal, nil
}

func newTestServer(t *testing.T) (*echo.Echo, service.JWTService) {
	t.Helper()
	jwtSvc := service.NewJWTService("middleware-secret", time.Hour)
	principals := staticPrincipals{
		"reader": {
			User: entities.User{ID: "reader", IsActive: true},
			Role: entities.Role{ShiftRequestsLevel: int(authz.LevelRead)},
		},
	}
	mw := NewAuthMiddleware(jwtSvc, principals, zap.NewNop())

	e := echo.New()
	secure := e.Group("", mw.Auth)
	ok := func(c echo.Context) error {
		principal, err := utils.GetPrincipalFromContext(c.Request().Context())
		if err != nil {
			return err
		}
		return c.String(http.StatusOK, principal.User.ID)
	}
	secure.GET("/read", ok, RequireRead(authz.TableShiftRequests))
	secure.POST("/write", ok, RequireWrite(authz.TableShiftRequests))
	secure.GET("/export", ok, RequireCapability(authz.CapabilityExportData))
	return e, jwtSvc
}

func serve(e *echo.Echo, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAuth_RejectsMissingOrBrokenHeader(t *testing.T) {
	e, _ := newTestServer(t)

	assert.Equal(t, http.StatusUnauthorized, serve(e, http.MethodGet, "/read", "").Code)

	req := httptest.NewRequest(http.MethodGet, "/read", nil)
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	assert.Equal(t, http.StatusUnauthorized, serve(e, http.MethodGet, "/read", "garbage").Code)
}

func TestAuth_UnknownUser(t *testing.T) {
	e, jwtSvc := newTestServer(t)
	token, err := jwtSvc.GenerateToken("ghost")
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, serve(e, http.MethodGet, "/read", token).Code)
}

func TestGuards(t *testing.T) {
	e, jwtSvc := newTestServer(t)
	token, err := jwtSvc.GenerateToken("reader")
	require.NoError(t, err)

	rec := serve(e, http.MethodGet, "/read", token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "reader", rec.Body.String())

	assert.Equal(t, http.StatusForbidden, serve(e, http.MethodPost, "/write", token).Code)
	assert.Equal(t, http.StatusForbidden, serve(e, http.MethodGet, "/export", token).Code)
}

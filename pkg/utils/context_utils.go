package utils

import (
	"context"

	"shift-scheduler/internal/authz"
	"shift-scheduler/pkg/contextkeys"
	apperrors "shift-scheduler/pkg/errors"
)

func GetPrincipalFromContext(ctx context.Context) (*authz.Principal, error) {
	principal, ok := ctx.Value(contextkeys.PrincipalKey).(*authz.Principal)
	if !ok || principal == nil {
		return nil, apperrors.ErrPrincipalNotFoundInContext
	}
	return principal, nil
}

func GetUserIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(contextkeys.UserIDKey).(string)
	if !ok || userID == "" {
		return "", apperrors.ErrUnauthorized
	}
	return userID, nil
}

package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"shift-scheduler/internal/authz"
	"shift-scheduler/internal/dto"
	"shift-scheduler/internal/repositories"
	"shift-scheduler/pkg/config"
	apperrors "shift-scheduler/pkg/errors"
	"shift-scheduler/pkg/service"
	"shift-scheduler/pkg/utils"
	"shift-scheduler/pkg/validation"
)

type AuthServiceInterface interface {
	Login(ctx context.Context, payload dto.LoginDTO) (*dto.LoginResponseDTO, error)
	LoadPrincipal(ctx context.Context, userID string) (*authz.Principal, error)
}

type AuthService struct {
	userRepo   repositories.UserRepositoryInterface
	roleRepo   repositories.RoleRepositoryInterface
	cacheRepo  repositories.CacheRepositoryInterface
	jwtService service.JWTService
	validator  *validation.CustomValidator
	logger     *zap.Logger
	cfg        config.AuthConfig
}

func NewAuthService(
	userRepo repositories.UserRepositoryInterface,
	roleRepo repositories.RoleRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	jwtService service.JWTService,
	validator *validation.CustomValidator,
	logger *zap.Logger,
	cfg config.AuthConfig,
) AuthServiceInterface {
	return &AuthService{
		userRepo:   userRepo,
		roleRepo:   roleRepo,
		cacheRepo:  cacheRepo,
		jwtService: jwtService,
		validator:  validator,
		logger:     logger,
		cfg:        cfg,
	}
}

func (s *AuthService) Login(ctx context.Context, payload dto.LoginDTO) (*dto.LoginResponseDTO, error) {
	if messages := s.validator.Messages(payload); len(messages) > 0 {
		return nil, apperrors.NewValidationError(messages...)
	}
	logger := s.logger.With(zap.String("login", payload.Login))

	user, err := s.userRepo.FindUserByLogin(ctx, payload.Login)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := s.checkLockout(ctx, user.ID); err != nil {
		logger.Warn("Попытка входа в заблокированную учетную запись")
		return nil, err
	}
	if err := utils.ComparePasswords(user.Password, payload.Password); err != nil {
		s.handleFailedLoginAttempt(ctx, user.ID)
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, apperrors.ErrUserInactive
	}
	s.resetLoginAttempts(ctx, user.ID)

	role, err := s.roleRepo.FindRole(ctx, user.RoleID)
	if err != nil {
		return nil, fmt.Errorf("не удалось загрузить роль пользователя: %w", err)
	}
	token, err := s.jwtService.GenerateToken(user.ID)
	if err != nil {
		return nil, err
	}

	logger.Info("Успешный вход", zap.String("userId", user.ID), zap.String("role", role.Name))
	return &dto.LoginResponseDTO{
		AccessToken: token,
		ExpiresIn:   int64(s.jwtService.GetAccessTokenTTL().Seconds()),
		User:        *user,
		Role:        *role,
	}, nil
}

// LoadPrincipal собирает пользователя и его роль для проверок прав.
func (s *AuthService) LoadPrincipal(ctx context.Context, userID string) (*authz.Principal, error) {
	if !isEntityID(userID) {
		return nil, apperrors.ErrUnauthorized
	}
	user, err := s.userRepo.FindUser(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, apperrors.ErrUserInactive
	}
	role, err := s.roleRepo.FindRole(ctx, user.RoleID)
	if err != nil {
		return nil, fmt.Errorf("не удалось загрузить роль %s: %w", user.RoleID, err)
	}
	return &authz.Principal{User: *user, Role: *role}, nil
}

func (s *AuthService) checkLockout(ctx context.Context, userID string) error {
	if s.cacheRepo == nil {
		return nil
	}
	if _, err := s.cacheRepo.Get(ctx, fmt.Sprintf("lockout:%s", userID)); err == nil {
		return apperrors.ErrAccountLocked
	}
	return nil
}

func (s *AuthService) handleFailedLoginAttempt(ctx context.Context, userID string) {
	if s.cacheRepo == nil || s.cfg.MaxLoginAttempts <= 0 {
		return
	}
	attempts, err := s.cacheRepo.Incr(ctx, fmt.Sprintf("login_attempts:%s", userID), s.cfg.LockoutDuration)
	if err != nil {
		s.logger.Warn("Не удалось учесть неудачную попытку входа", zap.String("userId", userID), zap.Error(err))
		return
	}
	if attempts >= int64(s.cfg.MaxLoginAttempts) {
		if err := s.cacheRepo.Set(ctx, fmt.Sprintf("lockout:%s", userID), "locked", s.cfg.LockoutDuration); err != nil {
			s.logger.Warn("Не удалось заблокировать учетную запись", zap.String("userId", userID), zap.Error(err))
			return
		}
		s.logger.Warn("Учетная запись заблокирована после неудачных попыток входа",
			zap.String("userId", userID), zap.Int64("attempts", attempts))
	}
}

func (s *AuthService) resetLoginAttempts(ctx context.Context, userID string) {
	if s.cacheRepo == nil {
		return
	}
	if err := s.cacheRepo.Del(ctx, fmt.Sprintf("login_attempts:%s", userID)); err != nil {
		s.logger.Debug("Не удалось сбросить счетчик попыток входа", zap.String("userId", userID), zap.Error(err))
	}
}

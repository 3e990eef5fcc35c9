package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"shift-scheduler/internal/authz"
	"shift-scheduler/internal/dto"
	"shift-scheduler/internal/repositories"
	apperrors "shift-scheduler/pkg/errors"
)

const grantSnapshotCacheKey = "access:grants:user:%s"

type AccessScopeServiceInterface interface {
	ResolveDepartments(ctx context.Context, principal authz.Principal) (authz.Scope, error)
	ResolveWarehouses(ctx context.Context, principal authz.Principal, departmentID string) (authz.Scope, error)
	CanAccessDepartment(ctx context.Context, principal authz.Principal, departmentID string) (bool, error)
	CanAccessWarehouse(ctx context.Context, principal authz.Principal, warehouseID string) (bool, error)
	DescribeScope(ctx context.Context, principal authz.Principal) (*dto.AccessScopeDTO, error)
	InvalidateUser(ctx context.Context, userID string) error
}

// departmentSnapshot - грант на подразделение вместе со складскими грантами.
type departmentSnapshot struct {
	GrantID          string   `json:"grant_id"`
	DepartmentID     string   `json:"department_id"`
	HasAllWarehouses bool     `json:"has_all_warehouses"`
	WarehouseIDs     []string `json:"warehouse_ids"`
}

type grantSnapshot struct {
	Departments []departmentSnapshot `json:"departments"`
}

func (s grantSnapshot) department(departmentID string) (departmentSnapshot, bool) {
	for _, d := range s.Departments {
		if d.DepartmentID == departmentID {
			return d, true
		}
	}
	return departmentSnapshot{}, false
}

// AccessScopeService вычисляет область видимости по трем уровням:
// глобальный -> подразделение -> склад. Состояния сессии нет, пользователь
// передается в каждый вызов. Кеш необязателен (cacheRepo может быть nil).
type AccessScopeService struct {
	grantRepo     repositories.AccessGrantRepositoryInterface
	warehouseRepo repositories.WarehouseRepositoryInterface
	cacheRepo     repositories.CacheRepositoryInterface
	cacheTTL      time.Duration
	logger        *zap.Logger
}

func NewAccessScopeService(
	grantRepo repositories.AccessGrantRepositoryInterface,
	warehouseRepo repositories.WarehouseRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	cacheTTL time.Duration,
	logger *zap.Logger,
) AccessScopeServiceInterface {
	return &AccessScopeService{
		grantRepo:     grantRepo,
		warehouseRepo: warehouseRepo,
		cacheRepo:     cacheRepo,
		cacheTTL:      cacheTTL,
		logger:        logger,
	}
}

func hasGlobalScope(principal authz.Principal) bool {
	return principal.User.HasAllDepartments || principal.HasCapability(authz.CapabilityManageAllDepartments)
}

func (s *AccessScopeService) cacheEnabled() bool {
	return s.cacheRepo != nil && s.cacheTTL > 0
}

func (s *AccessScopeService) loadSnapshot(ctx context.Context, userID string) (grantSnapshot, error) {
	cacheKey := fmt.Sprintf(grantSnapshotCacheKey, userID)

	if s.cacheEnabled() {
		cached, err := s.cacheRepo.Get(ctx, cacheKey)
		switch {
		case err == nil:
			var snapshot grantSnapshot
			if errJSON := json.Unmarshal([]byte(cached), &snapshot); errJSON == nil {
				return snapshot, nil
			} else {
				s.logger.Warn("AccessScopeService: поврежденный снимок прав в кеше", zap.String("key", cacheKey), zap.Error(errJSON))
			}
		case errors.Is(err, repositories.ErrCacheMiss):
			s.logger.Debug("AccessScopeService: снимок прав не найден в кеше", zap.String("userId", userID))
		default:
			s.logger.Warn("AccessScopeService: кеш недоступен, читаем из БД", zap.String("userId", userID), zap.Error(err))
		}
	}

	grants, err := s.grantRepo.LoadDepartmentGrants(ctx, userID)
	if err != nil {
		return grantSnapshot{}, fmt.Errorf("не удалось загрузить гранты пользователя %s: %w", userID, err)
	}

	snapshot := grantSnapshot{Departments: make([]departmentSnapshot, 0, len(grants))}
	for _, grant := range grants {
		entry := departmentSnapshot{
			GrantID:          grant.ID,
			DepartmentID:     grant.DepartmentID,
			HasAllWarehouses: grant.HasAllWarehouses,
		}
		if !grant.HasAllWarehouses {
			warehouseGrants, err := s.grantRepo.LoadWarehouseGrants(ctx, grant.ID)
			if err != nil {
				return grantSnapshot{}, fmt.Errorf("не удалось загрузить складские гранты %s: %w", grant.ID, err)
			}
			for _, wg := range warehouseGrants {
				entry.WarehouseIDs = append(entry.WarehouseIDs, wg.WarehouseID)
			}
		}
		snapshot.Departments = append(snapshot.Departments, entry)
	}

	if s.cacheEnabled() {
		if raw, err := json.Marshal(snapshot); err == nil {
			if errSet := s.cacheRepo.Set(ctx, cacheKey, string(raw), s.cacheTTL); errSet != nil {
				s.logger.Warn("AccessScopeService: не удалось сохранить снимок прав в кеш", zap.String("userId", userID), zap.Error(errSet))
			}
		}
	}
	return snapshot, nil
}

func (s *AccessScopeService) ResolveDepartments(ctx context.Context, principal authz.Principal) (authz.Scope, error) {
	// Неактивный пользователь получает пустую область даже при has_all_departments
	// и manage_all_departments: отключенная учетная запись ничего не видит.
	if !principal.User.IsActive {
		return authz.SetScope(), nil
	}
	if hasGlobalScope(principal) {
		return authz.AllScope(), nil
	}

	snapshot, err := s.loadSnapshot(ctx, principal.User.ID)
	if err != nil {
		return authz.Scope{}, err
	}
	ids := make([]string, 0, len(snapshot.Departments))
	for _, d := range snapshot.Departments {
		ids = append(ids, d.DepartmentID)
	}
	return authz.SetScope(ids...), nil
}

// ResolveWarehouses - для подразделения вне области видимости всегда пустой набор.
// Грант без складов означает "нет доступа", а не "все склады".
func (s *AccessScopeService) ResolveWarehouses(ctx context.Context, principal authz.Principal, departmentID string) (authz.Scope, error) {
	// Отключенная учетная запись: складов нет независимо от глобальных флагов.
	if !principal.User.IsActive {
		return authz.SetScope(), nil
	}
	if hasGlobalScope(principal) {
		return authz.AllScope(), nil
	}

	snapshot, err := s.loadSnapshot(ctx, principal.User.ID)
	if err != nil {
		return authz.Scope{}, err
	}
	grant, ok := snapshot.department(departmentID)
	if !ok {
		return authz.SetScope(), nil
	}
	if grant.HasAllWarehouses {
		return authz.AllScope(), nil
	}
	return authz.SetScope(grant.WarehouseIDs...), nil
}

func (s *AccessScopeService) CanAccessDepartment(ctx context.Context, principal authz.Principal, departmentID string) (bool, error) {
	scope, err := s.ResolveDepartments(ctx, principal)
	if err != nil {
		return false, err
	}
	return scope.Contains(departmentID), nil
}

// CanAccessWarehouse сначала проверяет подразделение-владельца склада.
// Складские гранты без доступа к подразделению ничего не дают.
func (s *AccessScopeService) CanAccessWarehouse(ctx context.Context, principal authz.Principal, warehouseID string) (bool, error) {
	departmentID, err := s.warehouseRepo.LoadWarehouseOwningDepartment(ctx, warehouseID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	allowed, err := s.CanAccessDepartment(ctx, principal, departmentID)
	if err != nil || !allowed {
		return false, err
	}

	warehouses, err := s.ResolveWarehouses(ctx, principal, departmentID)
	if err != nil {
		return false, err
	}
	return warehouses.Contains(warehouseID), nil
}

func (s *AccessScopeService) DescribeScope(ctx context.Context, principal authz.Principal) (*dto.AccessScopeDTO, error) {
	departments, err := s.ResolveDepartments(ctx, principal)
	if err != nil {
		return nil, err
	}

	result := &dto.AccessScopeDTO{
		UserID:       principal.User.ID,
		Departments:  departments,
		Capabilities: []authz.Capability{},
	}
	for _, capability := range authz.Capabilities() {
		if principal.HasCapability(capability) {
			result.Capabilities = append(result.Capabilities, capability)
		}
	}

	if departments.IsAll() {
		return result, nil
	}
	result.Warehouses = make(map[string]authz.Scope, len(departments.IDs()))
	for _, departmentID := range departments.IDs() {
		warehouses, err := s.ResolveWarehouses(ctx, principal, departmentID)
		if err != nil {
			return nil, err
		}
		result.Warehouses[departmentID] = warehouses
	}
	return result, nil
}

func (s *AccessScopeService) InvalidateUser(ctx context.Context, userID string) error {
	if s.cacheRepo == nil {
		return nil
	}
	if err := s.cacheRepo.Del(ctx, fmt.Sprintf(grantSnapshotCacheKey, userID)); err != nil {
		s.logger.Error("AccessScopeService: ошибка инвалидации кеша прав", zap.String("userId", userID), zap.Error(err))
		return err
	}
	s.logger.Info("AccessScopeService: кеш прав пользователя инвалидирован", zap.String("userId", userID))
	return nil
}

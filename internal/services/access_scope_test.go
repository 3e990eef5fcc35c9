package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"shift-scheduler/internal/authz"
	"shift-scheduler/internal/entities"
	"shift-scheduler/internal/repositories"
)

type mockCache struct {
	mock.Mock
}

func (m *mockCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return m.Called(ctx, key, value, expiration).Error(0)
}

func (m *mockCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *mockCache) Del(ctx context.Context, keys ...string) error {
	return m.Called(ctx, keys).Error(0)
}

func (m *mockCache) Incr(ctx context.Context, key string, expiration time.Duration) (int64, error) {
	args := m.Called(ctx, key, expiration)
	return args.Get(0).(int64), args.Error(1)
}

type scopeFixture struct {
	grants     *memGrantRepo
	warehouses *memWarehouseRepo
	service    AccessScopeServiceInterface
	user       entities.User
	d1, d2     string
	w1a, w1b   string
	w2         string
}

func newScopeFixture(cache repositories.CacheRepositoryInterface) *scopeFixture {
	f := &scopeFixture{
		grants: newMemGrantRepo(),
		user:   entities.User{ID: uuid.NewString(), IsActive: true},
		d1:     uuid.NewString(),
		d2:     uuid.NewString(),
		w1a:    uuid.NewString(),
		w1b:    uuid.NewString(),
		w2:     uuid.NewString(),
	}
	f.warehouses = &memWarehouseRepo{owners: map[string]string{f.w1a: f.d1, f.w1b: f.d1, f.w2: f.d2}}
	f.service = NewAccessScopeService(f.grants, f.warehouses, cache, time.Minute, zap.NewNop())
	return f
}

func (f *scopeFixture) principal() authz.Principal {
	return authz.Principal{User: f.user}
}

func TestResolveDepartments_AllOnlyForGlobalFlagOrCapability(t *testing.T) {
	f := newScopeFixture(nil)
	ctx := context.Background()
	f.grants.grantDepartment(f.user.ID, f.d1, false)

	scope, err := f.service.ResolveDepartments(ctx, f.principal())
	require.NoError(t, err)
	assert.False(t, scope.IsAll())
	assert.Equal(t, []string{f.d1}, scope.IDs())

	flagged := f.principal()
	flagged.User.HasAllDepartments = true
	scope, err = f.service.ResolveDepartments(ctx, flagged)
	require.NoError(t, err)
	assert.True(t, scope.IsAll())

	capable := f.principal()
	capable.Role.CanManageAllDepartments = true
	scope, err = f.service.ResolveDepartments(ctx, capable)
	require.NoError(t, err)
	assert.True(t, scope.IsAll())

	warehouses, err := f.service.ResolveWarehouses(ctx, capable, f.d2)
	require.NoError(t, err)
	assert.True(t, warehouses.IsAll())
}

func TestResolveDepartments_NoGrantsIsEmpty(t *testing.T) {
	f := newScopeFixture(nil)

	scope, err := f.service.ResolveDepartments(context.Background(), f.principal())

	require.NoError(t, err)
	assert.True(t, scope.IsEmpty())
}

func TestResolveDepartments_InactiveUserSeesNothing(t *testing.T) {
	f := newScopeFixture(nil)
	p := f.principal()
	p.User.IsActive = false
	p.User.HasAllDepartments = true
	p.Role.CanManageAllDepartments = true
	f.grants.grantDepartment(f.user.ID, f.d1, true)

	scope, err := f.service.ResolveDepartments(context.Background(), p)
	require.NoError(t, err)
	assert.True(t, scope.IsEmpty())

	warehouses, err := f.service.ResolveWarehouses(context.Background(), p, f.d1)
	require.NoError(t, err)
	assert.False(t, warehouses.IsAll())
	assert.True(t, warehouses.IsEmpty())
}

func TestResolveWarehouses_GrantWithoutWarehousesIsEmptyNotAll(t *testing.T) {
	f := newScopeFixture(nil)
	f.grants.grantDepartment(f.user.ID, f.d1, false)

	scope, err := f.service.ResolveWarehouses(context.Background(), f.principal(), f.d1)

	require.NoError(t, err)
	assert.False(t, scope.IsAll())
	assert.True(t, scope.IsEmpty())
}

func TestResolveWarehouses_ExplicitAndAll(t *testing.T) {
	f := newScopeFixture(nil)
	ctx := context.Background()
	grantID := f.grants.grantDepartment(f.user.ID, f.d1, false)
	f.grants.grantWarehouse(grantID, f.w1a)
	f.grants.grantDepartment(f.user.ID, f.d2, true)

	scope, err := f.service.ResolveWarehouses(ctx, f.principal(), f.d1)
	require.NoError(t, err)
	assert.Equal(t, []string{f.w1a}, scope.IDs())

	scope, err = f.service.ResolveWarehouses(ctx, f.principal(), f.d2)
	require.NoError(t, err)
	assert.True(t, scope.IsAll())

	scope, err = f.service.ResolveWarehouses(ctx, f.principal(), uuid.NewString())
	require.NoError(t, err)
	assert.True(t, scope.IsEmpty())
}

func TestCanAccess_DepartmentGrantWithoutWarehouses(t *testing.T) {
	f := newScopeFixture(nil)
	ctx := context.Background()
	f.grants.grantDepartment(f.user.ID, f.d1, false)

	allowed, err := f.service.CanAccessDepartment(ctx, f.principal(), f.d1)
	require.NoError(t, err)
	assert.True(t, allowed)

	for _, warehouseID := range []string{f.w1a, f.w1b} {
		allowed, err = f.service.CanAccessWarehouse(ctx, f.principal(), warehouseID)
		require.NoError(t, err)
		assert.False(t, allowed)
	}
}

func TestCanAccessWarehouse_DeniedWhenDepartmentDenied(t *testing.T) {
	f := newScopeFixture(nil)
	// Складской грант на склад чужого подразделения не дает доступа.
	grantID := f.grants.grantDepartment(f.user.ID, f.d1, false)
	f.grants.grantWarehouse(grantID, f.w2)

	allowed, err := f.service.CanAccessWarehouse(context.Background(), f.principal(), f.w2)

	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestCanAccessWarehouse_UnknownWarehouse(t *testing.T) {
	f := newScopeFixture(nil)
	p := f.principal()
	p.User.HasAllDepartments = true

	allowed, err := f.service.CanAccessWarehouse(context.Background(), p, uuid.NewString())

	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestDescribeScope(t *testing.T) {
	f := newScopeFixture(nil)
	grantID := f.grants.grantDepartment(f.user.ID, f.d1, false)
	f.grants.grantWarehouse(grantID, f.w1b)
	p := f.principal()
	p.Role.CanViewReports = true

	described, err := f.service.DescribeScope(context.Background(), p)

	require.NoError(t, err)
	assert.Equal(t, []string{f.d1}, described.Departments.IDs())
	require.Contains(t, described.Warehouses, f.d1)
	assert.Equal(t, []string{f.w1b}, described.Warehouses[f.d1].IDs())
	assert.Equal(t, []authz.Capability{authz.CapabilityViewReports}, described.Capabilities)
}

func TestScopeCache_MissThenHit(t *testing.T) {
	cache := &mockCache{}
	f := newScopeFixture(cache)
	ctx := context.Background()
	f.grants.grantDepartment(f.user.ID, f.d1, true)
	key := "access:grants:user:" + f.user.ID

	var stored string
	cache.On("Get", ctx, key).Return("", repositories.ErrCacheMiss).Once()
	cache.On("Set", ctx, key, mock.AnythingOfType("string"), time.Minute).
		Run(func(args mock.Arguments) { stored = args.String(2) }).
		Return(nil).Once()

	scope, err := f.service.ResolveDepartments(ctx, f.principal())
	require.NoError(t, err)
	assert.Equal(t, []string{f.d1}, scope.IDs())
	assert.Equal(t, 1, f.grants.loads)

	cache.On("Get", ctx, key).Return(stored, nil).Once()
	warehouses, err := f.service.ResolveWarehouses(ctx, f.principal(), f.d1)
	require.NoError(t, err)
	assert.True(t, warehouses.IsAll())
	assert.Equal(t, 1, f.grants.loads)

	cache.AssertExpectations(t)
}

func TestScopeCache_FailureFallsBackToRepository(t *testing.T) {
	cache := &mockCache{}
	f := newScopeFixture(cache)
	ctx := context.Background()
	f.grants.grantDepartment(f.user.ID, f.d1, false)

	cache.On("Get", ctx, mock.Anything).Return("", errors.New("redis down"))
	cache.On("Set", ctx, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("redis down"))

	scope, err := f.service.ResolveDepartments(ctx, f.principal())

	require.NoError(t, err)
	assert.Equal(t, []string{f.d1}, scope.IDs())
}

func TestInvalidateUser(t *testing.T) {
	cache := &mockCache{}
	f := newScopeFixture(cache)
	ctx := context.Background()
	cache.On("Del", ctx, []string{"access:grants:user:" + f.user.ID}).Return(nil).Once()

	require.NoError(t, f.service.InvalidateUser(ctx, f.user.ID))
	cache.AssertExpectations(t)

	withoutCache := newScopeFixture(nil)
	assert.NoError(t, withoutCache.service.InvalidateUser(ctx, f.user.ID))
}

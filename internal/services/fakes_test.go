package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"shift-scheduler/internal/authz"
	"shift-scheduler/internal/dto"
	"shift-scheduler/internal/entities"
	apperrors "shift-scheduler/pkg/errors"
	"shift-scheduler/pkg/eventbus"
)

// fakeTxManager выполняет функцию без настоящей транзакции.
type fakeTxManager struct {
	calls int
}

func (f *fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

// memRequestRepo - хранилище заявок в памяти.
type memRequestRepo struct {
	mu    sync.Mutex
	items map[string]entities.ShiftRequest
	order []string
	locks int

	persistErr    error
	failEquipment string
}

func newMemRequestRepo() *memRequestRepo {
	return &memRequestRepo{items: make(map[string]entities.ShiftRequest)}
}

func (r *memRequestRepo) add(request entities.ShiftRequest) entities.ShiftRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	request.Date = entities.SlotDate(request.Date)
	r.items[request.ID] = request
	r.order = append(r.order, request.ID)
	return request
}

func (r *memRequestRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

func (r *memRequestRepo) get(id string) entities.ShiftRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.items[id]
}

func (r *memRequestRepo) LoadSiblingRequests(_ context.Context, date time.Time, shift entities.Shift) ([]entities.ShiftRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	probe := entities.ShiftRequest{Date: date, Shift: shift}
	var result []entities.ShiftRequest
	for _, id := range r.order {
		if item := r.items[id]; item.SameSlot(probe) {
			result = append(result, item)
		}
	}
	return result, nil
}

func (r *memRequestRepo) LoadRequestByID(_ context.Context, id string) (*entities.ShiftRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &item, nil
}

func (r *memRequestRepo) PersistNewRequest(_ context.Context, request *entities.ShiftRequest) (string, error) {
	if r.persistErr != nil {
		return "", r.persistErr
	}
	if r.failEquipment != "" && request.EquipmentID == r.failEquipment {
		return "", errors.New("запись недоступна")
	}
	stored := r.add(*request)
	request.ID = stored.ID
	return stored.ID, nil
}

func (r *memRequestRepo) PersistUpdatedRequest(_ context.Context, request *entities.ShiftRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	prior, ok := r.items[request.ID]
	if !ok || prior.Blocked {
		return apperrors.ErrAlreadyBlocked
	}
	r.items[request.ID] = *request
	return nil
}

func (r *memRequestRepo) MarkBlocked(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	if item.Blocked {
		return apperrors.ErrAlreadyBlocked
	}
	item.Blocked = true
	r.items[id] = item
	return nil
}

func (r *memRequestRepo) LockSlot(_ context.Context, _ time.Time, _ entities.Shift) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locks++
	return nil
}

// memEdgeRepo - правила зависимостей в памяти.
type memEdgeRepo struct {
	edges   []entities.DependencyEdge
	loadErr error
}

func (r *memEdgeRepo) LoadDependencyEdges(_ context.Context, mainEquipmentID string) ([]entities.DependencyEdge, error) {
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	var result []entities.DependencyEdge
	for _, edge := range r.edges {
		if edge.MainEquipmentID == mainEquipmentID {
			result = append(result, edge)
		}
	}
	return result, nil
}

func (r *memEdgeRepo) FindDependencyEdge(_ context.Context, id string) (*entities.DependencyEdge, error) {
	for _, edge := range r.edges {
		if edge.ID == id {
			e := edge
			return &e, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *memEdgeRepo) CreateDependencyEdge(_ context.Context, edge *entities.DependencyEdge) error {
	for _, existing := range r.edges {
		if existing.MainEquipmentID == edge.MainEquipmentID && existing.DependentEquipmentID == edge.DependentEquipmentID {
			return apperrors.ErrConflict
		}
	}
	if edge.ID == "" {
		edge.ID = uuid.NewString()
	}
	r.edges = append(r.edges, *edge)
	return nil
}

func (r *memEdgeRepo) UpdateDependencyEdge(_ context.Context, edge *entities.DependencyEdge) error {
	for i, existing := range r.edges {
		if existing.ID == edge.ID {
			r.edges[i] = *edge
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func (r *memEdgeRepo) DeleteDependencyEdge(_ context.Context, id string) error {
	for i, existing := range r.edges {
		if existing.ID == id {
			r.edges = append(r.edges[:i], r.edges[i+1:]...)
			return nil
		}
	}
	return apperrors.ErrNotFound
}

// memEquipmentRepo - каталог техники в памяти.
type memEquipmentRepo struct {
	items map[string]entities.Equipment
}

func newMemEquipmentRepo(items ...entities.Equipment) *memEquipmentRepo {
	repo := &memEquipmentRepo{items: make(map[string]entities.Equipment)}
	for _, item := range items {
		repo.items[item.ID] = item
	}
	return repo
}

func (r *memEquipmentRepo) ListEquipment(_ context.Context, onlyActive bool) ([]entities.Equipment, error) {
	var result []entities.Equipment
	for _, item := range r.items {
		if onlyActive && !item.IsActive {
			continue
		}
		result = append(result, item)
	}
	return result, nil
}

func (r *memEquipmentRepo) FindEquipment(_ context.Context, id string) (*entities.Equipment, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &item, nil
}

func (r *memEquipmentRepo) CreateEquipment(_ context.Context, equipment *entities.Equipment) error {
	if equipment.ID == "" {
		equipment.ID = uuid.NewString()
	}
	r.items[equipment.ID] = *equipment
	return nil
}

func (r *memEquipmentRepo) SetEquipmentActive(_ context.Context, id string, active bool) error {
	item, ok := r.items[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	item.IsActive = active
	r.items[id] = item
	return nil
}

// memGrantRepo - гранты доступа в памяти.
type memGrantRepo struct {
	departments map[string]entities.DepartmentAccessGrant
	warehouses  map[string]entities.WarehouseAccessGrant
	loads       int
}

func newMemGrantRepo() *memGrantRepo {
	return &memGrantRepo{
		departments: make(map[string]entities.DepartmentAccessGrant),
		warehouses:  make(map[string]entities.WarehouseAccessGrant),
	}
}

func (r *memGrantRepo) grantDepartment(userID, departmentID string, hasAllWarehouses bool) string {
	id := uuid.NewString()
	r.departments[id] = entities.DepartmentAccessGrant{ID: id, UserID: userID, DepartmentID: departmentID, HasAllWarehouses: hasAllWarehouses}
	return id
}

func (r *memGrantRepo) grantWarehouse(grantID, warehouseID string) string {
	id := uuid.NewString()
	r.warehouses[id] = entities.WarehouseAccessGrant{ID: id, DepartmentAccessGrantID: grantID, WarehouseID: warehouseID}
	return id
}

func (r *memGrantRepo) LoadDepartmentGrants(_ context.Context, userID string) ([]entities.DepartmentAccessGrant, error) {
	r.loads++
	var result []entities.DepartmentAccessGrant
	for _, grant := range r.departments {
		if grant.UserID == userID {
			result = append(result, grant)
		}
	}
	return result, nil
}

func (r *memGrantRepo) LoadWarehouseGrants(_ context.Context, grantID string) ([]entities.WarehouseAccessGrant, error) {
	var result []entities.WarehouseAccessGrant
	for _, grant := range r.warehouses {
		if grant.DepartmentAccessGrantID == grantID {
			result = append(result, grant)
		}
	}
	return result, nil
}

func (r *memGrantRepo) FindDepartmentGrant(_ context.Context, id string) (*entities.DepartmentAccessGrant, error) {
	grant, ok := r.departments[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &grant, nil
}

func (r *memGrantRepo) UpsertDepartmentGrant(_ context.Context, grant *entities.DepartmentAccessGrant) error {
	for id, existing := range r.departments {
		if existing.UserID == grant.UserID && existing.DepartmentID == grant.DepartmentID {
			existing.HasAllWarehouses = grant.HasAllWarehouses
			r.departments[id] = existing
			grant.ID = id
			return nil
		}
	}
	if grant.ID == "" {
		grant.ID = uuid.NewString()
	}
	r.departments[grant.ID] = *grant
	return nil
}

func (r *memGrantRepo) DeleteDepartmentGrant(_ context.Context, id string) error {
	if _, ok := r.departments[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.departments, id)
	for wid, grant := range r.warehouses {
		if grant.DepartmentAccessGrantID == id {
			delete(r.warehouses, wid)
		}
	}
	return nil
}

func (r *memGrantRepo) FindWarehouseGrant(_ context.Context, id string) (*entities.WarehouseAccessGrant, error) {
	grant, ok := r.warehouses[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &grant, nil
}

func (r *memGrantRepo) CreateWarehouseGrant(_ context.Context, grant *entities.WarehouseAccessGrant) error {
	for _, existing := range r.warehouses {
		if existing.DepartmentAccessGrantID == grant.DepartmentAccessGrantID && existing.WarehouseID == grant.WarehouseID {
			return apperrors.ErrConflict
		}
	}
	if grant.ID == "" {
		grant.ID = uuid.NewString()
	}
	r.warehouses[grant.ID] = *grant
	return nil
}

func (r *memGrantRepo) DeleteWarehouseGrant(_ context.Context, id string) error {
	if _, ok := r.warehouses[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.warehouses, id)
	return nil
}

// memWarehouseRepo - склады и их подразделения.
type memWarehouseRepo struct {
	owners map[string]string
}

func (r *memWarehouseRepo) FindWarehouse(_ context.Context, id string) (*entities.Warehouse, error) {
	departmentID, ok := r.owners[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &entities.Warehouse{ID: id, DepartmentID: departmentID}, nil
}

func (r *memWarehouseRepo) LoadWarehouseOwningDepartment(_ context.Context, warehouseID string) (string, error) {
	departmentID, ok := r.owners[warehouseID]
	if !ok {
		return "", apperrors.ErrNotFound
	}
	return departmentID, nil
}

// memUserRepo - пользователи в памяти.
type memUserRepo struct {
	users map[string]entities.User
}

func (r *memUserRepo) FindUser(_ context.Context, id string) (*entities.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &user, nil
}

func (r *memUserRepo) FindUserByLogin(_ context.Context, login string) (*entities.User, error) {
	for _, user := range r.users {
		if user.Login == login {
			u := user
			return &u, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *memUserRepo) SetHasAllDepartments(_ context.Context, id string, value bool) error {
	user, ok := r.users[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	user.HasAllDepartments = value
	r.users[id] = user
	return nil
}

// memRoleRepo - роли в памяти.
type memRoleRepo struct {
	roles map[string]entities.Role
}

func (r *memRoleRepo) FindRole(_ context.Context, id string) (*entities.Role, error) {
	role, ok := r.roles[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &role, nil
}

// stubScope разрешает только перечисленные склады.
type stubScope struct {
	warehouses map[string]bool
	calls      int
}

func (s *stubScope) ResolveDepartments(context.Context, authz.Principal) (authz.Scope, error) {
	return authz.SetScope(), nil
}

func (s *stubScope) ResolveWarehouses(context.Context, authz.Principal, string) (authz.Scope, error) {
	return authz.SetScope(), nil
}

func (s *stubScope) CanAccessDepartment(context.Context, authz.Principal, string) (bool, error) {
	return false, nil
}

func (s *stubScope) CanAccessWarehouse(_ context.Context, _ authz.Principal, warehouseID string) (bool, error) {
	s.calls++
	return s.warehouses[warehouseID], nil
}

func (s *stubScope) DescribeScope(context.Context, authz.Principal) (*dto.AccessScopeDTO, error) {
	return &dto.AccessScopeDTO{}, nil
}

func (s *stubScope) InvalidateUser(context.Context, string) error {
	return nil
}

// recordingBus запоминает опубликованные события.
type recordingBus struct {
	events []eventbus.Event
}

func (b *recordingBus) Publish(_ context.Context, event eventbus.Event) {
	b.events = append(b.events, event)
}

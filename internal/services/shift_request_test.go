package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"shift-scheduler/internal/authz"
	"shift-scheduler/internal/dto"
	"shift-scheduler/internal/entities"
	"shift-scheduler/internal/events"
	apperrors "shift-scheduler/pkg/errors"
	"shift-scheduler/pkg/validation"
)

type shiftServiceFixture struct {
	*resolverFixture
	singleID  string
	retiredID string
	equipment *memEquipmentRepo
	tx        *fakeTxManager
	scope     *stubScope
	bus       *recordingBus
	service   *ShiftRequestService
	userID    string
	writer    authz.Principal
}

func newShiftServiceFixture() *shiftServiceFixture {
	rf := newResolverFixture()
	f := &shiftServiceFixture{
		resolverFixture: rf,
		singleID:        uuid.NewString(),
		retiredID:       uuid.NewString(),
		tx:              &fakeTxManager{},
		scope:           &stubScope{warehouses: map[string]bool{rf.warehouse: true}},
		bus:             &recordingBus{},
		userID:          uuid.NewString(),
	}
	f.equipment = newMemEquipmentRepo(
		entities.Equipment{ID: rf.craneID, Name: "Crane", AllowMultipleUnits: true, IsActive: true},
		entities.Equipment{ID: rf.operatorID, Name: "Operator", AllowMultipleUnits: true, IsActive: true},
		entities.Equipment{ID: rf.riggerID, Name: "Rigger", AllowMultipleUnits: true, IsActive: true},
		entities.Equipment{ID: f.singleID, Name: "Экскаватор", AllowMultipleUnits: false, IsActive: true},
		entities.Equipment{ID: f.retiredID, Name: "Старый погрузчик", AllowMultipleUnits: true, IsActive: false},
	)
	f.writer = authz.Principal{
		User: entities.User{ID: f.userID, IsActive: true},
		Role: entities.Role{ShiftRequestsLevel: int(authz.LevelWrite)},
	}
	svc := NewShiftRequestService(f.tx, rf.requests, f.equipment, rf.resolver, f.scope, f.bus, validation.New(), zap.NewNop())
	f.service = svc.(*ShiftRequestService)
	f.service.now = func() time.Time { return time.Date(2024, 5, 30, 8, 0, 0, 0, time.UTC) }
	return f
}

func (f *shiftServiceFixture) create(ctx context.Context, fields dto.ShiftRequestFieldsDTO, autoProvision bool) (*dto.CreatedShiftRequestDTO, error) {
	return f.service.CreateRequest(ctx, f.writer, dto.CreateShiftRequestDTO{ShiftRequestFieldsDTO: fields, AutoProvision: autoProvision})
}

func (f *shiftServiceFixture) update(ctx context.Context, id string, fields dto.ShiftRequestFieldsDTO) error {
	return f.service.UpdateRequest(ctx, f.writer, id, dto.UpdateShiftRequestDTO{ShiftRequestFieldsDTO: fields})
}

func (f *shiftServiceFixture) fields(equipmentID string, count int) dto.ShiftRequestFieldsDTO {
	return dto.ShiftRequestFieldsDTO{
		Date:           "2024-06-01",
		Shift:          entities.ShiftDay,
		EquipmentID:    equipmentID,
		WarehouseID:    f.warehouse,
		RequestedCount: count,
	}
}

func (f *shiftServiceFixture) publishedActions() []string {
	var actions []string
	for _, event := range f.bus.events {
		if changed, ok := event.(events.ShiftRequestChangedEvent); ok {
			actions = append(actions, changed.Action)
		}
	}
	return actions
}

func TestCreateRequest_RejectsMissingDependency(t *testing.T) {
	f := newShiftServiceFixture()

	res, err := f.create(context.Background(), f.fields(f.craneID, 1), false)

	assert.Nil(t, res)
	vErr, ok := apperrors.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, []string{"Crane requires ≥1 of Operator; found 0, short by 1"}, vErr.Messages)
	assert.Zero(t, f.requests.count())
	assert.Empty(t, f.bus.events)
}

func TestCreateRequest_CraneScenario(t *testing.T) {
	f := newShiftServiceFixture()
	ctx := context.Background()

	_, err := f.create(ctx, f.fields(f.craneID, 1), false)
	require.Error(t, err)

	operator, err := f.create(ctx, f.fields(f.operatorID, 1), false)
	require.NoError(t, err)
	require.NotEmpty(t, operator.ID)

	check, err := f.service.ValidateRequest(ctx, f.fields(f.craneID, 1), "")
	require.NoError(t, err)
	assert.True(t, check.Valid)
	assert.Empty(t, check.Messages)

	crane, err := f.create(ctx, f.fields(f.craneID, 1), false)
	require.NoError(t, err)

	stored := f.requests.get(crane.ID)
	assert.Equal(t, f.userID, stored.CreatedByUserID)
	assert.False(t, stored.Blocked)
	assert.Equal(t, time.Date(2024, 5, 30, 8, 0, 0, 0, time.UTC), stored.CreatedAt)
	assert.Equal(t, 3, f.requests.locks)
}

func TestCreateRequest_FieldErrorsReportedTogether(t *testing.T) {
	f := newShiftServiceFixture()
	f.writer.User.ID = "not-a-uuid"

	_, err := f.create(context.Background(), dto.ShiftRequestFieldsDTO{
		Date:           "01.06.2024",
		Shift:          entities.Shift(7),
		EquipmentID:    "crane",
		WarehouseID:    f.warehouse,
		RequestedCount: 0,
	}, false)

	vErr, ok := apperrors.AsValidationError(err)
	require.True(t, ok)
	assert.Len(t, vErr.Messages, 5)
	assert.Zero(t, f.tx.calls)
}

func TestCreateRequest_RequiresWriteAccess(t *testing.T) {
	f := newShiftServiceFixture()
	reader := f.writer
	reader.Role.ShiftRequestsLevel = int(authz.LevelRead)

	_, err := f.service.CreateRequest(context.Background(), reader, dto.CreateShiftRequestDTO{ShiftRequestFieldsDTO: f.fields(f.operatorID, 1)})

	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	assert.Zero(t, f.requests.count())
}

func TestCreateRequest_WarehouseOutOfScope(t *testing.T) {
	f := newShiftServiceFixture()
	f.scope.warehouses[f.warehouse] = false

	_, err := f.create(context.Background(), f.fields(f.operatorID, 1), false)

	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	assert.Zero(t, f.tx.calls)
	assert.Zero(t, f.requests.count())
	assert.Empty(t, f.bus.events)
}

func TestCreateRequest_SingleUnitEquipment(t *testing.T) {
	f := newShiftServiceFixture()
	ctx := context.Background()

	_, err := f.create(ctx, f.fields(f.singleID, 2), false)
	vErr, ok := apperrors.AsValidationError(err)
	require.True(t, ok)
	require.Len(t, vErr.Messages, 1)
	assert.Contains(t, vErr.Messages[0], "requested_count")
	assert.Zero(t, f.requests.count())

	_, err = f.create(ctx, f.fields(f.singleID, 1), false)
	require.NoError(t, err)
	assert.Equal(t, 1, f.requests.count())
}

func TestCreateRequest_InactiveOrUnknownEquipment(t *testing.T) {
	f := newShiftServiceFixture()
	ctx := context.Background()

	_, err := f.create(ctx, f.fields(f.retiredID, 1), false)
	vErr, ok := apperrors.AsValidationError(err)
	require.True(t, ok)
	require.Len(t, vErr.Messages, 1)
	assert.Contains(t, vErr.Messages[0], "выведена из эксплуатации")

	_, err = f.create(ctx, f.fields(uuid.NewString(), 1), false)
	vErr, ok = apperrors.AsValidationError(err)
	require.True(t, ok)
	require.Len(t, vErr.Messages, 1)
	assert.Contains(t, vErr.Messages[0], "не найдена")

	assert.Zero(t, f.requests.count())
	assert.Zero(t, f.tx.calls)
}

func TestCreateRequest_AutoProvisionCreatesCompanion(t *testing.T) {
	f := newShiftServiceFixture()

	res, err := f.create(context.Background(), f.fields(f.craneID, 1), true)

	require.NoError(t, err)
	require.Len(t, res.AutoProvisionedIDs, 1)
	companion := f.requests.get(res.AutoProvisionedIDs[0])
	assert.Equal(t, f.operatorID, companion.EquipmentID)
	assert.Equal(t, res.ID, companion.GeneratedFromRequestID.String)
	assert.Equal(t, 2, f.requests.count())
	assert.Equal(t, []string{events.ShiftRequestCreated, events.ShiftRequestAutoProvisioned}, f.publishedActions())
}

func TestCreateRequest_AutoProvisionRejectsUnderCountedSibling(t *testing.T) {
	f := newShiftServiceFixture()
	ctx := context.Background()
	f.edges.edges[0].RequiredCount = 3
	f.requests.add(f.request(f.operatorID, 1))

	res, err := f.create(ctx, f.fields(f.craneID, 1), true)

	assert.Nil(t, res)
	vErr, ok := apperrors.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, []string{"Crane requires ≥3 of Operator; found 1, short by 2"}, vErr.Messages)
	assert.Equal(t, 1, f.requests.count())
	assert.Empty(t, f.bus.events)
}

func TestCreateRequest_AutoProvisionCoversShortfallFromOtherWarehouse(t *testing.T) {
	f := newShiftServiceFixture()
	ctx := context.Background()
	f.edges.edges[0].RequiredCount = 3
	elsewhere := f.request(f.operatorID, 1)
	elsewhere.WarehouseID = uuid.NewString()
	f.requests.add(elsewhere)

	res, err := f.create(ctx, f.fields(f.craneID, 1), true)
	require.NoError(t, err)
	require.Len(t, res.AutoProvisionedIDs, 1)
	assert.Equal(t, 3, f.requests.get(res.AutoProvisionedIDs[0]).RequestedCount)

	check, err := f.service.ValidateRequest(ctx, f.fields(f.craneID, 1), res.ID)
	require.NoError(t, err)
	assert.True(t, check.Valid)
}

func TestCreateRequest_AutoProvisionRequiredCompanionFailureFails(t *testing.T) {
	f := newShiftServiceFixture()
	f.requests.failEquipment = f.operatorID

	res, err := f.create(context.Background(), f.fields(f.craneID, 1), true)

	assert.Nil(t, res)
	require.Error(t, err)
	_, isValidation := apperrors.AsValidationError(err)
	assert.False(t, isValidation)
	assert.Empty(t, f.bus.events)
}

func TestCreateRequest_OptionalCompanionFailureDoesNotFailMain(t *testing.T) {
	f := newShiftServiceFixture()
	f.requests.failEquipment = f.operatorID
	elsewhere := f.request(f.operatorID, 1)
	elsewhere.WarehouseID = uuid.NewString()
	f.requests.add(elsewhere)

	res, err := f.create(context.Background(), f.fields(f.craneID, 1), true)

	require.NoError(t, err)
	assert.NotEmpty(t, res.ID)
	assert.Empty(t, res.AutoProvisionedIDs)
	assert.Equal(t, 2, f.requests.count())
	assert.Equal(t, []string{events.ShiftRequestCreated}, f.publishedActions())
}

func TestCreateRequest_CancelledBeforePersist(t *testing.T) {
	f := newShiftServiceFixture()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.create(ctx, f.fields(f.operatorID, 1), false)

	assert.True(t, errors.Is(err, context.Canceled))
	assert.Zero(t, f.requests.count())
}

func TestCreateRequest_PersistenceErrorPropagates(t *testing.T) {
	f := newShiftServiceFixture()
	f.requests.persistErr = errors.New("connection reset")

	_, err := f.create(context.Background(), f.fields(f.operatorID, 1), false)

	assert.EqualError(t, err, "connection reset")
}

func TestUpdateRequest_NotFoundIsDistinctFromValidation(t *testing.T) {
	f := newShiftServiceFixture()
	ctx := context.Background()

	err := f.update(ctx, uuid.NewString(), f.fields(f.operatorID, 1))
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, isValidation := apperrors.AsValidationError(err)
	assert.False(t, isValidation)

	err = f.update(ctx, "garbage", f.fields(f.operatorID, 1))
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	existing := f.requests.add(f.request(f.operatorID, 1))
	err = f.update(ctx, existing.ID, f.fields(f.craneID, 1))
	_, isValidation = apperrors.AsValidationError(err)
	assert.True(t, isValidation)
}

func TestUpdateRequest_KeepsAuditFields(t *testing.T) {
	f := newShiftServiceFixture()
	createdAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	author := uuid.NewString()
	seed := f.request(f.operatorID, 1)
	seed.CreatedAt = createdAt
	seed.CreatedByUserID = author
	existing := f.requests.add(seed)

	fields := f.fields(f.operatorID, 3)
	fields.DriverName = "Иванов"
	require.NoError(t, f.update(context.Background(), existing.ID, fields))

	stored := f.requests.get(existing.ID)
	assert.Equal(t, 3, stored.RequestedCount)
	assert.Equal(t, "Иванов", stored.DriverName)
	assert.Equal(t, author, stored.CreatedByUserID)
	assert.Equal(t, createdAt, stored.CreatedAt)
	assert.False(t, stored.Blocked)
}

func TestUpdateRequest_EditDoesNotDependOnItself(t *testing.T) {
	f := newShiftServiceFixture()
	existing := f.requests.add(f.request(f.operatorID, 1))

	err := f.update(context.Background(), existing.ID, f.fields(f.craneID, 1))

	vErr, ok := apperrors.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, []string{"Crane requires ≥1 of Operator; found 0, short by 1"}, vErr.Messages)
	assert.Equal(t, f.operatorID, f.requests.get(existing.ID).EquipmentID)
}

func TestUpdateRequest_BlockedIsTerminal(t *testing.T) {
	f := newShiftServiceFixture()
	seed := f.request(f.operatorID, 1)
	seed.Blocked = true
	existing := f.requests.add(seed)

	err := f.update(context.Background(), existing.ID, f.fields(f.operatorID, 2))

	assert.ErrorIs(t, err, apperrors.ErrAlreadyBlocked)
	assert.Equal(t, 1, f.requests.get(existing.ID).RequestedCount)
}

func TestUpdateRequest_ChecksPriorAndNewWarehouse(t *testing.T) {
	f := newShiftServiceFixture()
	ctx := context.Background()
	existing := f.requests.add(f.request(f.operatorID, 1))

	moved := f.fields(f.operatorID, 1)
	moved.WarehouseID = uuid.NewString()
	err := f.update(ctx, existing.ID, moved)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	assert.Equal(t, f.warehouse, f.requests.get(existing.ID).WarehouseID)

	foreign := f.request(f.operatorID, 1)
	foreign.WarehouseID = uuid.NewString()
	stored := f.requests.add(foreign)
	err = f.update(ctx, stored.ID, f.fields(f.operatorID, 2))
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	assert.Equal(t, 1, f.requests.get(stored.ID).RequestedCount)
	assert.Empty(t, f.bus.events)
}

func TestUpdateRequest_EquipmentRules(t *testing.T) {
	f := newShiftServiceFixture()
	ctx := context.Background()
	legacy := f.requests.add(f.request(f.retiredID, 1))

	fields := f.fields(f.retiredID, 1)
	fields.DriverName = "Петров"
	require.NoError(t, f.update(ctx, legacy.ID, fields))
	assert.Equal(t, "Петров", f.requests.get(legacy.ID).DriverName)

	existing := f.requests.add(f.request(f.operatorID, 1))
	err := f.update(ctx, existing.ID, f.fields(f.retiredID, 1))
	_, ok := apperrors.AsValidationError(err)
	assert.True(t, ok)

	err = f.update(ctx, existing.ID, f.fields(f.singleID, 4))
	vErr, ok := apperrors.AsValidationError(err)
	require.True(t, ok)
	assert.Contains(t, vErr.Messages[0], "requested_count")
	assert.Equal(t, f.operatorID, f.requests.get(existing.ID).EquipmentID)
}

func TestBlockRequest_TwiceFails(t *testing.T) {
	f := newShiftServiceFixture()
	ctx := context.Background()
	existing := f.requests.add(f.request(f.operatorID, 1))

	require.NoError(t, f.service.BlockRequest(ctx, f.writer, existing.ID))
	assert.True(t, f.requests.get(existing.ID).Blocked)

	err := f.service.BlockRequest(ctx, f.writer, existing.ID)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyBlocked)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	assert.ErrorIs(t, f.service.BlockRequest(ctx, f.writer, uuid.NewString()), apperrors.ErrNotFound)
	assert.Equal(t, []string{events.ShiftRequestBlocked}, f.publishedActions())
}

func TestBlockRequest_WarehouseOutOfScope(t *testing.T) {
	f := newShiftServiceFixture()
	foreign := f.request(f.operatorID, 1)
	foreign.WarehouseID = uuid.NewString()
	existing := f.requests.add(foreign)

	err := f.service.BlockRequest(context.Background(), f.writer, existing.ID)

	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	assert.False(t, f.requests.get(existing.ID).Blocked)
	assert.Empty(t, f.bus.events)
}

func TestValidateRequest_ReportsViolationsWithoutPersisting(t *testing.T) {
	f := newShiftServiceFixture()

	res, err := f.service.ValidateRequest(context.Background(), f.fields(f.craneID, 1), "")

	require.NoError(t, err)
	assert.False(t, res.Valid)
	require.Len(t, res.Violations, 1)
	assert.Equal(t, 1, res.Violations[0].Shortfall)
	assert.Zero(t, f.requests.count())
}

func TestValidateRequest_EquipmentRules(t *testing.T) {
	f := newShiftServiceFixture()
	ctx := context.Background()

	res, err := f.service.ValidateRequest(ctx, f.fields(f.retiredID, 1), "")
	require.NoError(t, err)
	assert.False(t, res.Valid)
	require.Len(t, res.Messages, 1)
	assert.Contains(t, res.Messages[0], "выведена из эксплуатации")

	legacy := f.requests.add(f.request(f.retiredID, 1))
	res, err = f.service.ValidateRequest(ctx, f.fields(f.retiredID, 1), legacy.ID)
	require.NoError(t, err)
	assert.True(t, res.Valid)

	res, err = f.service.ValidateRequest(ctx, f.fields(f.singleID, 3), "")
	require.NoError(t, err)
	assert.False(t, res.Valid)
	require.Len(t, res.Messages, 1)
	assert.Contains(t, res.Messages[0], "requested_count")
}

func TestListRequests_FiltersByWarehouseScope(t *testing.T) {
	f := newShiftServiceFixture()
	ctx := context.Background()
	visible := f.requests.add(f.request(f.operatorID, 1))
	f.requests.add(f.request(f.operatorID, 2))
	hidden := f.request(f.operatorID, 1)
	hidden.WarehouseID = uuid.NewString()
	f.requests.add(hidden)
	f.scope.warehouses[f.warehouse] = true

	reader := authz.Principal{
		User: entities.User{ID: f.userID, IsActive: true},
		Role: entities.Role{ShiftRequestsLevel: int(authz.LevelRead)},
	}
	requests, err := f.service.ListRequests(ctx, reader, dto.ShiftRequestListFilterDTO{Date: "2024-06-01", Shift: entities.ShiftDay})
	require.NoError(t, err)
	require.Len(t, requests, 2)
	assert.Equal(t, visible.ID, requests[0].ID)
	assert.Equal(t, 2, f.scope.calls)

	_, err = f.service.ListRequests(ctx, authz.Principal{User: reader.User}, dto.ShiftRequestListFilterDTO{Date: "2024-06-01"})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

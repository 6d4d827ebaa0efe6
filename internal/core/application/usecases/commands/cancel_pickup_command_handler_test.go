package commands_test

import (
	"context"
	"testing"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/staff"
	"fulfillment/internal/core/domain/model/workflow"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCancelOrderRepository struct{ mock.Mock }

func (m *MockCancelOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockCancelOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockCancelOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockCancelOrderRepository) GetAllInStatus(ctx context.Context,
	status order.Status) ([]*order.Order, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

type MockCancelWorkflowRepository struct{ mock.Mock }

func (m *MockCancelWorkflowRepository) Add(ctx context.Context, l *workflow.Ledger) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *MockCancelWorkflowRepository) Update(ctx context.Context, l *workflow.Ledger) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *MockCancelWorkflowRepository) Get(ctx context.Context,
	orderID kernel.UUID) (*workflow.Ledger, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*workflow.Ledger), args.Error(1)
}

type MockCancelStaffRepository struct{ mock.Mock }

func (m *MockCancelStaffRepository) Upsert(ctx context.Context, s *staff.StaffAvailability) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockCancelStaffRepository) Get(ctx context.Context,
	staffID string) (*staff.StaffAvailability, error) {
	args := m.Called(ctx, staffID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*staff.StaffAvailability), args.Error(1)
}

func (m *MockCancelStaffRepository) GetAvailable(ctx context.Context, tenantID string,
	staffType staff.Type) ([]*staff.StaffAvailability, error) {
	args := m.Called(ctx, tenantID, staffType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*staff.StaffAvailability), args.Error(1)
}

type MockCancelUoW struct{ mock.Mock }

func (m *MockCancelUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCancelUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCancelUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCancelUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

func (m *MockCancelUoW) WorkflowRepository() ports.WorkflowRepository {
	args := m.Called()
	return args.Get(0).(ports.WorkflowRepository)
}

func (m *MockCancelUoW) StaffRepository() ports.StaffRepository {
	args := m.Called()
	return args.Get(0).(ports.StaffRepository)
}

type MockCancelUoWFactory struct{ mock.Mock }

func (m *MockCancelUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

func busyCourierRecord(t *testing.T, orderID kernel.UUID, completed int) *staff.StaffAvailability {
	t.Helper()
	now := time.Now().UTC()
	record, err := staff.RestoreStaffAvailability(staff.RestoreStaffAvailabilityParams{
		StaffID:        "courier@example.com",
		StaffType:      staff.TypeCourier,
		Status:         staff.StatusBusy,
		CurrentOrderID: &orderID,
		CompletedCount: completed,
		TenantID:       "tenant-1",
		LastUpdated:    now.Add(-time.Hour),
		ExpiresAt:      now.Add(23 * time.Hour),
	})
	require.NoError(t, err)
	return record
}

func TestCancelPickupCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	orderID := kernel.NewUUID()
	auth := testAuth(t, kernel.RoleCourier, "courier@example.com")
	cmd, err := commands.NewCancelPickupCommand(orderID, auth, "vehicle breakdown")
	require.NoError(t, err)

	testOrder := testOrderInStatus(t, orderID, order.StatusInDelivery)
	ledger := testLedger(t, orderID)
	require.NoError(t, ledger.RecordTransition(order.StatusInDelivery,
		"courier@example.com", "", time.Now().UTC()))

	courierRecord := busyCourierRecord(t, orderID, 5)

	orderRepo := new(MockCancelOrderRepository)
	workflowRepo := new(MockCancelWorkflowRepository)
	staffRepo := new(MockCancelStaffRepository)
	uow := new(MockCancelUoW)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(orderRepo).Once(),
		uow.On("WorkflowRepository").Return(workflowRepo).Once(),
		uow.On("StaffRepository").Return(staffRepo).Once(),
		orderRepo.On("Get", ctx, orderID).Return(testOrder, nil).Once(),
		workflowRepo.On("Get", ctx, orderID).Return(ledger, nil).Once(),
		staffRepo.On("Get", ctx, "courier@example.com").Return(courierRecord, nil).Once(),
		staffRepo.On("Upsert", ctx, mock.AnythingOfType("*staff.StaffAvailability")).Return(nil).Once(),
		orderRepo.On("Update", ctx, mock.AnythingOfType("*order.Order")).Return(nil).Once(),
		workflowRepo.On("Update", ctx, mock.AnythingOfType("*workflow.Ledger")).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockCancelUoWFactory)
	factory.On("Create").Return(uow).Once()

	queue := new(MockWorkQueue)
	queue.On("EnqueueAssignment", ctx, ports.AssignmentMessage{
		OrderID:   orderID.String(),
		TenantID:  "tenant-1",
		StaffType: staff.TypeCourier,
	}).Return(nil).Once()

	publisher := new(MockEventPublisher)
	publisher.On("Publish", ctx, mock.AnythingOfType("order.Event")).Return(nil).Once()

	handler := commands.NewCancelPickupCommandHandler(factory, publisher, queue, testLogger())
	err = handler.Handle(ctx, cmd)

	require.NoError(t, err)
	uow.AssertExpectations(t)
	queue.AssertExpectations(t)
	publisher.AssertExpectations(t)

	assert.Equal(t, order.StatusReady, testOrder.Status())
	assert.Empty(t, testOrder.AssignedCourier())
	assert.Nil(t, testOrder.PickupTime())

	released := staffRepo.Calls[1].Arguments[1].(*staff.StaffAvailability)
	assert.Equal(t, staff.StatusAvailable, released.Status())
	assert.Equal(t, 5, released.CompletedCount()) // no completion credit

	steps := ledger.Steps()
	closedDelivery := steps[len(steps)-2]
	assert.Equal(t, order.StatusInDelivery, closedDelivery.Status)
	assert.False(t, closedDelivery.IsOpen())
	assert.Contains(t, closedDelivery.Notes, "vehicle breakdown")

	reopened := steps[len(steps)-1]
	assert.Equal(t, order.StatusReady, reopened.Status)
	assert.Equal(t, workflow.SystemActor, reopened.AssignedTo)
	assert.True(t, reopened.IsOpen())
}

func TestCancelPickupCommandHandler_Handle_ValidationError(t *testing.T) {
	ctx := t.Context()
	cmd := commands.CancelPickupCommand{} // not constructed properly

	factory := new(MockCancelUoWFactory)
	handler := commands.NewCancelPickupCommandHandler(factory,
		new(MockEventPublisher), new(MockWorkQueue), testLogger())
	err := handler.Handle(ctx, cmd)

	require.Error(t, err)
	require.ErrorIs(t, err, commands.ErrCancelPickupCommandIsNotConstructed)
	factory.AssertNotCalled(t, "Create")
}

func TestCancelPickupCommandHandler_Handle_ReasonRequired(t *testing.T) {
	auth := testAuth(t, kernel.RoleCourier, "courier@example.com")
	_, err := commands.NewCancelPickupCommand(kernel.NewUUID(), auth, "")

	require.Error(t, err)
	require.ErrorIs(t, err, commands.ErrReasonIsRequired)
}

func TestCancelPickupCommandHandler_Handle_OtherCourierRejected(t *testing.T) {
	ctx := t.Context()
	orderID := kernel.NewUUID()
	auth := testAuth(t, kernel.RoleCourier, "other@example.com")
	cmd, err := commands.NewCancelPickupCommand(orderID, auth, "wrong address")
	require.NoError(t, err)

	testOrder := testOrderInStatus(t, orderID, order.StatusInDelivery)

	orderRepo := new(MockCancelOrderRepository)
	uow := new(MockCancelUoW)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(orderRepo).Once(),
		uow.On("WorkflowRepository").Return(new(MockCancelWorkflowRepository)).Once(),
		uow.On("StaffRepository").Return(new(MockCancelStaffRepository)).Once(),
		orderRepo.On("Get", ctx, orderID).Return(testOrder, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockCancelUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewCancelPickupCommandHandler(factory,
		new(MockEventPublisher), new(MockWorkQueue), testLogger())
	err = handler.Handle(ctx, cmd)

	require.Error(t, err)
	require.ErrorIs(t, err, errs.ErrUnauthorized)
	assert.Equal(t, order.StatusInDelivery, testOrder.Status())
}

func TestCancelPickupCommandHandler_Handle_NotInDelivery(t *testing.T) {
	ctx := t.Context()
	orderID := kernel.NewUUID()
	auth := testAuth(t, kernel.RoleAdmin, "admin@example.com")
	cmd, err := commands.NewCancelPickupCommand(orderID, auth, "customer canceled")
	require.NoError(t, err)

	testOrder := testOrderInStatus(t, orderID, order.StatusReady)

	orderRepo := new(MockCancelOrderRepository)
	uow := new(MockCancelUoW)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(orderRepo).Once(),
		uow.On("WorkflowRepository").Return(new(MockCancelWorkflowRepository)).Once(),
		uow.On("StaffRepository").Return(new(MockCancelStaffRepository)).Once(),
		orderRepo.On("Get", ctx, orderID).Return(testOrder, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockCancelUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewCancelPickupCommandHandler(factory,
		new(MockEventPublisher), new(MockWorkQueue), testLogger())
	err = handler.Handle(ctx, cmd)

	require.Error(t, err)
	require.ErrorIs(t, err, errs.ErrInvalidTransition)
}

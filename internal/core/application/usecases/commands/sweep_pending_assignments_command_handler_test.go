package commands_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/staff"
	"fulfillment/internal/core/ports"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSweepOrderRepository struct{ mock.Mock }

func (m *MockSweepOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockSweepOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockSweepOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockSweepOrderRepository) GetAllInStatus(ctx context.Context,
	status order.Status) ([]*order.Order, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

type MockSweepUoW struct{ mock.Mock }

func (m *MockSweepUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockSweepUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockSweepUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockSweepUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

func (m *MockSweepUoW) WorkflowRepository() ports.WorkflowRepository {
	args := m.Called()
	return args.Get(0).(ports.WorkflowRepository)
}

func (m *MockSweepUoW) StaffRepository() ports.StaffRepository {
	args := m.Called()
	return args.Get(0).(ports.StaffRepository)
}

type MockSweepUoWFactory struct{ mock.Mock }

func (m *MockSweepUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

func TestSweepPendingAssignmentsCommandHandler_Handle_EnqueuesStuckOrders(t *testing.T) {
	ctx := t.Context()
	cmd := commands.NewSweepPendingAssignmentsCommand()

	stuckConfirmedID := kernel.NewUUID()
	stuckConfirmed := testOrderInStatus(t, stuckConfirmedID, order.StatusConfirmed)

	stuckReadyID := kernel.NewUUID()
	stuckReady := testOrderInStatus(t, stuckReadyID, order.StatusReady)

	orderRepo := new(MockSweepOrderRepository)
	uow := new(MockSweepUoW)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(orderRepo).Once(),
		orderRepo.On("GetAllInStatus", ctx, order.StatusConfirmed).
			Return([]*order.Order{stuckConfirmed}, nil).
			Once(),
		orderRepo.On("GetAllInStatus", ctx, order.StatusReady).
			Return([]*order.Order{stuckReady}, nil).
			Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockSweepUoWFactory)
	factory.On("Create").Return(uow).Once()

	queue := new(MockWorkQueue)
	queue.On("EnqueueAssignment", ctx, ports.AssignmentMessage{
		OrderID:   stuckConfirmedID.String(),
		TenantID:  "tenant-1",
		StaffType: staff.TypeChef,
	}).Return(nil).Once()
	queue.On("EnqueueAssignment", ctx, ports.AssignmentMessage{
		OrderID:   stuckReadyID.String(),
		TenantID:  "tenant-1",
		StaffType: staff.TypeCourier,
	}).Return(nil).Once()

	handler := commands.NewSweepPendingAssignmentsCommandHandler(factory, queue, testLogger())
	err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	queue.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestSweepPendingAssignmentsCommandHandler_Handle_SkipsStaffedOrders(t *testing.T) {
	ctx := t.Context()
	cmd := commands.NewSweepPendingAssignmentsCommand()

	// A confirmed order mid-assignment already has its chef recorded.
	staffedID := kernel.NewUUID()
	staffed, err := order.RestoreOrder(order.RestoreOrderParams{
		ID:              staffedID,
		TenantID:        "tenant-1",
		CustomerID:      "customer-1",
		Items:           testItems(t),
		DeliveryAddress: "12 Baker Street",
		Status:          order.StatusConfirmed,
		AssignedChef:    "chef@example.com",
		CreatedAt:       time.Now().UTC().Add(-time.Hour),
		UpdatedAt:       time.Now().UTC(),
	})
	require.NoError(t, err)

	orderRepo := new(MockSweepOrderRepository)
	uow := new(MockSweepUoW)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(orderRepo).Once(),
		orderRepo.On("GetAllInStatus", ctx, order.StatusConfirmed).
			Return([]*order.Order{staffed}, nil).
			Once(),
		orderRepo.On("GetAllInStatus", ctx, order.StatusReady).
			Return([]*order.Order{}, nil).
			Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockSweepUoWFactory)
	factory.On("Create").Return(uow).Once()

	queue := new(MockWorkQueue)

	handler := commands.NewSweepPendingAssignmentsCommandHandler(factory, queue, testLogger())
	err = handler.Handle(ctx, cmd)

	require.NoError(t, err)
	queue.AssertNotCalled(t, "EnqueueAssignment", ctx, mock.Anything)
}

func TestSweepPendingAssignmentsCommandHandler_Handle_EnqueueFailureContinues(t *testing.T) {
	ctx := t.Context()
	cmd := commands.NewSweepPendingAssignmentsCommand()

	firstID := kernel.NewUUID()
	first := testOrderInStatus(t, firstID, order.StatusConfirmed)
	secondID := kernel.NewUUID()
	second := testOrderInStatus(t, secondID, order.StatusConfirmed)

	orderRepo := new(MockSweepOrderRepository)
	uow := new(MockSweepUoW)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(orderRepo).Once(),
		orderRepo.On("GetAllInStatus", ctx, order.StatusConfirmed).
			Return([]*order.Order{first, second}, nil).
			Once(),
		orderRepo.On("GetAllInStatus", ctx, order.StatusReady).
			Return([]*order.Order{}, nil).
			Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockSweepUoWFactory)
	factory.On("Create").Return(uow).Once()

	queue := new(MockWorkQueue)
	queue.On("EnqueueAssignment", ctx, ports.AssignmentMessage{
		OrderID:   firstID.String(),
		TenantID:  "tenant-1",
		StaffType: staff.TypeChef,
	}).Return(errors.New("broker down")).Once()
	queue.On("EnqueueAssignment", ctx, ports.AssignmentMessage{
		OrderID:   secondID.String(),
		TenantID:  "tenant-1",
		StaffType: staff.TypeChef,
	}).Return(nil).Once()

	handler := commands.NewSweepPendingAssignmentsCommandHandler(factory, queue, testLogger())
	err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	queue.AssertExpectations(t)
}

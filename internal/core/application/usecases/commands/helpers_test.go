package commands_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/workflow"
	"fulfillment/internal/core/ports"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func testAuth(t *testing.T, role kernel.Role, email string) kernel.AuthContext {
	t.Helper()
	auth, err := kernel.NewAuthContext("tenant-1", "user-1", role, email)
	require.NoError(t, err)
	return auth
}

func testItems(t *testing.T) []order.LineItem {
	t.Helper()
	price, err := kernel.NewMoneyFromString("10.00")
	require.NoError(t, err)
	item, err := order.NewLineItem("Margherita", price, 2)
	require.NoError(t, err)
	return []order.LineItem{item}
}

// testOrderInStatus restores an order directly in the given status so
// handler tests can start mid-workflow.
func testOrderInStatus(t *testing.T, id kernel.UUID, status order.Status) *order.Order {
	t.Helper()
	now := time.Now().UTC()

	params := order.RestoreOrderParams{
		ID:              id,
		TenantID:        "tenant-1",
		CustomerID:      "customer-1",
		Items:           testItems(t),
		DeliveryAddress: "12 Baker Street",
		Status:          status,
		CreatedAt:       now.Add(-time.Hour),
		UpdatedAt:       now.Add(-time.Minute),
	}
	switch status {
	case order.StatusCooking, order.StatusPacking, order.StatusReady:
		params.AssignedChef = "chef@example.com"
	case order.StatusInDelivery:
		pickup := now.Add(-10 * time.Minute)
		params.PickupTime = &pickup
		params.AssignedChef = "chef@example.com"
		params.AssignedCourier = "courier@example.com"
	}

	restored, err := order.RestoreOrder(params)
	require.NoError(t, err)
	return restored
}

func testLedger(t *testing.T, orderID kernel.UUID) *workflow.Ledger {
	t.Helper()
	ledger, err := workflow.NewLedger(orderID, time.Now().UTC().Add(-time.Hour))
	require.NoError(t, err)
	return ledger
}

type MockEventPublisher struct{ mock.Mock }

func (m *MockEventPublisher) Publish(ctx context.Context, event order.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type MockOrchestrationClient struct{ mock.Mock }

func (m *MockOrchestrationClient) StartRun(ctx context.Context, input ports.StartRunInput) error {
	args := m.Called(ctx, input)
	return args.Error(0)
}

func (m *MockOrchestrationClient) Resume(ctx context.Context, token workflow.WaitToken,
	output map[string]any) error {
	args := m.Called(ctx, token, output)
	return args.Error(0)
}

type MockWorkQueue struct{ mock.Mock }

func (m *MockWorkQueue) EnqueueAssignment(ctx context.Context, msg ports.AssignmentMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

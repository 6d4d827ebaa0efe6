package queries_test

import (
	"context"
	"testing"
	"time"

	"fulfillment/internal/adapters/out/postgres/orderrepo"
	"fulfillment/internal/adapters/out/postgres/workflowrepo"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/workflow"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestNewGetWaitingOrdersQuery_CustomerRejected(t *testing.T) {
	auth, err := kernel.NewAuthContext("tenant-1", "customer-1",
		kernel.RoleCustomer, "customer@example.com")
	require.NoError(t, err)

	_, err = queries.NewGetWaitingOrdersQuery(auth, 30*time.Minute)
	require.ErrorIs(t, err, errs.ErrUnauthorized)
}

func TestNewGetWaitingOrdersQuery_StaleAfterRequired(t *testing.T) {
	auth, err := kernel.NewAuthContext("tenant-1", "admin-1",
		kernel.RoleAdmin, "admin@example.com")
	require.NoError(t, err)

	_, err = queries.NewGetWaitingOrdersQuery(auth, 0)
	require.Error(t, err)
}

// GetWaitingOrdersQueryIntegrationTestSuite verifies the parked waits read
// model against a real PostgreSQL database.
type GetWaitingOrdersQueryIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	handler   queries.GetWaitingOrdersQueryHandler
}

func (suite *GetWaitingOrdersQueryIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2)),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(dsn), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(&orderrepo.OrderDTO{},
		&workflowrepo.WorkflowDTO{}))
	suite.handler = queries.NewGetWaitingOrdersQueryHandler(db)
}

func (suite *GetWaitingOrdersQueryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE orders, workflows").Error)
}

func (suite *GetWaitingOrdersQueryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *GetWaitingOrdersQueryIntegrationTestSuite) TestHandle_FlagsStaleWaits() {
	now := time.Now().UTC()
	staleStart := now.Add(-2 * time.Hour)
	freshStart := now.Add(-5 * time.Minute)

	staleOrder := suite.seedOrder("tenant-1", order.StatusCooking)
	suite.seedWorkflow(staleOrder, order.StatusCooking,
		workflow.StageCooking, "token-cooking", staleStart)

	freshOrder := suite.seedOrder("tenant-1", order.StatusPacking)
	suite.seedWorkflow(freshOrder, order.StatusPacking,
		workflow.StagePacking, "token-packing", freshStart)

	auth := suite.adminAuth("tenant-1")
	query, err := queries.NewGetWaitingOrdersQuery(auth, 30*time.Minute)
	suite.Require().NoError(err)

	waiting, err := suite.handler.Handle(context.Background(), query)
	suite.Require().NoError(err)
	suite.Require().Len(waiting, 2)

	// Oldest wait first.
	suite.Equal(staleOrder, waiting[0].OrderID)
	suite.Equal("cooking", waiting[0].Stage)
	suite.True(waiting[0].IsStale)

	suite.Equal(freshOrder, waiting[1].OrderID)
	suite.Equal("packing", waiting[1].Stage)
	suite.False(waiting[1].IsStale)
}

func (suite *GetWaitingOrdersQueryIntegrationTestSuite) TestHandle_SkipsLedgersWithoutTokens() {
	orderID := suite.seedOrder("tenant-1", order.StatusPending)
	suite.seedWorkflow(orderID, order.StatusPending, "", "", time.Time{})

	auth := suite.adminAuth("tenant-1")
	query, err := queries.NewGetWaitingOrdersQuery(auth, 30*time.Minute)
	suite.Require().NoError(err)

	waiting, err := suite.handler.Handle(context.Background(), query)
	suite.Require().NoError(err)
	suite.Empty(waiting)
}

func (suite *GetWaitingOrdersQueryIntegrationTestSuite) TestHandle_ScopedToTenant() {
	foreignOrder := suite.seedOrder("tenant-2", order.StatusCooking)
	suite.seedWorkflow(foreignOrder, order.StatusCooking,
		workflow.StageCooking, "token-foreign", time.Now().UTC())

	auth := suite.adminAuth("tenant-1")
	query, err := queries.NewGetWaitingOrdersQuery(auth, 30*time.Minute)
	suite.Require().NoError(err)

	waiting, err := suite.handler.Handle(context.Background(), query)
	suite.Require().NoError(err)
	suite.Empty(waiting)
}

func (suite *GetWaitingOrdersQueryIntegrationTestSuite) adminAuth(
	tenantID string) kernel.AuthContext {
	auth, err := kernel.NewAuthContext(tenantID, "admin-1",
		kernel.RoleAdmin, "admin@example.com")
	suite.Require().NoError(err)
	return auth
}

func (suite *GetWaitingOrdersQueryIntegrationTestSuite) seedOrder(tenantID string,
	status order.Status) kernel.UUID {
	id := kernel.NewUUID()
	now := time.Now().UTC()
	dto := orderrepo.OrderDTO{
		ID:         id.Bytes(),
		TenantID:   tenantID,
		CustomerID: "customer-1",
		Items: orderrepo.LineItems{
			{Name: "Margherita", UnitPrice: "10.00", Quantity: 2},
		},
		Total:           "20.00",
		DeliveryAddress: "12 Baker Street",
		Status:          status.String(),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	suite.Require().NoError(suite.db.Create(&dto).Error)
	return id
}

func (suite *GetWaitingOrdersQueryIntegrationTestSuite) seedWorkflow(orderID kernel.UUID,
	status order.Status, stage workflow.Stage, token string, waitStartedAt time.Time) {
	now := time.Now().UTC()
	dto := workflowrepo.WorkflowDTO{
		OrderID: orderID.Bytes(),
		Steps: workflowrepo.Steps{
			{Status: status.String(), AssignedTo: "system", StartedAt: now},
		},
		CurrentStatus: status.String(),
		UpdatedAt:     now,
	}

	if token != "" {
		switch stage {
		case workflow.StageConfirmation:
			dto.ConfirmationTaskToken = &token
			dto.ConfirmationWaitStartedAt = &waitStartedAt
		case workflow.StageCooking:
			dto.CookingTaskToken = &token
			dto.CookingWaitStartedAt = &waitStartedAt
		case workflow.StagePacking:
			dto.PackingTaskToken = &token
			dto.PackingWaitStartedAt = &waitStartedAt
		case workflow.StageCourierPickup:
			dto.CourierPickupTaskToken = &token
			dto.CourierPickupWaitStartedAt = &waitStartedAt
		case workflow.StageCourierDelivery:
			dto.CourierDeliveryTaskToken = &token
			dto.CourierDeliveryWaitStartedAt = &waitStartedAt
		}
	}

	suite.Require().NoError(suite.db.Create(&dto).Error)
}

func TestGetWaitingOrdersQueryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(GetWaitingOrdersQueryIntegrationTestSuite))
}

package postgres_test

import (
	"context"
	"testing"
	"time"

	postgresadapter "fulfillment/internal/adapters/out/postgres"
	"fulfillment/internal/adapters/out/postgres/orderrepo"
	"fulfillment/internal/adapters/out/postgres/staffrepo"
	"fulfillment/internal/adapters/out/postgres/workflowrepo"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/staff"
	"fulfillment/internal/core/domain/model/workflow"
	"fulfillment/internal/core/ports"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// UnitOfWorkIntegrationTestSuite exercises the GORM-based unit of work
// against a real PostgreSQL database.
type UnitOfWorkIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	factory   ports.UnitOfWorkFactory
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupSuite() {
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

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	err = db.AutoMigrate(&orderrepo.OrderDTO{}, &workflowrepo.WorkflowDTO{},
		&staffrepo.StaffDTO{})
	suite.Require().NoError(err)

	suite.factory = postgresadapter.NewGormUnitOfWorkFactory(db)
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupTest() {
	err := suite.db.Exec("TRUNCATE TABLE orders, workflows, staff_availability").Error
	suite.Require().NoError(err)
}

func (suite *UnitOfWorkIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		err := suite.container.Terminate(context.Background())
		suite.Require().NoError(err)
	}
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWorkFactory_Create() {
	uow1 := suite.factory.Create()
	uow2 := suite.factory.Create()

	suite.NotSame(uow1, uow2, "Factory should create separate instances")

	suite.NotNil(uow1.OrderRepository())
	suite.NotNil(uow1.WorkflowRepository())
	suite.NotNil(uow1.StaffRepository())
	suite.NotNil(uow2.OrderRepository())
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_TransactionLifecycle() {
	ctx := context.Background()
	uow := suite.factory.Create()

	err := uow.Begin(ctx)
	suite.Require().NoError(err)

	// Repeated Begin is a no-op, not a nested transaction.
	err = uow.Begin(ctx)
	suite.Require().NoError(err)

	err = uow.Commit(ctx)
	suite.Require().NoError(err)

	err = uow.Begin(ctx)
	suite.Require().NoError(err)

	err = uow.Rollback(ctx)
	suite.Require().NoError(err)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_TransactionErrors() {
	ctx := context.Background()
	uow := suite.factory.Create()

	err := uow.Commit(ctx)
	suite.Require().Error(err, "Should error when committing without active transaction")

	err = uow.Rollback(ctx)
	suite.Require().Error(err, "Should error when rolling back without active transaction")
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_MultiRepositoryTransaction() {
	ctx := context.Background()
	uow := suite.factory.Create()

	testOrder := createTestOrder(suite.T())
	ledger, err := workflow.NewLedger(testOrder.ID(), time.Now().UTC())
	suite.Require().NoError(err)

	err = uow.Begin(ctx)
	suite.Require().NoError(err)

	err = uow.OrderRepository().Add(ctx, testOrder)
	suite.Require().NoError(err)

	err = uow.WorkflowRepository().Add(ctx, ledger)
	suite.Require().NoError(err)

	err = uow.Commit(ctx)
	suite.Require().NoError(err)

	newUow := suite.factory.Create()

	retrievedOrder, err := newUow.OrderRepository().Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.Equal(testOrder.ID(), retrievedOrder.ID())

	retrievedLedger, err := newUow.WorkflowRepository().Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.Equal(order.StatusPending, retrievedLedger.CurrentStatus())
	suite.Len(retrievedLedger.Steps(), 1)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_TransactionRollback() {
	ctx := context.Background()
	uow := suite.factory.Create()

	testOrder := createTestOrder(suite.T())
	ledger, err := workflow.NewLedger(testOrder.ID(), time.Now().UTC())
	suite.Require().NoError(err)

	err = uow.Begin(ctx)
	suite.Require().NoError(err)

	err = uow.OrderRepository().Add(ctx, testOrder)
	suite.Require().NoError(err)
	err = uow.WorkflowRepository().Add(ctx, ledger)
	suite.Require().NoError(err)

	// Both visible inside the transaction.
	_, err = uow.OrderRepository().Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	_, err = uow.WorkflowRepository().Get(ctx, testOrder.ID())
	suite.Require().NoError(err)

	err = uow.Rollback(ctx)
	suite.Require().NoError(err)

	newUow := suite.factory.Create()

	_, err = newUow.OrderRepository().Get(ctx, testOrder.ID())
	suite.Require().Error(err, "Order should not exist after rollback")
	_, err = newUow.WorkflowRepository().Get(ctx, testOrder.ID())
	suite.Require().Error(err, "Ledger should not exist after rollback")
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_RepositoryIsolation() {
	ctx := context.Background()

	uow1 := suite.factory.Create()
	uow2 := suite.factory.Create()

	order1 := createTestOrder(suite.T())
	order2 := createTestOrder(suite.T())

	err := uow1.Begin(ctx)
	suite.Require().NoError(err)
	err = uow2.Begin(ctx)
	suite.Require().NoError(err)

	err = uow1.OrderRepository().Add(ctx, order1)
	suite.Require().NoError(err)
	err = uow2.OrderRepository().Add(ctx, order2)
	suite.Require().NoError(err)

	_, err = uow1.OrderRepository().Get(ctx, order1.ID())
	suite.Require().NoError(err, "UOW1 should see order1")
	_, err = uow1.OrderRepository().Get(ctx, order2.ID())
	suite.Require().Error(err, "UOW1 should not see order2")

	err = uow1.Commit(ctx)
	suite.Require().NoError(err)
	err = uow2.Rollback(ctx)
	suite.Require().NoError(err)

	newUow := suite.factory.Create()
	_, err = newUow.OrderRepository().Get(ctx, order1.ID())
	suite.Require().NoError(err, "Order1 should persist after commit")
	_, err = newUow.OrderRepository().Get(ctx, order2.ID())
	suite.Require().Error(err, "Order2 should not persist after rollback")
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_WithoutTransaction() {
	ctx := context.Background()
	uow := suite.factory.Create()

	testOrder := createTestOrder(suite.T())

	// Without Begin the repositories auto-commit on the main connection.
	err := uow.OrderRepository().Add(ctx, testOrder)
	suite.Require().NoError(err)

	newUow := suite.factory.Create()
	retrieved, err := newUow.OrderRepository().Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.Equal(testOrder.ID(), retrieved.ID())
}

// TestUnitOfWork_AssignmentTransaction walks the chef assignment write set:
// the order, its ledger and the chosen staff record change in one transaction.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_AssignmentTransaction() {
	ctx := context.Background()
	now := time.Now().UTC()

	confirmed := createTestOrder(suite.T())
	admin, err := kernel.NewAuthContext("tenant-1", "user-1",
		kernel.RoleAdmin, "admin@example.com")
	suite.Require().NoError(err)
	suite.Require().NoError(confirmed.TransitionTo(order.StatusConfirmed, admin, "", now))

	ledger, err := workflow.NewLedger(confirmed.ID(), now)
	suite.Require().NoError(err)
	suite.Require().NoError(ledger.RecordTransition(order.StatusConfirmed,
		workflow.SystemActor, "", now))

	chef, err := staff.NewStaffAvailability("chef@example.com", staff.TypeChef,
		"tenant-1", now)
	suite.Require().NoError(err)

	seedUow := suite.factory.Create()
	suite.Require().NoError(seedUow.Begin(ctx))
	suite.Require().NoError(seedUow.OrderRepository().Add(ctx, confirmed))
	suite.Require().NoError(seedUow.WorkflowRepository().Add(ctx, ledger))
	suite.Require().NoError(seedUow.StaffRepository().Upsert(ctx, chef))
	suite.Require().NoError(seedUow.Commit(ctx))

	// Assignment transaction.
	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))

	loadedOrder, err := uow.OrderRepository().Get(ctx, confirmed.ID())
	suite.Require().NoError(err)
	candidates, err := uow.StaffRepository().GetAvailable(ctx, "tenant-1", staff.TypeChef)
	suite.Require().NoError(err)
	suite.Require().Len(candidates, 1)

	chosen := candidates[0]
	suite.Require().NoError(chosen.MarkBusy(loadedOrder.ID(), now))
	suite.Require().NoError(loadedOrder.AssignChef(chosen.StaffID(), "queue", now))

	loadedLedger, err := uow.WorkflowRepository().Get(ctx, confirmed.ID())
	suite.Require().NoError(err)
	suite.Require().NoError(loadedLedger.RecordTransition(order.StatusCooking,
		chosen.StaffID(), "Assigned via queue", now))

	suite.Require().NoError(uow.StaffRepository().Upsert(ctx, chosen))
	suite.Require().NoError(uow.OrderRepository().Update(ctx, loadedOrder))
	suite.Require().NoError(uow.WorkflowRepository().Update(ctx, loadedLedger))
	suite.Require().NoError(uow.Commit(ctx))

	// Verify the committed write set.
	verifyUow := suite.factory.Create()

	finalOrder, err := verifyUow.OrderRepository().Get(ctx, confirmed.ID())
	suite.Require().NoError(err)
	suite.Equal(order.StatusCooking, finalOrder.Status())
	suite.Equal("chef@example.com", finalOrder.AssignedChef())

	finalLedger, err := verifyUow.WorkflowRepository().Get(ctx, confirmed.ID())
	suite.Require().NoError(err)
	suite.Equal(order.StatusCooking, finalLedger.CurrentStatus())

	finalChef, err := verifyUow.StaffRepository().Get(ctx, "chef@example.com")
	suite.Require().NoError(err)
	suite.Equal(staff.StatusBusy, finalChef.Status())
	suite.Require().NotNil(finalChef.CurrentOrderID())
	suite.Equal(confirmed.ID(), *finalChef.CurrentOrderID())

	candidates, err = verifyUow.StaffRepository().GetAvailable(ctx, "tenant-1",
		staff.TypeChef)
	suite.Require().NoError(err)
	suite.Empty(candidates, "Busy chef should drop out of selection")
}

// TestUnitOfWork_TokenRoundTrip verifies wait tokens survive persistence and
// that consuming one clears its columns.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_TokenRoundTrip() {
	ctx := context.Background()
	now := time.Now().UTC()

	testOrder := createTestOrder(suite.T())
	ledger, err := workflow.NewLedger(testOrder.ID(), now)
	suite.Require().NoError(err)
	suite.Require().NoError(ledger.StoreToken(workflow.StageConfirmation,
		"token-confirmation", now))

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.WorkflowRepository().Add(ctx, ledger))
	suite.Require().NoError(uow.Commit(ctx))

	consumeUow := suite.factory.Create()
	suite.Require().NoError(consumeUow.Begin(ctx))

	loaded, err := consumeUow.WorkflowRepository().Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	token, err := loaded.ConsumeToken(workflow.StageConfirmation, now)
	suite.Require().NoError(err)
	suite.Equal("token-confirmation", token.Token)

	suite.Require().NoError(consumeUow.WorkflowRepository().Update(ctx, loaded))
	suite.Require().NoError(consumeUow.Commit(ctx))

	final, err := suite.factory.Create().WorkflowRepository().Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	_, err = final.ConsumeToken(workflow.StageConfirmation, now)
	suite.Require().Error(err, "Consumed token must not survive the round trip")
}

func createTestOrder(t *testing.T) *order.Order {
	t.Helper()

	price, err := kernel.NewMoneyFromString("10.00")
	if err != nil {
		t.Fatal(err)
	}
	item, err := order.NewLineItem("Margherita", price, 2)
	if err != nil {
		t.Fatal(err)
	}

	testOrder, err := order.NewOrder(kernel.NewUUID(), "tenant-1", "customer-1",
		[]order.LineItem{item}, "12 Baker Street", time.Now().UTC())
	if err != nil {
		t.Fatal(err)
	}
	return testOrder
}

func TestUnitOfWorkIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(UnitOfWorkIntegrationTestSuite))
}

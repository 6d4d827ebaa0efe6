package cmd

import (
	"log/slog"

	inamqp "fulfillment/internal/adapters/in/amqp"
	inhttp "fulfillment/internal/adapters/in/http"
	outamqp "fulfillment/internal/adapters/out/amqp"
	"fulfillment/internal/adapters/out/orchestration"
	"fulfillment/internal/adapters/out/postgres"
	"fulfillment/internal/adapters/out/postgres/orderrepo"
	"fulfillment/internal/adapters/out/postgres/staffrepo"
	"fulfillment/internal/adapters/out/postgres/subscriptionrepo"
	"fulfillment/internal/adapters/out/postgres/workflowrepo"
	"fulfillment/internal/adapters/out/ws"
	"fulfillment/internal/core/application/notifications"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/jobs"

	"gorm.io/gorm"
)

type CompositionRoot struct {
	configs       Config
	gormDB        *gorm.DB
	uowFactory    postgres.GormUnitOfWorkFactory
	amqpConn      *outamqp.Connection
	publisher     *outamqp.EventPublisher
	workQueue     *outamqp.WorkQueue
	orchestrator  *orchestration.Client
	subscriptions ports.SubscriptionRepository
	hub           *ws.Hub
	notifications *notifications.Service
	logger        *slog.Logger
}

func NewCompositionRoot(configs Config, gormDB *gorm.DB,
	amqpConn *outamqp.Connection, logger *slog.Logger) CompositionRoot {
	hub := ws.NewHub(logger)
	subscriptions := subscriptionrepo.NewGormSubscriptionRepository(gormDB)

	return CompositionRoot{
		configs:       configs,
		gormDB:        gormDB,
		uowFactory:    *postgres.NewGormUnitOfWorkFactory(gormDB),
		amqpConn:      amqpConn,
		publisher:     outamqp.NewEventPublisher(amqpConn, logger),
		workQueue:     outamqp.NewWorkQueue(amqpConn, logger),
		orchestrator:  orchestration.NewClient(configs.OrchestratorURL, logger),
		subscriptions: subscriptions,
		hub:           hub,
		notifications: notifications.NewService(subscriptions, hub,
			configs.ConnectionTTL, logger),
		logger: logger,
	}
}

// MigrateSchema creates or updates the database tables for all aggregates.
func (c *CompositionRoot) MigrateSchema() error {
	return c.gormDB.AutoMigrate(
		&orderrepo.OrderDTO{},
		&workflowrepo.WorkflowDTO{},
		&staffrepo.StaffDTO{},
		&subscriptionrepo.ConnectionDTO{},
		&subscriptionrepo.SubscriptionDTO{},
	)
}

func (c *CompositionRoot) uowFactoryAdapter() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	return commands.NewCreateOrderCommandHandler(c.uowFactoryAdapter(),
		c.orchestrator, c.publisher, c.logger)
}

func (c *CompositionRoot) CreateRequestTransitionCommandHandler() commands.RequestTransitionCommandHandler {
	return commands.NewRequestTransitionCommandHandler(c.uowFactoryAdapter(),
		c.orchestrator, c.publisher, c.workQueue, c.logger)
}

func (c *CompositionRoot) CreateCancelPickupCommandHandler() commands.CancelPickupCommandHandler {
	return commands.NewCancelPickupCommandHandler(c.uowFactoryAdapter(),
		c.publisher, c.workQueue, c.logger)
}

func (c *CompositionRoot) CreateAssignStaffCommandHandler() commands.AssignStaffCommandHandler {
	return commands.NewAssignStaffCommandHandler(c.uowFactoryAdapter(),
		c.publisher, c.logger)
}

func (c *CompositionRoot) CreateReportAvailabilityCommandHandler() commands.ReportAvailabilityCommandHandler {
	var f commands.StaffUoWFactory = FuncStaffUoWFactory(func() commands.StaffUoW {
		return c.uowFactory.Create()
	})
	return commands.NewReportAvailabilityCommandHandler(f, c.logger)
}

func (c *CompositionRoot) CreateRegisterStageWaitCommandHandler() commands.RegisterStageWaitCommandHandler {
	var f commands.WorkflowUoWFactory = FuncWorkflowUoWFactory(func() commands.WorkflowUoW {
		return c.uowFactory.Create()
	})
	return commands.NewRegisterStageWaitCommandHandler(f, c.logger)
}

func (c *CompositionRoot) CreateEnqueueAssignmentCommandHandler() commands.EnqueueAssignmentCommandHandler {
	return commands.NewEnqueueAssignmentCommandHandler(c.workQueue, c.logger)
}

func (c *CompositionRoot) CreateSweepPendingAssignmentsCommandHandler() commands.SweepPendingAssignmentsCommandHandler {
	return commands.NewSweepPendingAssignmentsCommandHandler(c.uowFactoryAdapter(),
		c.workQueue, c.logger)
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetOrdersQueryHandler() queries.GetOrdersQueryHandler {
	return queries.NewGetOrdersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetWorkflowQueryHandler() queries.GetWorkflowQueryHandler {
	return queries.NewGetWorkflowQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetWaitingOrdersQueryHandler() queries.GetWaitingOrdersQueryHandler {
	return queries.NewGetWaitingOrdersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetStaffRosterQueryHandler() queries.GetStaffRosterQueryHandler {
	return queries.NewGetStaffRosterQueryHandler(c.gormDB)
}

// CreateServer assembles the HTTP server with all its handlers.
func (c *CompositionRoot) CreateServer() *inhttp.Server {
	return inhttp.NewServer(inhttp.ServerParams{
		CreateOrderHandler:        c.CreateCreateOrderCommandHandler(),
		RequestTransitionHandler:  c.CreateRequestTransitionCommandHandler(),
		CancelPickupHandler:       c.CreateCancelPickupCommandHandler(),
		ReportAvailabilityHandler: c.CreateReportAvailabilityCommandHandler(),
		RegisterStageWaitHandler:  c.CreateRegisterStageWaitCommandHandler(),
		EnqueueAssignmentHandler:  c.CreateEnqueueAssignmentCommandHandler(),
		GetOrderHandler:           c.CreateGetOrderQueryHandler(),
		GetOrdersHandler:          c.CreateGetOrdersQueryHandler(),
		GetWorkflowHandler:        c.CreateGetWorkflowQueryHandler(),
		GetWaitingOrdersHandler:   c.CreateGetWaitingOrdersQueryHandler(),
		GetStaffRosterHandler:     c.CreateGetStaffRosterQueryHandler(),
		Notifications:             c.notifications,
		Hub:                       c.hub,
		WaitStaleAfter:            c.configs.WaitStaleAfter,
		Logger:                    c.logger,
	})
}

// CreateAssignmentConsumer assembles the staff assignment worker.
func (c *CompositionRoot) CreateAssignmentConsumer() *inamqp.AssignmentConsumer {
	return inamqp.NewAssignmentConsumer(c.amqpConn,
		c.CreateAssignStaffCommandHandler(),
		c.configs.AssignmentMaxRetries, c.logger)
}

// CreateEventConsumer assembles the notification event feed.
func (c *CompositionRoot) CreateEventConsumer() *inamqp.EventConsumer {
	return inamqp.NewEventConsumer(c.amqpConn, c.notifications, c.logger)
}

// CreateJobManager assembles the scheduled background jobs.
func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(c.CreateSweepPendingAssignmentsCommandHandler(),
		c.subscriptions, c.logger)
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}

type FuncWorkflowUoWFactory func() commands.WorkflowUoW

func (f FuncWorkflowUoWFactory) Create() commands.WorkflowUoW {
	return f()
}

type FuncStaffUoWFactory func() commands.StaffUoW

func (f FuncStaffUoWFactory) Create() commands.StaffUoW {
	return f()
}

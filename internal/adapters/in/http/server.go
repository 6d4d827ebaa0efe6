// Package http exposes the REST and websocket API. Authentication is
// header-based: the gateway in front of this service resolves the caller
// and forwards identity headers, which the auth middleware turns into a
// kernel.AuthContext for the use case layer.
package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"fulfillment/internal/adapters/out/ws"
	"fulfillment/internal/core/application/notifications"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/staff"
	"fulfillment/internal/core/domain/model/workflow"
	"fulfillment/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

const (
	headerTenantID  = "X-Tenant-ID"
	headerUserID    = "X-User-ID"
	headerUserRole  = "X-User-Role"
	headerUserEmail = "X-User-Email"

	authContextKey = "authContext"
)

// Error is the JSON error body returned by every failing endpoint.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	// Command handlers
	createOrderHandler        commands.CreateOrderCommandHandler
	requestTransitionHandler  commands.RequestTransitionCommandHandler
	cancelPickupHandler       commands.CancelPickupCommandHandler
	reportAvailabilityHandler commands.ReportAvailabilityCommandHandler
	registerStageWaitHandler  commands.RegisterStageWaitCommandHandler
	enqueueAssignmentHandler  commands.EnqueueAssignmentCommandHandler

	// Query handlers
	getOrderHandler         queries.GetOrderQueryHandler
	getOrdersHandler        queries.GetOrdersQueryHandler
	getWorkflowHandler      queries.GetWorkflowQueryHandler
	getWaitingOrdersHandler queries.GetWaitingOrdersQueryHandler
	getStaffRosterHandler   queries.GetStaffRosterQueryHandler

	notifications  *notifications.Service
	hub            *ws.Hub
	waitStaleAfter time.Duration
	logger         *slog.Logger
}

// ServerParams carries the dependencies for NewServer.
type ServerParams struct {
	CreateOrderHandler        commands.CreateOrderCommandHandler
	RequestTransitionHandler  commands.RequestTransitionCommandHandler
	CancelPickupHandler       commands.CancelPickupCommandHandler
	ReportAvailabilityHandler commands.ReportAvailabilityCommandHandler
	RegisterStageWaitHandler  commands.RegisterStageWaitCommandHandler
	EnqueueAssignmentHandler  commands.EnqueueAssignmentCommandHandler

	GetOrderHandler         queries.GetOrderQueryHandler
	GetOrdersHandler        queries.GetOrdersQueryHandler
	GetWorkflowHandler      queries.GetWorkflowQueryHandler
	GetWaitingOrdersHandler queries.GetWaitingOrdersQueryHandler
	GetStaffRosterHandler   queries.GetStaffRosterQueryHandler

	Notifications  *notifications.Service
	Hub            *ws.Hub
	WaitStaleAfter time.Duration
	Logger         *slog.Logger
}

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(params ServerParams) *Server {
	return &Server{
		createOrderHandler:        params.CreateOrderHandler,
		requestTransitionHandler:  params.RequestTransitionHandler,
		cancelPickupHandler:       params.CancelPickupHandler,
		reportAvailabilityHandler: params.ReportAvailabilityHandler,
		registerStageWaitHandler:  params.RegisterStageWaitHandler,
		enqueueAssignmentHandler:  params.EnqueueAssignmentHandler,
		getOrderHandler:           params.GetOrderHandler,
		getOrdersHandler:          params.GetOrdersHandler,
		getWorkflowHandler:        params.GetWorkflowHandler,
		getWaitingOrdersHandler:   params.GetWaitingOrdersHandler,
		getStaffRosterHandler:     params.GetStaffRosterHandler,
		notifications:             params.Notifications,
		hub:                       params.Hub,
		waitStaleAfter:            params.WaitStaleAfter,
		logger:                    params.Logger.With("component", "http"),
	}
}

// RegisterRoutes wires all endpoints onto the echo instance. Endpoints
// under /internal are for the orchestrator and carry no user identity.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api/v1", s.authMiddleware)
	api.POST("/orders", s.CreateOrder)
	api.GET("/orders", s.GetOrders)
	api.GET("/orders/waiting", s.GetWaitingOrders)
	api.GET("/orders/:id", s.GetOrder)
	api.GET("/orders/:id/workflow", s.GetWorkflow)
	api.POST("/orders/:id/transition", s.RequestTransition)
	api.POST("/orders/:id/cancel-pickup", s.CancelPickup)
	api.POST("/availability", s.ReportAvailability)
	api.GET("/staff/roster", s.GetStaffRoster)

	internal := e.Group("/internal/v1")
	internal.POST("/waits", s.RegisterStageWait)
	internal.POST("/assignments", s.EnqueueAssignment)

	e.GET("/ws", s.ServeWebsocket, s.authMiddleware)
}

// authMiddleware builds the caller identity from the forwarded headers.
func (s *Server) authMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		role, err := kernel.RoleFromString(ctx.Request().Header.Get(headerUserRole))
		if err != nil {
			return ctx.JSON(http.StatusUnauthorized, Error{
				Code:    http.StatusUnauthorized,
				Message: "Unknown caller role",
			})
		}

		auth, err := kernel.NewAuthContext(
			ctx.Request().Header.Get(headerTenantID),
			ctx.Request().Header.Get(headerUserID),
			role,
			ctx.Request().Header.Get(headerUserEmail),
		)
		if err != nil {
			return ctx.JSON(http.StatusUnauthorized, Error{
				Code:    http.StatusUnauthorized,
				Message: "Missing identity headers",
			})
		}

		ctx.Set(authContextKey, auth)
		return next(ctx)
	}
}

func authFromContext(ctx echo.Context) kernel.AuthContext {
	auth, _ := ctx.Get(authContextKey).(kernel.AuthContext)
	return auth
}

// errorResponse maps application errors onto HTTP statuses. Unrecognized
// errors become a 500 with a generic message so internals never leak.
func (s *Server) errorResponse(ctx echo.Context, err error) error {
	var code int
	var message string

	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		code, message = http.StatusNotFound, "Object not found"
	case errors.Is(err, errs.ErrUnauthorized):
		code, message = http.StatusForbidden, "Operation not permitted"
	case errors.Is(err, errs.ErrInvalidTransition),
		errors.Is(err, errs.ErrStaleTokenResume):
		code, message = http.StatusConflict, err.Error()
	case errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		code, message = http.StatusBadRequest, err.Error()
	default:
		s.logger.Error("request failed", "path", ctx.Path(), "error", err)
		code, message = http.StatusInternalServerError, "Internal error"
	}

	return ctx.JSON(code, Error{Code: code, Message: message})
}

func badRequest(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusBadRequest, Error{
		Code:    http.StatusBadRequest,
		Message: message,
	})
}

type lineItemRequest struct {
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

type createOrderRequest struct {
	Items           []lineItemRequest `json:"items"`
	DeliveryAddress string            `json:"delivery_address"`
	DeclaredTotal   *string           `json:"declared_total,omitempty"`
}

type createOrderResponse struct {
	ID string `json:"id"`
}

// CreateOrder handles POST /api/v1/orders - places a new order.
func (s *Server) CreateOrder(ctx echo.Context) error {
	var request createOrderRequest
	if err := ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	items := make([]order.LineItem, 0, len(request.Items))
	for _, item := range request.Items {
		unitPrice, err := kernel.NewMoneyFromString(item.UnitPrice)
		if err != nil {
			return badRequest(ctx, "Invalid unit price: "+item.UnitPrice)
		}
		lineItem, err := order.NewLineItem(item.Name, unitPrice, item.Quantity)
		if err != nil {
			return badRequest(ctx, "Invalid line item: "+err.Error())
		}
		items = append(items, lineItem)
	}

	var declaredTotal *kernel.Money
	if request.DeclaredTotal != nil {
		total, err := kernel.NewMoneyFromString(*request.DeclaredTotal)
		if err != nil {
			return badRequest(ctx, "Invalid declared total: "+*request.DeclaredTotal)
		}
		declaredTotal = &total
	}

	orderID := kernel.NewUUID()
	cmd, err := commands.NewCreateOrderCommand(orderID, authFromContext(ctx),
		items, request.DeliveryAddress, declaredTotal)
	if err != nil {
		return badRequest(ctx, "Invalid order data: "+err.Error())
	}

	if handleErr := s.createOrderHandler.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		return s.errorResponse(ctx, handleErr)
	}

	return ctx.JSON(http.StatusCreated, createOrderResponse{ID: orderID.String()})
}

// GetOrders handles GET /api/v1/orders - lists orders visible to the
// caller, optionally filtered by ?status=.
func (s *Server) GetOrders(ctx echo.Context) error {
	query, err := queries.NewGetOrdersQuery(authFromContext(ctx),
		ctx.QueryParam("status"))
	if err != nil {
		return badRequest(ctx, "Invalid query: "+err.Error())
	}

	orders, err := s.getOrdersHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.errorResponse(ctx, err)
	}

	return ctx.JSON(http.StatusOK, orders)
}

// GetOrder handles GET /api/v1/orders/:id - retrieves one order.
func (s *Server) GetOrder(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}

	query, err := queries.NewGetOrderQuery(orderID, authFromContext(ctx))
	if err != nil {
		return badRequest(ctx, "Invalid query: "+err.Error())
	}

	response, err := s.getOrderHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.errorResponse(ctx, err)
	}

	return ctx.JSON(http.StatusOK, response)
}

// GetWorkflow handles GET /api/v1/orders/:id/workflow - retrieves the
// step history and active waits of an order's workflow.
func (s *Server) GetWorkflow(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}

	query, err := queries.NewGetWorkflowQuery(orderID, authFromContext(ctx))
	if err != nil {
		return badRequest(ctx, "Invalid query: "+err.Error())
	}

	response, err := s.getWorkflowHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.errorResponse(ctx, err)
	}

	return ctx.JSON(http.StatusOK, response)
}

// GetWaitingOrders handles GET /api/v1/orders/waiting - lists orders
// parked on a wait token, flagging the stale ones.
func (s *Server) GetWaitingOrders(ctx echo.Context) error {
	query, err := queries.NewGetWaitingOrdersQuery(authFromContext(ctx),
		s.waitStaleAfter)
	if err != nil {
		return s.errorResponse(ctx, err)
	}

	response, err := s.getWaitingOrdersHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.errorResponse(ctx, err)
	}

	return ctx.JSON(http.StatusOK, response)
}

type transitionRequest struct {
	Target string `json:"target"`
	Notes  string `json:"notes,omitempty"`
}

// RequestTransition handles POST /api/v1/orders/:id/transition - moves an
// order to the requested status.
func (s *Server) RequestTransition(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}

	var request transitionRequest
	if err := ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	target, err := order.StatusFromString(request.Target)
	if err != nil {
		return badRequest(ctx, "Unknown target status: "+request.Target)
	}

	cmd, err := commands.NewRequestTransitionCommand(orderID, target,
		authFromContext(ctx), request.Notes)
	if err != nil {
		return badRequest(ctx, "Invalid transition request: "+err.Error())
	}

	if handleErr := s.requestTransitionHandler.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		return s.errorResponse(ctx, handleErr)
	}

	return ctx.NoContent(http.StatusNoContent)
}

type cancelPickupRequest struct {
	Reason string `json:"reason"`
}

// CancelPickup handles POST /api/v1/orders/:id/cancel-pickup - backs an
// order out of courier pickup and returns it to the ready pool.
func (s *Server) CancelPickup(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}

	var request cancelPickupRequest
	if err := ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewCancelPickupCommand(orderID, authFromContext(ctx),
		request.Reason)
	if err != nil {
		return badRequest(ctx, "Invalid cancel request: "+err.Error())
	}

	if handleErr := s.cancelPickupHandler.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		return s.errorResponse(ctx, handleErr)
	}

	return ctx.NoContent(http.StatusNoContent)
}

type availabilityRequest struct {
	Status string `json:"status"`
}

// ReportAvailability handles POST /api/v1/availability - staff members
// self-report their availability status.
func (s *Server) ReportAvailability(ctx echo.Context) error {
	var request availabilityRequest
	if err := ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	status, err := staff.StatusFromString(request.Status)
	if err != nil {
		return badRequest(ctx, "Unknown availability status: "+request.Status)
	}

	cmd, err := commands.NewReportAvailabilityCommand(authFromContext(ctx), status)
	if err != nil {
		return badRequest(ctx, "Invalid availability report: "+err.Error())
	}

	if handleErr := s.reportAvailabilityHandler.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		return s.errorResponse(ctx, handleErr)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// GetStaffRoster handles GET /api/v1/staff/roster - lists the staff pool,
// optionally filtered by ?staff_type=.
func (s *Server) GetStaffRoster(ctx echo.Context) error {
	query, err := queries.NewGetStaffRosterQuery(authFromContext(ctx),
		ctx.QueryParam("staff_type"))
	if err != nil {
		if errors.Is(err, errs.ErrUnauthorized) {
			return s.errorResponse(ctx, err)
		}
		return badRequest(ctx, "Invalid query: "+err.Error())
	}

	response, err := s.getStaffRosterHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.errorResponse(ctx, err)
	}

	return ctx.JSON(http.StatusOK, response)
}

type registerWaitRequest struct {
	OrderID string `json:"order_id"`
	Stage   string `json:"stage"`
	Token   string `json:"token"`
}

// RegisterStageWait handles POST /internal/v1/waits - the orchestrator
// parks a stage here by handing over its task token.
func (s *Server) RegisterStageWait(ctx echo.Context) error {
	var request registerWaitRequest
	if err := ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	orderID, err := kernel.UUIDFromString(request.OrderID)
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}

	stage, err := workflow.StageFromString(request.Stage)
	if err != nil {
		return badRequest(ctx, "Unknown stage: "+request.Stage)
	}

	cmd, err := commands.NewRegisterStageWaitCommand(orderID, stage, request.Token)
	if err != nil {
		return badRequest(ctx, "Invalid wait registration: "+err.Error())
	}

	if handleErr := s.registerStageWaitHandler.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		return s.errorResponse(ctx, handleErr)
	}

	return ctx.NoContent(http.StatusNoContent)
}

type enqueueAssignmentRequest struct {
	OrderID   string `json:"order_id"`
	TenantID  string `json:"tenant_id"`
	StaffType string `json:"staff_type"`
}

// EnqueueAssignment handles POST /internal/v1/assignments - the
// orchestrator requests a staff assignment, which lands on the work queue.
func (s *Server) EnqueueAssignment(ctx echo.Context) error {
	var request enqueueAssignmentRequest
	if err := ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	orderID, err := kernel.UUIDFromString(request.OrderID)
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}

	staffType, err := staff.TypeFromString(request.StaffType)
	if err != nil {
		return badRequest(ctx, "Unknown staff type: "+request.StaffType)
	}

	cmd, err := commands.NewEnqueueAssignmentCommand(orderID, request.TenantID, staffType)
	if err != nil {
		return badRequest(ctx, "Invalid assignment request: "+err.Error())
	}

	if handleErr := s.enqueueAssignmentHandler.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		return s.errorResponse(ctx, handleErr)
	}

	return ctx.NoContent(http.StatusAccepted)
}

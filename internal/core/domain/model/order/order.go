package order

import (
	"errors"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

// ErrOrderIsNotConstructed is returned when an Order instance was not created
// through the NewOrder or RestoreOrder factory methods.
var ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")

// Order is the aggregate root of the fulfillment workflow. It owns the
// status state machine, the staff assignments and the lifecycle timestamps,
// and raises domain events for every externally visible change.
//
// Order invariants:
//   - valid unique identifier, tenant and customer
//   - at least one validated line item
//   - total equals the exact sum of line item subtotals
//   - status transitions follow the state machine in Status
//   - assignedCourier is set exactly while the order is in delivery
type Order struct {
	id              kernel.UUID
	tenantID        string
	customerID      string
	items           []LineItem
	total           kernel.Money
	deliveryAddress string
	status          Status

	// staff identifiers (email or user id), empty when unassigned
	assignedChef    string
	assignedCourier string

	createdAt   time.Time
	updatedAt   time.Time
	pickupTime  *time.Time
	readyAt     *time.Time
	deliveredAt *time.Time

	deliveryNotes      string
	cancellationReason string
	failureReason      string

	events        []Event
	isConstructed bool
}

// NewOrder creates a pending order and raises OrderCreated.
// The total is computed from the line items; callers never supply it.
func NewOrder(id kernel.UUID, tenantID string, customerID string, items []LineItem,
	deliveryAddress string, at time.Time) (*Order, error) {
	o := &Order{
		status:        StatusPending,
		createdAt:     at,
		updatedAt:     at,
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setTenantID(tenantID),
		o.setCustomerID(customerID),
		o.setItems(items),
		o.setDeliveryAddress(deliveryAddress),
	); err != nil {
		return nil, err
	}

	o.raise(EventOrderCreated, at, map[string]any{
		"customer_id": o.customerID,
		"total":       o.total.String(),
		"items_count": len(o.items),
	})

	return o, nil
}

// RestoreOrderParams carries the persisted state of an order.
type RestoreOrderParams struct {
	ID              kernel.UUID
	TenantID        string
	CustomerID      string
	Items           []LineItem
	DeliveryAddress string
	Status          Status
	AssignedChef    string
	AssignedCourier string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	PickupTime      *time.Time
	ReadyAt         *time.Time
	DeliveredAt     *time.Time

	DeliveryNotes      string
	CancellationReason string
	FailureReason      string
}

// RestoreOrder reconstructs an order from persistence. It revalidates the
// identity and status but raises no events.
func RestoreOrder(params RestoreOrderParams) (*Order, error) {
	o := &Order{
		status:             params.Status,
		assignedChef:       params.AssignedChef,
		assignedCourier:    params.AssignedCourier,
		createdAt:          params.CreatedAt,
		updatedAt:          params.UpdatedAt,
		pickupTime:         params.PickupTime,
		readyAt:            params.ReadyAt,
		deliveredAt:        params.DeliveredAt,
		deliveryNotes:      params.DeliveryNotes,
		cancellationReason: params.CancellationReason,
		failureReason:      params.FailureReason,
		isConstructed:      true,
	}

	if err := errors.Join(
		o.setID(params.ID),
		o.setTenantID(params.TenantID),
		o.setCustomerID(params.CustomerID),
		o.setItems(params.Items),
		o.setDeliveryAddress(params.DeliveryAddress),
		params.Status.Validate(),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// Validate ensures the Order was created via a factory method.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// IsEqual compares two orders by identity.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) ID() kernel.UUID {
	return o.id
}

func (o *Order) TenantID() string {
	return o.tenantID
}

func (o *Order) CustomerID() string {
	return o.customerID
}

// Items returns a copy of the order's line items.
func (o *Order) Items() []LineItem {
	items := make([]LineItem, len(o.items))
	copy(items, o.items)
	return items
}

func (o *Order) Total() kernel.Money {
	return o.total
}

func (o *Order) DeliveryAddress() string {
	return o.deliveryAddress
}

func (o *Order) Status() Status {
	return o.status
}

// AssignedChef returns the chef identifier, empty when unassigned.
func (o *Order) AssignedChef() string {
	return o.assignedChef
}

// AssignedCourier returns the courier identifier, empty when unassigned.
func (o *Order) AssignedCourier() string {
	return o.assignedCourier
}

func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

func (o *Order) UpdatedAt() time.Time {
	return o.updatedAt
}

func (o *Order) PickupTime() *time.Time {
	return o.pickupTime
}

func (o *Order) ReadyAt() *time.Time {
	return o.readyAt
}

func (o *Order) DeliveredAt() *time.Time {
	return o.deliveredAt
}

func (o *Order) DeliveryNotes() string {
	return o.deliveryNotes
}

func (o *Order) CancellationReason() string {
	return o.cancellationReason
}

func (o *Order) FailureReason() string {
	return o.failureReason
}

// Events returns the domain events raised since construction or the last
// ClearEvents call.
func (o *Order) Events() []Event {
	events := make([]Event, len(o.events))
	copy(events, o.events)
	return events
}

// ClearEvents drops collected events, called after they are published.
func (o *Order) ClearEvents() {
	o.events = nil
}

// TransitionTo moves the order to the target status on behalf of actor.
//
// Checks, in order:
//  1. the actor's role may request the target status (Unauthorized)
//  2. courier-only rule: delivered requires the acting courier to be the
//     assignee (Unauthorized)
//  3. the state machine allows the move (InvalidTransition)
//
// Side effects per target: in_delivery records the acting courier and the
// pickup time, ready records readyAt, delivered records deliveredAt and the
// delivery notes, failed records the failure reason. Raises the matching
// domain event.
func (o *Order) TransitionTo(target Status, actor kernel.AuthContext, notes string, at time.Time) error {
	if err := actor.Validate(); err != nil {
		return err
	}
	if err := target.Validate(); err != nil {
		return err
	}

	if !target.RequestableBy(actor.Role()) {
		return errs.NewUnauthorizedError(actor.Role().String(),
			fmt.Sprintf("transition to %s", target))
	}

	if actor.Role() == kernel.RoleCourier && target == StatusDelivered &&
		o.assignedCourier != actor.Identifier() {
		return errs.NewUnauthorizedErrorWithCause(actor.Role().String(), "complete delivery",
			fmt.Errorf("order is assigned to %s", o.assignedCourier))
	}

	previous := o.status
	newStatus, err := o.status.TransitionTo(target)
	if err != nil {
		return err
	}
	o.status = newStatus
	o.updatedAt = at

	eventType := EventOrderStatusChanged
	detail := map[string]any{
		"previous_status": previous.String(),
		"new_status":      target.String(),
		"actor":           actor.Identifier(),
	}

	switch target {
	case StatusReady:
		readyAt := at
		o.readyAt = &readyAt
	case StatusInDelivery:
		pickup := at
		o.pickupTime = &pickup
		o.assignedCourier = actor.Identifier()
		eventType = EventOrderPickedUp
		detail["courier"] = o.assignedCourier
	case StatusDelivered:
		deliveredAt := at
		o.deliveredAt = &deliveredAt
		o.deliveryNotes = notes
		eventType = EventOrderDelivered
		detail["courier"] = o.assignedCourier
		if o.pickupTime != nil {
			detail["delivery_duration_minutes"] = int(at.Sub(*o.pickupTime).Minutes())
		}
	case StatusFailed:
		o.failureReason = notes
		eventType = EventOrderFailed
		detail["reason"] = notes
	}

	o.raise(eventType, at, detail)
	return nil
}

// AssignChef moves a confirmed order to cooking and records the chef.
// Called by the assignment processor, not by a staff request.
func (o *Order) AssignChef(chefID string, method string, at time.Time) error {
	if chefID == "" {
		return errs.NewValueIsRequiredError("chefID")
	}

	newStatus, err := o.status.TransitionTo(StatusCooking)
	if err != nil {
		return err
	}
	o.status = newStatus
	o.assignedChef = chefID
	o.updatedAt = at

	o.raise(EventOrderAssignedToChef, at, map[string]any{
		"chef":              chefID,
		"assignment_method": method,
	})
	return nil
}

// AssignCourier moves a ready order to in_delivery and records the courier.
// Called by the assignment processor; manual pickups go through TransitionTo.
func (o *Order) AssignCourier(courierID string, method string, at time.Time) error {
	if courierID == "" {
		return errs.NewValueIsRequiredError("courierID")
	}

	newStatus, err := o.status.TransitionTo(StatusInDelivery)
	if err != nil {
		return err
	}
	o.status = newStatus
	o.assignedCourier = courierID
	pickup := at
	o.pickupTime = &pickup
	o.updatedAt = at

	o.raise(EventOrderPickedUp, at, map[string]any{
		"courier":           courierID,
		"assignment_method": method,
	})
	return nil
}

// CancelPickup compensates an in-flight delivery back to ready.
// Only the assigned courier (or an admin) may cancel. The courier
// assignment and pickup time are cleared so the order can be re-claimed.
func (o *Order) CancelPickup(actor kernel.AuthContext, reason string, at time.Time) error {
	if err := actor.Validate(); err != nil {
		return err
	}
	if actor.Role() != kernel.RoleAdmin && o.assignedCourier != actor.Identifier() {
		return errs.NewUnauthorizedErrorWithCause(actor.Role().String(), "cancel pickup",
			fmt.Errorf("order is assigned to %s", o.assignedCourier))
	}
	if o.status != StatusInDelivery {
		return errs.NewInvalidTransitionError(o.status.String(), StatusReady.String())
	}

	canceledBy := o.assignedCourier
	o.status = StatusReady
	o.assignedCourier = ""
	o.pickupTime = nil
	o.cancellationReason = reason
	o.updatedAt = at

	o.raise(EventOrderPickupCanceled, at, map[string]any{
		"canceled_by": canceledBy,
		"reason":      reason,
	})
	return nil
}

func (o *Order) raise(eventType string, at time.Time, detail map[string]any) {
	o.events = append(o.events, newEvent(eventType, o, at, detail))
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setTenantID(tenantID string) error {
	if tenantID == "" {
		return errs.NewValueIsRequiredError("tenantID")
	}
	o.tenantID = tenantID
	return nil
}

func (o *Order) setCustomerID(customerID string) error {
	if customerID == "" {
		return errs.NewValueIsRequiredError("customerID")
	}
	o.customerID = customerID
	return nil
}

func (o *Order) setItems(items []LineItem) error {
	if len(items) == 0 {
		return errs.NewValueIsRequiredError("items")
	}

	var total kernel.Money
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
		total = total.Add(item.Subtotal())
	}

	o.items = make([]LineItem, len(items))
	copy(o.items, items)
	o.total = total
	return nil
}

func (o *Order) setDeliveryAddress(address string) error {
	if address == "" {
		return errs.NewValueIsRequiredError("deliveryAddress")
	}
	o.deliveryAddress = address
	return nil
}

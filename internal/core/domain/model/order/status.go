package order

import (
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

// Status represents the lifecycle state of an order.
// It implements a state machine with defined transitions to ensure
// orders follow the fulfillment workflow.
//
// State transitions:
//
//	pending -> confirmed -> cooking -> packing -> ready -> in_delivery -> delivered
//	                                                ^          │
//	                                                └──────────┘
//	                                           (pickup cancellation)
//
// Every non-terminal state may also transition to failed.
// delivered and failed are terminal.
//
// Status is a value object that validates state transitions and encodes
// which caller roles may request each transition.
type Status string

const (
	// StatusUnknown represents an invalid or undefined status.
	// The empty string helps catch uninitialized Status values.
	StatusUnknown Status = ""

	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusCooking    Status = "cooking"
	StatusPacking    Status = "packing"
	StatusReady      Status = "ready"
	StatusInDelivery Status = "in_delivery"
	StatusDelivered  Status = "delivered"
	StatusFailed     Status = "failed"
)

// getValidStatuses returns the set of statuses an order may hold.
func getValidStatuses() map[Status]struct{} {
	return map[Status]struct{}{
		StatusPending:    {},
		StatusConfirmed:  {},
		StatusCooking:    {},
		StatusPacking:    {},
		StatusReady:      {},
		StatusInDelivery: {},
		StatusDelivered:  {},
		StatusFailed:     {},
	}
}

// getTransitions returns the allowed successor states per status.
// in_delivery -> ready is the compensating move for a canceled pickup.
// failed is reachable from any non-terminal state and handled separately.
func getTransitions() map[Status][]Status {
	return map[Status][]Status{
		StatusPending:    {StatusConfirmed},
		StatusConfirmed:  {StatusCooking},
		StatusCooking:    {StatusPacking},
		StatusPacking:    {StatusReady},
		StatusReady:      {StatusInDelivery},
		StatusInDelivery: {StatusDelivered, StatusReady},
		StatusDelivered:  {},
		StatusFailed:     {},
	}
}

// getRoleTargets returns, per caller role, the set of target statuses that
// role may request. Admins may request any valid target; customers none.
func getRoleTargets() map[kernel.Role]map[Status]struct{} {
	return map[kernel.Role]map[Status]struct{}{
		kernel.RoleChef: {
			StatusConfirmed: {},
			StatusCooking:   {},
			StatusPacking:   {},
			StatusReady:     {},
		},
		kernel.RoleCourier: {
			StatusInDelivery: {},
			StatusDelivered:  {},
		},
		kernel.RoleAdmin: getValidStatuses(),
	}
}

// StatusFromString validates and converts a raw status string.
func StatusFromString(s string) (Status, error) {
	status := Status(s)
	if err := status.Validate(); err != nil {
		return StatusUnknown, err
	}
	return status, nil
}

// Validate checks if the Status value is one of the defined statuses.
func (s Status) Validate() error {
	if _, ok := getValidStatuses()[s]; !ok {
		return errs.NewValueIsInvalidError("status")
	}
	return nil
}

// String returns the wire representation of the status.
func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether no further transitions are possible.
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusFailed
}

// CanTransitionTo reports whether the state machine allows moving from
// the current status to target. failed is reachable from any
// non-terminal status.
func (s Status) CanTransitionTo(target Status) bool {
	if target == StatusFailed {
		return !s.IsTerminal() && s != StatusUnknown
	}
	for _, next := range getTransitions()[s] {
		if next == target {
			return true
		}
	}
	return false
}

// RequestableBy reports whether the given role may request a transition
// into this status. This is the authorization check only; the transition
// itself must still be legal from the current status.
func (s Status) RequestableBy(role kernel.Role) bool {
	targets, ok := getRoleTargets()[role]
	if !ok {
		return false
	}
	_, ok = targets[s]
	return ok
}

// TransitionTo performs the state machine step.
//
// Returns:
//   - (target, nil) when the move is legal
//   - (StatusUnknown, InvalidTransitionError) otherwise
func (s Status) TransitionTo(target Status) (Status, error) {
	if err := target.Validate(); err != nil {
		return StatusUnknown, err
	}
	if !s.CanTransitionTo(target) {
		return StatusUnknown, errs.NewInvalidTransitionError(s.String(), target.String())
	}
	return target, nil
}

// IsAheadOf reports whether the current status sits later in the happy
// path than other. The assignment processor uses this to treat duplicate
// queue deliveries for already-progressed orders as no-ops.
func (s Status) IsAheadOf(other Status) bool {
	return s.sequence() > other.sequence()
}

func (s Status) sequence() int {
	switch s {
	case StatusPending:
		return 1
	case StatusConfirmed:
		return 2
	case StatusCooking:
		return 3
	case StatusPacking:
		return 4
	case StatusReady:
		return 5
	case StatusInDelivery:
		return 6
	case StatusDelivered, StatusFailed:
		return 7
	default:
		return 0
	}
}

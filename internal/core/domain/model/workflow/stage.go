package workflow

import (
	"time"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
)

// Stage names a point where the external orchestration parks and waits
// for a human action. Each stage holds at most one wait token.
type Stage string

const (
	StageConfirmation    Stage = "confirmation"
	StageCooking         Stage = "cooking"
	StagePacking         Stage = "packing"
	StageCourierPickup   Stage = "courier_pickup"
	StageCourierDelivery Stage = "courier_delivery"
)

// Stages returns all wait stages in workflow order.
func Stages() []Stage {
	return []Stage{
		StageConfirmation,
		StageCooking,
		StagePacking,
		StageCourierPickup,
		StageCourierDelivery,
	}
}

// StageFromString validates and converts a raw stage name.
func StageFromString(s string) (Stage, error) {
	switch Stage(s) {
	case StageConfirmation, StageCooking, StagePacking, StageCourierPickup, StageCourierDelivery:
		return Stage(s), nil
	default:
		return "", errs.NewValueIsInvalidError("stage")
	}
}

func (s Stage) String() string {
	return string(s)
}

// Label is the human-readable name shown on waiting-order dashboards.
func (s Stage) Label() string {
	switch s {
	case StageConfirmation:
		return "Order Confirmation"
	case StageCooking:
		return "Complete Cooking"
	case StagePacking:
		return "Complete Packing"
	case StageCourierPickup:
		return "Pick Up Order"
	case StageCourierDelivery:
		return "Complete Delivery"
	default:
		return string(s)
	}
}

// ActionRequiredBy names who has to act to release the stage.
func (s Stage) ActionRequiredBy() string {
	switch s {
	case StageConfirmation:
		return "admin/staff"
	case StageCooking, StagePacking:
		return "chef"
	case StageCourierPickup, StageCourierDelivery:
		return "courier"
	default:
		return ""
	}
}

// StageCompletedBy maps a transition target to the wait stage that the
// transition releases. Transitions without a parked stage return false.
func StageCompletedBy(target order.Status) (Stage, bool) {
	switch target {
	case order.StatusConfirmed:
		return StageConfirmation, true
	case order.StatusPacking:
		return StageCooking, true
	case order.StatusReady:
		return StagePacking, true
	case order.StatusInDelivery:
		return StageCourierPickup, true
	case order.StatusDelivered:
		return StageCourierDelivery, true
	default:
		return "", false
	}
}

// WaitToken is an opaque resume handle issued by the orchestrator,
// paired with the moment the wait began.
type WaitToken struct {
	Token     string
	StartedAt time.Time
}

package workflow

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
)

// ErrLedgerIsNotConstructed is returned when a Ledger instance was not
// created through NewLedger or RestoreLedger.
var ErrLedgerIsNotConstructed = errors.New("Ledger must be created via NewLedger constructor")

// SystemActor owns steps that no human performed (creation, compensations).
const SystemActor = "system"

// Step is one entry of the append-only workflow history.
// A step with a nil CompletedAt is open.
type Step struct {
	Status      order.Status
	AssignedTo  string
	StartedAt   time.Time
	CompletedAt *time.Time
	Notes       string
}

// IsOpen reports whether the step has not been completed yet.
func (s Step) IsOpen() bool {
	return s.CompletedAt == nil
}

// Ledger is the per-order workflow aggregate: the append-only step
// history plus the wait tokens parked by the external orchestration.
//
// Invariants:
//   - at most one step is open at any time
//   - recording a new step completes the previous open one with the
//     same timestamp the new step starts with
//   - currentStatus mirrors the most recently recorded step
//   - each stage holds at most one token, consumed exactly once
type Ledger struct {
	orderID       kernel.UUID
	steps         []Step
	currentStatus order.Status
	tokens        map[Stage]WaitToken
	updatedAt     time.Time

	isConstructed bool
}

// NewLedger opens the workflow history for a freshly created order with
// a pending step owned by the system.
func NewLedger(orderID kernel.UUID, at time.Time) (*Ledger, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	return &Ledger{
		orderID: orderID,
		steps: []Step{{
			Status:     order.StatusPending,
			AssignedTo: SystemActor,
			StartedAt:  at,
			Notes:      "Order received",
		}},
		currentStatus: order.StatusPending,
		tokens:        map[Stage]WaitToken{},
		updatedAt:     at,
		isConstructed: true,
	}, nil
}

// RestoreLedgerParams carries the persisted state of a ledger.
type RestoreLedgerParams struct {
	OrderID       kernel.UUID
	Steps         []Step
	CurrentStatus order.Status
	Tokens        map[Stage]WaitToken
	UpdatedAt     time.Time
}

// RestoreLedger reconstructs a ledger from persistence.
func RestoreLedger(params RestoreLedgerParams) (*Ledger, error) {
	if err := params.OrderID.Validate(); err != nil {
		return nil, err
	}
	if err := params.CurrentStatus.Validate(); err != nil {
		return nil, err
	}

	tokens := make(map[Stage]WaitToken, len(params.Tokens))
	for stage, token := range params.Tokens {
		if _, err := StageFromString(string(stage)); err != nil {
			return nil, err
		}
		tokens[stage] = token
	}

	steps := make([]Step, len(params.Steps))
	copy(steps, params.Steps)

	return &Ledger{
		orderID:       params.OrderID,
		steps:         steps,
		currentStatus: params.CurrentStatus,
		tokens:        tokens,
		updatedAt:     params.UpdatedAt,
		isConstructed: true,
	}, nil
}

// Validate ensures the ledger was properly constructed and that at most
// one step is open.
func (l *Ledger) Validate() error {
	if l == nil || !l.isConstructed {
		return ErrLedgerIsNotConstructed
	}

	open := 0
	for _, step := range l.steps {
		if step.IsOpen() {
			open++
		}
	}
	if open > 1 {
		return errs.NewValueIsInvalidError("ledger has more than one open step")
	}
	return nil
}

func (l *Ledger) OrderID() kernel.UUID {
	return l.orderID
}

// Steps returns a copy of the step history.
func (l *Ledger) Steps() []Step {
	steps := make([]Step, len(l.steps))
	copy(steps, l.steps)
	return steps
}

func (l *Ledger) CurrentStatus() order.Status {
	return l.currentStatus
}

func (l *Ledger) UpdatedAt() time.Time {
	return l.updatedAt
}

// OpenStep returns the currently open step, if any.
func (l *Ledger) OpenStep() (Step, bool) {
	for _, step := range l.steps {
		if step.IsOpen() {
			return step, true
		}
	}
	return Step{}, false
}

// RecordTransition appends a step for the new status, completing the
// previous open step with the same timestamp. Terminal statuses close
// their own step immediately so the history ends fully completed.
func (l *Ledger) RecordTransition(status order.Status, assignedTo string, notes string, at time.Time) error {
	if err := status.Validate(); err != nil {
		return err
	}
	if assignedTo == "" {
		assignedTo = SystemActor
	}

	l.closeOpen("", at)

	step := Step{
		Status:     status,
		AssignedTo: assignedTo,
		StartedAt:  at,
		Notes:      notes,
	}
	if status.IsTerminal() {
		completed := at
		step.CompletedAt = &completed
	}

	l.steps = append(l.steps, step)
	l.currentStatus = status
	l.updatedAt = at
	return nil
}

// CloseOpenStep completes the open step, optionally replacing its notes.
// Closing when no step is open is a no-op.
func (l *Ledger) CloseOpenStep(notes string, at time.Time) {
	l.closeOpen(notes, at)
	l.updatedAt = at
}

func (l *Ledger) closeOpen(notes string, at time.Time) {
	for i := range l.steps {
		if l.steps[i].IsOpen() {
			completed := at
			l.steps[i].CompletedAt = &completed
			if notes != "" {
				l.steps[i].Notes = notes
			}
			return
		}
	}
}

// StoreToken parks a wait token on the given stage. Re-registering a
// stage overwrites the previous token: the orchestrator only ever has
// one live token per stage.
func (l *Ledger) StoreToken(stage Stage, token string, at time.Time) error {
	if _, err := StageFromString(string(stage)); err != nil {
		return err
	}
	if token == "" {
		return errs.NewValueIsRequiredError("token")
	}

	l.tokens[stage] = WaitToken{Token: token, StartedAt: at}
	l.updatedAt = at
	return nil
}

// Token returns the parked token for a stage without consuming it.
func (l *Ledger) Token(stage Stage) (WaitToken, bool) {
	token, ok := l.tokens[stage]
	return token, ok
}

// ConsumeToken removes and returns the token parked on the stage.
// A second consume, or a consume with nothing parked, reports
// ErrStaleTokenResume so callers can log and continue.
func (l *Ledger) ConsumeToken(stage Stage, at time.Time) (WaitToken, error) {
	if _, err := StageFromString(string(stage)); err != nil {
		return WaitToken{}, err
	}

	token, ok := l.tokens[stage]
	if !ok {
		return WaitToken{}, errs.ErrStaleTokenResume
	}

	delete(l.tokens, stage)
	l.updatedAt = at
	return token, nil
}

// ActiveStages returns the stages with a parked token, in workflow order.
func (l *Ledger) ActiveStages() []Stage {
	var active []Stage
	for _, stage := range Stages() {
		if _, ok := l.tokens[stage]; ok {
			active = append(active, stage)
		}
	}
	return active
}

// IsWaiting reports whether any stage has a parked token.
func (l *Ledger) IsWaiting() bool {
	return len(l.tokens) > 0
}

// Tokens returns a copy of the parked tokens keyed by stage.
func (l *Ledger) Tokens() map[Stage]WaitToken {
	tokens := make(map[Stage]WaitToken, len(l.tokens))
	for stage, token := range l.tokens {
		tokens[stage] = token
	}
	return tokens
}

// Progress reports completed and total step counts for dashboards.
func (l *Ledger) Progress() (completed int, total int) {
	for _, step := range l.steps {
		if !step.IsOpen() {
			completed++
		}
	}
	return completed, len(l.steps)
}

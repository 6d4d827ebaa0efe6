// Package workflowrepo persists workflow ledgers. The step history lives in
// a jsonb column; wait tokens get one column pair per stage so the waiting
// orders query can filter on them directly.
package workflowrepo

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/workflow"

	"github.com/google/uuid"
)

// WorkflowDTO represents the database structure for persisting ledgers.
type WorkflowDTO struct {
	OrderID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	Steps         Steps     `gorm:"type:jsonb"`
	CurrentStatus string    `gorm:"index"`
	UpdatedAt     time.Time

	ConfirmationTaskToken        *string
	ConfirmationWaitStartedAt    *time.Time
	CookingTaskToken             *string
	CookingWaitStartedAt         *time.Time
	PackingTaskToken             *string
	PackingWaitStartedAt         *time.Time
	CourierPickupTaskToken       *string
	CourierPickupWaitStartedAt   *time.Time
	CourierDeliveryTaskToken     *string
	CourierDeliveryWaitStartedAt *time.Time
}

// TableName specifies the database table name for workflow ledgers.
func (WorkflowDTO) TableName() string {
	return "workflows"
}

// StepDTO is one element of the jsonb steps column.
type StepDTO struct {
	Status      string     `json:"status"`
	AssignedTo  string     `json:"assigned_to"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Notes       string     `json:"notes,omitempty"`
}

// Steps marshals the step history to and from the jsonb column.
type Steps []StepDTO

func (s Steps) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *Steps) Scan(value any) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("unsupported jsonb source type %T", value)
	}
}

// fromDomain converts a ledger aggregate to its database representation.
func fromDomain(aggregate *workflow.Ledger) WorkflowDTO {
	domainSteps := aggregate.Steps()
	steps := make(Steps, 0, len(domainSteps))
	for _, step := range domainSteps {
		steps = append(steps, StepDTO{
			Status:      step.Status.String(),
			AssignedTo:  step.AssignedTo,
			StartedAt:   step.StartedAt,
			CompletedAt: step.CompletedAt,
			Notes:       step.Notes,
		})
	}

	dto := WorkflowDTO{
		OrderID:       aggregate.OrderID().Bytes(),
		Steps:         steps,
		CurrentStatus: aggregate.CurrentStatus().String(),
		UpdatedAt:     aggregate.UpdatedAt(),
	}

	for stage, token := range aggregate.Tokens() {
		value := token.Token
		startedAt := token.StartedAt
		switch stage {
		case workflow.StageConfirmation:
			dto.ConfirmationTaskToken = &value
			dto.ConfirmationWaitStartedAt = &startedAt
		case workflow.StageCooking:
			dto.CookingTaskToken = &value
			dto.CookingWaitStartedAt = &startedAt
		case workflow.StagePacking:
			dto.PackingTaskToken = &value
			dto.PackingWaitStartedAt = &startedAt
		case workflow.StageCourierPickup:
			dto.CourierPickupTaskToken = &value
			dto.CourierPickupWaitStartedAt = &startedAt
		case workflow.StageCourierDelivery:
			dto.CourierDeliveryTaskToken = &value
			dto.CourierDeliveryWaitStartedAt = &startedAt
		}
	}

	return dto
}

// toDomain converts a database DTO back to a ledger aggregate using RestoreLedger.
func toDomain(dto WorkflowDTO) (*workflow.Ledger, error) {
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}

	currentStatus, err := order.StatusFromString(dto.CurrentStatus)
	if err != nil {
		return nil, err
	}

	steps := make([]workflow.Step, 0, len(dto.Steps))
	for _, stepDTO := range dto.Steps {
		status, statusErr := order.StatusFromString(stepDTO.Status)
		if statusErr != nil {
			return nil, statusErr
		}
		steps = append(steps, workflow.Step{
			Status:      status,
			AssignedTo:  stepDTO.AssignedTo,
			StartedAt:   stepDTO.StartedAt,
			CompletedAt: stepDTO.CompletedAt,
			Notes:       stepDTO.Notes,
		})
	}

	tokens := map[workflow.Stage]workflow.WaitToken{}
	collect := func(stage workflow.Stage, token *string, startedAt *time.Time) {
		if token != nil && startedAt != nil {
			tokens[stage] = workflow.WaitToken{Token: *token, StartedAt: *startedAt}
		}
	}
	collect(workflow.StageConfirmation, dto.ConfirmationTaskToken, dto.ConfirmationWaitStartedAt)
	collect(workflow.StageCooking, dto.CookingTaskToken, dto.CookingWaitStartedAt)
	collect(workflow.StagePacking, dto.PackingTaskToken, dto.PackingWaitStartedAt)
	collect(workflow.StageCourierPickup, dto.CourierPickupTaskToken, dto.CourierPickupWaitStartedAt)
	collect(workflow.StageCourierDelivery, dto.CourierDeliveryTaskToken, dto.CourierDeliveryWaitStartedAt)

	return workflow.RestoreLedger(workflow.RestoreLedgerParams{
		OrderID:       orderID,
		Steps:         steps,
		CurrentStatus: currentStatus,
		Tokens:        tokens,
		UpdatedAt:     dto.UpdatedAt,
	})
}

package workflowrepo

import (
	"context"
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/workflow"
	"fulfillment/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormWorkflowRepository implements WorkflowRepository using GORM.
type GormWorkflowRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormWorkflowRepository creates a new GORM workflow repository.
func NewGormWorkflowRepository(db *gorm.DB, tracker aggregateTracker) *GormWorkflowRepository {
	return &GormWorkflowRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new ledger to the database.
func (r *GormWorkflowRepository) Add(ctx context.Context, aggregate *workflow.Ledger) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.OrderID(), aggregate)
	return nil
}

// Update saves an existing ledger to the database. All columns are written:
// consuming a token must null out its column pair.
func (r *GormWorkflowRepository) Update(ctx context.Context, aggregate *workflow.Ledger) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).Model(&WorkflowDTO{}).
		Where("order_id = ?", dto.OrderID).
		Select("*").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	r.tracker.TrackAggregate(aggregate.OrderID(), aggregate)
	return nil
}

// Get retrieves the ledger for an order.
func (r *GormWorkflowRepository) Get(ctx context.Context,
	orderID kernel.UUID) (*workflow.Ledger, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	var dto WorkflowDTO
	if err := r.db.WithContext(ctx).First(&dto, "order_id = ?", orderID.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("workflow", orderID.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

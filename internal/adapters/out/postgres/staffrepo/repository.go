package staffrepo

import (
	"context"
	"errors"

	"fulfillment/internal/core/domain/model/staff"
	"fulfillment/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStaffRepository implements StaffRepository using GORM.
type GormStaffRepository struct {
	db *gorm.DB
}

// NewGormStaffRepository creates a new GORM staff repository.
func NewGormStaffRepository(db *gorm.DB) *GormStaffRepository {
	return &GormStaffRepository{db: db}
}

// Upsert creates or replaces the availability record. Self-reports and
// assignment updates both land here, so insert and update share one path.
func (r *GormStaffRepository) Upsert(ctx context.Context,
	aggregate *staff.StaffAvailability) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "staff_id"}},
			UpdateAll: true,
		}).
		Create(&dto).Error
}

// Get retrieves the record for a staff member.
func (r *GormStaffRepository) Get(ctx context.Context,
	staffID string) (*staff.StaffAvailability, error) {
	if staffID == "" {
		return nil, errs.NewValueIsRequiredError("staffID")
	}

	var dto StaffDTO
	if err := r.db.WithContext(ctx).First(&dto, "staff_id = ?", staffID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("staff", staffID)
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetAvailable retrieves the selectable candidates of one type within a
// tenant. TTL expiry is judged by the caller against its own clock.
func (r *GormStaffRepository) GetAvailable(ctx context.Context, tenantID string,
	staffType staff.Type) ([]*staff.StaffAvailability, error) {
	if tenantID == "" {
		return nil, errs.NewValueIsRequiredError("tenantID")
	}
	if _, err := staff.TypeFromString(staffType.String()); err != nil {
		return nil, err
	}

	var dtos []StaffDTO
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND staff_type = ? AND status = ?",
			tenantID, staffType.String(), staff.StatusAvailable.String()).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	records := make([]*staff.StaffAvailability, 0, len(dtos))
	for _, dto := range dtos {
		record, mapErr := toDomain(dto)
		if mapErr != nil {
			return nil, mapErr
		}
		records = append(records, record)
	}

	return records, nil
}

package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/staff"
)

// StaffRepository defines the persistence contract for staff availability
// records. Records are keyed by the staff identifier (email or user id)
// and written with upsert semantics: self-reports both create and refresh.
type StaffRepository interface {
	// Upsert creates or replaces the availability record.
	Upsert(ctx context.Context, aggregate *staff.StaffAvailability) error

	// Get retrieves the record for a staff member.
	Get(ctx context.Context, staffID string) (*staff.StaffAvailability, error)

	// GetAvailable retrieves the selectable candidates of one type within
	// a tenant. Expired records are filtered out by the caller.
	GetAvailable(ctx context.Context, tenantID string, staffType staff.Type) ([]*staff.StaffAvailability, error)
}

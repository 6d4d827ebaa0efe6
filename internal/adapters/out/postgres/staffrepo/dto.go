// Package staffrepo persists staff availability records. Records are keyed
// by the staff identifier issued by the identity provider, not by a UUID.
package staffrepo

import (
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/staff"

	"github.com/google/uuid"
)

// StaffDTO represents the database structure for availability records.
type StaffDTO struct {
	StaffID        string `gorm:"primaryKey"`
	StaffType      string `gorm:"index"`
	Status         string `gorm:"index"`
	CurrentOrderID *uuid.UUID
	CompletedCount int
	TenantID       string `gorm:"index"`
	LastUpdated    time.Time
	ExpiresAt      time.Time
}

// TableName specifies the database table name for availability records.
func (StaffDTO) TableName() string {
	return "staff_availability"
}

// fromDomain converts an availability record to its database representation.
func fromDomain(aggregate *staff.StaffAvailability) StaffDTO {
	var currentOrderID *uuid.UUID
	if id := aggregate.CurrentOrderID(); id != nil {
		raw := id.Bytes()
		currentOrderID = &raw
	}

	return StaffDTO{
		StaffID:        aggregate.StaffID(),
		StaffType:      aggregate.StaffType().String(),
		Status:         aggregate.Status().String(),
		CurrentOrderID: currentOrderID,
		CompletedCount: aggregate.CompletedCount(),
		TenantID:       aggregate.TenantID(),
		LastUpdated:    aggregate.LastUpdated(),
		ExpiresAt:      aggregate.ExpiresAt(),
	}
}

// toDomain converts a database DTO back to an availability record.
func toDomain(dto StaffDTO) (*staff.StaffAvailability, error) {
	staffType, err := staff.TypeFromString(dto.StaffType)
	if err != nil {
		return nil, err
	}

	status, err := staff.StatusFromString(dto.Status)
	if err != nil {
		return nil, err
	}

	var currentOrderID *kernel.UUID
	if dto.CurrentOrderID != nil {
		id, idErr := kernel.UUIDFromBytes(dto.CurrentOrderID[:])
		if idErr != nil {
			return nil, idErr
		}
		currentOrderID = &id
	}

	return staff.RestoreStaffAvailability(staff.RestoreStaffAvailabilityParams{
		StaffID:        dto.StaffID,
		StaffType:      staffType,
		Status:         status,
		CurrentOrderID: currentOrderID,
		CompletedCount: dto.CompletedCount,
		TenantID:       dto.TenantID,
		LastUpdated:    dto.LastUpdated,
		ExpiresAt:      dto.ExpiresAt,
	})
}

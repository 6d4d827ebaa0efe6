package staff

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

// ErrStaffIsNotConstructed is returned when a StaffAvailability instance was
// not created through NewStaffAvailability or RestoreStaffAvailability.
var ErrStaffIsNotConstructed = errors.New(
	"StaffAvailability must be created via NewStaffAvailability constructor")

// availabilityTTL bounds how long a self-reported record stays trustworthy.
// Records are refreshed on every report; expired ones drop out of selection.
const availabilityTTL = 24 * time.Hour

// Type distinguishes the two assignable staff kinds.
type Type string

const (
	TypeChef    Type = "chef"
	TypeCourier Type = "courier"
)

// TypeFromString validates and converts a raw staff type.
func TypeFromString(s string) (Type, error) {
	switch Type(s) {
	case TypeChef, TypeCourier:
		return Type(s), nil
	default:
		return "", errs.NewValueIsInvalidError("staffType")
	}
}

// TypeFromRole maps an assignable caller role to its staff type.
func TypeFromRole(role kernel.Role) (Type, error) {
	switch role {
	case kernel.RoleChef:
		return TypeChef, nil
	case kernel.RoleCourier:
		return TypeCourier, nil
	default:
		return "", errs.NewValueIsInvalidError("role is not assignable staff")
	}
}

func (t Type) String() string {
	return string(t)
}

// Status is the staff member's self-reported working state.
type Status string

const (
	StatusAvailable Status = "available"
	StatusBusy      Status = "busy"
	StatusOffline   Status = "offline"
)

// StatusFromString validates and converts a raw availability status.
func StatusFromString(s string) (Status, error) {
	switch Status(s) {
	case StatusAvailable, StatusBusy, StatusOffline:
		return Status(s), nil
	default:
		return "", errs.NewValueIsInvalidError("status")
	}
}

func (s Status) String() string {
	return string(s)
}

// StaffAvailability is the aggregate tracking one staff member's working
// state and load. The assignment processor reads it to pick the least
// loaded candidate and flips it busy inside the same transaction.
//
// Invariant: currentOrderID is set exactly while the status is busy.
type StaffAvailability struct {
	staffID        string
	staffType      Type
	status         Status
	currentOrderID *kernel.UUID
	completedCount int
	tenantID       string
	lastUpdated    time.Time
	expiresAt      time.Time

	isConstructed bool
}

// NewStaffAvailability registers a staff member as available with no load.
func NewStaffAvailability(staffID string, staffType Type, tenantID string,
	at time.Time) (*StaffAvailability, error) {
	if staffID == "" {
		return nil, errs.NewValueIsRequiredError("staffID")
	}
	if _, err := TypeFromString(string(staffType)); err != nil {
		return nil, err
	}
	if tenantID == "" {
		return nil, errs.NewValueIsRequiredError("tenantID")
	}

	return &StaffAvailability{
		staffID:       staffID,
		staffType:     staffType,
		status:        StatusAvailable,
		tenantID:      tenantID,
		lastUpdated:   at,
		expiresAt:     at.Add(availabilityTTL),
		isConstructed: true,
	}, nil
}

// RestoreStaffAvailabilityParams carries the persisted state of a record.
type RestoreStaffAvailabilityParams struct {
	StaffID        string
	StaffType      Type
	Status         Status
	CurrentOrderID *kernel.UUID
	CompletedCount int
	TenantID       string
	LastUpdated    time.Time
	ExpiresAt      time.Time
}

// RestoreStaffAvailability reconstructs a record from persistence.
func RestoreStaffAvailability(params RestoreStaffAvailabilityParams) (*StaffAvailability, error) {
	if params.StaffID == "" {
		return nil, errs.NewValueIsRequiredError("staffID")
	}
	if _, err := TypeFromString(string(params.StaffType)); err != nil {
		return nil, err
	}
	if _, err := StatusFromString(string(params.Status)); err != nil {
		return nil, err
	}
	if params.TenantID == "" {
		return nil, errs.NewValueIsRequiredError("tenantID")
	}

	return &StaffAvailability{
		staffID:        params.StaffID,
		staffType:      params.StaffType,
		status:         params.Status,
		currentOrderID: params.CurrentOrderID,
		completedCount: params.CompletedCount,
		tenantID:       params.TenantID,
		lastUpdated:    params.LastUpdated,
		expiresAt:      params.ExpiresAt,
		isConstructed:  true,
	}, nil
}

// Validate ensures the record was created via a factory method and that
// the busy/current-order invariant holds.
func (s *StaffAvailability) Validate() error {
	if s == nil || !s.isConstructed {
		return ErrStaffIsNotConstructed
	}
	if s.status == StatusBusy && s.currentOrderID == nil {
		return errs.NewValueIsRequiredError("currentOrderID for busy staff")
	}
	if s.status != StatusBusy && s.currentOrderID != nil {
		return errs.NewValueIsInvalidError("currentOrderID must be empty unless busy")
	}
	return nil
}

func (s *StaffAvailability) StaffID() string {
	return s.staffID
}

func (s *StaffAvailability) StaffType() Type {
	return s.staffType
}

func (s *StaffAvailability) Status() Status {
	return s.status
}

func (s *StaffAvailability) CurrentOrderID() *kernel.UUID {
	return s.currentOrderID
}

func (s *StaffAvailability) CompletedCount() int {
	return s.completedCount
}

func (s *StaffAvailability) TenantID() string {
	return s.tenantID
}

func (s *StaffAvailability) LastUpdated() time.Time {
	return s.lastUpdated
}

func (s *StaffAvailability) ExpiresAt() time.Time {
	return s.expiresAt
}

// IsExpired reports whether the record's TTL has lapsed.
func (s *StaffAvailability) IsExpired(now time.Time) bool {
	return now.After(s.expiresAt)
}

// IsSelectable reports whether the member can take an assignment.
func (s *StaffAvailability) IsSelectable(now time.Time) bool {
	return s.status == StatusAvailable && !s.IsExpired(now)
}

// Report applies a self-reported status change and refreshes the TTL.
// Reporting available or offline clears any stuck order reference, which
// lets staff self-heal after a crashed assignment.
func (s *StaffAvailability) Report(status Status, at time.Time) error {
	if _, err := StatusFromString(string(status)); err != nil {
		return err
	}

	s.status = status
	if status != StatusBusy {
		s.currentOrderID = nil
	}
	s.touch(at)
	return nil
}

// MarkBusy flips an available member to busy on the given order.
func (s *StaffAvailability) MarkBusy(orderID kernel.UUID, at time.Time) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	if s.status != StatusAvailable {
		return errs.NewValueIsInvalidError("staff is not available")
	}

	s.status = StatusBusy
	s.currentOrderID = &orderID
	s.touch(at)
	return nil
}

// CompleteAssignment releases the member after finished work and counts it.
func (s *StaffAvailability) CompleteAssignment(at time.Time) {
	s.status = StatusAvailable
	s.currentOrderID = nil
	s.completedCount++
	s.touch(at)
}

// ClearAssignment releases the member without crediting a completion,
// used when a pickup is canceled.
func (s *StaffAvailability) ClearAssignment(at time.Time) {
	s.status = StatusAvailable
	s.currentOrderID = nil
	s.touch(at)
}

func (s *StaffAvailability) touch(at time.Time) {
	s.lastUpdated = at
	s.expiresAt = at.Add(availabilityTTL)
}

package queries

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/staff"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrGetStaffRosterQueryIsNotConstructed = errors.New(
	"GetStaffRosterQuery must be created via NewGetStaffRosterQuery constructor",
)

// GetStaffRosterQuery lists the availability records of a tenant, optionally
// narrowed to one staff type. Admin only.
type GetStaffRosterQuery struct {
	auth      kernel.AuthContext
	staffType *staff.Type

	guard guard.ConstructorGuard
}

// NewGetStaffRosterQuery creates a roster query. Pass an empty staff type
// for the full roster.
func NewGetStaffRosterQuery(auth kernel.AuthContext,
	staffType string) (GetStaffRosterQuery, error) {
	if err := auth.Validate(); err != nil {
		return GetStaffRosterQuery{}, err
	}
	if auth.Role() != kernel.RoleAdmin {
		return GetStaffRosterQuery{}, errs.NewUnauthorizedError(
			auth.Role().String(), "view staff roster")
	}

	var typeFilter *staff.Type
	if staffType != "" {
		parsed, err := staff.TypeFromString(staffType)
		if err != nil {
			return GetStaffRosterQuery{}, err
		}
		typeFilter = &parsed
	}

	return GetStaffRosterQuery{
		auth:      auth,
		staffType: typeFilter,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetStaffRosterQuery) Validate() error {
	return q.guard.Validate(ErrGetStaffRosterQueryIsNotConstructed)
}

func (q GetStaffRosterQuery) Auth() kernel.AuthContext {
	return q.auth
}

func (q GetStaffRosterQuery) StaffType() *staff.Type {
	return q.staffType
}

// StaffMemberResponse is one availability record in the roster.
type StaffMemberResponse struct {
	StaffID        string       `json:"staff_id"`
	StaffType      string       `json:"staff_type"`
	Status         string       `json:"status"`
	CurrentOrderID *kernel.UUID `json:"current_order_id,omitempty"`
	CompletedCount int          `json:"completed_count"`
	LastUpdated    time.Time    `json:"last_updated"`
	ExpiresAt      time.Time    `json:"expires_at"`
	IsExpired      bool         `json:"is_expired"`
}

// RosterSummaryResponse counts the roster by availability status.
type RosterSummaryResponse struct {
	Available int `json:"available"`
	Busy      int `json:"busy"`
	Offline   int `json:"offline"`
}

// GetStaffRosterQueryResponse is the roster read model.
type GetStaffRosterQueryResponse struct {
	Members []StaffMemberResponse `json:"members"`
	Summary RosterSummaryResponse `json:"summary"`
}

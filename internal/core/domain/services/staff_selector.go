package services

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/staff"
)

// ErrNoStaffAvailable is returned when no candidate can take an
// assignment. The queue transport treats it as a retry signal: the work
// item is redelivered with a delay instead of being dropped.
var ErrNoStaffAvailable = errors.New("no staff available")

// StaffSelector is a domain service that picks the candidate for the next
// assignment using least-loaded-first selection.
//
// Selection rules:
//   - only available, non-expired records qualify
//   - fewest completed assignments wins
//   - ties break toward the least recently updated record, spreading
//     work across equally loaded staff
type StaffSelector struct{}

// NewStaffSelector creates a new StaffSelector instance.
func NewStaffSelector() StaffSelector {
	return StaffSelector{}
}

// Select returns the least-loaded available candidate.
//
// Returns ErrNoStaffAvailable when no candidate qualifies, or a
// validation error when a candidate record is inconsistent.
func (s StaffSelector) Select(candidates []*staff.StaffAvailability,
	now time.Time) (*staff.StaffAvailability, error) {
	var best *staff.StaffAvailability

	for _, candidate := range candidates {
		if err := candidate.Validate(); err != nil {
			return nil, err
		}
		if !candidate.IsSelectable(now) {
			continue
		}
		if best == nil || s.lessLoaded(candidate, best) {
			best = candidate
		}
	}

	if best == nil {
		return nil, ErrNoStaffAvailable
	}
	return best, nil
}

func (s StaffSelector) lessLoaded(a, b *staff.StaffAvailability) bool {
	if a.CompletedCount() != b.CompletedCount() {
		return a.CompletedCount() < b.CompletedCount()
	}
	return a.LastUpdated().Before(b.LastUpdated())
}

package queries

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/staff"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetStaffRosterQueryHandler retrieves staff availability records from the
// database. Expired records stay in the roster with a flag; they disappear
// from assignment selection but the admin still sees who went dark.
type GetStaffRosterQueryHandler struct {
	db *gorm.DB
}

// NewGetStaffRosterQueryHandler creates a handler for roster queries.
func NewGetStaffRosterQueryHandler(db *gorm.DB) GetStaffRosterQueryHandler {
	return GetStaffRosterQueryHandler{db: db}
}

// Handle executes the roster query for the caller's tenant.
func (h GetStaffRosterQueryHandler) Handle(
	ctx context.Context,
	query GetStaffRosterQuery,
) (GetStaffRosterQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetStaffRosterQueryResponse{}, err
	}

	sql := `
		SELECT
			staff_id,
			staff_type,
			status,
			current_order_id,
			completed_count,
			last_updated,
			expires_at
		FROM staff_availability
		WHERE tenant_id = ?
	`
	args := []any{query.Auth().TenantID()}
	if staffType := query.StaffType(); staffType != nil {
		sql += ` AND staff_type = ?`
		args = append(args, staffType.String())
	}
	sql += ` ORDER BY staff_id`

	rows, err := h.db.WithContext(ctx).Raw(sql, args...).Rows()
	if err != nil {
		return GetStaffRosterQueryResponse{}, err
	}
	defer rows.Close()

	now := time.Now().UTC()

	response := GetStaffRosterQueryResponse{
		Members: make([]StaffMemberResponse, 0),
	}
	for rows.Next() {
		var member StaffMemberResponse
		var currentOrderID *uuid.UUID

		err = rows.Scan(
			&member.StaffID,
			&member.StaffType,
			&member.Status,
			&currentOrderID,
			&member.CompletedCount,
			&member.LastUpdated,
			&member.ExpiresAt,
		)
		if err != nil {
			return GetStaffRosterQueryResponse{}, err
		}

		if currentOrderID != nil {
			orderID, idErr := kernel.UUIDFromBytes(currentOrderID[:])
			if idErr != nil {
				return GetStaffRosterQueryResponse{}, idErr
			}
			member.CurrentOrderID = &orderID
		}

		member.IsExpired = now.After(member.ExpiresAt)
		response.Members = append(response.Members, member)

		switch staff.Status(member.Status) {
		case staff.StatusAvailable:
			response.Summary.Available++
		case staff.StatusBusy:
			response.Summary.Busy++
		case staff.StatusOffline:
			response.Summary.Offline++
		}
	}

	if err = rows.Err(); err != nil {
		return GetStaffRosterQueryResponse{}, err
	}

	return response, nil
}

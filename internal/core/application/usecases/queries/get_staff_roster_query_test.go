package queries_test

import (
	"testing"

	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/require"
)

func TestNewGetStaffRosterQuery_AdminOnly(t *testing.T) {
	for _, role := range []kernel.Role{kernel.RoleCustomer, kernel.RoleChef, kernel.RoleCourier} {
		auth, err := kernel.NewAuthContext("tenant-1", "user-1", role, "user@example.com")
		require.NoError(t, err)

		_, err = queries.NewGetStaffRosterQuery(auth, "")
		require.ErrorIs(t, err, errs.ErrUnauthorized, "role %s", role)
	}
}

func TestNewGetStaffRosterQuery_InvalidStaffType(t *testing.T) {
	auth, err := kernel.NewAuthContext("tenant-1", "admin-1",
		kernel.RoleAdmin, "admin@example.com")
	require.NoError(t, err)

	_, err = queries.NewGetStaffRosterQuery(auth, "dispatcher")
	require.Error(t, err)
}

func TestNewGetStaffRosterQuery_TypeFilter(t *testing.T) {
	auth, err := kernel.NewAuthContext("tenant-1", "admin-1",
		kernel.RoleAdmin, "admin@example.com")
	require.NoError(t, err)

	query, err := queries.NewGetStaffRosterQuery(auth, "chef")
	require.NoError(t, err)
	require.NoError(t, query.Validate())
	require.NotNil(t, query.StaffType())
	require.Equal(t, "chef", query.StaffType().String())

	unfiltered, err := queries.NewGetStaffRosterQuery(auth, "")
	require.NoError(t, err)
	require.Nil(t, unfiltered.StaffType())
}

func TestGetStaffRosterQuery_ZeroValueFailsValidation(t *testing.T) {
	var query queries.GetStaffRosterQuery
	require.ErrorIs(t, query.Validate(), queries.ErrGetStaffRosterQueryIsNotConstructed)
}

package kernel

import (
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

// Role is the caller's resolved role. The authorizer upstream resolves it
// before a request reaches this service; there is no fallback parsing here.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleChef     Role = "chef"
	RoleCourier  Role = "courier"
	RoleAdmin    Role = "admin"
)

// RoleFromString validates and converts a raw role string.
func RoleFromString(s string) (Role, error) {
	switch Role(s) {
	case RoleCustomer, RoleChef, RoleCourier, RoleAdmin:
		return Role(s), nil
	default:
		return "", errs.NewValueIsInvalidError("role")
	}
}

// IsStaff reports whether the role belongs to operational staff.
func (r Role) IsStaff() bool {
	return r == RoleChef || r == RoleCourier || r == RoleAdmin
}

func (r Role) String() string {
	return string(r)
}

var errAuthContextNotConstructed = errs.NewValueIsRequiredError(
	"AuthContext must be created via NewAuthContext")

// AuthContext identifies the authenticated caller of an operation:
// tenant, user id, role and optional email. It is a value object; the
// zero value fails validation.
type AuthContext struct {
	tenantID string
	userID   string
	role     Role
	email    string

	guard guard.ConstructorGuard
}

func NewAuthContext(tenantID string, userID string, role Role, email string) (AuthContext, error) {
	if tenantID == "" {
		return AuthContext{}, errs.NewValueIsRequiredError("tenantID")
	}
	if userID == "" {
		return AuthContext{}, errs.NewValueIsRequiredError("userID")
	}
	if _, err := RoleFromString(string(role)); err != nil {
		return AuthContext{}, err
	}

	return AuthContext{
		tenantID: tenantID,
		userID:   userID,
		role:     role,
		email:    email,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (a AuthContext) TenantID() string {
	return a.tenantID
}

func (a AuthContext) UserID() string {
	return a.userID
}

func (a AuthContext) Role() Role {
	return a.role
}

func (a AuthContext) Email() string {
	return a.email
}

// Identifier is the stable staff identifier: email when present, user id
// otherwise. Staff records and order assignments are keyed by it.
func (a AuthContext) Identifier() string {
	if a.email != "" {
		return a.email
	}
	return a.userID
}

func (a AuthContext) Validate() error {
	return a.guard.Validate(errAuthContextNotConstructed)
}

package session

import (
	"context"

	"github.com/labportal/labportal/internal/account"
)

// Session is the authenticated context for the current user: a projection of
// the account that never carries the secret.
type Session struct {
	Identifier  string       `json:"identifier"`
	Role        account.Role `json:"role"`
	DisplayName string       `json:"displayName"`
}

// FromAccount projects an account into a session.
func FromAccount(acc account.Account) Session {
	return Session{
		Identifier:  acc.Email,
		Role:        acc.Role,
		DisplayName: acc.DisplayName(),
	}
}

// Store persists the single session slot. Load reports ok=false when no
// session is present, which is a redirect, not an error.
type Store interface {
	Save(ctx context.Context, s Session, remember bool) error
	Load(ctx context.Context) (Session, bool, error)
	Remember(ctx context.Context) (bool, error)
	Clear(ctx context.Context) error
}

// Sign-in destinations by role. Unknown roles fall back to sign-in rather
// than failing.
const (
	RouteSignIn             = "/login"
	RouteAdminDashboard     = "/admin/dashboard"
	RouteClinicianDashboard = "/clinician/dashboard"
	RoutePatientDashboard   = "/patient/dashboard"
)

// RouteForRole maps a role to its dashboard destination. Total over all
// inputs: anything outside the three known roles routes to sign-in.
func RouteForRole(role account.Role) string {
	switch role {
	case account.RoleAdministrator:
		return RouteAdminDashboard
	case account.RoleClinician:
		return RouteClinicianDashboard
	case account.RolePatient:
		return RoutePatientDashboard
	default:
		return RouteSignIn
	}
}

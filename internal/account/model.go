package account

import "time"

// Role is the closed set of portal roles. Anything outside the three known
// values routes back to sign-in.
type Role string

const (
	RoleAdministrator Role = "administrator"
	RoleClinician     Role = "clinician"
	RolePatient       Role = "patient"
)

// Known reports whether r is one of the three portal roles.
func (r Role) Known() bool {
	switch r {
	case RoleAdministrator, RoleClinician, RolePatient:
		return true
	}
	return false
}

// Account is a registered portal user. The secret is stored only as a bcrypt
// hash; confirmation and terms-acceptance inputs are never persisted.
type Account struct {
	ID         string
	Email      string
	SecretHash []byte
	Role       Role
	Name       string
	Surname    string
	Phone      string
	NationalID string
	Address    string
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// DisplayName is the name shown in the portal header and session record.
func (a Account) DisplayName() string {
	if a.Surname == "" {
		return a.Name
	}
	return a.Name + " " + a.Surname
}

package domain

import "time"

// Role tags a user account with its authority.
type Role string

const (
	RoleCitizen   Role = "citizen"
	RoleWardAdmin Role = "wardAdmin"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleCitizen, RoleWardAdmin, RoleAdmin:
		return true
	}
	return false
}

// User is an account in the identity store. Role is fixed at provisioning time.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Ward         string
	Phone        string
	GoogleID     *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Principal converts the stored account into the caller variant used by services.
func (u *User) Principal() Principal {
	if u == nil {
		return Anonymous{}
	}
	switch u.Role {
	case RoleAdmin:
		return Admin{ID: u.ID}
	case RoleWardAdmin:
		return WardAdmin{ID: u.ID, Ward: u.Ward}
	default:
		return Citizen{ID: u.ID, Ward: u.Ward}
	}
}

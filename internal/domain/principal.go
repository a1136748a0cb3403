package domain

// Principal is the resolved caller of a service operation. The set of
// implementations is closed: Citizen, WardAdmin, Admin and Anonymous.
type Principal interface {
	principal()
}

// Citizen is an authenticated resident.
type Citizen struct {
	ID   string
	Ward string
}

// WardAdmin administers exactly one ward.
type WardAdmin struct {
	ID   string
	Ward string
}

// Admin administers every ward.
type Admin struct {
	ID string
}

// Anonymous is an unauthenticated caller.
type Anonymous struct{}

func (Citizen) principal()   {}
func (WardAdmin) principal() {}
func (Admin) principal()     {}
func (Anonymous) principal() {}

// PrincipalID returns the account id of p, or "" for anonymous callers.
func PrincipalID(p Principal) string {
	switch v := p.(type) {
	case Citizen:
		return v.ID
	case WardAdmin:
		return v.ID
	case Admin:
		return v.ID
	default:
		return ""
	}
}

// PrincipalRole returns the role tag of p, or "" for anonymous callers.
func PrincipalRole(p Principal) Role {
	switch p.(type) {
	case Citizen:
		return RoleCitizen
	case WardAdmin:
		return RoleWardAdmin
	case Admin:
		return RoleAdmin
	default:
		return ""
	}
}

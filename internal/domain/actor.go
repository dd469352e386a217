package domain

import "github.com/google/uuid"

type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// Actor is the authenticated caller. It is passed explicitly into every
// operation that needs to know who is asking.
type Actor struct {
	AgencyID uuid.UUID
	Role     Role
}

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

func (a Actor) CanActFor(agencyID uuid.UUID) bool {
	return a.AgencyID == agencyID || a.IsAdmin()
}

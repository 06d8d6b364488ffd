package identity

import (
	"github.com/google/uuid"
)

// Role represents the closed set of actor roles.
// Role synonyms from legacy data are resolved at the access-provider boundary;
// inside the domain only these three values exist.
type Role string

const (
	RoleDistributor  Role = "distributor"
	RoleSeller       Role = "seller"
	RoleTelemarketer Role = "telemarketer"
)

// IsValid checks if the role is a known Role
func (r Role) IsValid() bool {
	switch r {
	case RoleDistributor, RoleSeller, RoleTelemarketer:
		return true
	}
	return false
}

// String returns the string representation of Role
func (r Role) String() string {
	return string(r)
}

// Actor is the authenticated principal performing an operation.
// Delegations lists the sellers a telemarketer may act for; it is empty for
// the other roles.
type Actor struct {
	UserID      uuid.UUID
	Role        Role
	Delegations []uuid.UUID
}

// NewActor creates an actor with the given role
func NewActor(userID uuid.UUID, role Role) Actor {
	return Actor{UserID: userID, Role: role}
}

// WithDelegations returns a copy of the actor carrying a delegation set
func (a Actor) WithDelegations(sellerIDs []uuid.UUID) Actor {
	a.Delegations = sellerIDs
	return a
}

// IsDistributor reports whether the actor has unrestricted visibility
func (a Actor) IsDistributor() bool {
	return a.Role == RoleDistributor
}

// CanActFor reports whether the actor may operate on records owned by ownerID.
// Distributors see everything, sellers only their own records, telemarketers
// the records of sellers in their delegation set.
func (a Actor) CanActFor(ownerID uuid.UUID) bool {
	switch a.Role {
	case RoleDistributor:
		return true
	case RoleSeller:
		return a.UserID == ownerID
	case RoleTelemarketer:
		for _, id := range a.Delegations {
			if id == ownerID {
				return true
			}
		}
		return false
	}
	return false
}

// VisibleOwnerIDs returns the owner set the actor is restricted to, or nil for
// unrestricted visibility.
func (a Actor) VisibleOwnerIDs() []uuid.UUID {
	switch a.Role {
	case RoleDistributor:
		return nil
	case RoleSeller:
		return []uuid.UUID{a.UserID}
	case RoleTelemarketer:
		// nil delegations are an empty owner set, not the unrestricted
		// sentinel
		if a.Delegations == nil {
			return []uuid.UUID{}
		}
		return a.Delegations
	}
	return []uuid.UUID{}
}

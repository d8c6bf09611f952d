package identity

import (
	"github.com/google/uuid"
)

// Actor is the authenticated caller of an operation, computed once per request
// from verified token claims. Authorization decisions go through its
// capability predicates instead of ad-hoc role-string checks.
type Actor struct {
	ID               uuid.UUID
	Role             Side // set for account managers
	ClientType       Side // set for end-user clients
	ManagedClientIDs map[uuid.UUID]struct{}
}

// NewActor builds an actor from verified claim values
func NewActor(id uuid.UUID, role, clientType Side, managedClientIDs []uuid.UUID) Actor {
	managed := make(map[uuid.UUID]struct{}, len(managedClientIDs))
	for _, cid := range managedClientIDs {
		managed[cid] = struct{}{}
	}
	return Actor{
		ID:               id,
		Role:             role,
		ClientType:       clientType,
		ManagedClientIDs: managed,
	}
}

// IsAccountManager returns true if the actor is an account manager
func (a Actor) IsAccountManager() bool {
	return a.Role.IsValid()
}

// IsClient returns true if the actor is an end-user client
func (a Actor) IsClient() bool {
	return a.ClientType.IsValid()
}

// ManagesClient returns true if the actor manages the given client
func (a Actor) ManagesClient(clientID uuid.UUID) bool {
	_, ok := a.ManagedClientIDs[clientID]
	return ok
}

// CanSignAs returns true if the actor may sign documents for the given side.
// Only end-user clients sign; account managers never do.
func (a Actor) CanSignAs(side Side) bool {
	return a.IsClient() && a.ClientType == side
}

// IsParty returns true if the actor is one of the given party user IDs
func (a Actor) IsParty(partyIDs ...uuid.UUID) bool {
	for _, id := range partyIDs {
		if id == a.ID {
			return true
		}
	}
	return false
}

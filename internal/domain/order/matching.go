package order

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/recyclemart/backend/internal/domain/identity"
	"github.com/recyclemart/backend/internal/domain/shared"
)

// ErrNoCounterpartManager is returned when no account manager represents the
// opposite-side party. Order creation fails entirely in that case; manager
// relationships are never created implicitly.
var ErrNoCounterpartManager = shared.NewDomainError("NO_COUNTERPART_MANAGER",
	"No account manager represents the opposite party")

// MatchingResolver determines the counterpart account manager for a newly
// created order.
type MatchingResolver struct {
	users identity.UserRepository
}

// NewMatchingResolver creates a new MatchingResolver
func NewMatchingResolver(users identity.UserRepository) *MatchingResolver {
	return &MatchingResolver{users: users}
}

// ResolveCounterpart finds the single account manager whose role is opposite
// the creator's and whose managed-client set contains the opposite-side
// party. Ties between multiple qualifying managers are broken
// deterministically by the repository (earliest created wins).
func (r *MatchingResolver) ResolveCounterpart(ctx context.Context, creatorRole identity.Side, oppositePartyID uuid.UUID) (*identity.User, error) {
	if !creatorRole.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Creator role must be buyer or supplier")
	}
	if oppositePartyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PARTY", "Opposite party ID cannot be empty")
	}

	manager, err := r.users.FindManagerForClient(ctx, creatorRole.Opposite(), oppositePartyID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrNoCounterpartManager
		}
		return nil, err
	}
	return manager, nil
}

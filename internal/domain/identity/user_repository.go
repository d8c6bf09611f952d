package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// FindByID finds a user by ID, with the managed-client set loaded
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByEmail finds a user by email
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindManagerForClient finds the account manager whose role matches the
	// given side and whose managed-client set contains clientID. When several
	// managers qualify, the earliest created (lowest created_at, then id)
	// wins, so resolution is deterministic across calls.
	FindManagerForClient(ctx context.Context, role Side, clientID uuid.UUID) (*User, error)

	// ExistsByEmail checks if a user with the email exists
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Save creates or updates a user and its managed-client assignments
	Save(ctx context.Context, user *User) error
}

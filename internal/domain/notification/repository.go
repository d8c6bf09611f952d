package notification

import (
	"context"

	"github.com/google/uuid"
	"github.com/recyclemart/backend/internal/domain/shared"
)

// Repository defines the interface for notification persistence. Creation
// happens inside order/document transactions (see those repositories); this
// interface covers reads and the read-flag flip.
type Repository interface {
	// FindByID finds a notification by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Notification, error)

	// FindForUser lists a user's notifications, newest first
	FindForUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]Notification, error)

	// CountUnread counts a user's unread notifications
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)

	// MarkRead flips the read flag for a notification owned by the user
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
}

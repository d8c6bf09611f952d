package order

import (
	"context"

	"github.com/google/uuid"
	"github.com/recyclemart/backend/internal/domain/notification"
	"github.com/recyclemart/backend/internal/domain/shared"
)

// Repository defines the interface for order persistence.
//
// Mutating methods that take notifications persist them in the same database
// transaction as the order row: a state change never commits without its
// notification fan-out, and vice versa.
type Repository interface {
	// FindByID finds an order by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindAll lists orders with filtering. Workflow-state filters apply only
	// to confirmed orders; drafts are matched solely through the
	// saved_status filter.
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, error)

	// FindForUser lists orders where the user is a party or a manager
	FindForUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]Order, error)

	// Count counts orders matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// CreateWithNotifications inserts a new order together with its creation
	// notifications, atomically.
	CreateWithNotifications(ctx context.Context, o *Order, notifications []*notification.Notification) error

	// SaveWithNotifications updates an order under its version lock together
	// with the given notifications, atomically. Concurrent writers that read
	// the same stale version fail with a concurrency conflict.
	SaveWithNotifications(ctx context.Context, o *Order, notifications []*notification.Notification) error

	// Save updates an order under its version lock without side effects
	Save(ctx context.Context, o *Order) error

	// Delete removes an order. Used only for drafts.
	Delete(ctx context.Context, id uuid.UUID) error
}

package document

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/recyclemart/backend/internal/domain/notification"
	"github.com/recyclemart/backend/internal/domain/order"
	"github.com/recyclemart/backend/internal/domain/shared"
)

// Repository defines the interface for document persistence.
//
// Mutating methods that take an order and notifications persist all three in
// one database transaction: a document change never commits without the
// matching order update and notification fan-out.
type Repository interface {
	// FindByID finds a document by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Document, error)

	// FindByOrder lists the documents of an order
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]Document, error)

	// FindByOrderAndType finds one half of an order's contract pair
	FindByOrderAndType(ctx context.Context, orderID uuid.UUID, docType Type) (*Document, error)

	// FindForClient lists documents on orders where the client is a party.
	// With signedOnly set, only fully signed documents are returned.
	FindForClient(ctx context.Context, clientID uuid.UUID, signedOnly bool, filter shared.Filter) ([]Document, error)

	// CountGenerations counts generation records for a requester on an order
	// since the given time. Backs the rate limit.
	CountGenerations(ctx context.Context, orderID, requesterID uuid.UUID, since time.Time) (int64, error)

	// NextInvoiceSequence returns the next free sequence value in the scope
	// (max existing + 1). Allocation is confirmed only by a successful insert;
	// the unique index on invoice numbers rejects the loser of a race, which
	// surfaces as a concurrency conflict.
	NextInvoiceSequence(ctx context.Context, scope InvoiceScope) (int, error)

	// CreateWithOrderAndNotifications inserts a document and its generation
	// record, updates the order under its version lock, and persists the
	// notifications, all atomically. The order may be nil when generation
	// does not change order state.
	CreateWithOrderAndNotifications(ctx context.Context, d *Document, rec *GenerationRecord, o *order.Order, notifications []*notification.Notification) error

	// SaveWithOrderAndNotifications updates a document under its version lock
	// together with an optional order update and notifications, atomically.
	SaveWithOrderAndNotifications(ctx context.Context, d *Document, o *order.Order, notifications []*notification.Notification) error

	// SaveWithGeneration updates a document under its version lock and logs a
	// generation record in the same transaction. Used by the regenerate path.
	SaveWithGeneration(ctx context.Context, d *Document, rec *GenerationRecord) error

	// SaveAll updates several documents of the same order under their version
	// locks together with an optional order update and notifications,
	// atomically. Used by the signing path, which touches both halves of the
	// contract pair.
	SaveAll(ctx context.Context, docs []*Document, o *order.Order, notifications []*notification.Notification) error

	// Save updates a document under its version lock without side effects
	Save(ctx context.Context, d *Document) error
}

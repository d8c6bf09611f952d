package notification

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/recyclemart/backend/internal/domain/document"
	"github.com/recyclemart/backend/internal/domain/identity"
	"github.com/recyclemart/backend/internal/domain/notification"
	"github.com/recyclemart/backend/internal/domain/order"
)

// Fanout builds the notification set for each lifecycle event. The returned
// slice is persisted inside the same transaction as the state change, so a
// build error aborts the mutation.
//
// Recipients are the order's participants (both parties and both managers)
// minus the acting user, deduplicated. A manager acting on behalf of a party
// still counts as one recipient slot.
type Fanout struct{}

// NewFanout creates a new Fanout
func NewFanout() *Fanout {
	return &Fanout{}
}

// dedup drops nil and repeated IDs, preserving order
func dedup(ids ...uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// participants returns the deduped recipient set excluding the actor
func participants(o *order.Order, exclude uuid.UUID) []uuid.UUID {
	candidates := []uuid.UUID{o.BuyerManagerID, o.SupplierManagerID, o.BuyerID, o.SupplierID}
	seen := make(map[uuid.UUID]struct{}, len(candidates))
	out := make([]uuid.UUID, 0, len(candidates))
	for _, id := range candidates {
		if id == uuid.Nil || id == exclude {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func buildForAll(o *order.Order, exclude uuid.UUID, kind notification.Kind, message string, payload notification.Payload) ([]*notification.Notification, error) {
	recipients := participants(o, exclude)
	out := make([]*notification.Notification, 0, len(recipients))
	for _, userID := range recipients {
		n, err := notification.New(userID, o.ID, kind, message, payload)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// OrderCreated notifies everyone but the creating manager
func (f *Fanout) OrderCreated(o *order.Order) ([]*notification.Notification, error) {
	message := fmt.Sprintf("New order for %s awaiting approval", o.Terms.Product)
	return buildForAll(o, o.CreatedByID, notification.KindOrderCreated, message, notification.OrderCreatedPayload{
		Product:     o.Terms.Product,
		CreatedByID: o.CreatedByID,
	})
}

// StatusChanged notifies everyone but the actor of a workflow transition
func (f *Fanout) StatusChanged(o *order.Order, previous order.Status, actorID uuid.UUID) ([]*notification.Notification, error) {
	message := fmt.Sprintf("Order status changed from %s to %s", previous, o.Status)
	return buildForAll(o, actorID, notification.KindStatusChanged, message, notification.StatusChangedPayload{
		PreviousStatus: previous.String(),
		NewStatus:      o.Status.String(),
		ChangedByID:    actorID,
	})
}

// DocumentsComplete notifies both parties that the contract pair is ready to
// sign. Emitted once, when completeness is first reached.
func (f *Fanout) DocumentsComplete(o *order.Order, d *document.Document) ([]*notification.Notification, error) {
	message := fmt.Sprintf("Contract documents for %s generated, please sign", o.Terms.Product)
	payload := notification.DocumentGeneratedPayload{
		DocumentID:    d.ID,
		DocumentType:  d.Type.String(),
		InvoiceNumber: d.InvoiceNumber,
	}

	out := make([]*notification.Notification, 0, 2)
	for _, userID := range dedup(o.BuyerID, o.SupplierID) {
		n, err := notification.New(userID, o.ID, notification.KindDocumentGenerated, message, payload)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// SignatureRequested notifies the party whose signature is still missing
// after a partial signature.
func (f *Fanout) SignatureRequested(o *order.Order, d *document.Document, signedSide identity.Side) ([]*notification.Notification, error) {
	message := fmt.Sprintf("Document %s signed by %s, your signature is required", d.InvoiceNumber, signedSide)
	payload := notification.SignatureRequestedPayload{
		DocumentID: d.ID,
		SignedBy:   signedSide.String(),
	}

	other := o.PartyFor(signedSide.Opposite())
	if other == uuid.Nil {
		return nil, nil
	}
	n, err := notification.New(other, o.ID, notification.KindSignatureRequested, message, payload)
	if err != nil {
		return nil, err
	}
	return []*notification.Notification{n}, nil
}

// SignatureCompleted notifies both parties once all signatures are in. The
// final signer is included; their record doubles as a receipt.
func (f *Fanout) SignatureCompleted(o *order.Order, d *document.Document) ([]*notification.Notification, error) {
	message := fmt.Sprintf("Document %s fully signed", d.InvoiceNumber)
	payload := notification.SignatureCompletedPayload{DocumentID: d.ID}

	out := make([]*notification.Notification, 0, 2)
	for _, userID := range dedup(o.BuyerID, o.SupplierID) {
		n, err := notification.New(userID, o.ID, notification.KindSignatureCompleted, message, payload)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// OrderProcessing notifies everyone but the actor when the order enters
// processing.
func (f *Fanout) OrderProcessing(o *order.Order, actorID uuid.UUID) ([]*notification.Notification, error) {
	return buildForAll(o, actorID, notification.KindOrderProcessing,
		"Order entered processing", notification.OrderProcessingPayload{})
}

// OrderCompleted notifies everyone but the actor on completion
func (f *Fanout) OrderCompleted(o *order.Order, actorID uuid.UUID) ([]*notification.Notification, error) {
	return buildForAll(o, actorID, notification.KindOrderCompleted,
		"Order completed", notification.OrderCompletedPayload{})
}

// SubmissionDeclined notifies everyone but the declining user
func (f *Fanout) SubmissionDeclined(o *order.Order, d *document.Document, reason string, actorID uuid.UUID) ([]*notification.Notification, error) {
	message := fmt.Sprintf("Document %s declined", d.InvoiceNumber)
	if reason != "" {
		message = fmt.Sprintf("Document %s declined: %s", d.InvoiceNumber, reason)
	}
	return buildForAll(o, actorID, notification.KindSubmissionDeclined, message, notification.SubmissionDeclinedPayload{
		DocumentID: d.ID,
		Reason:     reason,
	})
}

// SubmissionExpired notifies all participants when a document expires
func (f *Fanout) SubmissionExpired(o *order.Order, d *document.Document) ([]*notification.Notification, error) {
	message := fmt.Sprintf("Document %s expired before both signatures were collected", d.InvoiceNumber)
	return buildForAll(o, uuid.Nil, notification.KindSubmissionExpired, message, notification.SubmissionExpiredPayload{
		DocumentID: d.ID,
	})
}

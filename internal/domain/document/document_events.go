package document

import (
	"github.com/google/uuid"
	"github.com/recyclemart/backend/internal/domain/identity"
	"github.com/recyclemart/backend/internal/domain/shared"
)

// Aggregate type constant for Document
const AggregateTypeDocument = "Document"

// Document domain event types
const (
	EventTypeDocumentGenerated   = "DocumentGenerated"
	EventTypeDocumentSigned      = "DocumentSigned"
	EventTypeDocumentFullySigned = "DocumentFullySigned"
)

// DocumentGeneratedEvent is published when a document is generated
type DocumentGeneratedEvent struct {
	shared.BaseDomainEvent
	OrderID       uuid.UUID `json:"order_id"`
	DocumentType  Type      `json:"document_type"`
	InvoiceNumber string    `json:"invoice_number"`
	GeneratedByID uuid.UUID `json:"generated_by_id"`
}

// NewDocumentGeneratedEvent creates a new DocumentGeneratedEvent
func NewDocumentGeneratedEvent(d *Document) *DocumentGeneratedEvent {
	return &DocumentGeneratedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentGenerated, AggregateTypeDocument, d.ID),
		OrderID:         d.OrderID,
		DocumentType:    d.Type,
		InvoiceNumber:   d.InvoiceNumber,
		GeneratedByID:   d.GeneratedByID,
	}
}

// DocumentSignedEvent is published when one party signs
type DocumentSignedEvent struct {
	shared.BaseDomainEvent
	OrderID  uuid.UUID     `json:"order_id"`
	SignedBy identity.Side `json:"signed_by"`
}

// NewDocumentSignedEvent creates a new DocumentSignedEvent
func NewDocumentSignedEvent(d *Document, side identity.Side) *DocumentSignedEvent {
	return &DocumentSignedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentSigned, AggregateTypeDocument, d.ID),
		OrderID:         d.OrderID,
		SignedBy:        side,
	}
}

// DocumentFullySignedEvent is published when both parties have signed
type DocumentFullySignedEvent struct {
	shared.BaseDomainEvent
	OrderID uuid.UUID `json:"order_id"`
}

// NewDocumentFullySignedEvent creates a new DocumentFullySignedEvent
func NewDocumentFullySignedEvent(d *Document) *DocumentFullySignedEvent {
	return &DocumentFullySignedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentFullySigned, AggregateTypeDocument, d.ID),
		OrderID:         d.OrderID,
	}
}

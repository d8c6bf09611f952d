package notification

import (
	"time"

	"github.com/google/uuid"
	"github.com/recyclemart/backend/internal/domain/shared"
)

// Kind enumerates the notification types emitted by state transitions
type Kind string

const (
	KindOrderCreated       Kind = "order_created"
	KindStatusChanged      Kind = "status_changed"
	KindDocumentGenerated  Kind = "document_generated"
	KindSignatureRequested Kind = "signature_requested"
	KindSignatureCompleted Kind = "signature_completed"
	KindOrderProcessing    Kind = "order_processing"
	KindOrderCompleted     Kind = "order_completed"
	KindSubmissionDeclined Kind = "submission_declined"
	KindSubmissionExpired  Kind = "submission_expired"
)

// IsValid checks if the kind is a known value
func (k Kind) IsValid() bool {
	switch k {
	case KindOrderCreated, KindStatusChanged, KindDocumentGenerated,
		KindSignatureRequested, KindSignatureCompleted, KindOrderProcessing,
		KindOrderCompleted, KindSubmissionDeclined, KindSubmissionExpired:
		return true
	}
	return false
}

// String returns the string representation of Kind
func (k Kind) String() string {
	return string(k)
}

// Notification is an immutable event record addressed to one recipient.
// Only the read flag ever changes after creation.
type Notification struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	OrderID   uuid.UUID
	Kind      Kind
	Message   string
	Payload   PayloadBox `gorm:"type:jsonb"`
	IsRead    bool
	CreatedAt time.Time
	ReadAt    *time.Time
}

// New creates a notification for one recipient
func New(userID, orderID uuid.UUID, kind Kind, message string, payload Payload) (*Notification, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_RECIPIENT", "Notification recipient cannot be empty")
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_KIND", "Unknown notification kind")
	}
	if payload != nil && payload.Kind() != kind {
		return nil, shared.NewDomainError("PAYLOAD_MISMATCH", "Payload does not match notification kind")
	}

	return &Notification{
		ID:        uuid.New(),
		UserID:    userID,
		OrderID:   orderID,
		Kind:      kind,
		Message:   message,
		Payload:   PayloadBox{Payload: payload},
		CreatedAt: time.Now(),
	}, nil
}

// MarkRead flips the read flag. Idempotent.
func (n *Notification) MarkRead() {
	if n.IsRead {
		return
	}
	now := time.Now()
	n.IsRead = true
	n.ReadAt = &now
}

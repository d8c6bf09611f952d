package notification

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Payload is the structured metadata attached to a notification. The set of
// shapes is closed and keyed by kind so consumers can handle each
// exhaustively instead of probing a free-form blob.
type Payload interface {
	Kind() Kind
}

// OrderCreatedPayload accompanies order_created notifications
type OrderCreatedPayload struct {
	Product     string    `json:"product"`
	CreatedByID uuid.UUID `json:"created_by_id"`
}

func (OrderCreatedPayload) Kind() Kind { return KindOrderCreated }

// StatusChangedPayload accompanies status_changed notifications
type StatusChangedPayload struct {
	PreviousStatus string    `json:"previous_status"`
	NewStatus      string    `json:"new_status"`
	ChangedByID    uuid.UUID `json:"changed_by_id"`
}

func (StatusChangedPayload) Kind() Kind { return KindStatusChanged }

// DocumentGeneratedPayload accompanies document_generated notifications
type DocumentGeneratedPayload struct {
	DocumentID    uuid.UUID `json:"document_id"`
	DocumentType  string    `json:"document_type"`
	InvoiceNumber string    `json:"invoice_number"`
}

func (DocumentGeneratedPayload) Kind() Kind { return KindDocumentGenerated }

// SignatureRequestedPayload accompanies signature_requested notifications
type SignatureRequestedPayload struct {
	DocumentID uuid.UUID `json:"document_id"`
	SignedBy   string    `json:"signed_by"` // side that already signed
}

func (SignatureRequestedPayload) Kind() Kind { return KindSignatureRequested }

// SignatureCompletedPayload accompanies signature_completed notifications
type SignatureCompletedPayload struct {
	DocumentID uuid.UUID `json:"document_id"`
}

func (SignatureCompletedPayload) Kind() Kind { return KindSignatureCompleted }

// OrderProcessingPayload accompanies order_processing notifications
type OrderProcessingPayload struct{}

func (OrderProcessingPayload) Kind() Kind { return KindOrderProcessing }

// OrderCompletedPayload accompanies order_completed notifications
type OrderCompletedPayload struct{}

func (OrderCompletedPayload) Kind() Kind { return KindOrderCompleted }

// SubmissionDeclinedPayload accompanies submission_declined notifications
type SubmissionDeclinedPayload struct {
	DocumentID uuid.UUID `json:"document_id"`
	Reason     string    `json:"reason,omitempty"`
}

func (SubmissionDeclinedPayload) Kind() Kind { return KindSubmissionDeclined }

// SubmissionExpiredPayload accompanies submission_expired notifications
type SubmissionExpiredPayload struct {
	DocumentID uuid.UUID `json:"document_id"`
}

func (SubmissionExpiredPayload) Kind() Kind { return KindSubmissionExpired }

// PayloadBox wraps a Payload for storage. The stored envelope records the
// kind, so the JSON decodes back into the matching concrete shape.
type PayloadBox struct {
	Payload
}

type payloadEnvelope struct {
	Kind Kind            `json:"kind"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Value implements driver.Valuer
func (b PayloadBox) Value() (driver.Value, error) {
	if b.Payload == nil {
		return nil, nil
	}
	data, err := json.Marshal(b.Payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(payloadEnvelope{Kind: b.Payload.Kind(), Data: data})
}

// Scan implements sql.Scanner
func (b *PayloadBox) Scan(src interface{}) error {
	if src == nil {
		b.Payload = nil
		return nil
	}

	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported payload column type %T", src)
	}
	if len(raw) == 0 {
		b.Payload = nil
		return nil
	}

	var env payloadEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return err
	}
	payload, err := decodePayload(env.Kind, env.Data)
	if err != nil {
		return err
	}
	b.Payload = payload
	return nil
}

// MarshalJSON renders just the inner payload; the envelope is a storage detail
func (b PayloadBox) MarshalJSON() ([]byte, error) {
	if b.Payload == nil {
		return []byte("null"), nil
	}
	return json.Marshal(b.Payload)
}

func decodePayload(kind Kind, data json.RawMessage) (Payload, error) {
	switch kind {
	case KindOrderCreated:
		var p OrderCreatedPayload
		return p, json.Unmarshal(orEmpty(data), &p)
	case KindStatusChanged:
		var p StatusChangedPayload
		return p, json.Unmarshal(orEmpty(data), &p)
	case KindDocumentGenerated:
		var p DocumentGeneratedPayload
		return p, json.Unmarshal(orEmpty(data), &p)
	case KindSignatureRequested:
		var p SignatureRequestedPayload
		return p, json.Unmarshal(orEmpty(data), &p)
	case KindSignatureCompleted:
		var p SignatureCompletedPayload
		return p, json.Unmarshal(orEmpty(data), &p)
	case KindOrderProcessing:
		var p OrderProcessingPayload
		return p, json.Unmarshal(orEmpty(data), &p)
	case KindOrderCompleted:
		var p OrderCompletedPayload
		return p, json.Unmarshal(orEmpty(data), &p)
	case KindSubmissionDeclined:
		var p SubmissionDeclinedPayload
		return p, json.Unmarshal(orEmpty(data), &p)
	case KindSubmissionExpired:
		var p SubmissionExpiredPayload
		return p, json.Unmarshal(orEmpty(data), &p)
	default:
		return nil, fmt.Errorf("unknown payload kind %q", kind)
	}
}

func orEmpty(data json.RawMessage) []byte {
	if len(data) == 0 {
		return []byte("{}")
	}
	return data
}

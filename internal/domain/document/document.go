package document

import (
	"time"

	"github.com/google/uuid"
	"github.com/recyclemart/backend/internal/domain/identity"
	"github.com/recyclemart/backend/internal/domain/shared"
)

// Type distinguishes the two halves of the contract pair. Both render the
// same commercial terms, one for each party's record.
type Type string

const (
	TypeSalesOrder    Type = "sales_order"
	TypePurchaseOrder Type = "purchase_order"
)

// IsValid checks if the type is a known value
func (t Type) IsValid() bool {
	return t == TypeSalesOrder || t == TypePurchaseOrder
}

// String returns the string representation of Type
func (t Type) String() string {
	return string(t)
}

// InvoicePrefix returns the invoice-number prefix for the type
func (t Type) InvoicePrefix() string {
	if t == TypePurchaseOrder {
		return "PO"
	}
	return "SO"
}

// TypeForSide maps an actor side to the document type it produces and signs:
// buyer side owns the sales order, supplier side owns the purchase order.
// The pairing is fixed.
func TypeForSide(side identity.Side) Type {
	if side == identity.SideSupplier {
		return TypePurchaseOrder
	}
	return TypeSalesOrder
}

// Status is the wire status of a document. It is always derived from the
// signing state and outcome, never set directly.
type Status string

const (
	StatusDraft             Status = "draft"
	StatusGenerated         Status = "generated"
	StatusPendingSignatures Status = "pending_signatures"
	StatusPartiallySigned   Status = "partially_signed"
	StatusFullySigned       Status = "fully_signed"
	StatusExpired           Status = "expired"
)

// Outcome marks an explicit terminal result outside the normal signing flow
type Outcome string

const (
	OutcomeNone     Outcome = ""
	OutcomeDeclined Outcome = "declined"
	OutcomeExpired  Outcome = "expired"
)

// SigningState is the tagged signing variant. Exactly one of Unsigned,
// PartiallySigned, or FullySigned describes a document at any time; the wire
// status string is computed from it.
type SigningState interface {
	isSigningState()
}

// Unsigned means neither party has signed
type Unsigned struct{}

// PartiallySigned means exactly one party has signed
type PartiallySigned struct {
	By        identity.Side
	At        time.Time
	SignedURL string
}

// FullySigned means both parties have signed
type FullySigned struct {
	BuyerAt     time.Time
	SupplierAt  time.Time
	BuyerURL    string
	SupplierURL string
}

func (Unsigned) isSigningState()        {}
func (PartiallySigned) isSigningState() {}
func (FullySigned) isSigningState()     {}

// Document is one half of the contract pair for an order. Exactly one exists
// per (order, type); generation requests for an existing pair member return
// it unchanged.
type Document struct {
	shared.BaseAggregateRoot
	OrderID       uuid.UUID
	Type          Type
	FileURL       string
	InvoiceNumber string
	GeneratedByID uuid.UUID
	Status        Status // derived; maintained by refreshStatus only

	SignedByBuyerAt    *time.Time
	SignedBySupplierAt *time.Time
	BuyerSignedURL     string
	SupplierSignedURL  string
	Outcome            Outcome
	OutcomeReason      string
}

// GenerationRecord logs one actual generation by a requester. The trailing
// count of these records backs the per-requester rate limit.
type GenerationRecord struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	RequesterID uuid.UUID
	CreatedAt   time.Time
}

// NewGenerationRecord creates a generation log entry
func NewGenerationRecord(orderID, requesterID uuid.UUID) *GenerationRecord {
	return &GenerationRecord{
		ID:          uuid.New(),
		OrderID:     orderID,
		RequesterID: requesterID,
		CreatedAt:   time.Now(),
	}
}

// New creates a freshly generated document
func New(orderID uuid.UUID, docType Type, fileURL, invoiceNumber string, generatedBy uuid.UUID) (*Document, error) {
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}
	if !docType.IsValid() {
		return nil, shared.NewDomainError("INVALID_DOC_TYPE", "Document type must be sales_order or purchase_order")
	}
	if fileURL == "" {
		return nil, shared.NewDomainError("MISSING_FILE_URL", "Document file URL cannot be empty")
	}
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("MISSING_INVOICE_NUMBER", "Invoice number cannot be empty")
	}

	d := &Document{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderID:           orderID,
		Type:              docType,
		FileURL:           fileURL,
		InvoiceNumber:     invoiceNumber,
		GeneratedByID:     generatedBy,
	}
	d.refreshStatus()

	d.AddDomainEvent(NewDocumentGeneratedEvent(d))
	return d, nil
}

// SigningState returns the tagged signing variant derived from the stored
// per-party timestamps. This is the single source of truth for signing
// progress; the Status field is recomputed from it.
func (d *Document) SigningState() SigningState {
	switch {
	case d.SignedByBuyerAt != nil && d.SignedBySupplierAt != nil:
		return FullySigned{
			BuyerAt:     *d.SignedByBuyerAt,
			SupplierAt:  *d.SignedBySupplierAt,
			BuyerURL:    d.BuyerSignedURL,
			SupplierURL: d.SupplierSignedURL,
		}
	case d.SignedByBuyerAt != nil:
		return PartiallySigned{By: identity.SideBuyer, At: *d.SignedByBuyerAt, SignedURL: d.BuyerSignedURL}
	case d.SignedBySupplierAt != nil:
		return PartiallySigned{By: identity.SideSupplier, At: *d.SignedBySupplierAt, SignedURL: d.SupplierSignedURL}
	default:
		return Unsigned{}
	}
}

// SignedBy reports whether the given side has signed
func (d *Document) SignedBy(side identity.Side) bool {
	if side == identity.SideBuyer {
		return d.SignedByBuyerAt != nil
	}
	return d.SignedBySupplierAt != nil
}

// IsFullySigned reports whether both parties have signed
func (d *Document) IsFullySigned() bool {
	_, ok := d.SigningState().(FullySigned)
	return ok
}

// Sign records one party's signature. Re-signing by an already-signed party
// overwrites that party's timestamp and URL but never moves the status
// backward. Returns true when the signature completes the document.
func (d *Document) Sign(side identity.Side, signedURL string) (bool, error) {
	if !side.IsValid() {
		return false, shared.NewDomainError("INVALID_SIDE", "Signing side must be buyer or supplier")
	}
	if signedURL == "" {
		return false, shared.NewDomainError("MISSING_SIGNED_URL", "Signed file URL cannot be empty")
	}
	if d.Outcome != OutcomeNone {
		return false, shared.NewDomainError("INVALID_STATE", "Document is no longer open for signing")
	}

	now := time.Now()
	if side == identity.SideBuyer {
		d.SignedByBuyerAt = &now
		d.BuyerSignedURL = signedURL
	} else {
		d.SignedBySupplierAt = &now
		d.SupplierSignedURL = signedURL
	}
	d.UpdatedAt = now
	d.refreshStatus()

	if d.IsFullySigned() {
		d.AddDomainEvent(NewDocumentFullySignedEvent(d))
		return true, nil
	}
	d.AddDomainEvent(NewDocumentSignedEvent(d, side))
	return false, nil
}

// Regenerate replaces the rendered file of an open document. The invoice
// number is allocated once and survives regeneration.
func (d *Document) Regenerate(fileURL string, requesterID uuid.UUID) error {
	if fileURL == "" {
		return shared.NewDomainError("MISSING_FILE_URL", "Document file URL cannot be empty")
	}
	if d.Outcome != OutcomeNone {
		return shared.NewDomainError("INVALID_STATE", "Document is no longer open for regeneration")
	}
	d.FileURL = fileURL
	d.GeneratedByID = requesterID
	d.UpdatedAt = time.Now()
	d.AddDomainEvent(NewDocumentGeneratedEvent(d))
	return nil
}

// Decline marks the document as declined by a party. Terminal.
func (d *Document) Decline(reason string) error {
	if d.IsFullySigned() {
		return shared.NewDomainError("INVALID_STATE", "A fully signed document cannot be declined")
	}
	if d.Outcome != OutcomeNone {
		return shared.NewDomainError("INVALID_STATE", "Document already has a terminal outcome")
	}
	d.Outcome = OutcomeDeclined
	d.OutcomeReason = reason
	d.UpdatedAt = time.Now()
	d.refreshStatus()
	return nil
}

// Expire marks the document as expired. Terminal.
func (d *Document) Expire() error {
	if d.IsFullySigned() {
		return shared.NewDomainError("INVALID_STATE", "A fully signed document cannot expire")
	}
	if d.Outcome != OutcomeNone {
		return shared.NewDomainError("INVALID_STATE", "Document already has a terminal outcome")
	}
	d.Outcome = OutcomeExpired
	d.UpdatedAt = time.Now()
	d.refreshStatus()
	return nil
}

// refreshStatus recomputes the wire status from the signing state and
// outcome. No other code writes Status.
func (d *Document) refreshStatus() {
	if d.Outcome != OutcomeNone {
		d.Status = StatusExpired
		return
	}
	switch d.SigningState().(type) {
	case FullySigned:
		d.Status = StatusFullySigned
	case PartiallySigned:
		d.Status = StatusPartiallySigned
	default:
		d.Status = StatusGenerated
	}
}

// PairComplete reports whether the given documents contain both halves of
// the contract pair for an order.
func PairComplete(docs []Document) bool {
	var sales, purchase bool
	for _, d := range docs {
		switch d.Type {
		case TypeSalesOrder:
			sales = true
		case TypePurchaseOrder:
			purchase = true
		}
	}
	return sales && purchase
}

package document

import (
	"time"

	"github.com/google/uuid"
	"github.com/recyclemart/backend/internal/domain/document"
	"github.com/shopspring/decimal"
)

// DocumentResponse is the read model for a document
type DocumentResponse struct {
	ID                 uuid.UUID  `json:"id"`
	OrderID            uuid.UUID  `json:"orderId"`
	Type               string     `json:"type"`
	Status             string     `json:"status"`
	InvoiceNumber      string     `json:"invoiceNumber"`
	FileURL            string     `json:"fileUrl"`
	SignedByBuyerAt    *time.Time `json:"signedByBuyerAt,omitempty"`
	SignedBySupplierAt *time.Time `json:"signedBySupplierAt,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// GenerateResult reports a generation request. IsExisting marks the
// idempotent path where the document already existed.
type GenerateResult struct {
	Document    DocumentResponse `json:"document"`
	IsExisting  bool             `json:"isExisting"`
	OrderStatus string           `json:"orderStatus"`
}

// SigningStatusResponse is the pure read model for signing progress, derived
// from the stored timestamps.
type SigningStatusResponse struct {
	DocumentID       uuid.UUID `json:"documentId"`
	Status           string    `json:"status"`
	SignedByBuyer    bool      `json:"signedByBuyer"`
	SignedBySupplier bool      `json:"signedBySupplier"`
}

// SignResult reports a signed upload and the resulting order state
type SignResult struct {
	Document    DocumentResponse `json:"document"`
	FullySigned bool             `json:"fullySigned"`
	OrderStatus string           `json:"orderStatus"`
	NotifiedIDs []uuid.UUID      `json:"notifiedIds"`
}

// ListFilter narrows a document listing
type ListFilter struct {
	Page     int
	PageSize int
	ClientID *uuid.UUID // managers only: scope to one managed client
}

// ContractData is the structured input handed to the renderer
type ContractData struct {
	InvoiceNumber   string
	DocumentTitle   string
	Product         string
	Capacity        decimal.Decimal
	PricePerTonne   decimal.Decimal
	TotalValue      decimal.Decimal
	PaymentTerms    string
	ShippingTerms   string
	BuyerName       string
	BuyerCompany    string
	SupplierName    string
	SupplierCompany string
	IssuedAt        time.Time
}

// ToDocumentResponse maps a domain document to its read model
func ToDocumentResponse(d *document.Document) DocumentResponse {
	return DocumentResponse{
		ID:                 d.ID,
		OrderID:            d.OrderID,
		Type:               d.Type.String(),
		Status:             string(d.Status),
		InvoiceNumber:      d.InvoiceNumber,
		FileURL:            d.FileURL,
		SignedByBuyerAt:    d.SignedByBuyerAt,
		SignedBySupplierAt: d.SignedBySupplierAt,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
}

// ToDocumentResponses maps a slice of documents
func ToDocumentResponses(docs []document.Document) []DocumentResponse {
	out := make([]DocumentResponse, len(docs))
	for i := range docs {
		out[i] = ToDocumentResponse(&docs[i])
	}
	return out
}

// ToSigningStatusResponse derives the signing read model from timestamps
func ToSigningStatusResponse(d *document.Document) SigningStatusResponse {
	return SigningStatusResponse{
		DocumentID:       d.ID,
		Status:           string(d.Status),
		SignedByBuyer:    d.SignedByBuyerAt != nil,
		SignedBySupplier: d.SignedBySupplierAt != nil,
	}
}

package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/recyclemart/backend/internal/domain/order"
	"github.com/shopspring/decimal"
)

// CreateOrderInput carries the fields of an order creation request
type CreateOrderInput struct {
	Product       string
	Capacity      decimal.Decimal
	PricePerTonne decimal.Decimal
	PaymentTerms  string
	ShippingTerms string
	BuyerID       uuid.UUID
	SupplierID    uuid.UUID
	AsDraft       bool
}

// UpdateDraftInput carries replacement terms for a draft order
type UpdateDraftInput struct {
	Product       string
	Capacity      decimal.Decimal
	PricePerTonne decimal.Decimal
	PaymentTerms  string
	ShippingTerms string
}

// ListFilter narrows an order listing
type ListFilter struct {
	Page        int
	PageSize    int
	Status      *order.Status
	SavedStatus *order.SavedStatus
	PartyID     *uuid.UUID
	Search      string
}

// OrderResponse is the read model for an order
type OrderResponse struct {
	ID                  uuid.UUID       `json:"id"`
	Product             string          `json:"product"`
	Capacity            decimal.Decimal `json:"capacity"`
	PricePerTonne       decimal.Decimal `json:"pricePerTonne"`
	PaymentTerms        string          `json:"paymentTerms"`
	ShippingTerms       string          `json:"shippingTerms"`
	BuyerID             uuid.UUID       `json:"buyerId"`
	SupplierID          uuid.UUID       `json:"supplierId"`
	BuyerManagerID      uuid.UUID       `json:"buyerManagerId"`
	SupplierManagerID   uuid.UUID       `json:"supplierManagerId"`
	CreatedByID         uuid.UUID       `json:"createdById"`
	MatchedByID         *uuid.UUID      `json:"matchedById,omitempty"`
	SavedStatus         string          `json:"savedStatus"`
	Status              string          `json:"status"`
	ApprovedAt          *time.Time      `json:"approvedAt,omitempty"`
	DocumentGeneratedAt *time.Time      `json:"documentGeneratedAt,omitempty"`
	ProcessingAt        *time.Time      `json:"processingAt,omitempty"`
	CompletedAt         *time.Time      `json:"completedAt,omitempty"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
	Version             int             `json:"version"`
}

// StatusUpdateResult reports a transition and who was notified
type StatusUpdateResult struct {
	Order       OrderResponse `json:"order"`
	NotifiedIDs []uuid.UUID   `json:"notifiedIds"`
}

// ToOrderResponse maps a domain order to its read model
func ToOrderResponse(o *order.Order) OrderResponse {
	return OrderResponse{
		ID:                  o.ID,
		Product:             o.Terms.Product,
		Capacity:            o.Terms.Capacity,
		PricePerTonne:       o.Terms.PricePerTonne,
		PaymentTerms:        o.Terms.PaymentTerms,
		ShippingTerms:       o.Terms.ShippingTerms,
		BuyerID:             o.BuyerID,
		SupplierID:          o.SupplierID,
		BuyerManagerID:      o.BuyerManagerID,
		SupplierManagerID:   o.SupplierManagerID,
		CreatedByID:         o.CreatedByID,
		MatchedByID:         o.MatchedByID,
		SavedStatus:         string(o.SavedStatus),
		Status:              o.Status.String(),
		ApprovedAt:          o.ApprovedAt,
		DocumentGeneratedAt: o.DocumentGeneratedAt,
		ProcessingAt:        o.ProcessingAt,
		CompletedAt:         o.CompletedAt,
		CreatedAt:           o.CreatedAt,
		UpdatedAt:           o.UpdatedAt,
		Version:             o.Version,
	}
}

// ToOrderResponses maps a slice of orders
func ToOrderResponses(orders []order.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i := range orders {
		out[i] = ToOrderResponse(&orders[i])
	}
	return out
}

package dto

import (
	"github.com/shopspring/decimal"
)

// CreateOrderRequest is the payload for order creation
type CreateOrderRequest struct {
	Product       string          `json:"product" binding:"required,max=200"`
	Capacity      decimal.Decimal `json:"capacity" binding:"dgt0"`
	PricePerTonne decimal.Decimal `json:"pricePerTonne" binding:"dgt0"`
	PaymentTerms  string          `json:"paymentTerms" binding:"max=500"`
	ShippingTerms string          `json:"shippingTerms" binding:"max=500"`
	BuyerID       string          `json:"buyerId" binding:"required,uuid"`
	SupplierID    string          `json:"supplierId" binding:"required,uuid"`
	AsDraft       bool            `json:"asDraft"`
}

// UpdateDraftRequest is the payload for replacing draft terms
type UpdateDraftRequest struct {
	Product       string          `json:"product" binding:"required,max=200"`
	Capacity      decimal.Decimal `json:"capacity" binding:"dgt0"`
	PricePerTonne decimal.Decimal `json:"pricePerTonne" binding:"dgt0"`
	PaymentTerms  string          `json:"paymentTerms" binding:"max=500"`
	ShippingTerms string          `json:"shippingTerms" binding:"max=500"`
}

// UpdateOrderStatusRequest carries the target workflow status
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=not_matched matched document_phase processing completed"`
}

// ListOrdersRequest holds query parameters for order listing
type ListOrdersRequest struct {
	Page        int    `form:"page" binding:"omitempty,min=1"`
	PageSize    int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Status      string `form:"status" binding:"omitempty,oneof=not_matched matched document_phase processing completed"`
	SavedStatus string `form:"saved_status" binding:"omitempty,oneof=draft confirmed"`
	Search      string `form:"search"`
}

// DeclineDocumentRequest carries an optional decline reason
type DeclineDocumentRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// ListDocumentsRequest holds query parameters for document listing
type ListDocumentsRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	ClientID string `form:"client_id" binding:"omitempty,uuid"`
}

// ListNotificationsRequest holds query parameters for notification listing
type ListNotificationsRequest struct {
	Page       int  `form:"page" binding:"omitempty,min=1"`
	PageSize   int  `form:"page_size" binding:"omitempty,min=1,max=100"`
	UnreadOnly bool `form:"unread_only"`
}

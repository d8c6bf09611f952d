package order

import (
	"github.com/google/uuid"
	"github.com/recyclemart/backend/internal/domain/shared"
)

// Aggregate type constant for Order
const AggregateTypeOrder = "Order"

// Order domain event types
const (
	EventTypeOrderCreated       = "OrderCreated"
	EventTypeOrderApproved      = "OrderApproved"
	EventTypeOrderStatusChanged = "OrderStatusChanged"
)

// OrderCreatedEvent is published when an order is created
type OrderCreatedEvent struct {
	shared.BaseDomainEvent
	BuyerID           uuid.UUID `json:"buyer_id"`
	SupplierID        uuid.UUID `json:"supplier_id"`
	BuyerManagerID    uuid.UUID `json:"buyer_manager_id"`
	SupplierManagerID uuid.UUID `json:"supplier_manager_id"`
	CreatedByID       uuid.UUID `json:"created_by_id"`
}

// NewOrderCreatedEvent creates a new OrderCreatedEvent
func NewOrderCreatedEvent(o *Order) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeOrderCreated, AggregateTypeOrder, o.ID),
		BuyerID:           o.BuyerID,
		SupplierID:        o.SupplierID,
		BuyerManagerID:    o.BuyerManagerID,
		SupplierManagerID: o.SupplierManagerID,
		CreatedByID:       o.CreatedByID,
	}
}

// OrderApprovedEvent is published when an order is matched by an approver
type OrderApprovedEvent struct {
	shared.BaseDomainEvent
	ApproverID uuid.UUID `json:"approver_id"`
}

// NewOrderApprovedEvent creates a new OrderApprovedEvent
func NewOrderApprovedEvent(o *Order, approverID uuid.UUID) *OrderApprovedEvent {
	return &OrderApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderApproved, AggregateTypeOrder, o.ID),
		ApproverID:      approverID,
	}
}

// OrderStatusChangedEvent is published on every workflow transition
type OrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	PreviousStatus Status `json:"previous_status"`
	NewStatus      Status `json:"new_status"`
}

// NewOrderStatusChangedEvent creates a new OrderStatusChangedEvent
func NewOrderStatusChangedEvent(o *Order, previous Status) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderStatusChanged, AggregateTypeOrder, o.ID),
		PreviousStatus:  previous,
		NewStatus:       o.Status,
	}
}

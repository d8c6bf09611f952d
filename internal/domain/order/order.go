package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/recyclemart/backend/internal/domain/identity"
	"github.com/recyclemart/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Terms holds the commercial terms of an order
type Terms struct {
	Product       string
	Capacity      decimal.Decimal // tonnes
	PricePerTonne decimal.Decimal
	PaymentTerms  string
	ShippingTerms string
}

// Validate checks that all required commercial fields are present and sane.
// The returned error names every missing field so callers can report them all
// at once.
func (t Terms) Validate() error {
	var missing []string
	if strings.TrimSpace(t.Product) == "" {
		missing = append(missing, "product")
	}
	if t.Capacity.IsZero() {
		missing = append(missing, "capacity")
	}
	if t.PricePerTonne.IsZero() {
		missing = append(missing, "pricePerTonne")
	}
	if strings.TrimSpace(t.PaymentTerms) == "" {
		missing = append(missing, "paymentTerms")
	}
	if strings.TrimSpace(t.ShippingTerms) == "" {
		missing = append(missing, "shippingTerms")
	}
	if len(missing) > 0 {
		return shared.NewDomainError("MISSING_FIELDS",
			fmt.Sprintf("Missing required fields: %s", strings.Join(missing, ", ")))
	}
	if t.Capacity.IsNegative() {
		return shared.NewDomainError("INVALID_CAPACITY", "Capacity must be positive")
	}
	if t.PricePerTonne.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price per tonne must be positive")
	}
	return nil
}

// Order is the central aggregate: a trade between a buyer and a supplier,
// each represented by an account manager, moving through the linear workflow.
type Order struct {
	shared.OwnedAggregateRoot
	Terms               Terms `gorm:"embedded"`
	BuyerID             uuid.UUID
	SupplierID          uuid.UUID
	BuyerManagerID      uuid.UUID
	SupplierManagerID   uuid.UUID
	MatchedByID         *uuid.UUID
	SavedStatus         SavedStatus
	Status              Status
	ApprovedAt          *time.Time
	DocumentGeneratedAt *time.Time
	ProcessingAt        *time.Time
	CompletedAt         *time.Time
}

// CreateParams carries everything needed to construct an order. Both manager
// IDs must already be resolved; creation is all-or-nothing.
type CreateParams struct {
	CreatedByID       uuid.UUID
	Terms             Terms
	BuyerID           uuid.UUID
	SupplierID        uuid.UUID
	BuyerManagerID    uuid.UUID
	SupplierManagerID uuid.UUID
	SavedStatus       SavedStatus
}

// New creates a new order in the initial workflow state
func New(p CreateParams) (*Order, error) {
	if err := p.Terms.Validate(); err != nil {
		return nil, err
	}
	if p.BuyerID == uuid.Nil || p.SupplierID == uuid.Nil {
		return nil, shared.NewDomainError("MISSING_FIELDS", "Missing required fields: buyerId, supplierId")
	}
	if p.BuyerManagerID == uuid.Nil || p.SupplierManagerID == uuid.Nil {
		return nil, shared.NewDomainError("UNRESOLVED_MANAGER", "Both account managers must be resolved before the order is persisted")
	}
	savedStatus := p.SavedStatus
	if savedStatus == "" {
		savedStatus = SavedStatusConfirmed
	}
	if !savedStatus.IsValid() {
		return nil, shared.NewDomainError("INVALID_SAVED_STATUS", "Saved status must be draft or confirmed")
	}

	o := &Order{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(p.CreatedByID),
		Terms:              p.Terms,
		BuyerID:            p.BuyerID,
		SupplierID:         p.SupplierID,
		BuyerManagerID:     p.BuyerManagerID,
		SupplierManagerID:  p.SupplierManagerID,
		SavedStatus:        savedStatus,
		Status:             StatusNotMatched,
	}

	o.AddDomainEvent(NewOrderCreatedEvent(o))
	return o, nil
}

// IsDraft returns true while the order sits on the draft axis
func (o *Order) IsDraft() bool {
	return o.SavedStatus == SavedStatusDraft
}

// UpdateDraft replaces the commercial terms of a draft order. Only the
// creator may edit, and only while savedStatus is draft.
func (o *Order) UpdateDraft(editorID uuid.UUID, terms Terms) error {
	if !o.IsDraft() {
		return shared.NewDomainError("NOT_DRAFT", "Confirmed orders cannot be edited through the draft path")
	}
	if editorID != o.CreatedByID {
		return shared.ErrForbidden
	}
	if err := terms.Validate(); err != nil {
		return err
	}
	o.Terms = terms
	o.UpdatedAt = time.Now()
	return nil
}

// ConfirmDraft moves the order from the draft axis to confirmed
func (o *Order) ConfirmDraft(editorID uuid.UUID) error {
	if !o.IsDraft() {
		return shared.NewDomainError("NOT_DRAFT", "Order is already confirmed")
	}
	if editorID != o.CreatedByID {
		return shared.ErrForbidden
	}
	o.SavedStatus = SavedStatusConfirmed
	o.UpdatedAt = time.Now()
	return nil
}

// Approve matches the order. Self-approval is rejected so a single account
// manager cannot unilaterally match their own order.
func (o *Order) Approve(approverID uuid.UUID) error {
	if approverID == o.CreatedByID {
		return shared.NewDomainError("SELF_APPROVAL", "An order cannot be approved by its creator")
	}
	if !o.Status.CanTransitionTo(StatusMatched) {
		return invalidTransitionError(o.Status, StatusMatched)
	}

	now := time.Now()
	o.Status = StatusMatched
	o.MatchedByID = &approverID
	o.ApprovedAt = &now
	o.UpdatedAt = now

	o.AddDomainEvent(NewOrderApprovedEvent(o, approverID))
	return nil
}

// TransitionTo applies a workflow transition requested by a status-change
// call. Any transition not in the table is rejected and the order is left
// unmodified.
func (o *Order) TransitionTo(target Status) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown status %q", target))
	}
	if !o.Status.CanTransitionTo(target) {
		return invalidTransitionError(o.Status, target)
	}

	now := time.Now()
	previous := o.Status
	o.Status = target
	o.UpdatedAt = now

	switch target {
	case StatusDocumentPhase:
		o.DocumentGeneratedAt = &now
	case StatusProcessing:
		o.ProcessingAt = &now
	case StatusCompleted:
		o.CompletedAt = &now
	}

	o.AddDomainEvent(NewOrderStatusChangedEvent(o, previous))
	return nil
}

// MarkDocumentsComplete advances the order once both contract documents
// exist. Stamps DocumentGeneratedAt.
func (o *Order) MarkDocumentsComplete() error {
	return o.TransitionTo(StatusDocumentPhase)
}

// MarkProcessing advances the order when both parties have signed
func (o *Order) MarkProcessing() error {
	return o.TransitionTo(StatusProcessing)
}

// Complete marks the order as completed (terminal)
func (o *Order) Complete() error {
	return o.TransitionTo(StatusCompleted)
}

// PartyFor returns the end-user party on the given side
func (o *Order) PartyFor(side identity.Side) uuid.UUID {
	if side == identity.SideBuyer {
		return o.BuyerID
	}
	return o.SupplierID
}

// ManagerFor returns the account manager on the given side
func (o *Order) ManagerFor(side identity.Side) uuid.UUID {
	if side == identity.SideBuyer {
		return o.BuyerManagerID
	}
	return o.SupplierManagerID
}

// CounterpartManagerID returns the manager opposite the creator's side
func (o *Order) CounterpartManagerID() uuid.UUID {
	if o.CreatedByID == o.BuyerManagerID {
		return o.SupplierManagerID
	}
	return o.BuyerManagerID
}

// CanBeManagedBy returns true if the actor may operate on this order as an
// account manager: they hold one of the two manager slots or manage one of
// the two parties.
func (o *Order) CanBeManagedBy(actor identity.Actor) bool {
	if !actor.IsAccountManager() {
		return false
	}
	if actor.ID == o.BuyerManagerID || actor.ID == o.SupplierManagerID {
		return true
	}
	return actor.ManagesClient(o.BuyerID) || actor.ManagesClient(o.SupplierID)
}

// IsParty returns true if the given user is the order's buyer or supplier
func (o *Order) IsParty(userID uuid.UUID) bool {
	return userID == o.BuyerID || userID == o.SupplierID
}

// SideOfParty returns which side the given party user sits on
func (o *Order) SideOfParty(userID uuid.UUID) (identity.Side, bool) {
	switch userID {
	case o.BuyerID:
		return identity.SideBuyer, true
	case o.SupplierID:
		return identity.SideSupplier, true
	}
	return "", false
}

func invalidTransitionError(current, requested Status) error {
	return shared.NewDomainError("INVALID_TRANSITION",
		fmt.Sprintf("Cannot transition order from %s to %s", current, requested))
}

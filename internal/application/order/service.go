package order

import (
	"context"

	"github.com/google/uuid"
	appnotification "github.com/recyclemart/backend/internal/application/notification"
	"github.com/recyclemart/backend/internal/domain/identity"
	domainnotification "github.com/recyclemart/backend/internal/domain/notification"
	"github.com/recyclemart/backend/internal/domain/order"
	"github.com/recyclemart/backend/internal/domain/shared"
	"github.com/recyclemart/backend/internal/infrastructure/event"
	"go.uber.org/zap"
)

// Service handles order business operations
type Service struct {
	orders   order.Repository
	users    identity.UserRepository
	resolver *order.MatchingResolver
	fanout   *appnotification.Fanout
	emails   *appnotification.EmailNotifier
	logger   *zap.Logger
}

// NewService creates a new order service
func NewService(orders order.Repository, users identity.UserRepository, fanout *appnotification.Fanout, logger *zap.Logger) *Service {
	return &Service{
		orders:   orders,
		users:    users,
		resolver: order.NewMatchingResolver(users),
		fanout:   fanout,
		logger:   logger,
	}
}

// SetEmailNotifier enables best-effort email mirroring of notifications
func (s *Service) SetEmailNotifier(e *appnotification.EmailNotifier) {
	s.emails = e
}

// Create creates an order on behalf of one of the actor's managed clients.
// The counterpart manager is resolved up front; if none exists the whole
// operation fails and nothing is persisted.
func (s *Service) Create(ctx context.Context, actor identity.Actor, input CreateOrderInput) (*OrderResponse, error) {
	if !actor.IsAccountManager() {
		return nil, shared.ErrForbidden
	}

	terms := order.Terms{
		Product:       input.Product,
		Capacity:      input.Capacity,
		PricePerTonne: input.PricePerTonne,
		PaymentTerms:  input.PaymentTerms,
		ShippingTerms: input.ShippingTerms,
	}
	if err := terms.Validate(); err != nil {
		return nil, err
	}
	if input.BuyerID == uuid.Nil || input.SupplierID == uuid.Nil {
		return nil, shared.NewDomainError("MISSING_FIELDS", "Missing required fields: buyerId, supplierId")
	}

	ownParty := input.BuyerID
	oppositeParty := input.SupplierID
	if actor.Role == identity.SideSupplier {
		ownParty, oppositeParty = input.SupplierID, input.BuyerID
	}
	if !actor.ManagesClient(ownParty) {
		return nil, shared.NewDomainError("NOT_MANAGED_CLIENT", "Orders can only be created for the manager's own clients")
	}

	counterpart, err := s.resolver.ResolveCounterpart(ctx, actor.Role, oppositeParty)
	if err != nil {
		s.logger.Warn("Counterpart manager resolution failed",
			zap.String("creator_id", actor.ID.String()),
			zap.String("opposite_party_id", oppositeParty.String()),
			zap.Error(err))
		return nil, err
	}

	buyerManagerID, supplierManagerID := actor.ID, counterpart.ID
	if actor.Role == identity.SideSupplier {
		buyerManagerID, supplierManagerID = counterpart.ID, actor.ID
	}

	savedStatus := order.SavedStatusConfirmed
	if input.AsDraft {
		savedStatus = order.SavedStatusDraft
	}

	o, err := order.New(order.CreateParams{
		CreatedByID:       actor.ID,
		Terms:             terms,
		BuyerID:           input.BuyerID,
		SupplierID:        input.SupplierID,
		BuyerManagerID:    buyerManagerID,
		SupplierManagerID: supplierManagerID,
		SavedStatus:       savedStatus,
	})
	if err != nil {
		return nil, err
	}

	// Drafts stay private until confirmed; no fan-out for them.
	var notifications []*domainnotification.Notification
	if !o.IsDraft() {
		notifications, err = s.fanout.OrderCreated(o)
		if err != nil {
			return nil, err
		}
	}

	if err := s.orders.CreateWithNotifications(ctx, o, notifications); err != nil {
		return nil, err
	}
	event.Drain(s.logger, o)
	s.emails.Notify(ctx, notifications)

	s.logger.Info("Order created",
		zap.String("order_id", o.ID.String()),
		zap.String("created_by", actor.ID.String()),
		zap.String("saved_status", string(o.SavedStatus)),
		zap.Int("notified", len(notifications)))

	resp := ToOrderResponse(o)
	return &resp, nil
}

// Approve matches an order. Only the counterpart account manager may approve;
// the creator cannot approve their own order.
func (s *Service) Approve(ctx context.Context, actor identity.Actor, orderID uuid.UUID) (*OrderResponse, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.CanBeManagedBy(actor) {
		return nil, shared.ErrForbidden
	}
	if o.IsDraft() {
		return nil, shared.NewDomainError("INVALID_STATE", "Draft orders cannot be approved")
	}

	previous := o.Status
	if err := o.Approve(actor.ID); err != nil {
		return nil, err
	}

	notifications, err := s.fanout.StatusChanged(o, previous, actor.ID)
	if err != nil {
		return nil, err
	}

	if err := s.orders.SaveWithNotifications(ctx, o, notifications); err != nil {
		return nil, err
	}
	event.Drain(s.logger, o)
	s.emails.Notify(ctx, notifications)

	s.logger.Info("Order approved",
		zap.String("order_id", o.ID.String()),
		zap.String("approved_by", actor.ID.String()))

	resp := ToOrderResponse(o)
	return &resp, nil
}

// UpdateStatus applies a workflow transition requested by an account manager.
// The transition table is enforced by the aggregate; rejected transitions
// leave the order untouched.
func (s *Service) UpdateStatus(ctx context.Context, actor identity.Actor, orderID uuid.UUID, target order.Status) (*StatusUpdateResult, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.CanBeManagedBy(actor) {
		return nil, shared.ErrForbidden
	}
	if o.IsDraft() {
		return nil, shared.NewDomainError("INVALID_STATE", "Draft orders have no workflow status")
	}

	previous := o.Status
	if err := o.TransitionTo(target); err != nil {
		return nil, err
	}

	var notifications []*domainnotification.Notification
	switch target {
	case order.StatusProcessing:
		notifications, err = s.fanout.OrderProcessing(o, actor.ID)
	case order.StatusCompleted:
		notifications, err = s.fanout.OrderCompleted(o, actor.ID)
	default:
		notifications, err = s.fanout.StatusChanged(o, previous, actor.ID)
	}
	if err != nil {
		return nil, err
	}

	if err := s.orders.SaveWithNotifications(ctx, o, notifications); err != nil {
		return nil, err
	}
	event.Drain(s.logger, o)
	s.emails.Notify(ctx, notifications)

	notified := make([]uuid.UUID, len(notifications))
	for i, n := range notifications {
		notified[i] = n.UserID
	}

	s.logger.Info("Order status updated",
		zap.String("order_id", o.ID.String()),
		zap.String("from", previous.String()),
		zap.String("to", target.String()),
		zap.Int("notified", len(notified)))

	return &StatusUpdateResult{Order: ToOrderResponse(o), NotifiedIDs: notified}, nil
}

// UpdateDraft replaces the terms of a draft order
func (s *Service) UpdateDraft(ctx context.Context, actor identity.Actor, orderID uuid.UUID, input UpdateDraftInput) (*OrderResponse, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	terms := order.Terms{
		Product:       input.Product,
		Capacity:      input.Capacity,
		PricePerTonne: input.PricePerTonne,
		PaymentTerms:  input.PaymentTerms,
		ShippingTerms: input.ShippingTerms,
	}
	if err := o.UpdateDraft(actor.ID, terms); err != nil {
		return nil, err
	}

	if err := s.orders.Save(ctx, o); err != nil {
		return nil, err
	}
	event.Drain(s.logger, o)

	resp := ToOrderResponse(o)
	return &resp, nil
}

// ConfirmDraft moves a draft order to confirmed and fans out the creation
// notifications that were held back while it was private.
func (s *Service) ConfirmDraft(ctx context.Context, actor identity.Actor, orderID uuid.UUID) (*OrderResponse, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := o.ConfirmDraft(actor.ID); err != nil {
		return nil, err
	}

	notifications, err := s.fanout.OrderCreated(o)
	if err != nil {
		return nil, err
	}

	if err := s.orders.SaveWithNotifications(ctx, o, notifications); err != nil {
		return nil, err
	}
	event.Drain(s.logger, o)
	s.emails.Notify(ctx, notifications)

	s.logger.Info("Draft confirmed", zap.String("order_id", o.ID.String()))

	resp := ToOrderResponse(o)
	return &resp, nil
}

// DeleteDraft removes a draft order. Confirmed orders are never deleted.
func (s *Service) DeleteDraft(ctx context.Context, actor identity.Actor, orderID uuid.UUID) error {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if !o.IsDraft() {
		return shared.NewDomainError("NOT_DRAFT", "Only draft orders can be deleted")
	}
	if o.CreatedByID != actor.ID {
		return shared.ErrForbidden
	}
	return s.orders.Delete(ctx, orderID)
}

// Get returns one order, visible to its participants and their managers
func (s *Service) Get(ctx context.Context, actor identity.Actor, orderID uuid.UUID) (*OrderResponse, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !s.canView(actor, o) {
		return nil, shared.ErrForbidden
	}

	resp := ToOrderResponse(o)
	return &resp, nil
}

// List returns the orders visible to the actor. Drafts are only ever listed
// for their creator, and workflow-status filters never match drafts.
func (s *Service) List(ctx context.Context, actor identity.Actor, filter ListFilter) ([]OrderResponse, int64, error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	domainFilter.Search = filter.Search
	if filter.Status != nil {
		domainFilter.Filters["status"] = filter.Status.String()
	}
	if filter.SavedStatus != nil {
		domainFilter.Filters["saved_status"] = string(*filter.SavedStatus)
	}
	if filter.PartyID != nil {
		domainFilter.Filters["party_id"] = *filter.PartyID
	}
	domainFilter.Filters["viewer_id"] = actor.ID

	orders, err := s.orders.FindForUser(ctx, actor.ID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.orders.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToOrderResponses(orders), total, nil
}

func (s *Service) canView(actor identity.Actor, o *order.Order) bool {
	if o.IsDraft() {
		return o.CreatedByID == actor.ID
	}
	return o.IsParty(actor.ID) || o.CanBeManagedBy(actor)
}

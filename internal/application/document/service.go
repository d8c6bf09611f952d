package document

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	appnotification "github.com/recyclemart/backend/internal/application/notification"
	"github.com/recyclemart/backend/internal/domain/document"
	"github.com/recyclemart/backend/internal/domain/identity"
	domainnotification "github.com/recyclemart/backend/internal/domain/notification"
	"github.com/recyclemart/backend/internal/domain/order"
	"github.com/recyclemart/backend/internal/domain/shared"
	"github.com/recyclemart/backend/internal/infrastructure/event"
	"go.uber.org/zap"
)

// Renderer renders structured contract data to a PDF byte stream
type Renderer interface {
	RenderContract(ctx context.Context, data ContractData) ([]byte, error)
}

// BlobStore stores document files and serves expiring download URLs
type BlobStore interface {
	// Upload stores the bytes under the key and returns the stored location
	Upload(ctx context.Context, key, contentType string, body []byte) (string, error)

	// PresignGet returns an expiring download URL for a stored key
	PresignGet(ctx context.Context, key string) (string, error)
}

// Limits bounds document generation per requester per order
type Limits struct {
	GenerationLimit  int
	GenerationWindow time.Duration
}

// DefaultLimits returns the standard abuse guard: 3 generations per requester
// per order within a trailing 5 minutes.
func DefaultLimits() Limits {
	return Limits{GenerationLimit: 3, GenerationWindow: 5 * time.Minute}
}

// Service handles document generation and the signing workflow
type Service struct {
	docs     document.Repository
	orders   order.Repository
	users    identity.UserRepository
	renderer Renderer
	blobs    BlobStore
	fanout   *appnotification.Fanout
	emails   *appnotification.EmailNotifier
	limits   Limits
	logger   *zap.Logger
}

// NewService creates a new document service
func NewService(
	docs document.Repository,
	orders order.Repository,
	users identity.UserRepository,
	renderer Renderer,
	blobs BlobStore,
	fanout *appnotification.Fanout,
	limits Limits,
	logger *zap.Logger,
) *Service {
	if limits.GenerationLimit == 0 {
		limits = DefaultLimits()
	}
	return &Service{
		docs:     docs,
		orders:   orders,
		users:    users,
		renderer: renderer,
		blobs:    blobs,
		fanout:   fanout,
		limits:   limits,
		logger:   logger,
	}
}

// SetEmailNotifier enables best-effort email mirroring of notifications
func (s *Service) SetEmailNotifier(e *appnotification.EmailNotifier) {
	s.emails = e
}

// Generate produces the contract document for the requester's side of a
// matched order. If that half of the pair already exists it is returned
// unchanged with IsExisting set; nothing counts against the rate limit in
// that case. When the generation completes the pair, the order advances to
// document_phase in the same transaction.
func (s *Service) Generate(ctx context.Context, actor identity.Actor, orderID uuid.UUID) (*GenerateResult, error) {
	if !actor.IsAccountManager() {
		return nil, shared.ErrForbidden
	}

	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.CanBeManagedBy(actor) {
		return nil, shared.ErrForbidden
	}
	if o.Status != order.StatusMatched {
		return nil, shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Documents can only be generated for matched orders, order is %s", o.Status))
	}

	docType := document.TypeForSide(actor.Role)

	existing, err := s.docs.FindByOrderAndType(ctx, orderID, docType)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return &GenerateResult{
			Document:    ToDocumentResponse(existing),
			IsExisting:  true,
			OrderStatus: o.Status.String(),
		}, nil
	}

	if err := s.checkRateLimit(ctx, orderID, actor.ID); err != nil {
		return nil, err
	}

	data, err := s.contractData(ctx, o, docType)
	if err != nil {
		return nil, err
	}

	counterparty := data.SupplierCompany
	if docType == document.TypePurchaseOrder {
		counterparty = data.BuyerCompany
	}
	scope, err := document.NewInvoiceScope(docType, counterparty, time.Now())
	if err != nil {
		return nil, err
	}

	// Completeness depends only on the document's type, so the decision and
	// the order transition happen once up front. A retry below re-runs only
	// the numbering, rendering and persistence.
	others, err := s.docs.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	completesPair := document.PairComplete(append(others, document.Document{Type: docType}))
	if completesPair {
		if err := o.MarkDocumentsComplete(); err != nil {
			return nil, err
		}
	}

	// Sequence allocation races with concurrent generation in the same scope.
	// The unique index on invoice numbers rejects the loser; one retry with a
	// fresh sequence covers it.
	var doc *document.Document
	for attempt := 0; ; attempt++ {
		seq, err := s.docs.NextInvoiceSequence(ctx, scope)
		if err != nil {
			return nil, err
		}
		data.InvoiceNumber = scope.Format(seq)

		pdf, err := s.renderer.RenderContract(ctx, data)
		if err != nil {
			s.logger.Error("Contract render failed",
				zap.String("order_id", orderID.String()), zap.Error(err))
			return nil, shared.ErrExternalDependency
		}

		key := fmt.Sprintf("orders/%s/%s.pdf", orderID, data.InvoiceNumber)
		fileURL, err := s.blobs.Upload(ctx, key, "application/pdf", pdf)
		if err != nil {
			s.logger.Error("Contract upload failed",
				zap.String("order_id", orderID.String()), zap.Error(err))
			return nil, shared.ErrExternalDependency
		}

		doc, err = document.New(orderID, docType, fileURL, data.InvoiceNumber, actor.ID)
		if err != nil {
			return nil, err
		}

		rec := document.NewGenerationRecord(orderID, actor.ID)

		var orderUpdate *order.Order
		var notifications []*domainnotification.Notification
		if completesPair {
			orderUpdate = o
			notifications, err = s.fanout.DocumentsComplete(o, doc)
			if err != nil {
				return nil, err
			}
		}

		err = s.docs.CreateWithOrderAndNotifications(ctx, doc, rec, orderUpdate, notifications)
		if err == nil {
			event.Drain(s.logger, doc, o)
			s.emails.Notify(ctx, notifications)
			break
		}
		if errors.Is(err, shared.ErrConcurrencyConflict) && attempt == 0 {
			s.logger.Warn("Invoice number conflict, retrying with fresh sequence",
				zap.String("order_id", orderID.String()),
				zap.String("invoice_number", data.InvoiceNumber))
			continue
		}
		return nil, err
	}

	s.logger.Info("Document generated",
		zap.String("order_id", orderID.String()),
		zap.String("document_id", doc.ID.String()),
		zap.String("type", doc.Type.String()),
		zap.String("invoice_number", doc.InvoiceNumber),
		zap.String("order_status", o.Status.String()))

	return &GenerateResult{
		Document:    ToDocumentResponse(doc),
		IsExisting:  false,
		OrderStatus: o.Status.String(),
	}, nil
}

// Regenerate re-renders an existing document's file. Explicit and
// rate-limited; the invoice number never changes.
func (s *Service) Regenerate(ctx context.Context, actor identity.Actor, documentID uuid.UUID) (*DocumentResponse, error) {
	if !actor.IsAccountManager() {
		return nil, shared.ErrForbidden
	}

	doc, err := s.docs.FindByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	o, err := s.orders.FindByID(ctx, doc.OrderID)
	if err != nil {
		return nil, err
	}
	if !o.CanBeManagedBy(actor) {
		return nil, shared.ErrForbidden
	}

	if err := s.checkRateLimit(ctx, doc.OrderID, actor.ID); err != nil {
		return nil, err
	}

	data, err := s.contractData(ctx, o, doc.Type)
	if err != nil {
		return nil, err
	}
	data.InvoiceNumber = doc.InvoiceNumber

	pdf, err := s.renderer.RenderContract(ctx, data)
	if err != nil {
		return nil, shared.ErrExternalDependency
	}
	key := fmt.Sprintf("orders/%s/%s.pdf", doc.OrderID, doc.InvoiceNumber)
	fileURL, err := s.blobs.Upload(ctx, key, "application/pdf", pdf)
	if err != nil {
		return nil, shared.ErrExternalDependency
	}

	if err := doc.Regenerate(fileURL, actor.ID); err != nil {
		return nil, err
	}

	rec := document.NewGenerationRecord(doc.OrderID, actor.ID)
	if err := s.docs.SaveWithGeneration(ctx, doc, rec); err != nil {
		return nil, err
	}
	event.Drain(s.logger, doc)

	s.logger.Info("Document regenerated",
		zap.String("document_id", doc.ID.String()),
		zap.String("invoice_number", doc.InvoiceNumber))

	resp := ToDocumentResponse(doc)
	return &resp, nil
}

// UploadSigned records a client party's signature. The signature covers the
// commercial terms, so it is recorded on both halves of the contract pair.
// When the final signature lands, the order advances to processing in the
// same transaction.
func (s *Service) UploadSigned(ctx context.Context, actor identity.Actor, orderID uuid.UUID, fileBytes []byte) (*SignResult, error) {
	if !actor.IsClient() {
		return nil, shared.NewDomainError("NOT_CLIENT", "Only client parties sign documents, not account managers")
	}
	if len(fileBytes) == 0 {
		return nil, shared.NewDomainError("MISSING_FILE", "Signed document file cannot be empty")
	}

	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.IsParty(actor.ID) {
		return nil, shared.ErrForbidden
	}
	side, _ := o.SideOfParty(actor.ID)
	if !actor.CanSignAs(side) {
		return nil, shared.ErrForbidden
	}
	if o.Status != order.StatusDocumentPhase && o.Status != order.StatusProcessing {
		return nil, shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Documents are not ready for signing, order is %s", o.Status))
	}

	docs, err := s.docs.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	// The response centers on the document matching the signer's role; the
	// pairing buyer→sales_order, supplier→purchase_order is fixed.
	var primary *document.Document
	open := make([]*document.Document, 0, len(docs))
	for i := range docs {
		d := &docs[i]
		if d.Outcome != document.OutcomeNone {
			continue
		}
		open = append(open, d)
		if d.Type == document.TypeForSide(side) {
			primary = d
		}
	}
	if primary == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "No open document to sign for this party")
	}

	key := fmt.Sprintf("orders/%s/signed/%s-%s.pdf", orderID, side, uuid.New())
	signedURL, err := s.blobs.Upload(ctx, key, "application/pdf", fileBytes)
	if err != nil {
		s.logger.Error("Signed upload failed",
			zap.String("order_id", orderID.String()), zap.Error(err))
		return nil, shared.ErrExternalDependency
	}

	for _, d := range open {
		if _, err := d.Sign(side, signedURL); err != nil {
			return nil, err
		}
	}
	fully := primary.IsFullySigned()

	var orderUpdate *order.Order
	var notifications []*domainnotification.Notification
	if fully {
		notifications, err = s.fanout.SignatureCompleted(o, primary)
		if err != nil {
			return nil, err
		}
		if o.Status == order.StatusDocumentPhase {
			if err := o.MarkProcessing(); err != nil {
				return nil, err
			}
			orderUpdate = o
			processing, err := s.fanout.OrderProcessing(o, actor.ID)
			if err != nil {
				return nil, err
			}
			notifications = append(notifications, processing...)
		}
	} else {
		notifications, err = s.fanout.SignatureRequested(o, primary, side)
		if err != nil {
			return nil, err
		}
	}

	if err := s.docs.SaveAll(ctx, open, orderUpdate, notifications); err != nil {
		return nil, err
	}
	roots := make([]shared.AggregateRoot, 0, len(open)+1)
	for _, d := range open {
		roots = append(roots, d)
	}
	event.Drain(s.logger, append(roots, o)...)
	s.emails.Notify(ctx, notifications)

	notified := make([]uuid.UUID, len(notifications))
	for i, n := range notifications {
		notified[i] = n.UserID
	}

	s.logger.Info("Signed document uploaded",
		zap.String("order_id", orderID.String()),
		zap.String("side", side.String()),
		zap.Bool("fully_signed", fully),
		zap.String("order_status", o.Status.String()))

	return &SignResult{
		Document:    ToDocumentResponse(primary),
		FullySigned: fully,
		OrderStatus: o.Status.String(),
		NotifiedIDs: notified,
	}, nil
}

// SigningStatus returns signing progress derived from the stored timestamps
func (s *Service) SigningStatus(ctx context.Context, actor identity.Actor, documentID uuid.UUID) (*SigningStatusResponse, error) {
	doc, err := s.docs.FindByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	o, err := s.orders.FindByID(ctx, doc.OrderID)
	if err != nil {
		return nil, err
	}
	if !o.IsParty(actor.ID) && !o.CanBeManagedBy(actor) {
		return nil, shared.ErrForbidden
	}

	resp := ToSigningStatusResponse(doc)
	return &resp, nil
}

// OrderDocuments lists the documents of one order
func (s *Service) OrderDocuments(ctx context.Context, actor identity.Actor, orderID uuid.UUID) ([]DocumentResponse, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.IsParty(actor.ID) && !o.CanBeManagedBy(actor) {
		return nil, shared.ErrForbidden
	}

	docs, err := s.docs.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return ToDocumentResponses(docs), nil
}

// ClientDocuments lists documents on orders where the client is a party.
// Managers pass the managed client explicitly.
func (s *Service) ClientDocuments(ctx context.Context, actor identity.Actor, filter ListFilter) ([]DocumentResponse, error) {
	return s.clientDocuments(ctx, actor, filter, false)
}

// SignedDocuments lists only fully signed documents for a client
func (s *Service) SignedDocuments(ctx context.Context, actor identity.Actor, filter ListFilter) ([]DocumentResponse, error) {
	return s.clientDocuments(ctx, actor, filter, true)
}

func (s *Service) clientDocuments(ctx context.Context, actor identity.Actor, filter ListFilter, signedOnly bool) ([]DocumentResponse, error) {
	clientID := actor.ID
	if actor.IsAccountManager() {
		if filter.ClientID == nil {
			return nil, shared.NewDomainError("MISSING_CLIENT", "Account managers must name the client to list documents for")
		}
		if !actor.ManagesClient(*filter.ClientID) {
			return nil, shared.ErrForbidden
		}
		clientID = *filter.ClientID
	}

	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}

	docs, err := s.docs.FindForClient(ctx, clientID, signedOnly, domainFilter)
	if err != nil {
		return nil, err
	}
	return ToDocumentResponses(docs), nil
}

// Decline marks a document as declined by one of the parties. Terminal;
// everyone else is notified.
func (s *Service) Decline(ctx context.Context, actor identity.Actor, documentID uuid.UUID, reason string) (*DocumentResponse, error) {
	doc, err := s.docs.FindByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	o, err := s.orders.FindByID(ctx, doc.OrderID)
	if err != nil {
		return nil, err
	}
	if !o.IsParty(actor.ID) && !o.CanBeManagedBy(actor) {
		return nil, shared.ErrForbidden
	}

	if err := doc.Decline(reason); err != nil {
		return nil, err
	}

	notifications, err := s.fanout.SubmissionDeclined(o, doc, reason, actor.ID)
	if err != nil {
		return nil, err
	}

	if err := s.docs.SaveWithOrderAndNotifications(ctx, doc, nil, notifications); err != nil {
		return nil, err
	}
	event.Drain(s.logger, doc)
	s.emails.Notify(ctx, notifications)

	s.logger.Info("Document declined",
		zap.String("document_id", doc.ID.String()),
		zap.String("declined_by", actor.ID.String()))

	resp := ToDocumentResponse(doc)
	return &resp, nil
}

// Expire marks a document as expired. Terminal; all participants are
// notified.
func (s *Service) Expire(ctx context.Context, actor identity.Actor, documentID uuid.UUID) (*DocumentResponse, error) {
	if !actor.IsAccountManager() {
		return nil, shared.ErrForbidden
	}

	doc, err := s.docs.FindByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	o, err := s.orders.FindByID(ctx, doc.OrderID)
	if err != nil {
		return nil, err
	}
	if !o.CanBeManagedBy(actor) {
		return nil, shared.ErrForbidden
	}

	if err := doc.Expire(); err != nil {
		return nil, err
	}

	notifications, err := s.fanout.SubmissionExpired(o, doc)
	if err != nil {
		return nil, err
	}

	if err := s.docs.SaveWithOrderAndNotifications(ctx, doc, nil, notifications); err != nil {
		return nil, err
	}
	event.Drain(s.logger, doc)
	s.emails.Notify(ctx, notifications)

	resp := ToDocumentResponse(doc)
	return &resp, nil
}

// DownloadURL returns an expiring download URL for a document's file
func (s *Service) DownloadURL(ctx context.Context, actor identity.Actor, documentID uuid.UUID) (string, error) {
	doc, err := s.docs.FindByID(ctx, documentID)
	if err != nil {
		return "", err
	}
	o, err := s.orders.FindByID(ctx, doc.OrderID)
	if err != nil {
		return "", err
	}
	if !o.IsParty(actor.ID) && !o.CanBeManagedBy(actor) {
		return "", shared.ErrForbidden
	}

	url, err := s.blobs.PresignGet(ctx, doc.FileURL)
	if err != nil {
		return "", shared.ErrExternalDependency
	}
	return url, nil
}

// checkRateLimit rejects when the requester already generated the limit for
// this order within the trailing window.
func (s *Service) checkRateLimit(ctx context.Context, orderID, requesterID uuid.UUID) error {
	since := time.Now().Add(-s.limits.GenerationWindow)
	count, err := s.docs.CountGenerations(ctx, orderID, requesterID, since)
	if err != nil {
		return err
	}
	if count >= int64(s.limits.GenerationLimit) {
		s.logger.Warn("Document generation rate limited",
			zap.String("order_id", orderID.String()),
			zap.String("requester_id", requesterID.String()),
			zap.Int64("recent_generations", count))
		return shared.ErrRateLimited
	}
	return nil
}

// contractData assembles renderer input from the order and its parties
func (s *Service) contractData(ctx context.Context, o *order.Order, docType document.Type) (ContractData, error) {
	buyer, err := s.users.FindByID(ctx, o.BuyerID)
	if err != nil {
		return ContractData{}, err
	}
	supplier, err := s.users.FindByID(ctx, o.SupplierID)
	if err != nil {
		return ContractData{}, err
	}

	title := "Sales Order Contract"
	if docType == document.TypePurchaseOrder {
		title = "Purchase Order Contract"
	}

	return ContractData{
		DocumentTitle:   title,
		Product:         o.Terms.Product,
		Capacity:        o.Terms.Capacity,
		PricePerTonne:   o.Terms.PricePerTonne,
		TotalValue:      o.Terms.Capacity.Mul(o.Terms.PricePerTonne),
		PaymentTerms:    o.Terms.PaymentTerms,
		ShippingTerms:   o.Terms.ShippingTerms,
		BuyerName:       buyer.Name,
		BuyerCompany:    companyOrName(buyer),
		SupplierName:    supplier.Name,
		SupplierCompany: companyOrName(supplier),
		IssuedAt:        time.Now(),
	}, nil
}

func companyOrName(u *identity.User) string {
	if u.CompanyName != "" {
		return u.CompanyName
	}
	return u.Name
}

package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/recyclemart/backend/internal/domain/document"
	"github.com/recyclemart/backend/internal/domain/notification"
	"github.com/recyclemart/backend/internal/domain/order"
	"github.com/recyclemart/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormDocumentRepository implements document.Repository using GORM
type GormDocumentRepository struct {
	db *gorm.DB
}

// NewGormDocumentRepository creates a new GormDocumentRepository
func NewGormDocumentRepository(db *gorm.DB) *GormDocumentRepository {
	return &GormDocumentRepository{db: db}
}

// FindByID finds a document by ID
func (r *GormDocumentRepository) FindByID(ctx context.Context, id uuid.UUID) (*document.Document, error) {
	var d document.Document
	if err := r.db.WithContext(ctx).First(&d, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

// FindByOrder lists the documents of an order
func (r *GormDocumentRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]document.Document, error) {
	var docs []document.Document
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

// FindByOrderAndType finds one half of an order's contract pair
func (r *GormDocumentRepository) FindByOrderAndType(ctx context.Context, orderID uuid.UUID, docType document.Type) (*document.Document, error) {
	var d document.Document
	if err := r.db.WithContext(ctx).
		Where("order_id = ? AND type = ?", orderID, docType).
		First(&d).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

// FindForClient lists documents on orders where the client is a party
func (r *GormDocumentRepository) FindForClient(ctx context.Context, clientID uuid.UUID, signedOnly bool, filter shared.Filter) ([]document.Document, error) {
	query := r.db.WithContext(ctx).Model(&document.Document{}).
		Joins("JOIN orders ON orders.id = documents.order_id").
		Where("orders.buyer_id = ? OR orders.supplier_id = ?", clientID, clientID)
	if signedOnly {
		query = query.Where("documents.signed_by_buyer_at IS NOT NULL AND documents.signed_by_supplier_at IS NOT NULL")
	}

	var docs []document.Document
	if err := query.
		Order("documents.created_at DESC").
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

// CountGenerations counts generation records for a requester on an order
// since the given time.
func (r *GormDocumentRepository) CountGenerations(ctx context.Context, orderID, requesterID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&document.GenerationRecord{}).
		Where("order_id = ? AND requester_id = ? AND created_at >= ?", orderID, requesterID, since).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// NextInvoiceSequence returns max existing sequence + 1 within the scope. The
// scan goes through Go-side parsing rather than SQL substring math so the
// same code runs on every backing database; the unique index on
// invoice_number is what actually guards allocation.
func (r *GormDocumentRepository) NextInvoiceSequence(ctx context.Context, scope document.InvoiceScope) (int, error) {
	var numbers []string
	if err := r.db.WithContext(ctx).Model(&document.Document{}).
		Where("invoice_number LIKE ?", scope.Prefix()+"%").
		Pluck("invoice_number", &numbers).Error; err != nil {
		return 0, err
	}

	max := 0
	for _, number := range numbers {
		seq, err := document.SequenceOf(number)
		if err != nil {
			continue
		}
		if seq > max {
			max = seq
		}
	}
	return max + 1, nil
}

// CreateWithOrderAndNotifications inserts a document and its generation
// record, optionally updates the order under its version lock, and writes the
// notifications, all in one transaction.
func (r *GormDocumentRepository) CreateWithOrderAndNotifications(ctx context.Context, d *document.Document, rec *document.GenerationRecord, o *order.Order, notifications []*notification.Notification) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(d).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return shared.ErrConcurrencyConflict
			}
			return err
		}
		if rec != nil {
			if err := tx.Create(rec).Error; err != nil {
				return err
			}
		}
		if o != nil {
			if err := saveOrderLocked(tx, o); err != nil {
				return err
			}
		}
		return createNotifications(tx, notifications)
	})
}

// SaveWithOrderAndNotifications updates a document under its version lock
// together with an optional order update and notifications, atomically.
func (r *GormDocumentRepository) SaveWithOrderAndNotifications(ctx context.Context, d *document.Document, o *order.Order, notifications []*notification.Notification) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := saveDocumentLocked(tx, d); err != nil {
			return err
		}
		if o != nil {
			if err := saveOrderLocked(tx, o); err != nil {
				return err
			}
		}
		return createNotifications(tx, notifications)
	})
}

// SaveWithGeneration updates a document and logs a generation record in the
// same transaction. Used by the regenerate path.
func (r *GormDocumentRepository) SaveWithGeneration(ctx context.Context, d *document.Document, rec *document.GenerationRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := saveDocumentLocked(tx, d); err != nil {
			return err
		}
		if rec != nil {
			if err := tx.Create(rec).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// SaveAll updates several documents of the same order under their version
// locks together with an optional order update and notifications, atomically.
func (r *GormDocumentRepository) SaveAll(ctx context.Context, docs []*document.Document, o *order.Order, notifications []*notification.Notification) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, d := range docs {
			if err := saveDocumentLocked(tx, d); err != nil {
				return err
			}
		}
		if o != nil {
			if err := saveOrderLocked(tx, o); err != nil {
				return err
			}
		}
		return createNotifications(tx, notifications)
	})
}

// Save updates a document under its version lock without side effects
func (r *GormDocumentRepository) Save(ctx context.Context, d *document.Document) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return saveDocumentLocked(tx, d)
	})
}

func saveDocumentLocked(tx *gorm.DB, d *document.Document) error {
	currentVersion := d.Version
	d.Version++
	d.UpdatedAt = time.Now()

	result := tx.Model(&document.Document{}).
		Where("id = ? AND version = ?", d.ID, currentVersion).
		Updates(map[string]interface{}{
			"file_url":              d.FileURL,
			"generated_by_id":       d.GeneratedByID,
			"status":                d.Status,
			"signed_by_buyer_at":    d.SignedByBuyerAt,
			"signed_by_supplier_at": d.SignedBySupplierAt,
			"buyer_signed_url":      d.BuyerSignedURL,
			"supplier_signed_url":   d.SupplierSignedURL,
			"outcome":               d.Outcome,
			"outcome_reason":        d.OutcomeReason,
			"version":               d.Version,
			"updated_at":            d.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		d.Version = currentVersion
		return shared.ErrConcurrencyConflict
	}
	return nil
}

package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/recyclemart/backend/internal/domain/notification"
	"github.com/recyclemart/backend/internal/domain/order"
	"github.com/recyclemart/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormOrderRepository implements order.Repository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order by ID
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).First(&o, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// FindAll lists orders with filtering
func (r *GormOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]order.Order, error) {
	var orders []order.Order
	query := r.applyFilter(r.db.WithContext(ctx).Model(&order.Order{}), filter, true)
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// FindForUser lists orders where the user holds any participant slot. Drafts
// appear only for their creator; workflow-status filters never match drafts.
func (r *GormOrderRepository) FindForUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]order.Order, error) {
	var orders []order.Order
	query := r.db.WithContext(ctx).Model(&order.Order{}).
		Where("buyer_id = ? OR supplier_id = ? OR buyer_manager_id = ? OR supplier_manager_id = ? OR created_by_id = ?",
			userID, userID, userID, userID, userID)
	query = r.applyFilter(query, filter, true)
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Count counts orders matching the filter
func (r *GormOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&order.Order{}), filter, false)
	if viewerID, ok := filter.Filters["viewer_id"].(uuid.UUID); ok {
		query = query.Where("buyer_id = ? OR supplier_id = ? OR buyer_manager_id = ? OR supplier_manager_id = ? OR created_by_id = ?",
			viewerID, viewerID, viewerID, viewerID, viewerID)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CreateWithNotifications inserts an order and its notifications atomically
func (r *GormOrderRepository) CreateWithNotifications(ctx context.Context, o *order.Order, notifications []*notification.Notification) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(o).Error; err != nil {
			return err
		}
		return createNotifications(tx, notifications)
	})
}

// SaveWithNotifications updates an order under its version lock together with
// the notifications, atomically. A stale version fails the whole transaction
// and nothing is written.
func (r *GormOrderRepository) SaveWithNotifications(ctx context.Context, o *order.Order, notifications []*notification.Notification) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := saveOrderLocked(tx, o); err != nil {
			return err
		}
		return createNotifications(tx, notifications)
	})
}

// Save updates an order under its version lock without side effects
func (r *GormOrderRepository) Save(ctx context.Context, o *order.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return saveOrderLocked(tx, o)
	})
}

// Delete removes an order. Used only for drafts.
func (r *GormOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&order.Order{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// saveOrderLocked updates all mutable order columns guarded by the version
// check. Shared by order and document transactions.
func saveOrderLocked(tx *gorm.DB, o *order.Order) error {
	currentVersion := o.Version
	o.Version++
	o.UpdatedAt = time.Now()

	result := tx.Model(&order.Order{}).
		Where("id = ? AND version = ?", o.ID, currentVersion).
		Updates(map[string]interface{}{
			"product":               o.Terms.Product,
			"capacity":              o.Terms.Capacity,
			"price_per_tonne":       o.Terms.PricePerTonne,
			"payment_terms":         o.Terms.PaymentTerms,
			"shipping_terms":        o.Terms.ShippingTerms,
			"matched_by_id":         o.MatchedByID,
			"saved_status":          o.SavedStatus,
			"status":                o.Status,
			"approved_at":           o.ApprovedAt,
			"document_generated_at": o.DocumentGeneratedAt,
			"processing_at":         o.ProcessingAt,
			"completed_at":          o.CompletedAt,
			"version":               o.Version,
			"updated_at":            o.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		o.Version = currentVersion
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// createNotifications inserts the fan-out rows inside the caller's transaction
func createNotifications(tx *gorm.DB, notifications []*notification.Notification) error {
	for _, n := range notifications {
		if err := tx.Create(n).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *GormOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter, paginate bool) *gorm.DB {
	savedStatus, hasSavedStatus := filter.Filters["saved_status"].(string)
	status, hasStatus := filter.Filters["status"].(string)

	switch {
	case hasStatus:
		// Workflow-state filters only ever match confirmed orders
		query = query.Where("saved_status = ? AND status = ?", order.SavedStatusConfirmed, status)
	case hasSavedStatus && savedStatus == string(order.SavedStatusDraft):
		viewerID, _ := filter.Filters["viewer_id"].(uuid.UUID)
		query = query.Where("saved_status = ? AND created_by_id = ?", order.SavedStatusDraft, viewerID)
	case hasSavedStatus:
		query = query.Where("saved_status = ?", savedStatus)
	default:
		// Confirmed orders plus the viewer's own drafts
		if viewerID, ok := filter.Filters["viewer_id"].(uuid.UUID); ok {
			query = query.Where("saved_status = ? OR created_by_id = ?", order.SavedStatusConfirmed, viewerID)
		} else {
			query = query.Where("saved_status = ?", order.SavedStatusConfirmed)
		}
	}

	if partyID, ok := filter.Filters["party_id"].(uuid.UUID); ok {
		query = query.Where("buyer_id = ? OR supplier_id = ?", partyID, partyID)
	}
	if filter.Search != "" {
		query = query.Where("LOWER(product) LIKE LOWER(?)", "%"+filter.Search+"%")
	}

	if paginate {
		query = query.Order("created_at DESC").
			Offset((filter.Page - 1) * filter.PageSize).
			Limit(filter.PageSize)
	}
	return query
}

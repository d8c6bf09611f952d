package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/recyclemart/backend/internal/domain/identity"
	"github.com/recyclemart/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormUserRepository implements identity.UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// FindByID finds a user by ID with the managed-client set loaded
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	var user identity.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if err := r.loadManagedClients(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	var user identity.User
	if err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if err := r.loadManagedClients(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindManagerForClient finds the account manager on the given side whose book
// contains the client. Ties break on earliest created, then lowest ID, so
// repeated calls resolve the same manager.
func (r *GormUserRepository) FindManagerForClient(ctx context.Context, role identity.Side, clientID uuid.UUID) (*identity.User, error) {
	var user identity.User
	err := r.db.WithContext(ctx).
		Joins("JOIN managed_clients ON managed_clients.manager_id = users.id").
		Where("users.role = ? AND managed_clients.client_id = ?", role, clientID).
		Order("users.created_at ASC, users.id ASC").
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if err := r.loadManagedClients(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ExistsByEmail checks if a user with the email exists
func (r *GormUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&identity.User{}).
		Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a user and reconciles the managed-client rows with
// the aggregate's current set.
func (r *GormUserRepository) Save(ctx context.Context, user *identity.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return shared.ErrAlreadyExists
			}
			return err
		}

		if len(user.ManagedClientIDs) > 0 {
			if err := tx.Where("manager_id = ? AND client_id NOT IN ?", user.ID, user.ManagedClientIDs).
				Delete(&identity.ManagedClient{}).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Where("manager_id = ?", user.ID).
				Delete(&identity.ManagedClient{}).Error; err != nil {
				return err
			}
		}

		var existing []identity.ManagedClient
		if err := tx.Where("manager_id = ?", user.ID).Find(&existing).Error; err != nil {
			return err
		}
		known := make(map[uuid.UUID]struct{}, len(existing))
		for _, mc := range existing {
			known[mc.ClientID] = struct{}{}
		}
		for _, clientID := range user.ManagedClientIDs {
			if _, ok := known[clientID]; ok {
				continue
			}
			mc := identity.ManagedClient{
				ManagerID: user.ID,
				ClientID:  clientID,
				CreatedAt: time.Now(),
			}
			if err := tx.Create(&mc).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *GormUserRepository) loadManagedClients(ctx context.Context, user *identity.User) error {
	var rows []identity.ManagedClient
	if err := r.db.WithContext(ctx).
		Where("manager_id = ?", user.ID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return err
	}
	user.ManagedClientIDs = make([]uuid.UUID, len(rows))
	for i, row := range rows {
		user.ManagedClientIDs[i] = row.ClientID
	}
	return nil
}

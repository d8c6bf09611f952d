package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/recyclemart/backend/internal/domain/notification"
	"github.com/recyclemart/backend/internal/domain/order"
	"github.com/recyclemart/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedNotification(t *testing.T, repo *GormOrderRepository, userID uuid.UUID, kind notification.Kind) *notification.Notification {
	t.Helper()
	o := newTestOrder(t, order.SavedStatusConfirmed)
	n, err := notification.New(userID, o.ID, kind, "test message", nil)
	require.NoError(t, err)
	require.NoError(t, repo.CreateWithNotifications(context.Background(), o, []*notification.Notification{n}))
	return n
}

func TestGormNotificationRepository_FindForUser(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormNotificationRepository(db)
	orders := NewGormOrderRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	first := seedNotification(t, orders, userID, notification.KindOrderCreated)
	time.Sleep(5 * time.Millisecond)
	second := seedNotification(t, orders, userID, notification.KindStatusChanged)
	seedNotification(t, orders, uuid.New(), notification.KindOrderCreated)

	t.Run("lists newest first, scoped to the user", func(t *testing.T) {
		list, err := repo.FindForUser(ctx, userID, shared.DefaultFilter())
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, second.ID, list[0].ID)
		assert.Equal(t, first.ID, list[1].ID)
	})

	t.Run("unread filter", func(t *testing.T) {
		require.NoError(t, repo.MarkRead(ctx, userID, first.ID))

		filter := shared.DefaultFilter()
		filter.Filters["is_read"] = false
		list, err := repo.FindForUser(ctx, userID, filter)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, second.ID, list[0].ID)
	})

	t.Run("pagination", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.PageSize = 1
		filter.Page = 2
		list, err := repo.FindForUser(ctx, userID, filter)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, first.ID, list[0].ID)
	})
}

func TestGormNotificationRepository_MarkRead(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormNotificationRepository(db)
	orders := NewGormOrderRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	n := seedNotification(t, orders, userID, notification.KindOrderCreated)

	t.Run("marks and decrements unread count", func(t *testing.T) {
		count, err := repo.CountUnread(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)

		require.NoError(t, repo.MarkRead(ctx, userID, n.ID))

		found, err := repo.FindByID(ctx, n.ID)
		require.NoError(t, err)
		assert.True(t, found.IsRead)
		require.NotNil(t, found.ReadAt)

		count, err = repo.CountUnread(ctx, userID)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("second call is idempotent and keeps read_at", func(t *testing.T) {
		before, err := repo.FindByID(ctx, n.ID)
		require.NoError(t, err)

		time.Sleep(5 * time.Millisecond)
		require.NoError(t, repo.MarkRead(ctx, userID, n.ID))

		after, err := repo.FindByID(ctx, n.ID)
		require.NoError(t, err)
		assert.Equal(t, before.ReadAt.UnixNano(), after.ReadAt.UnixNano())
	})

	t.Run("another user's notification is not found", func(t *testing.T) {
		other := seedNotification(t, orders, uuid.New(), notification.KindOrderCreated)
		err := repo.MarkRead(ctx, userID, other.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		err := repo.MarkRead(ctx, userID, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/recyclemart/backend/internal/domain/identity"
	"github.com/recyclemart/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, email string, side identity.Side) *identity.User {
	t.Helper()
	u, err := identity.NewClient(email, "Test Client", "Test Co", "supersecret", side)
	require.NoError(t, err)
	u.ClearDomainEvents()
	return u
}

func newTestManager(t *testing.T, email string, role identity.Side) *identity.User {
	t.Helper()
	u, err := identity.NewAccountManager(email, "Test Manager", "RecycleMart", "supersecret", role)
	require.NoError(t, err)
	u.ClearDomainEvents()
	return u
}

func TestGormUserRepository_SaveAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormUserRepository(db)
	ctx := context.Background()

	client := newTestClient(t, "buyer@greencycle.example", identity.SideBuyer)
	require.NoError(t, repo.Save(ctx, client))

	t.Run("finds by id", func(t *testing.T) {
		found, err := repo.FindByID(ctx, client.ID)
		require.NoError(t, err)
		assert.Equal(t, client.Email, found.Email)
		assert.Equal(t, identity.SideBuyer, found.ClientType)
		assert.Empty(t, found.ManagedClientIDs)
	})

	t.Run("finds by email", func(t *testing.T) {
		found, err := repo.FindByEmail(ctx, "buyer@greencycle.example")
		require.NoError(t, err)
		assert.Equal(t, client.ID, found.ID)
	})

	t.Run("exists by email", func(t *testing.T) {
		exists, err := repo.ExistsByEmail(ctx, "buyer@greencycle.example")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsByEmail(ctx, "nobody@example.com")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		dup := newTestClient(t, "buyer@greencycle.example", identity.SideBuyer)
		assert.ErrorIs(t, repo.Save(ctx, dup), shared.ErrAlreadyExists)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormUserRepository_ManagedClientReconciliation(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormUserRepository(db)
	ctx := context.Background()

	manager := newTestManager(t, "manager@recyclemart.example", identity.SideBuyer)
	c1 := newTestClient(t, "c1@example.com", identity.SideBuyer)
	c2 := newTestClient(t, "c2@example.com", identity.SideBuyer)
	require.NoError(t, repo.Save(ctx, c1))
	require.NoError(t, repo.Save(ctx, c2))

	require.NoError(t, manager.AssignClient(c1))
	require.NoError(t, manager.AssignClient(c2))
	manager.ClearDomainEvents()
	require.NoError(t, repo.Save(ctx, manager))

	found, err := repo.FindByID(ctx, manager.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{c1.ID, c2.ID}, found.ManagedClientIDs)

	t.Run("unassign removes the row", func(t *testing.T) {
		require.NoError(t, manager.UnassignClient(c1.ID))
		require.NoError(t, repo.Save(ctx, manager))

		found, err := repo.FindByID(ctx, manager.ID)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{c2.ID}, found.ManagedClientIDs)
	})

	t.Run("emptying the book clears all rows", func(t *testing.T) {
		require.NoError(t, manager.UnassignClient(c2.ID))
		require.NoError(t, repo.Save(ctx, manager))

		found, err := repo.FindByID(ctx, manager.ID)
		require.NoError(t, err)
		assert.Empty(t, found.ManagedClientIDs)
	})
}

func TestGormUserRepository_FindManagerForClient(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormUserRepository(db)
	ctx := context.Background()

	client := newTestClient(t, "client@example.com", identity.SideSupplier)
	require.NoError(t, repo.Save(ctx, client))

	older := newTestManager(t, "older@recyclemart.example", identity.SideSupplier)
	older.CreatedAt = time.Now().Add(-time.Hour)
	newer := newTestManager(t, "newer@recyclemart.example", identity.SideSupplier)
	require.NoError(t, older.AssignClient(client))
	require.NoError(t, newer.AssignClient(client))
	older.ClearDomainEvents()
	newer.ClearDomainEvents()
	require.NoError(t, repo.Save(ctx, newer))
	require.NoError(t, repo.Save(ctx, older))

	t.Run("resolves the earliest-created manager", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			found, err := repo.FindManagerForClient(ctx, identity.SideSupplier, client.ID)
			require.NoError(t, err)
			assert.Equal(t, older.ID, found.ID)
		}
	})

	t.Run("wrong side finds nothing", func(t *testing.T) {
		_, err := repo.FindManagerForClient(ctx, identity.SideBuyer, client.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("unmanaged client finds nothing", func(t *testing.T) {
		_, err := repo.FindManagerForClient(ctx, identity.SideSupplier, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

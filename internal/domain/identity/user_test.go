package identity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helpers
func createTestClient(t *testing.T, clientType Side) *User {
	u, err := NewClient("client@example.com", "Test Client", "Client Co", "s3cret-pass", clientType)
	require.NoError(t, err)
	return u
}

func createTestManager(t *testing.T, role Side) *User {
	u, err := NewAccountManager("manager@example.com", "Test Manager", "RecycleMart", "s3cret-pass", role)
	require.NoError(t, err)
	return u
}

// ============================================
// Side Tests
// ============================================

func TestSide(t *testing.T) {
	assert.True(t, SideBuyer.IsValid())
	assert.True(t, SideSupplier.IsValid())
	assert.False(t, Side("").IsValid())
	assert.False(t, Side("admin").IsValid())

	assert.Equal(t, SideSupplier, SideBuyer.Opposite())
	assert.Equal(t, SideBuyer, SideSupplier.Opposite())
}

// ============================================
// NewClient / NewAccountManager Tests
// ============================================

func TestNewClient(t *testing.T) {
	t.Run("creates client", func(t *testing.T) {
		u, err := NewClient("Buyer@Example.com ", "Buyer One", "Buyer Co", "s3cret-pass", SideBuyer)
		require.NoError(t, err)

		assert.Equal(t, "buyer@example.com", u.Email)
		assert.Equal(t, SideBuyer, u.ClientType)
		assert.True(t, u.IsClient())
		assert.False(t, u.IsAccountManager())
		assert.NotEqual(t, "s3cret-pass", u.PasswordHash)

		events := u.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeUserRegistered, events[0].EventType())
	})

	t.Run("rejects invalid client type", func(t *testing.T) {
		_, err := NewClient("a@b.co", "A", "Co", "s3cret-pass", Side("admin"))
		require.Error(t, err)
	})

	t.Run("rejects invalid email", func(t *testing.T) {
		_, err := NewClient("not-an-email", "A", "Co", "s3cret-pass", SideBuyer)
		require.Error(t, err)
	})

	t.Run("rejects short password", func(t *testing.T) {
		_, err := NewClient("a@b.co", "A", "Co", "short", SideBuyer)
		require.Error(t, err)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewClient("a@b.co", "  ", "Co", "s3cret-pass", SideBuyer)
		require.Error(t, err)
	})
}

func TestNewAccountManager(t *testing.T) {
	u := createTestManager(t, SideSupplier)
	assert.Equal(t, SideSupplier, u.Role)
	assert.True(t, u.IsAccountManager())
	assert.False(t, u.IsClient())
}

func TestUser_CheckPassword(t *testing.T) {
	u := createTestClient(t, SideBuyer)
	assert.True(t, u.CheckPassword("s3cret-pass"))
	assert.False(t, u.CheckPassword("wrong-pass"))
}

// ============================================
// Client assignment Tests
// ============================================

func TestUser_AssignClient(t *testing.T) {
	t.Run("assigns matching-side client", func(t *testing.T) {
		manager := createTestManager(t, SideBuyer)
		client := createTestClient(t, SideBuyer)

		require.NoError(t, manager.AssignClient(client))
		assert.True(t, manager.ManagesClient(client.ID))
	})

	t.Run("rejects side mismatch", func(t *testing.T) {
		manager := createTestManager(t, SideBuyer)
		client := createTestClient(t, SideSupplier)

		err := manager.AssignClient(client)
		require.Error(t, err)
		assert.False(t, manager.ManagesClient(client.ID))
	})

	t.Run("rejects duplicate assignment", func(t *testing.T) {
		manager := createTestManager(t, SideSupplier)
		client := createTestClient(t, SideSupplier)

		require.NoError(t, manager.AssignClient(client))
		require.Error(t, manager.AssignClient(client))
	})

	t.Run("rejects assignment to a non-manager", func(t *testing.T) {
		notManager := createTestClient(t, SideBuyer)
		client := createTestClient(t, SideBuyer)
		require.Error(t, notManager.AssignClient(client))
	})

	t.Run("rejects assigning a manager as client", func(t *testing.T) {
		manager := createTestManager(t, SideBuyer)
		other := createTestManager(t, SideBuyer)
		require.Error(t, manager.AssignClient(other))
	})
}

func TestUser_UnassignClient(t *testing.T) {
	manager := createTestManager(t, SideBuyer)
	client := createTestClient(t, SideBuyer)
	require.NoError(t, manager.AssignClient(client))

	require.NoError(t, manager.UnassignClient(client.ID))
	assert.False(t, manager.ManagesClient(client.ID))

	require.Error(t, manager.UnassignClient(client.ID))
}

// ============================================
// Actor Tests
// ============================================

func TestActor(t *testing.T) {
	clientA := uuid.New()
	clientB := uuid.New()

	t.Run("account manager capabilities", func(t *testing.T) {
		actor := NewActor(uuid.New(), SideBuyer, "", []uuid.UUID{clientA})

		assert.True(t, actor.IsAccountManager())
		assert.False(t, actor.IsClient())
		assert.True(t, actor.ManagesClient(clientA))
		assert.False(t, actor.ManagesClient(clientB))
		assert.False(t, actor.CanSignAs(SideBuyer))
		assert.False(t, actor.CanSignAs(SideSupplier))
	})

	t.Run("client capabilities", func(t *testing.T) {
		id := uuid.New()
		actor := NewActor(id, "", SideSupplier, nil)

		assert.False(t, actor.IsAccountManager())
		assert.True(t, actor.IsClient())
		assert.True(t, actor.CanSignAs(SideSupplier))
		assert.False(t, actor.CanSignAs(SideBuyer))
		assert.True(t, actor.IsParty(uuid.New(), id))
		assert.False(t, actor.IsParty(uuid.New()))
	})
}

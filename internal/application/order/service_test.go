package order

import (
	"context"
	"testing"

	"github.com/google/uuid"
	appnotification "github.com/recyclemart/backend/internal/application/notification"
	"github.com/recyclemart/backend/internal/domain/identity"
	domainnotification "github.com/recyclemart/backend/internal/domain/notification"
	"github.com/recyclemart/backend/internal/domain/order"
	"github.com/recyclemart/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockOrderRepo struct {
	mock.Mock
}

func (m *mockOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *mockOrderRepo) FindAll(ctx context.Context, filter shared.Filter) ([]order.Order, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *mockOrderRepo) FindForUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]order.Order, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *mockOrderRepo) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockOrderRepo) CreateWithNotifications(ctx context.Context, o *order.Order, notifications []*domainnotification.Notification) error {
	args := m.Called(ctx, o, notifications)
	return args.Error(0)
}

func (m *mockOrderRepo) SaveWithNotifications(ctx context.Context, o *order.Order, notifications []*domainnotification.Notification) error {
	args := m.Called(ctx, o, notifications)
	return args.Error(0)
}

func (m *mockOrderRepo) Save(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *mockOrderRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *mockUserRepo) FindManagerForClient(ctx context.Context, role identity.Side, clientID uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, role, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *mockUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserRepo) Save(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

type fixture struct {
	orders  *mockOrderRepo
	users   *mockUserRepo
	service *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		orders: new(mockOrderRepo),
		users:  new(mockUserRepo),
	}
	f.service = NewService(f.orders, f.users, appnotification.NewFanout(), zap.NewNop())
	return f
}

func validInput(buyerID, supplierID uuid.UUID) CreateOrderInput {
	return CreateOrderInput{
		Product:       "HDPE regrind",
		Capacity:      decimal.NewFromInt(80),
		PricePerTonne: decimal.NewFromInt(620),
		PaymentTerms:  "Net 45",
		ShippingTerms: "DAP Antwerp",
		BuyerID:       buyerID,
		SupplierID:    supplierID,
	}
}

func testManager(t *testing.T, role identity.Side, clients ...uuid.UUID) *identity.User {
	t.Helper()
	m, err := identity.NewAccountManager("manager@recyclemart.test", "Mia Kim", "", "password123", role)
	require.NoError(t, err)
	m.ManagedClientIDs = clients
	return m
}

func TestServiceCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects clients", func(t *testing.T) {
		f := newFixture(t)
		actor := identity.NewActor(uuid.New(), "", identity.SideBuyer, nil)

		_, err := f.service.Create(ctx, actor, validInput(uuid.New(), uuid.New()))
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("rejects a manager creating for a client outside their book", func(t *testing.T) {
		f := newFixture(t)
		actor := identity.NewActor(uuid.New(), identity.SideBuyer, "", nil)

		_, err := f.service.Create(ctx, actor, validInput(uuid.New(), uuid.New()))
		require.Error(t, err)
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "NOT_MANAGED_CLIENT", de.Code)
	})

	t.Run("fails entirely when no counterpart manager exists", func(t *testing.T) {
		f := newFixture(t)
		buyerID, supplierID := uuid.New(), uuid.New()
		actor := identity.NewActor(uuid.New(), identity.SideBuyer, "", []uuid.UUID{buyerID})

		f.users.On("FindManagerForClient", ctx, identity.SideSupplier, supplierID).Return(nil, shared.ErrNotFound)

		_, err := f.service.Create(ctx, actor, validInput(buyerID, supplierID))
		assert.ErrorIs(t, err, order.ErrNoCounterpartManager)
		f.orders.AssertNotCalled(t, "CreateWithNotifications", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("buyer-side manager creates with resolved supplier manager", func(t *testing.T) {
		f := newFixture(t)
		buyerID, supplierID := uuid.New(), uuid.New()
		actor := identity.NewActor(uuid.New(), identity.SideBuyer, "", []uuid.UUID{buyerID})
		counterpart := testManager(t, identity.SideSupplier, supplierID)

		f.users.On("FindManagerForClient", ctx, identity.SideSupplier, supplierID).Return(counterpart, nil)

		var created *order.Order
		var notified []*domainnotification.Notification
		f.orders.On("CreateWithNotifications", ctx, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				created = args.Get(1).(*order.Order)
				notified = args.Get(2).([]*domainnotification.Notification)
			}).Return(nil)

		resp, err := f.service.Create(ctx, actor, validInput(buyerID, supplierID))
		require.NoError(t, err)
		assert.Equal(t, order.StatusNotMatched.String(), resp.Status)

		require.NotNil(t, created)
		assert.Equal(t, actor.ID, created.BuyerManagerID)
		assert.Equal(t, counterpart.ID, created.SupplierManagerID)

		// Everyone but the creator hears about it
		recipients := make([]uuid.UUID, len(notified))
		for i, n := range notified {
			recipients[i] = n.UserID
		}
		assert.ElementsMatch(t, []uuid.UUID{counterpart.ID, buyerID, supplierID}, recipients)
	})

	t.Run("supplier-side manager fills the opposite slots", func(t *testing.T) {
		f := newFixture(t)
		buyerID, supplierID := uuid.New(), uuid.New()
		actor := identity.NewActor(uuid.New(), identity.SideSupplier, "", []uuid.UUID{supplierID})
		counterpart := testManager(t, identity.SideBuyer, buyerID)

		f.users.On("FindManagerForClient", ctx, identity.SideBuyer, buyerID).Return(counterpart, nil)

		var created *order.Order
		f.orders.On("CreateWithNotifications", ctx, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				created = args.Get(1).(*order.Order)
			}).Return(nil)

		_, err := f.service.Create(ctx, actor, validInput(buyerID, supplierID))
		require.NoError(t, err)
		assert.Equal(t, counterpart.ID, created.BuyerManagerID)
		assert.Equal(t, actor.ID, created.SupplierManagerID)
	})

	t.Run("drafts are created without notifications", func(t *testing.T) {
		f := newFixture(t)
		buyerID, supplierID := uuid.New(), uuid.New()
		actor := identity.NewActor(uuid.New(), identity.SideBuyer, "", []uuid.UUID{buyerID})
		counterpart := testManager(t, identity.SideSupplier, supplierID)

		f.users.On("FindManagerForClient", ctx, identity.SideSupplier, supplierID).Return(counterpart, nil)
		f.orders.On("CreateWithNotifications", ctx, mock.Anything, ([]*domainnotification.Notification)(nil)).Return(nil)

		input := validInput(buyerID, supplierID)
		input.AsDraft = true

		resp, err := f.service.Create(ctx, actor, input)
		require.NoError(t, err)
		assert.Equal(t, string(order.SavedStatusDraft), resp.SavedStatus)
		f.orders.AssertExpectations(t)
	})

	t.Run("invalid terms name every missing field", func(t *testing.T) {
		f := newFixture(t)
		buyerID := uuid.New()
		actor := identity.NewActor(uuid.New(), identity.SideBuyer, "", []uuid.UUID{buyerID})

		input := CreateOrderInput{BuyerID: buyerID, SupplierID: uuid.New()}
		_, err := f.service.Create(ctx, actor, input)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "product")
		assert.Contains(t, err.Error(), "paymentTerms")
	})
}

func managedOrder(t *testing.T) (*order.Order, identity.Actor, identity.Actor) {
	t.Helper()
	buyerID, supplierID := uuid.New(), uuid.New()
	buyerManager := identity.NewActor(uuid.New(), identity.SideBuyer, "", []uuid.UUID{buyerID})
	supplierManager := identity.NewActor(uuid.New(), identity.SideSupplier, "", []uuid.UUID{supplierID})
	o, err := order.New(order.CreateParams{
		CreatedByID: buyerManager.ID,
		Terms: order.Terms{
			Product:       "HDPE regrind",
			Capacity:      decimal.NewFromInt(80),
			PricePerTonne: decimal.NewFromInt(620),
			PaymentTerms:  "Net 45",
			ShippingTerms: "DAP Antwerp",
		},
		BuyerID:           buyerID,
		SupplierID:        supplierID,
		BuyerManagerID:    buyerManager.ID,
		SupplierManagerID: supplierManager.ID,
	})
	require.NoError(t, err)
	o.ClearDomainEvents()
	return o, buyerManager, supplierManager
}

func TestServiceApprove(t *testing.T) {
	ctx := context.Background()

	t.Run("counterpart manager approves", func(t *testing.T) {
		f := newFixture(t)
		o, _, supplierManager := managedOrder(t)
		f.orders.On("FindByID", ctx, o.ID).Return(o, nil)
		f.orders.On("SaveWithNotifications", ctx, o, mock.Anything).Return(nil)

		resp, err := f.service.Approve(ctx, supplierManager, o.ID)
		require.NoError(t, err)
		assert.Equal(t, order.StatusMatched.String(), resp.Status)
	})

	t.Run("creator cannot approve their own order", func(t *testing.T) {
		f := newFixture(t)
		o, buyerManager, _ := managedOrder(t)
		f.orders.On("FindByID", ctx, o.ID).Return(o, nil)

		_, err := f.service.Approve(ctx, buyerManager, o.ID)
		require.Error(t, err)
		assert.Equal(t, order.StatusNotMatched, o.Status)
		f.orders.AssertNotCalled(t, "SaveWithNotifications", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unrelated manager is forbidden", func(t *testing.T) {
		f := newFixture(t)
		o, _, _ := managedOrder(t)
		f.orders.On("FindByID", ctx, o.ID).Return(o, nil)

		stranger := identity.NewActor(uuid.New(), identity.SideSupplier, "", nil)
		_, err := f.service.Approve(ctx, stranger, o.ID)
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})
}

func TestServiceUpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("rejected transition leaves the order untouched", func(t *testing.T) {
		f := newFixture(t)
		o, buyerManager, _ := managedOrder(t)
		f.orders.On("FindByID", ctx, o.ID).Return(o, nil)

		_, err := f.service.UpdateStatus(ctx, buyerManager, o.ID, order.StatusProcessing)
		require.Error(t, err)
		assert.Equal(t, order.StatusNotMatched, o.Status)
		f.orders.AssertNotCalled(t, "SaveWithNotifications", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("completion notifies everyone but the actor", func(t *testing.T) {
		f := newFixture(t)
		o, buyerManager, _ := managedOrder(t)
		o.Status = order.StatusProcessing
		f.orders.On("FindByID", ctx, o.ID).Return(o, nil)

		var notified []*domainnotification.Notification
		f.orders.On("SaveWithNotifications", ctx, o, mock.Anything).
			Run(func(args mock.Arguments) {
				notified = args.Get(2).([]*domainnotification.Notification)
			}).Return(nil)

		result, err := f.service.UpdateStatus(ctx, buyerManager, o.ID, order.StatusCompleted)
		require.NoError(t, err)
		assert.Equal(t, order.StatusCompleted.String(), result.Order.Status)
		assert.Len(t, result.NotifiedIDs, 3)
		for _, n := range notified {
			assert.NotEqual(t, buyerManager.ID, n.UserID)
			assert.Equal(t, domainnotification.KindOrderCompleted, n.Kind)
		}
	})

	t.Run("no backward transitions", func(t *testing.T) {
		f := newFixture(t)
		o, buyerManager, _ := managedOrder(t)
		o.Status = order.StatusProcessing
		f.orders.On("FindByID", ctx, o.ID).Return(o, nil)

		_, err := f.service.UpdateStatus(ctx, buyerManager, o.ID, order.StatusMatched)
		require.Error(t, err)
		assert.Equal(t, order.StatusProcessing, o.Status)
	})
}

func TestServiceDrafts(t *testing.T) {
	ctx := context.Background()

	draftOrder := func(t *testing.T) (*order.Order, identity.Actor, identity.Actor) {
		o, buyerManager, supplierManager := managedOrder(t)
		o.SavedStatus = order.SavedStatusDraft
		return o, buyerManager, supplierManager
	}

	t.Run("confirming releases the held-back creation fan-out", func(t *testing.T) {
		f := newFixture(t)
		o, buyerManager, supplierManager := draftOrder(t)
		f.orders.On("FindByID", ctx, o.ID).Return(o, nil)

		var notified []*domainnotification.Notification
		f.orders.On("SaveWithNotifications", ctx, o, mock.Anything).
			Run(func(args mock.Arguments) {
				notified = args.Get(2).([]*domainnotification.Notification)
			}).Return(nil)

		resp, err := f.service.ConfirmDraft(ctx, buyerManager, o.ID)
		require.NoError(t, err)
		assert.Equal(t, string(order.SavedStatusConfirmed), resp.SavedStatus)

		recipients := make([]uuid.UUID, len(notified))
		for i, n := range notified {
			recipients[i] = n.UserID
		}
		assert.ElementsMatch(t, []uuid.UUID{supplierManager.ID, o.BuyerID, o.SupplierID}, recipients)
	})

	t.Run("only the creator confirms", func(t *testing.T) {
		f := newFixture(t)
		o, _, supplierManager := draftOrder(t)
		f.orders.On("FindByID", ctx, o.ID).Return(o, nil)

		_, err := f.service.ConfirmDraft(ctx, supplierManager, o.ID)
		require.Error(t, err)
	})

	t.Run("only the creator deletes a draft", func(t *testing.T) {
		f := newFixture(t)
		o, buyerManager, supplierManager := draftOrder(t)
		f.orders.On("FindByID", ctx, o.ID).Return(o, nil)

		err := f.service.DeleteDraft(ctx, supplierManager, o.ID)
		assert.ErrorIs(t, err, shared.ErrForbidden)

		f.orders.On("Delete", ctx, o.ID).Return(nil)
		require.NoError(t, f.service.DeleteDraft(ctx, buyerManager, o.ID))
	})

	t.Run("confirmed orders cannot be deleted", func(t *testing.T) {
		f := newFixture(t)
		o, buyerManager, _ := managedOrder(t)
		f.orders.On("FindByID", ctx, o.ID).Return(o, nil)

		err := f.service.DeleteDraft(ctx, buyerManager, o.ID)
		require.Error(t, err)
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "NOT_DRAFT", de.Code)
	})

	t.Run("drafts are invisible to everyone but the creator", func(t *testing.T) {
		f := newFixture(t)
		o, buyerManager, supplierManager := draftOrder(t)
		f.orders.On("FindByID", ctx, o.ID).Return(o, nil)

		_, err := f.service.Get(ctx, supplierManager, o.ID)
		assert.ErrorIs(t, err, shared.ErrForbidden)

		resp, err := f.service.Get(ctx, buyerManager, o.ID)
		require.NoError(t, err)
		assert.Equal(t, o.ID, resp.ID)
	})
}

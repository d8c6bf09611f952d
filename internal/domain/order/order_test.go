package order

import (
	"testing"

	"github.com/google/uuid"
	"github.com/recyclemart/backend/internal/domain/identity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helpers
func validTerms() Terms {
	return Terms{
		Product:       "PET flakes, clear",
		Capacity:      decimal.NewFromInt(120),
		PricePerTonne: decimal.NewFromFloat(415.50),
		PaymentTerms:  "30 days net",
		ShippingTerms: "FOB Rotterdam",
	}
}

func validParams() CreateParams {
	creator := uuid.New()
	return CreateParams{
		CreatedByID:       creator,
		Terms:             validTerms(),
		BuyerID:           uuid.New(),
		SupplierID:        uuid.New(),
		BuyerManagerID:    creator,
		SupplierManagerID: uuid.New(),
	}
}

func createTestOrder(t *testing.T) *Order {
	o, err := New(validParams())
	require.NoError(t, err)
	o.ClearDomainEvents()
	return o
}

// ============================================
// Status Tests
// ============================================

func TestStatus_IsValid(t *testing.T) {
	tests := []struct {
		status  Status
		isValid bool
	}{
		{StatusNotMatched, true},
		{StatusMatched, true},
		{StatusDocumentPhase, true},
		{StatusProcessing, true},
		{StatusCompleted, true},
		{Status("cancelled"), false},
		{Status(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.isValid, tt.status.IsValid())
		})
	}
}

func TestStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from     Status
		to       Status
		canTrans bool
	}{
		// From not_matched
		{StatusNotMatched, StatusMatched, true},
		{StatusNotMatched, StatusDocumentPhase, false},
		{StatusNotMatched, StatusProcessing, false},
		{StatusNotMatched, StatusCompleted, false},
		{StatusNotMatched, StatusNotMatched, false},
		// From matched
		{StatusMatched, StatusDocumentPhase, true},
		{StatusMatched, StatusNotMatched, false},
		{StatusMatched, StatusProcessing, false},
		{StatusMatched, StatusCompleted, false},
		// From document_phase
		{StatusDocumentPhase, StatusProcessing, true},
		{StatusDocumentPhase, StatusMatched, false},
		{StatusDocumentPhase, StatusCompleted, false},
		// From processing
		{StatusProcessing, StatusCompleted, true},
		{StatusProcessing, StatusDocumentPhase, false},
		{StatusProcessing, StatusNotMatched, false},
		// From completed (terminal)
		{StatusCompleted, StatusNotMatched, false},
		{StatusCompleted, StatusMatched, false},
		{StatusCompleted, StatusDocumentPhase, false},
		{StatusCompleted, StatusProcessing, false},
		{StatusCompleted, StatusCompleted, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.canTrans, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestStatus_IsTerminal(t *testing.T) {
	assert.True(t, StatusCompleted.IsTerminal())
	assert.False(t, StatusProcessing.IsTerminal())
	assert.False(t, StatusNotMatched.IsTerminal())
}

// ============================================
// Terms Tests
// ============================================

func TestTerms_Validate(t *testing.T) {
	t.Run("accepts complete terms", func(t *testing.T) {
		assert.NoError(t, validTerms().Validate())
	})

	t.Run("names every missing field", func(t *testing.T) {
		err := Terms{}.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "product")
		assert.Contains(t, err.Error(), "capacity")
		assert.Contains(t, err.Error(), "pricePerTonne")
		assert.Contains(t, err.Error(), "paymentTerms")
		assert.Contains(t, err.Error(), "shippingTerms")
	})

	t.Run("names only the missing fields", func(t *testing.T) {
		terms := validTerms()
		terms.PaymentTerms = ""
		err := terms.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "paymentTerms")
		assert.NotContains(t, err.Error(), "product")
	})

	t.Run("rejects negative capacity", func(t *testing.T) {
		terms := validTerms()
		terms.Capacity = decimal.NewFromInt(-5)
		require.Error(t, terms.Validate())
	})

	t.Run("rejects negative price", func(t *testing.T) {
		terms := validTerms()
		terms.PricePerTonne = decimal.NewFromInt(-1)
		require.Error(t, terms.Validate())
	})
}

// ============================================
// New Tests
// ============================================

func TestNew(t *testing.T) {
	t.Run("creates order in initial state", func(t *testing.T) {
		p := validParams()
		o, err := New(p)
		require.NoError(t, err)
		require.NotNil(t, o)

		assert.Equal(t, StatusNotMatched, o.Status)
		assert.Equal(t, SavedStatusConfirmed, o.SavedStatus)
		assert.Equal(t, p.BuyerID, o.BuyerID)
		assert.Equal(t, p.SupplierID, o.SupplierID)
		assert.Equal(t, p.BuyerManagerID, o.BuyerManagerID)
		assert.Equal(t, p.SupplierManagerID, o.SupplierManagerID)
		assert.Equal(t, p.CreatedByID, o.CreatedByID)
		assert.Nil(t, o.MatchedByID)
		assert.Nil(t, o.ApprovedAt)
		assert.NotEmpty(t, o.ID)
		assert.Equal(t, 1, o.GetVersion())
	})

	t.Run("publishes OrderCreated event", func(t *testing.T) {
		o, err := New(validParams())
		require.NoError(t, err)

		events := o.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeOrderCreated, events[0].EventType())
	})

	t.Run("defaults saved status to confirmed", func(t *testing.T) {
		p := validParams()
		p.SavedStatus = ""
		o, err := New(p)
		require.NoError(t, err)
		assert.Equal(t, SavedStatusConfirmed, o.SavedStatus)
		assert.False(t, o.IsDraft())
	})

	t.Run("creates draft when requested", func(t *testing.T) {
		p := validParams()
		p.SavedStatus = SavedStatusDraft
		o, err := New(p)
		require.NoError(t, err)
		assert.True(t, o.IsDraft())
	})

	t.Run("fails with incomplete terms", func(t *testing.T) {
		p := validParams()
		p.Terms.Product = ""
		_, err := New(p)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "product")
	})

	t.Run("fails without parties", func(t *testing.T) {
		p := validParams()
		p.BuyerID = uuid.Nil
		_, err := New(p)
		require.Error(t, err)
	})

	t.Run("fails with unresolved manager", func(t *testing.T) {
		p := validParams()
		p.SupplierManagerID = uuid.Nil
		_, err := New(p)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "account managers")
	})
}

// ============================================
// Draft Tests
// ============================================

func TestOrder_UpdateDraft(t *testing.T) {
	t.Run("creator edits a draft", func(t *testing.T) {
		p := validParams()
		p.SavedStatus = SavedStatusDraft
		o, err := New(p)
		require.NoError(t, err)

		terms := validTerms()
		terms.Capacity = decimal.NewFromInt(250)
		require.NoError(t, o.UpdateDraft(p.CreatedByID, terms))
		assert.True(t, o.Terms.Capacity.Equal(decimal.NewFromInt(250)))
	})

	t.Run("rejects non-creator", func(t *testing.T) {
		p := validParams()
		p.SavedStatus = SavedStatusDraft
		o, err := New(p)
		require.NoError(t, err)

		require.Error(t, o.UpdateDraft(uuid.New(), validTerms()))
	})

	t.Run("rejects confirmed orders", func(t *testing.T) {
		o := createTestOrder(t)
		require.Error(t, o.UpdateDraft(o.CreatedByID, validTerms()))
	})

	t.Run("rejects invalid replacement terms", func(t *testing.T) {
		p := validParams()
		p.SavedStatus = SavedStatusDraft
		o, err := New(p)
		require.NoError(t, err)

		require.Error(t, o.UpdateDraft(p.CreatedByID, Terms{}))
	})
}

func TestOrder_ConfirmDraft(t *testing.T) {
	p := validParams()
	p.SavedStatus = SavedStatusDraft
	o, err := New(p)
	require.NoError(t, err)

	t.Run("rejects non-creator", func(t *testing.T) {
		require.Error(t, o.ConfirmDraft(uuid.New()))
		assert.True(t, o.IsDraft())
	})

	t.Run("creator confirms", func(t *testing.T) {
		require.NoError(t, o.ConfirmDraft(p.CreatedByID))
		assert.False(t, o.IsDraft())
	})

	t.Run("rejects repeat confirmation", func(t *testing.T) {
		require.Error(t, o.ConfirmDraft(p.CreatedByID))
	})
}

// ============================================
// Approve Tests
// ============================================

func TestOrder_Approve(t *testing.T) {
	t.Run("counterpart manager approves", func(t *testing.T) {
		o := createTestOrder(t)
		approver := o.SupplierManagerID

		require.NoError(t, o.Approve(approver))
		assert.Equal(t, StatusMatched, o.Status)
		require.NotNil(t, o.MatchedByID)
		assert.Equal(t, approver, *o.MatchedByID)
		assert.NotNil(t, o.ApprovedAt)

		events := o.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeOrderApproved, events[0].EventType())
	})

	t.Run("rejects self-approval", func(t *testing.T) {
		o := createTestOrder(t)
		err := o.Approve(o.CreatedByID)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "creator")
		assert.Equal(t, StatusNotMatched, o.Status)
		assert.Nil(t, o.MatchedByID)
	})

	t.Run("rejects double approval", func(t *testing.T) {
		o := createTestOrder(t)
		require.NoError(t, o.Approve(o.SupplierManagerID))
		require.Error(t, o.Approve(o.BuyerManagerID))
	})
}

// ============================================
// Transition Tests
// ============================================

func TestOrder_TransitionTo(t *testing.T) {
	t.Run("walks the full workflow", func(t *testing.T) {
		o := createTestOrder(t)
		require.NoError(t, o.Approve(o.SupplierManagerID))

		require.NoError(t, o.MarkDocumentsComplete())
		assert.Equal(t, StatusDocumentPhase, o.Status)
		assert.NotNil(t, o.DocumentGeneratedAt)

		require.NoError(t, o.MarkProcessing())
		assert.Equal(t, StatusProcessing, o.Status)
		assert.NotNil(t, o.ProcessingAt)

		require.NoError(t, o.Complete())
		assert.Equal(t, StatusCompleted, o.Status)
		assert.NotNil(t, o.CompletedAt)
	})

	t.Run("rejects skipping a step and leaves order unchanged", func(t *testing.T) {
		o := createTestOrder(t)
		err := o.TransitionTo(StatusProcessing)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not_matched")
		assert.Contains(t, err.Error(), "processing")
		assert.Equal(t, StatusNotMatched, o.Status)
		assert.Nil(t, o.ProcessingAt)
		assert.Empty(t, o.GetDomainEvents())
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		o := createTestOrder(t)
		require.Error(t, o.TransitionTo(Status("archived")))
	})

	t.Run("rejects moves out of completed", func(t *testing.T) {
		o := createTestOrder(t)
		require.NoError(t, o.Approve(o.SupplierManagerID))
		require.NoError(t, o.MarkDocumentsComplete())
		require.NoError(t, o.MarkProcessing())
		require.NoError(t, o.Complete())

		require.Error(t, o.TransitionTo(StatusProcessing))
	})

	t.Run("publishes StatusChanged event with both statuses", func(t *testing.T) {
		o := createTestOrder(t)
		require.NoError(t, o.Approve(o.SupplierManagerID))
		o.ClearDomainEvents()

		require.NoError(t, o.MarkDocumentsComplete())
		events := o.GetDomainEvents()
		require.Len(t, events, 1)
		event, ok := events[0].(*OrderStatusChangedEvent)
		require.True(t, ok)
		assert.Equal(t, StatusMatched, event.PreviousStatus)
		assert.Equal(t, StatusDocumentPhase, event.NewStatus)
	})
}

// ============================================
// Access helpers
// ============================================

func TestOrder_Parties(t *testing.T) {
	o := createTestOrder(t)

	assert.Equal(t, o.BuyerID, o.PartyFor(identity.SideBuyer))
	assert.Equal(t, o.SupplierID, o.PartyFor(identity.SideSupplier))
	assert.Equal(t, o.BuyerManagerID, o.ManagerFor(identity.SideBuyer))
	assert.Equal(t, o.SupplierManagerID, o.ManagerFor(identity.SideSupplier))
	assert.Equal(t, o.SupplierManagerID, o.CounterpartManagerID())

	assert.True(t, o.IsParty(o.BuyerID))
	assert.True(t, o.IsParty(o.SupplierID))
	assert.False(t, o.IsParty(uuid.New()))

	side, ok := o.SideOfParty(o.SupplierID)
	require.True(t, ok)
	assert.Equal(t, identity.SideSupplier, side)
	_, ok = o.SideOfParty(uuid.New())
	assert.False(t, ok)
}

func TestOrder_CanBeManagedBy(t *testing.T) {
	o := createTestOrder(t)

	t.Run("manager slot holder", func(t *testing.T) {
		actor := identity.NewActor(o.BuyerManagerID, identity.SideBuyer, "", nil)
		assert.True(t, o.CanBeManagedBy(actor))
	})

	t.Run("manager of a party", func(t *testing.T) {
		actor := identity.NewActor(uuid.New(), identity.SideSupplier, "", []uuid.UUID{o.SupplierID})
		assert.True(t, o.CanBeManagedBy(actor))
	})

	t.Run("unrelated manager", func(t *testing.T) {
		actor := identity.NewActor(uuid.New(), identity.SideBuyer, "", []uuid.UUID{uuid.New()})
		assert.False(t, o.CanBeManagedBy(actor))
	})

	t.Run("client party is not a manager", func(t *testing.T) {
		actor := identity.NewActor(o.BuyerID, "", identity.SideBuyer, nil)
		assert.False(t, o.CanBeManagedBy(actor))
	})
}

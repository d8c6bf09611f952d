package persistence

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/recyclemart/backend/internal/domain/document"
	"github.com/recyclemart/backend/internal/domain/identity"
	"github.com/recyclemart/backend/internal/domain/order"
	"github.com/recyclemart/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDocument(t *testing.T, orderID uuid.UUID, docType document.Type, invoiceNumber string) *document.Document {
	t.Helper()
	d, err := document.New(orderID, docType, "s3://docs/"+invoiceNumber+".pdf", invoiceNumber, uuid.New())
	require.NoError(t, err)
	d.ClearDomainEvents()
	return d
}

func TestGormDocumentRepository_CreateAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormDocumentRepository(db)
	ctx := context.Background()
	orderID := uuid.New()

	d := newTestDocument(t, orderID, document.TypeSalesOrder, "SO-0826-GRE-001")
	require.NoError(t, repo.CreateWithOrderAndNotifications(ctx, d, nil, nil, nil))

	t.Run("finds by order and type", func(t *testing.T) {
		found, err := repo.FindByOrderAndType(ctx, orderID, document.TypeSalesOrder)
		require.NoError(t, err)
		assert.Equal(t, d.ID, found.ID)
		assert.Equal(t, "SO-0826-GRE-001", found.InvoiceNumber)
		assert.Equal(t, document.StatusGenerated, found.Status)
	})

	t.Run("missing pair half is not found", func(t *testing.T) {
		_, err := repo.FindByOrderAndType(ctx, orderID, document.TypePurchaseOrder)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("lists the order's documents", func(t *testing.T) {
		po := newTestDocument(t, orderID, document.TypePurchaseOrder, "PO-0826-ECO-001")
		require.NoError(t, repo.CreateWithOrderAndNotifications(ctx, po, nil, nil, nil))

		docs, err := repo.FindByOrder(ctx, orderID)
		require.NoError(t, err)
		assert.Len(t, docs, 2)
		assert.True(t, document.PairComplete(docs))
	})
}

func TestGormDocumentRepository_UniquePair(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormDocumentRepository(db)
	ctx := context.Background()
	orderID := uuid.New()

	first := newTestDocument(t, orderID, document.TypeSalesOrder, "SO-0826-GRE-001")
	require.NoError(t, repo.CreateWithOrderAndNotifications(ctx, first, nil, nil, nil))

	t.Run("second document of the same type is rejected", func(t *testing.T) {
		dup := newTestDocument(t, orderID, document.TypeSalesOrder, "SO-0826-GRE-002")
		err := repo.CreateWithOrderAndNotifications(ctx, dup, nil, nil, nil)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})

	t.Run("duplicate invoice number is rejected", func(t *testing.T) {
		dup := newTestDocument(t, uuid.New(), document.TypeSalesOrder, "SO-0826-GRE-001")
		err := repo.CreateWithOrderAndNotifications(ctx, dup, nil, nil, nil)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})
}

func TestGormDocumentRepository_NextInvoiceSequence(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormDocumentRepository(db)
	ctx := context.Background()

	scope, err := document.NewInvoiceScope(document.TypeSalesOrder, "GreenCycle BV",
		time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	t.Run("empty scope starts at one", func(t *testing.T) {
		seq, err := repo.NextInvoiceSequence(ctx, scope)
		require.NoError(t, err)
		assert.Equal(t, 1, seq)
	})

	t.Run("continues after the highest existing number", func(t *testing.T) {
		for _, seq := range []int{1, 2, 5} {
			d := newTestDocument(t, uuid.New(), document.TypeSalesOrder, scope.Format(seq))
			require.NoError(t, repo.CreateWithOrderAndNotifications(ctx, d, nil, nil, nil))
		}

		seq, err := repo.NextInvoiceSequence(ctx, scope)
		require.NoError(t, err)
		assert.Equal(t, 6, seq)
	})

	t.Run("other scopes do not interfere", func(t *testing.T) {
		other, err := document.NewInvoiceScope(document.TypePurchaseOrder, "EcoFlake Ltd",
			time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)

		seq, err := repo.NextInvoiceSequence(ctx, other)
		require.NoError(t, err)
		assert.Equal(t, 1, seq)
	})
}

func TestGormDocumentRepository_ParallelInvoiceNumbering(t *testing.T) {
	db := setupTestDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// The shared in-memory database lives on a single connection
	sqlDB.SetMaxOpenConns(1)

	repo := NewGormDocumentRepository(db)
	ctx := context.Background()

	scope, err := document.NewInvoiceScope(document.TypeSalesOrder, "GreenCycle BV",
		time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	// Every worker reads the sequence before any of them inserts, so they all
	// race for the same invoice number. The unique index must let exactly one
	// through and reject the rest as a concurrency conflict.
	const workers = 4
	var (
		ready sync.WaitGroup
		done  sync.WaitGroup
		start = make(chan struct{})
		mu    sync.Mutex
	)
	results := make([]error, 0, workers)

	ready.Add(workers)
	done.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer done.Done()

			seq, err := repo.NextInvoiceSequence(ctx, scope)
			if err != nil {
				ready.Done()
				mu.Lock()
				results = append(results, err)
				mu.Unlock()
				return
			}
			invoiceNumber := scope.Format(seq)

			ready.Done()
			<-start

			d, err := document.New(uuid.New(), document.TypeSalesOrder,
				"s3://docs/"+invoiceNumber+".pdf", invoiceNumber, uuid.New())
			if err == nil {
				d.ClearDomainEvents()
				err = repo.CreateWithOrderAndNotifications(ctx, d, nil, nil, nil)
			}

			mu.Lock()
			results = append(results, err)
			mu.Unlock()
		}()
	}

	ready.Wait()
	close(start)
	done.Wait()

	require.Len(t, results, workers)
	var succeeded, conflicted int
	for _, err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, shared.ErrConcurrencyConflict):
			conflicted++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, workers-1, conflicted)

	var count int64
	require.NoError(t, db.Model(&document.Document{}).
		Where("invoice_number = ?", scope.Format(1)).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGormDocumentRepository_CountGenerations(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormDocumentRepository(db)
	ctx := context.Background()

	orderID := uuid.New()
	requesterID := uuid.New()

	for i := 0; i < 3; i++ {
		rec := document.NewGenerationRecord(orderID, requesterID)
		require.NoError(t, db.Create(rec).Error)
	}
	old := document.NewGenerationRecord(orderID, requesterID)
	old.CreatedAt = time.Now().Add(-10 * time.Minute)
	require.NoError(t, db.Create(old).Error)
	other := document.NewGenerationRecord(orderID, uuid.New())
	require.NoError(t, db.Create(other).Error)

	count, err := repo.CountGenerations(ctx, orderID, requesterID, time.Now().Add(-5*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestGormDocumentRepository_SaveAllAtomic(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormDocumentRepository(db)
	orders := NewGormOrderRepository(db)
	ctx := context.Background()

	o := newTestOrder(t, order.SavedStatusConfirmed)
	o.Status = order.StatusDocumentPhase
	require.NoError(t, orders.CreateWithNotifications(ctx, o, nil))

	so := newTestDocument(t, o.ID, document.TypeSalesOrder, "SO-0826-GRE-010")
	po := newTestDocument(t, o.ID, document.TypePurchaseOrder, "PO-0826-ECO-010")
	require.NoError(t, repo.CreateWithOrderAndNotifications(ctx, so, nil, nil, nil))
	require.NoError(t, repo.CreateWithOrderAndNotifications(ctx, po, nil, nil, nil))

	_, err := so.Sign(identity.SideBuyer, "s3://signed/b.pdf")
	require.NoError(t, err)
	_, err = po.Sign(identity.SideBuyer, "s3://signed/b.pdf")
	require.NoError(t, err)

	require.NoError(t, repo.SaveAll(ctx, []*document.Document{so, po}, nil, nil))

	t.Run("both halves carry the signature", func(t *testing.T) {
		docs, err := repo.FindByOrder(ctx, o.ID)
		require.NoError(t, err)
		for _, d := range docs {
			assert.True(t, d.SignedBy(identity.SideBuyer))
			assert.Equal(t, document.StatusPartiallySigned, d.Status)
			assert.Equal(t, 2, d.Version)
		}
	})

	t.Run("order update rides the same transaction", func(t *testing.T) {
		_, err := so.Sign(identity.SideSupplier, "s3://signed/s.pdf")
		require.NoError(t, err)
		_, err = po.Sign(identity.SideSupplier, "s3://signed/s.pdf")
		require.NoError(t, err)
		require.NoError(t, o.MarkProcessing())

		require.NoError(t, repo.SaveAll(ctx, []*document.Document{so, po}, o, nil))

		found, err := orders.FindByID(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, order.StatusProcessing, found.Status)
		assert.NotNil(t, found.ProcessingAt)

		docs, err := repo.FindByOrder(ctx, o.ID)
		require.NoError(t, err)
		for _, d := range docs {
			assert.Equal(t, document.StatusFullySigned, d.Status)
		}
	})
}

func TestGormDocumentRepository_FindForClient(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormDocumentRepository(db)
	orders := NewGormOrderRepository(db)
	ctx := context.Background()

	o := newTestOrder(t, order.SavedStatusConfirmed)
	require.NoError(t, orders.CreateWithNotifications(ctx, o, nil))

	so := newTestDocument(t, o.ID, document.TypeSalesOrder, "SO-0826-GRE-020")
	require.NoError(t, repo.CreateWithOrderAndNotifications(ctx, so, nil, nil, nil))

	t.Run("party sees the order's documents", func(t *testing.T) {
		docs, err := repo.FindForClient(ctx, o.BuyerID, false, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Len(t, docs, 1)
	})

	t.Run("outsider sees nothing", func(t *testing.T) {
		docs, err := repo.FindForClient(ctx, uuid.New(), false, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("signedOnly filters out open documents", func(t *testing.T) {
		docs, err := repo.FindForClient(ctx, o.BuyerID, true, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Empty(t, docs)

		_, err = so.Sign(identity.SideBuyer, "s3://signed/b.pdf")
		require.NoError(t, err)
		_, err = so.Sign(identity.SideSupplier, "s3://signed/s.pdf")
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, so))

		docs, err = repo.FindForClient(ctx, o.BuyerID, true, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Len(t, docs, 1)
	})
}

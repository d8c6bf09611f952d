package persistence

import (
	"testing"

	"github.com/recyclemart/backend/internal/domain/document"
	"github.com/recyclemart/backend/internal/domain/identity"
	"github.com/recyclemart/backend/internal/domain/notification"
	"github.com/recyclemart/backend/internal/domain/order"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB opens an in-memory database with the full schema. The unique
// indexes mirror the production migrations; the pair and invoice invariants
// depend on them.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&identity.User{},
		&identity.ManagedClient{},
		&order.Order{},
		&document.Document{},
		&document.GenerationRecord{},
		&notification.Notification{},
	)
	require.NoError(t, err)

	for _, stmt := range []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(email)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_documents_order_type ON documents(order_id, type)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_documents_invoice_number ON documents(invoice_number)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_managed_clients_pair ON managed_clients(manager_id, client_id)`,
	} {
		require.NoError(t, db.Exec(stmt).Error)
	}

	return db
}

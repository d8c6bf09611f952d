package notification

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKind_IsValid(t *testing.T) {
	valid := []Kind{
		KindOrderCreated, KindStatusChanged, KindDocumentGenerated,
		KindSignatureRequested, KindSignatureCompleted, KindOrderProcessing,
		KindOrderCompleted, KindSubmissionDeclined, KindSubmissionExpired,
	}
	for _, k := range valid {
		assert.True(t, k.IsValid(), string(k))
	}
	assert.False(t, Kind("order_shipped").IsValid())
	assert.False(t, Kind("").IsValid())
}

func TestNew(t *testing.T) {
	userID := uuid.New()
	orderID := uuid.New()

	t.Run("creates unread notification", func(t *testing.T) {
		n, err := New(userID, orderID, KindStatusChanged, "Order moved to processing", StatusChangedPayload{
			PreviousStatus: "document_phase",
			NewStatus:      "processing",
			ChangedByID:    uuid.New(),
		})
		require.NoError(t, err)

		assert.Equal(t, userID, n.UserID)
		assert.Equal(t, orderID, n.OrderID)
		assert.Equal(t, KindStatusChanged, n.Kind)
		assert.False(t, n.IsRead)
		assert.Nil(t, n.ReadAt)
		assert.NotEmpty(t, n.ID)
	})

	t.Run("rejects empty recipient", func(t *testing.T) {
		_, err := New(uuid.Nil, orderID, KindOrderCreated, "msg", nil)
		require.Error(t, err)
	})

	t.Run("rejects unknown kind", func(t *testing.T) {
		_, err := New(userID, orderID, Kind("order_shipped"), "msg", nil)
		require.Error(t, err)
	})

	t.Run("rejects payload of the wrong kind", func(t *testing.T) {
		_, err := New(userID, orderID, KindOrderCreated, "msg", OrderCompletedPayload{})
		require.Error(t, err)
	})

	t.Run("payload kinds cover the closed set", func(t *testing.T) {
		payloads := []Payload{
			OrderCreatedPayload{}, StatusChangedPayload{}, DocumentGeneratedPayload{},
			SignatureRequestedPayload{}, SignatureCompletedPayload{}, OrderProcessingPayload{},
			OrderCompletedPayload{}, SubmissionDeclinedPayload{}, SubmissionExpiredPayload{},
		}
		seen := make(map[Kind]bool)
		for _, p := range payloads {
			assert.True(t, p.Kind().IsValid())
			seen[p.Kind()] = true
		}
		assert.Len(t, seen, len(payloads))
	})
}

func TestNotification_MarkRead(t *testing.T) {
	n, err := New(uuid.New(), uuid.New(), KindOrderCompleted, "Order completed", OrderCompletedPayload{})
	require.NoError(t, err)

	n.MarkRead()
	require.True(t, n.IsRead)
	require.NotNil(t, n.ReadAt)
	first := *n.ReadAt

	// idempotent: a second call keeps the original read time
	n.MarkRead()
	assert.Equal(t, first, *n.ReadAt)
}

package notification

import (
	"time"

	"github.com/google/uuid"
	"github.com/recyclemart/backend/internal/domain/notification"
)

// NotificationResponse is the read model for a notification
type NotificationResponse struct {
	ID        uuid.UUID            `json:"id"`
	OrderID   uuid.UUID            `json:"orderId"`
	Kind      string               `json:"kind"`
	Message   string               `json:"message"`
	Payload   notification.Payload `json:"payload,omitempty"`
	IsRead    bool                 `json:"isRead"`
	CreatedAt time.Time            `json:"createdAt"`
	ReadAt    *time.Time           `json:"readAt,omitempty"`
}

// ListFilter narrows a notification listing
type ListFilter struct {
	Page       int
	PageSize   int
	UnreadOnly bool
}

// ToNotificationResponse maps a domain notification to its read model
func ToNotificationResponse(n *notification.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		OrderID:   n.OrderID,
		Kind:      n.Kind.String(),
		Message:   n.Message,
		Payload:   n.Payload.Payload,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
		ReadAt:    n.ReadAt,
	}
}

// ToNotificationResponses maps a slice of notifications
func ToNotificationResponses(list []notification.Notification) []NotificationResponse {
	out := make([]NotificationResponse, len(list))
	for i := range list {
		out[i] = ToNotificationResponse(&list[i])
	}
	return out
}

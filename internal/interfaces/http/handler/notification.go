package handler

import (
	"github.com/gin-gonic/gin"
	appnotification "github.com/recyclemart/backend/internal/application/notification"
	"github.com/recyclemart/backend/internal/interfaces/http/dto"
)

// NotificationHandler handles in-app notification endpoints
type NotificationHandler struct {
	BaseHandler
	service *appnotification.Service
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(service *appnotification.Service) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// List handles GET /api/v1/notifications. The unread count rides along in the
// response so clients can badge without a second call.
func (h *NotificationHandler) List(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req dto.ListNotificationsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	list, unread, err := h.service.List(c.Request.Context(), actor.ID, appnotification.ListFilter{
		Page:       req.Page,
		PageSize:   req.PageSize,
		UnreadOnly: req.UnreadOnly,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{
		"notifications": list,
		"unreadCount":   unread,
	})
}

// MarkRead handles POST /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	notificationID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid notification ID")
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), actor.ID, notificationID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// UnreadCount handles GET /api/v1/notifications/unread-count
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	count, err := h.service.CountUnread(c.Request.Context(), actor.ID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"unreadCount": count})
}

package handler

import (
	"github.com/gin-gonic/gin"
	appidentity "github.com/recyclemart/backend/internal/application/identity"
)

// UserHandler handles account-manager client assignment endpoints
type UserHandler struct {
	BaseHandler
	service *appidentity.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(service *appidentity.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// AssignClient handles POST /api/v1/users/clients/:id/assign
func (h *UserHandler) AssignClient(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	clientID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid client ID")
		return
	}

	resp, err := h.service.AssignClient(c.Request.Context(), actor, clientID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// UnassignClient handles POST /api/v1/users/clients/:id/unassign
func (h *UserHandler) UnassignClient(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	clientID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid client ID")
		return
	}

	resp, err := h.service.UnassignClient(c.Request.Context(), actor, clientID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ManagedClients handles GET /api/v1/users/clients
func (h *UserHandler) ManagedClients(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	resp, err := h.service.ManagedClients(c.Request.Context(), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

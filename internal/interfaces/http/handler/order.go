package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apporder "github.com/recyclemart/backend/internal/application/order"
	"github.com/recyclemart/backend/internal/domain/order"
	"github.com/recyclemart/backend/internal/interfaces/http/dto"
)

// OrderHandler handles order lifecycle endpoints
type OrderHandler struct {
	BaseHandler
	service *apporder.Service
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(service *apporder.Service) *OrderHandler {
	return &OrderHandler{service: service}
}

// Create handles POST /api/v1/orders
func (h *OrderHandler) Create(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	buyerID, err := uuid.Parse(req.BuyerID)
	if err != nil {
		h.BadRequest(c, "Invalid buyer ID")
		return
	}
	supplierID, err := uuid.Parse(req.SupplierID)
	if err != nil {
		h.BadRequest(c, "Invalid supplier ID")
		return
	}

	resp, err := h.service.Create(c.Request.Context(), actor, apporder.CreateOrderInput{
		Product:       req.Product,
		Capacity:      req.Capacity,
		PricePerTonne: req.PricePerTonne,
		PaymentTerms:  req.PaymentTerms,
		ShippingTerms: req.ShippingTerms,
		BuyerID:       buyerID,
		SupplierID:    supplierID,
		AsDraft:       req.AsDraft,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// List handles GET /api/v1/orders
func (h *OrderHandler) List(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req dto.ListOrdersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	filter := apporder.ListFilter{
		Page:     req.Page,
		PageSize: req.PageSize,
		Search:   req.Search,
	}
	if req.Status != "" {
		status := order.Status(req.Status)
		filter.Status = &status
	}
	if req.SavedStatus != "" {
		saved := order.SavedStatus(req.SavedStatus)
		filter.SavedStatus = &saved
	}

	list, total, err := h.service.List(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page, pageSize := normalizePage(req.Page, req.PageSize)
	h.SuccessWithMeta(c, list, total, page, pageSize)
}

// Get handles GET /api/v1/orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	orderID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	resp, err := h.service.Get(c.Request.Context(), actor, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Approve handles POST /api/v1/orders/:id/approve
func (h *OrderHandler) Approve(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	orderID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	resp, err := h.service.Approve(c.Request.Context(), actor, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// UpdateStatus handles PATCH /api/v1/orders/:id/status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	orderID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	var req dto.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.service.UpdateStatus(c.Request.Context(), actor, orderID, order.Status(req.Status))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// UpdateDraft handles PUT /api/v1/orders/:id/draft
func (h *OrderHandler) UpdateDraft(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	orderID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	var req dto.UpdateDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.service.UpdateDraft(c.Request.Context(), actor, orderID, apporder.UpdateDraftInput{
		Product:       req.Product,
		Capacity:      req.Capacity,
		PricePerTonne: req.PricePerTonne,
		PaymentTerms:  req.PaymentTerms,
		ShippingTerms: req.ShippingTerms,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ConfirmDraft handles POST /api/v1/orders/:id/draft/confirm
func (h *OrderHandler) ConfirmDraft(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	orderID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	resp, err := h.service.ConfirmDraft(c.Request.Context(), actor, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// DeleteDraft handles DELETE /api/v1/orders/:id/draft
func (h *OrderHandler) DeleteDraft(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	orderID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	if err := h.service.DeleteDraft(c.Request.Context(), actor, orderID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// normalizePage applies listing defaults for the pagination meta
func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	return page, pageSize
}

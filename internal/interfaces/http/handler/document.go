package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appdocument "github.com/recyclemart/backend/internal/application/document"
	"github.com/recyclemart/backend/internal/interfaces/http/dto"
)

// DocumentHandler handles contract document endpoints
type DocumentHandler struct {
	BaseHandler
	service        *appdocument.Service
	signedMaxBytes int64
}

// NewDocumentHandler creates a new document handler. signedMaxBytes caps the
// size of uploaded signed files.
func NewDocumentHandler(service *appdocument.Service, signedMaxBytes int64) *DocumentHandler {
	if signedMaxBytes <= 0 {
		signedMaxBytes = 10 << 20
	}
	return &DocumentHandler{service: service, signedMaxBytes: signedMaxBytes}
}

// Generate handles POST /api/v1/orders/:id/documents
func (h *DocumentHandler) Generate(c *gin.Context) {
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

	result, err := h.service.Generate(c.Request.Context(), actor, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if result.IsExisting {
		h.Success(c, result)
		return
	}
	h.Created(c, result)
}

// Regenerate handles POST /api/v1/documents/:id/regenerate
func (h *DocumentHandler) Regenerate(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	documentID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid document ID")
		return
	}

	resp, err := h.service.Regenerate(c.Request.Context(), actor, documentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// UploadSigned handles POST /api/v1/orders/:id/documents/signed. The signed
// file arrives as multipart form field "file".
func (h *DocumentHandler) UploadSigned(c *gin.Context) {
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

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "Missing file upload")
		return
	}
	if fileHeader.Size > h.signedMaxBytes {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeBadRequest, "Uploaded file is too large")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.BadRequest(c, "Unable to read uploaded file")
		return
	}
	defer file.Close()

	fileBytes, err := io.ReadAll(io.LimitReader(file, h.signedMaxBytes+1))
	if err != nil {
		h.BadRequest(c, "Unable to read uploaded file")
		return
	}
	if int64(len(fileBytes)) > h.signedMaxBytes {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeBadRequest, "Uploaded file is too large")
		return
	}

	result, err := h.service.UploadSigned(c.Request.Context(), actor, orderID, fileBytes)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// SigningStatus handles GET /api/v1/documents/:id/signing-status
func (h *DocumentHandler) SigningStatus(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	documentID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid document ID")
		return
	}

	resp, err := h.service.SigningStatus(c.Request.Context(), actor, documentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// OrderDocuments handles GET /api/v1/orders/:id/documents
func (h *DocumentHandler) OrderDocuments(c *gin.Context) {
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

	resp, err := h.service.OrderDocuments(c.Request.Context(), actor, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ClientDocuments handles GET /api/v1/documents
func (h *DocumentHandler) ClientDocuments(c *gin.Context) {
	h.listDocuments(c, false)
}

// SignedDocuments handles GET /api/v1/documents/signed
func (h *DocumentHandler) SignedDocuments(c *gin.Context) {
	h.listDocuments(c, true)
}

func (h *DocumentHandler) listDocuments(c *gin.Context, signedOnly bool) {
	actor, ok := getActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req dto.ListDocumentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	filter := appdocument.ListFilter{
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	if req.ClientID != "" {
		clientID, err := uuid.Parse(req.ClientID)
		if err != nil {
			h.BadRequest(c, "Invalid client ID")
			return
		}
		filter.ClientID = &clientID
	}

	var (
		resp []appdocument.DocumentResponse
		err  error
	)
	if signedOnly {
		resp, err = h.service.SignedDocuments(c.Request.Context(), actor, filter)
	} else {
		resp, err = h.service.ClientDocuments(c.Request.Context(), actor, filter)
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Decline handles POST /api/v1/documents/:id/decline
func (h *DocumentHandler) Decline(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	documentID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid document ID")
		return
	}

	var req dto.DeclineDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.service.Decline(c.Request.Context(), actor, documentID, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Expire handles POST /api/v1/documents/:id/expire
func (h *DocumentHandler) Expire(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	documentID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid document ID")
		return
	}

	resp, err := h.service.Expire(c.Request.Context(), actor, documentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// DownloadURL handles GET /api/v1/documents/:id/download
func (h *DocumentHandler) DownloadURL(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	documentID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid document ID")
		return
	}

	url, err := h.service.DownloadURL(c.Request.Context(), actor, documentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"url": url})
}

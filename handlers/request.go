package handlers

import (
	"net/http"
	"strings"

	"fundi/middleware"
	"fundi/models"
	"fundi/services/booking"

	"github.com/gin-gonic/gin"
)

// RequestHandler exposes the dispatch lifecycle over HTTP.
type RequestHandler struct {
	Svc booking.BookingService
}

func NewRequestHandler(svc booking.BookingService) *RequestHandler {
	return &RequestHandler{Svc: svc}
}

// CreateRequest handles POST /api/requests.
func (h *RequestHandler) CreateRequest(c *gin.Context) {
	var body struct {
		Category    string  `json:"category"`
		Lat         float64 `json:"lat"`
		Lng         float64 `json:"lng"`
		TotalAmount float64 `json:"totalAmount"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request body"})
		return
	}

	req, err := h.Svc.CreateRequest(c.Request.Context(), booking.CreateRequestInput{
		UserID:      c.GetString(middleware.CtxUserID),
		Category:    body.Category,
		Lat:         body.Lat,
		Lng:         body.Lng,
		TotalAmount: body.TotalAmount,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, "request created, searching for providers", req)
}

// GetRequest handles GET /api/requests/:id. The path accepts either the
// internal id or the SR- display reference customers quote in support flows.
func (h *RequestHandler) GetRequest(c *gin.Context) {
	actorID := c.GetString(middleware.CtxUserID)
	if actorID == "" {
		actorID = c.GetString(middleware.CtxProviderID)
	}

	id := c.Param("id")
	var (
		req *models.ServiceRequest
		err error
	)
	if strings.HasPrefix(id, "SR-") {
		req, err = h.Svc.GetRequestByDisplayID(c.Request.Context(), id, actorID)
	} else {
		req, err = h.Svc.GetRequest(c.Request.Context(), id, actorID)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "request fetched", req)
}

// AcceptRequest handles POST /api/requests/:id/accept.
func (h *RequestHandler) AcceptRequest(c *gin.Context) {
	req, err := h.Svc.Accept(c.Request.Context(), c.Param("id"), c.GetString(middleware.CtxProviderID))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "request accepted", req)
}

// RejectRequest handles POST /api/requests/:id/reject.
func (h *RequestHandler) RejectRequest(c *gin.Context) {
	err := h.Svc.Reject(c.Request.Context(), c.Param("id"), c.GetString(middleware.CtxProviderID))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "offer rejected", nil)
}

// UpdateStatus handles PATCH /api/requests/:id/status.
func (h *RequestHandler) UpdateStatus(c *gin.Context) {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Status == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "status is required"})
		return
	}

	req, err := h.Svc.UpdateStatus(c.Request.Context(), c.Param("id"),
		c.GetString(middleware.CtxProviderID), body.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "status updated", req)
}

// UpdateLocation handles PATCH /api/requests/:id/location.
func (h *RequestHandler) UpdateLocation(c *gin.Context) {
	var body struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request body"})
		return
	}

	info, err := h.Svc.UpdateLocation(c.Request.Context(), c.Param("id"),
		c.GetString(middleware.CtxProviderID), body.Lat, body.Lng)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "location updated", info)
}

// CancelRequest handles POST /api/requests/:id/cancel.
func (h *RequestHandler) CancelRequest(c *gin.Context) {
	var body struct {
		Reason string `json:"reason"`
	}
	// A missing body is fine; cancelling without a reason is allowed.
	_ = c.ShouldBindJSON(&body)

	result, err := h.Svc.Cancel(c.Request.Context(), c.Param("id"),
		c.GetString(middleware.CtxUserID), body.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "request cancelled", result)
}

// GetTracking handles GET /api/requests/:id/tracking.
func (h *RequestHandler) GetTracking(c *gin.Context) {
	actorID := c.GetString(middleware.CtxUserID)
	if actorID == "" {
		actorID = c.GetString(middleware.CtxProviderID)
	}
	info, err := h.Svc.GetTracking(c.Request.Context(), c.Param("id"), actorID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "tracking fetched", info)
}

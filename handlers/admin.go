package handlers

import (
	"net/http"

	"fundi/models"
	"fundi/services/booking"
	"fundi/utils"

	"github.com/gin-gonic/gin"
)

// AdminHandler exposes the audited administrative override.
type AdminHandler struct {
	Svc booking.BookingService
}

func NewAdminHandler(svc booking.BookingService) *AdminHandler {
	return &AdminHandler{Svc: svc}
}

var knownStatuses = map[string]bool{
	models.StatusSearching:        true,
	models.StatusProviderAssigned: true,
	models.StatusOnTheWay:         true,
	models.StatusReached:          true,
	models.StatusInProgress:       true,
	models.StatusCompleted:        true,
	models.StatusCancelled:        true,
	models.StatusNoProviderFound:  true,
}

// OverrideStatus handles PATCH /api/admin/requests/:id/status.
func (h *AdminHandler) OverrideStatus(c *gin.Context) {
	var body struct {
		Status string `json:"status"`
		Actor  string `json:"actor"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Status == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "status is required"})
		return
	}
	if !knownStatuses[body.Status] {
		respondError(c, utils.NewValidationError("unknown status: "+body.Status))
		return
	}
	if body.Actor == "" {
		body.Actor = "admin"
	}

	if err := h.Svc.AdminOverride(c.Request.Context(), c.Param("id"), body.Status, body.Actor); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "status overridden", nil)
}

package handlers

import (
	"errors"
	"net/http"
	"time"

	providerRepo "fundi/database/repository/provider"
	"fundi/models"
	"fundi/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ProviderHandler exposes the minimal directory endpoints dispatch needs.
// Full profile management lives in the upstream catalog service.
type ProviderHandler struct {
	Repo providerRepo.ProviderRepository
}

func NewProviderHandler(repo providerRepo.ProviderRepository) *ProviderHandler {
	return &ProviderHandler{Repo: repo}
}

// RegisterProvider handles POST /api/providers.
func (h *ProviderHandler) RegisterProvider(c *gin.Context) {
	var body struct {
		Name     string  `json:"name"`
		Category string  `json:"category"`
		Lat      float64 `json:"lat"`
		Lng      float64 `json:"lng"`
		FCMToken string  `json:"fcmToken"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request body"})
		return
	}
	if body.Name == "" || body.Category == "" {
		respondError(c, utils.NewValidationError("name and category are required"))
		return
	}
	if body.Lat < -90 || body.Lat > 90 || body.Lng < -180 || body.Lng > 180 {
		respondError(c, utils.NewValidationError("invalid coordinates"))
		return
	}

	now := time.Now().UTC()
	provider := &models.Provider{
		ID:          uuid.New().String(),
		Name:        body.Name,
		Category:    body.Category,
		Available:   true,
		LocationGeo: models.NewGeoPoint(body.Lat, body.Lng),
		FCMToken:    body.FCMToken,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.Repo.Create(c.Request.Context(), provider); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, "provider registered", provider)
}

// GetProvider handles GET /api/providers/:id.
func (h *ProviderHandler) GetProvider(c *gin.Context) {
	provider, err := h.Repo.GetByID(c.Request.Context(), c.Param("id"))
	if errors.Is(err, providerRepo.ErrNotFound) {
		respondError(c, utils.NewNotFoundError("provider not found"))
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "provider fetched", provider)
}

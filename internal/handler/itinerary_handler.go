package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dayplan/itinerary-backend-go/internal/middleware"
	"github.com/dayplan/itinerary-backend-go/internal/models"
	"github.com/dayplan/itinerary-backend-go/internal/repository"
	"github.com/dayplan/itinerary-backend-go/pkg/response"
)

// ItineraryHandler handles persistence of delivered itineraries
type ItineraryHandler struct {
	repo *repository.ItineraryRepository
}

// NewItineraryHandler creates a new itinerary handler
func NewItineraryHandler(repo *repository.ItineraryRepository) *ItineraryHandler {
	return &ItineraryHandler{repo: repo}
}

// Save handles POST /api/v1/itineraries. Saved itineraries are immutable.
func (h *ItineraryHandler) Save(c *gin.Context) {
	var it models.Itinerary
	if err := c.ShouldBindJSON(&it); err != nil {
		response.BadRequest(c, "Invalid itinerary body")
		return
	}
	if it.ID == "" || len(it.Stops) == 0 {
		response.BadRequest(c, "Itinerary must have an id and at least one stop")
		return
	}
	it.UserID = middleware.CurrentUser(c)

	if err := h.repo.Save(&it); err != nil {
		response.InternalError(c, "Failed to save itinerary")
		return
	}
	response.Success(c, gin.H{"id": it.ID})
}

// GetByID handles GET /api/v1/itineraries/:id
func (h *ItineraryHandler) GetByID(c *gin.Context) {
	it, err := h.repo.GetByID(c.Param("id"))
	if err != nil {
		response.InternalError(c, "Failed to get itinerary")
		return
	}
	if it == nil {
		response.NotFound(c, "Itinerary not found")
		return
	}
	response.Success(c, it)
}

// List handles GET /api/v1/itineraries for the current user
func (h *ItineraryHandler) List(c *gin.Context) {
	var q struct {
		Limit  int `form:"limit"`
		Offset int `form:"offset"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	user := middleware.CurrentUser(c)
	if user == "" {
		response.Error(c, http.StatusUnauthorized, "Listing itineraries requires a signed-in user")
		return
	}

	items, total, err := h.repo.ListByUser(user, q.Limit, q.Offset)
	if err != nil {
		response.InternalError(c, "Failed to list itineraries")
		return
	}
	response.Success(c, gin.H{
		"data":  items,
		"total": total,
	})
}

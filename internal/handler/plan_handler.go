package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/dayplan/itinerary-backend-go/internal/middleware"
	"github.com/dayplan/itinerary-backend-go/internal/models"
	"github.com/dayplan/itinerary-backend-go/internal/service"
	"github.com/dayplan/itinerary-backend-go/pkg/response"
)

// PlanHandler handles itinerary generation requests
type PlanHandler struct {
	planner *service.PlannerService
}

// NewPlanHandler creates a new plan handler
func NewPlanHandler(planner *service.PlannerService) *PlanHandler {
	return &PlanHandler{planner: planner}
}

// CreatePlan handles POST /api/v1/itineraries/plan
func (h *PlanHandler) CreatePlan(c *gin.Context) {
	var req service.PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	it, unresolved, err := h.planner.Plan(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrEmptyPlan):
			response.BadRequest(c, models.ErrEmptyPlan.Error())
		case c.Request.Context().Err() != nil:
			// Client went away; nothing useful to send, even when the
			// cancellation surfaced as a provider failure
			c.Abort()
		case isProviderErr(err):
			response.BadGateway(c, "A required planning service is unavailable right now. Please try again shortly.")
		default:
			response.InternalError(c, "Failed to plan itinerary")
		}
		return
	}

	it.UserID = middleware.CurrentUser(c)

	warnings := make([]string, 0, len(unresolved))
	for _, u := range unresolved {
		warnings = append(warnings, u.Error())
	}
	response.Success(c, gin.H{
		"itinerary": h.planner.ToResponse(it),
		"warnings":  warnings,
	})
}

func isProviderErr(err error) bool {
	var perr *models.ProviderError
	return errors.As(err, &perr)
}

package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/dayplan/itinerary-backend-go/internal/knowledge"
	"github.com/dayplan/itinerary-backend-go/internal/location"
	"github.com/dayplan/itinerary-backend-go/internal/models"
	"github.com/dayplan/itinerary-backend-go/pkg/response"
)

// AreaHandler exposes read-only knowledge-base queries
type AreaHandler struct {
	kb         *knowledge.Base
	normalizer *location.Normalizer
}

// NewAreaHandler creates a new area handler
func NewAreaHandler(kb *knowledge.Base, normalizer *location.Normalizer) *AreaHandler {
	return &AreaHandler{kb: kb, normalizer: normalizer}
}

// List handles GET /api/v1/areas with optional filters
func (h *AreaHandler) List(c *gin.Context) {
	var filter models.AreaFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	areas := h.kb.All()
	switch {
	case filter.Characteristic != "":
		areas = h.kb.ByCharacteristic(filter.Characteristic)
	case filter.Region != "":
		areas = h.kb.InRegion(filter.Region)
	case filter.Bucket != "" && filter.MaxCrowd > 0:
		areas = h.kb.ByCrowdLevel(models.TimeBucket(filter.Bucket), filter.MaxCrowd)
	}

	response.Success(c, gin.H{
		"data":  areas,
		"total": len(areas),
	})
}

// GetByName handles GET /api/v1/areas/:name, resolving colloquial names
// through the normalizer
func (h *AreaHandler) GetByName(c *gin.Context) {
	name := h.normalizer.Normalize(c.Param("name"))
	area, ok := h.kb.Get(name)
	if !ok {
		suggestions := h.normalizer.SuggestSimilar(c.Param("name"))
		response.NotFound(c, "Unknown area"+suggestionHint(suggestions))
		return
	}
	response.Success(c, area)
}

// Asymmetries handles GET /api/v1/areas/quality/asymmetries, the neighbor
// graph data-quality report
func (h *AreaHandler) Asymmetries(c *gin.Context) {
	findings := h.kb.NeighborAsymmetries()
	response.Success(c, gin.H{
		"data":  findings,
		"total": len(findings),
	})
}

func suggestionHint(names []string) string {
	if len(names) == 0 {
		return ""
	}
	hint := "; did you mean "
	for i, n := range names {
		if i > 0 {
			hint += " or "
		}
		hint += n
	}
	return hint + "?"
}

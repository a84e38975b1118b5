package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dayplan/itinerary-backend-go/internal/config"
	"github.com/dayplan/itinerary-backend-go/internal/handler"
	"github.com/dayplan/itinerary-backend-go/internal/middleware"
)

// Handlers bundles the wired HTTP handlers
type Handlers struct {
	Plan      *handler.PlanHandler
	Itinerary *handler.ItineraryHandler
	Area      *handler.AreaHandler
}

// SetupRouter builds the gin engine with middleware and routes
func SetupRouter(cfg *config.Config, logger *zap.Logger, h Handlers) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(logger))

	// CORS
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Itinerary Backend API is running",
		})
	})

	api := r.Group("/api/v1")
	api.Use(middleware.OptionalAuth(cfg.JWTSecret))
	{
		itineraries := api.Group("/itineraries")
		{
			itineraries.POST("/plan",
				middleware.RateLimit(cfg.PlanRateLimit, cfg.PlanRateWindow),
				h.Plan.CreatePlan)
			itineraries.POST("", h.Itinerary.Save)
			itineraries.GET("", h.Itinerary.List)
			itineraries.GET("/:id", h.Itinerary.GetByID)
		}

		areas := api.Group("/areas")
		{
			areas.GET("", h.Area.List)
			areas.GET("/quality/asymmetries", h.Area.Asymmetries)
			areas.GET("/:name", h.Area.GetByName)
		}
	}

	return r
}

package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"villacal/config"
	"villacal/handlers"
)

// RegisterCalendarRoutes registers the availability/proxy endpoints.
func RegisterCalendarRoutes(r *gin.Engine, h *handlers.CalendarHandler) {
	api := r.Group("/api")
	{
		api.GET("/availability", h.AvailabilityHandler)
		api.GET("/ical", h.ICalProxyHandler)
		api.GET("/cache-info", h.CacheInfoHandler)
		api.GET("/clear-cache", h.ClearCacheHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, h *handlers.CalendarHandler) {
	// Read-only surface: the allow-list comes from config and only GET is
	// exposed, the proxy has no write path.
	r.Use(cors.New(cors.Config{
		AllowOrigins:  config.AppConfig.AllowedOrigins,
		AllowMethods:  []string{"GET", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type"},
		ExposeHeaders: []string{"Content-Length", "X-Cache", "X-Cache-Info", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))

	RegisterCalendarRoutes(r, h)
	RegisterHealthRoute(r)
}

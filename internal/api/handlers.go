package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pageza/kaintayo/backend/internal/middleware"
	"github.com/pageza/kaintayo/backend/internal/service"
)

// Version is overridden during build with ldflags
var Version = "dev"

// HealthCheck returns the health status of the API
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "Kain Tayo API is running",
		"version": Version,
	})
}

// RegisterRoutes registers all API routes. Recipe routes are served both
// under /api and at the root; they require a bearer token only when
// authService is non-nil.
func RegisterRoutes(router *gin.Engine, recipeService service.IRecipeService, authService service.IAuthService, logger *slog.Logger) {
	// Health check endpoint (no auth required)
	router.GET("/health", HealthCheck)
	router.GET("/api/health", HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	recipeHandler := NewRecipeHandler(recipeService, logger)

	for _, prefix := range []string{"/api", ""} {
		group := router.Group(prefix)
		if authService != nil {
			group.Use(middleware.AuthMiddleware(authService))
		}
		recipeHandler.RegisterRoutes(group)
	}
}

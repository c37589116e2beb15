// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/reorderly/backend-go/internal/api/handlers"
	"github.com/reorderly/backend-go/internal/api/middleware"
	"github.com/reorderly/backend-go/internal/auth"
	"github.com/reorderly/backend-go/internal/config"
	"github.com/reorderly/backend-go/internal/service"
)

type Services struct {
	Recommendations *service.RecommendationService
}

// NewRouter wires the HTTP surface: health check plus the recommendations
// endpoint. When cfg.Auth.Enabled the endpoint sits behind the bearer-token
// middleware; the computation underneath is the same either way.
func NewRouter(cfg *config.Config, services *Services, verifier *auth.Verifier) *gin.Engine {
	router := gin.New()
	router.MaxMultipartMemory = cfg.App.MaxUploadMB << 20

	// Add middleware
	router.Use(
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Recovery(),
	)

	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.OrgIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.Server.AllowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(cfg.Server.AllowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	if services != nil && services.Recommendations != nil {
		recHandler := handlers.NewRecommendationHandler(services.Recommendations, cfg.App.DefaultHorizonDays)
		recGroup := apiGroup.Group("/recommendations")
		if cfg.Auth.Enabled {
			recGroup.Use(middleware.Auth(verifier))
		}
		recGroup.POST("", recHandler.Compute)
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}

// backend-go/cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/reorderly/backend-go/internal/api"
	"github.com/reorderly/backend-go/internal/auth"
	"github.com/reorderly/backend-go/internal/config"
	"github.com/reorderly/backend-go/internal/engine"
	"github.com/reorderly/backend-go/internal/service"
	"github.com/reorderly/backend-go/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize services
	recService := service.NewRecommendationService(engine.New())

	var verifier *auth.Verifier
	if cfg.Auth.Enabled {
		if cfg.Auth.JWKSURL == "" || cfg.Auth.Issuer == "" {
			logger.Log.Fatal().Msg("AUTH_ENABLED requires AUTH_JWKS_URL and AUTH_ISSUER")
		}
		verifier = auth.NewVerifier(
			cfg.Auth.JWKSURL,
			cfg.Auth.Issuer,
			time.Duration(cfg.Auth.JWKSTTLSeconds)*time.Second,
		)
	}

	// Initialize HTTP server
	router := api.NewRouter(cfg, &api.Services{Recommendations: recService}, verifier)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Bool("auth", cfg.Auth.Enabled).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}

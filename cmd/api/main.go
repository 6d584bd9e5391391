package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nkatz/stylist/internal/api"
	"github.com/nkatz/stylist/internal/api/middleware"
	"github.com/nkatz/stylist/internal/config"
	"github.com/nkatz/stylist/internal/logger"
	"github.com/nkatz/stylist/internal/service"
)

func main() {
	// Load configuration
	// Support CONFIG_PATH environment variable for production deployments
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatal("Failed to load config: %v", err)
	}

	// Initialize logger
	log := logger.NewDefault()
	logger.SetDefaultLogger(log)
	defer logger.Sync()

	// Initialize services
	llmCfg := &service.LLMConfig{
		Model:   cfg.LLM.Model,
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Timeout: time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
	}

	intentService := service.NewIntentService(llmCfg)
	outfitService := service.NewOutfitService(llmCfg)

	weatherService := service.NewWeatherService(&service.WeatherServiceConfig{
		GeocodingURL: cfg.Weather.GeocodingURL,
		ForecastURL:  cfg.Weather.ForecastURL,
		ForecastDays: cfg.Weather.ForecastDays,
		Timeout:      time.Duration(cfg.Weather.TimeoutSeconds) * time.Second,
	})

	photoService := service.NewPhotoService(&service.PhotoServiceConfig{
		AccessKey:   cfg.Photos.AccessKey,
		BaseURL:     cfg.Photos.BaseURL,
		FallbackURL: cfg.Photos.FallbackURL,
		PerPage:     cfg.Photos.PerPage,
		Timeout:     time.Duration(cfg.Photos.TimeoutSeconds) * time.Second,
	})

	productService := service.NewProductService(&service.ProductServiceConfig{
		APIKey:      cfg.Shopping.APIKey,
		CSEID:       cfg.Shopping.CSEID,
		Endpoint:    cfg.Shopping.Endpoint,
		MaxProducts: cfg.Shopping.MaxProducts,
		ResultCount: cfg.Shopping.ResultCount,
		Timeout:     time.Duration(cfg.Shopping.TimeoutSeconds) * time.Second,
	}, photoService)

	pipeline := service.NewPipelineService(
		intentService,
		weatherService,
		outfitService,
		productService,
		log,
	)

	// Setup router
	router := api.SetupRouter(pipeline, cfg.Server.Mode, middleware.CORSConfig{
		AllowedOrigins:  cfg.Server.CORS.AllowedOrigins,
		AllowAllOrigins: cfg.Server.CORS.AllowAllOrigins,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Infof("Starting API server on port %d (mode=%s)", cfg.Server.Port, cfg.Server.Mode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}

package api

import (
	"github.com/gin-gonic/gin"
	"github.com/nkatz/stylist/internal/api/handler"
	"github.com/nkatz/stylist/internal/api/middleware"
	"github.com/nkatz/stylist/internal/service"
)

// SetupRouter configures the Gin router with all routes
func SetupRouter(
	pipeline *service.PipelineService,
	mode string,
	cors middleware.CORSConfig,
) *gin.Engine {
	// Set Gin mode
	switch mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	// Add middleware
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cors))

	// Create handlers
	healthHandler := handler.NewHealthHandler()
	styleHandler := handler.NewStyleHandler(pipeline)

	// Health check
	r.GET("/health", healthHandler.Health)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Styling pipeline
		v1.POST("/style", styleHandler.Submit)

		// Latest run result
		v1.GET("/result", styleHandler.Result)

		// Busy/idle signal
		v1.GET("/status", styleHandler.Status)
	}

	return r
}

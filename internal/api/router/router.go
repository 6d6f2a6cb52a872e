package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/minhbtq/prompt-queue/internal/api/handler"
)

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		if deps.Health != nil {
			if err := deps.Health.HealthCheck(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status": "unhealthy",
					"error":  err.Error(),
				})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "prompt-queue-api",
		})
	})

	promptHandler := handler.NewPromptHandler(deps)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		prompt := v1.Group("/prompt")
		{
			// POST /api/v1/prompt - Submit a prompt for generation
			prompt.POST("", promptHandler.SubmitPrompt)

			// GET /api/v1/prompt - List jobs with pagination
			prompt.GET("", promptHandler.ListPrompts)

			// GET /api/v1/prompt/:id/status - Poll job status
			prompt.GET("/:id/status", promptHandler.GetStatus)

			// GET /api/v1/prompt/:id/result - Fetch job result once completed
			prompt.GET("/:id/result", promptHandler.GetResult)
		}
	}

	return r
}

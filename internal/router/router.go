package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stemsi/recruit-backend/internal/config"
	"github.com/stemsi/recruit-backend/internal/handler"
	"github.com/stemsi/recruit-backend/internal/middleware"
	"github.com/stemsi/recruit-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Applicant *handler.ApplicantHandler
	Test      *handler.TestHandler
	WS        *handler.WSHandler
	Feedback  *handler.FeedbackHandler
	Review    *handler.ReviewHandler
	Dashboard *handler.DashboardHandler
	Monitor   *handler.MonitorHandler
	System    *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// registerLimiter throttles self-registration; nil disables it.
func SetupRouter(handlers *Handlers, registerLimiter *middleware.RateLimiter, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", middleware.AdminKeyHeader, response.HeaderRequestID}
	corsConfig.ExposeHeaders = []string{response.HeaderRequestID, "Retry-After"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally. Streams are passed through.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── 1. Candidate Group (Public) ───────────────────────────────────
	candidateAPI := router.Group("/api/v1/applicants")
	{
		register := []gin.HandlerFunc{handlers.Applicant.Register}
		if registerLimiter != nil {
			register = append([]gin.HandlerFunc{registerLimiter.Middleware()}, register...)
		}
		candidateAPI.POST("", register...)
		candidateAPI.GET("/:id", handlers.Applicant.Get)
		candidateAPI.POST("/:id/feedback", handlers.Feedback.Submit)

		test := candidateAPI.Group("/:id/test")
		test.Use(middleware.NoStore())
		{
			test.POST("/start", handlers.Test.Start)
			test.GET("", handlers.Test.State)
			test.POST("/answers", handlers.Test.SelectAnswer)
			test.POST("/navigate", handlers.Test.Navigate)
			test.POST("/violations", handlers.Test.ReportViolation)
			test.POST("/submit", handlers.Test.Submit)
		}
	}

	// ─── 2. WebSocket Group ────────────────────────────────────────────
	ws := router.Group("/ws/v1")
	{
		ws.GET("/applicants/:id/test/stream", handlers.WS.TestStream)
	}

	// ─── 3. Admin Group (Shared Key) ───────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.AdminKey(cfg.AdminAPIKey), middleware.NoStore())
	{
		adminAPI.GET("/dashboard", handlers.Dashboard.GetDashboardData)

		adminAPI.GET("/applicants", handlers.Applicant.List)
		adminAPI.GET("/applicants/:id/review", handlers.Review.GetReview)

		adminAPI.GET("/feedback", handlers.Feedback.List)

		adminAPI.GET("/monitor", handlers.Monitor.MonitorSSE)
		adminAPI.GET("/monitor/snapshot", handlers.Monitor.Snapshot)

		adminAPI.GET("/system", handlers.System.Metrics)
		adminAPI.GET("/system/stream", handlers.System.MetricsSSE)
	}

	return router
}

package router

import (
	"github.com/gin-gonic/gin"

	"feldbeleg/internal/config"
	"feldbeleg/internal/domain"
	"feldbeleg/internal/handler"
	"feldbeleg/internal/middleware"
	"feldbeleg/internal/service"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	cfg *config.Config,
	authSvc service.AuthService,
	authH *handler.AuthHandler,
	userH *handler.UserHandler,
	docH *handler.DocumentHandler,
	exportH *handler.ExportHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	if cfg.RateLimit.RequestsPerSecond > 0 {
		r.Use(middleware.RateLimit(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))
	}

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/login", authH.Login)
	auth.POST("/refresh", authH.RefreshToken)

	// Protected routes - require valid JWT
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(authSvc))

	// Document routes
	docs := protected.Group("/documents")
	docs.POST("/upload", docH.Upload)
	docs.GET("", docH.List)
	docs.GET("/:id", docH.GetByID)
	docs.PUT("/:id", docH.Update)
	docs.GET("/:id/download", docH.Download)
	docs.POST("/:id/retry", docH.Retry)
	docs.DELETE("/:id", middleware.RequireRole(domain.RoleAdmin), docH.Delete)

	// Monthly exports
	exports := protected.Group("/exports")
	exports.POST("/:year/:month", middleware.RequireRole(domain.RoleAdmin), exportH.ExportMonth)

	// User management
	users := protected.Group("/users")
	users.POST("", middleware.RequireRole(domain.RoleAdmin), userH.Create)
	users.GET("", middleware.RequireRole(domain.RoleAdmin), userH.List)
	users.GET("/:id", userH.GetByID)
	users.PUT("/:id", userH.Update)
	users.DELETE("/:id", middleware.RequireRole(domain.RoleAdmin), userH.Delete)

	return r
}

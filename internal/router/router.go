package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/lumora/learnhub-backend/internal/config"
	"github.com/lumora/learnhub-backend/internal/handler"
	"github.com/lumora/learnhub-backend/internal/middleware"
	"github.com/lumora/learnhub-backend/internal/model"
	"github.com/lumora/learnhub-backend/internal/response"
	"github.com/lumora/learnhub-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth         *handler.AuthHandler
	Course       *handler.CourseHandler
	Enrollment   *handler.EnrollmentHandler
	Category     *handler.CategoryHandler
	Notification *handler.NotificationHandler
	WS           *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
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
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/register", handlers.Auth.Register)
		auth.POST("/login", handlers.Auth.Login)
		auth.GET("/me", middleware.RequireAuth(authService), handlers.Auth.Me)
	}

	// ─── 2. Courses (Public Reads, Role-Gated Writes) ──────────────────
	courses := router.Group("/api/v1/courses")
	{
		// Reads accept anonymous visitors; a token, when present, scopes
		// the listing (e.g. ?enrolled=true).
		courses.GET("", middleware.OptionalAuth(authService), handlers.Course.ListCourses)
		courses.GET("/top", middleware.OptionalAuth(authService), handlers.Course.TopCourses)
		courses.GET("/:id", middleware.OptionalAuth(authService), handlers.Course.GetCourse)

		courses.POST("",
			middleware.RequireAuth(authService),
			middleware.RequireRole(model.RoleInstructor, model.RoleAdmin),
			handlers.Course.CreateCourse,
		)
		courses.PATCH("/:id",
			middleware.RequireAuth(authService),
			middleware.RequireRole(model.RoleInstructor, model.RoleAdmin),
			handlers.Course.UpdateCourse,
		)
		courses.DELETE("/:id",
			middleware.RequireAuth(authService),
			middleware.RequireRole(model.RoleInstructor, model.RoleAdmin),
			handlers.Course.DeleteCourse,
		)
		courses.GET("/:id/students",
			middleware.RequireAuth(authService),
			middleware.RequireRole(model.RoleInstructor, model.RoleAdmin),
			handlers.Course.ListStudents,
		)

		// Membership
		courses.POST("/:id/enroll",
			middleware.RequireAuth(authService),
			middleware.RequireRole(model.RoleStudent, model.RoleAdmin),
			handlers.Enrollment.Enroll,
		)
		courses.POST("/:id/leave",
			middleware.RequireAuth(authService),
			middleware.RequireRole(model.RoleStudent, model.RoleAdmin),
			handlers.Enrollment.Leave,
		)
	}

	// ─── 3. Categories (Public Reads, Admin Writes) ────────────────────
	categories := router.Group("/api/v1/categories")
	{
		categories.GET("", handlers.Category.ListCategories)

		adminOnly := categories.Group("")
		adminOnly.Use(middleware.RequireAuth(authService), middleware.RequireRole(model.RoleAdmin))
		{
			adminOnly.POST("", handlers.Category.CreateCategory)
			adminOnly.PUT("/:id", handlers.Category.UpdateCategory)
			adminOnly.DELETE("/:id", handlers.Category.DeleteCategory)
		}
	}

	// ─── 4. Notifications (Any Authenticated User) ─────────────────────
	notifications := router.Group("/api/v1/notifications")
	notifications.Use(middleware.RequireAuth(authService))
	{
		notifications.GET("", handlers.Notification.ListNotifications)
		notifications.PATCH("/:id/read", handlers.Notification.MarkNotificationRead)
	}

	// ─── 5. WebSocket Group (WS Auth via Query Token) ──────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireWSAuth(authService))
	{
		ws.GET("/notifications/stream", handlers.WS.NotificationStream)
	}

	return router
}

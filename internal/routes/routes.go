package routes

import (
	"maternity-care-server/internal/avatars"
	"maternity-care-server/internal/config"
	"maternity-care-server/internal/dashboard"
	"maternity-care-server/internal/events"
	"maternity-care-server/internal/handlers"
	"maternity-care-server/internal/middleware"
	"maternity-care-server/internal/models"
	"maternity-care-server/internal/profile"
	"maternity-care-server/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Dependencies are the shared services the handlers are built from.
type Dependencies struct {
	Config  *config.Config
	Repo    store.Repository
	Broker  *events.Broker
	Avatars avatars.Store
	Logger  zerolog.Logger
}

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, deps Dependencies) {
	cfg := deps.Config
	log := deps.Logger

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(deps.Repo, deps.Repo, deps.Avatars, cfg, log)
	avatarHandler := handlers.NewAvatarHandler(avatars.NewDBStore(deps.Repo))
	profileHandler := handlers.NewProfileHandler(profile.NewService(deps.Repo, deps.Broker, log))
	recordHandler := handlers.NewHealthRecordHandler(deps.Repo, deps.Repo, deps.Broker, log)
	doctorHandler := handlers.NewDoctorHandler(dashboard.NewService(deps.Repo, deps.Broker, log))
	eventsHandler := handlers.NewEventsHandler(deps.Broker, cfg.Origin, cfg.IsDev(), log)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/signup", authHandler.Signup)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh-token", authHandler.RefreshToken)
			authRoutes.POST("/logout", authHandler.Logout)
		}
		public.GET("/avatars/:userId", avatarHandler.Get)
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg))
	{
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.GET("/me", authHandler.Me)
			authRoutesPrivate.PUT("/avatar", authHandler.UploadAvatar)
		}

		// Onboarding wizard (patients only)
		profileRoutes := private.Group("/profile")
		profileRoutes.Use(middleware.RoleAuthMiddleware(models.RolePatient))
		{
			profileRoutes.POST("/steps/:step/validate", profileHandler.ValidateStep)
			profileRoutes.POST("/complete", profileHandler.Complete)
		}

		// A patient's own health records
		recordRoutes := private.Group("/health-records")
		recordRoutes.Use(middleware.RoleAuthMiddleware(models.RolePatient))
		{
			recordRoutes.POST("", recordHandler.CreateHealthRecord)
			recordRoutes.GET("", recordHandler.ListHealthRecords)
			recordRoutes.GET("/latest", recordHandler.LatestHealthRecord)
			recordRoutes.GET("/summary", recordHandler.Summary)
			recordRoutes.GET("/events", eventsHandler.Stream)
		}

		// Doctor dashboard
		doctorRoutes := private.Group("/doctor")
		doctorRoutes.Use(middleware.RoleAuthMiddleware(models.RoleDoctor))
		{
			doctorRoutes.GET("/patients", doctorHandler.GetPatients)
			doctorRoutes.GET("/patients/:id/records", doctorHandler.GetPatientRecords)
			doctorRoutes.GET("/stats", doctorHandler.GetStats)
			doctorRoutes.GET("/notifications", doctorHandler.GetNotifications)
			doctorRoutes.PATCH("/notifications/:id/read", doctorHandler.MarkNotificationRead)
			doctorRoutes.GET("/events", eventsHandler.Stream)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}

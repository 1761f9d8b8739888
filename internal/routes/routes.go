package routes

import (
	"os"

	"github.com/freightdesk/backend/internal/controllers"
	"github.com/freightdesk/backend/internal/middleware"
	"github.com/freightdesk/backend/internal/services"
	"github.com/freightdesk/backend/internal/storage"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRoutes configures all application routes
func SetupRoutes(r *gin.Engine, db *gorm.DB) {
	// Initialize services
	mediaStore := storage.NewMediaStore(os.Getenv("MEDIA_DIR"))
	holdService := services.NewHoldService(db)
	sampleService := services.NewSampleService(db)
	outcomeService := services.NewOutcomeService(db)
	incidentService := services.NewIncidentService(db, holdService)
	reviewService := services.NewReviewService(db, holdService, sampleService, outcomeService)
	mediaService := services.NewMediaService(db, mediaStore)

	// Initialize controllers
	authController := controllers.NewAuthController(db)
	userController := controllers.NewUserController(db)
	shipmentController := controllers.NewShipmentController(db)
	incidentController := controllers.NewIncidentController(incidentService, sampleService, reviewService)
	mediaController := controllers.NewMediaController(mediaService)

	// Stored media files
	r.Static(mediaStore.BaseURL(), mediaStore.Dir())

	// API routes
	api := r.Group("/api/v1")
	{
		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/login", authController.Login)
			auth.POST("/register", authController.Register)
		}

		// Protected routes
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware())
		{
			protected.POST("/auth/refresh", authController.RefreshToken)

			// Users
			users := protected.Group("/users")
			{
				users.GET("/me", userController.GetCurrentUser)
				users.PUT("/me", userController.UpdateCurrentUser)
				users.GET("", userController.GetUsers)
			}

			// Shipments
			shipments := protected.Group("/shipments")
			{
				shipments.GET("", shipmentController.GetShipments)
				shipments.GET("/:id", shipmentController.GetShipment)
			}

			// Quality incidents
			incidents := protected.Group("/incidents")
			{
				incidents.POST("", incidentController.CreateIncident)
				incidents.GET("", incidentController.GetIncidents)
				incidents.GET("/stats", incidentController.GetSummaryStats)
				incidents.GET("/:id", incidentController.GetIncident)
				incidents.PATCH("/:id", incidentController.UpdateIncident)
				incidents.POST("/:id/submit", incidentController.SubmitIncident)
				incidents.GET("/:id/samples", incidentController.GetSampleCards)
				incidents.PUT("/:id/samples/:slot", incidentController.RecordSample)
				incidents.POST("/:id/review", incidentController.ReviewIncident)
				incidents.POST("/:id/media", mediaController.AttachMedia)
				incidents.GET("/:id/media", mediaController.GetMedia)
				incidents.DELETE("/:id/media/:mediaId", mediaController.RemoveMedia)
			}
		}
	}
}

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sittawut/coverage-admin/config"
	"github.com/sittawut/coverage-admin/handlers"
	"github.com/sittawut/coverage-admin/middleware"
	"github.com/sittawut/coverage-admin/repository"
	"go.uber.org/zap"
)

func SetupRoutes(router *gin.Engine, store repository.Store, limiter middleware.Limiter, cfg *config.Config, logger *zap.Logger) {
	authHandler := handlers.NewAuthHandler(cfg, logger)
	bookingHandler := handlers.NewBookingHandler(store, logger)
	clientHandler := handlers.NewClientHandler(store, logger)
	exceptionHandler := handlers.NewExceptionHandler(store, logger)
	referenceHandler := handlers.NewReferenceHandler(store, logger)

	router.GET("/health", referenceHandler.Health)

	api := router.Group("/api")
	api.Use(middleware.SecurityHeaders(), middleware.RateLimit(limiter, logger))
	{
		api.POST("/auth/login", authHandler.Login)

		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			protected.GET("/auth/me", authHandler.Me)

			protected.GET("/clients", clientHandler.GetClients)
			protected.GET("/bookings", bookingHandler.GetBookings)
			protected.GET("/exceptions", exceptionHandler.GetExceptions)

			protected.GET("/booking-statuses", referenceHandler.GetBookingStatuses)
			protected.GET("/coverage-configs", referenceHandler.GetCoverageConfigs)
			protected.GET("/exception-statuses", referenceHandler.GetExceptionStatuses)

			writes := protected.Group("")
			writes.Use(middleware.RoleMiddleware(middleware.RoleAdmin))
			{
				writes.POST("/clients", clientHandler.CreateClient)
				writes.PUT("/clients", clientHandler.UpdateClient)

				writes.POST("/bookings", bookingHandler.CreateBooking)
				writes.PUT("/bookings", bookingHandler.UpdateBooking)

				writes.POST("/exceptions", exceptionHandler.CreateException)
				writes.PUT("/exceptions", exceptionHandler.UpdateException)
			}
		}
	}
}

// NewRouter builds the API engine with the global middleware chain.
func NewRouter(store repository.Store, limiter middleware.Limiter, cfg *config.Config, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(logger),
		config.CORSMiddleware(cfg),
	)
	SetupRoutes(router, store, limiter, cfg, logger)
	return router
}

package routes

import (
	"net/http"
	"time"

	"mytutor/handlers"
	"mytutor/middleware"
	"mytutor/models"
	"mytutor/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterSlotRoutes registers slot publishing and browsing endpoints.
func RegisterSlotRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/slots")
	{
		// Public browsing.
		api.GET("/available", hb.Slots.ListAvailableHandler)
		api.GET("/search", hb.Slots.FilterHandler)

		protected := api.Group("")
		protected.Use(middleware.JWTAuthMiddleware())
		protected.GET("", middleware.RequireRole(models.RoleAdmin), hb.Slots.ListAllSlotsHandler)

		provider := protected.Group("")
		provider.Use(middleware.RequireRole(models.RoleProvider))
		provider.GET("/mine", hb.Slots.ListMySlotsHandler)
		provider.POST("", hb.Slots.CreateSlotHandler)
		provider.PATCH("/id/:id", hb.Slots.ModifySlotHandler)
		provider.DELETE("/id/:id", hb.Slots.DeactivateSlotHandler)
	}
}

// RegisterBookingRoutes registers the reservation lifecycle endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/bookings")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.GET("/mine", hb.Bookings.ListMineHandler)
		api.GET("", middleware.RequireRole(models.RoleAdmin, models.RoleProvider), hb.Bookings.ListAllHandler)

		api.POST("/slot/:slotId", hb.Bookings.BookHandler)
		api.POST("/slot/:slotId/cancel", hb.Bookings.ClientCancelHandler)

		provider := api.Group("/slot/:slotId")
		provider.Use(middleware.RequireRole(models.RoleProvider))
		provider.POST("/provider-cancel", hb.Bookings.ProviderCancelHandler)
		provider.POST("/complete", hb.Bookings.MarkCompletedHandler)
		provider.POST("/no-show", hb.Bookings.MarkNoShowHandler)
	}
}

// RegisterReviewRoutes registers review endpoints.
func RegisterReviewRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/reviews")
	{
		api.GET("/id/:id", hb.Reviews.GetReviewHandler)
		api.GET("/provider/:providerId", hb.Reviews.ProviderReviewsHandler)

		protected := api.Group("")
		protected.Use(middleware.JWTAuthMiddleware())
		protected.POST("", hb.Reviews.CreateReviewHandler)
		protected.PATCH("/id/:id", hb.Reviews.EditReviewHandler)
		protected.GET("/mine", hb.Reviews.MyReviewsHandler)
		protected.POST("/provider/:providerId/recompute", middleware.RequireRole(models.RoleAdmin), hb.Reviews.RecomputeRatingHandler)
	}
}

// RegisterHealthRoute registers health and metrics endpoints.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "checks": utils.GetHealthStatus()})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterSlotRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterReviewRoutes(r, hb)
}

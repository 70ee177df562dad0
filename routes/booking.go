package routes

import (
	"coachbook/handlers"
	"coachbook/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterBookingRoutes registers all endpoints for the booking workflow.
func RegisterBookingRoutes(r *gin.Engine, bh *handlers.BookingHandler) {
	booking := r.Group("/api/bookings")
	booking.Use(middleware.JWTAuthMiddleware())
	{
		booking.POST("", bh.CreateBooking)                  // Run the booking-payment saga
		booking.POST("/summary", bh.PreviewSummary)         // Price breakdown preview
		booking.DELETE("/:bookingID", bh.CancelBooking)     // User-initiated cancellation
	}

	memberships := r.Group("/api/memberships")
	memberships.Use(middleware.JWTAuthMiddleware())
	{
		memberships.GET("/eligibility", bh.GetEligibility)
	}
}

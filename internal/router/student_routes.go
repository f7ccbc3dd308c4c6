package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/studyroom-seat-reservation/internal/handler"
	"github.com/iliyamo/studyroom-seat-reservation/internal/middleware"
)

// RegisterStudent registers student-scoped endpoints under /v1.  All
// routes require a valid JWT; admins are also admitted so they can
// exercise the booking flow.  Students can search
// seat availability, create and cancel bookings, check in with a room
// code and view their own listings.  The optional rate limiter guards
// the booking-creation path against bursts.
func RegisterStudent(e *echo.Echo, h *handler.StudentHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("STUDENT", "ADMIN"),
	)

	// Availability search for one room and interval.
	g.GET("/search", h.SearchSeats)

	// Booking lifecycle.
	if limiter != nil {
		g.POST("/bookings", h.CreateBooking, limiter)
	} else {
		g.POST("/bookings", h.CreateBooking)
	}
	g.POST("/bookings/:id/cancel", h.CancelBooking)
	g.POST("/bookings/:id/checkin", h.CheckIn)

	// Personal listings.
	g.GET("/bookings", h.ListActive)
	g.GET("/bookings/history", h.ListHistory)
	g.GET("/checkin/eligible", h.EligibleCheckIns)
	g.GET("/favorites", h.Favorites)
}

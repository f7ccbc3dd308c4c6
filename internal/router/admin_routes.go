package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/studyroom-seat-reservation/internal/handler"
	"github.com/iliyamo/studyroom-seat-reservation/internal/middleware"
)

// RegisterAdmin registers ADMIN-scoped endpoints under /v1/admin.
// All routes require a valid JWT and the ADMIN role.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN"),
	)

	// ---- Rooms ----
	g.GET("/rooms", a.ListRooms)
	g.POST("/rooms", a.CreateRoom)
	g.PUT("/rooms/:id", a.UpdateRoom)
	g.PATCH("/rooms/:id", a.UpdateRoom)

	// ---- Verify codes ----
	g.GET("/rooms/:id/code", a.RoomCode)
	g.POST("/rooms/:id/code", a.RegenerateCode)

	// ---- Seats ----
	g.POST("/rooms/:id/seats", a.AddSeats)
	g.PATCH("/seats/:id/active", a.SetSeatActive)
	g.PATCH("/seats/:id/power_outlet", a.SetSeatPowerOutlet)

	// ---- Bookings and reports ----
	g.GET("/bookings", a.ListBookings)
	g.GET("/stats", a.Stats)
}

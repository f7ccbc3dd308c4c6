package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/studyroom-seat-reservation/internal/handler"    // import the handlers that implement business logic
	"github.com/iliyamo/studyroom-seat-reservation/internal/middleware" // import middleware for JWT authentication and role enforcement
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Used by load balancers and monitoring to verify the service is up.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes and applies
// the necessary middleware.  Unauthenticated operations live under
// /v1/auth, while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// /refresh rotates the refresh token; /refresh-access only issues a
	// fresh access token and leaves the session untouched.
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout does not require JWT authentication: the handler accepts
	// either a Bearer token (revoke all sessions) or a refresh_token in
	// the body (revoke one session).
	g.POST("/logout", a.Logout)

	// Profile endpoint, open to both roles.
	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret), middleware.RequireRole("STUDENT", "ADMIN"))
	auth.GET("/me", a.Me)
}

// RegisterPublic registers unauthenticated browse endpoints.  These
// return sanitized room and seat data (never verify codes) and are
// intended for guests deciding where to study.  The optional cache
// middleware is applied here because these listings are read-heavy and
// change rarely.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, cache echo.MiddlewareFunc) {
	mws := []echo.MiddlewareFunc{}
	if cache != nil {
		mws = append(mws, cache)
	}
	g := e.Group("/v1", mws...)
	// List of all active rooms, optionally filtered by ?building=.
	g.GET("/rooms", p.ListRooms)
	// Room detail together with its active seats.
	g.GET("/rooms/:id", p.GetRoom)
	// Seats of one room, optionally filtered by ?power=true.
	g.GET("/rooms/:id/seats", p.ListRoomSeats)
	// Distinct buildings that have at least one active room.
	g.GET("/buildings", p.ListBuildings)
}

package router // wires HTTP routes to handlers

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/office-room-booking/internal/handler"
	"github.com/iliyamo/office-room-booking/internal/middleware"
)

// RegisterRoutes registers routes that need no authentication.
// Currently that is only the health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication endpoints.  Token-issuing
// operations live under /v1/auth; /v1/me and /v1/logout-all require a
// valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.GET("/companies", a.ListCompanies) // directory for picking a company_id
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)               // rotates the refresh token
	g.POST("/refresh-access", a.RefreshAccess)  // new access token only
	g.POST("/logout", a.Logout)                 // revoke one session by refresh token

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
	auth.POST("/logout-all", a.LogoutAll)
}

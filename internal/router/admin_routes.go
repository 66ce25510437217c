package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/office-room-booking/internal/handler"
	"github.com/iliyamo/office-room-booking/internal/middleware"
)

// RegisterAdmin registers ADMIN-scoped management endpoints under
// /v1/admin.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN"),
	)

	// ---- Company ----
	g.GET("/company", a.GetCompany)
	g.PUT("/company", a.UpdateCompany)

	// ---- Employees ----
	g.GET("/employees", a.ListEmployees)
	g.POST("/employees", a.CreateEmployee)
	g.PATCH("/employees/:id", a.UpdateEmployeeRole)
	g.DELETE("/employees/:id", a.DeleteEmployee) // soft delete

	// ---- Rooms ----
	g.POST("/rooms", a.CreateRoom)
	g.PUT("/rooms/:id", a.UpdateRoom)
	g.PATCH("/rooms/:id", a.UpdateRoom)
	g.DELETE("/rooms/:id", a.DeleteRoom)
	g.GET("/rooms/:id/reservations", a.RoomReservations) // occupancy by ?date=

	// ---- Timeslots (global) ----
	g.POST("/timeslots", a.CreateTimeslot)
	g.PUT("/timeslots/:id", a.UpdateTimeslot)
	g.DELETE("/timeslots/:id", a.DeleteTimeslot)

	// ---- Company events ----
	g.POST("/events", a.CreateEvent)
	g.PUT("/events/:id", a.UpdateEvent)
	g.DELETE("/events/:id", a.DeleteEvent)
}

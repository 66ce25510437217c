package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/office-room-booking/internal/handler"
	"github.com/iliyamo/office-room-booking/internal/middleware"
)

// RegisterEmployee registers the booking and browse endpoints under
// /v1.  Admins keep access to everything an employee can do, so both
// roles are accepted here.
func RegisterEmployee(e *echo.Echo, att *handler.AttendanceHandler, br *handler.BrowseHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN", "EMPLOYEE"),
	)

	// Booking: the two creation paths and the two cancellation paths
	// are deliberately distinct.  /attendance cancels without a window;
	// /reservations/:id enforces the 24-hour rule.
	g.POST("/attendance", att.BookAttendance)
	g.PATCH("/attendance/:id", att.UpdateAttendance)
	g.DELETE("/attendance/:id", att.CancelAttendance)
	g.POST("/reservations", att.BookRoom)
	g.DELETE("/reservations/:id", att.CancelReservation)
	g.GET("/reservations/:id", att.GetReservation)
	g.GET("/my-reservations", att.ListMyReservations)

	// Browse
	g.GET("/rooms", br.ListRooms)
	g.GET("/rooms/:id", br.GetRoom)
	g.GET("/timeslots", br.ListTimeslots)
	g.GET("/events", br.ListEvents)

	// Reviews
	g.POST("/rooms/:id/reviews", br.CreateReview)
	g.GET("/rooms/:id/reviews", br.ListRoomReviews)
	g.DELETE("/reviews/:id", br.DeleteReview)

	// Achievements
	g.GET("/achievements", br.ListAchievements)
	g.GET("/my-achievements", br.MyAchievements)
}

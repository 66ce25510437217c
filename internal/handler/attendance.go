package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/office-room-booking/internal/booking"
	"github.com/iliyamo/office-room-booking/internal/repository"
)

// AttendanceHandler exposes the booking arbiter over HTTP.  All
// authorization beyond JWT validation (ownership, self-service) lives
// in the arbiter itself; the handler only parses input and maps the
// arbiter's errors onto statuses: NotFound 404, Unauthorized 401,
// Conflict 409, business-rule rejections 422.
type AttendanceHandler struct {
	Booking      *booking.Service
	Reservations *repository.ReservationRepo
}

func NewAttendanceHandler(svc *booking.Service, reservations *repository.ReservationRepo) *AttendanceHandler {
	if svc == nil || reservations == nil {
		panic("nil dependency passed to NewAttendanceHandler")
	}
	return &AttendanceHandler{Booking: svc, Reservations: reservations}
}

// bookingError translates arbiter errors into JSON responses.  Unknown
// errors become 500 without leaking internals.
func bookingError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, booking.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, booking.ErrUnauthorized):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not allowed"})
	case errors.Is(err, booking.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "slot already booked"})
	case errors.Is(err, booking.ErrTimeslotEnded):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "timeslot has already ended today"})
	case errors.Is(err, booking.ErrCancelTooSoon):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "reservation starts in less than 24 hours"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "booking failed"})
	}
}

// parseDate accepts "2006-01-02" or RFC3339.
func parseDate(s string) (time.Time, bool) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

type bookAttendanceReq struct {
	EmployeeID uint64 `json:"employee_id"`
	Date       string `json:"date"`
	RoomID     uint64 `json:"room_id"`
	TimeslotID uint64 `json:"timeslot_id"`
}

// BookAttendance handles POST /v1/attendance.  The employee_id in the
// body must match the caller; booking for someone else is rejected by
// the arbiter.
func (h *AttendanceHandler) BookAttendance(c echo.Context) error {
	callerID, err := getEmployeeID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	companyID, err := getCompanyID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req bookAttendanceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.EmployeeID == 0 {
		req.EmployeeID = callerID
	}
	if req.RoomID == 0 || req.TimeslotID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "room_id and timeslot_id required"})
	}
	date, ok := parseDate(req.Date)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}

	detail, err := h.Booking.BookAttendance(c.Request().Context(), booking.BookAttendanceParams{
		EmployeeID:           req.EmployeeID,
		Date:                 date,
		RoomID:               req.RoomID,
		TimeslotID:           req.TimeslotID,
		CompanyID:            companyID,
		RequestingEmployeeID: callerID,
	})
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": detail})
}

type bookRoomReq struct {
	Date       string `json:"date"`
	RoomID     uint64 `json:"room_id"`
	TimeslotID uint64 `json:"timeslot_id"`
}

// BookRoom handles POST /v1/reservations.  The company scope is derived
// from the room, and same-day bookings of ended timeslots are rejected.
func (h *AttendanceHandler) BookRoom(c echo.Context) error {
	callerID, err := getEmployeeID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req bookRoomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.RoomID == 0 || req.TimeslotID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "room_id and timeslot_id required"})
	}
	date, ok := parseDate(req.Date)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}

	detail, err := h.Booking.BookRoomForEmployee(c.Request().Context(), callerID, booking.BookRoomRequest{
		Date:       date,
		RoomID:     req.RoomID,
		TimeslotID: req.TimeslotID,
	})
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": detail})
}

type updateAttendanceReq struct {
	Date       *string `json:"date"`
	RoomID     *uint64 `json:"room_id"`
	TimeslotID *uint64 `json:"timeslot_id"`
}

// UpdateAttendance handles PATCH /v1/attendance/:id.  Omitted fields
// keep their current values.
func (h *AttendanceHandler) UpdateAttendance(c echo.Context) error {
	callerID, err := getEmployeeID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	resID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var req updateAttendanceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	params := booking.UpdateAttendanceParams{
		ReservationID:        resID,
		NewRoomID:            req.RoomID,
		NewTimeslotID:        req.TimeslotID,
		RequestingEmployeeID: callerID,
	}
	if req.Date != nil {
		date, ok := parseDate(*req.Date)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
		}
		params.NewDate = &date
	}

	if err := h.Booking.UpdateAttendance(c.Request().Context(), params); err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "reservation updated"})
}

// CancelAttendance handles DELETE /v1/attendance/:id — the lenient
// cancellation path with no time-window rule.
func (h *AttendanceHandler) CancelAttendance(c echo.Context) error {
	callerID, err := getEmployeeID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	resID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	if err := h.Booking.CancelAttendance(c.Request().Context(), resID, callerID); err != nil {
		return bookingError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// CancelReservation handles DELETE /v1/reservations/:id — the strict
// path that refuses cancellations within 24 hours of the slot start.
func (h *AttendanceHandler) CancelReservation(c echo.Context) error {
	callerID, err := getEmployeeID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	resID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	if err := h.Booking.CancelReservationByID(c.Request().Context(), resID, callerID); err != nil {
		return bookingError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListMyReservations handles GET /v1/my-reservations.
func (h *AttendanceHandler) ListMyReservations(c echo.Context) error {
	callerID, err := getEmployeeID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Reservations.ListByEmployee(c.Request().Context(), callerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reservations"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetReservation handles GET /v1/reservations/:id.  Only the owner can
// see a reservation; foreign ones read as missing.
func (h *AttendanceHandler) GetReservation(c echo.Context) error {
	callerID, err := getEmployeeID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	resID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	ctx := c.Request().Context()
	detail, err := h.Reservations.GetDetail(ctx, resID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch reservation"})
	}
	if detail.EmployeeID != callerID {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": detail})
}

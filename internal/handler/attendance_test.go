package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/office-room-booking/internal/booking"
	"github.com/iliyamo/office-room-booking/internal/model"
	"github.com/iliyamo/office-room-booking/internal/repository"
)

// Minimal in-memory stores backing a real arbiter, so the handler tests
// exercise the same error mapping the server runs in production.

type stubEmployees struct{ byID map[uint64]*model.Employee }

func (s *stubEmployees) GetByID(ctx context.Context, id uint64) (*model.Employee, error) {
	if e, ok := s.byID[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, repository.ErrEmployeeNotFound
}
func (s *stubEmployees) IncrementRoomsBooked(ctx context.Context, id uint64) error { return nil }

type stubRooms struct{ byID map[uint64]*model.Room }

func (s *stubRooms) GetByID(ctx context.Context, id uint64) (*model.Room, error) {
	if r, ok := s.byID[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, repository.ErrRoomNotFound
}

type stubTimeslots struct{ byID map[uint64]*model.Timeslot }

func (s *stubTimeslots) GetByID(ctx context.Context, id uint64) (*model.Timeslot, error) {
	if t, ok := s.byID[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, repository.ErrTimeslotNotFound
}

type stubReservations struct {
	nextID uint64
	byID   map[uint64]*model.Reservation
}

func (s *stubReservations) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	if r, ok := s.byID[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, repository.ErrReservationNotFound
}

func (s *stubReservations) ExistsExact(ctx context.Context, employeeID, roomID, timeslotID, companyID uint64, date time.Time) (bool, error) {
	for _, r := range s.byID {
		if r.EmployeeID == employeeID && r.RoomID == roomID && r.TimeslotID == timeslotID &&
			r.CompanyID == companyID && r.Date.Equal(date) {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubReservations) RoomOccupied(ctx context.Context, companyID, roomID, timeslotID uint64, date time.Time, excludeID uint64) (bool, error) {
	for _, r := range s.byID {
		if r.ID != excludeID && r.CompanyID == companyID && r.RoomID == roomID &&
			r.TimeslotID == timeslotID && r.Date.Equal(date) {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubReservations) EmployeeOccupied(ctx context.Context, employeeID, timeslotID uint64, date time.Time) (bool, error) {
	for _, r := range s.byID {
		if r.EmployeeID == employeeID && r.TimeslotID == timeslotID && r.Date.Equal(date) {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubReservations) Create(ctx context.Context, res *model.Reservation) error {
	s.nextID++
	res.ID = s.nextID
	cp := *res
	s.byID[res.ID] = &cp
	return nil
}

func (s *stubReservations) Update(ctx context.Context, res *model.Reservation) error {
	if _, ok := s.byID[res.ID]; !ok {
		return repository.ErrReservationNotFound
	}
	cp := *res
	s.byID[res.ID] = &cp
	return nil
}

func (s *stubReservations) Delete(ctx context.Context, id uint64) error {
	if _, ok := s.byID[id]; !ok {
		return repository.ErrReservationNotFound
	}
	delete(s.byID, id)
	return nil
}

func newTestHandler(t *testing.T) (*AttendanceHandler, *stubReservations) {
	t.Helper()
	employees := &stubEmployees{byID: map[uint64]*model.Employee{
		10: {ID: 10, CompanyID: 1, Email: "e1@acme.test", Status: model.EmployeeStatusActive},
		11: {ID: 11, CompanyID: 1, Email: "e2@acme.test", Status: model.EmployeeStatusActive},
	}}
	rooms := &stubRooms{byID: map[uint64]*model.Room{
		100: {ID: 100, CompanyID: 1, Name: "Boardroom", Capacity: 8},
	}}
	slots := &stubTimeslots{byID: map[uint64]*model.Timeslot{
		200: {ID: 200, StartTime: "09:00:00", EndTime: "10:00:00"},
	}}
	reservations := &stubReservations{byID: map[uint64]*model.Reservation{}}

	now := func() time.Time { return time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC) }
	svc := booking.NewService(employees, rooms, slots, reservations, nil, zap.NewNop(), now)
	return &AttendanceHandler{Booking: svc}, reservations
}

func doJSON(t *testing.T, h echo.HandlerFunc, method, target, body string,
	employeeID, companyID uint64, params map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("employee_id", float64(employeeID))
	c.Set("company_id", float64(companyID))
	for k, v := range params {
		c.SetParamNames(k)
		c.SetParamValues(v)
	}
	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec
}

func TestBookAttendanceEndpoint(t *testing.T) {
	h, _ := newTestHandler(t)
	body := `{"date":"2025-06-10","room_id":100,"timeslot_id":200}`

	rec := doJSON(t, h.BookAttendance, http.MethodPost, "/v1/attendance", body, 10, 1, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Item model.ReservationDetail `json:"item"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Item.Room.ID != 100 || resp.Item.Reference == "" {
		t.Errorf("unexpected detail: %+v", resp.Item)
	}

	// Booking the slot again, as anyone, conflicts.
	rec = doJSON(t, h.BookAttendance, http.MethodPost, "/v1/attendance", body, 11, 1, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("second booking: status = %d, want 409", rec.Code)
	}
}

func TestBookAttendanceEndpointRejectsOtherEmployee(t *testing.T) {
	h, _ := newTestHandler(t)
	body := `{"employee_id":11,"date":"2025-06-10","room_id":100,"timeslot_id":200}`

	rec := doJSON(t, h.BookAttendance, http.MethodPost, "/v1/attendance", body, 10, 1, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestBookAttendanceEndpointBadInput(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doJSON(t, h.BookAttendance, http.MethodPost, "/v1/attendance",
		`{"date":"not-a-date","room_id":100,"timeslot_id":200}`, 10, 1, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad date: status = %d, want 400", rec.Code)
	}

	rec = doJSON(t, h.BookAttendance, http.MethodPost, "/v1/attendance",
		`{"date":"2025-06-10"}`, 10, 1, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing ids: status = %d, want 400", rec.Code)
	}
}

func TestCancelEndpointsDifferInWindowPolicy(t *testing.T) {
	h, _ := newTestHandler(t)

	// Book for today (2025-06-02) at 09:00 via the on-behalf path; the
	// pinned clock reads 08:00, one hour before start.
	rec := doJSON(t, h.BookRoom, http.MethodPost, "/v1/reservations",
		`{"date":"2025-06-02","room_id":100,"timeslot_id":200}`, 10, 1, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("booking: status = %d, body %s", rec.Code, rec.Body.String())
	}
	// Strict path: inside the 24h window -> 422.
	rec = doJSON(t, h.CancelReservation, http.MethodDelete, "/v1/reservations/1", "",
		10, 1, map[string]string{"id": "1"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("strict cancel: status = %d, want 422", rec.Code)
	}

	// Lenient path: same reservation deletes fine.
	rec = doJSON(t, h.CancelAttendance, http.MethodDelete, "/v1/attendance/1", "",
		10, 1, map[string]string{"id": "1"})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("lenient cancel: status = %d, want 204", rec.Code)
	}
}

func TestCancelAttendanceEndpointOwnership(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doJSON(t, h.BookAttendance, http.MethodPost, "/v1/attendance",
		`{"date":"2025-06-10","room_id":100,"timeslot_id":200}`, 10, 1, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("booking: status = %d", rec.Code)
	}

	rec = doJSON(t, h.CancelAttendance, http.MethodDelete, "/v1/attendance/1", "",
		11, 1, map[string]string{"id": "1"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("foreign cancel: status = %d, want 401", rec.Code)
	}

	rec = doJSON(t, h.CancelAttendance, http.MethodDelete, "/v1/attendance/99", "",
		10, 1, map[string]string{"id": "99"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing reservation: status = %d, want 404", rec.Code)
	}
}

func TestUpdateAttendanceEndpoint(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doJSON(t, h.BookAttendance, http.MethodPost, "/v1/attendance",
		`{"date":"2025-06-10","room_id":100,"timeslot_id":200}`, 10, 1, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("booking: status = %d", rec.Code)
	}

	rec = doJSON(t, h.UpdateAttendance, http.MethodPatch, "/v1/attendance/1",
		`{"date":"2025-06-11"}`, 10, 1, map[string]string{"id": "1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("update: status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h.UpdateAttendance, http.MethodPatch, "/v1/attendance/1",
		`{"room_id":999}`, 10, 1, map[string]string{"id": "1"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("update to missing room: status = %d, want 404", rec.Code)
	}
}

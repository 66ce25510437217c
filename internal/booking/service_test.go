package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/office-room-booking/internal/model"
	"github.com/iliyamo/office-room-booking/internal/queue"
	"github.com/iliyamo/office-room-booking/internal/repository"
)

// ---- in-memory stores -------------------------------------------------

type employeeStoreStub struct {
	employees  map[uint64]*model.Employee
	increments map[uint64]int
	err        error
}

func (s *employeeStoreStub) GetByID(ctx context.Context, id uint64) (*model.Employee, error) {
	if s.err != nil {
		return nil, s.err
	}
	e, ok := s.employees[id]
	if !ok {
		return nil, repository.ErrEmployeeNotFound
	}
	cp := *e
	return &cp, nil
}

func (s *employeeStoreStub) IncrementRoomsBooked(ctx context.Context, id uint64) error {
	if s.increments == nil {
		s.increments = map[uint64]int{}
	}
	s.increments[id]++
	if e, ok := s.employees[id]; ok {
		e.RoomsBooked++
	}
	return nil
}

type roomStoreStub struct {
	rooms map[uint64]*model.Room
}

func (s *roomStoreStub) GetByID(ctx context.Context, id uint64) (*model.Room, error) {
	r, ok := s.rooms[id]
	if !ok {
		return nil, repository.ErrRoomNotFound
	}
	cp := *r
	return &cp, nil
}

type timeslotStoreStub struct {
	slots map[uint64]*model.Timeslot
}

func (s *timeslotStoreStub) GetByID(ctx context.Context, id uint64) (*model.Timeslot, error) {
	t, ok := s.slots[id]
	if !ok {
		return nil, repository.ErrTimeslotNotFound
	}
	cp := *t
	return &cp, nil
}

// reservationStoreStub keeps reservations in a slice and enforces the
// same unique keys the MySQL schema declares, so racing inserts fail
// with repository.ErrConflict exactly like production.
type reservationStoreStub struct {
	nextID       uint64
	reservations map[uint64]*model.Reservation
	createErr    error
}

func newReservationStore() *reservationStoreStub {
	return &reservationStoreStub{nextID: 1, reservations: map[uint64]*model.Reservation{}}
}

func (s *reservationStoreStub) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	r, ok := s.reservations[id]
	if !ok {
		return nil, repository.ErrReservationNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *reservationStoreStub) ExistsExact(ctx context.Context, employeeID, roomID, timeslotID, companyID uint64, date time.Time) (bool, error) {
	for _, r := range s.reservations {
		if r.EmployeeID == employeeID && r.RoomID == roomID && r.TimeslotID == timeslotID &&
			r.CompanyID == companyID && r.Date.Equal(date) {
			return true, nil
		}
	}
	return false, nil
}

func (s *reservationStoreStub) RoomOccupied(ctx context.Context, companyID, roomID, timeslotID uint64, date time.Time, excludeID uint64) (bool, error) {
	for _, r := range s.reservations {
		if r.ID == excludeID {
			continue
		}
		if r.CompanyID == companyID && r.RoomID == roomID && r.TimeslotID == timeslotID && r.Date.Equal(date) {
			return true, nil
		}
	}
	return false, nil
}

func (s *reservationStoreStub) EmployeeOccupied(ctx context.Context, employeeID, timeslotID uint64, date time.Time) (bool, error) {
	for _, r := range s.reservations {
		if r.EmployeeID == employeeID && r.TimeslotID == timeslotID && r.Date.Equal(date) {
			return true, nil
		}
	}
	return false, nil
}

func (s *reservationStoreStub) uniqueViolated(res *model.Reservation) bool {
	for _, r := range s.reservations {
		if r.ID == res.ID {
			continue
		}
		if r.CompanyID == res.CompanyID && r.RoomID == res.RoomID &&
			r.TimeslotID == res.TimeslotID && r.Date.Equal(res.Date) {
			return true
		}
		if r.EmployeeID == res.EmployeeID && r.TimeslotID == res.TimeslotID && r.Date.Equal(res.Date) {
			return true
		}
	}
	return false
}

func (s *reservationStoreStub) Create(ctx context.Context, res *model.Reservation) error {
	if s.createErr != nil {
		return s.createErr
	}
	if s.uniqueViolated(res) {
		return repository.ErrConflict
	}
	res.ID = s.nextID
	s.nextID++
	res.CreatedAt = time.Now().UTC()
	cp := *res
	s.reservations[res.ID] = &cp
	return nil
}

func (s *reservationStoreStub) Update(ctx context.Context, res *model.Reservation) error {
	if _, ok := s.reservations[res.ID]; !ok {
		return repository.ErrReservationNotFound
	}
	if s.uniqueViolated(res) {
		return repository.ErrConflict
	}
	cp := *res
	s.reservations[res.ID] = &cp
	return nil
}

func (s *reservationStoreStub) Delete(ctx context.Context, id uint64) error {
	if _, ok := s.reservations[id]; !ok {
		return repository.ErrReservationNotFound
	}
	delete(s.reservations, id)
	return nil
}

type publisherStub struct {
	events []queue.ReservationCreatedEvent
	err    error
}

func (p *publisherStub) PublishReservationCreated(ctx context.Context, ev queue.ReservationCreatedEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

// ---- fixture ----------------------------------------------------------

type fixture struct {
	employees    *employeeStoreStub
	rooms        *roomStoreStub
	timeslots    *timeslotStoreStub
	reservations *reservationStoreStub
	publisher    *publisherStub
	now          time.Time
	svc          *Service
}

// newFixture builds a service over one company (1) with employees E1=10
// and E2=11, room R1=100 and timeslots T1=200 (09:00-10:00) and T2=201
// (06:00-07:00).  The clock is pinned to 2025-06-02 08:00 UTC.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		employees: &employeeStoreStub{employees: map[uint64]*model.Employee{
			10: {ID: 10, CompanyID: 1, Email: "e1@acme.test", Status: model.EmployeeStatusActive},
			11: {ID: 11, CompanyID: 1, Email: "e2@acme.test", Status: model.EmployeeStatusActive},
			12: {ID: 12, CompanyID: 1, Email: "gone@acme.test", Status: model.EmployeeStatusDeleted},
		}},
		rooms: &roomStoreStub{rooms: map[uint64]*model.Room{
			100: {ID: 100, CompanyID: 1, Name: "Boardroom", Capacity: 8},
			101: {ID: 101, CompanyID: 2, Name: "Other Co Room", Capacity: 4},
		}},
		timeslots: &timeslotStoreStub{slots: map[uint64]*model.Timeslot{
			200: {ID: 200, StartTime: "09:00:00", EndTime: "10:00:00"},
			201: {ID: 201, StartTime: "06:00:00", EndTime: "07:00:00"},
		}},
		reservations: newReservationStore(),
		publisher:    &publisherStub{},
		now:          time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC),
	}
	f.svc = NewService(f.employees, f.rooms, f.timeslots, f.reservations,
		f.publisher, zap.NewNop(), func() time.Time { return f.now })
	return f
}

func (f *fixture) bookParams(employeeID uint64, date time.Time) BookAttendanceParams {
	return BookAttendanceParams{
		EmployeeID:           employeeID,
		Date:                 date,
		RoomID:               100,
		TimeslotID:           200,
		CompanyID:            1,
		RequestingEmployeeID: employeeID,
	}
}

var day = time.Date(2025, 6, 10, 15, 30, 0, 0, time.UTC) // arbitrary time-of-day, normalized by the arbiter

// ---- BookAttendance ---------------------------------------------------

func TestBookAttendanceSuccess(t *testing.T) {
	f := newFixture(t)

	det, err := f.svc.BookAttendance(context.Background(), f.bookParams(10, day))
	if err != nil {
		t.Fatalf("BookAttendance: %v", err)
	}
	if det.Room.ID != 100 || det.Timeslot.ID != 200 {
		t.Errorf("detail not joined with room/timeslot: %+v", det)
	}
	if want := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC); !det.Date.Equal(want) {
		t.Errorf("date not normalized: got %v want %v", det.Date, want)
	}
	if det.Reference == "" {
		t.Error("expected a reference UUID")
	}
	if got := f.employees.increments[10]; got != 1 {
		t.Errorf("rooms_booked increments = %d, want 1", got)
	}
	if len(f.publisher.events) != 1 {
		t.Fatalf("published events = %d, want 1", len(f.publisher.events))
	}
	if ev := f.publisher.events[0]; ev.EmployeeID != 10 || ev.Date != "2025-06-10" {
		t.Errorf("unexpected event payload: %+v", ev)
	}
}

func TestBookAttendanceRejectsActingForSomeoneElse(t *testing.T) {
	f := newFixture(t)
	p := f.bookParams(10, day)
	p.RequestingEmployeeID = 11

	if _, err := f.svc.BookAttendance(context.Background(), p); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
	if len(f.reservations.reservations) != 0 {
		t.Error("reservation must not be created")
	}
}

func TestBookAttendanceMissingOrDeletedEmployee(t *testing.T) {
	f := newFixture(t)

	if _, err := f.svc.BookAttendance(context.Background(), f.bookParams(99, day)); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing employee: err = %v, want ErrNotFound", err)
	}
	if _, err := f.svc.BookAttendance(context.Background(), f.bookParams(12, day)); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted employee: err = %v, want ErrNotFound", err)
	}
}

func TestBookAttendanceDuplicateTupleConflicts(t *testing.T) {
	f := newFixture(t)

	if _, err := f.svc.BookAttendance(context.Background(), f.bookParams(10, day)); err != nil {
		t.Fatalf("first booking: %v", err)
	}
	if _, err := f.svc.BookAttendance(context.Background(), f.bookParams(10, day)); !errors.Is(err, ErrConflict) {
		t.Fatalf("idempotent duplicate: err = %v, want ErrConflict", err)
	}
	if got := f.employees.increments[10]; got != 1 {
		t.Errorf("counter bumped on failed duplicate: increments = %d", got)
	}
}

func TestBookAttendanceRoomExclusivity(t *testing.T) {
	f := newFixture(t)

	if _, err := f.svc.BookAttendance(context.Background(), f.bookParams(10, day)); err != nil {
		t.Fatalf("E1 booking: %v", err)
	}
	// Same room/slot/date, different employee.
	if _, err := f.svc.BookAttendance(context.Background(), f.bookParams(11, day)); !errors.Is(err, ErrConflict) {
		t.Fatalf("E2 booking: err = %v, want ErrConflict", err)
	}
}

func TestBookAttendanceRoomChecks(t *testing.T) {
	f := newFixture(t)

	p := f.bookParams(10, day)
	p.RoomID = 999
	if _, err := f.svc.BookAttendance(context.Background(), p); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing room: err = %v, want ErrNotFound", err)
	}

	// Room 101 belongs to company 2; caller claims company 1.
	p = f.bookParams(10, day)
	p.RoomID = 101
	if _, err := f.svc.BookAttendance(context.Background(), p); !errors.Is(err, ErrNotFound) {
		t.Errorf("cross-company room: err = %v, want ErrNotFound", err)
	}

	p = f.bookParams(10, day)
	p.TimeslotID = 999
	if _, err := f.svc.BookAttendance(context.Background(), p); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing timeslot: err = %v, want ErrNotFound", err)
	}
}

func TestBookAttendanceSurfacesStorageConflict(t *testing.T) {
	// Even when the pre-checks see a free slot, a duplicate-key error
	// from the store must come back as ErrConflict (the closed race).
	f := newFixture(t)
	f.reservations.createErr = repository.ErrConflict

	if _, err := f.svc.BookAttendance(context.Background(), f.bookParams(10, day)); !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
}

// ---- BookRoomForEmployee ----------------------------------------------

func TestBookRoomForEmployeeUsesRoomCompany(t *testing.T) {
	f := newFixture(t)

	det, err := f.svc.BookRoomForEmployee(context.Background(), 10,
		BookRoomRequest{Date: day, RoomID: 100, TimeslotID: 200})
	if err != nil {
		t.Fatalf("BookRoomForEmployee: %v", err)
	}
	if det.CompanyID != 1 {
		t.Errorf("company taken from room: got %d want 1", det.CompanyID)
	}
	if got := f.employees.increments[10]; got != 1 {
		t.Errorf("rooms_booked increments = %d, want 1", got)
	}
}

func TestBookRoomForEmployeeRejectsEndedTimeslotToday(t *testing.T) {
	f := newFixture(t)
	today := f.now // 08:00 UTC; slot 201 ended at 07:00

	_, err := f.svc.BookRoomForEmployee(context.Background(), 10,
		BookRoomRequest{Date: today, RoomID: 100, TimeslotID: 201})
	if !errors.Is(err, ErrTimeslotEnded) {
		t.Fatalf("err = %v, want ErrTimeslotEnded", err)
	}

	// The same slot on a future date is fine.
	if _, err := f.svc.BookRoomForEmployee(context.Background(), 10,
		BookRoomRequest{Date: day, RoomID: 100, TimeslotID: 201}); err != nil {
		t.Fatalf("future date: %v", err)
	}
}

func TestBookRoomForEmployeeEmployeeLevelConflict(t *testing.T) {
	f := newFixture(t)

	// E1 already holds room 100 for slot 200 on day.
	if _, err := f.svc.BookAttendance(context.Background(), f.bookParams(10, day)); err != nil {
		t.Fatalf("setup booking: %v", err)
	}
	// A second room would put E1 in two places at once.
	f.rooms.rooms[102] = &model.Room{ID: 102, CompanyID: 1, Name: "Annex", Capacity: 2}
	_, err := f.svc.BookRoomForEmployee(context.Background(), 10,
		BookRoomRequest{Date: day, RoomID: 102, TimeslotID: 200})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
}

// ---- cancellation -----------------------------------------------------

func TestCancelAttendanceOwnershipAndLifecycle(t *testing.T) {
	f := newFixture(t)

	det, err := f.svc.BookAttendance(context.Background(), f.bookParams(10, day))
	if err != nil {
		t.Fatalf("booking: %v", err)
	}

	if err := f.svc.CancelAttendance(context.Background(), det.ID, 11); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("foreign cancel: err = %v, want ErrUnauthorized", err)
	}
	if _, ok := f.reservations.reservations[det.ID]; !ok {
		t.Fatal("foreign cancel must not delete the record")
	}

	if err := f.svc.CancelAttendance(context.Background(), det.ID, 10); err != nil {
		t.Fatalf("owner cancel: %v", err)
	}
	if err := f.svc.CancelAttendance(context.Background(), det.ID, 10); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second cancel: err = %v, want ErrNotFound", err)
	}

	// The slot is free again for someone else.
	if _, err := f.svc.BookAttendance(context.Background(), f.bookParams(11, day)); err != nil {
		t.Fatalf("rebooking after cancel: %v", err)
	}
}

func TestCancelReservationByIDEnforcesWindowButCancelAttendanceDoesNot(t *testing.T) {
	f := newFixture(t)

	// Slot 200 starts at 09:00 on 2025-06-02; the clock reads 08:00 the
	// same day, i.e. one hour of lead time.
	det, err := f.svc.BookRoomForEmployee(context.Background(), 10,
		BookRoomRequest{Date: f.now, RoomID: 100, TimeslotID: 200})
	if err != nil {
		t.Fatalf("booking: %v", err)
	}

	if err := f.svc.CancelReservationByID(context.Background(), det.ID, 10); !errors.Is(err, ErrCancelTooSoon) {
		t.Fatalf("strict cancel: err = %v, want ErrCancelTooSoon", err)
	}
	if _, ok := f.reservations.reservations[det.ID]; !ok {
		t.Fatal("rejected cancel must not delete the record")
	}

	// The lenient path ignores the window entirely.
	if err := f.svc.CancelAttendance(context.Background(), det.ID, 10); err != nil {
		t.Fatalf("lenient cancel: %v", err)
	}
}

func TestCancelReservationByIDAllowsOutsideWindow(t *testing.T) {
	f := newFixture(t)

	det, err := f.svc.BookAttendance(context.Background(), f.bookParams(10, day)) // 8 days out
	if err != nil {
		t.Fatalf("booking: %v", err)
	}
	if err := f.svc.CancelReservationByID(context.Background(), det.ID, 10); err != nil {
		t.Fatalf("cancel outside window: %v", err)
	}
}

func TestCancelReservationByIDOwnership(t *testing.T) {
	f := newFixture(t)

	det, err := f.svc.BookAttendance(context.Background(), f.bookParams(10, day))
	if err != nil {
		t.Fatalf("booking: %v", err)
	}
	if err := f.svc.CancelReservationByID(context.Background(), det.ID, 11); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}

// ---- UpdateAttendance --------------------------------------------------

func TestUpdateAttendanceDateOnlyStillConflictChecks(t *testing.T) {
	f := newFixture(t)

	otherDay := day.AddDate(0, 0, 1)
	// E1 holds the slot on day, E2 on otherDay.
	det1, err := f.svc.BookAttendance(context.Background(), f.bookParams(10, day))
	if err != nil {
		t.Fatalf("E1 booking: %v", err)
	}
	if _, err := f.svc.BookAttendance(context.Background(), f.bookParams(11, otherDay)); err != nil {
		t.Fatalf("E2 booking: %v", err)
	}

	// Moving E1 onto E2's day, same room and slot, must conflict.
	err = f.svc.UpdateAttendance(context.Background(), UpdateAttendanceParams{
		ReservationID:        det1.ID,
		NewDate:              &otherDay,
		RequestingEmployeeID: 10,
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
}

func TestUpdateAttendanceDefaultsOmittedFields(t *testing.T) {
	f := newFixture(t)

	det, err := f.svc.BookAttendance(context.Background(), f.bookParams(10, day))
	if err != nil {
		t.Fatalf("booking: %v", err)
	}
	newDay := day.AddDate(0, 0, 2)
	if err := f.svc.UpdateAttendance(context.Background(), UpdateAttendanceParams{
		ReservationID:        det.ID,
		NewDate:              &newDay,
		RequestingEmployeeID: 10,
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	got := f.reservations.reservations[det.ID]
	if !got.Date.Equal(model.NormalizeDate(newDay)) {
		t.Errorf("date = %v, want %v", got.Date, model.NormalizeDate(newDay))
	}
	if got.RoomID != 100 || got.TimeslotID != 200 {
		t.Errorf("room/timeslot changed unexpectedly: %+v", got)
	}
}

func TestUpdateAttendanceExcludesItselfFromConflictCheck(t *testing.T) {
	f := newFixture(t)

	det, err := f.svc.BookAttendance(context.Background(), f.bookParams(10, day))
	if err != nil {
		t.Fatalf("booking: %v", err)
	}
	// A no-op update must not collide with the reservation's own row.
	if err := f.svc.UpdateAttendance(context.Background(), UpdateAttendanceParams{
		ReservationID:        det.ID,
		RequestingEmployeeID: 10,
	}); err != nil {
		t.Fatalf("no-op update: %v", err)
	}
}

func TestUpdateAttendanceValidatesNewRoomAndTimeslot(t *testing.T) {
	f := newFixture(t)

	det, err := f.svc.BookAttendance(context.Background(), f.bookParams(10, day))
	if err != nil {
		t.Fatalf("booking: %v", err)
	}

	badRoom := uint64(999)
	if err := f.svc.UpdateAttendance(context.Background(), UpdateAttendanceParams{
		ReservationID: det.ID, NewRoomID: &badRoom, RequestingEmployeeID: 10,
	}); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing room: err = %v, want ErrNotFound", err)
	}

	foreignRoom := uint64(101) // company 2
	if err := f.svc.UpdateAttendance(context.Background(), UpdateAttendanceParams{
		ReservationID: det.ID, NewRoomID: &foreignRoom, RequestingEmployeeID: 10,
	}); !errors.Is(err, ErrNotFound) {
		t.Errorf("cross-company room: err = %v, want ErrNotFound", err)
	}

	badSlot := uint64(999)
	if err := f.svc.UpdateAttendance(context.Background(), UpdateAttendanceParams{
		ReservationID: det.ID, NewTimeslotID: &badSlot, RequestingEmployeeID: 10,
	}); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing timeslot: err = %v, want ErrNotFound", err)
	}
}

func TestUpdateAttendanceOwnership(t *testing.T) {
	f := newFixture(t)

	det, err := f.svc.BookAttendance(context.Background(), f.bookParams(10, day))
	if err != nil {
		t.Fatalf("booking: %v", err)
	}
	if err := f.svc.UpdateAttendance(context.Background(), UpdateAttendanceParams{
		ReservationID:        det.ID,
		RequestingEmployeeID: 11,
	}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}

// ---- misc -------------------------------------------------------------

func TestBookingSucceedsWhenPublisherFails(t *testing.T) {
	f := newFixture(t)
	f.publisher.err = errors.New("broker down")

	if _, err := f.svc.BookAttendance(context.Background(), f.bookParams(10, day)); err != nil {
		t.Fatalf("booking must not fail on publish errors: %v", err)
	}
}

func TestFullScenarioBookConflictCancelRebook(t *testing.T) {
	// Room R1, slot T1, date D: E1 books, E2 conflicts, E1 cancels via
	// the lenient path, then E2 books successfully.
	f := newFixture(t)

	det, err := f.svc.BookAttendance(context.Background(), f.bookParams(10, day))
	if err != nil {
		t.Fatalf("E1 books: %v", err)
	}
	if got := f.employees.increments[10]; got != 1 {
		t.Fatalf("E1 rooms_booked increments = %d, want 1", got)
	}
	if _, err := f.svc.BookAttendance(context.Background(), f.bookParams(11, day)); !errors.Is(err, ErrConflict) {
		t.Fatalf("E2 books occupied slot: err = %v, want ErrConflict", err)
	}
	if err := f.svc.CancelAttendance(context.Background(), det.ID, 10); err != nil {
		t.Fatalf("E1 cancels: %v", err)
	}
	if _, err := f.svc.BookAttendance(context.Background(), f.bookParams(11, day)); err != nil {
		t.Fatalf("E2 rebooks freed slot: %v", err)
	}
}

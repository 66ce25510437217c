// Package booking implements the room-booking arbiter: the single place
// that decides whether a reservation may be created, updated or
// cancelled.  It enforces room exclusivity per (company, room, timeslot,
// date), one-room-per-employee per (timeslot, date), ownership of every
// mutation, and the temporal windows (no booking an already-ended slot
// today, no cancellation within 24 hours of the slot start on the
// strict cancellation path).
//
// The arbiter checks before it writes, which keeps error messages
// specific, and relies on the reservation store's unique keys to close
// the remaining check-then-act window: a concurrent double booking that
// passes the checks still comes back from Create as a conflict.
package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/office-room-booking/internal/model"
	"github.com/iliyamo/office-room-booking/internal/queue"
	"github.com/iliyamo/office-room-booking/internal/repository"
)

// Arbiter failure taxonomy.  Handlers map these onto HTTP statuses:
// ErrNotFound → 404, ErrUnauthorized → 401, ErrConflict → 409, and the
// two business-rule rejections → 422.
var (
	ErrNotFound      = errors.New("not found")
	ErrUnauthorized  = errors.New("not allowed to act on another employee's reservation")
	ErrConflict      = errors.New("slot already booked")
	ErrTimeslotEnded = errors.New("timeslot has already ended today")
	ErrCancelTooSoon = errors.New("reservation starts in less than 24 hours")
)

// cancelWindow is the minimum lead time CancelReservationByID requires
// between "now" and the reservation's start instant.
const cancelWindow = 24 * time.Hour

// EmployeeStore is the slice of the employee repository the arbiter
// needs.
type EmployeeStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Employee, error)
	IncrementRoomsBooked(ctx context.Context, id uint64) error
}

// RoomStore resolves rooms for existence and company-match checks.
type RoomStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Room, error)
}

// TimeslotStore resolves timeslots for existence and window checks.
type TimeslotStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Timeslot, error)
}

// ReservationStore is the reservation persistence surface.  Create and
// Update must report unique-key violations as repository.ErrConflict.
type ReservationStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Reservation, error)
	ExistsExact(ctx context.Context, employeeID, roomID, timeslotID, companyID uint64, date time.Time) (bool, error)
	RoomOccupied(ctx context.Context, companyID, roomID, timeslotID uint64, date time.Time, excludeID uint64) (bool, error)
	EmployeeOccupied(ctx context.Context, employeeID, timeslotID uint64, date time.Time) (bool, error)
	Create(ctx context.Context, res *model.Reservation) error
	Update(ctx context.Context, res *model.Reservation) error
	Delete(ctx context.Context, id uint64) error
}

// EventPublisher emits reservation.created events.  Publishing is
// best-effort: the arbiter logs failures and never fails a booking on
// them.
type EventPublisher interface {
	PublishReservationCreated(ctx context.Context, ev queue.ReservationCreatedEvent) error
}

// Service is the booking arbiter.  The now func is injectable so tests
// can pin the clock.
type Service struct {
	employees    EmployeeStore
	rooms        RoomStore
	timeslots    TimeslotStore
	reservations ReservationStore
	publisher    EventPublisher
	logger       *zap.Logger
	now          func() time.Time
}

// NewService wires the arbiter.  publisher may be nil when no broker is
// configured.
func NewService(employees EmployeeStore, rooms RoomStore, timeslots TimeslotStore,
	reservations ReservationStore, publisher EventPublisher, logger *zap.Logger,
	now func() time.Time) *Service {
	if employees == nil || rooms == nil || timeslots == nil || reservations == nil {
		panic("nil store passed to booking.NewService")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &Service{
		employees:    employees,
		rooms:        rooms,
		timeslots:    timeslots,
		reservations: reservations,
		publisher:    publisher,
		logger:       logger,
		now:          now,
	}
}

// BookAttendanceParams carries the inputs of BookAttendance.  The
// company is supplied by the caller and must match the room's.
type BookAttendanceParams struct {
	EmployeeID           uint64
	Date                 time.Time
	RoomID               uint64
	TimeslotID           uint64
	CompanyID            uint64
	RequestingEmployeeID uint64
}

// BookAttendance books a room for the requesting employee themselves.
// Check order follows the attendance flow: self-service gate, employee
// visibility, duplicate tuple, room exclusivity, then room/timeslot
// resolution.
func (s *Service) BookAttendance(ctx context.Context, p BookAttendanceParams) (*model.ReservationDetail, error) {
	if p.EmployeeID != p.RequestingEmployeeID {
		return nil, ErrUnauthorized
	}
	emp, err := s.employees.GetByID(ctx, p.EmployeeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !emp.Active() {
		return nil, ErrNotFound
	}

	date := model.NormalizeDate(p.Date)

	// Identical tuple already booked by this employee.
	exists, err := s.reservations.ExistsExact(ctx, p.EmployeeID, p.RoomID, p.TimeslotID, p.CompanyID, date)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrConflict
	}
	// Any other reservation occupying the room in this slot.
	occupied, err := s.reservations.RoomOccupied(ctx, p.CompanyID, p.RoomID, p.TimeslotID, date, 0)
	if err != nil {
		return nil, err
	}
	if occupied {
		return nil, ErrConflict
	}

	room, err := s.rooms.GetByID(ctx, p.RoomID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if room.CompanyID != p.CompanyID {
		return nil, ErrNotFound
	}
	slot, err := s.timeslots.GetByID(ctx, p.TimeslotID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return s.insert(ctx, emp, room, slot, date)
}

// BookRoomRequest is the payload of BookRoomForEmployee.
type BookRoomRequest struct {
	Date       time.Time
	RoomID     uint64
	TimeslotID uint64
}

// BookRoomForEmployee books a room on behalf of an employee.  The
// company is taken from the room itself.  On top of the usual checks it
// rejects same-day bookings of slots that have already ended and
// refuses to double-book the employee into two rooms for one slot.
func (s *Service) BookRoomForEmployee(ctx context.Context, employeeID uint64, req BookRoomRequest) (*model.ReservationDetail, error) {
	emp, err := s.employees.GetByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !emp.Active() {
		return nil, ErrNotFound
	}
	room, err := s.rooms.GetByID(ctx, req.RoomID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	slot, err := s.timeslots.GetByID(ctx, req.TimeslotID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	date := model.NormalizeDate(req.Date)
	now := s.now().UTC()

	// Same-day cutoff: a slot whose end has already passed cannot be
	// booked for today any more.
	if date.Equal(model.NormalizeDate(now)) && slot.EndOn(date).Before(now) {
		return nil, ErrTimeslotEnded
	}

	// The employee cannot be in two rooms during one slot.
	busy, err := s.reservations.EmployeeOccupied(ctx, employeeID, req.TimeslotID, date)
	if err != nil {
		return nil, err
	}
	if busy {
		return nil, ErrConflict
	}
	occupied, err := s.reservations.RoomOccupied(ctx, room.CompanyID, req.RoomID, req.TimeslotID, date, 0)
	if err != nil {
		return nil, err
	}
	if occupied {
		return nil, ErrConflict
	}

	return s.insert(ctx, emp, room, slot, date)
}

// insert persists the reservation, bumps the employee counter and emits
// the reservation.created event.
func (s *Service) insert(ctx context.Context, emp *model.Employee, room *model.Room,
	slot *model.Timeslot, date time.Time) (*model.ReservationDetail, error) {
	res := &model.Reservation{
		Reference:  uuid.NewString(),
		CompanyID:  room.CompanyID,
		EmployeeID: emp.ID,
		RoomID:     room.ID,
		TimeslotID: slot.ID,
		Date:       date,
	}
	if err := s.reservations.Create(ctx, res); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			// Lost a race; the unique keys caught it.
			return nil, ErrConflict
		}
		return nil, err
	}
	if err := s.employees.IncrementRoomsBooked(ctx, emp.ID); err != nil {
		s.logger.Warn("failed to bump rooms_booked",
			zap.Uint64("employee_id", emp.ID), zap.Error(err))
	}
	s.logger.Info("room booked",
		zap.Uint64("reservation_id", res.ID),
		zap.String("reference", res.Reference),
		zap.Uint64("employee_id", emp.ID),
		zap.Uint64("room_id", room.ID),
		zap.Uint64("timeslot_id", slot.ID),
		zap.String("date", date.Format("2006-01-02")),
	)
	if s.publisher != nil {
		ev := queue.ReservationCreatedEvent{
			ReservationID: res.ID,
			Reference:     res.Reference,
			EmployeeID:    emp.ID,
			CompanyID:     room.CompanyID,
			RoomID:        room.ID,
			RoomName:      room.Name,
			TimeslotID:    slot.ID,
			Date:          date.Format("2006-01-02"),
			StartTime:     slot.StartTime,
			EndTime:       slot.EndTime,
			CreatedAt:     s.now().UTC().Format(time.RFC3339),
		}
		if err := s.publisher.PublishReservationCreated(ctx, ev); err != nil {
			s.logger.Warn("failed to publish reservation.created",
				zap.Uint64("reservation_id", res.ID), zap.Error(err))
		}
	}
	return &model.ReservationDetail{
		ID:         res.ID,
		Reference:  res.Reference,
		CompanyID:  res.CompanyID,
		EmployeeID: res.EmployeeID,
		Date:       res.Date,
		Room:       *room,
		Timeslot:   *slot,
		CreatedAt:  res.CreatedAt,
	}, nil
}

// CancelAttendance deletes a reservation owned by the caller.  This
// path carries no time-window restriction; CancelReservationByID is the
// strict variant.  The two rules are kept separate on purpose — see
// DESIGN.md.
func (s *Service) CancelAttendance(ctx context.Context, reservationID, requestingEmployeeID uint64) error {
	res, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if res.EmployeeID != requestingEmployeeID {
		return ErrUnauthorized
	}
	if err := s.reservations.Delete(ctx, reservationID); err != nil {
		return err
	}
	s.logger.Info("reservation cancelled",
		zap.Uint64("reservation_id", reservationID),
		zap.Uint64("employee_id", requestingEmployeeID))
	return nil
}

// CancelReservationByID deletes a reservation owned by the caller,
// refusing when fewer than 24 hours remain before the slot starts.
func (s *Service) CancelReservationByID(ctx context.Context, reservationID, employeeID uint64) error {
	res, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if res.EmployeeID != employeeID {
		return ErrUnauthorized
	}
	slot, err := s.timeslots.GetByID(ctx, res.TimeslotID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	start := slot.StartOn(res.Date)
	if start.Sub(s.now().UTC()) < cancelWindow {
		return ErrCancelTooSoon
	}
	if err := s.reservations.Delete(ctx, reservationID); err != nil {
		return err
	}
	s.logger.Info("reservation cancelled within policy window",
		zap.Uint64("reservation_id", reservationID),
		zap.Uint64("employee_id", employeeID))
	return nil
}

// UpdateAttendanceParams carries the inputs of UpdateAttendance.  Nil
// pointers mean "keep the current value".
type UpdateAttendanceParams struct {
	ReservationID        uint64
	NewDate              *time.Time
	NewRoomID            *uint64
	NewTimeslotID        *uint64
	RequestingEmployeeID uint64
}

// UpdateAttendance moves a reservation to a new (date, room, timeslot)
// tuple, re-running the room-exclusivity check against the effective
// tuple while excluding the reservation itself.
func (s *Service) UpdateAttendance(ctx context.Context, p UpdateAttendanceParams) error {
	res, err := s.reservations.GetByID(ctx, p.ReservationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if res.EmployeeID != p.RequestingEmployeeID {
		return ErrUnauthorized
	}

	date := res.Date
	if p.NewDate != nil {
		date = model.NormalizeDate(*p.NewDate)
	}
	roomID := res.RoomID
	if p.NewRoomID != nil {
		roomID = *p.NewRoomID
	}
	timeslotID := res.TimeslotID
	if p.NewTimeslotID != nil {
		timeslotID = *p.NewTimeslotID
	}

	occupied, err := s.reservations.RoomOccupied(ctx, res.CompanyID, roomID, timeslotID, date, res.ID)
	if err != nil {
		return err
	}
	if occupied {
		return ErrConflict
	}
	if p.NewRoomID != nil {
		room, err := s.rooms.GetByID(ctx, roomID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}
		if room.CompanyID != res.CompanyID {
			return ErrNotFound
		}
	}
	if p.NewTimeslotID != nil {
		if _, err := s.timeslots.GetByID(ctx, timeslotID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}
	}

	res.Date = date
	res.RoomID = roomID
	res.TimeslotID = timeslotID
	if err := s.reservations.Update(ctx, res); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return ErrConflict
		}
		return err
	}
	s.logger.Info("reservation updated",
		zap.Uint64("reservation_id", res.ID),
		zap.Uint64("room_id", roomID),
		zap.Uint64("timeslot_id", timeslotID),
		zap.String("date", date.Format("2006-01-02")))
	return nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/office-room-booking/internal/model"
)

// ReservationRepo provides data access for reservations.  All dates are
// stored as DATE columns (midnight, no time-of-day) and all timestamps
// are UTC.  The table carries two unique keys — (company_id, room_id,
// timeslot_id, date) and (employee_id, timeslot_id, date) — so a
// concurrent double booking that slips past the arbiter's checks is
// rejected by the storage layer and reported as ErrConflict.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationColumns = `id, reference, company_id, employee_id, room_id, timeslot_id, date, created_at, updated_at`

func scanReservation(row interface{ Scan(...any) error }) (*model.Reservation, error) {
	var res model.Reservation
	err := row.Scan(&res.ID, &res.Reference, &res.CompanyID, &res.EmployeeID,
		&res.RoomID, &res.TimeslotID, &res.Date, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return nil, err
	}
	res.Date = model.NormalizeDate(res.Date)
	return &res, nil
}

// Create inserts a reservation and reads the row back to populate
// generated fields.  A unique-key violation maps to ErrConflict.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO reservations (reference, company_id, employee_id, room_id, timeslot_id, date)
		 VALUES (?,?,?,?,?,?)`,
		res.Reference, res.CompanyID, res.EmployeeID, res.RoomID, res.TimeslotID,
		res.Date.Format("2006-01-02"))
	if err != nil {
		if isDuplicateKey(err) {
			return ErrConflict
		}
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	got, err := r.GetByID(ctx, res.ID)
	if err != nil {
		return err
	}
	*res = *got
	return nil
}

// GetByID returns a reservation or ErrReservationNotFound.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	res, err := scanReservation(r.db.QueryRowContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return res, nil
}

// GetDetail loads a reservation joined with its room and timeslot.  The
// employee row is deliberately not joined; booking responses never echo
// the employee back.
func (r *ReservationRepo) GetDetail(ctx context.Context, id uint64) (*model.ReservationDetail, error) {
	const q = `SELECT r.id, r.reference, r.company_id, r.employee_id, r.date, r.created_at,
	                  rm.id, rm.company_id, rm.name, rm.capacity, rm.location, rm.created_at, rm.updated_at,
	                  t.id, t.start_time, t.end_time
	           FROM reservations r
	           JOIN rooms rm ON rm.id = r.room_id
	           JOIN timeslots t ON t.id = r.timeslot_id
	           WHERE r.id = ?`
	var d model.ReservationDetail
	var loc sql.NullString
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&d.ID, &d.Reference, &d.CompanyID, &d.EmployeeID, &d.Date, &d.CreatedAt,
		&d.Room.ID, &d.Room.CompanyID, &d.Room.Name, &d.Room.Capacity, &loc,
		&d.Room.CreatedAt, &d.Room.UpdatedAt,
		&d.Timeslot.ID, &d.Timeslot.StartTime, &d.Timeslot.EndTime,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	if loc.Valid {
		d.Room.Location = loc.String
	}
	d.Date = model.NormalizeDate(d.Date)
	return &d, nil
}

// ExistsExact reports whether an identical reservation tuple already
// exists (the idempotent-duplicate case).
func (r *ReservationRepo) ExistsExact(ctx context.Context, employeeID, roomID, timeslotID, companyID uint64, date time.Time) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM reservations
		 WHERE employee_id = ? AND room_id = ? AND timeslot_id = ? AND company_id = ? AND date = ?
		 LIMIT 1`,
		employeeID, roomID, timeslotID, companyID, date.Format("2006-01-02")).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// RoomOccupied reports whether any reservation other than excludeID
// already holds (companyID, roomID, timeslotID, date).  Pass excludeID 0
// when creating.
func (r *ReservationRepo) RoomOccupied(ctx context.Context, companyID, roomID, timeslotID uint64, date time.Time, excludeID uint64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM reservations
		 WHERE company_id = ? AND room_id = ? AND timeslot_id = ? AND date = ? AND id <> ?
		 LIMIT 1`,
		companyID, roomID, timeslotID, date.Format("2006-01-02"), excludeID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// EmployeeOccupied reports whether the employee already holds any room
// during (timeslotID, date).
func (r *ReservationRepo) EmployeeOccupied(ctx context.Context, employeeID, timeslotID uint64, date time.Time) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM reservations
		 WHERE employee_id = ? AND timeslot_id = ? AND date = ?
		 LIMIT 1`,
		employeeID, timeslotID, date.Format("2006-01-02")).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Update rewrites the mutable tuple (date, room, timeslot) in place.
// Unique-key violations map to ErrConflict, which backstops the
// arbiter's own conflict re-check under races.
func (r *ReservationRepo) Update(ctx context.Context, res *model.Reservation) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE reservations SET date = ?, room_id = ?, timeslot_id = ? WHERE id = ?`,
		res.Date.Format("2006-01-02"), res.RoomID, res.TimeslotID, res.ID)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrConflict
		}
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrReservationNotFound
	}
	return nil
}

// Delete removes a reservation.
func (r *ReservationRepo) Delete(ctx context.Context, id uint64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reservations WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrReservationNotFound
	}
	return nil
}

// ListByEmployee returns an employee's reservations joined with room
// and timeslot detail, newest booking first.
func (r *ReservationRepo) ListByEmployee(ctx context.Context, employeeID uint64) ([]model.ReservationDetail, error) {
	const q = `SELECT r.id, r.reference, r.company_id, r.employee_id, r.date, r.created_at,
	                  rm.id, rm.company_id, rm.name, rm.capacity, rm.location, rm.created_at, rm.updated_at,
	                  t.id, t.start_time, t.end_time
	           FROM reservations r
	           JOIN rooms rm ON rm.id = r.room_id
	           JOIN timeslots t ON t.id = r.timeslot_id
	           WHERE r.employee_id = ?
	           ORDER BY r.date DESC, t.start_time DESC`
	rows, err := r.db.QueryContext(ctx, q, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.ReservationDetail, 0)
	for rows.Next() {
		var d model.ReservationDetail
		var loc sql.NullString
		if err := rows.Scan(
			&d.ID, &d.Reference, &d.CompanyID, &d.EmployeeID, &d.Date, &d.CreatedAt,
			&d.Room.ID, &d.Room.CompanyID, &d.Room.Name, &d.Room.Capacity, &loc,
			&d.Room.CreatedAt, &d.Room.UpdatedAt,
			&d.Timeslot.ID, &d.Timeslot.StartTime, &d.Timeslot.EndTime,
		); err != nil {
			return nil, err
		}
		if loc.Valid {
			d.Room.Location = loc.String
		}
		d.Date = model.NormalizeDate(d.Date)
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListByRoomAndDate returns a room's reservations for one day, ordered
// by slot start.  Used by the admin occupancy view.
func (r *ReservationRepo) ListByRoomAndDate(ctx context.Context, roomID uint64, date time.Time) ([]model.ReservationDetail, error) {
	const q = `SELECT r.id, r.reference, r.company_id, r.employee_id, r.date, r.created_at,
	                  rm.id, rm.company_id, rm.name, rm.capacity, rm.location, rm.created_at, rm.updated_at,
	                  t.id, t.start_time, t.end_time
	           FROM reservations r
	           JOIN rooms rm ON rm.id = r.room_id
	           JOIN timeslots t ON t.id = r.timeslot_id
	           WHERE r.room_id = ? AND r.date = ?
	           ORDER BY t.start_time`
	rows, err := r.db.QueryContext(ctx, q, roomID, date.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.ReservationDetail, 0)
	for rows.Next() {
		var d model.ReservationDetail
		var loc sql.NullString
		if err := rows.Scan(
			&d.ID, &d.Reference, &d.CompanyID, &d.EmployeeID, &d.Date, &d.CreatedAt,
			&d.Room.ID, &d.Room.CompanyID, &d.Room.Name, &d.Room.Capacity, &loc,
			&d.Room.CreatedAt, &d.Room.UpdatedAt,
			&d.Timeslot.ID, &d.Timeslot.StartTime, &d.Timeslot.EndTime,
		); err != nil {
			return nil, err
		}
		if loc.Valid {
			d.Room.Location = loc.String
		}
		d.Date = model.NormalizeDate(d.Date)
		out = append(out, d)
	}
	return out, rows.Err()
}

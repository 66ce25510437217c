package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/office-room-booking/internal/model"
)

// TimeslotRepo provides CRUD access to the timeslots table.  Timeslots
// are global time-of-day intervals shared by all companies; the TIME
// columns come back from the driver as "HH:MM:SS" strings and are kept
// in that form on the model.
type TimeslotRepo struct {
	db *sql.DB
}

// NewTimeslotRepo returns a TimeslotRepo bound to the given database.
func NewTimeslotRepo(db *sql.DB) *TimeslotRepo { return &TimeslotRepo{db: db} }

// Create inserts a timeslot and sets the generated ID.
func (r *TimeslotRepo) Create(ctx context.Context, t *model.Timeslot) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO timeslots (start_time, end_time) VALUES (?, ?)`,
		t.StartTime, t.EndTime)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

// GetByID returns a timeslot or ErrTimeslotNotFound.
func (r *TimeslotRepo) GetByID(ctx context.Context, id uint64) (*model.Timeslot, error) {
	var t model.Timeslot
	err := r.db.QueryRowContext(ctx,
		`SELECT id, start_time, end_time FROM timeslots WHERE id = ?`, id).
		Scan(&t.ID, &t.StartTime, &t.EndTime)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTimeslotNotFound
		}
		return nil, err
	}
	return &t, nil
}

// List returns all timeslots ordered by start time.
func (r *TimeslotRepo) List(ctx context.Context) ([]model.Timeslot, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, start_time, end_time FROM timeslots ORDER BY start_time`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Timeslot, 0)
	for rows.Next() {
		var t model.Timeslot
		if err := rows.Scan(&t.ID, &t.StartTime, &t.EndTime); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Update rewrites the interval bounds.
func (r *TimeslotRepo) Update(ctx context.Context, t *model.Timeslot) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE timeslots SET start_time = ?, end_time = ? WHERE id = ?`,
		t.StartTime, t.EndTime, t.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTimeslotNotFound
	}
	return nil
}

// Delete removes a timeslot; restricted while reservations reference it.
func (r *TimeslotRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM timeslots WHERE id = ?`, id)
	if err != nil {
		if isRowReferenced(err) {
			return ErrConflict
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTimeslotNotFound
	}
	return nil
}

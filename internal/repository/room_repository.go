package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/office-room-booking/internal/model"
)

// RoomRepo provides CRUD access to the rooms table.
type RoomRepo struct {
	db *sql.DB
}

// NewRoomRepo constructs a RoomRepo with the given DB handle.
func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{db: db} }

const roomColumns = `id, company_id, name, capacity, location, created_at, updated_at`

func scanRoom(row interface{ Scan(...any) error }) (*model.Room, error) {
	var rm model.Room
	var loc sql.NullString
	err := row.Scan(&rm.ID, &rm.CompanyID, &rm.Name, &rm.Capacity, &loc,
		&rm.CreatedAt, &rm.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if loc.Valid {
		rm.Location = loc.String
	}
	return &rm, nil
}

// Create inserts a room and reads the row back to populate generated
// fields.
func (r *RoomRepo) Create(ctx context.Context, rm *model.Room) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO rooms (company_id, name, capacity, location) VALUES (?,?,?,?)`,
		rm.CompanyID, rm.Name, rm.Capacity, nullableString(rm.Location))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rm.ID = uint64(id)
	got, err := r.GetByID(ctx, rm.ID)
	if err != nil {
		return err
	}
	*rm = *got
	return nil
}

// GetByID returns a room or ErrRoomNotFound.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (*model.Room, error) {
	rm, err := scanRoom(r.db.QueryRowContext(ctx,
		`SELECT `+roomColumns+` FROM rooms WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return rm, nil
}

// ListByCompany returns all rooms belonging to a company.
func (r *RoomRepo) ListByCompany(ctx context.Context, companyID uint64) ([]model.Room, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+roomColumns+` FROM rooms WHERE company_id = ? ORDER BY name`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Room, 0)
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rm)
	}
	return out, rows.Err()
}

// Update mutates name/capacity/location in place.
func (r *RoomRepo) Update(ctx context.Context, rm *model.Room) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE rooms SET name = ?, capacity = ?, location = ? WHERE id = ?`,
		rm.Name, rm.Capacity, nullableString(rm.Location), rm.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRoomNotFound
	}
	return nil
}

// Delete removes a room.  Deletion is restricted while reservations
// still reference the room, surfaced as ErrConflict.
func (r *RoomRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, id)
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
		return ErrRoomNotFound
	}
	return nil
}

// nullableString maps "" to NULL for optional text columns.
func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

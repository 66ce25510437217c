package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/office-room-booking/internal/model"
)

// ReviewRepo provides access to room reviews.  One review per employee
// per room, enforced by a unique key on (room_id, employee_id).
type ReviewRepo struct {
	db *sql.DB
}

// NewReviewRepo returns a ReviewRepo bound to the given database.
func NewReviewRepo(db *sql.DB) *ReviewRepo { return &ReviewRepo{db: db} }

// Create inserts a review.  ErrConflict when the employee has already
// reviewed this room.
func (r *ReviewRepo) Create(ctx context.Context, rv *model.RoomReview) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO room_reviews (room_id, employee_id, rating, comment) VALUES (?,?,?,?)`,
		rv.RoomID, rv.EmployeeID, rv.Rating, nullableString(rv.Comment))
	if err != nil {
		if isDuplicateKey(err) {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rv.ID = uint64(id)
	return nil
}

// GetByID returns a review or ErrReviewNotFound.
func (r *ReviewRepo) GetByID(ctx context.Context, id uint64) (*model.RoomReview, error) {
	var rv model.RoomReview
	var comment sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, room_id, employee_id, rating, comment, created_at FROM room_reviews WHERE id = ?`, id).
		Scan(&rv.ID, &rv.RoomID, &rv.EmployeeID, &rv.Rating, &comment, &rv.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	if comment.Valid {
		rv.Comment = comment.String
	}
	return &rv, nil
}

// ListByRoom returns a room's reviews, newest first.
func (r *ReviewRepo) ListByRoom(ctx context.Context, roomID uint64) ([]model.RoomReview, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, room_id, employee_id, rating, comment, created_at
		 FROM room_reviews WHERE room_id = ? ORDER BY created_at DESC`, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.RoomReview, 0)
	for rows.Next() {
		var rv model.RoomReview
		var comment sql.NullString
		if err := rows.Scan(&rv.ID, &rv.RoomID, &rv.EmployeeID, &rv.Rating, &comment, &rv.CreatedAt); err != nil {
			return nil, err
		}
		if comment.Valid {
			rv.Comment = comment.String
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

// Delete removes a review.
func (r *ReviewRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM room_reviews WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrReviewNotFound
	}
	return nil
}

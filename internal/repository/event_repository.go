package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/office-room-booking/internal/model"
)

// EventRepo provides CRUD access to company calendar events.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo returns an EventRepo bound to the given database.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

const eventColumns = `id, company_id, title, description, starts_at, ends_at, created_by, created_at`

func scanEvent(row interface{ Scan(...any) error }) (*model.CompanyEvent, error) {
	var e model.CompanyEvent
	var desc sql.NullString
	err := row.Scan(&e.ID, &e.CompanyID, &e.Title, &desc, &e.StartsAt, &e.EndsAt,
		&e.CreatedBy, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	if desc.Valid {
		e.Description = desc.String
	}
	return &e, nil
}

// Create inserts an event and sets the generated ID.
func (r *EventRepo) Create(ctx context.Context, e *model.CompanyEvent) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO company_events (company_id, title, description, starts_at, ends_at, created_by)
		 VALUES (?,?,?,?,?,?)`,
		e.CompanyID, e.Title, nullableString(e.Description), e.StartsAt.UTC(), e.EndsAt.UTC(), e.CreatedBy)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	return nil
}

// GetByID returns an event or ErrEventNotFound.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (*model.CompanyEvent, error) {
	e, err := scanEvent(r.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM company_events WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return e, nil
}

// ListByCompany returns a company's events, soonest first.
func (r *EventRepo) ListByCompany(ctx context.Context, companyID uint64) ([]model.CompanyEvent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM company_events WHERE company_id = ? ORDER BY starts_at`,
		companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.CompanyEvent, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// Update rewrites the mutable event fields.
func (r *EventRepo) Update(ctx context.Context, e *model.CompanyEvent) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE company_events SET title = ?, description = ?, starts_at = ?, ends_at = ? WHERE id = ?`,
		e.Title, nullableString(e.Description), e.StartsAt.UTC(), e.EndsAt.UTC(), e.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrEventNotFound
	}
	return nil
}

// Delete removes an event.
func (r *EventRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM company_events WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrEventNotFound
	}
	return nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/office-room-booking/internal/model"
)

// CompanyRepo provides CRUD access to the companies table.
type CompanyRepo struct {
	db *sql.DB
}

// NewCompanyRepo returns a CompanyRepo bound to the given database.
func NewCompanyRepo(db *sql.DB) *CompanyRepo { return &CompanyRepo{db: db} }

// Create inserts a company and reads the row back so the caller sees
// generated fields (ID, created_at).
func (r *CompanyRepo) Create(ctx context.Context, c *model.Company) error {
	res, err := r.db.ExecContext(ctx, `INSERT INTO companies (name) VALUES (?)`, c.Name)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return r.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM companies WHERE id = ?`, c.ID).
		Scan(&c.ID, &c.Name, &c.CreatedAt)
}

// GetByID returns a company or ErrCompanyNotFound.
func (r *CompanyRepo) GetByID(ctx context.Context, id uint64) (*model.Company, error) {
	var c model.Company
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM companies WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCompanyNotFound
		}
		return nil, err
	}
	return &c, nil
}

// List returns all companies ordered by name.
func (r *CompanyRepo) List(ctx context.Context) ([]model.Company, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, created_at FROM companies ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Company, 0)
	for rows.Next() {
		var c model.Company
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Update renames a company.  ErrCompanyNotFound when no row matched.
func (r *CompanyRepo) Update(ctx context.Context, c *model.Company) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE companies SET name = ? WHERE id = ?`, c.Name, c.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCompanyNotFound
	}
	return nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/office-room-booking/internal/model"
	"github.com/iliyamo/office-room-booking/internal/utils"
)

// EmployeeRepo provides access to the employees table.  Employees are
// also the authentication principals, so creation hashes the password
// here rather than in the handler.
type EmployeeRepo struct {
	db *sql.DB
}

// NewEmployeeRepo returns an EmployeeRepo bound to the given database.
func NewEmployeeRepo(db *sql.DB) *EmployeeRepo { return &EmployeeRepo{db: db} }

const employeeColumns = `id, company_id, email, password_hash, role, status, rooms_booked, created_at, updated_at`

func scanEmployee(row interface{ Scan(...any) error }) (*model.Employee, error) {
	var e model.Employee
	err := row.Scan(&e.ID, &e.CompanyID, &e.Email, &e.PasswordHash, &e.Role,
		&e.Status, &e.RoomsBooked, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Create inserts an employee with a freshly hashed password and returns
// the generated ID.  ErrEmailExists when the email is already taken.
func (r *EmployeeRepo) Create(ctx context.Context, companyID uint64, email, password, role string, bcryptCost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, bcryptCost)
	if err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO employees (company_id, email, password_hash, role) VALUES (?,?,?,?)`,
		companyID, email, hash, role)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches an employee by id, including soft-deleted rows; the
// caller decides whether DELETED status matters for its operation.
func (r *EmployeeRepo) GetByID(ctx context.Context, id uint64) (*model.Employee, error) {
	e, err := scanEmployee(r.db.QueryRowContext(ctx,
		`SELECT `+employeeColumns+` FROM employees WHERE id = ? LIMIT 1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEmployeeNotFound
		}
		return nil, err
	}
	return e, nil
}

// GetByEmail fetches an active employee by normalized email.  Deleted
// accounts are invisible here so they cannot log in.
func (r *EmployeeRepo) GetByEmail(ctx context.Context, email string) (*model.Employee, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	e, err := scanEmployee(r.db.QueryRowContext(ctx,
		`SELECT `+employeeColumns+` FROM employees WHERE email = ? AND status = ? LIMIT 1`,
		email, model.EmployeeStatusActive))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEmployeeNotFound
		}
		return nil, err
	}
	return e, nil
}

// ListByCompany returns the active employees of a company.
func (r *EmployeeRepo) ListByCompany(ctx context.Context, companyID uint64) ([]model.Employee, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+employeeColumns+` FROM employees WHERE company_id = ? AND status = ? ORDER BY email`,
		companyID, model.EmployeeStatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Employee, 0)
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// IncrementRoomsBooked bumps the denormalized booking counter by one.
func (r *EmployeeRepo) IncrementRoomsBooked(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE employees SET rooms_booked = rooms_booked + 1 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}

// SetStatus flips the soft-delete flag.  Passing DELETED retires the
// account without breaking reservation history.
func (r *EmployeeRepo) SetStatus(ctx context.Context, id uint64, status string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE employees SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}

// UpdateRole changes an employee's role.
func (r *EmployeeRepo) UpdateRole(ctx context.Context, id uint64, role string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE employees SET role = ? WHERE id = ?`, role, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}

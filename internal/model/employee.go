package model

import "time"

// Employee status values.  An employee is soft-deleted by flipping the
// status to DELETED; the row stays in place so that historical
// reservations keep a valid foreign key.  Deleted employees cannot log
// in, book rooms or be booked for.
const (
	EmployeeStatusActive  = "ACTIVE"
	EmployeeStatusDeleted = "DELETED"
)

// Employee roles stored in the JWT "role" claim.
const (
	RoleAdmin    = "ADMIN"
	RoleEmployee = "EMPLOYEE"
)

// Employee represents a member of a company and doubles as the auth
// principal: the email/password pair on this row is what login checks.
//
// Fields:
//  ID           – primary key identifier.
//  CompanyID    – owning company.
//  Email        – unique login email.
//  PasswordHash – bcrypt hash; never serialized.
//  Role         – ADMIN or EMPLOYEE.
//  Status       – ACTIVE or DELETED (soft delete).
//  RoomsBooked  – denormalized count of successful bookings, used for
//                 achievement thresholds.
type Employee struct {
	ID           uint64    `json:"id"`           // employees.id
	CompanyID    uint64    `json:"company_id"`   // employees.company_id
	Email        string    `json:"email"`        // employees.email
	PasswordHash string    `json:"-"`            // employees.password_hash
	Role         string    `json:"role"`         // employees.role
	Status       string    `json:"status"`       // employees.status
	RoomsBooked  uint32    `json:"rooms_booked"` // employees.rooms_booked
	CreatedAt    time.Time `json:"created_at"`   // employees.created_at
	UpdatedAt    time.Time `json:"updated_at"`   // employees.updated_at
}

// Active reports whether the employee may act on the system.
func (e *Employee) Active() bool { return e.Status == EmployeeStatusActive }

// RefreshToken models an entry in the refresh_tokens table.  Only the
// SHA-256 hash of the raw token is persisted.
type RefreshToken struct {
	ID         uint64     // refresh_tokens.id
	EmployeeID uint64     // refresh_tokens.employee_id
	TokenHash  string     // refresh_tokens.token_hash
	ExpiresAt  time.Time  // refresh_tokens.expires_at
	RevokedAt  *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt  time.Time  // refresh_tokens.created_at
}

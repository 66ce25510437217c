// Package repository defines error values shared across the individual
// repositories.  Sentinel errors let higher layers such as the booking
// arbiter and the HTTP handlers branch on failure categories without
// inspecting driver-specific error types.  Entity-specific sentinels
// (ErrRoomNotFound, ErrEmployeeNotFound, ...) wrap ErrNotFound so that
// callers can match either the broad class or the exact entity.
package repository

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is the base class for every missing-row lookup.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when an insert or update trips a unique key,
// most importantly the (company, room, timeslot, date) and
// (employee, timeslot, date) keys on reservations.  Handlers translate
// this into HTTP 409.
var ErrConflict = errors.New("conflict")

// Entity-specific lookup failures.
var (
	ErrCompanyNotFound     = fmt.Errorf("company %w", ErrNotFound)
	ErrEmployeeNotFound    = fmt.Errorf("employee %w", ErrNotFound)
	ErrRoomNotFound        = fmt.Errorf("room %w", ErrNotFound)
	ErrTimeslotNotFound    = fmt.Errorf("timeslot %w", ErrNotFound)
	ErrReservationNotFound = fmt.Errorf("reservation %w", ErrNotFound)
	ErrEventNotFound       = fmt.Errorf("event %w", ErrNotFound)
	ErrReviewNotFound      = fmt.Errorf("review %w", ErrNotFound)
	ErrEmailExists         = errors.New("email already exists")
)

// MySQL server error numbers this package branches on.
const (
	mysqlDuplicateEntry  = 1062 // unique-key violation
	mysqlRowIsReferenced = 1451 // delete restricted by a foreign key
)

// isDuplicateKey reports whether err is a unique-key violation.
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}

// isRowReferenced reports whether err is a restricted foreign-key delete.
func isRowReferenced(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlRowIsReferenced
}

package model

import "time"

// Reservation is a booking of one room, for one employee, at one
// timeslot, on one date.  Date is always normalized to midnight UTC.
// The same tuple is protected twice: by the arbiter's pre-insert checks
// and by unique keys at the storage layer, so a lost check-then-act race
// still surfaces as a conflict instead of a double booking.
//
// Fields:
//  ID         – primary key identifier.
//  Reference  – public UUID used when citing the booking externally.
//  CompanyID  – company the booking belongs to; always equals the
//               room's company.
//  EmployeeID – employee occupying the room.
//  RoomID     – booked room.
//  TimeslotID – booked timeslot.
//  Date       – calendar day of the booking, midnight UTC.
type Reservation struct {
	ID         uint64    `json:"id"`          // reservations.id
	Reference  string    `json:"reference"`   // reservations.reference
	CompanyID  uint64    `json:"company_id"`  // reservations.company_id
	EmployeeID uint64    `json:"employee_id"` // reservations.employee_id
	RoomID     uint64    `json:"room_id"`     // reservations.room_id
	TimeslotID uint64    `json:"timeslot_id"` // reservations.timeslot_id
	Date       time.Time `json:"date"`        // reservations.date
	CreatedAt  time.Time `json:"created_at"`  // reservations.created_at
	UpdatedAt  time.Time `json:"updated_at"`  // reservations.updated_at
}

// ReservationDetail is the reservation joined with its room and timeslot
// for API responses.  The employee is deliberately absent: booking
// endpoints return the slot that was taken, not the caller's own record,
// which avoids echoing circular relationship data back to the client.
type ReservationDetail struct {
	ID         uint64    `json:"id"`
	Reference  string    `json:"reference"`
	CompanyID  uint64    `json:"company_id"`
	EmployeeID uint64    `json:"employee_id"`
	Date       time.Time `json:"date"`
	Room       Room      `json:"room"`
	Timeslot   Timeslot  `json:"timeslot"`
	CreatedAt  time.Time `json:"created_at"`
}

// Package queue defines message payloads exchanged over the message broker.
package queue

// ReservationCreatedName is the durable queue the booking arbiter
// publishes to and the achievement consumer reads from.
const ReservationCreatedName = "reservation.created"

// ReservationCreatedEvent is published after a reservation is inserted.
// It carries enough detail for downstream consumers (achievement
// awarding, notifications, analytics) to act without querying the
// primary database for the reservation itself.
type ReservationCreatedEvent struct {
	ReservationID uint64 `json:"reservation_id"`
	Reference     string `json:"reference"`
	EmployeeID    uint64 `json:"employee_id"`
	CompanyID     uint64 `json:"company_id"`
	RoomID        uint64 `json:"room_id"`
	RoomName      string `json:"room_name"`
	TimeslotID    uint64 `json:"timeslot_id"`
	Date          string `json:"date"`       // YYYY-MM-DD
	StartTime     string `json:"start_time"` // HH:MM:SS
	EndTime       string `json:"end_time"`   // HH:MM:SS
	CreatedAt     string `json:"created_at"` // RFC3339
}

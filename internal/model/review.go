package model

import "time"

// RoomReview is an employee's rating of a room.  One review per
// employee per room, enforced by a unique key.
type RoomReview struct {
	ID         uint64    `json:"id"`                // room_reviews.id
	RoomID     uint64    `json:"room_id"`           // room_reviews.room_id
	EmployeeID uint64    `json:"employee_id"`       // room_reviews.employee_id
	Rating     uint8     `json:"rating"`            // room_reviews.rating (1..5)
	Comment    string    `json:"comment,omitempty"` // room_reviews.comment
	CreatedAt  time.Time `json:"created_at"`        // room_reviews.created_at
}

package model

import "time"

// Room represents a bookable meeting room.  Rooms belong to exactly one
// company; the arbiter rejects bookings where the caller's company does
// not match the room's.
//
// Fields:
//  ID        – primary key identifier.
//  CompanyID – owning company.
//  Name      – human readable label ("4th floor huddle").
//  Capacity  – number of seats.
//  Location  – optional free-text location hint.
type Room struct {
	ID        uint64    `json:"id"`                 // rooms.id
	CompanyID uint64    `json:"company_id"`         // rooms.company_id
	Name      string    `json:"name"`               // rooms.name
	Capacity  uint32    `json:"capacity"`           // rooms.capacity
	Location  string    `json:"location,omitempty"` // rooms.location
	CreatedAt time.Time `json:"created_at"`         // rooms.created_at
	UpdatedAt time.Time `json:"updated_at"`         // rooms.updated_at
}

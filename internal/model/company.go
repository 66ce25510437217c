package model

import "time"

// Company represents a tenant organisation.  Rooms and employees belong
// to exactly one company; reservations never cross company boundaries.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – display name of the company.
//  CreatedAt – creation timestamp.
type Company struct {
	ID        uint64    `json:"id"`         // companies.id
	Name      string    `json:"name"`       // companies.name
	CreatedAt time.Time `json:"created_at"` // companies.created_at
}

package model

import "time"

// CompanyEvent is a calendar entry visible to everyone in a company
// (all-hands, training, office closure).  Events are informational and
// do not participate in room booking conflict checks.
type CompanyEvent struct {
	ID          uint64    `json:"id"`          // company_events.id
	CompanyID   uint64    `json:"company_id"`  // company_events.company_id
	Title       string    `json:"title"`       // company_events.title
	Description string    `json:"description"` // company_events.description
	StartsAt    time.Time `json:"starts_at"`   // company_events.starts_at
	EndsAt      time.Time `json:"ends_at"`     // company_events.ends_at
	CreatedBy   uint64    `json:"created_by"`  // company_events.created_by
	CreatedAt   time.Time `json:"created_at"`  // company_events.created_at
}

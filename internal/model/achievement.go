package model

import "time"

// Achievement is a badge definition awarded once an employee's
// rooms_booked counter reaches the threshold.  Definitions are seeded
// with the schema; awarding happens asynchronously in the queue
// consumer.
type Achievement struct {
	ID          uint64 `json:"id"`          // achievements.id
	Code        string `json:"code"`        // achievements.code
	Name        string `json:"name"`        // achievements.name
	Description string `json:"description"` // achievements.description
	Threshold   uint32 `json:"threshold"`   // achievements.threshold
}

// EmployeeAchievement is an awarded badge together with its definition,
// as returned by the my-achievements endpoint.
type EmployeeAchievement struct {
	Achievement
	AwardedAt time.Time `json:"awarded_at"` // employee_achievements.awarded_at
}

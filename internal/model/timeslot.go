package model

import "time"

// timeLayouts lists the accepted encodings for a TIME column value.
// MySQL returns "15:04:05"; request payloads may send "15:04".
var timeLayouts = []string{"15:04:05", "15:04"}

// Timeslot is a reusable time-of-day interval (e.g. 09:00–10:00).
// Timeslots are global, not per-company, and carry no date: the booking
// date is supplied per reservation and combined with the slot's
// time-of-day values when an absolute instant is needed.
//
// Fields:
//  ID        – primary key identifier.
//  StartTime – start of the interval, "HH:MM:SS".
//  EndTime   – end of the interval, "HH:MM:SS".
type Timeslot struct {
	ID        uint64 `json:"id"`         // timeslots.id
	StartTime string `json:"start_time"` // timeslots.start_time
	EndTime   string `json:"end_time"`   // timeslots.end_time
}

// StartOn returns the absolute UTC instant at which this slot begins on
// the given date.  The date's own time-of-day component is ignored.
func (t *Timeslot) StartOn(date time.Time) time.Time {
	return combine(date, t.StartTime)
}

// EndOn returns the absolute UTC instant at which this slot ends on the
// given date.
func (t *Timeslot) EndOn(date time.Time) time.Time {
	return combine(date, t.EndTime)
}

// NormalizeDate strips the time-of-day component, returning midnight UTC
// of the same calendar day.  All reservation dates are stored in this
// form so that date equality is a plain comparison.
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// combine merges a calendar date with a "HH:MM:SS" time-of-day string.
// An unparseable time-of-day yields midnight, which keeps comparisons
// conservative rather than failing the whole booking.
func combine(date time.Time, clock string) time.Time {
	day := NormalizeDate(date)
	for _, layout := range timeLayouts {
		if tod, err := time.Parse(layout, clock); err == nil {
			return day.Add(time.Duration(tod.Hour())*time.Hour +
				time.Duration(tod.Minute())*time.Minute +
				time.Duration(tod.Second())*time.Second)
		}
	}
	return day
}

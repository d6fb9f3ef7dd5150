package model

import "time"

// Wire layouts used by the chores backend.
const (
	DateLayout      = "2006-01-02"
	TimeLayout      = "15:04:05"
	ShortTimeLayout = "15:04"
	// CardTimeLayout is how a chore's time reads on a card ("6:00 PM").
	CardTimeLayout = "3:04 PM"
)

// Chore is a task assigned to one user at a specific date and time. At is
// the combined date-time in the calendar's location.
type Chore struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	At          time.Time `json:"at"`
	UserID      int64     `json:"user_id"`
}

// Date returns the chore's calendar date as YYYY-MM-DD.
func (c Chore) Date() string {
	return c.At.Format(DateLayout)
}

// OnDay reports whether the chore falls on the same calendar day as day.
func (c Chore) OnDay(day time.Time) bool {
	return SameDay(c.At, day)
}

// SameDay compares the year, month and day of a and b in a's location.
func SameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

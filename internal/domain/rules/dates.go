package rules

import "time"

// SameCalendarDay reports whether two instants fall on the same calendar date
// in the given location. Chat consumers use this to decide where date
// dividers go.
func SameCalendarDay(a, b time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.UTC
	}
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// DateDividerKey returns the grouping key for a message timestamp: a new
// group starts whenever the key differs from the previous message's key.
func DateDividerKey(at time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return at.In(loc).Format("2006-01-02")
}

package domain

import "time"

// DayOf truncates t to midnight of its calendar day in loc. This is the
// canonical stored value for an assignment date: comparisons against it
// never depend on the querying server's local clock.
func DayOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// DayRange returns the half-open interval [startOfDay, startOfDay+24h)
// covering the calendar day of t in loc. "Assignments dated today" is
// always queried with this range computed from the reference timezone's
// midnight, so a deployment running in a different zone than its user
// base still reports the correct day.
func DayRange(t time.Time, loc *time.Location) (start, end time.Time) {
	y, m, d := t.In(loc).Date()
	start = time.Date(y, m, d, 0, 0, 0, 0, loc)
	// Next civil midnight, not start+24h: they differ on DST switch days.
	end = time.Date(y, m, d+1, 0, 0, 0, 0, loc)
	return start, end
}

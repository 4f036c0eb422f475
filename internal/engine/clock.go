package engine

import "time"

// SessionClock derives calendar dates and session hours from bar timestamps
// in the instrument's native session time zone.
type SessionClock struct {
	loc *time.Location
}

// NewSessionClock creates a clock for the given location. Nil defaults to UTC.
func NewSessionClock(loc *time.Location) SessionClock {
	if loc == nil {
		loc = time.UTC
	}
	return SessionClock{loc: loc}
}

// Date returns the calendar date (YYYY-MM-DD) of a Unix-ms timestamp.
func (c SessionClock) Date(tsMs int64) string {
	return time.UnixMilli(tsMs).In(c.loc).Format("2006-01-02")
}

// Hour returns the hour-of-day [0, 23] of a Unix-ms timestamp.
func (c SessionClock) Hour(tsMs int64) int {
	return time.UnixMilli(tsMs).In(c.loc).Hour()
}

package booking

import "time"

// SessionDuration is the fixed length of a booked consultation.
const SessionDuration = time.Hour

type WindowState string

const (
	WindowBefore WindowState = "BEFORE"
	WindowActive WindowState = "ACTIVE"
	WindowEnded  WindowState = "ENDED"
)

// Window computes the [start, end) interval of a booking from its
// calendar day and "HH:MM" start time. Times are interpreted in UTC; a
// malformed time of day yields a window starting at midnight.
func Window(day time.Time, timeOfDay string) (time.Time, time.Time) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	if t, err := time.Parse("15:04", timeOfDay); err == nil {
		start = start.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute)
	}
	return start, start.Add(SessionDuration)
}

// StateAt partitions every instant into exactly one of BEFORE, ACTIVE
// or ENDED. It is pure and re-evaluated on every access check; nothing
// caches "now".
func StateAt(day time.Time, timeOfDay string, now time.Time) WindowState {
	start, end := Window(day, timeOfDay)
	switch {
	case now.Before(start):
		return WindowBefore
	case now.Before(end):
		return WindowActive
	default:
		return WindowEnded
	}
}

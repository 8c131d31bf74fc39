package quota

import "time"

// windowExpired reports whether a stored reset boundary has elapsed.
func windowExpired(resetAt, now time.Time) bool {
	return !now.Before(resetAt)
}

// NextMidnight returns the next local midnight strictly after now. A call at
// an exact midnight yields the following day's boundary, never an instant
// that has already elapsed.
func NextMidnight(now time.Time) time.Time {
	year, month, day := now.Date()
	return time.Date(year, month, day+1, 0, 0, 0, 0, now.Location())
}

// UntilMidnight returns how long remains before the next local midnight,
// used to derive expiries for daily counters.
func UntilMidnight(now time.Time) time.Duration {
	return NextMidnight(now).Sub(now)
}

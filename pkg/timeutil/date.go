package timeutil

import (
	"regexp"
	"time"
)

var ymdRe = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})`)

// ToYMD formats a calendar date as YYYY-MM-DD in the time's own location.
// No UTC conversion: a date picked in the gym's timezone must not shift.
func ToYMD(t time.Time) string {
	return t.Format("2006-01-02")
}

// NormalizeYMD strips any time component off a date string, keeping the
// leading YYYY-MM-DD. Values that don't start with a date are truncated to
// ten characters, matching the storage column width.
func NormalizeYMD(s string) string {
	if m := ymdRe.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	if len(s) > 10 {
		return s[:10]
	}
	return s
}

package timeutil

import "regexp"

// Appointment times travel through the system as strings in two precisions:
// the store keeps HH:MM:SS, the UI and the weekly template use HH:MM. All
// capacity grouping must happen on the storage form, all window comparison
// on the display form.

var (
	storageRe = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}$`)
	displayRe = regexp.MustCompile(`^(\d{2}):(\d{2})`)
)

// ToStorageTime canonicalizes a time-of-day string to HH:MM:SS. Input that
// matches neither HH:MM nor HH:MM:SS is passed through unchanged; such
// values are treated as already canonical or opaque, never rejected.
func ToStorageTime(t string) string {
	if storageRe.MatchString(t) {
		return t
	}
	if m := displayRe.FindStringSubmatch(t); m != nil {
		return m[1] + ":" + m[2] + ":00"
	}
	return t
}

// ToDisplayTime truncates to HH:MM. Inputs shorter than 5 characters are
// returned as-is; callers are expected to pass at least HH:MM.
func ToDisplayTime(t string) string {
	if len(t) < 5 {
		return t
	}
	return t[:5]
}

// InWindow reports whether start falls inside the half-open window
// [winStart, winEnd). All three values are compared at HH:MM precision, so
// a window [09:00, 10:00) contains a 09:00 start and excludes a 10:00 one.
func InWindow(start, winStart, winEnd string) bool {
	s := ToDisplayTime(start)
	a := ToDisplayTime(winStart)
	b := ToDisplayTime(winEnd)
	return s >= a && s < b
}

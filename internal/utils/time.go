package utils

import (
	"strings"
	"time"
)

const layoutDate = "2006-01-02"

// ParseDate parses YYYY-MM-DD in local timezone.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(layoutDate, strings.TrimSpace(s), time.Local)
}

// DateInRange reports whether a YYYY-MM-DD date falls in [from, to]. Empty
// bounds are open; an empty date only matches when both bounds are open.
// Works on the strings directly since the layout sorts lexically.
func DateInRange(date, from, to string) bool {
	date, from, to = strings.TrimSpace(date), strings.TrimSpace(from), strings.TrimSpace(to)
	if from == "" && to == "" {
		return true
	}
	if date == "" {
		return false
	}
	if from != "" && date < from {
		return false
	}
	if to != "" && date > to {
		return false
	}
	return true
}

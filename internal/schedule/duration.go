package schedule

import (
	"regexp"
	"time"
)

// DefaultDuration is assumed whenever a catalog duration string cannot be
// parsed. Malformed catalog data must never abort a booking.
const DefaultDuration = 2 * time.Hour

var durationRe = regexp.MustCompile(`^(\d+)h(\d+)?`)

// ParseDuration converts a catalog duration string like "4h" or "3h30"
// into a time.Duration. Minutes default to 0 when omitted; anything that
// does not start with "<hours>h" falls back to DefaultDuration.
func ParseDuration(s string) time.Duration {
	m := durationRe.FindStringSubmatch(s)
	if m == nil {
		return DefaultDuration
	}

	hours := atoi(m[1])
	minutes := 0
	if m[2] != "" {
		minutes = atoi(m[2])
	}

	return time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute
}

// atoi for digit-only strings already validated by the regexp.
func atoi(s string) int {
	n := 0
	for _, c := range s {
		n = n*10 + int(c-'0')
	}
	return n
}

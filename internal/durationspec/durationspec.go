// Package durationspec parses the CLI's "--older-than" argument: either a
// relative shorthand ("<n>{m|h|d|w}") or an absolute ISO-8601 date.
package durationspec

import (
	"fmt"
	"strconv"
	"time"
)

// Parse resolves spec against now, returning the absolute cutoff time it
// names. "30d" means 30 days before now; "2026-01-01" means that date at
// midnight UTC.
func Parse(spec string, now time.Time) (time.Time, error) {
	if spec == "" {
		return time.Time{}, fmt.Errorf("empty duration spec")
	}

	if d, ok := parseRelative(spec); ok {
		return now.Add(-d), nil
	}

	if t, err := time.Parse("2006-01-02", spec); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, spec); err == nil {
		return t, nil
	}

	return time.Time{}, fmt.Errorf("durationspec: %q is neither a relative shorthand (<n>{m|h|d|w}) nor an ISO date", spec)
}

func parseRelative(spec string) (time.Duration, bool) {
	if len(spec) < 2 {
		return 0, false
	}
	unit := spec[len(spec)-1]
	n, err := strconv.Atoi(spec[:len(spec)-1])
	if err != nil || n < 0 {
		return 0, false
	}

	switch unit {
	case 'm':
		return time.Duration(n) * time.Minute, true
	case 'h':
		return time.Duration(n) * time.Hour, true
	case 'd':
		return time.Duration(n) * 24 * time.Hour, true
	case 'w':
		return time.Duration(n) * 7 * 24 * time.Hour, true
	default:
		return 0, false
	}
}

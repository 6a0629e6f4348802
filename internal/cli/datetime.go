package cli

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	reDateOnly = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	reDateTime = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}[ T]\d{2}:\d{2}$`)
	reTimeOnly = regexp.MustCompile(`^\d{2}:\d{2}$`)
)

// parseWhen parses the update-scheduling inputs people actually type
// during an incident:
// - +30m / +2h            (relative to now)
// - HH:MM                 (today, local time)
// - YYYY-MM-DD            (local midnight)
// - YYYY-MM-DD HH:MM      (local date+time)
// - RFC3339               (timezone-aware)
func parseWhen(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty time")
	}

	if strings.HasPrefix(s, "+") {
		d, err := time.ParseDuration(s[1:])
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid duration %q (expected +30m, +2h, ...)", s)
		}
		return now.Add(d), nil
	}

	if reTimeOnly.MatchString(s) {
		t, err := time.ParseInLocation("15:04", s, now.Location())
		if err != nil {
			return time.Time{}, err
		}
		return time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location()), nil
	}

	if reDateOnly.MatchString(s) {
		return time.ParseInLocation("2006-01-02", s, now.Location())
	}

	if reDateTime.MatchString(s) {
		norm := strings.Replace(s, "T", " ", 1)
		return time.ParseInLocation("2006-01-02 15:04", norm, now.Location())
	}

	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return ts, nil
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}

	return time.Time{}, fmt.Errorf("invalid time %q (expected +30m, HH:MM, YYYY-MM-DD, YYYY-MM-DD HH:MM, or RFC3339)", s)
}

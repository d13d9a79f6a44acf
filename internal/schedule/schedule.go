// Package schedule parses scheduled publish times for posting tools. Two
// input shapes are accepted: an ISO 8601 timestamp (with Z, with a numeric
// offset, or naive meaning UTC) and a relative offset from now such as +1d,
// +2h or +30m. Both normalize to the canonical UTC form
// 2006-01-02T15:04:05Z that the posting APIs expect.
package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// canonical is the wire form handed to posting APIs.
const canonical = "2006-01-02T15:04:05Z"

var offsetPattern = regexp.MustCompile(`^\+(\d+)([dhm])$`)

// ParseScheduledTime normalizes a scheduled time value. Blank input means
// "post now" and returns the empty string with no error.
func ParseScheduledTime(raw string, now func() time.Time) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}

	if strings.HasPrefix(raw, "+") {
		t, err := parseOffset(raw, now)
		if err != nil {
			return "", err
		}
		return t.UTC().Format(canonical), nil
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC().Format(canonical), nil
		}
	}
	return "", fmt.Errorf("invalid scheduled time format: %q", raw)
}

// parseOffset interprets +Nd/+Nh/+Nm relative to now.
func parseOffset(raw string, now func() time.Time) (time.Time, error) {
	m := offsetPattern.FindStringSubmatch(raw)
	if m == nil {
		return time.Time{}, fmt.Errorf("invalid offset format: %q (expected +Nd, +Nh or +Nm)", raw)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid offset format: %q: %w", raw, err)
	}

	var d time.Duration
	switch m[2] {
	case "d":
		d = time.Duration(n) * 24 * time.Hour
	case "h":
		d = time.Duration(n) * time.Hour
	case "m":
		d = time.Duration(n) * time.Minute
	}
	return now().Add(d), nil
}

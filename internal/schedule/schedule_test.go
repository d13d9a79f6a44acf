package schedule

import (
	"testing"
	"time"
)

func fixedNow() time.Time {
	return time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
}

func TestParseScheduledTime(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"blank means post now", "", ""},
		{"whitespace means post now", "   ", ""},
		{"already canonical", "2024-12-31T23:59:59Z", "2024-12-31T23:59:59Z"},
		{"zero offset", "2024-12-31T23:59:59+00:00", "2024-12-31T23:59:59Z"},
		{"positive offset converts to UTC", "2025-01-01T04:59:59+05:00", "2024-12-31T23:59:59Z"},
		{"naive timestamp is UTC", "2024-12-31T23:59:59", "2024-12-31T23:59:59Z"},
		{"days offset", "+1d", "2024-06-16T10:00:00Z"},
		{"hours offset", "+2h", "2024-06-15T12:00:00Z"},
		{"minutes offset", "+30m", "2024-06-15T10:30:00Z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseScheduledTime(tt.raw, fixedNow)
			if err != nil {
				t.Fatalf("ParseScheduledTime(%q) returned error: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("ParseScheduledTime(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseScheduledTimeRejectsMalformed(t *testing.T) {
	for _, raw := range []string{"+10", "+10s", "+d", "-1d", "not-a-date", "2024-13-01T00:00:00Z"} {
		if _, err := ParseScheduledTime(raw, fixedNow); err == nil {
			t.Errorf("ParseScheduledTime(%q) expected an error", raw)
		}
	}
}

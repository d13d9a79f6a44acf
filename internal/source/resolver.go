// Package source resolves (source, key) pairs against the process
// environment and the built-in clock. JSON lookups live in jsonroot; the
// processor stitches the three sources together per invocation.
package source

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/postcraft/contentpipe/internal/value"
)

// Builtin keys understood by the clock source.
const (
	KeyCurrDate     = "CURR_DATE"
	KeyCurrTime     = "CURR_TIME"
	KeyCurrDatetime = "CURR_DATETIME"
)

// Resolver answers env.* and builtin.* lookups. Both are infallible: a
// missing environment variable and an unknown builtin key resolve to the
// empty string (the latter with a warning).
type Resolver struct {
	getenv   func(string) string
	now      func() time.Time
	timezone string
	logger   *slog.Logger
}

// NewResolver builds a resolver around the given environment lookup and
// clock. timezone is the raw configuration value (UTC or UTC±N); it is
// interpreted lazily so each builtin resolution sees the current setting.
func NewResolver(getenv func(string) string, now func() time.Time, timezone string, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{getenv: getenv, now: now, timezone: timezone, logger: logger}
}

// Env resolves an environment variable; missing variables become the empty
// string, never an error.
func (r *Resolver) Env(key string) value.Value {
	v := r.getenv(key)
	r.logger.Debug("resolved env placeholder", "key", key, "value", v)
	return value.Str(v)
}

// Builtin resolves a clock key against the configured timezone snapshot.
func (r *Resolver) Builtin(key string) value.Value {
	now := r.now().In(r.location())
	var out string
	switch key {
	case KeyCurrDate:
		out = now.Format("2006-01-02")
	case KeyCurrTime:
		out = now.Format("15:04:05")
	case KeyCurrDatetime:
		out = now.Format("2006-01-02 15:04:05")
	default:
		r.logger.Warn("unknown builtin key", "key", key)
		return value.Str("")
	}
	r.logger.Debug("resolved builtin placeholder", "key", key, "value", out)
	return value.Str(out)
}

func (r *Resolver) location() *time.Location {
	tz := r.timezone
	if tz == "" {
		tz = r.getenv("TIME_ZONE")
	}
	loc, ok := ParseTimezone(tz)
	if !ok {
		r.logger.Warn("unrecognized TIME_ZONE, defaulting to UTC", "value", tz)
	}
	return loc
}

var offsetPattern = regexp.MustCompile(`^UTC([+-]\d+)$`)

// ParseTimezone interprets a timezone configuration value: empty or UTC mean
// UTC, UTC±N is a whole-hour offset. The bool reports whether the value was
// recognized; unrecognized values fall back to UTC.
func ParseTimezone(tz string) (*time.Location, bool) {
	tz = strings.ToUpper(strings.TrimSpace(tz))
	if tz == "" || tz == "UTC" {
		return time.UTC, true
	}
	m := offsetPattern.FindStringSubmatch(tz)
	if m == nil {
		return time.UTC, false
	}
	var hours int
	if _, err := fmt.Sscanf(m[1], "%d", &hours); err != nil {
		return time.UTC, false
	}
	return time.FixedZone(fmt.Sprintf("UTC%+d", hours), hours*3600), true
}

package config

import (
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"
)

// Loader reads validated values. A value that is set but fails parsing or
// validation is replaced by its default; the loader logs a warning, counts the
// fallback and remembers it so callers can report every substitution at once.
//
// Example:
//
//	l := config.NewLoader(metrics)
//	timeout := l.Duration("FEED_TIMEOUT", 10*time.Second, config.DurationRange(time.Second, time.Minute))
//	schedule := l.String("PROBE_CRON_SCHEDULE", "*/5 * * * *", config.ValidateCronSchedule)
//	l.Done()
type Loader struct {
	metrics *Metrics

	mu       sync.Mutex
	warnings []string
}

// NewLoader creates a loader. metrics may be nil.
func NewLoader(metrics *Metrics) *Loader {
	return &Loader{metrics: metrics}
}

// String reads key and validates it when validate is non-nil.
func (l *Loader) String(key, def string, validate func(string) error) string {
	v := GetEnvString(key, def)
	if v == def || validate == nil {
		return v
	}
	if err := validate(v); err != nil {
		l.fallback(key, v, def, err)
		return def
	}
	return v
}

// Int reads key as an integer.
func (l *Loader) Int(key string, def int, validate func(int) error) int {
	raw := GetEnvString(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		l.fallback(key, raw, strconv.Itoa(def), err)
		return def
	}
	if validate != nil {
		if err := validate(v); err != nil {
			l.fallback(key, raw, fmt.Sprint(def), err)
			return def
		}
	}
	return v
}

// Float reads key as a float64.
func (l *Loader) Float(key string, def float64, validate func(float64) error) float64 {
	raw := GetEnvString(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		l.fallback(key, raw, fmt.Sprint(def), err)
		return def
	}
	if validate != nil {
		if err := validate(v); err != nil {
			l.fallback(key, raw, fmt.Sprint(def), err)
			return def
		}
	}
	return v
}

// Duration reads key with time.ParseDuration.
func (l *Loader) Duration(key string, def time.Duration, validate func(time.Duration) error) time.Duration {
	raw := GetEnvString(key, "")
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		l.fallback(key, raw, def.String(), err)
		return def
	}
	if validate != nil {
		if err := validate(v); err != nil {
			l.fallback(key, raw, def.String(), err)
			return def
		}
	}
	return v
}

// Bool reads key with strconv.ParseBool semantics.
func (l *Loader) Bool(key string, def bool) bool {
	return GetEnvBool(key, def)
}

// StringList reads a comma-separated list.
func (l *Loader) StringList(key string, def []string) []string {
	return GetEnvStringList(key, def)
}

// Warnings returns one message per fallback applied so far.
func (l *Loader) Warnings() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.warnings...)
}

// Done records the load in metrics.
func (l *Loader) Done() {
	l.mu.Lock()
	active := len(l.warnings) > 0
	l.mu.Unlock()
	l.metrics.RecordLoad(active)
}

func (l *Loader) fallback(key, value, def string, err error) {
	msg := fmt.Sprintf("invalid %s=%q: %v, falling back to default %q", key, value, err, def)
	slog.Warn("configuration fallback applied",
		slog.String("key", key),
		slog.String("value", value),
		slog.String("default", def),
		slog.String("error", err.Error()))

	l.mu.Lock()
	l.warnings = append(l.warnings, msg)
	l.mu.Unlock()
	l.metrics.RecordFallback(key)
}

package worker

import (
	"errors"
	"fmt"
	"time"

	pkgconfig "newsdesk/pkg/config"
)

// SweepConfig controls the scheduled health sweep.
//
// Environment variables:
//   - PROBE_CRON_SCHEDULE: cron expression or descriptor (default "*/5 * * * *")
//   - PROBE_TIMEZONE: IANA zone the schedule is evaluated in (default "UTC")
//   - PROBE_SWEEP_TIMEOUT: upper bound for one sweep (default 2m)
//   - WORKER_HEALTH_PORT: port of the liveness/metrics server (default 9091)
type SweepConfig struct {
	CronSchedule string
	Timezone     string
	SweepTimeout time.Duration
	HealthPort   int
}

// DefaultConfig returns the sweep defaults.
func DefaultConfig() SweepConfig {
	return SweepConfig{
		CronSchedule: "*/5 * * * *",
		Timezone:     "UTC",
		SweepTimeout: 2 * time.Minute,
		HealthPort:   9091,
	}
}

// Validate reports every invalid field at once.
func (c SweepConfig) Validate() error {
	var errs []error
	if err := pkgconfig.ValidateCronSchedule(c.CronSchedule); err != nil {
		errs = append(errs, fmt.Errorf("CronSchedule: %w", err))
	}
	if err := pkgconfig.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("Timezone: %w", err))
	}
	if err := pkgconfig.ValidatePositiveDuration(c.SweepTimeout); err != nil {
		errs = append(errs, fmt.Errorf("SweepTimeout: %w", err))
	}
	if err := pkgconfig.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("HealthPort: %w", err))
	}
	return errors.Join(errs...)
}

// Location resolves Timezone, falling back to UTC.
func (c SweepConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LoadConfigFromEnv reads the sweep configuration. Invalid values fall back to
// their defaults and are returned as warnings, so the result always validates.
func LoadConfigFromEnv(metrics *pkgconfig.Metrics) (SweepConfig, []string) {
	def := DefaultConfig()
	l := pkgconfig.NewLoader(metrics)

	cfg := SweepConfig{
		CronSchedule: l.String("PROBE_CRON_SCHEDULE", def.CronSchedule, pkgconfig.ValidateCronSchedule),
		Timezone:     l.String("PROBE_TIMEZONE", def.Timezone, pkgconfig.ValidateTimezone),
		SweepTimeout: l.Duration("PROBE_SWEEP_TIMEOUT", def.SweepTimeout, pkgconfig.DurationRange(time.Second, time.Hour)),
		HealthPort:   l.Int("WORKER_HEALTH_PORT", def.HealthPort, pkgconfig.IntRange(1024, 65535)),
	}
	l.Done()
	return cfg, l.Warnings()
}

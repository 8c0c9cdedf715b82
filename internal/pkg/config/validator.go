package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/robfig/cron/v3"
)

// ValidateCronSchedule checks a five-field cron expression
// ("minute hour day month weekday") with the same parser the scheduler
// runs, so anything accepted here is guaranteed to schedule. Descriptors
// like "@daily" are not accepted.
func ValidateCronSchedule(schedule string) error {
	if schedule == "" {
		return fmt.Errorf("invalid cron schedule: cannot be empty")
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", schedule, err)
	}

	return nil
}

// ValidateTimezone checks an IANA timezone name against the system tzdata.
// A correct name still fails on images shipped without tzdata.
func ValidateTimezone(timezone string) error {
	if timezone == "" {
		return fmt.Errorf("invalid timezone: cannot be empty")
	}

	if _, err := time.LoadLocation(timezone); err != nil {
		return fmt.Errorf("invalid timezone '%s': %w", timezone, err)
	}

	return nil
}

// ValidateDatabaseDSN checks that a connection string is a postgres URL
// with a host. The DSN is never echoed into the error; it usually carries
// credentials.
func ValidateDatabaseDSN(dsn string) error {
	if dsn == "" {
		return fmt.Errorf("invalid database DSN: cannot be empty")
	}

	u, err := url.Parse(dsn)
	if err != nil {
		return fmt.Errorf("invalid database DSN: not a parseable URL")
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return fmt.Errorf("invalid database DSN: scheme must be postgres:// or postgresql://")
	}
	if u.Host == "" {
		return fmt.Errorf("invalid database DSN: missing host")
	}

	return nil
}

// ValidateDuration checks that d lies inside [min, max], inclusive.
func ValidateDuration(d, min, max time.Duration) error {
	if min > max {
		return fmt.Errorf("invalid range: min (%v) cannot be greater than max (%v)", min, max)
	}
	if d < min {
		return fmt.Errorf("duration %v is below minimum %v", d, min)
	}
	if d > max {
		return fmt.Errorf("duration %v exceeds maximum %v", d, max)
	}

	return nil
}

// ValidateIntRange checks that value lies inside [min, max], inclusive.
func ValidateIntRange(value, min, max int) error {
	if min > max {
		return fmt.Errorf("invalid range: min (%d) cannot be greater than max (%d)", min, max)
	}
	if value < min {
		return fmt.Errorf("value %d is below minimum %d", value, min)
	}
	if value > max {
		return fmt.Errorf("value %d exceeds maximum %d", value, max)
	}

	return nil
}

// ValidatePositiveDuration checks that d is strictly positive; zero is
// rejected along with negatives.
func ValidatePositiveDuration(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("duration must be positive, got %v", d)
	}

	return nil
}

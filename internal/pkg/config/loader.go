// Package config provides fail-open environment configuration loading.
//
// Loaders never return errors. A variable that is unset falls back to its
// default silently; a value that fails to parse or validate falls back with
// a warning the caller is expected to log. Binaries stay bootable on a bad
// environment, and the warning trail plus ConfigMetrics tell the operator
// what was ignored.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// ConfigLoadResult is the outcome of loading one configuration value.
// Value holds the effective value (the default when FallbackApplied is
// true); Warnings carries one message per rejected environment value.
type ConfigLoadResult struct {
	Value           any
	Warnings        []string
	FallbackApplied bool
}

// fallback builds the result for an environment value that was rejected.
func fallback(envKey, raw string, err error, def any) ConfigLoadResult {
	warning := fmt.Sprintf("Invalid %s='%s': %v, falling back to default '%v'", envKey, raw, err, def)
	return ConfigLoadResult{
		Value:           def,
		Warnings:        []string{warning},
		FallbackApplied: true,
	}
}

// LoadEnvString returns the environment value for envKey, or defaultValue
// when the variable is unset or empty. No validation is applied; use
// LoadEnvWithFallback when the value has a shape to enforce.
func LoadEnvString(envKey, defaultValue string) string {
	if value := os.Getenv(envKey); value != "" {
		return value
	}
	return defaultValue
}

// LoadEnvWithFallback loads a string from envKey and runs it through
// validator (nil skips validation). An unset or empty variable yields the
// default with no warning; a value the validator rejects yields the default
// with a warning and FallbackApplied set.
func LoadEnvWithFallback(envKey, defaultValue string, validator func(string) error) ConfigLoadResult {
	value := os.Getenv(envKey)
	if value == "" {
		return ConfigLoadResult{Value: defaultValue}
	}
	if validator != nil {
		if err := validator(value); err != nil {
			return fallback(envKey, value, err, defaultValue)
		}
	}
	return ConfigLoadResult{Value: value}
}

// LoadEnvDuration loads a time.Duration from envKey, accepting anything
// time.ParseDuration does ("30s", "5m", "1h30m"). Parse failures and
// validator rejections fall back to defaultValue with a warning.
func LoadEnvDuration(envKey string, defaultValue time.Duration, validator func(time.Duration) error) ConfigLoadResult {
	raw := os.Getenv(envKey)
	if raw == "" {
		return ConfigLoadResult{Value: defaultValue}
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fallback(envKey, raw, err, defaultValue)
	}
	if validator != nil {
		if err := validator(parsed); err != nil {
			return fallback(envKey, raw, err, defaultValue)
		}
	}
	return ConfigLoadResult{Value: parsed}
}

// LoadEnvInt loads an int from envKey. Parse failures and validator
// rejections fall back to defaultValue with a warning.
func LoadEnvInt(envKey string, defaultValue int, validator func(int) error) ConfigLoadResult {
	raw := os.Getenv(envKey)
	if raw == "" {
		return ConfigLoadResult{Value: defaultValue}
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback(envKey, raw, err, defaultValue)
	}
	if validator != nil {
		if err := validator(parsed); err != nil {
			return fallback(envKey, raw, err, defaultValue)
		}
	}
	return ConfigLoadResult{Value: parsed}
}

// LoadEnvBool loads a bool from envKey, accepting the spellings
// strconv.ParseBool does ("1", "t", "true", "0", "f", "false", plus case
// variants). Anything else falls back to defaultValue with a warning.
func LoadEnvBool(envKey string, defaultValue bool) ConfigLoadResult {
	raw := os.Getenv(envKey)
	if raw == "" {
		return ConfigLoadResult{Value: defaultValue}
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback(envKey, raw, err, defaultValue)
	}
	return ConfigLoadResult{Value: parsed}
}

package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// ErrConfigMissing indicates a requested configuration value is absent.
// The rotation fails rather than guessing a default cycle length.
var ErrConfigMissing = fmt.Errorf("configuration value missing")

// KeyCycleDuration names the cycle length parameter.
const KeyCycleDuration = "cycle-duration"

// DurationProvider exposes duration-valued parameters from an external
// configuration source. The rotation reads the cycle duration through
// this interface once per invocation, so the value can change between
// ticks without a restart.
type DurationProvider interface {
	GetDuration(key string) (time.Duration, error)
}

// EnvDurationProvider resolves duration keys against environment
// variables ("cycle-duration" -> CYCLE_DURATION), reading the
// environment on every call.
type EnvDurationProvider struct{}

func NewEnvDurationProvider() *EnvDurationProvider {
	return &EnvDurationProvider{}
}

func (p *EnvDurationProvider) GetDuration(key string) (time.Duration, error) {
	envName := strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
	raw := os.Getenv(envName)
	if raw == "" {
		return 0, fmt.Errorf("%w: %s (%s)", ErrConfigMissing, key, envName)
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration for %s must be positive, got %s", key, d)
	}
	return d, nil
}

// Package pacing adapts how often a player is asked a question.
//
// The controller is a bounded single-step linear controller driven only by the
// previous attempt: a correct answer shortens the interval by one step, a
// wrong answer or failure lengthens it by one step, and zero points leave it
// alone. Intervals are whole milliseconds.
package pacing

import (
	"errors"
	"fmt"
	"time"
)

// Default constants. Config values override them.
const (
	DefaultInterval = 5000
	MinInterval     = 2000
	MaxInterval     = 20000
	Step            = 100
)

var ErrInvalidConfig = errors.New("invalid pacing config")

// Config holds the controller constants in milliseconds.
type Config struct {
	Default int `yaml:"default_ms" env:"PACING_DEFAULT_MS"`
	Min     int `yaml:"min_ms" env:"PACING_MIN_MS"`
	Max     int `yaml:"max_ms" env:"PACING_MAX_MS"`
	Step    int `yaml:"step_ms" env:"PACING_STEP_MS"`
}

// DefaultConfig returns the standard constant set.
func DefaultConfig() Config {
	return Config{
		Default: DefaultInterval,
		Min:     MinInterval,
		Max:     MaxInterval,
		Step:    Step,
	}
}

// Validate checks 0 < min <= default <= max and step > 0.
func (c Config) Validate() error {
	if c.Min <= 0 {
		return fmt.Errorf("%w: min %d must be positive", ErrInvalidConfig, c.Min)
	}
	if c.Default < c.Min || c.Default > c.Max {
		return fmt.Errorf("%w: default %d outside [%d, %d]", ErrInvalidConfig, c.Default, c.Min, c.Max)
	}
	if c.Step <= 0 {
		return fmt.Errorf("%w: step %d must be positive", ErrInvalidConfig, c.Step)
	}
	return nil
}

// Next returns the interval to use after an attempt worth lastPoints.
func (c Config) Next(current, lastPoints int) int {
	switch {
	case lastPoints > 0:
		return max(c.Min, c.Clamp(current)-c.Step)
	case lastPoints < 0:
		return min(c.Max, c.Clamp(current)+c.Step)
	default:
		return current
	}
}

// Clamp bounds an interval to [Min, Max].
func (c Config) Clamp(interval int) int {
	return max(c.Min, min(c.Max, interval))
}

// Duration converts a millisecond interval into a time.Duration.
func Duration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// Package config loads server settings from the environment, an optional
// .env file and an optional YAML file holding the pacing constants.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/mcdev12/quizrunner/go/internal/game/pacing"
)

type Config struct {
	HTTPAddr           string        `env:"HTTP_ADDR" envDefault:":3000"`
	StateFile          string        `env:"STATE_FILE" envDefault:"./state.json"`
	LogLevel           string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat          string        `env:"LOG_FORMAT" envDefault:"console"`
	ConfigFile         string        `env:"CONFIG_FILE"`
	NATSURL            string        `env:"NATS_URL"`
	NATSStream         string        `env:"NATS_STREAM" envDefault:"QUIZ_EVENTS"`
	RedisAddr          string        `env:"REDIS_ADDR"`
	RedisKey           string        `env:"REDIS_KEY" envDefault:"quiz:game_state"`
	AdminPasswordHash  string        `env:"ADMIN_PASSWORD_HASH"`
	ParticipantTimeout time.Duration `env:"PARTICIPANT_TIMEOUT" envDefault:"0s"`

	Pacing pacing.Config
}

type fileConfig struct {
	Pacing pacing.Config `yaml:"pacing"`
}

// Load reads .env if present and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	return parse(env.Options{})
}

// LoadFrom parses the given environment instead of the process one.
func LoadFrom(environment map[string]string) (*Config, error) {
	return parse(env.Options{Environment: environment})
}

// parse applies, in order: built-in pacing defaults, the YAML file named by
// CONFIG_FILE, then the environment.
func parse(opts env.Options) (*Config, error) {
	cfg := Config{Pacing: pacing.DefaultConfig()}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	if cfg.ConfigFile != "" {
		file := fileConfig{Pacing: pacing.DefaultConfig()}
		data, err := os.ReadFile(cfg.ConfigFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
		cfg.Pacing = file.Pacing
		if err := env.ParseWithOptions(&cfg, opts); err != nil {
			return nil, fmt.Errorf("parsing environment: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if err := c.Pacing.Validate(); err != nil {
		return err
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("invalid LOG_FORMAT %q: want console or json", c.LogFormat)
	}
	if c.ParticipantTimeout < 0 {
		return fmt.Errorf("invalid PARTICIPANT_TIMEOUT %s", c.ParticipantTimeout)
	}
	return nil
}

// Level returns the configured zerolog level. Validate has already
// checked it parses.
func (c *Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

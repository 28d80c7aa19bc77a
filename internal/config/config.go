// Package config loads babylog settings from an optional YAML file and
// BABYLOG_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

var (
	ErrConfigNotLoaded = errors.New("config not loaded")
)

type Environment string

const (
	Production  Environment = "prod"
	Development Environment = "dev"
)

func (e *Environment) SetValue(s string) error {
	*e = Environment(s)
	if *e != Production && *e != Development {
		return configNotLoadedErr(`only "prod" and "dev" environments are allowed`)
	}
	return nil
}

type Config struct {
	App struct {
		Env      Environment `yaml:"env" env:"ENV" env-default:"prod"`
		LogLevel string      `yaml:"log_level" env:"LOG_LEVEL" env-default:"warn"`
	} `yaml:"app" env-prefix:"BABYLOG_APP_"`

	DB struct {
		Path string `yaml:"path" env:"PATH"`
	} `yaml:"db" env-prefix:"BABYLOG_DB_"`

	Reminder struct {
		FeedingThreshold int           `yaml:"feeding_threshold" env:"FEEDING_THRESHOLD" env-default:"180"`
		DiaperThreshold  int           `yaml:"diaper_threshold" env:"DIAPER_THRESHOLD" env-default:"0"`
		Interval         time.Duration `yaml:"interval" env:"INTERVAL" env-default:"1m"`
		Permission       string        `yaml:"permission" env:"PERMISSION" env-default:"granted"`
		Throttle         time.Duration `yaml:"throttle" env:"THROTTLE" env-default:"0s"`
		SessionMaxAge    time.Duration `yaml:"session_max_age" env:"SESSION_MAX_AGE" env-default:"2h"`
	} `yaml:"reminder" env-prefix:"BABYLOG_REMINDER_"`

	Timer struct {
		TickInterval time.Duration `yaml:"tick_interval" env:"TICK_INTERVAL" env-default:"1s"`
	} `yaml:"timer" env-prefix:"BABYLOG_TIMER_"`

	Metrics struct {
		Addr string `yaml:"addr" env:"ADDR"`
	} `yaml:"metrics" env-prefix:"BABYLOG_METRICS_"`
}

// Load reads filePath when it is set and exists, then applies the
// environment. An empty path reads the environment only.
func Load(filePath string) (*Config, error) {
	cfg := &Config{}

	if filePath != "" {
		if _, err := os.Stat(filePath); err == nil {
			if err := cleanenv.ReadConfig(filePath, cfg); err != nil {
				return nil, configNotLoadedErr("config not loaded: %w", err)
			}
			return cfg, validate(cfg)
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, configNotLoadedErr("config not loaded: %w", err)
		}
	}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, configNotLoadedErr("config not loaded: %w", err)
	}
	return cfg, validate(cfg)
}

func MustLoad(filePath string) *Config {
	cfg, err := Load(filePath)
	if err != nil {
		panic(err)
	}
	return cfg
}

func validate(cfg *Config) error {
	if cfg.Reminder.FeedingThreshold < 0 || cfg.Reminder.DiaperThreshold < 0 {
		return configNotLoadedErr("reminder thresholds must be >= 0")
	}
	if cfg.Reminder.Interval <= 0 {
		return configNotLoadedErr("reminder interval must be positive, got %s", cfg.Reminder.Interval)
	}
	if cfg.Timer.TickInterval <= 0 {
		return configNotLoadedErr("timer tick interval must be positive, got %s", cfg.Timer.TickInterval)
	}
	return nil
}

func configNotLoadedErr(format string, args ...any) error {
	return errors.Join(fmt.Errorf(format, args...), ErrConfigNotLoaded)
}

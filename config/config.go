package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	Env  string `env:"ENV" envDefault:"local" validate:"required,oneof=local staging production"`
	Port string `env:"PORT" envDefault:"8080" validate:"required"`

	DatabaseURL string `env:"DATABASE_URL,required" validate:"required"`

	SchedulerIntervalSec int `env:"SCHEDULER_INTERVAL_SEC" envDefault:"10" validate:"min=1,max=300"`
	PollIntervalSec      int `env:"POLL_INTERVAL_SEC" envDefault:"1" validate:"min=1,max=60"`
	WorkerConcurrency    int `env:"WORKER_CONCURRENCY" envDefault:"32" validate:"min=1,max=1024"`
	ReaperIntervalSec    int `env:"REAPER_INTERVAL_SEC" envDefault:"60" validate:"min=1,max=3600"`
	StaleRunTimeoutSec   int `env:"STALE_RUN_TIMEOUT_SEC" envDefault:"600" validate:"min=10"`

	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info" validate:"required,oneof=debug info warn error"`

	JWTSecret string `env:"JWT_SECRET,required" validate:"required,min=32"`

	// Optional failure notifications (Resend).
	ResendAPIKey string `env:"RESEND_API_KEY"`
	ResendFrom   string `env:"RESEND_FROM"`
	AlertEmail   string `env:"ALERT_EMAIL"`

	// SeedFile, when set, is loaded at startup before the services start.
	SeedFile string `env:"SEED_FILE"`
}

func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SlogLevel converts the LOG_LEVEL string to a slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

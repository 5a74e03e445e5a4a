// Package config loads server configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config contains server configuration parameters.
type Config struct {
	Addr         string `env:"ADDR" envDefault:":8080"`
	DatabaseURL  string `env:"DATABASE_URL"`
	DownloadsDir string `env:"DOWNLOADS_DIR" envDefault:"downloads"`
	WebDir       string `env:"WEB_DIR" envDefault:"web"`
	LogLevel     int    `env:"LOG_LEVEL" envDefault:"0"`

	// MailAPIKey may be empty; only the mail endpoint degrades without it.
	MailAPIKey string `env:"MAIL_API_KEY"`
	MailFrom   string `env:"MAIL_FROM" envDefault:"noreply@localhost"`
	MailTo     string `env:"MAIL_TO"`
}

// New loads configuration from environment variables.
func New() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	return &cfg, nil
}

package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/eliseohh/edupagebot/internal/portal"
)

type Config struct {
	Token        string        `env:"TELEGRAM_TOKEN,required,notEmpty"`
	PollTimeout  time.Duration `env:"TELEGRAM_POLL_TIMEOUT" envDefault:"10s"`
	FetchTimeout time.Duration `env:"EDUBOT_FETCH_TIMEOUT" envDefault:"15s"`

	// JournalPath is the SQLite delivery journal. Empty disables it.
	JournalPath string `env:"EDUBOT_JOURNAL"`
	Debug       bool   `env:"EDUBOT_DEBUG"`

	Portal portal.Credentials
}

// Load reads envFile into the process environment, if it exists, and parses
// the result. Variables already set take precedence over the file.
func Load(envFile string) (*Config, error) {
	if err := loadEnvFile(envFile); err != nil {
		return nil, err
	}
	return Parse(nil)
}

// LoadJournalPath reads only EDUBOT_JOURNAL, so tools that inspect the
// journal do not need a bot token.
func LoadJournalPath(envFile string) (string, error) {
	if err := loadEnvFile(envFile); err != nil {
		return "", err
	}
	var cfg struct {
		Path string `env:"EDUBOT_JOURNAL"`
	}
	if err := env.Parse(&cfg); err != nil {
		return "", fmt.Errorf("parse config: %w", err)
	}
	return cfg.Path, nil
}

func loadEnvFile(envFile string) error {
	if envFile == "" {
		return nil
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load %s: %w", envFile, err)
	}
	return nil
}

// Parse builds a Config from environ, or from the process environment when
// environ is nil.
func Parse(environ map[string]string) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.FetchTimeout <= 0 {
		return nil, fmt.Errorf("parse config: EDUBOT_FETCH_TIMEOUT must be positive, got %s", cfg.FetchTimeout)
	}
	return &cfg, nil
}

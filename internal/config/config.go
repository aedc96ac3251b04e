package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the lottery server.
type Config struct {
	Addr            string        `env:"LOTTERY_ADDR" envDefault:":8080"`
	SessionTTL      time.Duration `env:"LOTTERY_SESSION_TTL" envDefault:"1h"`
	JanitorInterval time.Duration `env:"LOTTERY_JANITOR_INTERVAL" envDefault:"10m"`
	// SeedDefaults starts every new session with the default roster and prizes.
	SeedDefaults bool `env:"LOTTERY_SEED_DEFAULTS" envDefault:"true"`
	// LegacyPrizeMatch counts records without a prize id against a prize by
	// scope, name and context.
	LegacyPrizeMatch bool `env:"LOTTERY_LEGACY_PRIZE_MATCH" envDefault:"false"`
	// RandomSeed fixes the draw sequence; 0 seeds every session from crypto/rand.
	RandomSeed uint64 `env:"LOTTERY_RANDOM_SEED" envDefault:"0"`
	Verbose    bool   `env:"LOTTERY_VERBOSE" envDefault:"false"`
	LogFile    string `env:"LOTTERY_LOG_FILE"`
	GinMode    string `env:"GIN_MODE" envDefault:"release"`
}

// Load reads an optional .env file from the working directory, then parses
// the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return Parse()
}

// Parse builds a Config from environment variables only.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("LOTTERY_SESSION_TTL must be positive")
	}
	if cfg.JanitorInterval <= 0 {
		return nil, fmt.Errorf("LOTTERY_JANITOR_INTERVAL must be positive")
	}
	return &cfg, nil
}

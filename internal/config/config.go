package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	SPADir   string     `env:"SPA_DIR"`
	MapsDir  string     `env:"MAPS_DIR" envDefault:"maps"`

	DefaultMap   string `env:"DEFAULT_MAP" envDefault:"indoors"`
	SeedTownName string `env:"SEED_TOWN_NAME"`
	SeedTownMap  string `env:"SEED_TOWN_MAP" envDefault:"indoors"`

	LeaderboardBackend string `env:"LEADERBOARD_BACKEND" envDefault:"sqlite"`

	Video Video `envPrefix:"VIDEO_"`
}

// Video holds the credentials used to sign video room access tokens.
type Video struct {
	AccountSID   string        `env:"ACCOUNT_SID"`
	APIKeySID    string        `env:"API_KEY_SID"`
	APIKeySecret string        `env:"API_KEY_SECRET"`
	TokenTTL     time.Duration `env:"TOKEN_TTL" envDefault:"1h"`
	DevMode      bool          `env:"DEV_MODE"`
}

// Load reads the environment, after first applying a .env file from the
// working directory when one exists. Variables already set win.
func Load() (*Config, error) {
	return LoadFiles(".env")
}

func LoadFiles(files ...string) (*Config, error) {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c Config) validate() error {
	switch c.LeaderboardBackend {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("LEADERBOARD_BACKEND must be memory or sqlite, got %q", c.LeaderboardBackend)
	}
	if c.Video.TokenTTL <= 0 {
		return fmt.Errorf("VIDEO_TOKEN_TTL must be positive, got %s", c.Video.TokenTTL)
	}
	return nil
}

// Package config loads process configuration from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// History backends
const (
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
	BackendLocal  = "local"
)

// Config holds every setting the binary reads from the environment
type Config struct {
	// Backend selects the history store: redis, sqlite or local
	Backend string `env:"DICETRAY_BACKEND" envDefault:"local"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	SQLiteDSN string `env:"SQLITE_DSN" envDefault:"file:dicetray.db"`

	// ProfilePath is the CLI's profile file; empty means the user config directory
	ProfilePath string `env:"PROFILE_PATH"`

	// ProfileDir holds one profile per Discord user; empty keeps them in memory
	ProfileDir string `env:"PROFILE_DIR"`

	RollDelay time.Duration `env:"ROLL_DELAY" envDefault:"500ms"`

	HTTPAddr string `env:"HTTP_ADDR" envDefault:"localhost:8080"`

	DiscordToken  string `env:"DISCORD_TOKEN"`
	ApplicationID string `env:"APPLICATION_ID"`
	GuildID       string `env:"GUILD_ID"`
	FeedChannelID string `env:"FEED_CHANNEL_ID"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
	Env       string `env:"ENV" envDefault:"prod"`
}

// Load reads the given .env files (".env" when none are named), then parses
// the environment. Missing .env files are ignored; variables already set in
// the environment win.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks settings that have a fixed set of values
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendRedis, BackendSQLite, BackendLocal:
	default:
		return fmt.Errorf("unknown backend %q: must be one of redis, sqlite, local", c.Backend)
	}

	if c.RollDelay < 0 {
		return fmt.Errorf("roll delay cannot be negative: %s", c.RollDelay)
	}

	return nil
}

// ProfileFile returns the CLI profile path, defaulting to the user config directory
func (c *Config) ProfileFile() (string, error) {
	if c.ProfilePath != "" {
		return c.ProfilePath, nil
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("find config directory: %w", err)
	}

	return filepath.Join(dir, "dicetray", "profile.yaml"), nil
}

// IsRemote reports whether the backend shares history between clients
func (c *Config) IsRemote() bool {
	return c.Backend != BackendLocal
}

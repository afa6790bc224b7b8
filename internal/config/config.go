// Package config loads centerview configuration by layering:
// defaults < config file < environment < flags.
package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Host    string `json:"host"`
	Port    int    `json:"port"`
	DataDir string `json:"data_dir"`
	DBPath  string `json:"-"`

	// TrendWindowDays is the default trend window when a request
	// does not set from/to.
	TrendWindowDays int `json:"trend_window_days"`
	// LeaderboardLimit is the default ranking size.
	LeaderboardLimit int `json:"leaderboard_limit"`

	WriteTimeout time.Duration `json:"-"`
}

// Default returns a Config with default values.
func Default() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf(
			"determining home directory: %w", err,
		)
	}
	dataDir := filepath.Join(home, ".centerview")
	return Config{
		Host:             "127.0.0.1",
		Port:             8265,
		DataDir:          dataDir,
		DBPath:           filepath.Join(dataDir, "checkins.db"),
		TrendWindowDays:  30,
		LeaderboardLimit: 5,
		WriteTimeout:     30 * time.Second,
	}, nil
}

// Load builds a Config by layering: defaults < config file < env < flags.
// The provided FlagSet must already be parsed by the caller. Only
// flags that were explicitly set override the lower layers.
func Load(fs *flag.FlagSet) (Config, error) {
	cfg, err := LoadMinimal()
	if err != nil {
		return cfg, err
	}
	applyFlags(&cfg, fs)
	return cfg, nil
}

// LoadMinimal builds a Config from defaults, env, and config file,
// without parsing CLI flags. Use this for subcommands that manage
// their own flag sets, and for config-file reloads.
func LoadMinimal() (Config, error) {
	cfg, err := Default()
	if err != nil {
		return cfg, err
	}
	cfg.loadEnv()

	if err := cfg.loadFile(); err != nil {
		return cfg, fmt.Errorf("loading config file: %w", err)
	}
	if cfg.LeaderboardLimit < 1 {
		return cfg, fmt.Errorf(
			"leaderboard_limit must be >= 1, got %d",
			cfg.LeaderboardLimit,
		)
	}
	if cfg.TrendWindowDays < 1 {
		return cfg, fmt.Errorf(
			"trend_window_days must be >= 1, got %d",
			cfg.TrendWindowDays,
		)
	}
	cfg.DBPath = filepath.Join(cfg.DataDir, "checkins.db")
	return cfg, nil
}

// reload re-applies the config file on top of the receiver, keeping
// env and flag overrides intact. A key deleted from the file keeps
// its last value until restart.
func (c Config) reload() (Config, error) {
	next := c
	if err := next.loadFile(); err != nil {
		return c, err
	}
	if next.LeaderboardLimit < 1 {
		return c, fmt.Errorf(
			"leaderboard_limit must be >= 1, got %d",
			next.LeaderboardLimit,
		)
	}
	if next.TrendWindowDays < 1 {
		return c, fmt.Errorf(
			"trend_window_days must be >= 1, got %d",
			next.TrendWindowDays,
		)
	}
	return next, nil
}

// ConfigPath returns the location of the JSON config file inside the
// data dir.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.DataDir, "config.json")
}

func (c *Config) loadFile() error {
	data, err := os.ReadFile(c.ConfigPath())
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	var file struct {
		Host             *string `json:"host"`
		Port             *int    `json:"port"`
		TrendWindowDays  *int    `json:"trend_window_days"`
		LeaderboardLimit *int    `json:"leaderboard_limit"`
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing %s: %w", c.ConfigPath(), err)
	}

	if file.Host != nil {
		c.Host = *file.Host
	}
	if file.Port != nil {
		c.Port = *file.Port
	}
	if file.TrendWindowDays != nil {
		c.TrendWindowDays = *file.TrendWindowDays
	}
	if file.LeaderboardLimit != nil {
		c.LeaderboardLimit = *file.LeaderboardLimit
	}
	return nil
}

func (c *Config) loadEnv() {
	if v := os.Getenv("CENTERVIEW_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("CENTERVIEW_HOST"); v != "" {
		c.Host = v
	}
	if v := os.Getenv("CENTERVIEW_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Port = port
		}
	}
}

// applyFlags overrides cfg with any flags the user explicitly set.
func applyFlags(cfg *Config, fs *flag.FlagSet) {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "host":
			cfg.Host = f.Value.String()
		case "port":
			if port, err := strconv.Atoi(f.Value.String()); err == nil {
				cfg.Port = port
			}
		case "data-dir":
			cfg.DataDir = f.Value.String()
			cfg.DBPath = filepath.Join(cfg.DataDir, "checkins.db")
		}
	})
}

// RegisterFlags installs the server flags on fs with cfg's current
// values as defaults.
func RegisterFlags(fs *flag.FlagSet, cfg Config) {
	fs.String("host", cfg.Host, "host to bind to")
	fs.Int("port", cfg.Port, "port to listen on")
	fs.String("data-dir", cfg.DataDir, "data directory (database, config)")
}

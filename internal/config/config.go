package config

import (
	"fmt"
	"os"
	"strconv"
)

// config.go loads, validates, and exposes application configuration from
// environment variables (§6 Configuration table), keeping the teacher's
// singleton Get()/SetInstance() contract.

var instance *Config

// Config holds every environment-derived setting.
type Config struct {
	RDAPIToken              string
	TMDBAPIKey              string
	ScanIntervalSecs        int
	JellyfinURL             string
	JellyfinAPIKey          string
	JellyfinRcloneMountPath string

	CacheDir       string
	ListenAddr     string
	LogLevel       string
	MaxConnections int
}

func defaults() *Config {
	return &Config{
		ScanIntervalSecs: 60,
		CacheDir:         "./cache",
		ListenAddr:       ":8080",
		LogLevel:         "info",
		MaxConnections:   256,
	}
}

// Load builds a Config from the process environment.
func Load() (*Config, error) {
	cfg := defaults()

	cfg.RDAPIToken = os.Getenv("RD_API_TOKEN")
	cfg.TMDBAPIKey = os.Getenv("TMDB_API_KEY")
	cfg.JellyfinURL = os.Getenv("JELLYFIN_URL")
	cfg.JellyfinAPIKey = os.Getenv("JELLYFIN_API_KEY")
	cfg.JellyfinRcloneMountPath = os.Getenv("JELLYFIN_RCLONE_MOUNT_PATH")

	if v := os.Getenv("SCAN_INTERVAL_SECS"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("parsing SCAN_INTERVAL_SECS: %w", err)
		}
		cfg.ScanIntervalSecs = secs
	}
	if v := os.Getenv("CACHE_DIR"); v != "" {
		cfg.CacheDir = v
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks required fields and clamps out-of-range numeric fields
// to their defaults, the way the teacher's Validate did for JSON config.
func (c *Config) Validate() error {
	if c.RDAPIToken == "" {
		return fmt.Errorf("RD_API_TOKEN is required")
	}
	if c.TMDBAPIKey == "" {
		return fmt.Errorf("TMDB_API_KEY is required")
	}
	if c.ScanIntervalSecs < 10 {
		c.ScanIntervalSecs = 60
	}
	return nil
}

// NotifierEnabled reports whether all three Jellyfin variables are set
// (§6: the notifier is disabled unless all three are present).
func (c *Config) NotifierEnabled() bool {
	return c.JellyfinURL != "" && c.JellyfinAPIKey != "" && c.JellyfinRcloneMountPath != ""
}

// Get returns the singleton config instance, or defaults if none was set.
func Get() *Config {
	if instance == nil {
		return defaults()
	}
	return instance
}

// SetInstance sets the global config instance.
func SetInstance(cfg *Config) {
	instance = cfg
}

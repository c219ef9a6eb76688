package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

// Config holds the client configuration, loaded from the TOML config
// file and overridable through ISPELL_* environment variables.
type Config struct {
	// ServerURL is the base URL of the iSpell backend API.
	ServerURL string `toml:"server_url"`

	// TrustedOrigin is the only origin accepted for OAuth callback
	// redirects. Defaults to ServerURL when empty.
	TrustedOrigin string `toml:"trusted_origin"`

	// Locale selects the UI message catalog (BCP 47 tag).
	Locale string `toml:"locale"`

	// Accent selects pronunciation preference: "us" or "uk".
	Accent string `toml:"accent"`

	// DailyNew and DailyReview are the local workload targets used to
	// derive the session quota from the backend's due counts.
	DailyNew    int `toml:"daily_new"`
	DailyReview int `toml:"daily_review"`

	// TTSEngine forces a specific speech command. Empty means autodetect.
	TTSEngine string `toml:"tts_engine"`

	// LogLevel controls the file logger (debug, info, warn, error).
	LogLevel string `toml:"log_level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ServerURL:   "https://api.ispell.app",
		Locale:      "en",
		Accent:      "us",
		DailyNew:    10,
		DailyReview: 30,
		LogLevel:    "info",
	}
}

// Load reads the config file at path (missing file is not an error),
// applies environment overrides, and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// First run; defaults plus env are fine.
	case err != nil:
		return cfg, fmt.Errorf("read config: %w", err)
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("ISPELL_SERVER_URL"); v != "" {
		cfg.ServerURL = v
	}
	if v := os.Getenv("ISPELL_LOCALE"); v != "" {
		cfg.Locale = v
	}
	if v := os.Getenv("ISPELL_ACCENT"); v != "" {
		cfg.Accent = v
	}
	if v := os.Getenv("ISPELL_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("ISPELL_DAILY_NEW"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.DailyNew = n
		}
	}
	if v := os.Getenv("ISPELL_DAILY_REVIEW"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.DailyReview = n
		}
	}
}

func (c Config) validate() error {
	if c.ServerURL == "" {
		return errors.New("server_url must not be empty")
	}
	if c.Accent != "us" && c.Accent != "uk" {
		return fmt.Errorf("accent must be \"us\" or \"uk\", got %q", c.Accent)
	}
	if c.DailyNew < 0 || c.DailyReview < 0 {
		return errors.New("daily targets must not be negative")
	}
	return nil
}

// Origin returns the trusted origin for OAuth callbacks.
func (c Config) Origin() string {
	if c.TrustedOrigin != "" {
		return c.TrustedOrigin
	}
	return c.ServerURL
}

// DefaultPath resolves the config file path in priority order:
// 1. ISPELL_CONFIG environment variable
// 2. $XDG_CONFIG_HOME/ispell/config.toml
// 3. ~/.config/ispell/config.toml
func DefaultPath() (string, error) {
	if p := os.Getenv("ISPELL_CONFIG"); p != "" {
		return p, nil
	}

	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		configHome = filepath.Join(home, ".config")
	}

	return filepath.Join(configHome, "ispell", "config.toml"), nil
}

// Save writes the configuration back to path, creating parent
// directories as needed.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Load reads and parses a TOML config file, validates it, and returns the
// resulting Config. Unknown keys are fatal — silently ignoring a typo in a
// config file leads to hard-to-debug behavior.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("config file %s: unknown key %q", path, undecoded[0].String())
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault reads a TOML config file if it exists, otherwise returns a
// Config populated with all default values.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}

	return Load(path)
}

// Validate checks a Config for values the engine cannot run with.
func Validate(cfg *Config) error {
	if cfg.URL == "" {
		return errors.New("url must be set")
	}

	if cfg.UserPrefix == "" {
		return errors.New("user_prefix must not be empty")
	}

	if cfg.GroupPrefix == "" {
		return errors.New("group_prefix must not be empty")
	}

	if cfg.GroupFoldersEnabled && cfg.GroupFoldersTag == "" {
		return errors.New("groupfolders_tag must be set when groupfolders_enabled is true")
	}

	if cfg.DatabasePath == "" {
		return errors.New("database_path must not be empty")
	}

	switch cfg.Logging.LogFormat {
	case "", "text", "json":
	default:
		return fmt.Errorf("log_format must be \"text\" or \"json\", got %q", cfg.Logging.LogFormat)
	}

	if cfg.Network.RequestsPerSecond < 0 {
		return errors.New("requests_per_second must not be negative")
	}

	return nil
}

// Package config implements TOML configuration loading, validation, and
// write-back for churchsync. The settings file holds everything an operator
// sets once; runtime state (the persisted API session) lives in the platform
// config store instead.
package config

// Config is the top-level configuration structure parsed from a TOML file.
type Config struct {
	// URL is the ChurchTools instance root, e.g. "https://example.church.tools".
	URL string `toml:"url"`
	// APIToken is the standing login token used when session reuse fails.
	APIToken string `toml:"api_token"`

	// UserPrefix scopes managed accounts: UID = prefix + remote person id.
	UserPrefix string `toml:"user_prefix"`
	// GroupPrefix is prepended to remote group names for local group ids.
	GroupPrefix string `toml:"group_prefix"`
	// LeaderGroupSuffix is appended to local group ids for leader groups.
	LeaderGroupSuffix string `toml:"leader_group_suffix"`
	// GroupFoldersTag marks remote groups eligible for folder provisioning.
	GroupFoldersTag string `toml:"groupfolders_tag"`
	// GroupFoldersEnabled gates the group/folder reconciliation pass.
	GroupFoldersEnabled bool `toml:"groupfolders_enabled"`

	// DatabasePath is the platform sqlite database location.
	DatabasePath string `toml:"database_path"`

	Logging LoggingConfig `toml:"logging"`
	Network NetworkConfig `toml:"network"`
}

// LoggingConfig controls log output behavior.
type LoggingConfig struct {
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"` // "text" or "json"
}

// NetworkConfig controls remote HTTP client behavior. The rate limit keeps
// the engine under the remote API's throttling threshold.
type NetworkConfig struct {
	UserAgent         string  `toml:"user_agent"`
	RequestTimeout    string  `toml:"request_timeout"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
}

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		UserPrefix:        "ct-",
		GroupPrefix:       "ct-",
		LeaderGroupSuffix: " (Leitung)",
		GroupFoldersTag:   "Cloud",
		DatabasePath:      "churchsync.db",
		Logging: LoggingConfig{
			LogLevel:  "info",
			LogFormat: "text",
		},
		Network: NetworkConfig{
			UserAgent:         "churchsync (devdot/nextcloud-churchtools)",
			RequestTimeout:    "30s",
			RequestsPerSecond: 5,
			Burst:             5,
		},
	}
}

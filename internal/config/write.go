package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// configFileMode keeps the settings file private: it carries the API token.
const configFileMode = 0o600

// Save writes the config as TOML to path atomically (temp file + rename), so
// a crash mid-write never leaves a truncated settings file behind.
func Save(path string, cfg *Config) error {
	var buf bytes.Buffer

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, ".churchsync-config-*")
	if err != nil {
		return fmt.Errorf("creating temp config file: %w", err)
	}

	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)

		return fmt.Errorf("writing temp config file: %w", err)
	}

	if err := tmp.Chmod(configFileMode); err != nil {
		tmp.Close()
		os.Remove(tmpName)

		return fmt.Errorf("setting config file mode: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp config file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming config file into place: %w", err)
	}

	return nil
}

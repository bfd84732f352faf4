// Package config loads the CLI configuration from a YAML file under the
// user's home directory. A missing file yields the defaults; a malformed
// one is an error.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk CLI configuration.
type Config struct {
	// BaseURL is the blog API root.
	BaseURL string `yaml:"base_url"`

	// PageSize is the column list page size.
	PageSize int `yaml:"page_size"`

	// TokenDB is the path of the SQLite token database.
	TokenDB string `yaml:"token_db"`

	// LiveURL is the websocket update stream, empty to disable.
	LiveURL string `yaml:"live_url"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		BaseURL:  "http://localhost:7001/api",
		PageSize: 6,
		TokenDB:  filepath.Join(configDir(), "token.db"),
	}
}

// DefaultPath returns where Load looks when no path is given.
func DefaultPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

// Load reads the configuration at path, or the default location when
// path is empty. Fields absent from the file keep their defaults.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.PageSize < 1 {
		cfg.PageSize = Default().PageSize
	}
	return cfg, nil
}

func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".pillar"
	}
	return filepath.Join(home, ".pillar")
}

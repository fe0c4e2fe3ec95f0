package config

import (
	_ "embed"
	"errors"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ErrNotFound is returned by Discover when no config file exists.
var ErrNotFound = errors.New("config not found")

//go:embed default_config.toml
var defaultConfig string

// DefaultTOML returns the example config shipped with the binary.
func DefaultTOML() string {
	return defaultConfig
}

// WriteDefault writes the example config to the specified path.
// Creates parent directories if needed.
func WriteDefault(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(defaultConfig), 0644)
}

// Write serializes the config to TOML and writes it to the specified path.
func (c *Config) Write(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(c)
}

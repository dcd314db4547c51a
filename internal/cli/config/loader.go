// Package config defines the CLI configuration structure.
package config

import (
	"os"
	"path/filepath"
)

// DefaultConfigPath returns the default CLI config file path.
func DefaultConfigPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".redisnode-cli", "cli.yaml")
}

// Load returns the CLI configuration for path (DefaultConfigPath when
// empty). It always returns Default(): the file's contents are not read or
// parsed, whether or not it exists.
func Load(path string) (*CLIConfig, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}

	// TODO: Read and parse YAML file
	return Default(), nil
}

// Save creates the directory that holds path (DefaultConfigPath when empty)
// with mode 0700. cfg is not written: no file is created or changed.
func Save(cfg *CLIConfig, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	// TODO: Write YAML file with appropriate permissions (0600)
	return nil
}

// Merge returns cfg unchanged; env and flags are not applied.
func Merge(cfg *CLIConfig, env map[string]string, flags map[string]string) *CLIConfig {
	// TODO: Override with REDISNODE_* environment variables
	// TODO: Override with command-line flags
	return cfg
}

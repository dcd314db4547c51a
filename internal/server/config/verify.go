// Package config defines the server configuration structure.
package config

import (
	"errors"
	"os"
)

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	if err := verifyStorage(&cfg.Storage); err != nil {
		return err
	}
	return nil
}

func verifyServer(cfg *ServerSection) error {
	if cfg.Redis.Enabled {
		if cfg.Redis.Port <= 0 || cfg.Redis.Port > 65535 {
			return errors.New("server.redis.port must be between 1 and 65535")
		}
		if len(cfg.Redis.Binds) == 0 {
			return errors.New("server.redis.binds must name at least one address")
		}
		if cfg.Redis.WorkersN < 1 {
			return errors.New("server.redis.workers_n must be at least 1")
		}
		if cfg.Redis.ReplPort != 0 && cfg.Redis.ReplPort == cfg.Redis.Port {
			return errors.New("server.redis.repl_port must differ from server.redis.port")
		}
	}
	return nil
}

func verifyStorage(cfg *StorageSection) error {
	if cfg.DataDir == "" {
		return errors.New("storage.data_dir is required")
	}

	// Check if data directory exists or can be created
	if err := os.MkdirAll(cfg.DataDir, 0750); err != nil {
		return errors.New("cannot create data directory: " + err.Error())
	}

	if cfg.GCThreshold <= 0 || cfg.GCThreshold > 1 {
		return errors.New("storage.gc_threshold must be in (0, 1]")
	}

	return nil
}

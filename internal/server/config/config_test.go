// Package config defines the server configuration structure.
package config

import (
	"os"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.HTTP.Addr != DefaultHTTPAddr {
		t.Errorf("HTTP.Addr = %q, want %q", cfg.Server.HTTP.Addr, DefaultHTTPAddr)
	}
	if !cfg.Server.Redis.Enabled {
		t.Error("Redis should be enabled by default")
	}
	if cfg.Server.Redis.Port != DefaultRedisPort {
		t.Errorf("Redis.Port = %d, want %d", cfg.Server.Redis.Port, DefaultRedisPort)
	}
	if cfg.Server.Redis.WorkersN != DefaultRedisWorkersN {
		t.Errorf("Redis.WorkersN = %d, want %d", cfg.Server.Redis.WorkersN, DefaultRedisWorkersN)
	}
	if cfg.Server.Local.Path != DefaultLocalSocket {
		t.Errorf("Local.Path = %q, want %q", cfg.Server.Local.Path, DefaultLocalSocket)
	}

	if cfg.Storage.DataDir != DefaultDataDir {
		t.Errorf("DataDir = %q, want %q", cfg.Storage.DataDir, DefaultDataDir)
	}
	if cfg.Storage.GCInterval != DefaultGCInterval {
		t.Errorf("GCInterval = %q, want %q", cfg.Storage.GCInterval, DefaultGCInterval)
	}
	if cfg.Storage.GCThreshold != DefaultGCThreshold {
		t.Errorf("GCThreshold = %v, want %v", cfg.Storage.GCThreshold, DefaultGCThreshold)
	}

	if cfg.Log.Level != DefaultLogLevel {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, DefaultLogLevel)
	}
	if cfg.Log.Format != DefaultLogFormat {
		t.Errorf("Log.Format = %q, want %q", cfg.Log.Format, DefaultLogFormat)
	}
}

func TestSanitize(t *testing.T) {
	cfg := &ServerConfig{
		Server: ServerSection{
			Redis: RedisSection{
				TLSKeyFile: "super-secret-key-1234567890",
			},
		},
	}

	sanitized := Sanitize(cfg)

	if cfg.Server.Redis.TLSKeyFile != "super-secret-key-1234567890" {
		t.Error("Original config should not be modified")
	}

	if sanitized.Server.Redis.TLSKeyFile == cfg.Server.Redis.TLSKeyFile {
		t.Error("Sanitized config should mask the TLS key path")
	}

	if len(sanitized.Server.Redis.TLSKeyFile) != len(cfg.Server.Redis.TLSKeyFile) {
		t.Errorf("Masked value length = %d, want %d", len(sanitized.Server.Redis.TLSKeyFile), len(cfg.Server.Redis.TLSKeyFile))
	}
}

func TestSanitize_EmptyKey(t *testing.T) {
	cfg := &ServerConfig{
		Server: ServerSection{
			Redis: RedisSection{TLSKeyFile: ""},
		},
	}

	sanitized := Sanitize(cfg)

	if sanitized.Server.Redis.TLSKeyFile != "" {
		t.Error("Empty value should remain empty")
	}
}

func TestSanitize_ShortKey(t *testing.T) {
	cfg := &ServerConfig{
		Server: ServerSection{
			Redis: RedisSection{TLSKeyFile: "abc"},
		},
	}

	sanitized := Sanitize(cfg)

	if sanitized.Server.Redis.TLSKeyFile != "****" {
		t.Errorf("Short value should be fully masked, got %q", sanitized.Server.Redis.TLSKeyFile)
	}
}

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"a", "****"},
		{"ab", "****"},
		{"abc", "****"},
		{"abcd", "****"},
		{"abcde", "ab*de"},
		{"abcdef", "ab**ef"},
		{"1234567890", "12******90"},
	}

	for _, tt := range tests {
		result := maskSecret(tt.input)
		if result != tt.expected {
			t.Errorf("maskSecret(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestVerify_ValidConfig(t *testing.T) {
	dir := t.TempDir()

	cfg := &ServerConfig{
		Server: ServerSection{
			HTTP: HTTPConfig{
				Addr: "127.0.0.1:5080",
			},
			Redis: RedisSection{
				Enabled:  true,
				Port:     6379,
				ReplPort: 6380,
				Binds:    []string{"0.0.0.0"},
				WorkersN: 4,
			},
		},
		Storage: StorageSection{
			DataDir:     dir,
			GCThreshold: 0.5,
		},
	}

	if err := Verify(cfg); err != nil {
		t.Errorf("Verify failed: %v", err)
	}
}

func TestVerify_EmptyDataDir(t *testing.T) {
	cfg := &ServerConfig{
		Storage: StorageSection{
			DataDir:     "",
			GCThreshold: 0.5,
		},
	}

	err := Verify(cfg)
	if err == nil {
		t.Error("Expected error for empty data_dir")
	}
}

func TestVerify_InvalidGCThreshold(t *testing.T) {
	dir := t.TempDir()

	cfg := &ServerConfig{
		Storage: StorageSection{
			DataDir:     dir,
			GCThreshold: 0,
		},
	}

	err := Verify(cfg)
	if err == nil {
		t.Error("Expected error for invalid gc_threshold")
	}
}

func TestVerify_RedisPortConflict(t *testing.T) {
	dir := t.TempDir()

	cfg := &ServerConfig{
		Server: ServerSection{
			Redis: RedisSection{
				Enabled:  true,
				Port:     6379,
				ReplPort: 6379,
				Binds:    []string{"0.0.0.0"},
				WorkersN: 4,
			},
		},
		Storage: StorageSection{
			DataDir:     dir,
			GCThreshold: 0.5,
		},
	}

	err := Verify(cfg)
	if err == nil {
		t.Error("Expected error when repl_port equals port")
	}
}

func TestVerify_CreateDataDir(t *testing.T) {
	dir := t.TempDir()
	newDir := dir + "/subdir/data"

	cfg := &ServerConfig{
		Storage: StorageSection{
			DataDir:     newDir,
			GCThreshold: 0.5,
		},
	}

	if err := Verify(cfg); err != nil {
		t.Errorf("Verify failed: %v", err)
	}

	if _, err := os.Stat(newDir); os.IsNotExist(err) {
		t.Error("Data directory should have been created")
	}
}

func TestConstants(t *testing.T) {
	if DefaultHTTPAddr != "127.0.0.1:5080" {
		t.Errorf("DefaultHTTPAddr = %q", DefaultHTTPAddr)
	}
	if DefaultHTTPSAddr != "127.0.0.1:5443" {
		t.Errorf("DefaultHTTPSAddr = %q", DefaultHTTPSAddr)
	}
	if DefaultRedisPort != 6379 {
		t.Errorf("DefaultRedisPort = %d", DefaultRedisPort)
	}
	if DefaultLogLevel != "info" {
		t.Errorf("DefaultLogLevel = %q", DefaultLogLevel)
	}
	if DefaultLogFormat != "json" {
		t.Errorf("DefaultLogFormat = %q", DefaultLogFormat)
	}
}

func TestServerConfig_Struct(t *testing.T) {
	cfg := ServerConfig{
		Server: ServerSection{
			HTTP: HTTPConfig{
				Addr:        "0.0.0.0:8080",
				TLSCertFile: "/path/to/cert.pem",
				TLSKeyFile:  "/path/to/key.pem",
			},
			Redis: RedisSection{
				Enabled:  true,
				Port:     6379,
				ReplPort: 6380,
				Binds:    []string{"0.0.0.0"},
				WorkersN: 4,
			},
			Local: LocalConfig{
				Path: "/var/run/test.sock",
			},
		},
		Storage: StorageSection{
			DataDir:     "/data",
			GCInterval:  "10m",
			GCThreshold: 0.5,
		},
		Security: SecuritySection{
			TLSCAFile: "/path/to/ca.pem",
		},
		Log: LogSection{
			Level:  "debug",
			Format: "text",
		},
	}

	if cfg.Server.HTTP.Addr != "0.0.0.0:8080" {
		t.Error("HTTP addr not set correctly")
	}
	if !cfg.Server.Redis.Enabled {
		t.Error("Redis should be enabled")
	}
	if len(cfg.Server.Redis.Binds) != 1 {
		t.Error("Redis binds not set correctly")
	}
}

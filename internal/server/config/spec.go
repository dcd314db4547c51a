// Package config defines the server configuration structure.
package config

// ServerConfig is the root configuration for redisnode-server.
type ServerConfig struct {
	Server   ServerSection   `koanf:"server"`
	Storage  StorageSection  `koanf:"storage"`
	Security SecuritySection `koanf:"security"`
	Log      LogSection      `koanf:"log"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	HTTP  HTTPConfig   `koanf:"http"`
	Redis RedisSection `koanf:"redis"`
	Local LocalConfig  `koanf:"local"`
}

// HTTPConfig configures the HTTP admin server.
type HTTPConfig struct {
	Addr        string `koanf:"addr"`
	TLSCertFile string `koanf:"tls_cert_file"`
	TLSKeyFile  string `koanf:"tls_key_file"`

	// AdminAllowList restricts /debug/* endpoints to the given CIDRs. Empty
	// means no restriction beyond what the network already provides.
	AdminAllowList []string `koanf:"admin_allow_list"`
	// CORSAllowedOrigins lists origins allowed to call the admin API from a
	// browser. Empty allows every origin.
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`
	// GlobalRateLimit caps requests/sec per client IP on every admin
	// endpoint, 0 disables the limiter.
	GlobalRateLimit int `koanf:"global_rate_limit"`
}

// RedisSection configures the Redis wire-protocol front end: its client and
// replication listener groups, each a WorkerPool of reactor workers sharing
// one client cap and one idle timeout.
type RedisSection struct {
	Enabled        bool     `koanf:"enabled"`
	Port           int      `koanf:"port"`
	ReplPort       int      `koanf:"repl_port"`
	Binds          []string `koanf:"binds"`
	ReplBinds      []string `koanf:"repl_binds"`
	Backlog        int      `koanf:"backlog"`
	TimeoutSeconds int      `koanf:"timeout_seconds"`
	MaxClients     int      `koanf:"maxclients"`
	WorkersN       int      `koanf:"workers_n"`
	ReplWorkersN   int      `koanf:"repl_workers_n"`
	TLSCertFile    string   `koanf:"tls_cert_file"`
	TLSKeyFile     string   `koanf:"tls_key_file"`
	RateLimitRPS   float64  `koanf:"rate_limit_rps"`
	RateLimitBurst int      `koanf:"rate_limit_burst"`
}

// LocalConfig configures the local management socket.
type LocalConfig struct {
	Path string `koanf:"path"`
}

// StorageSection configures the Badger-backed keyspace engine.
type StorageSection struct {
	DataDir     string  `koanf:"data_dir"`
	GCInterval  string  `koanf:"gc_interval"`
	GCThreshold float64 `koanf:"gc_threshold"`
}

// SecuritySection configures security settings shared across listeners.
type SecuritySection struct {
	TLSCAFile string `koanf:"tls_ca_file"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Package config defines the server configuration structure.
package config

// Default configuration values.
const (
	DefaultHTTPAddr    = "127.0.0.1:5080"
	DefaultHTTPSAddr   = "127.0.0.1:5443"
	DefaultLocalSocket = "/var/run/redisnode-server/redisnode-server.sock"

	DefaultRedisPort       = 6379
	DefaultRedisReplPort   = 6380
	DefaultRedisBacklog    = 511
	DefaultRedisTimeoutSec = 0
	DefaultRedisMaxClients = 10000
	DefaultRedisWorkersN   = 4
	DefaultRedisReplWorker = 2
	DefaultRateLimitRPS    = 0 // 0 disables rate limiting
	DefaultRateLimitBurst  = 50

	DefaultAdminGlobalRateLimit = 1000

	DefaultDataDir     = "/var/lib/redisnode-server/data"
	DefaultGCInterval  = "10m"
	DefaultGCThreshold = 0.5

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			HTTP: HTTPConfig{
				Addr:            DefaultHTTPAddr,
				GlobalRateLimit: DefaultAdminGlobalRateLimit,
			},
			Redis: RedisSection{
				Enabled:        true,
				Port:           DefaultRedisPort,
				ReplPort:       DefaultRedisReplPort,
				Binds:          []string{"0.0.0.0"},
				ReplBinds:      []string{"0.0.0.0"},
				Backlog:        DefaultRedisBacklog,
				TimeoutSeconds: DefaultRedisTimeoutSec,
				MaxClients:     DefaultRedisMaxClients,
				WorkersN:       DefaultRedisWorkersN,
				ReplWorkersN:   DefaultRedisReplWorker,
				RateLimitRPS:   DefaultRateLimitRPS,
				RateLimitBurst: DefaultRateLimitBurst,
			},
			Local: LocalConfig{
				Path: DefaultLocalSocket,
			},
		},
		Storage: StorageSection{
			DataDir:     DefaultDataDir,
			GCInterval:  DefaultGCInterval,
			GCThreshold: DefaultGCThreshold,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

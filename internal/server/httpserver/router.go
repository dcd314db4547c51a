// Package httpserver provides the admin/debug HTTP server for redisnode-server.
package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/shardflow/redisnode/internal/server/httpserver/handler"
	"github.com/shardflow/redisnode/internal/server/redisserver"
	"github.com/shardflow/redisnode/internal/telemetry/metric"
)

// RouterConfig holds the configuration for the admin/debug HTTP router.
type RouterConfig struct {
	// Server is the Redis front end whose connection state /healthz and
	// /debug/clients report on.
	Server *redisserver.Server

	// Metrics is the Prometheus registry served at /metrics. Nil disables
	// the endpoint.
	Metrics *metric.Registry

	// Logger for request logging.
	Logger *slog.Logger

	// AdminAllowList is the IP/CIDR allowlist guarding /debug/clients and
	// /debug/clients/kill (empty = no restriction).
	AdminAllowList []string

	// CORSAllowedOrigins is the list of allowed CORS origins (empty = allow all).
	CORSAllowedOrigins []string

	// GlobalRateLimit is the per-IP rate limit in requests/second (0 = disabled).
	GlobalRateLimit int
}

// NewRouter builds the admin/debug HTTP router: GET /healthz, GET /metrics,
// GET /debug/clients, POST /debug/clients/kill.
func NewRouter(cfg *RouterConfig) http.Handler {
	h := handler.New(cfg.Server, cfg.Logger)
	mux := http.NewServeMux()

	base := []Middleware{RequestID(), Recover(cfg.Logger), CORS(cfg.CORSAllowedOrigins)}
	if cfg.GlobalRateLimit > 0 {
		base = append(base, RateLimit(cfg.GlobalRateLimit))
	}

	mux.Handle("GET /healthz", Chain(h, base...))

	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", Chain(metric.Handler(cfg.Metrics.Prom()), base...))
	}

	debugMiddlewares := append([]Middleware{}, base...)
	if len(cfg.AdminAllowList) > 0 {
		debugMiddlewares = append(debugMiddlewares, NetworkACL(&NetworkACLConfig{
			AllowList: cfg.AdminAllowList,
			Logger:    cfg.Logger,
		}))
	}
	debugHandler := Chain(h, debugMiddlewares...)

	mux.Handle("GET /debug/clients", debugHandler)
	mux.Handle("POST /debug/clients/kill", debugHandler)

	return mux
}

// DefaultRouterConfig returns default router configuration.
func DefaultRouterConfig() *RouterConfig {
	return &RouterConfig{
		GlobalRateLimit: 1000,
	}
}

// Package main provides the entry point for redisnode-server.
//
// redisnode-server speaks the Redis wire protocol over TCP, backed by an
// embedded Badger keyspace, with a separate admin/debug HTTP surface and a
// local Unix-socket control channel for redisnode-cli.
package main

import (
	"context"
	"crypto/tls"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/shardflow/redisnode/internal/infra/buildinfo"
	"github.com/shardflow/redisnode/internal/infra/confloader"
	"github.com/shardflow/redisnode/internal/infra/shutdown"
	"github.com/shardflow/redisnode/internal/infra/tlsroots"
	"github.com/shardflow/redisnode/internal/server/config"
	"github.com/shardflow/redisnode/internal/server/httpserver"
	"github.com/shardflow/redisnode/internal/server/localserver"
	"github.com/shardflow/redisnode/internal/server/redisserver"
	"github.com/shardflow/redisnode/internal/storage"
	"github.com/shardflow/redisnode/internal/telemetry/logger"
	"github.com/shardflow/redisnode/internal/telemetry/metric"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile  = flag.String("config", "", "Path to configuration file")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("redisnode-server %s\n", buildinfo.String())
		return nil
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, slogLogger, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	log.Info("starting redisnode-server",
		"version", buildinfo.Version,
		"commit", buildinfo.Commit,
		"go_version", buildinfo.GoVersion,
		"config", *configFile)

	prom := prometheus.NewRegistry()
	metrics := metric.NewRegistry(prom)

	engine, err := initStorage(cfg, prom, slogLogger)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	redisServer := redisserver.New(cfg.Server.Redis, engine, log, metrics)

	router := httpserver.NewRouter(&httpserver.RouterConfig{
		Server:             redisServer,
		Metrics:            metrics,
		Logger:             slogLogger,
		AdminAllowList:     cfg.Server.HTTP.AdminAllowList,
		CORSAllowedOrigins: cfg.Server.HTTP.CORSAllowedOrigins,
		GlobalRateLimit:    cfg.Server.HTTP.GlobalRateLimit,
	})
	httpServer := httpserver.New(cfg.Server.HTTP.Addr, router)

	var certWatcher *tlsroots.Watcher
	if cfg.Server.HTTP.TLSCertFile != "" && cfg.Server.HTTP.TLSKeyFile != "" {
		certWatcher, err = tlsroots.NewWatcher(cfg.Server.HTTP.TLSCertFile, cfg.Server.HTTP.TLSKeyFile,
			tlsroots.WithLogger(slogLogger))
		if err != nil {
			return fmt.Errorf("load admin TLS certificate: %w", err)
		}
		certWatcher.StartAsync()
		httpServer.SetTLSConfig(&tls.Config{GetCertificate: certWatcher.GetCertificate})
	}

	shutdownHandler := shutdown.NewHandler(30 * time.Second)

	localHandler := localserver.NewHandler(redisServer, func() {
		p, err := os.FindProcess(os.Getpid())
		if err == nil {
			p.Signal(os.Interrupt)
		}
	})
	localServer := localserver.New(cfg.Server.Local.Path, localHandler)

	// Hooks run in reverse order of registration: storage is registered
	// first so it is torn down last, after both listener groups that write
	// through it have stopped.
	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("closing storage engine")
		return engine.Close()
	})

	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down HTTP admin server")
		if certWatcher != nil {
			certWatcher.Stop()
		}
		return httpServer.Shutdown(ctx)
	})

	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down local control socket")
		return localServer.Shutdown(ctx)
	})

	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down redis server")
		return redisServer.Shutdown(ctx)
	})

	ctx := context.Background()
	if err := redisServer.Start(ctx); err != nil {
		return fmt.Errorf("start redis server: %w", err)
	}

	go func() {
		log.Info("admin HTTP server listening", "addr", cfg.Server.HTTP.Addr)

		var err error
		if certWatcher != nil {
			// Cert/key are served via the watcher's GetCertificate callback
			// (set on the server's tls.Config above), not re-read from disk.
			err = httpServer.ListenAndServeTLS("", "")
		} else {
			err = httpServer.ListenAndServe()
		}

		if err != nil && err != http.ErrServerClosed {
			log.Error("admin HTTP server error", "error", err)
		}
	}()

	go func() {
		log.Info("local control socket listening", "path", cfg.Server.Local.Path)
		if err := localServer.ListenAndServe(); err != nil {
			log.Error("local control socket error", "error", err)
		}
	}()

	log.Info("server started, press Ctrl+C to stop")
	if err := shutdownHandler.Wait(); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// loadConfig loads configuration from file and environment, starting from
// compiled-in defaults and validating the result.
func loadConfig(configFile string) (*config.ServerConfig, error) {
	cfg := config.Default()

	opts := []confloader.Option{}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}

	loader := confloader.NewLoader(opts...)
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// initLogger initializes the structured logger. Returns both the logger
// interface used by server-side packages and a *slog.Logger for the
// net/http-facing admin surface.
func initLogger(cfg *config.ServerConfig) (logger.Logger, *slog.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return nil, nil, err
	}

	logger.SetDefault(log)
	slogLogger := slog.Default()

	return log, slogLogger, nil
}

// initStorage opens the embedded Badger engine and registers its gauges
// against prom, so both the engine and the Redis front end share one
// Prometheus registry.
func initStorage(cfg *config.ServerConfig, prom *prometheus.Registry, log *slog.Logger) (*storage.BadgerEngine, error) {
	kvCfg := storage.DefaultKVConfig(cfg.Storage.DataDir)
	kvCfg.Badger.GCInterval = cfg.Storage.GCInterval
	kvCfg.Badger.GCThreshold = cfg.Storage.GCThreshold

	engine, err := storage.NewBadgerEngine(kvCfg, log)
	if err != nil {
		return nil, err
	}

	engine.RegisterMetrics(prom)
	return engine, nil
}

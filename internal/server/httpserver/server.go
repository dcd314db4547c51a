// Package httpserver provides the admin/debug HTTP server for
// redisnode-server: GET /healthz, GET /metrics, GET /debug/clients, and
// POST /debug/clients/kill.
package httpserver

import (
	"context"
	"crypto/tls"
	"net/http"
)

// Server wraps net/http.Server, separated from the router (NewRouter) so
// the two can be tested independently.
type Server struct {
	httpServer *http.Server
	handler    http.Handler
}

// New creates a new HTTP server bound to addr, serving handler.
func New(addr string, handler http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:    addr,
			Handler: handler,
		},
		handler: handler,
	}
}

// SetTLSConfig attaches a TLS config to the underlying server, used by
// ListenAndServeTLS when the certificate is supplied by a GetCertificate
// callback (a hot-reloading tlsroots.Watcher) rather than static files.
func (s *Server) SetTLSConfig(cfg *tls.Config) {
	s.httpServer.TLSConfig = cfg
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// ListenAndServeTLS starts the HTTPS server. certFile and keyFile may both be
// empty if a TLS config with GetCertificate was set via SetTLSConfig.
func (s *Server) ListenAndServeTLS(certFile, keyFile string) error {
	return s.httpServer.ListenAndServeTLS(certFile, keyFile)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

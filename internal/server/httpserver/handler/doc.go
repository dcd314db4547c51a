// Package handler provides HTTP request handlers for the redisnode-server
// admin/debug surface.
//
//   - health.go: GET /healthz
//   - admin.go: GET /debug/clients, POST /debug/clients/kill
//
// Every handler parses and validates its request, calls into
// redisserver.Server, and writes a Response envelope (types.go), choosing
// the HTTP status of its own errors directly. handleServiceError maps a
// domain.DomainError to its HTTP status code; no current handler calls it.
package handler

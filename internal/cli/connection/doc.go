// Package connection provides connection management for redisnode-cli.
//
//   - manager.go: the current connection profile
//   - http.go: HTTP client for the admin/debug surface (/healthz, /metrics, /debug/*)
//   - socket.go: client for the local control socket (status/clients/kill/shutdown)
package connection

// Package main provides the entry point for redisnode-cli.
//
// The CLI provides command-line access to redisnode-server for:
//
//   - Connection profile management (connect)
//   - Client connection inspection and kill (client list/kill/status)
//   - Health checks against the admin HTTP surface (system health)
//   - CLI-local configuration (config show/validate)
//
// Usage:
//
//	redisnode-cli [command] [flags]
//	redisnode-cli client list
//	redisnode-cli client kill --id 42
//	redisnode-cli system health
package main

// Package command provides CLI command definitions for redisnode-cli.
//
// Commands built on urfave/cli/v2:
//
//   - root.go: root command, global flags
//   - connect.go: connection profile management
//   - client.go: client list/kill/status against the local control socket
//   - system.go: /healthz against the admin HTTP surface
//   - config.go: CLI-local configuration file
package command

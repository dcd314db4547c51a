// Package config provides CLI configuration for redisnode-cli.
//
// This package defines CLI-specific configuration:
//
//   - spec.go: CLIConfig struct (~/.redisnode-cli/cli.yaml)
//   - loader.go: Load, Save and Merge entry points (Load returns the
//     defaults without reading the file; Save writes no file)
//
// Configuration includes:
//
//   - Default server address
//   - Default output format
//   - Saved connection profiles and the current one
//
// @design DS-0601
package config

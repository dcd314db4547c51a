// Package output provides output formatting for redisnode-cli.
//
// This package handles all CLI output formatting:
//
//   - formatter.go: Formatter interface and factory
//   - table.go: Table rendering with wide mode support
//   - json.go: JSON output formatting
//   - yaml.go: YAML output formatting
//
// Formatters support:
//
//   - Multiple output formats (table, json, yaml), selected by the
//     global --output flag and consumed by `client list`.
//   - Wide mode for additional columns (--wide)
//   - Machine-readable output for scripting
//
// Color output itself lives at the call site (internal/cli/command),
// which highlights the `client list` flags column via fatih/color rather
// than this package, since only that one column needs it.
package output

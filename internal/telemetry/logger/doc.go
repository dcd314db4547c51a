// Package logger provides structured logging for redisnode, wrapping
// log/slog:
//
//   - logger.go: logger construction, level control, global convenience funcs
//   - context.go: context-aware logging with request/trace IDs
//   - redact.go: sensitive data redaction
package logger

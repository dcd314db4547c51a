// Package domain defines the structured error type shared by the admin HTTP
// and local control surfaces: DomainError wraps a redisserver sentinel (or
// a surface-level validation failure) behind a stable machine-readable code,
// so a client polling /debug/clients or a local-socket command gets a
// consistent error shape regardless of which internal package raised it.
package domain

// Package shutdown provides graceful shutdown handling for redisnode-server.
//
// This package handles process termination signals:
//
//   - Signal handling (SIGINT, SIGTERM)
//   - A deadline context (the handler's timeout) passed to every hook;
//     hooks still run in turn and are not interrupted when it expires
//   - Cleanup callback registration
//   - Shutdown coordination
//
// Usage:
//
//	h := shutdown.NewHandler(10 * time.Second)
//	h.OnShutdown(func(ctx context.Context) error { pool.Stop(); return nil })
//	h.Wait()
package shutdown

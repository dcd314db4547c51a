// Package redisserver implements the Redis wire-protocol front end of
// redisnode: a pool of single-threaded event-loop workers that accept TCP
// connections, frame RESP, and fan out administrative operations (listing,
// killing, monitoring) across every worker's own connection table.
//
// Each Worker runs its own epoll reactor goroutine. Hot-path reads, writes,
// and command dispatch for a connection happen only on its owning worker's
// goroutine; cross-worker operations go through the worker's small table-
// locked API (admit, Remove, Reply, Kill, ListClients, FeedMonitors) rather
// than reaching into another worker's state directly.
package redisserver

// Package localserver provides the local control socket for
// redisnode-server: a Unix domain socket, bypassing the admin HTTP
// surface's network ACL entirely, that redisnode-cli's "client" command
// group talks to for status, connection listing, and kill operations, plus
// a local-only "shutdown" trigger.
//
// The protocol is one line in, one response out, connection closed: a
// command name followed by space-separated arguments, terminated by '\n'.
package localserver

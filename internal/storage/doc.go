// Package storage provides the embedded key-value engine behind the redis
// keyspace.
//
// BadgerEngine implements KVEngine on top of Badger, giving GET/SET/DEL/SCAN
// durable on-disk storage with background value-log garbage collection and
// Prometheus-exported size/GC metrics.
package storage

// Package pool implements the shared connection pool of the cluster
// communication layer.
//
// The pool owns all physical wire connections of a process. Dispatches
// lease a connection for the duration of exactly one request/response
// cycle and return it afterwards; the pool reuses idle connections, closes
// them once their TTL expires, and bounds the total number of pooled
// connections. It is the only resource shared between concurrent
// dispatches and is safe for uncoordinated lease/release from many
// goroutines.
//
// The actual dialing is delegated to an IConnector so that transports and
// tests can plug in their own connection types. The provided TCP connector
// speaks a simple length-prefixed frame protocol and multiplexes many
// in-flight requests over one connection via per-request response channels.
package pool

package common

import (
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Destination and Endpoint
// --------------------------------------------------------------------------

// Destination is the logical identifier of an RPC target inside the cluster.
// It is an opaque value supplied by the caller and never mutated by the
// dispatch layer. Supported forms are resolved by the resolver package:
//
//	"server:<id>"    a specific server by its cluster id
//	"shard:<id>"     the current leader of a shard
//	"tcp://<addr>"   a concrete endpoint, passed through unresolved
type Destination string

// Endpoint is a resolved, connectable network address.
type Endpoint struct {
	Scheme string // e.g. "tcp"
	Addr   string // host:port
}

// IsEmpty returns true if the endpoint has not been filled in
func (e Endpoint) IsEmpty() bool {
	return e.Addr == ""
}

// String returns the endpoint in URL-like form (e.g. "tcp://10.0.0.1:8529")
func (e Endpoint) String() string {
	if e.Scheme == "" {
		return e.Addr
	}
	return e.Scheme + "://" + e.Addr
}

// --------------------------------------------------------------------------
// Request Verbs
// --------------------------------------------------------------------------

// Verb is the operation verb of an outbound request
type Verb string

const (
	VerbGet    Verb = "GET"
	VerbPost   Verb = "POST"
	VerbPut    Verb = "PUT"
	VerbPatch  Verb = "PATCH"
	VerbDelete Verb = "DELETE"
	VerbHead   Verb = "HEAD"
)

// --------------------------------------------------------------------------
// Well-known header keys and databases
// --------------------------------------------------------------------------

const (
	// SystemDatabase is the database a request targets when its path does
	// not carry an explicit database scope
	SystemDatabase = "_system"

	// HeaderLogicalClock carries the sender's hybrid logical clock timestamp
	HeaderLogicalClock = "x-docnet-hlc"

	// HeaderRequestSource carries the cluster identity of the sending server
	HeaderRequestSource = "x-docnet-request-source"
)

// --------------------------------------------------------------------------
// Request
// --------------------------------------------------------------------------

// Request is a fully-formed outbound cluster request. Instances are built
// fresh per attempt by the dispatch layer; the payload is treated as an
// opaque blob by everything below the caller.
type Request struct {
	Verb     Verb
	Path     string            // normalized path, database scope stripped
	Database string            // target database, defaults to SystemDatabase
	Headers  map[string]string // keys unique, order irrelevant
	Payload  []byte
	Timeout  time.Duration // wire-level timeout for this single attempt
}

// SplitDatabasePath strips a leading database scope ("/_db/<name>") from
// path and returns the database name together with the remaining path.
// If no scope is present, the database is empty and the path is returned
// unchanged.
func SplitDatabasePath(path string) (database, remainder string) {
	const prefix = "/_db/"
	if !strings.HasPrefix(path, prefix) {
		return "", path
	}
	rest := path[len(prefix):]
	idx := strings.IndexByte(rest, '/')
	if idx < 0 {
		return rest, "/"
	}
	return rest[:idx], rest[idx:]
}

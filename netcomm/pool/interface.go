package pool

import (
	"github.com/averde/docnet/netcomm/common"
)

// --------------------------------------------------------------------------
// Interface Definitions for dependency injection
// --------------------------------------------------------------------------

// SendCallback receives the raw outcome of a single send/receive cycle.
// It is invoked exactly once per SendRequest call: either with a response
// (errKind == common.ErrNoError) or with the transport error that ended
// the attempt.
type SendCallback func(errKind common.ErrorKind, req *common.Request, resp *common.Response)

// IConnection is a single physical connection to an endpoint
type IConnection interface {
	// SendRequest performs one asynchronous send/receive cycle. The
	// callback fires exactly once, it never retries internally.
	SendRequest(req *common.Request, cb SendCallback)

	// Endpoint returns the endpoint this connection is bound to
	Endpoint() common.Endpoint

	// Broken reports whether the connection has failed and must not be reused
	Broken() bool

	// Close tears the connection down
	Close() error
}

// IConnector dials new connections for the pool
type IConnector interface {
	// Connect establishes a single connection to the given endpoint
	Connect(endpoint common.Endpoint) (IConnection, error)
}

// ILease is a connection checked out of the pool for exactly one attempt
type ILease interface {
	// Connection returns the leased connection
	Connection() IConnection

	// Release returns the connection to the pool. It must be called
	// exactly once when the attempt's result is known; a second call is
	// a no-op, so no connection ever leaks across attempts.
	Release()
}

// IConnectionPool lends connections to dispatches
type IConnectionPool interface {
	// LeaseConnection checks a connection for the given endpoint out of
	// the pool, dialing a new one if no idle connection is available.
	// A failed dial is reported as a *DialError so callers can treat it
	// like any other connect failure; ErrPoolShutdown is returned once
	// the pool has been shut down.
	LeaseConnection(endpoint common.Endpoint) (ILease, error)

	// Shutdown closes all pooled connections and rejects further leases
	Shutdown()
}

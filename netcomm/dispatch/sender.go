package dispatch

import (
	"errors"
	"time"

	"github.com/averde/docnet/netcomm/common"
	"github.com/averde/docnet/netcomm/pool"
	"github.com/averde/docnet/netcomm/resolver"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("netcomm/dispatch")

// --------------------------------------------------------------------------
// Dispatcher
// --------------------------------------------------------------------------

// Dispatcher sends cluster operations to logical destinations. All
// collaborators are injected; the dispatcher itself holds no global state
// and is safe for concurrent use, every dispatch is independent.
type Dispatcher struct {
	pool      pool.IConnectionPool
	resolver  resolver.IResolver
	clock     *common.LogicalClock
	identity  common.IIdentityProvider
	lifecycle ILifecycle
}

// NewDispatcher creates a dispatcher. The identity provider may be nil if
// the process has no cluster identity (the request-source header is then
// omitted).
func NewDispatcher(p pool.IConnectionPool, r resolver.IResolver,
	clock *common.LogicalClock, identity common.IIdentityProvider,
	lifecycle ILifecycle) *Dispatcher {
	return &Dispatcher{
		pool:      p,
		resolver:  r,
		clock:     clock,
		identity:  identity,
		lifecycle: lifecycle,
	}
}

// --------------------------------------------------------------------------
// Single-attempt send
// --------------------------------------------------------------------------

// SendRequest sends a request to the given destination exactly once, with
// no retries. The returned future is fulfilled with the final outcome.
func (d *Dispatcher) SendRequest(destination common.Destination, verb common.Verb,
	path string, payload []byte, timeout time.Duration,
	headers map[string]string) *Future {

	f := newFuture()

	if d.pool == nil {
		Logger.Errorf("connection pool unavailable")
		metricCanceled.Inc()
		f.complete(common.Response{Destination: destination, Error: common.ErrCanceled})
		return f
	}

	endpoint, err := d.resolver.Resolve(destination)
	if err != nil {
		Logger.Debugf("cannot resolve %s: %v", destination, err)
		metricCanceled.Inc()
		f.complete(common.Response{Destination: destination, Error: common.ErrCanceled})
		return f
	}

	lease, err := d.pool.LeaseConnection(endpoint)
	if err != nil {
		var dialErr *pool.DialError
		if errors.As(err, &dialErr) {
			// Single attempt, so a refused dial is final, but it is still a
			// connect failure and not a cancellation
			Logger.Debugf("cannot connect to %s: %v", destination, err)
			metricFailed.Inc()
			f.complete(common.Response{Destination: destination, Error: common.ErrCouldNotConnect})
			return f
		}
		Logger.Errorf("connection pool unavailable: %v", err)
		metricCanceled.Inc()
		f.complete(common.Response{Destination: destination, Error: common.ErrCanceled})
		return f
	}

	req := prepareRequest(d.clock, d.identity, verb, path, payload, timeout, headers)

	metricRequestsSent.Inc()
	lease.Connection().SendRequest(req, func(errKind common.ErrorKind, _ *common.Request, resp *common.Response) {
		lease.Release()
		if errKind == common.ErrNoError {
			metricSucceeded.Inc()
		} else {
			metricFailed.Inc()
		}
		f.complete(finalResponse(destination, errKind, resp))
	})

	return f
}

// finalResponse folds a raw attempt outcome into the response delivered to
// the caller. A failed attempt may still carry the last response received.
func finalResponse(destination common.Destination, errKind common.ErrorKind, resp *common.Response) common.Response {
	if resp == nil {
		return common.Response{Destination: destination, Error: errKind}
	}
	r := *resp
	r.Destination = destination
	r.Error = errKind
	return r
}

package dispatch

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/averde/docnet/netcomm/common"
	"github.com/averde/docnet/netcomm/pool"
)

// Bounds of the retry delay window. The floor keeps a dispatch from
// hammering a node during the short window of a leadership handover, the
// cap bounds how much of the caller's budget a single wait can consume.
const (
	minRetryDelay = 200 * time.Millisecond
	maxRetryDelay = 10 * time.Second
)

// retryDelay computes the delay before the next attempt by clamping the
// time elapsed since dispatch start into the retry window. Measuring from
// dispatch start (not from the last attempt) makes the delay grow every
// cycle until it converges on the cap.
func retryDelay(elapsed time.Duration) time.Duration {
	if elapsed < minRetryDelay {
		return minRetryDelay
	}
	if elapsed > maxRetryDelay {
		return maxRetryDelay
	}
	return elapsed
}

// --------------------------------------------------------------------------
// Retrying dispatch state machine
// --------------------------------------------------------------------------

// requestsState is the per-dispatch state of a retrying send. It is owned
// jointly by whichever asynchronous operation is outstanding, the armed
// retry timer or the in-flight connection callback; whichever completes
// decides between re-arming the next attempt and fulfilling the future.
// The single-fire future guarantees the continuation runs exactly once
// even if completions race.
type requestsState struct {
	d *Dispatcher

	destination   common.Destination
	verb          common.Verb
	path          string
	payload       []byte
	headers       map[string]string
	retryNotFound bool

	startTime time.Time
	endTime   time.Time // startTime + caller timeout, never extended

	attempts atomic.Uint32 // diagnostics only
	future   *Future
}

// SendRequestRetry sends a request to the given destination and retries
// transient failures until the timeout is exceeded. The returned future is
// fulfilled exactly once with the final outcome.
//
// With retryNotFound, a "not found" response whose body carries the
// data-source-not-found error code is also treated as transient; this
// covers reads hitting a shard that has not finished materializing.
func (d *Dispatcher) SendRequestRetry(destination common.Destination, verb common.Verb,
	path string, payload []byte, timeout time.Duration,
	headers map[string]string, retryNotFound bool) *Future {

	now := time.Now()
	rs := &requestsState{
		d:             d,
		destination:   destination,
		verb:          verb,
		path:          path,
		payload:       payload,
		headers:       headers,
		retryNotFound: retryNotFound,
		startTime:     now,
		endTime:       now.Add(timeout),
		future:        newFuture(),
	}
	rs.sendRequest()
	return rs.future
}

// sendRequest performs one attempt: state Attempting of the machine.
func (rs *requestsState) sendRequest() {
	now := time.Now()

	if rs.d.lifecycle.IsStopping() {
		metricCanceled.Inc()
		rs.future.complete(common.Response{Destination: rs.destination, Error: common.ErrCanceled})
		return
	}
	if !now.Before(rs.endTime) {
		metricTimedOut.Inc()
		rs.future.complete(common.Response{Destination: rs.destination, Error: common.ErrTimeout})
		return
	}
	if rs.d.pool == nil {
		Logger.Errorf("connection pool unavailable")
		metricCanceled.Inc()
		rs.future.complete(common.Response{Destination: rs.destination, Error: common.ErrCanceled})
		return
	}

	// Resolve fresh every attempt, topology may have changed since the last one
	endpoint, err := rs.d.resolver.Resolve(rs.destination)
	if err != nil {
		Logger.Debugf("cannot resolve %s: %v", rs.destination, err)
		metricCanceled.Inc()
		rs.future.complete(common.Response{Destination: rs.destination, Error: common.ErrCanceled})
		return
	}

	lease, err := rs.d.pool.LeaseConnection(endpoint)
	if err != nil {
		var dialErr *pool.DialError
		if errors.As(err, &dialErr) {
			// A refused dial is the same transient condition as losing the
			// connection on the wire, so it goes through the retry path
			Logger.Debugf("cannot connect to %s: %v", rs.destination, err)
			rs.attempts.Add(1)
			rs.retryLater(common.ErrCouldNotConnect, nil)
			return
		}
		Logger.Errorf("connection pool unavailable: %v", err)
		metricCanceled.Inc()
		rs.future.complete(common.Response{Destination: rs.destination, Error: common.ErrCanceled})
		return
	}

	// The attempt gets whatever budget is left
	req := prepareRequest(rs.d.clock, rs.d.identity, rs.verb, rs.path, rs.payload,
		rs.endTime.Sub(now), rs.headers)

	rs.attempts.Add(1)
	metricRequestsSent.Inc()

	lease.Connection().SendRequest(req, func(errKind common.ErrorKind, _ *common.Request, resp *common.Response) {
		lease.Release()
		rs.handleResponse(errKind, resp)
	})
}

// handleResponse classifies the raw outcome of one attempt and either
// terminates the dispatch or schedules the next attempt.
func (rs *requestsState) handleResponse(errKind common.ErrorKind, resp *common.Response) {
	switch errKind {
	case common.ErrNoError:
		if resp == nil {
			// A connection reporting success without a response violates
			// the SendCallback contract
			Logger.Errorf("%s delivered no response for a successful attempt", rs.destination)
			metricFailed.Inc()
			rs.future.complete(finalResponse(rs.destination, common.ErrProtocolError, nil))
			return
		}
		if common.StatusIsSuccess(resp.StatusCode) {
			metricSucceeded.Inc()
			rs.future.complete(finalResponse(rs.destination, common.ErrNoError, resp))
			return
		}
		if resp.StatusCode == common.StatusNotFound && rs.retryNotFound &&
			common.ErrorCodeFromBody(resp.Body) == common.ErrCodeDataSourceNotFound {
			// The data source exists cluster-wide but not on this server
			// yet, worth another attempt
			Logger.Debugf("%s does not know the data source yet, retrying later", rs.destination)
			rs.retryLater(errKind, resp)
			return
		}
		// Application-level error, surfaced verbatim for the caller to interpret
		metricFailed.Inc()
		rs.future.complete(finalResponse(rs.destination, common.ErrCanceled, resp))

	case common.ErrCouldNotConnect, common.ErrTimeout:
		// This also covers a node refusing the operation because it lost
		// leadership between resolution and send
		rs.retryLater(errKind, resp)

	default:
		// A proper error which has to be returned to the caller
		metricFailed.Inc()
		rs.future.complete(finalResponse(rs.destination, errKind, resp))
	}
}

// retryLater arms the retry timer, unless the wait would cross the
// deadline, in which case the last outcome is delivered immediately.
func (rs *requestsState) retryLater(errKind common.ErrorKind, resp *common.Response) {
	now := time.Now()
	delay := retryDelay(now.Sub(rs.startTime))

	if dueTime := now.Add(delay); !dueTime.Before(rs.endTime) {
		metricTimedOut.Inc()
		rs.future.complete(finalResponse(rs.destination, errKind, resp))
		return
	}

	metricRetries.Inc()
	Logger.Debugf("retrying %s in %v (attempt %d)", rs.destination, delay, rs.attempts.Load())
	time.AfterFunc(delay, rs.sendRequest)
}

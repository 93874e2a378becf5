package dispatch

import (
	"context"
	"sync"

	"github.com/averde/docnet/netcomm/common"
)

// --------------------------------------------------------------------------
// Future
// --------------------------------------------------------------------------

// Future is the deferred final result of a dispatch. It is completed
// exactly once; completion after the first is ignored by construction.
// Consumers may wait synchronously, select on Done, or register a
// callback, before or after completion.
type Future struct {
	ch   chan struct{} // Closed when the response is ready
	resp common.Response
	once sync.Once
}

// newFuture allocates an unfulfilled future
func newFuture() *Future {
	return &Future{ch: make(chan struct{})}
}

// complete fulfills the future. Only the first call has any effect.
func (f *Future) complete(resp common.Response) {
	f.once.Do(func() {
		f.resp = resp
		close(f.ch)
	})
}

// Done returns a channel that is closed once the result is available
func (f *Future) Done() <-chan struct{} {
	return f.ch
}

// Get blocks until the result is available and returns it
func (f *Future) Get() common.Response {
	<-f.ch
	return f.resp
}

// Wait blocks until the result is available or the context is cancelled
func (f *Future) Wait(ctx context.Context) (common.Response, error) {
	select {
	case <-f.ch:
		return f.resp, nil
	case <-ctx.Done():
		return common.Response{}, ctx.Err()
	}
}

// Result returns the response and whether the future has completed yet
func (f *Future) Result() (common.Response, bool) {
	select {
	case <-f.ch:
		return f.resp, true
	default:
		return common.Response{}, false
	}
}

// OnComplete registers a callback that runs in its own goroutine once the
// result is available. If the future already completed, it fires right away.
func (f *Future) OnComplete(cb func(common.Response)) {
	go func() {
		<-f.ch
		cb(f.resp)
	}()
}

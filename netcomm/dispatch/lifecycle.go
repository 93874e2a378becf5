package dispatch

import (
	"sync/atomic"
)

// --------------------------------------------------------------------------
// Process Lifecycle
// --------------------------------------------------------------------------

// ILifecycle reports whether the process is shutting down. The dispatcher
// checks it at the top of every attempt; once shutdown begins, no further
// attempts are started.
type ILifecycle interface {
	IsStopping() bool
}

// Lifecycle is the default ILifecycle implementation, flipped exactly once
// by the process owner when shutdown begins.
type Lifecycle struct {
	stopping atomic.Bool
}

// NewLifecycle creates a lifecycle in the running state
func NewLifecycle() *Lifecycle {
	return &Lifecycle{}
}

// IsStopping reports whether BeginShutdown has been called
func (l *Lifecycle) IsStopping() bool {
	return l.stopping.Load()
}

// BeginShutdown marks the process as stopping. It cannot be undone.
func (l *Lifecycle) BeginShutdown() {
	l.stopping.Store(true)
}

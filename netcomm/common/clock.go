package common

import (
	"strconv"
	"sync/atomic"
	"time"
)

// --------------------------------------------------------------------------
// Hybrid Logical Clock
// --------------------------------------------------------------------------

// LogicalClock is a process-wide strictly increasing timestamp generator
// used to order causally related cluster operations. It follows the hybrid
// scheme: the physical wall clock in milliseconds drives the value forward,
// but a tick is always at least one greater than the previous tick, so the
// sequence stays strictly increasing even when the wall clock stalls or
// jumps backwards.
//
// A single instance is shared by all dispatches of a process and is safe
// for concurrent use. It is passed as an explicit dependency, not looked up
// through a global.
type LogicalClock struct {
	last atomic.Uint64
}

// NewLogicalClock creates a clock seeded from the current wall time
func NewLogicalClock() *LogicalClock {
	c := &LogicalClock{}
	c.last.Store(uint64(time.Now().UnixMilli()))
	return c
}

// Next returns the next timestamp. Successive calls return strictly
// increasing values.
func (c *LogicalClock) Next() uint64 {
	for {
		prev := c.last.Load()
		next := uint64(time.Now().UnixMilli())
		if next <= prev {
			next = prev + 1
		}
		if c.last.CompareAndSwap(prev, next) {
			return next
		}
	}
}

// EncodeTimeStamp renders a timestamp for transport in a header
func EncodeTimeStamp(ts uint64) string {
	return strconv.FormatUint(ts, 10)
}

// DecodeTimeStamp parses a timestamp previously rendered by EncodeTimeStamp
func DecodeTimeStamp(s string) (uint64, error) {
	return strconv.ParseUint(s, 10, 64)
}

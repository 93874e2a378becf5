package resolver

import (
	"github.com/averde/docnet/netcomm/common"
)

// IResolver resolves a logical destination to a concrete endpoint.
// Implementations must be safe for concurrent use: many dispatches resolve
// independently and topology updates arrive from other goroutines.
type IResolver interface {
	// Resolve returns the endpoint a destination currently maps to.
	// An error means the destination is unknown or unreachable; the
	// dispatch layer treats this as terminal and does not retry.
	Resolve(destination common.Destination) (common.Endpoint, error)
}

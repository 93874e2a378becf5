package dispatch

import (
	"time"

	"github.com/averde/docnet/netcomm/common"
)

// prepareRequest builds the outbound request for a single attempt.
//
// The database scope is stripped from the path; a path without one targets
// the system database. Caller headers are copied first, then two derived
// headers are set unconditionally: the hybrid logical clock timestamp for
// causal ordering and, when an identity is known, the cluster identity of
// the sending process. The wire timeout is the budget remaining for this
// attempt and must be positive, the caller guarantees that.
//
// Apart from ticking the logical clock this function has no side effects:
// two requests built from the same inputs differ only in the clock header.
func prepareRequest(clock *common.LogicalClock, identity common.IIdentityProvider,
	verb common.Verb, path string, payload []byte,
	timeout time.Duration, headers map[string]string) *common.Request {

	database, remainder := common.SplitDatabasePath(path)
	if database == "" {
		database = common.SystemDatabase
	}

	merged := make(map[string]string, len(headers)+2)
	for k, v := range headers {
		merged[k] = v
	}
	merged[common.HeaderLogicalClock] = common.EncodeTimeStamp(clock.Next())
	if source, ok := common.RequestSource(identity); ok {
		merged[common.HeaderRequestSource] = source
	}

	return &common.Request{
		Verb:     verb,
		Path:     remainder,
		Database: database,
		Headers:  merged,
		Payload:  payload,
		Timeout:  timeout,
	}
}

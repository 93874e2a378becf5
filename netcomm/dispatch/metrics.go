package dispatch

import (
	"github.com/VictoriaMetrics/metrics"
)

// Counters for dispatch observability. Attempt counts never influence
// branching, the retry math is purely deadline driven.
var (
	metricRequestsSent = metrics.NewCounter(`docnet_dispatch_requests_sent_total`)
	metricRetries      = metrics.NewCounter(`docnet_dispatch_retries_total`)
	metricSucceeded    = metrics.NewCounter(`docnet_dispatch_succeeded_total`)
	metricFailed       = metrics.NewCounter(`docnet_dispatch_failed_total`)
	metricTimedOut     = metrics.NewCounter(`docnet_dispatch_timed_out_total`)
	metricCanceled     = metrics.NewCounter(`docnet_dispatch_canceled_total`)
)

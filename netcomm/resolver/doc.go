// Package resolver maps logical destinations to connectable endpoints.
//
// A Destination names an RPC target inside the cluster without pinning it
// to a network address: a specific server ("server:PRMR-1234"), the current
// leader of a shard ("shard:s2010021"), or a concrete endpoint
// ("tcp://10.0.0.1:8529") passed through unresolved. The resolver owns the
// cluster topology table that backs this mapping and is updated by the
// surrounding cluster-membership machinery whenever servers come, go, or
// shard leadership moves.
//
// Resolution is performed once per dispatch attempt, never cached by the
// dispatcher, so retries observe topology changes such as a leadership
// handover between two attempts.
package resolver

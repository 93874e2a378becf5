// Package netcomm is the internal cluster communication layer of the
// distributed document database: it sends RPC-style operations to logical
// destinations inside the cluster and absorbs the transient failures that
// are normal in a multi-node system.
//
// The package is organized into several subpackages:
//
//   - common: Shared value types (requests, responses, destinations,
//     endpoints), the hybrid logical clock, identity lookup, configuration
//     structures, and logging.
//
//   - resolver: Maps logical destinations (a server id, a shard leader, a
//     concrete address) to connectable endpoints against a live topology
//     table.
//
//   - pool: The shared connection pool. Lends physical connections to
//     dispatches one attempt at a time, reuses idle connections, expires
//     them by TTL, and bounds the total connection count.
//
//   - dispatch: The request dispatch core. Builds outbound requests,
//     performs single attempts, and runs the retrying state machine that
//     turns many attempts into exactly one final result per dispatch.
package netcomm

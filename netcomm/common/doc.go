// Package common provides the shared value types and utilities used across
// the cluster communication layer. It contains:
//
//   - Request and Response: the in-memory representation of a single cluster
//     operation and its outcome, including the error-kind taxonomy shared by
//     the transport and dispatch layers.
//
//   - Destination and Endpoint: the logical target of an operation and the
//     concrete network address it resolves to.
//
//   - LogicalClock: the process-wide hybrid logical clock used to stamp
//     outgoing requests for causal ordering across the cluster.
//
//   - IIdentityProvider: the lookup for this process's own cluster identity
//     and role, stamped onto outgoing requests as their origin.
//
//   - NetworkConfig / ClientConfig: configuration structures for the
//     connection pool and the command line client.
//
//   - Logging: the custom logger factory and initialization helpers.
package common

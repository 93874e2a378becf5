// Package cmd implements the command-line interface of docnet. It provides
// a hierarchical command structure for interacting with the cluster
// communication layer.
//
// The package is organized into several subpackages:
//
//   - send: Commands for dispatching operations to cluster destinations
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See docnet -help for a list of all commands.
package cmd

// Package dispatch implements the request dispatch core of the cluster
// communication layer: sending an operation to a logical destination and
// transparently absorbing the transient failures that are normal in a
// multi-node system.
//
// The central entry points are Dispatcher.SendRequest (exactly one
// attempt) and Dispatcher.SendRequestRetry (the retrying state machine).
// Both return a Future that is fulfilled exactly once with the final
// outcome, no matter how many attempts were made underneath.
//
// A retrying dispatch walks the following loop per attempt:
//
//  1. give up if the deadline passed or the process is shutting down
//  2. resolve the destination to a live endpoint (fresh every attempt,
//     topology may change between retries)
//  3. lease a connection from the pool
//  4. build the outbound request with the remaining budget as its wire
//     timeout and perform one send/receive cycle
//  5. classify the outcome: done, terminal failure, or retry after an
//     increasing-then-capped delay that never waits past the deadline
//
// Connection refusal and timeouts are retried because they cover the
// window of a leadership handover; resolution failures and an unavailable
// pool are terminal because they signal a local problem that will not fix
// itself within one request's lifetime.
package dispatch

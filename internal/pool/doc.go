// Package pool implements the multi-host connection pool used by the
// avalertd client.
//
// The pool owns the set of configured backend hosts and their health
// state. Each logical request is dispatched to one eligible host; hosts
// that fail at the transport level (or answer 5xx) are excluded from
// selection for an exponentially growing cool-down and transparently
// failed over, bounded by the retry budget. Probing all hosts for
// liveness and version is caller-driven via Ping; the pool runs no
// background timers of its own.
package pool

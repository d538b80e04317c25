// Package diag counts numerical-bound-exceeded fallback events across
// the whole run so the caller can report one summary after the run
// instead of one line per rejection-loop failure.
package diag

import "sync/atomic"

// Counter is a process-lifetime, concurrency-safe event counter.
// Grounded on internal/metrics/stability.go's violation counting,
// repurposed from a per-step metric into a single shutdown-time summary.
type Counter struct {
	vgFallback    atomic.Int64
	thetaFallback atomic.Int64
}

// VGFallback records that the gas-speed rejection loop exhausted its
// iteration budget and substituted the proposal mean.
func (c *Counter) VGFallback() { c.vgFallback.Add(1) }

// ThetaFallback records that the angle rejection loop exhausted its
// iteration budget and substituted theta := 0.
func (c *Counter) ThetaFallback() { c.thetaFallback.Add(1) }

// Snapshot reports the counts observed so far.
func (c *Counter) Snapshot() (vgFallback, thetaFallback int64) {
	return c.vgFallback.Load(), c.thetaFallback.Load()
}

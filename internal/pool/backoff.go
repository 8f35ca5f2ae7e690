package pool

import "time"

// Backoff default configuration constants.
const (
	// DefaultBackoffInitial is the cool-down applied after the first
	// consecutive failure of a host.
	DefaultBackoffInitial = 500 * time.Millisecond

	// DefaultBackoffMax caps the cool-down regardless of how many
	// consecutive failures a host has accumulated.
	DefaultBackoffMax = 30 * time.Second
)

// Backoff computes how long a host stays ineligible after consecutive
// failures. It is a pure value type so the registry can evaluate it
// without side effects.
type Backoff struct {
	initial time.Duration
	max     time.Duration
}

// NewBackoff creates a backoff policy. Zero values fall back to the
// package defaults.
func NewBackoff(initial, max time.Duration) Backoff {
	if initial <= 0 {
		initial = DefaultBackoffInitial
	}
	if max <= 0 {
		max = DefaultBackoffMax
	}
	if max < initial {
		max = initial
	}
	return Backoff{initial: initial, max: max}
}

// Next returns the cool-down for a host with the given consecutive
// failure count: initial * 2^(failures-1), capped at max.
func (b Backoff) Next(failures int) time.Duration {
	if failures <= 1 {
		return b.initial
	}

	d := b.initial
	for i := 1; i < failures; i++ {
		d *= 2
		if d >= b.max || d <= 0 {
			return b.max
		}
	}

	if d > b.max {
		return b.max
	}
	return d
}

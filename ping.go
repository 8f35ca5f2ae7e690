package avalert

import (
	"context"
	"time"

	"github.com/vyrodovalexey/avalert-client/internal/pool"
)

// Ping probes every configured host concurrently and reports liveness,
// round-trip time, and engine version per host in registration order.
// Each probe independently respects the timeout; the call returns once
// all probes completed or timed out.
func (c *Client) Ping(ctx context.Context, timeout time.Duration) []pool.PingResult {
	return c.pool.Ping(ctx, timeout)
}

// Version returns the engine version of the first host answering a
// probe, or the empty string when no host is online.
func (c *Client) Version(ctx context.Context, timeout time.Duration) string {
	for _, r := range c.Ping(ctx, timeout) {
		if r.Online && r.Version != "" {
			return r.Version
		}
	}
	return ""
}

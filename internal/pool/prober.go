package pool

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/vyrodovalexey/avalert-client/internal/observability"
)

// PingResult is the outcome of probing a single host.
type PingResult struct {
	// URL is the normalized base URL of the probed host.
	URL string

	// Online reports whether the probe completed successfully within
	// the timeout.
	Online bool

	// RTT is the measured round-trip time. A probe that hit its
	// timeout reports the timeout itself.
	RTT time.Duration

	// Version is the engine version reported by the host, when
	// available.
	Version string
}

// Ping probes every registered host concurrently, regardless of current
// health state, so previously-down hosts can be rediscovered. Each probe
// independently respects the timeout; the call returns once all probes
// completed or timed out, in registration order.
func (p *Pool) Ping(ctx context.Context, timeout time.Duration) []PingResult {
	if timeout <= 0 {
		timeout = p.requestTimeout
	}

	hosts := p.registry.All()
	results := make([]PingResult, len(hosts))

	var wg sync.WaitGroup
	for i, h := range hosts {
		wg.Add(1)
		go func(i int, h *Host) {
			defer wg.Done()
			results[i] = p.probe(ctx, h, timeout)
		}(i, h)
	}
	wg.Wait()

	return results
}

// probe issues one status request against a host and feeds the outcome
// back into the registry.
func (p *Pool) probe(ctx context.Context, h *Host, timeout time.Duration) PingResult {
	result := PingResult{URL: h.baseURL}

	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, h.baseURL+p.pingPath, http.NoBody)
	if err != nil {
		result.RTT = timeout
		p.registry.MarkDown(h, err)
		return result
	}

	client := h.client
	if client == nil {
		client = p.client
	}

	start := time.Now()
	resp, err := client.Do(req)
	rtt := time.Since(start)

	m := GetMetrics()

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			rtt = timeout
		}
		result.RTT = rtt
		m.PingDurationSeconds.WithLabelValues(h.baseURL, "false").Observe(rtt.Seconds())
		p.registry.MarkDown(h, err)
		return result
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	result.RTT = rtt

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		result.Online = true
		result.Version = resp.Header.Get(versionHeader)
		m.PingDurationSeconds.WithLabelValues(h.baseURL, "true").Observe(rtt.Seconds())
		p.registry.MarkUp(h)
		p.logger.Debug("probe succeeded",
			observability.String("url", h.baseURL),
			observability.Duration("rtt", rtt),
			observability.String("version", result.Version),
		)
		return result
	}

	m.PingDurationSeconds.WithLabelValues(h.baseURL, "false").Observe(rtt.Seconds())
	p.registry.MarkDown(h, &UnavailableError{StatusCode: resp.StatusCode})
	return result
}

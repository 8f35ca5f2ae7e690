package pool

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// HostConfig carries per-host request options merged into every request
// dispatched to that host.
type HostConfig struct {
	// Header holds headers added to every request (credentials,
	// user agent). May be nil.
	Header http.Header

	// Client overrides the pool's shared HTTP client for this host
	// (e.g. a host-specific TLS configuration). May be nil.
	Client *http.Client
}

// Host is a single backend endpoint and its health state. Health fields
// are owned by the registry and guarded by the host's own mutex so that
// concurrent mark operations on the same entry serialize.
type Host struct {
	baseURL string
	header  http.Header
	client  *http.Client
	index   int

	mu             sync.Mutex
	healthy        bool
	failures       int
	unhealthySince time.Time
	nextEligible   time.Time
}

// URL returns the normalized base URL of the host.
func (h *Host) URL() string {
	return h.baseURL
}

// Healthy reports whether the host is currently marked healthy.
func (h *Host) Healthy() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.healthy
}

// Failures returns the consecutive failure count.
func (h *Host) Failures() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.failures
}

// NextEligible returns when the host leaves its cool-down. Zero when the
// host is healthy.
func (h *Host) NextEligible() time.Time {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.nextEligible
}

// markDown records a host-level failure and schedules re-eligibility.
func (h *Host) markDown(now time.Time, backoff Backoff) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.failures++
	h.healthy = false
	h.unhealthySince = now
	h.nextEligible = now.Add(backoff.Next(h.failures))
}

// markUp clears the failure state. Idempotent on healthy hosts.
func (h *Host) markUp() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.healthy = true
	h.failures = 0
	h.unhealthySince = time.Time{}
	h.nextEligible = time.Time{}
}

// eligible reports whether the host may serve a request at the given
// instant. A host whose cool-down elapsed is provisionally promoted back
// to healthy; its failure count is kept until a request succeeds so a
// renewed failure backs off longer.
func (h *Host) eligible(now time.Time) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.healthy {
		return true
	}
	if !now.Before(h.nextEligible) {
		h.healthy = true
		return true
	}
	return false
}

// normalizeBaseURL validates a host URL and strips any trailing slash so
// duplicate detection and path joining are stable.
func normalizeBaseURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q in url %q", u.Scheme, raw)
	}
	if u.Host == "" {
		return "", fmt.Errorf("missing host in url %q", raw)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}

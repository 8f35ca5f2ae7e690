package pool

import (
	"sync"
	"time"

	"github.com/vyrodovalexey/avalert-client/internal/observability"
)

// Registry is the single source of truth for host health. All health
// mutations go through MarkDown/MarkUp; selection reads go through
// Candidates.
type Registry struct {
	mu      sync.RWMutex
	hosts   []*Host
	backoff Backoff
	logger  observability.Logger
}

// NewRegistry creates an empty registry using the given backoff policy.
func NewRegistry(backoff Backoff, logger observability.Logger) *Registry {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Registry{
		backoff: backoff,
		logger:  logger,
	}
}

// Add appends a new eligible host. The base URL is normalized before the
// duplicate check.
func (r *Registry) Add(baseURL string, cfg HostConfig) (*Host, error) {
	normalized, err := normalizeBaseURL(baseURL)
	if err != nil {
		return nil, NewConfigError("url", err.Error())
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, h := range r.hosts {
		if h.baseURL == normalized {
			return nil, NewConfigError("url", "duplicate host "+normalized)
		}
	}

	h := &Host{
		baseURL: normalized,
		header:  cfg.Header,
		client:  cfg.Client,
		index:   len(r.hosts),
		healthy: true,
	}
	r.hosts = append(r.hosts, h)

	GetMetrics().HostHealthy.WithLabelValues(h.baseURL).Set(1)
	r.logger.Debug("host added",
		observability.String("url", normalized),
		observability.Int("index", h.index),
	)

	return h, nil
}

// All returns every registered host in registration order.
func (r *Registry) All() []*Host {
	r.mu.RLock()
	defer r.mu.RUnlock()

	hosts := make([]*Host, len(r.hosts))
	copy(hosts, r.hosts)
	return hosts
}

// Len returns the number of registered hosts.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.hosts)
}

// Candidates returns the hosts currently eligible for selection, in
// registration order. Hosts whose cool-down elapsed are promoted back to
// healthy before being returned.
func (r *Registry) Candidates() []*Host {
	r.mu.RLock()
	defer r.mu.RUnlock()

	now := time.Now()
	eligible := make([]*Host, 0, len(r.hosts))
	for _, h := range r.hosts {
		if h.eligible(now) {
			eligible = append(eligible, h)
		}
	}
	return eligible
}

// MarkDown records a host-level failure. The host leaves selection until
// its cool-down, computed from the consecutive failure count, elapses.
func (r *Registry) MarkDown(h *Host, err error) {
	h.markDown(time.Now(), r.backoff)

	GetMetrics().HostHealthy.WithLabelValues(h.baseURL).Set(0)
	r.logger.Warn("host marked down",
		observability.String("url", h.baseURL),
		observability.Int("failures", h.Failures()),
		observability.Time("nextEligible", h.NextEligible()),
		observability.Error(err),
	)
}

// MarkUp resets a host's failure state after a successful request.
func (r *Registry) MarkUp(h *Host) {
	recovered := !h.Healthy() || h.Failures() > 0
	h.markUp()

	GetMetrics().HostHealthy.WithLabelValues(h.baseURL).Set(1)
	if recovered {
		r.logger.Info("host recovered",
			observability.String("url", h.baseURL),
		)
	}
}

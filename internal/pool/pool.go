package pool

import (
	"crypto/rand"
	"encoding/binary"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/vyrodovalexey/avalert-client/internal/observability"
)

// Pool default configuration constants.
const (
	// DefaultRequestTimeout bounds every dispatch attempt.
	DefaultRequestTimeout = 10 * time.Second

	// DefaultPingPath is the status endpoint used by health probes.
	DefaultPingPath = "/avalertd/v1/ping"

	// NoRetries disables failover entirely.
	NoRetries = -1
)

// versionHeader carries the engine version in probe responses.
const versionHeader = "X-Avalertd-Version"

// requestIDHeader correlates dispatch attempts across hosts.
const requestIDHeader = "X-Request-Id"

// Options configures a Pool. Options are immutable once the pool is
// constructed; defaults are applied exactly once in New.
type Options struct {
	// URLs are the initial backend hosts. At least one is required.
	URLs []string

	// HostConfig is applied to every initial host. Hosts added later
	// via AddHost carry their own config.
	HostConfig HostConfig

	// MaxRetries bounds failover attempts after the first try. Zero
	// means the default of len(hosts)-1 at dispatch time; NoRetries
	// disables failover.
	MaxRetries int

	// RequestTimeout bounds each dispatch attempt.
	RequestTimeout time.Duration

	// BackoffInitial and BackoffMax shape the host cool-down.
	BackoffInitial time.Duration
	BackoffMax     time.Duration

	// RandomizeSelection picks eligible hosts uniformly at random
	// instead of round-robin.
	RandomizeSelection bool

	// PingPath overrides the status endpoint used by Ping.
	PingPath string

	// RateLimit enables a client-side request rate limit (requests
	// per second) when positive. RateBurst defaults to 1.
	RateLimit float64
	RateBurst int

	// Logger receives host state transitions and retry decisions.
	Logger observability.Logger
}

// Pool dispatches logical requests across a set of backend hosts,
// isolating unhealthy hosts and failing over transparently.
type Pool struct {
	registry       *Registry
	client         *http.Client
	maxRetries     int
	deriveRetries  bool
	requestTimeout time.Duration
	randomize      bool
	pingPath       string
	limiter        *rate.Limiter
	logger         observability.Logger

	mu      sync.Mutex
	lastIdx int
}

// New creates a pool from the given options. It fails with a
// *ConfigError when no URL is configured, a URL is malformed or
// duplicated, or a timeout is negative.
func New(opts Options) (*Pool, error) {
	if len(opts.URLs) == 0 {
		return nil, NewConfigError("urls", "at least one host URL is required")
	}
	if opts.RequestTimeout < 0 {
		return nil, NewConfigError("requestTimeout", "must not be negative")
	}
	if opts.BackoffInitial < 0 || opts.BackoffMax < 0 {
		return nil, NewConfigError("backoff", "must not be negative")
	}
	if opts.MaxRetries < NoRetries {
		return nil, NewConfigError("maxRetries", "must be NoRetries, zero, or positive")
	}

	logger := opts.Logger
	if logger == nil {
		logger = observability.NopLogger()
	}

	timeout := opts.RequestTimeout
	if timeout == 0 {
		timeout = DefaultRequestTimeout
	}

	pingPath := opts.PingPath
	if pingPath == "" {
		pingPath = DefaultPingPath
	}

	maxRetries := opts.MaxRetries
	deriveRetries := maxRetries == 0
	if maxRetries == NoRetries {
		maxRetries = 0
	}

	p := &Pool{
		registry:       NewRegistry(NewBackoff(opts.BackoffInitial, opts.BackoffMax), logger),
		client:         newHTTPClient(),
		maxRetries:     maxRetries,
		deriveRetries:  deriveRetries,
		requestTimeout: timeout,
		randomize:      opts.RandomizeSelection,
		pingPath:       pingPath,
		logger:         logger,
		lastIdx:        -1,
	}

	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst <= 0 {
			burst = 1
		}
		p.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	for _, u := range opts.URLs {
		if _, err := p.registry.Add(u, opts.HostConfig); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// AddHost registers an additional host with its own request options. It
// fails with a *ConfigError on a duplicate base URL.
func (p *Pool) AddHost(baseURL string, cfg HostConfig) error {
	_, err := p.registry.Add(baseURL, cfg)
	return err
}

// Hosts returns the registered base URLs in registration order.
func (p *Pool) Hosts() []string {
	hosts := p.registry.All()
	urls := make([]string, len(hosts))
	for i, h := range hosts {
		urls[i] = h.baseURL
	}
	return urls
}

// retryBudget returns the failover budget for one dispatch.
func (p *Pool) retryBudget() int {
	if p.deriveRetries {
		if n := p.registry.Len(); n > 1 {
			return n - 1
		}
		return 0
	}
	return p.maxRetries
}

// newHTTPClient builds the pool's shared HTTP client. Timeouts are
// applied per request via context.
func newHTTPClient() *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:   true,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
	return &http.Client{Transport: transport}
}

// secureRandomInt returns a cryptographically secure random int in [0, n).
func secureRandomInt(n int) int {
	if n <= 0 {
		return 0
	}
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0
	}
	return int(binary.LittleEndian.Uint64(b[:]) % uint64(n)) //nolint:gosec // bounds checked
}

// Package avalert is a client for the avalertd time-series task and
// alerting engine. It speaks the engine's REST API against one or more
// cluster hosts, failing over between them transparently.
package avalert

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"encoding/json"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/vyrodovalexey/avalert-client/internal/config"
	"github.com/vyrodovalexey/avalert-client/internal/observability"
	"github.com/vyrodovalexey/avalert-client/internal/pool"
)

// apiPrefix roots every resource path of the engine's v1 API.
const apiPrefix = "/avalertd/v1"

// defaultUserAgent identifies the client on the wire.
const defaultUserAgent = "avalert-client/1.0"

// Config configures a Client.
type Config struct {
	// URLs lists the backend hosts of the cluster. At least one is
	// required.
	URLs []string

	// Username and Password enable basic authentication on every
	// request when Username is non-empty.
	Username string
	Password string

	// Timeout bounds each dispatch attempt. Zero uses the pool
	// default.
	Timeout time.Duration

	// MaxRetries bounds failover attempts. Zero derives the default
	// of host count minus one; pool.NoRetries disables failover.
	MaxRetries int

	// BackoffInitial and BackoffMax shape the unhealthy-host
	// cool-down.
	BackoffInitial time.Duration
	BackoffMax     time.Duration

	// RandomizeSelection picks hosts uniformly at random instead of
	// round-robin.
	RandomizeSelection bool

	// InsecureSkipVerify disables TLS certificate verification.
	InsecureSkipVerify bool

	// UserAgent overrides the User-Agent header.
	UserAgent string

	// RateLimit enables a client-side request rate limit (requests
	// per second) when positive. RateBurst defaults to 1.
	RateLimit float64
	RateBurst int

	// Logger receives host state transitions and retry decisions.
	Logger observability.Logger
}

// Client is a connection to an avalertd cluster. It is safe for
// concurrent use.
type Client struct {
	pool   *pool.Pool
	logger observability.Logger
}

// New creates a client from the given configuration.
func New(cfg Config) (*Client, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = observability.NopLogger()
	}

	hostCfg := pool.HostConfig{Header: buildHeader(cfg)}
	if cfg.InsecureSkipVerify {
		hostCfg.Client = insecureHTTPClient()
	}

	p, err := pool.New(pool.Options{
		URLs:               cfg.URLs,
		HostConfig:         hostCfg,
		MaxRetries:         cfg.MaxRetries,
		RequestTimeout:     cfg.Timeout,
		BackoffInitial:     cfg.BackoffInitial,
		BackoffMax:         cfg.BackoffMax,
		RandomizeSelection: cfg.RandomizeSelection,
		RateLimit:          cfg.RateLimit,
		RateBurst:          cfg.RateBurst,
		Logger:             logger,
	})
	if err != nil {
		return nil, err
	}

	return &Client{pool: p, logger: logger}, nil
}

// NewFromFile creates a client from a YAML configuration file.
func NewFromFile(path string, logger observability.Logger) (*Client, error) {
	fileCfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	return New(Config{
		URLs:               fileCfg.URLs,
		Username:           fileCfg.Username,
		Password:           fileCfg.Password,
		Timeout:            fileCfg.Timeout.Duration(),
		MaxRetries:         fileCfg.MaxRetries,
		BackoffInitial:     fileCfg.BackoffInitial.Duration(),
		BackoffMax:         fileCfg.BackoffMax.Duration(),
		RandomizeSelection: fileCfg.RandomizeSelection,
		InsecureSkipVerify: fileCfg.InsecureSkipVerify,
		UserAgent:          fileCfg.UserAgent,
		RateLimit:          fileCfg.RateLimit,
		RateBurst:          fileCfg.RateBurst,
		Logger:             logger,
	})
}

// AddHost registers an additional cluster host sharing the client's
// credentials.
func (c *Client) AddHost(baseURL string, cfg Config) error {
	hostCfg := pool.HostConfig{Header: buildHeader(cfg)}
	if cfg.InsecureSkipVerify {
		hostCfg.Client = insecureHTTPClient()
	}
	return c.pool.AddHost(baseURL, hostCfg)
}

// Hosts returns the registered base URLs in registration order.
func (c *Client) Hosts() []string {
	return c.pool.Hosts()
}

// do dispatches one request and decodes the response body into out when
// out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, body interface{}, query url.Values, out interface{}) error {
	req := &pool.Request{
		Method: method,
		Path:   path,
		Query:  query,
	}

	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		req.Body = string(data)
	}

	raw, err := c.pool.Do(ctx, req)
	if err != nil {
		return err
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}

// buildHeader assembles the per-host headers from credentials and the
// user agent.
func buildHeader(cfg Config) http.Header {
	header := make(http.Header)

	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	header.Set("User-Agent", ua)

	if cfg.Username != "" {
		creds := cfg.Username + ":" + cfg.Password
		header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(creds)))
	}

	return header
}

// insecureHTTPClient builds an HTTP client that skips TLS verification.
func insecureHTTPClient() *http.Client {
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
		TLSClientConfig:     &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // explicit opt-in
	}
	return &http.Client{Transport: transport}
}

package pool

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vyrodovalexey/avalert-client/internal/observability"
)

const tracerName = "github.com/vyrodovalexey/avalert-client/internal/pool"

// Request is one logical request, independent of which host serves it.
type Request struct {
	Method string
	Path   string
	Body   string
	Query  url.Values
	Header http.Header
}

// attemptResult classifies one transport attempt.
type attemptResult struct {
	raw         json.RawMessage
	err         error
	hostFailure bool
}

// Do executes the logical request against one eligible host, failing
// over to alternate hosts on transport failures and 5xx responses until
// the retry budget is exhausted. It returns the parsed response body.
func (p *Pool) Do(ctx context.Context, req *Request) (json.RawMessage, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "pool.dispatch",
		trace.WithAttributes(
			attribute.String("http.method", req.Method),
			attribute.String("url.path", req.Path),
		),
	)
	defer span.End()

	requestID := uuid.NewString()
	budget := p.retryBudget()
	tried := make(map[*Host]bool)
	var lastErr error

	for {
		if err := ctx.Err(); err != nil {
			span.RecordError(err)
			return nil, err
		}

		h := p.nextCandidate(tried)
		if h == nil {
			if len(tried) == 0 {
				GetMetrics().NoHostsTotal.Inc()
				span.RecordError(ErrNoHosts)
				return nil, ErrNoHosts
			}
			break
		}

		res := p.attempt(ctx, h, req, requestID)
		if res.err == nil {
			span.SetAttributes(attribute.String("pool.host", h.baseURL))
			return res.raw, nil
		}

		if !res.hostFailure {
			// Request-shape or semantic failure; alternate
			// hosts would answer the same way.
			span.RecordError(res.err)
			return nil, res.err
		}

		tried[h] = true
		p.registry.MarkDown(h, res.err)
		lastErr = res.err

		if budget == 0 {
			break
		}
		budget--
		GetMetrics().RetriesTotal.WithLabelValues(h.baseURL).Inc()
		p.logger.Debug("retrying on alternate host",
			observability.String("requestId", requestID),
			observability.String("failedHost", h.baseURL),
			observability.Int("remainingBudget", budget),
			observability.Error(res.err),
		)
	}

	err := &ExhaustedError{Attempts: len(tried), Cause: lastErr}
	span.RecordError(err)
	return nil, err
}

// nextCandidate selects an eligible host that has not been tried in this
// dispatch. Round-robin continues in registration order from the host
// that last completed a request successfully; randomized selection picks
// uniformly across the remaining candidates.
func (p *Pool) nextCandidate(tried map[*Host]bool) *Host {
	candidates := p.registry.Candidates()
	remaining := make([]*Host, 0, len(candidates))
	for _, h := range candidates {
		if !tried[h] {
			remaining = append(remaining, h)
		}
	}
	if len(remaining) == 0 {
		return nil
	}

	if p.randomize {
		return remaining[secureRandomInt(len(remaining))]
	}

	p.mu.Lock()
	last := p.lastIdx
	p.mu.Unlock()

	n := p.registry.Len()
	var selected *Host
	best := n + 1
	for _, h := range remaining {
		dist := (h.index - last - 1 + 2*n) % n
		if dist < best {
			best = dist
			selected = h
		}
	}
	return selected
}

// attempt performs one transport call against a single host and
// classifies the outcome.
func (p *Pool) attempt(ctx context.Context, h *Host, req *Request, requestID string) attemptResult {
	attemptCtx, cancel := context.WithTimeout(ctx, p.requestTimeout)
	defer cancel()

	httpReq, err := p.buildRequest(attemptCtx, h, req, requestID)
	if err != nil {
		return attemptResult{err: err}
	}

	client := h.client
	if client == nil {
		client = p.client
	}

	m := GetMetrics()
	start := time.Now()
	resp, err := client.Do(httpReq)
	m.RequestDurationSeconds.WithLabelValues(h.baseURL, req.Method).
		Observe(time.Since(start).Seconds())

	if err != nil {
		m.RequestsTotal.WithLabelValues(h.baseURL, req.Method, "transport_error").Inc()
		return attemptResult{err: err, hostFailure: true}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		m.RequestsTotal.WithLabelValues(h.baseURL, req.Method, "transport_error").Inc()
		return attemptResult{err: err, hostFailure: true}
	}

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		m.RequestsTotal.WithLabelValues(h.baseURL, req.Method, "server_error").Inc()
		return attemptResult{
			err:         &UnavailableError{StatusCode: resp.StatusCode, Body: body},
			hostFailure: true,
		}

	case resp.StatusCode >= http.StatusMultipleChoices:
		m.RequestsTotal.WithLabelValues(h.baseURL, req.Method, "rejected").Inc()
		return attemptResult{
			err: &RejectedError{
				StatusCode: resp.StatusCode,
				Message:    embeddedError(body),
			},
		}

	default:
		p.registry.MarkUp(h)
		p.mu.Lock()
		p.lastIdx = h.index
		p.mu.Unlock()

		if msg := embeddedError(body); msg != "" {
			m.RequestsTotal.WithLabelValues(h.baseURL, req.Method, "result_error").Inc()
			return attemptResult{err: &ResultError{Message: msg}}
		}

		m.RequestsTotal.WithLabelValues(h.baseURL, req.Method, "success").Inc()
		return attemptResult{raw: body}
	}
}

// buildRequest constructs the transport request for one host, merging
// the host's request options into the logical request.
func (p *Pool) buildRequest(ctx context.Context, h *Host, req *Request, requestID string) (*http.Request, error) {
	u := h.baseURL + req.Path
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != "" {
		body = strings.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u, body)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", h.baseURL, err)
	}

	if req.Body != "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, vals := range h.header {
		for _, v := range vals {
			httpReq.Header.Set(k, v)
		}
	}
	for k, vals := range req.Header {
		for _, v := range vals {
			httpReq.Header.Set(k, v)
		}
	}
	httpReq.Header.Set(requestIDHeader, requestID)

	return httpReq, nil
}

// embeddedError extracts the error field from a JSON object body, if
// present.
func embeddedError(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return ""
	}

	var probe struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(trimmed), &probe); err != nil {
		return ""
	}
	return probe.Error
}

package pool

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pingHandler(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if version != "" {
			w.Header().Set("X-Avalertd-Version", version)
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func hangingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}
}

func TestPool_Ping_AllOnline(t *testing.T) {
	t.Parallel()

	srv1 := httptest.NewServer(pingHandler("1.5"))
	defer srv1.Close()
	srv2 := httptest.NewServer(pingHandler("1.5"))
	defer srv2.Close()

	p := newTestPool(t, Options{URLs: []string{srv1.URL, srv2.URL}})

	results := p.Ping(context.Background(), 3*time.Second)
	require.Len(t, results, 2)

	// Results preserve registration order.
	assert.Equal(t, p.Hosts()[0], results[0].URL)
	assert.Equal(t, p.Hosts()[1], results[1].URL)

	for _, r := range results {
		assert.True(t, r.Online)
		assert.Equal(t, "1.5", r.Version)
		assert.Positive(t, r.RTT)
		assert.Less(t, r.RTT, 3*time.Second)
	}
}

func TestPool_Ping_TimeoutBoundsWallClock(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(pingHandler("1.5"))
	defer srv.Close()
	hanging := httptest.NewServer(hangingHandler())
	defer hanging.Close()

	p := newTestPool(t, Options{URLs: []string{srv.URL, hanging.URL}})

	timeout := 300 * time.Millisecond
	start := time.Now()
	results := p.Ping(context.Background(), timeout)
	elapsed := time.Since(start)

	// Probes run concurrently; the aggregate is bounded by the
	// timeout plus overhead, not the sum of probes.
	assert.Less(t, elapsed, timeout+time.Second)

	require.Len(t, results, 2)
	assert.True(t, results[0].Online)
	assert.Equal(t, "1.5", results[0].Version)

	assert.False(t, results[1].Online)
	assert.Equal(t, timeout, results[1].RTT)
	assert.Empty(t, results[1].Version)

	assert.True(t, p.registry.All()[0].Healthy())
	assert.False(t, p.registry.All()[1].Healthy())
}

func TestPool_Ping_RediscoversDownHost(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(pingHandler("1.5"))
	defer srv.Close()

	p := newTestPool(t, Options{URLs: []string{srv.URL}, BackoffInitial: time.Hour})
	p.registry.MarkDown(p.registry.All()[0], errors.New("down"))
	require.Empty(t, p.registry.Candidates())

	results := p.Ping(context.Background(), time.Second)
	require.Len(t, results, 1)
	assert.True(t, results[0].Online)

	// A successful probe resets the host even though its cool-down
	// had not elapsed.
	assert.True(t, p.registry.All()[0].Healthy())
	assert.Zero(t, p.registry.All()[0].Failures())
	assert.Len(t, p.registry.Candidates(), 1)
}

func TestPool_Ping_ServerErrorMarksDown(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := newTestPool(t, Options{URLs: []string{srv.URL}, BackoffInitial: time.Hour})

	results := p.Ping(context.Background(), time.Second)
	require.Len(t, results, 1)
	assert.False(t, results[0].Online)
	assert.False(t, p.registry.All()[0].Healthy())
	assert.Equal(t, 1, p.registry.All()[0].Failures())
}

func TestPool_Ping_ConnectionRefused(t *testing.T) {
	t.Parallel()

	dead := deadServer(t)

	p := newTestPool(t, Options{URLs: []string{dead}, BackoffInitial: time.Hour})

	results := p.Ping(context.Background(), time.Second)
	require.Len(t, results, 1)
	assert.False(t, results[0].Online)
	assert.False(t, p.registry.All()[0].Healthy())
}

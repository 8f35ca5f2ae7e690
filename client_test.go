package avalert

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/avalert-client/internal/pool"
)

func TestNew_RequiresURLs(t *testing.T) {
	t.Parallel()

	_, err := New(Config{})
	require.Error(t, err)

	var cfgErr *pool.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestNew_InvalidURL(t *testing.T) {
	t.Parallel()

	_, err := New(Config{URLs: []string{"ftp://h1:9092"}})
	assert.Error(t, err)
}

func TestClient_SendsCredentialsAndUserAgent(t *testing.T) {
	t.Parallel()

	var gotAuth, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotUA = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"tasks":[]}`))
	}))
	defer srv.Close()

	client, err := New(Config{
		URLs:     []string{srv.URL},
		Username: "bob",
		Password: "secret",
	})
	require.NoError(t, err)

	_, err = client.ListTasks(context.Background(), nil)
	require.NoError(t, err)

	// base64("bob:secret")
	assert.Equal(t, "Basic Ym9iOnNlY3JldA==", gotAuth)
	assert.Equal(t, defaultUserAgent, gotUA)
}

func TestClient_AddHost(t *testing.T) {
	t.Parallel()

	client, err := New(Config{URLs: []string{"http://h1:9092"}})
	require.NoError(t, err)

	require.NoError(t, client.AddHost("http://h2:9092", Config{}))
	assert.Equal(t, []string{"http://h1:9092", "http://h2:9092"}, client.Hosts())

	err = client.AddHost("http://h1:9092/", Config{})
	require.Error(t, err)

	var cfgErr *pool.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestNewFromFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "avalert.yaml")
	content := `
urls:
  - http://h1:9092
timeout: 2s
maxRetries: 1
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	client, err := NewFromFile(path, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"http://h1:9092"}, client.Hosts())
}

func TestNewFromFile_Invalid(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "avalert.yaml")
	require.NoError(t, os.WriteFile(path, []byte("urls: []\n"), 0o600))

	_, err := NewFromFile(path, nil)
	assert.Error(t, err)
}

func TestClient_FailoverBetweenHosts(t *testing.T) {
	t.Parallel()

	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":"t1","type":"stream","status":"enabled"}`))
	}))
	defer srv.Close()

	client, err := New(Config{
		URLs:           []string{deadURL, srv.URL},
		MaxRetries:     1,
		Timeout:        2 * time.Second,
		BackoffInitial: time.Minute,
	})
	require.NoError(t, err)

	task, err := client.Task(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, "t1", task.ID)
	assert.Equal(t, StreamTask, task.Type)
}

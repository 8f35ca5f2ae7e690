package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "avalert.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Valid(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
urls:
  - http://h1:9092
  - http://h2:9092
username: bob
password: secret
timeout: 5s
maxRetries: 2
backoffInitial: 250ms
backoffMax: 30s
randomizeSelection: true
insecureSkipVerify: true
rateLimit: 100
rateBurst: 10
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"http://h1:9092", "http://h2:9092"}, cfg.URLs)
	assert.Equal(t, "bob", cfg.Username)
	assert.Equal(t, 5*time.Second, cfg.Timeout.Duration())
	assert.Equal(t, 2, cfg.MaxRetries)
	assert.Equal(t, 250*time.Millisecond, cfg.BackoffInitial.Duration())
	assert.Equal(t, 30*time.Second, cfg.BackoffMax.Duration())
	assert.True(t, cfg.RandomizeSelection)
	assert.True(t, cfg.InsecureSkipVerify)
	assert.Equal(t, float64(100), cfg.RateLimit)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "urls: [http://h1:9092\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{URLs: []string{"http://h1:9092"}}, false},
		{"no urls", Config{}, true},
		{"bad scheme", Config{URLs: []string{"ftp://h1:9092"}}, true},
		{"negative timeout", Config{URLs: []string{"http://h1:9092"}, Timeout: Duration(-time.Second)}, true},
		{"negative backoff", Config{URLs: []string{"http://h1:9092"}, BackoffInitial: Duration(-time.Second)}, true},
		{"retries below sentinel", Config{URLs: []string{"http://h1:9092"}, MaxRetries: -2}, true},
		{"no retries sentinel ok", Config{URLs: []string{"http://h1:9092"}, MaxRetries: -1}, false},
		{"negative rate limit", Config{URLs: []string{"http://h1:9092"}, RateLimit: -1}, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

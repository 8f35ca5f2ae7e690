package pool

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigError(t *testing.T) {
	t.Parallel()

	err := NewConfigError("urls", "at least one host URL is required")
	assert.Contains(t, err.Error(), "urls")
	assert.ErrorIs(t, err, &ConfigError{})
}

func TestExhaustedError_UnwrapsTransportError(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	err := &ExhaustedError{Attempts: 3, Cause: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "3 attempts")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestExhaustedError_UnwrapsUnavailable(t *testing.T) {
	t.Parallel()

	err := &ExhaustedError{
		Attempts: 2,
		Cause:    &UnavailableError{StatusCode: 503, Body: []byte(`{"error":"overloaded"}`)},
	}

	var unavailable *UnavailableError
	assert.ErrorAs(t, err, &unavailable)
	assert.Equal(t, 503, unavailable.StatusCode)
}

func TestExhaustedError_WrappedFurther(t *testing.T) {
	t.Parallel()

	inner := &ExhaustedError{Attempts: 1, Cause: errors.New("refused")}
	wrapped := fmt.Errorf("list tasks: %w", inner)

	var exhausted *ExhaustedError
	assert.ErrorAs(t, wrapped, &exhausted)
}

func TestRejectedError(t *testing.T) {
	t.Parallel()

	err := &RejectedError{StatusCode: 404, Message: "no such task"}
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "no such task")

	bare := &RejectedError{StatusCode: 400}
	assert.Contains(t, bare.Error(), "400")
}

func TestResultError(t *testing.T) {
	t.Parallel()

	err := &ResultError{Message: "no template exists"}
	assert.Equal(t, "no template exists", err.Error())
}

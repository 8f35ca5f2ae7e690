package pool

import (
	"errors"
	"fmt"
)

// Error conventions follow the rest of the project: sentinel errors for
// stable conditions checked with errors.Is, and structured types that
// carry context and implement Error(), Unwrap() (if wrapping), and Is().

// ErrNoHosts is returned when no eligible host exists at the start of a
// dispatch. The caller may retry later; the pool does not.
var ErrNoHosts = errors.New("no available hosts")

// ConfigError represents invalid pool or host configuration.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error at %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

// Is checks if the error matches the target.
func (e *ConfigError) Is(target error) bool {
	_, ok := target.(*ConfigError)
	return ok
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{Field: field, Message: message}
}

// ExhaustedError is returned when every failover attempt hit a transport
// failure or a 5xx response. It wraps the last underlying error; when the
// last outcome was a 5xx the cause is an *UnavailableError carrying the
// response body.
type ExhaustedError struct {
	Attempts int
	Cause    error
}

// Error implements the error interface.
func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("all hosts failed after %d attempts: %v", e.Attempts, e.Cause)
}

// Unwrap returns the underlying error.
func (e *ExhaustedError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target.
func (e *ExhaustedError) Is(target error) bool {
	if _, ok := target.(*ExhaustedError); ok {
		return true
	}
	return errors.Is(e.Cause, target)
}

// UnavailableError represents a 5xx response from a host. It is treated
// as a host-health failure for retry purposes.
type UnavailableError struct {
	StatusCode int
	Body       []byte
}

// Error implements the error interface.
func (e *UnavailableError) Error() string {
	if len(e.Body) > 0 {
		return fmt.Sprintf("service unavailable: status %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("service unavailable: status %d", e.StatusCode)
}

// Is checks if the error matches the target.
func (e *UnavailableError) Is(target error) bool {
	_, ok := target.(*UnavailableError)
	return ok
}

// RejectedError represents a 3xx-4xx response. The request shape was
// wrong, not the host; it is never retried on another host.
type RejectedError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *RejectedError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("request rejected: status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("request rejected: status %d", e.StatusCode)
}

// Is checks if the error matches the target.
func (e *RejectedError) Is(target error) bool {
	_, ok := target.(*RejectedError)
	return ok
}

// ResultError represents a 2xx response whose body carries a non-empty
// error field. The transport succeeded and the host stays healthy; the
// operation itself failed.
type ResultError struct {
	Message string
}

// Error implements the error interface.
func (e *ResultError) Error() string {
	return e.Message
}

// Is checks if the error matches the target.
func (e *ResultError) Is(target error) bool {
	_, ok := target.(*ResultError)
	return ok
}

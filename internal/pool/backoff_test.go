package pool

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewBackoff_Defaults(t *testing.T) {
	t.Parallel()

	b := NewBackoff(0, 0)
	assert.Equal(t, DefaultBackoffInitial, b.Next(1))
	assert.Equal(t, DefaultBackoffMax, b.Next(1000))
}

func TestBackoff_ExponentialGrowth(t *testing.T) {
	t.Parallel()

	b := NewBackoff(100*time.Millisecond, time.Second)

	assert.Equal(t, 100*time.Millisecond, b.Next(1))
	assert.Equal(t, 200*time.Millisecond, b.Next(2))
	assert.Equal(t, 400*time.Millisecond, b.Next(3))
	assert.Equal(t, 800*time.Millisecond, b.Next(4))
}

func TestBackoff_Cap(t *testing.T) {
	t.Parallel()

	b := NewBackoff(100*time.Millisecond, time.Second)

	assert.Equal(t, time.Second, b.Next(5))
	assert.Equal(t, time.Second, b.Next(64))
	assert.Equal(t, time.Second, b.Next(1000))
}

func TestBackoff_ZeroAndNegativeFailures(t *testing.T) {
	t.Parallel()

	b := NewBackoff(100*time.Millisecond, time.Second)

	assert.Equal(t, 100*time.Millisecond, b.Next(0))
	assert.Equal(t, 100*time.Millisecond, b.Next(-1))
}

func TestNewBackoff_MaxBelowInitial(t *testing.T) {
	t.Parallel()

	b := NewBackoff(time.Second, 100*time.Millisecond)
	assert.Equal(t, time.Second, b.Next(1))
	assert.Equal(t, time.Second, b.Next(10))
}

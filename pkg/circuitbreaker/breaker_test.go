package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func TestNew_TripsAfterConsecutiveFailures(t *testing.T) {
	cfg := DefaultConfig("test")
	cfg.ConsecutiveFailures = 2
	cfg.Timeout = time.Hour
	cb := New[int](cfg)

	for i := 0; i < 2; i++ {
		_, err := cb.Execute(func() (int, error) { return 0, errBoom })
		require.ErrorIs(t, err, errBoom)
	}

	assert.Equal(t, gobreaker.StateOpen, cb.State())

	_, err := cb.Execute(func() (int, error) { return 1, nil })
	assert.True(t, IsOpen(err))
}

func TestNew_IsSuccessfulKeepsBreakerClosed(t *testing.T) {
	cfg := DefaultConfig("test")
	cfg.ConsecutiveFailures = 1
	cfg.IsSuccessful = func(err error) bool { return err == nil || errors.Is(err, errBoom) }
	cb := New[int](cfg)

	for i := 0; i < 3; i++ {
		_, _ = cb.Execute(func() (int, error) { return 0, errBoom })
	}

	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestIsOpen_OtherErrors(t *testing.T) {
	assert.False(t, IsOpen(errBoom))
	assert.False(t, IsOpen(nil))
	assert.True(t, IsOpen(gobreaker.ErrTooManyRequests))
}

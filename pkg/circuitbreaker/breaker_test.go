package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestBreaker(cfg Config) (*CircuitBreaker, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	cb := NewCircuitBreaker("test", cfg)
	cb.now = clock.now
	cb.toNewGeneration(clock.t)
	return cb, clock
}

func TestBreakerOpensAfterThreshold(t *testing.T) {
	var transitions []string
	cb, _ := newTestBreaker(Config{
		FailureThreshold: 2,
		OnStateChange: func(_ string, from, to State) {
			transitions = append(transitions, from.String()+"->"+to.String())
		},
	})
	ctx := context.Background()

	assert.ErrorIs(t, cb.Execute(ctx, func() error { return errBoom }), errBoom)
	assert.Equal(t, StateClosed, cb.State())
	assert.ErrorIs(t, cb.Execute(ctx, func() error { return errBoom }), errBoom)
	assert.Equal(t, StateOpen, cb.State())

	called := false
	err := cb.Execute(ctx, func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
	assert.Equal(t, []string{"closed->open"}, transitions)
}

func TestBreakerRecoversThroughHalfOpen(t *testing.T) {
	cb, clock := newTestBreaker(Config{FailureThreshold: 1, SuccessThreshold: 1, Timeout: time.Second})
	ctx := context.Background()

	require.Error(t, cb.Execute(ctx, func() error { return errBoom }))
	require.Equal(t, StateOpen, cb.State())

	clock.t = clock.t.Add(2 * time.Second)
	assert.Equal(t, StateHalfOpen, cb.State())

	require.NoError(t, cb.Execute(ctx, func() error { return nil }))
	assert.Equal(t, StateClosed, cb.State())
}

func TestBreakerIgnoresNonFailures(t *testing.T) {
	errNotFound := errors.New("not found")
	cb, _ := newTestBreaker(Config{
		FailureThreshold: 1,
		IsFailure:        func(err error) bool { return err != nil && !errors.Is(err, errNotFound) },
	})

	assert.ErrorIs(t, cb.Execute(context.Background(), func() error { return errNotFound }), errNotFound)
	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, uint32(1), cb.Counts().TotalSuccesses)
}

func TestBreakerHonorsCancelledContext(t *testing.T) {
	cb, _ := newTestBreaker(Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := cb.Execute(ctx, func() error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, cb.Counts().Requests)
}

func TestBreakerIntervalClearsClosedStateCounts(t *testing.T) {
	cb, clock := newTestBreaker(Config{FailureThreshold: 3, Interval: time.Minute})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		require.ErrorIs(t, cb.Execute(ctx, func() error { return errBoom }), errBoom)
	}
	assert.Equal(t, uint32(2), cb.Counts().ConsecutiveFailures)

	clock.t = clock.t.Add(61 * time.Second)
	assert.Equal(t, StateClosed, cb.State())
	assert.Zero(t, cb.Counts().ConsecutiveFailures)

	for i := 0; i < 2; i++ {
		require.ErrorIs(t, cb.Execute(ctx, func() error { return errBoom }), errBoom)
	}
	assert.Equal(t, StateClosed, cb.State())
}

func TestBreakerWithoutIntervalKeepsCounts(t *testing.T) {
	cb, clock := newTestBreaker(Config{FailureThreshold: 3})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		require.ErrorIs(t, cb.Execute(ctx, func() error { return errBoom }), errBoom)
	}
	clock.t = clock.t.Add(time.Hour)
	require.ErrorIs(t, cb.Execute(ctx, func() error { return errBoom }), errBoom)
	assert.Equal(t, StateOpen, cb.State())
}

package resilience_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/diillson/mock-api-server/internal/testutils"
	"github.com/diillson/mock-api-server/pkg/resilience"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircuitBreaker(t *testing.T) {
	ctx := context.Background()
	errStorage := errors.New("storage down")
	fail := func(context.Context) error { return errStorage }
	succeed := func(context.Context) error { return nil }

	newBreaker := func(t *testing.T) *resilience.CircuitBreaker {
		return resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			Name:        "route-storage",
			MaxFailures: 2,
			Timeout:     30 * time.Millisecond,
		}, testutils.TestLogger(t), nil)
	}

	t.Run("opens after consecutive failures", func(t *testing.T) {
		cb := newBreaker(t)

		assert.ErrorIs(t, cb.Execute(ctx, fail), errStorage)
		assert.Equal(t, resilience.StateClose, cb.GetState())
		assert.ErrorIs(t, cb.Execute(ctx, fail), errStorage)
		assert.Equal(t, resilience.StateOpen, cb.GetState())

		called := false
		err := cb.Execute(ctx, func(context.Context) error {
			called = true
			return nil
		})
		assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
		assert.False(t, called)
	})

	t.Run("success resets the failure count", func(t *testing.T) {
		cb := newBreaker(t)

		require.Error(t, cb.Execute(ctx, fail))
		require.NoError(t, cb.Execute(ctx, succeed))
		require.Error(t, cb.Execute(ctx, fail))
		assert.Equal(t, resilience.StateClose, cb.GetState())
	})

	t.Run("half-open probe closes the circuit", func(t *testing.T) {
		cb := newBreaker(t)
		require.Error(t, cb.Execute(ctx, fail))
		require.Error(t, cb.Execute(ctx, fail))

		time.Sleep(40 * time.Millisecond)

		require.NoError(t, cb.Execute(ctx, succeed))
		assert.Equal(t, resilience.StateClose, cb.GetState())
	})

	t.Run("failed probe reopens the circuit", func(t *testing.T) {
		cb := newBreaker(t)
		require.Error(t, cb.Execute(ctx, fail))
		require.Error(t, cb.Execute(ctx, fail))

		time.Sleep(40 * time.Millisecond)

		require.Error(t, cb.Execute(ctx, fail))
		assert.Equal(t, resilience.StateOpen, cb.GetState())
	})

	t.Run("cancellation is not a failure", func(t *testing.T) {
		cb := newBreaker(t)
		cancelled := func(context.Context) error { return context.Canceled }

		for i := 0; i < 3; i++ {
			assert.ErrorIs(t, cb.Execute(ctx, cancelled), context.Canceled)
		}
		assert.Equal(t, resilience.StateClose, cb.GetState())
	})

	t.Run("reset", func(t *testing.T) {
		cb := newBreaker(t)
		require.Error(t, cb.Execute(ctx, fail))
		require.Error(t, cb.Execute(ctx, fail))

		cb.Reset()
		assert.Equal(t, resilience.StateClose, cb.GetState())
		assert.Equal(t, "closed", cb.GetState().String())
	})
}

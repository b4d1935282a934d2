package poller

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoller(t *testing.T) {
	t.Run("polls on every tick", func(t *testing.T) {
		clock := clockwork.NewFakeClock()
		var calls atomic.Int32
		p := NewPollerWithClock("test", time.Minute, clock, func(ctx context.Context) error {
			calls.Add(1)
			return nil
		})

		done := make(chan struct{})
		go func() {
			p.Start(t.Context())
			close(done)
		}()

		require.NoError(t, clock.BlockUntilContext(t.Context(), 1))
		for i := 1; i <= 3; i++ {
			clock.Advance(time.Minute)
			require.Eventually(t, func() bool { return calls.Load() == int32(i) }, time.Second, time.Millisecond)
		}

		p.Stop()
		<-done
	})

	t.Run("keeps polling after an error", func(t *testing.T) {
		clock := clockwork.NewFakeClock()
		var calls atomic.Int32
		p := NewPollerWithClock("test", time.Second, clock, func(ctx context.Context) error {
			calls.Add(1)
			return errors.New("boom")
		})

		ctx, cancel := context.WithCancel(t.Context())
		done := make(chan struct{})
		go func() {
			p.Start(ctx)
			close(done)
		}()

		require.NoError(t, clock.BlockUntilContext(ctx, 1))
		clock.Advance(time.Second)
		require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)
		clock.Advance(time.Second)
		require.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, time.Millisecond)

		cancel()
		<-done
		assert.Equal(t, int32(2), calls.Load())
	})
}

package services

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockTable(t *testing.T) {
	a := newPublicKey(t)
	b := newPublicKey(t)

	t.Run("same key is exclusive", func(t *testing.T) {
		table := newLockTable()
		var inside, maxInside atomic.Int32
		var wg sync.WaitGroup
		for range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				release := table.acquire(a)
				defer release()
				n := inside.Add(1)
				if n > maxInside.Load() {
					maxInside.Store(n)
				}
				time.Sleep(time.Millisecond)
				inside.Add(-1)
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), maxInside.Load())
	})

	t.Run("opposite order does not deadlock", func(t *testing.T) {
		table := newLockTable()
		var wg sync.WaitGroup
		for i := range 50 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				var release func()
				if i%2 == 0 {
					release = table.acquire(a, b)
				} else {
					release = table.acquire(b, a)
				}
				release()
			}()
		}
		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("lock acquisition deadlocked")
		}
	})

	t.Run("duplicate keys and cleanup", func(t *testing.T) {
		table := newLockTable()
		release := table.acquire(a, a, b)
		release()

		table.mu.Lock()
		defer table.mu.Unlock()
		require.Empty(t, table.locks)
	})

	t.Run("disjoint keys proceed in parallel", func(t *testing.T) {
		table := newLockTable()
		releaseA := table.acquire(a)
		defer releaseA()

		acquired := make(chan struct{})
		go func() {
			release := table.acquire(b)
			release()
			close(acquired)
		}()
		select {
		case <-acquired:
		case <-time.After(time.Second):
			t.Fatal("unrelated key was blocked")
		}
	})
}

func newPublicKey(t *testing.T) solana.PublicKey {
	t.Helper()
	pk, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return pk.PublicKey()
}

package services

import (
	"slices"
	"sync"

	"github.com/gagliardetto/solana-go"
)

// lockTable serializes operations per derived address. Operations that touch
// disjoint addresses never wait on each other.
type lockTable struct {
	mu    sync.Mutex
	locks map[solana.PublicKey]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[solana.PublicKey]*entry)}
}

// acquire locks every key and returns the function releasing them. Keys are
// locked in sorted order, so two operations can never deadlock.
func (t *lockTable) acquire(keys ...solana.PublicKey) (release func()) {
	keys = slices.Clone(keys)
	slices.SortFunc(keys, func(a, b solana.PublicKey) int {
		return slices.Compare(a[:], b[:])
	})
	keys = slices.Compact(keys)

	entries := make([]*entry, len(keys))
	t.mu.Lock()
	for i, key := range keys {
		e, ok := t.locks[key]
		if !ok {
			e = &entry{}
			t.locks[key] = e
		}
		e.refs++
		entries[i] = e
	}
	t.mu.Unlock()

	for _, e := range entries {
		e.mu.Lock()
	}

	return func() {
		for i := len(entries) - 1; i >= 0; i-- {
			entries[i].mu.Unlock()
		}

		t.mu.Lock()
		for i, key := range keys {
			entries[i].refs--
			if entries[i].refs == 0 {
				delete(t.locks, key)
			}
		}
		t.mu.Unlock()
	}
}

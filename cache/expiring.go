// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import (
	"sync"

	"github.com/pkg/errors"
)

var (
	ErrSeen = errors.New("key already seen")
	ErrFull = errors.New("too many unexpired keys")
)

// Expiring remembers keys until their expiry time passes. Unexpired keys are
// never evicted: while the set is full of them, Mark refuses new keys.
type Expiring struct {
	mu       sync.Mutex
	lru      *LRU
	capacity int
	pruned   uint64
}

// NewExpiring creates a set holding at most capacity unexpired keys.
func NewExpiring(capacity int) (*Expiring, error) {
	l, err := NewLRU(capacity)
	if err != nil {
		return nil, err
	}
	return &Expiring{lru: l, capacity: capacity}, nil
}

// Mark records key until expiry. Times are unix seconds; a key stays live
// while expiry >= now.
func (e *Expiring) Mark(key any, expiry, now uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if v, ok := e.lru.Peek(key); ok {
		if v.(uint64) >= now {
			return ErrSeen
		}
		e.lru.Remove(key)
	}
	if e.lru.Len() >= e.capacity {
		// nothing more can expire within the second of the last scan
		if e.pruned == now {
			return ErrFull
		}
		e.prune(now)
		if e.lru.Len() >= e.capacity {
			return ErrFull
		}
	}
	e.lru.Add(key, expiry)
	return nil
}

func (e *Expiring) prune(now uint64) {
	e.pruned = now
	for _, key := range e.lru.Keys() {
		if v, ok := e.lru.Peek(key); ok && v.(uint64) < now {
			e.lru.Remove(key)
		}
	}
}

// Len returns the number of keys held, expired ones not yet pruned included.
func (e *Expiring) Len() int {
	return e.lru.Len()
}

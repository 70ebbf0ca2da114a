// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import (
	lru "github.com/hashicorp/golang-lru"
)

// LRU is a fixed size least recently used cache.
type LRU struct {
	cache *lru.Cache
}

// NewLRU creates a cache holding at most size entries. size must be > 0.
func NewLRU(size int) (*LRU, error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &LRU{cache: c}, nil
}

func (l *LRU) Get(key any) (any, bool) {
	return l.cache.Get(key)
}

func (l *LRU) Add(key, value any) {
	l.cache.Add(key, value)
}

// Peek returns the value of key without updating its recency.
func (l *LRU) Peek(key any) (any, bool) {
	return l.cache.Peek(key)
}

func (l *LRU) Remove(key any) {
	l.cache.Remove(key)
}

// Keys returns the keys from oldest to newest.
func (l *LRU) Keys() []any {
	return l.cache.Keys()
}

func (l *LRU) Len() int {
	return l.cache.Len()
}

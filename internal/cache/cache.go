// Package cache holds resolved key→entry pairs behind a fixed-capacity,
// least-recently-used bound, so repeat lookups skip the shard and stream
// machinery entirely.
package cache

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCapacity is used when no capacity is configured.
const DefaultCapacity = 512

// Recency is a bounded LRU of resolved entries. Safe for concurrent use.
// Get promotes the entry to most-recently-used; Put on an existing key
// replaces the value and resets its recency. On overflow exactly the
// least-recently-touched entry is evicted.
type Recency struct {
	lru *lru.Cache[string, any]
}

// New builds a Recency cache with the given capacity.
func New(capacity int) (*Recency, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	l, err := lru.New[string, any](capacity)
	if err != nil {
		return nil, fmt.Errorf("recency cache: %w", err)
	}
	return &Recency{lru: l}, nil
}

// Get returns the cached entry for key, promoting it to most recently used.
func (c *Recency) Get(key string) (any, bool) {
	return c.lru.Get(key)
}

// Put stores an entry, evicting the least-recently-used pair if full.
func (c *Recency) Put(key string, entry any) {
	c.lru.Add(key, entry)
}

// Len reports the number of cached entries.
func (c *Recency) Len() int {
	return c.lru.Len()
}

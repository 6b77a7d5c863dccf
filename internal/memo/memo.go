// Package memo is an in-process memoization layer with expiry and explicit invalidation.
// Results are held in a ristretto cache under an xxhash key, and concurrent callers for
// the same key share a single computation.
package memo

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/ristretto/v2"
	"golang.org/x/sync/singleflight"
)

// Key hashes the parts identifying a memoized call
func Key(parts ...string) uint64 {
	d := xxhash.New()
	for _, p := range parts {
		d.WriteString(p)
		d.Write([]byte{0})
	}
	return d.Sum64()
}

// Options configures a Cache
type Options[V any] struct {
	TTL     time.Duration
	MaxCost int64
	// Cost weighs an entry against MaxCost. Entries cost 1 when nil.
	Cost func(V) int64
}

// Cache memoizes values of type V
type Cache[V any] struct {
	store      *ristretto.Cache[uint64, V]
	group      singleflight.Group
	ttl        time.Duration
	cost       func(V) int64
	generation atomic.Uint64
}

// New creates a cache
func New[V any](opts Options[V]) (*Cache[V], error) {
	if opts.MaxCost <= 0 {
		opts.MaxCost = 1 << 28
	}
	if opts.Cost == nil {
		opts.Cost = func(V) int64 { return 1 }
	}

	store, err := ristretto.NewCache(&ristretto.Config[uint64, V]{
		NumCounters:        1e5,
		MaxCost:            opts.MaxCost,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create memo cache: %w", err)
	}

	return &Cache[V]{
		store: store,
		ttl:   opts.TTL,
		cost:  opts.Cost,
	}, nil
}

// Get returns a memoized value
func (c *Cache[V]) Get(key uint64) (V, bool) {
	return c.store.Get(key)
}

// Set stores v under key, replacing any previous value
func (c *Cache[V]) Set(key uint64, v V) {
	c.store.SetWithTTL(key, v, c.cost(v), c.ttl)
	c.store.Wait()
}

// Do returns the memoized value for key, computing it with fn on a miss. Concurrent
// misses on the same key wait for one call to fn, which runs on a context detached from
// any single caller's cancellation. Each caller stops waiting when its own ctx is done.
// Errors are not memoized.
func (c *Cache[V]) Do(ctx context.Context, key uint64, fn func(context.Context) (V, error)) (V, error) {
	if v, ok := c.store.Get(key); ok {
		return v, nil
	}

	gen := c.generation.Load()
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(strconv.FormatUint(key, 16), func() (any, error) {
		if v, ok := c.store.Get(key); ok {
			return v, nil
		}
		v, err := fn(shared)
		if err != nil {
			return v, err
		}
		// Drop results computed across an Invalidate
		if c.generation.Load() == gen {
			c.Set(key, v)
		}
		return v, nil
	})

	var zero V
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(V), nil
	}
}

// Invalidate drops every memoized value
func (c *Cache[V]) Invalidate() {
	c.generation.Add(1)
	c.store.Clear()
}

// Close stops the cache's background goroutines
func (c *Cache[V]) Close() {
	c.store.Close()
}

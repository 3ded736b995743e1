// Package cache memoises parsed job queries in Redis. Keys hash the exact
// query text because the parser is sensitive to case in its title
// fallback. Concurrent misses for one query are collapsed with
// singleflight, and a circuit breaker stops Redis round-trips while the
// store is failing; parsing then proceeds uncached.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/medjobs/jobquery/internal/query/parser"
	"github.com/medjobs/jobquery/pkg/resilience"
	"golang.org/x/sync/singleflight"
)

// keyPrefix is versioned so dictionary changes can be rolled out by bumping
// it instead of flushing.
const keyPrefix = "jobquery:parse:v1:"

// Store is the subset of the Redis client the cache uses.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) (int64, error)
}

type ParseCache struct {
	store   Store
	ttl     time.Duration
	breaker *resilience.CircuitBreaker
	group   singleflight.Group
	logger  *slog.Logger
	hits    atomic.Int64
	misses  atomic.Int64
}

func New(store Store, ttl time.Duration, breaker *resilience.CircuitBreaker) *ParseCache {
	if breaker == nil {
		breaker = resilience.NewCircuitBreaker("parse-cache", resilience.CircuitBreakerConfig{})
	}
	return &ParseCache{
		store:   store,
		ttl:     ttl,
		breaker: breaker,
		logger:  slog.Default().With("component", "parse-cache"),
	}
}

// Get returns the cached parse of query, if any. Store failures count as
// misses.
func (c *ParseCache) Get(ctx context.Context, query string) (parser.ParsedQuery, bool) {
	key := Key(query)
	var data []byte
	var found bool
	err := c.breaker.Execute(func() error {
		var err error
		data, found, err = c.store.Get(ctx, key)
		return err
	})
	if err != nil {
		c.logger.Warn("cache get failed", "key", key, "error", err)
		c.misses.Add(1)
		return parser.ParsedQuery{}, false
	}
	if !found {
		c.misses.Add(1)
		return parser.ParsedQuery{}, false
	}
	var parsed parser.ParsedQuery
	if err := json.Unmarshal(data, &parsed); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.misses.Add(1)
		return parser.ParsedQuery{}, false
	}
	c.hits.Add(1)
	return parsed, true
}

// Set stores parsed for query. Failures are logged and otherwise ignored.
func (c *ParseCache) Set(ctx context.Context, query string, parsed parser.ParsedQuery) {
	key := Key(query)
	data, err := json.Marshal(parsed)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	err = c.breaker.Execute(func() error {
		return c.store.Set(ctx, key, data, c.ttl)
	})
	if err != nil {
		c.logger.Warn("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached parse of query or computes, stores and
// returns it. hit reports whether the value came from the cache.
func (c *ParseCache) GetOrCompute(
	ctx context.Context,
	query string,
	compute func(string) parser.ParsedQuery,
) (parsed parser.ParsedQuery, hit bool) {
	if parsed, ok := c.Get(ctx, query); ok {
		return parsed, true
	}
	val, _, _ := c.group.Do(Key(query), func() (any, error) {
		parsed := compute(query)
		c.Set(ctx, query, parsed)
		return parsed, nil
	})
	return val.(parser.ParsedQuery), false
}

// Invalidate removes every cached parse.
func (c *ParseCache) Invalidate(ctx context.Context) (int64, error) {
	deleted, err := c.store.DeleteByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return deleted, fmt.Errorf("invalidating parse cache: %w", err)
	}
	c.logger.Info("cache invalidated", "keys_deleted", deleted)
	return deleted, nil
}

func (c *ParseCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// BreakerState reports the cache circuit breaker's state.
func (c *ParseCache) BreakerState() resilience.State {
	return c.breaker.GetState()
}

// Key returns the Redis key for query.
func Key(query string) string {
	sum := sha256.Sum256([]byte(query))
	return fmt.Sprintf("%s%x", keyPrefix, sum[:16])
}

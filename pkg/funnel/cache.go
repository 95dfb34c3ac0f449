package funnel

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vendaflow/venda-cli/pkg/logging"
)

// Redis key prefixes.
const (
	keyPrefixFunnel = "funnel:"
	keyFunnelList   = "funnel:all"
)

// DefaultCacheTTL bounds how stale a cached funnel may get. The catalog is
// read-mostly, so a short TTL keeps edits visible without hammering the
// authoritative registry.
const DefaultCacheTTL = 5 * time.Minute

// Cache is a Redis read-through cache in front of a Registry. Cache failures
// are never fatal: on any Redis error the call falls through to the inner
// registry.
type Cache struct {
	inner  Registry
	client *redis.Client
	ttl    time.Duration
	logger logging.Logger
}

// NewCache creates a read-through cache over inner. A zero ttl uses
// DefaultCacheTTL.
func NewCache(inner Registry, client *redis.Client, ttl time.Duration, logger logging.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Cache{
		inner:  inner,
		client: client,
		ttl:    ttl,
		logger: logger.With(logging.F("component", "funnel_cache")),
	}
}

// GetFunnel returns the cached funnel, falling back to the inner registry on
// a miss or Redis error.
func (c *Cache) GetFunnel(ctx context.Context, id string) (*Funnel, error) {
	key := keyPrefixFunnel + id

	raw, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var f Funnel
		if err := json.Unmarshal(raw, &f); err == nil {
			return &f, nil
		}
		// Corrupt entry, drop it and fall through.
		c.client.Del(ctx, key)
	} else if err != redis.Nil {
		c.logger.Warn("funnel cache read failed", logging.Err(err), logging.F("key", key))
	}

	f, err := c.inner.GetFunnel(ctx, id)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(f); err == nil {
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			c.logger.Warn("funnel cache write failed", logging.Err(err), logging.F("key", key))
		}
	}
	return f, nil
}

// ListFunnels returns the cached catalog, falling back to the inner registry
// on a miss or Redis error.
func (c *Cache) ListFunnels(ctx context.Context) ([]Funnel, error) {
	raw, err := c.client.Get(ctx, keyFunnelList).Bytes()
	if err == nil {
		var funnels []Funnel
		if err := json.Unmarshal(raw, &funnels); err == nil {
			return funnels, nil
		}
		c.client.Del(ctx, keyFunnelList)
	} else if err != redis.Nil {
		c.logger.Warn("funnel cache read failed", logging.Err(err), logging.F("key", keyFunnelList))
	}

	funnels, err := c.inner.ListFunnels(ctx)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(funnels); err == nil {
		if err := c.client.Set(ctx, keyFunnelList, raw, c.ttl).Err(); err != nil {
			c.logger.Warn("funnel cache write failed", logging.Err(err))
		}
	}
	return funnels, nil
}

// Invalidate drops the cached entry for one funnel plus the catalog listing.
// Call after any edit so readers converge before the TTL expires.
func (c *Cache) Invalidate(ctx context.Context, id string) error {
	return c.client.Del(ctx, keyPrefixFunnel+id, keyFunnelList).Err()
}

var _ Registry = (*Cache)(nil)

package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gym-fulfillment/internal/common/logger"

	"github.com/redis/go-redis/v9"
)

// Cached puts a redis read-through cache in front of Get for the listed
// collections. Cache failures are logged and fall through to the backend.
type Cached struct {
	next        DocumentStore
	rdb         redis.Cmdable
	ttl         time.Duration
	prefix      string
	collections map[string]bool
	logger      logger.Logger
}

func NewCached(next DocumentStore, rdb redis.Cmdable, ttl time.Duration, prefix string, log logger.Logger, collections ...string) *Cached {
	cols := make(map[string]bool, len(collections))
	for _, c := range collections {
		cols[c] = true
	}
	return &Cached{
		next:        next,
		rdb:         rdb,
		ttl:         ttl,
		prefix:      prefix,
		collections: cols,
		logger:      log.WithFields(map[string]interface{}{"component": "store-cache"}),
	}
}

func (c *Cached) Name() string { return c.next.Name() + "+redis" }

func (c *Cached) cacheKey(collection, key string) string {
	return c.prefix + collection + ":" + key
}

func (c *Cached) Get(ctx context.Context, collection, key string) (Document, error) {
	if !c.collections[collection] {
		return c.next.Get(ctx, collection, key)
	}

	cacheKey := c.cacheKey(collection, key)
	val, err := c.rdb.Get(ctx, cacheKey).Result()
	switch {
	case err == nil:
		var doc Document
		if jsonErr := json.Unmarshal([]byte(val), &doc); jsonErr == nil {
			return doc, nil
		}
		c.logger.Warn("discarding undecodable cache entry", map[string]interface{}{"key": cacheKey})
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("cache read failed", map[string]interface{}{"key": cacheKey, "error": err})
	}

	doc, err := c.next.Get(ctx, collection, key)
	if err != nil {
		return nil, err
	}

	if data, jsonErr := json.Marshal(doc); jsonErr == nil {
		if setErr := c.rdb.Set(ctx, cacheKey, data, c.ttl).Err(); setErr != nil {
			c.logger.Warn("cache write failed", map[string]interface{}{"key": cacheKey, "error": setErr})
		}
	}
	return doc, nil
}

func (c *Cached) Add(ctx context.Context, collection string, doc Document) (string, error) {
	return c.next.Add(ctx, collection, doc)
}

// Put writes through and drops the cached copy.
func (c *Cached) Put(ctx context.Context, collection, key string, doc Document) error {
	w, ok := c.next.(Writer)
	if !ok {
		return errors.New("backend does not support keyed writes")
	}
	if err := w.Put(ctx, collection, key, doc); err != nil {
		return err
	}
	if c.collections[collection] {
		if err := c.rdb.Del(ctx, c.cacheKey(collection, key)).Err(); err != nil {
			c.logger.Warn("cache invalidation failed", map[string]interface{}{"key": key, "error": err})
		}
	}
	return nil
}

func (c *Cached) Ping(ctx context.Context) error {
	return c.next.Ping(ctx)
}

package store

import (
	"context"
	"fmt"

	"gym-fulfillment/internal/common/config"
	"gym-fulfillment/internal/common/database"
	"gym-fulfillment/internal/common/logger"

	"github.com/redis/go-redis/v9"
)

// Backend is a DocumentStore that also accepts keyed writes.
type Backend interface {
	DocumentStore
	Writer
}

// Open connects the backend named by cfg.Store.Driver. The returned close
// function is never nil.
func Open(ctx context.Context, cfg *config.Config) (Backend, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		return NewMemory(), noop, nil

	case config.StoreDriverPostgres:
		pg, err := database.NewPostgres(ctx, cfg.Database.Postgres)
		if err != nil {
			return nil, noop, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		s := NewPostgres(pg.DB)
		if err := s.EnsureSchema(ctx); err != nil {
			_ = pg.Close()
			return nil, noop, err
		}
		return s, pg.Close, nil

	case config.StoreDriverElasticsearch:
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch, nil)
		if err != nil {
			return nil, noop, err
		}
		if err := es.Ping(ctx); err != nil {
			return nil, noop, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return NewElasticsearch(es.Client, cfg.Database.Elasticsearch.IndexPrefix), noop, nil

	default:
		return nil, noop, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
}

// Decorate wraps b with operation metrics, the redis cache (when rdb is
// non-nil and caching is enabled) and then the circuit breaker (when enabled).
func Decorate(b Backend, cfg *config.Config, rdb redis.Cmdable, log logger.Logger) Backend {
	var out Backend = NewMeasured(b)
	if cfg.Cache.Enabled && rdb != nil {
		out = NewCached(out, rdb,
			config.GetDuration(cfg.Cache.TTL*1000),
			cfg.Cache.KeyPrefix,
			log,
			cfg.Store.GymsCollection,
		)
	}
	if cfg.Breaker.Enabled {
		out = NewBreaker(out, BreakerSettings{
			MaxRequests:      cfg.Breaker.MaxRequests,
			Interval:         config.GetDuration(cfg.Breaker.Interval),
			Timeout:          config.GetDuration(cfg.Breaker.Timeout),
			MinRequests:      cfg.Breaker.MinRequests,
			FailureThreshold: cfg.Breaker.FailureThreshold,
		}, log)
	}
	return out
}

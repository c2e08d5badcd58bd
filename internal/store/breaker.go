package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gym-fulfillment/internal/common/logger"

	"github.com/sony/gobreaker"
)

// BreakerSettings tunes Breaker.
type BreakerSettings struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	MinRequests      uint32
	FailureThreshold float64
}

// Breaker trips after repeated ErrUnavailable results and then fails fast
// with ErrUnavailable until the backend recovers. NOT_FOUND and write
// rejections count as successes.
type Breaker struct {
	next DocumentStore
	cb   *gobreaker.CircuitBreaker
}

func NewBreaker(next DocumentStore, settings BreakerSettings, log logger.Logger) *Breaker {
	log = log.WithFields(map[string]interface{}{"component": "store-breaker", "backend": next.Name()})

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "document-store",
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < settings.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= settings.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn("circuit breaker state changed", map[string]interface{}{
				"from": from.String(),
				"to":   to.String(),
			})
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, ErrUnavailable)
		},
	})

	return &Breaker{next: next, cb: cb}
}

func (b *Breaker) Name() string { return b.next.Name() }

// State exposes the breaker state for readiness reporting.
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

func (b *Breaker) Get(ctx context.Context, collection, key string) (Document, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Get(ctx, collection, key)
	})
	if err != nil {
		return nil, b.translate(err)
	}
	return res.(Document), nil
}

func (b *Breaker) Add(ctx context.Context, collection string, doc Document) (string, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Add(ctx, collection, doc)
	})
	if err != nil {
		return "", b.translate(err)
	}
	return res.(string), nil
}

func (b *Breaker) Put(ctx context.Context, collection, key string, doc Document) error {
	w, ok := b.next.(Writer)
	if !ok {
		return errors.New("backend does not support keyed writes")
	}
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, w.Put(ctx, collection, key, doc)
	})
	return b.translate(err)
}

// Ping bypasses the breaker so readiness reflects the backend itself.
func (b *Breaker) Ping(ctx context.Context) error {
	return b.next.Ping(ctx)
}

func (b *Breaker) translate(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}

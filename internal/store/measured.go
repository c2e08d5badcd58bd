package store

import (
	"context"
	"errors"

	"gym-fulfillment/internal/common/metrics"
)

// Measured counts every operation on next in the store operations metric.
type Measured struct {
	next Backend
}

func NewMeasured(next Backend) *Measured {
	return &Measured{next: next}
}

func (m *Measured) Name() string { return m.next.Name() }

func (m *Measured) Get(ctx context.Context, collection, key string) (Document, error) {
	doc, err := m.next.Get(ctx, collection, key)
	m.observe("get", err)
	return doc, err
}

func (m *Measured) Add(ctx context.Context, collection string, doc Document) (string, error) {
	id, err := m.next.Add(ctx, collection, doc)
	m.observe("add", err)
	return id, err
}

func (m *Measured) Put(ctx context.Context, collection, key string, doc Document) error {
	err := m.next.Put(ctx, collection, key, doc)
	m.observe("put", err)
	return err
}

func (m *Measured) Ping(ctx context.Context) error {
	err := m.next.Ping(ctx)
	m.observe("ping", err)
	return err
}

func (m *Measured) observe(op string, err error) {
	metrics.StoreOperations.WithLabelValues(m.next.Name(), op, resultLabel(err)).Inc()
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	case errors.Is(err, ErrWriteFailed):
		return "write_failed"
	default:
		return "error"
	}
}

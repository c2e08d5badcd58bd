package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Memory is an in-process store. It backs local runs and tests.
type Memory struct {
	mu   sync.RWMutex
	data map[string]map[string]Document
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]map[string]Document)}
}

func (m *Memory) Name() string { return "memory" }

func (m *Memory) Get(ctx context.Context, collection, key string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.data[collection][key]
	if !ok {
		return nil, ErrNotFound
	}
	return doc.Clone(), nil
}

func (m *Memory) Add(ctx context.Context, collection string, doc Document) (string, error) {
	id := uuid.New().String()
	if err := m.Put(ctx, collection, id, doc); err != nil {
		return "", err
	}
	return id, nil
}

func (m *Memory) Put(ctx context.Context, collection, key string, doc Document) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data[collection] == nil {
		m.data[collection] = make(map[string]Document)
	}
	m.data[collection][key] = doc.Clone()
	return nil
}

func (m *Memory) Ping(ctx context.Context) error {
	return nil
}

// Count returns the number of documents in collection.
func (m *Memory) Count(collection string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data[collection])
}

// All returns copies of every document in collection keyed by id.
func (m *Memory) All(collection string) map[string]Document {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]Document, len(m.data[collection]))
	for k, v := range m.data[collection] {
		out[k] = v.Clone()
	}
	return out
}

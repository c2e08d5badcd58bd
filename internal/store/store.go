// Package store holds the document store abstraction used for gym records
// and quote leads, plus its backends and decorators.
package store

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrNotFound    = errors.New("NOT_FOUND")
	ErrUnavailable = errors.New("STORE_UNAVAILABLE")
	ErrWriteFailed = errors.New("PERSISTENCE_FAILURE")
)

// Document is one JSON object as stored.
type Document map[string]interface{}

// DocumentStore is the capability the fulfillment core needs: single
// document reads and single document appends.
type DocumentStore interface {
	// Get returns ErrNotFound when the key is absent.
	Get(ctx context.Context, collection, key string) (Document, error)
	// Add appends doc under a generated id and returns that id.
	Add(ctx context.Context, collection string, doc Document) (string, error)
	Ping(ctx context.Context) error
	Name() string
}

// Writer is implemented by backends that accept documents under a caller
// chosen key. Used for seeding.
type Writer interface {
	Put(ctx context.Context, collection, key string, doc Document) error
}

// Lookup walks a dotted path ("membership.anytime.promotion.active") through
// nested objects.
func (d Document) Lookup(path string) (interface{}, bool) {
	if d == nil {
		return nil, false
	}
	parts := strings.Split(path, ".")
	var current interface{} = map[string]interface{}(d)

	for _, part := range parts {
		switch m := current.(type) {
		case map[string]interface{}:
			val, exists := m[part]
			if !exists {
				return nil, false
			}
			current = val
		case Document:
			val, exists := m[part]
			if !exists {
				return nil, false
			}
			current = val
		default:
			return nil, false
		}
	}
	return current, current != nil
}

// Clone returns a deep copy. Values must be JSON compatible.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		m := make(map[string]interface{}, len(t))
		for k, vv := range t {
			m[k] = cloneValue(vv)
		}
		return m
	case Document:
		return map[string]interface{}(t.Clone())
	case []interface{}:
		s := make([]interface{}, len(t))
		for i, vv := range t {
			s[i] = cloneValue(vv)
		}
		return s
	default:
		return v
	}
}

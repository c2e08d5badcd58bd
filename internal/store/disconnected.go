package store

import (
	"context"
	"fmt"
)

// Disconnected stands in when no backend could be reached at startup. Every
// call fails with ErrUnavailable so handlers render their apology text.
type Disconnected struct {
	Reason error
}

func NewDisconnected(reason error) *Disconnected {
	return &Disconnected{Reason: reason}
}

func (d *Disconnected) Name() string { return "disconnected" }

func (d *Disconnected) err() error {
	if d.Reason == nil {
		return ErrUnavailable
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, d.Reason)
}

func (d *Disconnected) Get(ctx context.Context, collection, key string) (Document, error) {
	return nil, d.err()
}

func (d *Disconnected) Add(ctx context.Context, collection string, doc Document) (string, error) {
	return "", d.err()
}

func (d *Disconnected) Ping(ctx context.Context) error {
	return d.err()
}

func (d *Disconnected) Put(ctx context.Context, collection, key string, doc Document) error {
	return d.err()
}

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const documentsDDL = `CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	id TEXT NOT NULL,
	body JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (collection, id)
)`

const (
	selectDocumentSQL = `SELECT body FROM documents WHERE collection = $1 AND id = $2`
	insertDocumentSQL = `INSERT INTO documents (collection, id, body, created_at) VALUES ($1, $2, $3, $4)`
	upsertDocumentSQL = `INSERT INTO documents (collection, id, body, created_at) VALUES ($1, $2, $3, $4)
		ON CONFLICT (collection, id) DO UPDATE SET body = EXCLUDED.body`
)

// Postgres keeps every collection in one JSONB table.
type Postgres struct {
	db  *sql.DB
	now func() time.Time
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db, now: time.Now}
}

func (p *Postgres) Name() string { return "postgres" }

// EnsureSchema creates the documents table when missing.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, documentsDDL); err != nil {
		return fmt.Errorf("%w: create documents table: %v", ErrUnavailable, err)
	}
	return nil
}

func (p *Postgres) Get(ctx context.Context, collection, key string) (Document, error) {
	var body []byte
	err := p.db.QueryRowContext(ctx, selectDocumentSQL, collection, key).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var doc Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode %s/%s: %w", collection, key, err)
	}
	return doc, nil
}

func (p *Postgres) Add(ctx context.Context, collection string, doc Document) (string, error) {
	id := uuid.New().String()
	if err := p.write(ctx, insertDocumentSQL, collection, id, doc); err != nil {
		return "", err
	}
	return id, nil
}

func (p *Postgres) Put(ctx context.Context, collection, key string, doc Document) error {
	return p.write(ctx, upsertDocumentSQL, collection, key, doc)
}

func (p *Postgres) write(ctx context.Context, query, collection, id string, doc Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: encode document: %v", ErrWriteFailed, err)
	}

	if _, err := p.db.ExecContext(ctx, query, collection, id, body, p.now().UTC()); err != nil {
		return classifyWriteError(err)
	}
	return nil
}

// classifyWriteError separates a server rejecting the row from the server not
// being reachable at all.
func classifyWriteError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return fmt.Errorf("%w: %s (%s)", ErrWriteFailed, pqErr.Message, pqErr.Code)
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

func (p *Postgres) Ping(ctx context.Context) error {
	if err := p.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
)

// Elasticsearch stores each collection in its own index, documents keyed by id.
type Elasticsearch struct {
	client      *elasticsearch.Client
	indexPrefix string
	refresh     string
}

func NewElasticsearch(client *elasticsearch.Client, indexPrefix string) *Elasticsearch {
	return &Elasticsearch{
		client:      client,
		indexPrefix: indexPrefix,
		refresh:     "wait_for",
	}
}

func (e *Elasticsearch) Name() string { return "elasticsearch" }

func (e *Elasticsearch) index(collection string) string {
	return e.indexPrefix + collection
}

type getResponse struct {
	Found  bool     `json:"found"`
	Source Document `json:"_source"`
}

func (e *Elasticsearch) Get(ctx context.Context, collection, key string) (Document, error) {
	res, err := esapi.GetRequest{
		Index:      e.index(collection),
		DocumentID: key,
	}.Do(ctx, e.client)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if res.IsError() {
		return nil, fmt.Errorf("%w: get %s/%s: %s", ErrUnavailable, collection, key, res.Status())
	}

	var body getResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode %s/%s: %w", collection, key, err)
	}
	if !body.Found {
		return nil, ErrNotFound
	}
	return body.Source, nil
}

func (e *Elasticsearch) Add(ctx context.Context, collection string, doc Document) (string, error) {
	id := uuid.New().String()
	if err := e.Put(ctx, collection, id, doc); err != nil {
		return "", err
	}
	return id, nil
}

func (e *Elasticsearch) Put(ctx context.Context, collection, key string, doc Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: encode document: %v", ErrWriteFailed, err)
	}

	res, err := esapi.IndexRequest{
		Index:      e.index(collection),
		DocumentID: key,
		Body:       bytes.NewReader(body),
		Refresh:    e.refresh,
	}.Do(ctx, e.client)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: index %s: %s", ErrUnavailable, collection, res.Status())
	}
	if res.IsError() {
		return fmt.Errorf("%w: index %s: %s", ErrWriteFailed, collection, res.Status())
	}
	return nil
}

func (e *Elasticsearch) Ping(ctx context.Context) error {
	res, err := e.client.Ping(e.client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("%w: ping: %s", ErrUnavailable, res.Status())
	}
	return nil
}

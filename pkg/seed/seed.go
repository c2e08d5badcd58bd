// Package seed loads YAML seed files of the form
//
//	<collection>:
//	  <key>: <document>
//
// and writes them into a document store.
package seed

import (
	"context"
	"fmt"
	"os"
	"sort"

	"gym-fulfillment/internal/common/validation"
	"gym-fulfillment/internal/store"

	"gopkg.in/yaml.v3"
)

// File maps collection -> key -> document.
type File map[string]map[string]store.Document

// LoadFile reads and parses a seed file.
func LoadFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes seed YAML.
func Parse(data []byte) (File, error) {
	var raw map[string]map[string]map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}

	f := make(File, len(raw))
	for collection, docs := range raw {
		f[collection] = make(map[string]store.Document, len(docs))
		for key, doc := range docs {
			f[collection][key] = store.Document(normalize(doc).(map[string]interface{}))
		}
	}
	return f, nil
}

// normalize turns YAML integers into float64 so seeded documents look the
// same as documents decoded from JSON.
func normalize(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, vv := range t {
			t[k] = normalize(vv)
		}
		return t
	case []interface{}:
		for i, vv := range t {
			t[i] = normalize(vv)
		}
		return t
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case uint64:
		return float64(t)
	default:
		return v
	}
}

// Apply writes every document with Put and returns the number written.
// Collections and keys are applied in sorted order.
func Apply(ctx context.Context, w store.Writer, f File) (int, error) {
	written := 0
	for _, collection := range sortedKeys(f) {
		docs := f[collection]
		keys := make([]string, 0, len(docs))
		for k := range docs {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, key := range keys {
			if err := w.Put(ctx, collection, key, docs[key]); err != nil {
				return written, fmt.Errorf("seed %s/%s: %w", collection, key, err)
			}
			written++
		}
	}
	return written, nil
}

// Validate checks every document in gymsCollection against the gym schema and
// returns one message per problem.
func Validate(f File, gymsCollection string) []string {
	v := validation.MustValidator(validation.GymSchema)

	var problems []string
	docs := f[gymsCollection]
	keys := make([]string, 0, len(docs))
	for k := range docs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		res := v.ValidateGo(map[string]interface{}(docs[key]))
		for _, msg := range res.GetErrorMessages() {
			problems = append(problems, fmt.Sprintf("%s/%s: %s", gymsCollection, key, msg))
		}
	}
	return problems
}

func sortedKeys(f File) []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

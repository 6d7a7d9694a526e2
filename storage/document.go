// Package storage keeps the latest translated document per knowledge-graph
// instance in NATS KV.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// DefaultBucket is the KV bucket holding translated documents.
const DefaultBucket = "SEMINDEX_DOCUMENTS"

// DocumentID identifies a stored document by type and instance id.
type DocumentID struct {
	Type string
	ID   string
}

// String returns the KV key of the document.
func (d DocumentID) String() string {
	return fmt.Sprintf("%s.%s", d.Type, d.ID)
}

// ParseDocumentID parses a KV key into its components.
func ParseDocumentID(s string) (DocumentID, error) {
	parts := strings.SplitN(s, ".", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return DocumentID{}, fmt.Errorf("invalid document ID format: %s", s)
	}
	return DocumentID{Type: parts[0], ID: parts[1]}, nil
}

// Record is what the store keeps per document.
type Record struct {
	Type      string          `json:"type"`
	ID        string          `json:"id"`
	Document  json.RawMessage `json:"document"`
	Errors    []string        `json:"errors,omitempty"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Store provides document storage backed by NATS KV.
type Store struct {
	kv jetstream.KeyValue
}

// NewStore creates a Store with the given JetStream context. It creates the
// bucket if it doesn't exist.
func NewStore(ctx context.Context, js jetstream.JetStream, bucket string) (*Store, error) {
	if bucket == "" {
		bucket = DefaultBucket
	}
	kv, err := getOrCreateBucket(ctx, js, bucket)
	if err != nil {
		return nil, fmt.Errorf("create documents bucket: %w", err)
	}
	return NewStoreWithKV(kv), nil
}

// NewStoreWithKV wraps an existing bucket.
func NewStoreWithKV(kv jetstream.KeyValue) *Store {
	return &Store{kv: kv}
}

func getOrCreateBucket(ctx context.Context, js jetstream.JetStream, name string) (jetstream.KeyValue, error) {
	kv, err := js.KeyValue(ctx, name)
	if err == nil {
		return kv, nil
	}
	// Bucket doesn't exist, create it
	return js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      name,
		Description: "Semindex translated documents",
		History:     5, // Keep last 5 revisions
	})
}

// Put stores doc under id, replacing any previous revision.
func (s *Store) Put(ctx context.Context, id DocumentID, doc any, errs []string) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	data, err := json.Marshal(Record{
		Type:      id.Type,
		ID:        id.ID,
		Document:  body,
		Errors:    errs,
		UpdatedAt: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	if _, err := s.kv.Put(ctx, id.String(), data); err != nil {
		return fmt.Errorf("store document %s: %w", id, err)
	}
	return nil
}

// Get retrieves the record stored under id.
func (s *Store) Get(ctx context.Context, id DocumentID) (*Record, error) {
	entry, err := s.kv.Get(ctx, id.String())
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get document %s: %w", id, err)
	}

	var r Record
	if err := json.Unmarshal(entry.Value(), &r); err != nil {
		return nil, fmt.Errorf("unmarshal document %s: %w", id, err)
	}
	return &r, nil
}

// Delete removes the document stored under id.
func (s *Store) Delete(ctx context.Context, id DocumentID) error {
	if err := s.kv.Delete(ctx, id.String()); err != nil {
		if isNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	return nil
}

// List returns the ids of stored documents of docType, or of all types when
// docType is empty, sorted.
func (s *Store) List(ctx context.Context, docType string) ([]DocumentID, error) {
	keys, err := s.kv.Keys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("list document keys: %w", err)
	}

	ids := make([]DocumentID, 0, len(keys))
	for _, key := range keys {
		id, err := ParseDocumentID(key)
		if err != nil {
			continue // Skip keys not written by this store
		}
		if docType != "" && id.Type != docType {
			continue
		}
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b DocumentID) int { return strings.Compare(a.String(), b.String()) })
	return ids, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, jetstream.ErrKeyNotFound) || errors.Is(err, jetstream.ErrKeyDeleted) ||
		strings.Contains(err.Error(), "key not found")
}

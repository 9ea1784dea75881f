package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// MemoryStore keeps documents in process memory. Used for local runs
// (STORE_DRIVER=memory) and tests.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]map[string][]byte

	// failures injected by tests, keyed by operation name ("get", "set", "query", "list")
	fail map[string]error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs: make(map[string]map[string][]byte),
		fail: make(map[string]error),
	}
}

// FailWith makes every subsequent call of op return err. A nil err clears it.
func (s *MemoryStore) FailWith(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.fail, op)
		return
	}
	s.fail[op] = err
}

func (s *MemoryStore) Get(ctx context.Context, collection, key string) (map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.fail["get"]; err != nil {
		return nil, err
	}

	raw, ok := s.docs[collection][key]
	if !ok {
		return nil, ErrDocumentNotFound
	}
	return decodeDoc(raw)
}

func (s *MemoryStore) Set(ctx context.Context, collection, key string, data map[string]interface{}) error {
	// Documents are stored serialized so callers never share maps with the store.
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fail["set"]; err != nil {
		return err
	}

	if s.docs[collection] == nil {
		s.docs[collection] = make(map[string][]byte)
	}
	s.docs[collection][key] = raw
	return nil
}

func (s *MemoryStore) QueryEquals(ctx context.Context, collection, field, value string) ([]Document, error) {
	s.mu.RLock()
	if err := s.fail["query"]; err != nil {
		s.mu.RUnlock()
		return nil, err
	}
	s.mu.RUnlock()

	all, err := s.List(ctx, collection)
	if err != nil {
		return nil, err
	}

	var out []Document
	for _, doc := range all {
		if v, ok := doc.Data[field].(string); ok && v == value {
			out = append(out, doc)
		}
	}
	return out, nil
}

// List returns documents ordered by key.
func (s *MemoryStore) List(ctx context.Context, collection string) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.fail["list"]; err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(s.docs[collection]))
	for k := range s.docs[collection] {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Document, 0, len(keys))
	for _, k := range keys {
		data, err := decodeDoc(s.docs[collection][k])
		if err != nil {
			return nil, err
		}
		out = append(out, Document{Key: k, Data: data})
	}
	return out, nil
}

func decodeDoc(raw []byte) (map[string]interface{}, error) {
	var data map[string]interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	return data, nil
}

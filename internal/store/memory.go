package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// MemoryStore is the in-memory RecordStore driver used by tests and local
// development. Documents are held as JSON so every read hands out an
// independent copy, and a single mutex makes transactions trivially
// serializable.
type MemoryStore struct {
	mu    sync.Mutex
	colls map[string]map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{colls: make(map[string]map[string][]byte)}
}

func (m *MemoryStore) Get(ctx context.Context, collection, key string, dest any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getLocked(collection, key, dest)
}

func (m *MemoryStore) getLocked(collection, key string, dest any) error {
	raw, ok := m.colls[collection][key]
	if !ok {
		return ErrNotFound
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode %s/%s: %w", collection, key, err)
	}
	return nil
}

func (m *MemoryStore) List(ctx context.Context, collection string) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := make([]string, 0, len(m.colls[collection]))
	for k := range m.colls[collection] {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	records := make([]Record, 0, len(keys))
	for _, k := range keys {
		raw := m.colls[collection][k]
		records = append(records, Record{
			Key: k,
			decode: func(dest any) error {
				return json.Unmarshal(raw, dest)
			},
		})
	}
	return records, nil
}

func (m *MemoryStore) Set(ctx context.Context, collection, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, key, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setLocked(collection, key, raw)
	return nil
}

func (m *MemoryStore) setLocked(collection, key string, raw []byte) {
	coll, ok := m.colls[collection]
	if !ok {
		coll = make(map[string][]byte)
		m.colls[collection] = coll
	}
	coll[key] = raw
}

func (m *MemoryStore) Update(ctx context.Context, collection, key string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc := map[string]any{}
	if raw, ok := m.colls[collection][key]; ok {
		if err := json.Unmarshal(raw, &doc); err != nil {
			return fmt.Errorf("decode %s/%s: %w", collection, key, err)
		}
	}
	for k, v := range fields {
		doc[k] = v
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, key, err)
	}
	m.setLocked(collection, key, raw)
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, collection, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.colls[collection], key)
	return nil
}

// Commit marshals every write before touching the store, so a bad value
// leaves nothing applied.
func (m *MemoryStore) Commit(ctx context.Context, b *Batch) error {
	type staged struct {
		collection, key string
		raw             []byte // nil means delete
	}
	var writes []staged
	for _, w := range b.Writes() {
		if w.Value == nil {
			writes = append(writes, staged{w.Collection, w.Key, nil})
			continue
		}
		raw, err := json.Marshal(w.Value)
		if err != nil {
			return fmt.Errorf("encode %s/%s: %w", w.Collection, w.Key, err)
		}
		writes = append(writes, staged{w.Collection, w.Key, raw})
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range writes {
		if w.raw == nil {
			delete(m.colls[w.collection], w.key)
		} else {
			m.setLocked(w.collection, w.key, w.raw)
		}
	}
	return nil
}

type memoryTx struct {
	store  *MemoryStore
	staged []Write
}

func (t *memoryTx) Get(collection, key string, dest any) error {
	return t.store.getLocked(collection, key, dest)
}

func (t *memoryTx) Set(collection, key string, value any) error {
	t.staged = append(t.staged, Write{Collection: collection, Key: key, Value: value})
	return nil
}

// RunTransaction holds the store lock for the whole function, which makes
// every transaction serializable with respect to all other access.
func (m *MemoryStore) RunTransaction(ctx context.Context, fn func(tx Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &memoryTx{store: m}
	if err := fn(tx); err != nil {
		return err
	}
	for _, w := range tx.staged {
		raw, err := json.Marshal(w.Value)
		if err != nil {
			return fmt.Errorf("encode %s/%s: %w", w.Collection, w.Key, err)
		}
		m.setLocked(w.Collection, w.Key, raw)
	}
	return nil
}

func (m *MemoryStore) Close() error { return nil }

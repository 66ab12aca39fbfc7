package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// CachedStore is a short-TTL read cache in front of another RecordStore.
// Every write invalidates the collection/keys it touched after the underlying
// write succeeds and before returning, so a caller never reads its own write
// stale. The cache is local to one process; instances do not coordinate
// invalidation with each other.
type CachedStore struct {
	inner RecordStore
	ttl   time.Duration
	now   func() time.Time

	mu    sync.Mutex
	docs  map[string]cachedDoc
	lists map[string]cachedList
}

type cachedDoc struct {
	raw     []byte
	expires time.Time
}

type cachedList struct {
	records []Record
	expires time.Time
}

func NewCachedStore(inner RecordStore, ttl time.Duration) *CachedStore {
	return &CachedStore{
		inner: inner,
		ttl:   ttl,
		now:   time.Now,
		docs:  make(map[string]cachedDoc),
		lists: make(map[string]cachedList),
	}
}

func docKey(collection, key string) string { return collection + "/" + key }

func (c *CachedStore) Get(ctx context.Context, collection, key string, dest any) error {
	c.mu.Lock()
	if d, ok := c.docs[docKey(collection, key)]; ok && c.now().Before(d.expires) {
		c.mu.Unlock()
		return json.Unmarshal(d.raw, dest)
	}
	c.mu.Unlock()

	if err := c.inner.Get(ctx, collection, key, dest); err != nil {
		return err
	}
	if raw, err := json.Marshal(dest); err == nil {
		c.mu.Lock()
		c.docs[docKey(collection, key)] = cachedDoc{raw: raw, expires: c.now().Add(c.ttl)}
		c.mu.Unlock()
	}
	return nil
}

func (c *CachedStore) List(ctx context.Context, collection string) ([]Record, error) {
	c.mu.Lock()
	if l, ok := c.lists[collection]; ok && c.now().Before(l.expires) {
		records := make([]Record, len(l.records))
		copy(records, l.records)
		c.mu.Unlock()
		return records, nil
	}
	c.mu.Unlock()

	records, err := c.inner.List(ctx, collection)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.lists[collection] = cachedList{records: records, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return records, nil
}

// invalidate drops the cached document and its collection's list snapshot.
func (c *CachedStore) invalidate(collection, key string) {
	c.mu.Lock()
	delete(c.docs, docKey(collection, key))
	delete(c.lists, collection)
	c.mu.Unlock()
}

// Flush clears the whole cache.
func (c *CachedStore) Flush() {
	c.mu.Lock()
	c.docs = make(map[string]cachedDoc)
	c.lists = make(map[string]cachedList)
	c.mu.Unlock()
}

func (c *CachedStore) Set(ctx context.Context, collection, key string, value any) error {
	if err := c.inner.Set(ctx, collection, key, value); err != nil {
		return err
	}
	c.invalidate(collection, key)
	return nil
}

func (c *CachedStore) Update(ctx context.Context, collection, key string, fields map[string]any) error {
	if err := c.inner.Update(ctx, collection, key, fields); err != nil {
		return err
	}
	c.invalidate(collection, key)
	return nil
}

func (c *CachedStore) Delete(ctx context.Context, collection, key string) error {
	if err := c.inner.Delete(ctx, collection, key); err != nil {
		return err
	}
	c.invalidate(collection, key)
	return nil
}

func (c *CachedStore) Commit(ctx context.Context, b *Batch) error {
	if err := c.inner.Commit(ctx, b); err != nil {
		return err
	}
	for _, w := range b.Writes() {
		c.invalidate(w.Collection, w.Key)
	}
	return nil
}

// trackingTx records which documents a transaction wrote so the cache can
// invalidate exactly those keys after commit.
type trackingTx struct {
	inner   Tx
	touched []Write
}

func (t *trackingTx) Get(collection, key string, dest any) error {
	return t.inner.Get(collection, key, dest)
}

func (t *trackingTx) Set(collection, key string, value any) error {
	t.touched = append(t.touched, Write{Collection: collection, Key: key})
	return t.inner.Set(collection, key, value)
}

func (c *CachedStore) RunTransaction(ctx context.Context, fn func(tx Tx) error) error {
	var touched []Write
	err := c.inner.RunTransaction(ctx, func(tx Tx) error {
		t := &trackingTx{inner: tx}
		if err := fn(t); err != nil {
			return err
		}
		touched = t.touched
		return nil
	})
	if err != nil {
		return err
	}
	for _, w := range touched {
		c.invalidate(w.Collection, w.Key)
	}
	return nil
}

func (c *CachedStore) Close() error { return c.inner.Close() }

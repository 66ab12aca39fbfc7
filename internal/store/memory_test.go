package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testDoc struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

func TestMemoryStoreGetSet(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	err := m.Get(ctx, "rooms", "101", &testDoc{})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, m.Set(ctx, "rooms", "101", testDoc{Name: "first", Count: 1}))

	var got testDoc
	require.NoError(t, m.Get(ctx, "rooms", "101", &got))
	assert.Equal(t, "first", got.Name)
	assert.EqualValues(t, 1, got.Count)

	// Reads hand out copies; mutating one result must not leak into the store.
	got.Name = "mutated"
	var again testDoc
	require.NoError(t, m.Get(ctx, "rooms", "101", &again))
	assert.Equal(t, "first", again.Name)
}

func TestMemoryStoreUpdateMerges(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	require.NoError(t, m.Set(ctx, "settings", "app_settings", map[string]any{"a": "one", "b": "two"}))
	require.NoError(t, m.Update(ctx, "settings", "app_settings", map[string]any{"b": "changed"}))

	var got map[string]any
	require.NoError(t, m.Get(ctx, "settings", "app_settings", &got))
	assert.Equal(t, "one", got["a"])
	assert.Equal(t, "changed", got["b"])
}

func TestMemoryStoreUpdateCreatesMissingDoc(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	require.NoError(t, m.Update(ctx, "settings", "app_settings", map[string]any{"last_rent_check": "2026-03-10 14:30:00"}))

	var got map[string]any
	require.NoError(t, m.Get(ctx, "settings", "app_settings", &got))
	assert.Equal(t, "2026-03-10 14:30:00", got["last_rent_check"])
}

func TestMemoryStoreListSortedByKey(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	for _, key := range []string{"205", "101", "102"} {
		require.NoError(t, m.Set(ctx, "rooms", key, testDoc{Name: key}))
	}

	records, err := m.List(ctx, "rooms")
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "101", records[0].Key)
	assert.Equal(t, "102", records[1].Key)
	assert.Equal(t, "205", records[2].Key)

	var doc testDoc
	require.NoError(t, records[2].Decode(&doc))
	assert.Equal(t, "205", doc.Name)
}

func TestMemoryStoreCommitBatch(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	require.NoError(t, m.Set(ctx, "rooms", "101", testDoc{Name: "old"}))

	b := &Batch{}
	b.Set("rooms", "101", testDoc{Name: "new"})
	b.Set("totals", "current_totals", testDoc{Count: 600})
	b.Delete("counters", "2026-01-01")
	require.NoError(t, m.Commit(ctx, b))

	var room testDoc
	require.NoError(t, m.Get(ctx, "rooms", "101", &room))
	assert.Equal(t, "new", room.Name)

	var totals testDoc
	require.NoError(t, m.Get(ctx, "totals", "current_totals", &totals))
	assert.EqualValues(t, 600, totals.Count)
}

func TestMemoryStoreCommitAtomicOnBadValue(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	require.NoError(t, m.Set(ctx, "rooms", "101", testDoc{Name: "before"}))

	// A channel cannot be marshaled; the whole batch must be rejected with
	// the earlier write left unapplied.
	b := &Batch{}
	b.Set("rooms", "101", testDoc{Name: "after"})
	b.Set("rooms", "102", make(chan int))
	require.Error(t, m.Commit(ctx, b))

	var room testDoc
	require.NoError(t, m.Get(ctx, "rooms", "101", &room))
	assert.Equal(t, "before", room.Name)
	assert.ErrorIs(t, m.Get(ctx, "rooms", "102", &testDoc{}), ErrNotFound)
}

func TestMemoryStoreTransactionIncrement(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	const workers = 50
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := m.RunTransaction(ctx, func(tx Tx) error {
				var doc testDoc
				if err := tx.Get("counters", "2026-03-10", &doc); err != nil && err != ErrNotFound {
					return err
				}
				doc.Count++
				return tx.Set("counters", "2026-03-10", doc)
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	var final testDoc
	require.NoError(t, m.Get(ctx, "counters", "2026-03-10", &final))
	assert.EqualValues(t, workers, final.Count)
}

func TestMemoryStoreTransactionErrorDiscardsWrites(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	err := m.RunTransaction(ctx, func(tx Tx) error {
		if err := tx.Set("rooms", "101", testDoc{Name: "staged"}); err != nil {
			return err
		}
		return assert.AnError
	})
	require.Error(t, err)
	assert.ErrorIs(t, m.Get(ctx, "rooms", "101", &testDoc{}), ErrNotFound)
}

// Package store defines the document store the lodge services run on: keyed
// get/set/update per collection, atomic multi-key batch commit, and a
// serializable read-modify-write transaction primitive. Two drivers implement
// it: Firestore for production and an in-memory store for tests and local
// development.
package store

import (
	"context"
	"errors"
)

// Collection names.
const (
	CollRooms       = "rooms"
	CollLogs        = "logs"
	CollTotals      = "totals"
	CollBookings    = "bookings"
	CollSettlements = "settlements"
	CollCounters    = "counters"
	CollSettings    = "settings"
)

// Well-known document keys.
const (
	KeyCurrentTotals = "current_totals"
	KeyAppSettings   = "app_settings"
)

// ErrNotFound is returned by Get (and transaction Get) when no document
// exists under the requested key.
var ErrNotFound = errors.New("record not found")

// Record is one listed document. Decode unmarshals its snapshot into dest;
// the snapshot is taken at List time and does not track later writes.
type Record struct {
	Key    string
	decode func(dest any) error
}

func (r Record) Decode(dest any) error { return r.decode(dest) }

// Write is one element of a batch: a full-document set, or a delete when
// Value is nil.
type Write struct {
	Collection string
	Key        string
	Value      any
}

// Batch accumulates writes that must apply atomically, all or none.
type Batch struct {
	writes []Write
}

func (b *Batch) Set(collection, key string, value any) *Batch {
	b.writes = append(b.writes, Write{Collection: collection, Key: key, Value: value})
	return b
}

func (b *Batch) Delete(collection, key string) *Batch {
	b.writes = append(b.writes, Write{Collection: collection, Key: key})
	return b
}

func (b *Batch) Writes() []Write { return b.writes }

func (b *Batch) Empty() bool { return len(b.writes) == 0 }

// Tx is the handle passed to a transaction function. All Gets must happen
// before the first Set; the store retries the function on contention, so it
// must be safe to run more than once.
type Tx interface {
	Get(collection, key string, dest any) error
	Set(collection, key string, value any) error
}

// RecordStore is the persistence seam for every lodge aggregate.
type RecordStore interface {
	// Get reads the document under collection/key into dest, or ErrNotFound.
	Get(ctx context.Context, collection, key string, dest any) error

	// List returns a snapshot of every document in a collection, ordered by key.
	List(ctx context.Context, collection string) ([]Record, error)

	// Set writes a full document.
	Set(ctx context.Context, collection, key string, value any) error

	// Update merges the given fields into an existing document, creating it
	// if absent.
	Update(ctx context.Context, collection, key string, fields map[string]any) error

	// Delete removes a document. Deleting an absent document is not an error.
	Delete(ctx context.Context, collection, key string) error

	// Commit applies every write in the batch atomically.
	Commit(ctx context.Context, b *Batch) error

	// RunTransaction executes fn under the store's serializable transaction
	// primitive. Concurrent transactions over the same documents cannot both
	// commit stale reads.
	RunTransaction(ctx context.Context, fn func(tx Tx) error) error

	Close() error
}

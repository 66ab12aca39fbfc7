package store

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"lodge-backend/internal/logger"
)

// FirestoreStore is the production RecordStore driver. Batch commits and
// counter increments both go through Firestore's transaction primitive, which
// gives the serializable read-modify-write semantics the serial allocator
// depends on.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore connects through the Firebase Admin SDK. credentialsFile
// may be empty, in which case application default credentials are used.
func NewFirestoreStore(ctx context.Context, projectID, credentialsFile string) (*FirestoreStore, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("initialize firestore client: %w", err)
	}
	return &FirestoreStore{client: client}, nil
}

func (s *FirestoreStore) Get(ctx context.Context, collection, key string, dest any) error {
	logger.StoreCall("get", collection, key)
	snap, err := s.client.Collection(collection).Doc(key).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get %s/%s: %w", collection, key, err)
	}
	if !snap.Exists() {
		return ErrNotFound
	}
	return snap.DataTo(dest)
}

func (s *FirestoreStore) List(ctx context.Context, collection string) ([]Record, error) {
	iter := s.client.Collection(collection).Documents(ctx)
	defer iter.Stop()

	var records []Record
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", collection, err)
		}
		doc := snap
		records = append(records, Record{
			Key:    doc.Ref.ID,
			decode: doc.DataTo,
		})
	}
	return records, nil
}

func (s *FirestoreStore) Set(ctx context.Context, collection, key string, value any) error {
	if _, err := s.client.Collection(collection).Doc(key).Set(ctx, value); err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, key, err)
	}
	return nil
}

func (s *FirestoreStore) Update(ctx context.Context, collection, key string, fields map[string]any) error {
	if _, err := s.client.Collection(collection).Doc(key).Set(ctx, fields, firestore.MergeAll); err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, key, err)
	}
	return nil
}

func (s *FirestoreStore) Delete(ctx context.Context, collection, key string) error {
	if _, err := s.client.Collection(collection).Doc(key).Delete(ctx); err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, key, err)
	}
	return nil
}

// Commit applies the batch inside a write-only transaction, which Firestore
// commits atomically.
func (s *FirestoreStore) Commit(ctx context.Context, b *Batch) error {
	if b.Empty() {
		return nil
	}
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		for _, w := range b.Writes() {
			ref := s.client.Collection(w.Collection).Doc(w.Key)
			if w.Value == nil {
				if err := tx.Delete(ref); err != nil {
					return err
				}
				continue
			}
			if err := tx.Set(ref, w.Value); err != nil {
				return err
			}
		}
		return nil
	})
	logger.StoreResult("commit", err, "writes", len(b.Writes()))
	return err
}

type firestoreTx struct {
	client *firestore.Client
	tx     *firestore.Transaction
}

func (t *firestoreTx) Get(collection, key string, dest any) error {
	snap, err := t.tx.Get(t.client.Collection(collection).Doc(key))
	if status.Code(err) == codes.NotFound {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if !snap.Exists() {
		return ErrNotFound
	}
	return snap.DataTo(dest)
}

func (t *firestoreTx) Set(collection, key string, value any) error {
	return t.tx.Set(t.client.Collection(collection).Doc(key), value)
}

func (s *FirestoreStore) RunTransaction(ctx context.Context, fn func(tx Tx) error) error {
	return s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		return fn(&firestoreTx{client: s.client, tx: tx})
	})
}

func (s *FirestoreStore) Close() error { return s.client.Close() }

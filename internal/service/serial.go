package service

import (
	"context"
	"errors"
	"fmt"

	"lodge-backend/internal/domain"
	"lodge-backend/internal/store"
)

type serialService struct {
	st store.RecordStore
}

func NewSerialService(st store.RecordStore) SerialService {
	return &serialService{st: st}
}

// Allocate increments the per-day counter under the store's serializable
// transaction, so concurrent callers across service instances still receive
// distinct, strictly increasing numbers. A failure in the caller after this
// returns leaves a gap, never a duplicate.
func (s *serialService) Allocate(ctx context.Context, date string) (int64, error) {
	var allocated int64
	err := s.st.RunTransaction(ctx, func(tx store.Tx) error {
		var counter domain.DailyCounter
		if err := tx.Get(store.CollCounters, date, &counter); err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		counter.Count++
		allocated = counter.Count
		return tx.Set(store.CollCounters, date, counter)
	})
	if err != nil {
		return 0, fmt.Errorf("allocate serial for %s: %w", date, err)
	}
	return allocated, nil
}

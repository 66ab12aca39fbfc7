package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"lodge-backend/internal/domain"
	"lodge-backend/internal/store"
)

// fixedClock pins time so dates and timestamps in assertions are stable.
type fixedClock struct {
	t time.Time
}

func (c *fixedClock) Now() time.Time { return c.t }

func (c *fixedClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func testClock() *fixedClock {
	return &fixedClock{t: time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)}
}

func addVacantRoom(t *testing.T, st store.RecordStore, room string) {
	t.Helper()
	require.NoError(t, st.Set(context.Background(), store.CollRooms, room, domain.VacantRoom()))
}

func getRoomDoc(t *testing.T, st store.RecordStore, room string) domain.Room {
	t.Helper()
	var r domain.Room
	require.NoError(t, st.Get(context.Background(), store.CollRooms, room, &r))
	return r
}

func getTotalsDoc(t *testing.T, st store.RecordStore) domain.Totals {
	t.Helper()
	var totals domain.Totals
	require.NoError(t, st.Get(context.Background(), store.CollTotals, store.KeyCurrentTotals, &totals))
	return totals
}

func getLogEntries(t *testing.T, st store.RecordStore, channel string) []domain.LedgerEntry {
	t.Helper()
	var l domain.ChannelLog
	err := st.Get(context.Background(), store.CollLogs, channel, &l)
	if err == store.ErrNotFound {
		return nil
	}
	require.NoError(t, err)
	return l.Entries
}

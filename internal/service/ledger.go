package service

import (
	"context"
	"errors"
	"time"

	"lodge-backend/internal/domain"
	"lodge-backend/internal/store"
)

// loadTotals reads the running-totals record, returning a zeroed record when
// none exists yet.
func loadTotals(ctx context.Context, st store.RecordStore) (domain.Totals, error) {
	var t domain.Totals
	err := st.Get(ctx, store.CollTotals, store.KeyCurrentTotals, &t)
	if errors.Is(err, store.ErrNotFound) {
		return domain.NewTotals(), nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// loadLog reads one channel log, returning an empty log when the channel has
// no entries yet.
func loadLog(ctx context.Context, st store.RecordStore, channel string) (domain.ChannelLog, error) {
	var l domain.ChannelLog
	err := st.Get(ctx, store.CollLogs, channel, &l)
	if errors.Is(err, store.ErrNotFound) {
		return domain.ChannelLog{Entries: []domain.LedgerEntry{}}, nil
	}
	if err != nil {
		return domain.ChannelLog{}, err
	}
	return l, nil
}

// logAppender accumulates per-channel appends so one operation stages each
// log document at most once, then adds every touched document to the batch.
type logAppender struct {
	st   store.RecordStore
	logs map[string]*domain.ChannelLog
}

func newLogAppender(st store.RecordStore) *logAppender {
	return &logAppender{st: st, logs: make(map[string]*domain.ChannelLog)}
}

func (a *logAppender) Append(ctx context.Context, channel string, entry domain.LedgerEntry) error {
	l, ok := a.logs[channel]
	if !ok {
		loaded, err := loadLog(ctx, a.st, channel)
		if err != nil {
			return err
		}
		l = &loaded
		a.logs[channel] = l
	}
	l.Entries = append(l.Entries, entry)
	return nil
}

func (a *logAppender) AddToBatch(b *store.Batch) {
	for channel, l := range a.logs {
		b.Set(store.CollLogs, channel, *l)
	}
}

// stamp returns the calendar date and minute time for an entry.
func stamp(clock Clock) (date, tod string) {
	now := clock.Now()
	return now.Format(dateLayout), now.Format(timeLayout)
}

// entryInStay reports whether a log entry falls inside the stay that began at
// checkinTime (minute precision). Entries without a time of day are compared
// by date alone.
func entryInStay(e domain.LedgerEntry, checkinTime string) bool {
	checkin, err := time.Parse(minuteLayout, checkinTime)
	if err != nil {
		if checkin, err = time.Parse(dateLayout, checkinTime); err != nil {
			return false
		}
	}
	if e.Time == "" {
		d, err := time.Parse(dateLayout, e.Date)
		if err != nil {
			return false
		}
		checkinDay, _ := time.Parse(dateLayout, checkin.Format(dateLayout))
		return !d.Before(checkinDay)
	}
	ts, err := time.Parse(minuteLayout, e.Date+" "+e.Time)
	if err != nil {
		return false
	}
	return !ts.Before(checkin)
}

package jobs

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"lodge-backend/internal/domain"
	"lodge-backend/internal/logger"
	"lodge-backend/internal/store"
)

const checkinTimeLayout = "2006-01-02 15:04"

// RentDueSweep finds occupied rooms whose next daily rent renewal is due and
// sends a summary notification. A room's rent cycle starts at check-in and
// each renewal pushes the next due time out by 24 hours.
func (jr *JobRunner) RentDueSweep() {
	jr.runWithRecovery("RentDueSweep", func() {
		ctx := context.Background()
		now := jr.clock.Now()

		records, err := jr.st.List(ctx, store.CollRooms)
		if err != nil {
			logger.Error("Failed to list rooms for rent sweep", "error", err)
			return
		}

		var due []string
		for _, rec := range records {
			var room domain.Room
			if err := rec.Decode(&room); err != nil {
				logger.Error("Failed to decode room", "room", rec.Key, "error", err)
				continue
			}
			if room.Status != domain.RoomOccupied || room.CheckinTime == "" {
				continue
			}
			checkin, err := time.Parse(checkinTimeLayout, room.CheckinTime)
			if err != nil {
				logger.Error("Unparseable check-in time", "room", rec.Key, "checkin_time", room.CheckinTime)
				continue
			}
			nextDue := checkin.Add(time.Duration(room.RenewalCount+1) * 24 * time.Hour)
			if !now.Before(nextDue) {
				due = append(due, rec.Key)
			}
		}
		sort.Strings(due)

		if err := jr.st.Update(ctx, store.CollSettings, store.KeyAppSettings, map[string]any{
			"last_rent_check": now.Format("2006-01-02 15:04:05"),
		}); err != nil {
			logger.Error("Failed to update last rent check", "error", err)
		}

		if len(due) == 0 {
			logger.Info("No rooms due for rent renewal")
			return
		}
		logger.Info("Rooms due for rent renewal", "count", len(due), "rooms", due)

		subject := fmt.Sprintf("Rent due for %d room(s)", len(due))
		body := fmt.Sprintf("Rent renewal is due for the following rooms as of %s:\n\n%s\n",
			now.Format("2006-01-02 15:04"), strings.Join(due, ", "))
		if err := jr.notifier.SendRentDueSummary(ctx, subject, body); err != nil {
			// Notification delivery never blocks the sweep.
			logger.Error("Failed to send rent due summary", "error", err)
		}
	})
}

// CounterCleanup deletes daily serial counters older than 30 days. The
// counter document key is the calendar date, so age falls straight out of
// the key.
func (jr *JobRunner) CounterCleanup() {
	jr.runWithRecovery("CounterCleanup", func() {
		ctx := context.Background()
		cutoff := jr.clock.Now().AddDate(0, 0, -30)

		records, err := jr.st.List(ctx, store.CollCounters)
		if err != nil {
			logger.Error("Failed to list counters", "error", err)
			return
		}

		deleted := 0
		for _, rec := range records {
			day, err := time.Parse("2006-01-02", rec.Key)
			if err != nil {
				logger.Error("Unparseable counter key", "key", rec.Key)
				continue
			}
			if !day.Before(cutoff) {
				continue
			}
			if err := jr.st.Delete(ctx, store.CollCounters, rec.Key); err != nil {
				logger.Error("Failed to delete counter", "key", rec.Key, "error", err)
				continue
			}
			deleted++
		}
		logger.Info("Cleaned up old counters", "deleted", deleted)
	})
}

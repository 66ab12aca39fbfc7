package service

import (
	"context"
	"fmt"

	"lodge-backend/internal/domain"
	"lodge-backend/internal/logger"
	"lodge-backend/internal/store"
)

type transferService struct {
	st    store.RecordStore
	clock Clock
}

func NewTransferService(st store.RecordStore, clock Clock) TransferService {
	return &transferService{st: st, clock: clock}
}

// Transfer moves an occupied room's entire stay to a vacant destination and
// rewrites the stay's log entries to point at the new room. The destination
// write, the source clear, every rewritten log document and the shift-log
// append commit as one batch; either the whole move lands or none of it does.
func (s *transferService) Transfer(ctx context.Context, req TransferRequest) error {
	if req.OldRoom == "" || req.NewRoom == "" {
		return fmt.Errorf("%w: both rooms are required", domain.ErrValidation)
	}
	if req.OldRoom == req.NewRoom {
		return fmt.Errorf("%w: source and destination rooms must differ", domain.ErrValidation)
	}

	var oldRoom, newRoom domain.Room
	if err := s.st.Get(ctx, store.CollRooms, req.OldRoom, &oldRoom); err != nil {
		return domain.ErrRoomNotFound
	}
	if err := s.st.Get(ctx, store.CollRooms, req.NewRoom, &newRoom); err != nil {
		return domain.ErrRoomNotFound
	}
	if oldRoom.Status != domain.RoomOccupied || oldRoom.Guest == nil {
		return fmt.Errorf("source room: %w", domain.ErrRoomNotOccupied)
	}
	if newRoom.Status != domain.RoomVacant {
		return fmt.Errorf("destination room: %w", domain.ErrRoomNotVacant)
	}

	guestName := oldRoom.Guest.Name
	checkinTime := oldRoom.CheckinTime

	moved := oldRoom
	movedGuest := *oldRoom.Guest
	if req.NewPrice > 0 {
		movedGuest.Price = req.NewPrice
	}
	moved.Guest = &movedGuest

	batch := &store.Batch{}
	batch.Set(store.CollRooms, req.NewRoom, moved)
	batch.Set(store.CollRooms, req.OldRoom, domain.VacantRoom())

	// Rewrite the stay's entries in every channel log. Matching is by room,
	// guest name and entry timestamp at or after check-in, so records from a
	// previous occupancy of the same room number stay untouched.
	records, err := s.st.List(ctx, store.CollLogs)
	if err != nil {
		return err
	}
	rewritten := 0
	for _, rec := range records {
		if rec.Key == domain.LogRoomShifts {
			continue
		}
		var l domain.ChannelLog
		if err := rec.Decode(&l); err != nil {
			return fmt.Errorf("decode %s log: %w", rec.Key, err)
		}
		changed := false
		for i, e := range l.Entries {
			if e.Room != req.OldRoom || e.Name != guestName || !entryInStay(e, checkinTime) {
				continue
			}
			e.Room = req.NewRoom
			e.Shifted = true
			e.OldRoom = req.OldRoom
			l.Entries[i] = e
			changed = true
			rewritten++
		}
		if changed {
			batch.Set(store.CollLogs, rec.Key, l)
		}
	}

	date, tod := stamp(s.clock)
	shiftLog, err := loadLog(ctx, s.st, domain.LogRoomShifts)
	if err != nil {
		return err
	}
	shiftLog.Entries = append(shiftLog.Entries, domain.LedgerEntry{
		Room:    req.NewRoom,
		Name:    guestName,
		OldRoom: req.OldRoom,
		Date:    date,
		Time:    tod,
		Note:    fmt.Sprintf("Transferred from Room %s to Room %s", req.OldRoom, req.NewRoom),
	})
	batch.Set(store.CollLogs, domain.LogRoomShifts, shiftLog)

	if err := s.st.Commit(ctx, batch); err != nil {
		return err
	}
	logger.Info("guest transferred", "old_room", req.OldRoom, "new_room", req.NewRoom, "guest", guestName, "entries_rewritten", rewritten)
	return nil
}

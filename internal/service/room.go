package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"lodge-backend/internal/domain"
	"lodge-backend/internal/logger"
	"lodge-backend/internal/store"
)

type roomService struct {
	st            store.RecordStore
	clock         Clock
	serial        SerialService
	serialEnabled bool
}

// NewRoomService builds the room inventory service. serialEnabled controls
// whether check-ins are stamped with per-day serial numbers.
func NewRoomService(st store.RecordStore, clock Clock, serial SerialService, serialEnabled bool) RoomService {
	return &roomService{st: st, clock: clock, serial: serial, serialEnabled: serialEnabled}
}

func (s *roomService) getRoom(ctx context.Context, room string) (*domain.Room, error) {
	var r domain.Room
	err := s.st.Get(ctx, store.CollRooms, room, &r)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domain.ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *roomService) CheckIn(ctx context.Context, req CheckInRequest) (*CheckInResult, error) {
	if req.Room == "" || req.Name == "" {
		return nil, fmt.Errorf("%w: room and guest name are required", domain.ErrValidation)
	}
	if req.Price <= 0 {
		return nil, fmt.Errorf("%w: price must be positive", domain.ErrValidation)
	}
	if req.AmountPaid < 0 {
		return nil, fmt.Errorf("%w: amount paid cannot be negative", domain.ErrValidation)
	}
	if !domain.IsPaymentChannel(req.Payment) {
		return nil, fmt.Errorf("%w: unknown payment method %q", domain.ErrValidation, req.Payment)
	}
	if req.AmountPaid > 0 && req.Payment == domain.ChannelBalance {
		return nil, fmt.Errorf("%w: cannot use 'Pay Later' with an amount paid; select cash or online", domain.ErrValidation)
	}

	r, err := s.getRoom(ctx, req.Room)
	if err != nil {
		return nil, err
	}
	if r.Status != domain.RoomVacant {
		return nil, domain.ErrRoomNotVacant
	}

	balance := req.Price - req.AmountPaid
	guests := req.Guests
	if guests <= 0 {
		guests = 1
	}

	now := s.clock.Now()
	date, tod := now.Format(dateLayout), now.Format(timeLayout)

	var serial int64
	if s.serialEnabled {
		if serial, err = s.serial.Allocate(ctx, date); err != nil {
			return nil, err
		}
	}

	occupied := domain.Room{
		Status: domain.RoomOccupied,
		Guest: &domain.Guest{
			Name:    req.Name,
			Mobile:  req.Mobile,
			Price:   req.Price,
			Guests:  guests,
			Payment: req.Payment,
			Balance: balance,
			HasAC:   req.HasAC,
			Photo:   req.PhotoPath,
		},
		CheckinTime: now.Format(minuteLayout),
		Balance:     balance,
		AddOns:      []domain.AddOn{},
	}

	totals, err := loadTotals(ctx, s.st)
	if err != nil {
		return nil, err
	}
	appender := newLogAppender(s.st)

	if req.AmountPaid > 0 {
		entry := domain.LedgerEntry{
			Room:         req.Room,
			Name:         req.Name,
			Amount:       req.AmountPaid,
			Date:         date,
			Time:         tod,
			SerialNumber: serial,
		}
		if err := appender.Append(ctx, req.Payment, entry); err != nil {
			return nil, err
		}
		totals[req.Payment] += req.AmountPaid
	}
	if balance > 0 {
		entry := domain.LedgerEntry{
			Room:         req.Room,
			Name:         req.Name,
			Amount:       balance,
			Date:         date,
			Time:         tod,
			SerialNumber: serial,
		}
		if err := appender.Append(ctx, domain.ChannelBalance, entry); err != nil {
			return nil, err
		}
		totals[domain.ChannelBalance] += balance
	}

	batch := &store.Batch{}
	batch.Set(store.CollRooms, req.Room, occupied)
	batch.Set(store.CollTotals, store.KeyCurrentTotals, totals)
	appender.AddToBatch(batch)
	if err := s.st.Commit(ctx, batch); err != nil {
		return nil, err
	}

	logger.Info("check-in complete", "room", req.Room, "guest", req.Name, "balance", balance, "serial", serial)
	return &CheckInResult{
		Balance:      balance,
		SerialNumber: serial,
		Message:      fmt.Sprintf("Check-in successful for %s", req.Name),
	}, nil
}

// RecordPayment clears some or all of an occupied room's balance. A payment
// above the outstanding balance flips the balance negative (owed to the
// guest); a payment against a non-positive balance only deepens the credit
// and leaves the balance running total untouched.
func (s *roomService) RecordPayment(ctx context.Context, room string, amount int64, paymentMode string) (*PaymentResult, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: payment amount must be positive", domain.ErrValidation)
	}
	if paymentMode != domain.ChannelCash && paymentMode != domain.ChannelOnline {
		return nil, fmt.Errorf("%w: payment method must be cash or online", domain.ErrValidation)
	}

	r, err := s.getRoom(ctx, room)
	if err != nil {
		return nil, err
	}
	if r.Status != domain.RoomOccupied || r.Guest == nil {
		return nil, domain.ErrRoomNotOccupied
	}

	totals, err := loadTotals(ctx, s.st)
	if err != nil {
		return nil, err
	}
	date, tod := stamp(s.clock)

	appender := newLogAppender(s.st)
	if err := appender.Append(ctx, paymentMode, domain.LedgerEntry{
		Room:   room,
		Name:   r.Guest.Name,
		Amount: amount,
		Date:   date,
		Time:   tod,
	}); err != nil {
		return nil, err
	}
	totals[paymentMode] += amount

	prior := r.Balance
	var newBalance int64
	var message string
	switch {
	case prior > 0 && amount >= prior:
		totals[domain.ChannelBalance] -= prior
		overpayment := amount - prior
		newBalance = -overpayment
		if overpayment > 0 {
			message = fmt.Sprintf("Payment of ₹%d received. Balance cleared. Overpayment: ₹%d", amount, overpayment)
		} else {
			message = fmt.Sprintf("Payment of ₹%d received. Balance cleared.", amount)
		}
	case prior > 0:
		totals[domain.ChannelBalance] -= amount
		newBalance = prior - amount
		message = "Payment recorded successfully."
	default:
		newBalance = prior - amount
		message = "Payment recorded successfully."
	}
	r.Balance = newBalance

	batch := &store.Batch{}
	batch.Set(store.CollRooms, room, *r)
	batch.Set(store.CollTotals, store.KeyCurrentTotals, totals)
	appender.AddToBatch(batch)
	if err := s.st.Commit(ctx, batch); err != nil {
		return nil, err
	}

	logger.Info("payment recorded", "room", room, "amount", amount, "mode", paymentMode, "balance", newBalance)
	return &PaymentResult{NewBalance: newBalance, Message: message}, nil
}

func (s *roomService) Refund(ctx context.Context, room string, amount int64, refundMethod string) error {
	if amount <= 0 {
		return fmt.Errorf("%w: refund amount must be positive", domain.ErrValidation)
	}
	r, err := s.getRoom(ctx, room)
	if err != nil {
		return err
	}
	if r.Status != domain.RoomOccupied || r.Guest == nil {
		return domain.ErrRoomNotOccupied
	}
	available := r.Balance
	if available < 0 {
		available = -available
	}
	if available < amount {
		return fmt.Errorf("%w: refund amount (₹%d) exceeds available balance (₹%d)", domain.ErrExcessiveRefund, amount, available)
	}
	if refundMethod == "" {
		refundMethod = domain.ChannelCash
	}

	totals, err := loadTotals(ctx, s.st)
	if err != nil {
		return err
	}
	date, tod := stamp(s.clock)
	note := "Full refund"
	if available > amount {
		note = "Partial refund"
	}

	appender := newLogAppender(s.st)
	if err := appender.Append(ctx, domain.LogRefunds, domain.LedgerEntry{
		Room:        room,
		Name:        r.Guest.Name,
		Amount:      amount,
		Date:        date,
		Time:        tod,
		PaymentMode: refundMethod,
		Note:        note,
	}); err != nil {
		return err
	}
	totals[domain.TotalRefunds] += amount
	r.Balance += amount

	batch := &store.Batch{}
	batch.Set(store.CollRooms, room, *r)
	batch.Set(store.CollTotals, store.KeyCurrentTotals, totals)
	appender.AddToBatch(batch)
	if err := s.st.Commit(ctx, batch); err != nil {
		return err
	}
	logger.Info("refund processed", "room", room, "amount", amount, "mode", refundMethod)
	return nil
}

func (s *roomService) FinalCheckout(ctx context.Context, req FinalCheckoutRequest) (*FinalCheckoutResult, error) {
	r, err := s.getRoom(ctx, req.Room)
	if err != nil {
		return nil, err
	}
	if r.Status != domain.RoomOccupied || r.Guest == nil {
		return nil, domain.ErrRoomNotOccupied
	}

	balance := r.Balance
	if balance > 0 && !req.SettleLater {
		return nil, domain.ErrBalanceNotCleared
	}

	totals, err := loadTotals(ctx, s.st)
	if err != nil {
		return nil, err
	}
	date, tod := stamp(s.clock)
	appender := newLogAppender(s.st)
	batch := &store.Batch{}

	var settlementID string
	if balance > 0 && req.SettleLater {
		settlementID = uuid.New().String()
		batch.Set(store.CollSettlements, settlementID, domain.Settlement{
			GuestName:   r.Guest.Name,
			GuestMobile: r.Guest.Mobile,
			Room:        req.Room,
			Amount:      balance,
			Remaining:   balance,
			Status:      domain.SettlementPending,
			Notes:       req.SettlementNotes,
			Date:        date,
			Time:        tod,
		})
		if err := appender.Append(ctx, domain.ChannelBalance, domain.LedgerEntry{
			Room:         req.Room,
			Name:         r.Guest.Name,
			Amount:       -balance,
			Date:         date,
			Time:         tod,
			Note:         "Balance converted to settlement",
			SettlementID: settlementID,
		}); err != nil {
			return nil, err
		}
		totals[domain.ChannelBalance] -= balance
	}

	if balance < 0 && req.RefundMethod != "" {
		refundAmount := -balance
		if err := appender.Append(ctx, domain.LogRefunds, domain.LedgerEntry{
			Room:        req.Room,
			Name:        r.Guest.Name,
			Amount:      refundAmount,
			Date:        date,
			Time:        tod,
			PaymentMode: req.RefundMethod,
			Note:        "Checkout refund",
		}); err != nil {
			return nil, err
		}
		totals[domain.TotalRefunds] += refundAmount
	}

	guestName := r.Guest.Name
	batch.Set(store.CollRooms, req.Room, domain.VacantRoom())
	batch.Set(store.CollTotals, store.KeyCurrentTotals, totals)
	appender.AddToBatch(batch)
	if err := s.st.Commit(ctx, batch); err != nil {
		return nil, err
	}

	logger.Info("room checked out", "room", req.Room, "guest", guestName, "settlement_id", settlementID)
	message := "Checkout successful"
	if settlementID != "" {
		message = fmt.Sprintf("Checkout successful. ₹%d deferred for later settlement.", balance)
	}
	return &FinalCheckoutResult{SettlementID: settlementID, Message: message}, nil
}

func (s *roomService) AddOn(ctx context.Context, req AddOnRequest) (string, error) {
	if req.Item == "" {
		return "", fmt.Errorf("%w: item is required", domain.ErrValidation)
	}
	if req.UnitPrice <= 0 {
		return "", fmt.Errorf("%w: price must be positive", domain.ErrValidation)
	}
	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}
	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = domain.ChannelBalance
	}
	if !domain.IsPaymentChannel(paymentMethod) {
		return "", fmt.Errorf("%w: unknown payment method %q", domain.ErrValidation, paymentMethod)
	}

	r, err := s.getRoom(ctx, req.Room)
	if err != nil {
		return "", err
	}
	if r.Status != domain.RoomOccupied || r.Guest == nil {
		return "", domain.ErrRoomNotOccupied
	}

	total := req.UnitPrice * int64(quantity)
	date, tod := stamp(s.clock)
	totals, err := loadTotals(ctx, s.st)
	if err != nil {
		return "", err
	}
	appender := newLogAppender(s.st)

	if paymentMethod == domain.ChannelCash || paymentMethod == domain.ChannelOnline {
		if err := appender.Append(ctx, paymentMethod, domain.LedgerEntry{
			Room:        req.Room,
			Name:        r.Guest.Name,
			Amount:      total,
			Date:        date,
			Time:        tod,
			Item:        req.Item,
			PaymentMode: paymentMethod,
		}); err != nil {
			return "", err
		}
		totals[paymentMethod] += total
	} else {
		r.Balance += total
		totals[domain.ChannelBalance] += total
		if err := appender.Append(ctx, domain.ChannelBalance, domain.LedgerEntry{
			Room:   req.Room,
			Name:   r.Guest.Name,
			Amount: total,
			Date:   date,
			Time:   tod,
			Item:   req.Item,
			Note:   fmt.Sprintf("Added %s to balance", req.Item),
		}); err != nil {
			return "", err
		}
	}

	// The add-on itself is recorded on the room and in the shared add-ons
	// log regardless of how it was paid.
	r.AddOns = append(r.AddOns, domain.AddOn{
		Room:          req.Room,
		Item:          req.Item,
		UnitPrice:     req.UnitPrice,
		Quantity:      quantity,
		Price:         total,
		Date:          date,
		Time:          tod,
		PaymentMethod: paymentMethod,
	})
	if err := appender.Append(ctx, domain.LogAddOns, domain.LedgerEntry{
		Room:        req.Room,
		Name:        r.Guest.Name,
		Amount:      total,
		Date:        date,
		Time:        tod,
		Item:        req.Item,
		PaymentMode: paymentMethod,
	}); err != nil {
		return "", err
	}

	batch := &store.Batch{}
	batch.Set(store.CollRooms, req.Room, *r)
	batch.Set(store.CollTotals, store.KeyCurrentTotals, totals)
	appender.AddToBatch(batch)
	if err := s.st.Commit(ctx, batch); err != nil {
		return "", err
	}

	logger.Info("add-on recorded", "room", req.Room, "item", req.Item, "price", total, "payment", paymentMethod)
	if paymentMethod == domain.ChannelBalance {
		return fmt.Sprintf("Added %s (₹%d) to room %s balance", req.Item, total, req.Room), nil
	}
	return fmt.Sprintf("Added %s (₹%d) to room %s, paid by %s", req.Item, total, req.Room, paymentMethod), nil
}

func (s *roomService) ApplyDiscount(ctx context.Context, room string, amount int64, reason string) error {
	if amount <= 0 {
		return fmt.Errorf("%w: please provide a valid discount amount", domain.ErrValidation)
	}
	if reason == "" {
		reason = "Discount"
	}
	r, err := s.getRoom(ctx, room)
	if err != nil {
		return err
	}
	if r.Status != domain.RoomOccupied || r.Guest == nil {
		return domain.ErrRoomNotOccupied
	}

	date, tod := stamp(s.clock)
	totals, err := loadTotals(ctx, s.st)
	if err != nil {
		return err
	}

	// An outstanding balance absorbs the discount up to its own size; once
	// the guest owes nothing the discount deepens their credit instead.
	if r.Balance > 0 {
		cut := amount
		if cut > r.Balance {
			cut = r.Balance
		}
		r.Balance -= cut
		totals[domain.ChannelBalance] -= cut
	} else {
		r.Balance -= amount
	}

	r.Discounts = append(r.Discounts, domain.Discount{
		Amount: amount,
		Reason: reason,
		Date:   date,
		Time:   tod,
	})

	appender := newLogAppender(s.st)
	if err := appender.Append(ctx, domain.LogDiscounts, domain.LedgerEntry{
		Room:   room,
		Name:   r.Guest.Name,
		Amount: amount,
		Date:   date,
		Time:   tod,
		Reason: reason,
	}); err != nil {
		return err
	}

	batch := &store.Batch{}
	batch.Set(store.CollRooms, room, *r)
	batch.Set(store.CollTotals, store.KeyCurrentTotals, totals)
	appender.AddToBatch(batch)
	if err := s.st.Commit(ctx, batch); err != nil {
		return err
	}
	logger.Info("discount applied", "room", room, "amount", amount, "reason", reason)
	return nil
}

func (s *roomService) RenewRent(ctx context.Context, room string) (int, error) {
	r, err := s.getRoom(ctx, room)
	if err != nil {
		return 0, err
	}
	if r.Status != domain.RoomOccupied || r.Guest == nil {
		return 0, domain.ErrRoomNotOccupied
	}

	price := r.Guest.Price
	r.Balance += price
	r.RenewalCount++
	day := r.RenewalCount

	date, tod := stamp(s.clock)
	totals, err := loadTotals(ctx, s.st)
	if err != nil {
		return 0, err
	}
	totals[domain.ChannelBalance] += price

	entry := domain.LedgerEntry{
		Room:   room,
		Name:   r.Guest.Name,
		Amount: price,
		Date:   date,
		Time:   tod,
		Note:   fmt.Sprintf("Day %d rent renewal", day),
		Day:    day,
	}
	appender := newLogAppender(s.st)
	if err := appender.Append(ctx, domain.ChannelBalance, entry); err != nil {
		return 0, err
	}
	if err := appender.Append(ctx, domain.LogRenewals, entry); err != nil {
		return 0, err
	}

	batch := &store.Batch{}
	batch.Set(store.CollRooms, room, *r)
	batch.Set(store.CollTotals, store.KeyCurrentTotals, totals)
	appender.AddToBatch(batch)
	if err := s.st.Commit(ctx, batch); err != nil {
		return 0, err
	}

	// The rent-check timestamp is shared process state read by the reminder
	// sweep; it is not part of the room's consistency boundary.
	if err := s.st.Update(ctx, store.CollSettings, store.KeyAppSettings, map[string]any{
		"last_rent_check": s.clock.Now().Format(settingsLayout),
	}); err != nil {
		logger.Warn("failed to update last rent check", "error", err)
	}

	logger.Info("rent renewed", "room", room, "day", day)
	return day, nil
}

func (s *roomService) UpdateCheckInTime(ctx context.Context, room, checkinTime string) error {
	if _, err := time.Parse(minuteLayout, checkinTime); err != nil {
		return fmt.Errorf("%w: check-in time must be in YYYY-MM-DD HH:MM format", domain.ErrValidation)
	}
	r, err := s.getRoom(ctx, room)
	if err != nil {
		return err
	}
	if r.Status != domain.RoomOccupied {
		return domain.ErrRoomNotOccupied
	}
	r.CheckinTime = checkinTime
	r.RenewalCount = 0
	if err := s.st.Set(ctx, store.CollRooms, room, *r); err != nil {
		return err
	}
	logger.Info("check-in time updated", "room", room, "checkin_time", checkinTime)
	return nil
}

func (s *roomService) AddRoom(ctx context.Context, room string) error {
	if room == "" {
		return fmt.Errorf("%w: room number is required", domain.ErrValidation)
	}
	var existing domain.Room
	err := s.st.Get(ctx, store.CollRooms, room, &existing)
	if err == nil {
		return domain.ErrRoomExists
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}
	if err := s.st.Set(ctx, store.CollRooms, room, domain.VacantRoom()); err != nil {
		return err
	}
	logger.Info("room added", "room", room)
	return nil
}

func (s *roomService) GetRoom(ctx context.Context, room string) (*domain.Room, error) {
	return s.getRoom(ctx, room)
}

func (s *roomService) ListRooms(ctx context.Context) (map[string]domain.Room, error) {
	records, err := s.st.List(ctx, store.CollRooms)
	if err != nil {
		return nil, err
	}
	rooms := make(map[string]domain.Room, len(records))
	for _, rec := range records {
		var r domain.Room
		if err := rec.Decode(&r); err != nil {
			return nil, err
		}
		rooms[rec.Key] = r
	}
	return rooms, nil
}

func (s *roomService) GuestHistory(ctx context.Context, room, name string) (*GuestHistory, error) {
	if room == "" || name == "" {
		return nil, fmt.Errorf("%w: room and guest name are required", domain.ErrValidation)
	}
	filter := func(channel string) ([]domain.LedgerEntry, error) {
		l, err := loadLog(ctx, s.st, channel)
		if err != nil {
			return nil, err
		}
		matched := []domain.LedgerEntry{}
		for _, e := range l.Entries {
			if e.Room == room && e.Name == name {
				matched = append(matched, e)
			}
		}
		return matched, nil
	}

	h := &GuestHistory{}
	var err error
	if h.Cash, err = filter(domain.ChannelCash); err != nil {
		return nil, err
	}
	if h.Online, err = filter(domain.ChannelOnline); err != nil {
		return nil, err
	}
	if h.Refunds, err = filter(domain.LogRefunds); err != nil {
		return nil, err
	}
	if h.AddOns, err = filter(domain.LogAddOns); err != nil {
		return nil, err
	}
	if h.Renewals, err = filter(domain.LogRenewals); err != nil {
		return nil, err
	}
	return h, nil
}

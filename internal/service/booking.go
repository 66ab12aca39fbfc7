package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"lodge-backend/internal/domain"
	"lodge-backend/internal/logger"
	"lodge-backend/internal/store"
)

type bookingService struct {
	st            store.RecordStore
	clock         Clock
	serial        SerialService
	serialEnabled bool
}

func NewBookingService(st store.RecordStore, clock Clock, serial SerialService, serialEnabled bool) BookingService {
	return &bookingService{st: st, clock: clock, serial: serial, serialEnabled: serialEnabled}
}

func (s *bookingService) getBooking(ctx context.Context, id string) (*domain.Booking, error) {
	var b domain.Booking
	err := s.st.Get(ctx, store.CollBookings, id, &b)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domain.ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *bookingService) Create(ctx context.Context, req CreateBookingRequest) (string, error) {
	switch {
	case req.Room == "":
		return "", fmt.Errorf("%w: missing required field: room", domain.ErrValidation)
	case req.GuestName == "":
		return "", fmt.Errorf("%w: missing required field: guest_name", domain.ErrValidation)
	case req.GuestMobile == "":
		return "", fmt.Errorf("%w: missing required field: guest_mobile", domain.ErrValidation)
	case req.CheckInDate == "":
		return "", fmt.Errorf("%w: missing required field: check_in_date", domain.ErrValidation)
	case req.CheckOutDate == "":
		return "", fmt.Errorf("%w: missing required field: check_out_date", domain.ErrValidation)
	case req.TotalAmount <= 0:
		return "", fmt.Errorf("%w: total amount must be positive", domain.ErrValidation)
	case req.PaidAmount < 0:
		return "", fmt.Errorf("%w: paid amount cannot be negative", domain.ErrValidation)
	}
	for _, d := range []string{req.CheckInDate, req.CheckOutDate} {
		if _, err := time.Parse(dateLayout, d); err != nil {
			return "", fmt.Errorf("%w: invalid date format, use YYYY-MM-DD", domain.ErrValidation)
		}
	}

	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = domain.ChannelCash
	}
	guestCount := req.GuestCount
	if guestCount <= 0 {
		guestCount = 1
	}

	bookingID := uuid.New().String()
	date, tod := stamp(s.clock)
	booking := domain.Booking{
		Room:          req.Room,
		GuestName:     req.GuestName,
		GuestMobile:   req.GuestMobile,
		BookingDate:   date,
		CheckInDate:   req.CheckInDate,
		CheckOutDate:  req.CheckOutDate,
		Status:        domain.BookingConfirmed,
		TotalAmount:   req.TotalAmount,
		PaidAmount:    req.PaidAmount,
		Balance:       req.TotalAmount - req.PaidAmount,
		PaymentMethod: paymentMethod,
		Notes:         req.Notes,
		PhotoPath:     req.PhotoPath,
		GuestCount:    guestCount,
	}

	batch := &store.Batch{}
	batch.Set(store.CollBookings, bookingID, booking)

	if req.PaidAmount > 0 {
		totals, err := loadTotals(ctx, s.st)
		if err != nil {
			return "", err
		}
		appender := newLogAppender(s.st)
		if err := appender.Append(ctx, paymentMethod, domain.LedgerEntry{
			BookingID: bookingID,
			Room:      req.Room,
			Name:      req.GuestName,
			Amount:    req.PaidAmount,
			Date:      date,
			Time:      tod,
			Type:      "booking_advance",
		}); err != nil {
			return "", err
		}
		if err := appender.Append(ctx, domain.LogBookingPayments, domain.LedgerEntry{
			BookingID:   bookingID,
			Room:        req.Room,
			Name:        req.GuestName,
			Amount:      req.PaidAmount,
			PaymentMode: paymentMethod,
			Date:        date,
			Time:        tod,
			Type:        "advance",
		}); err != nil {
			return "", err
		}
		totals[paymentMethod] += req.PaidAmount
		totals[domain.TotalAdvanceBookings] += req.PaidAmount
		batch.Set(store.CollTotals, store.KeyCurrentTotals, totals)
		appender.AddToBatch(batch)
	}

	if err := s.st.Commit(ctx, batch); err != nil {
		return "", err
	}
	logger.Info("booking created", "booking_id", bookingID, "guest", req.GuestName, "room", req.Room)
	return bookingID, nil
}

func (s *bookingService) Update(ctx context.Context, req UpdateBookingRequest) (*domain.Booking, error) {
	booking, err := s.getBooking(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}

	batch := &store.Batch{}

	if req.NewPayment > 0 {
		paymentMethod := req.PaymentMethod
		if paymentMethod == "" {
			paymentMethod = domain.ChannelCash
		}
		date, tod := stamp(s.clock)
		totals, err := loadTotals(ctx, s.st)
		if err != nil {
			return nil, err
		}
		appender := newLogAppender(s.st)
		if err := appender.Append(ctx, paymentMethod, domain.LedgerEntry{
			BookingID: req.BookingID,
			Room:      booking.Room,
			Name:      booking.GuestName,
			Amount:    req.NewPayment,
			Date:      date,
			Time:      tod,
			Type:      "booking_payment",
		}); err != nil {
			return nil, err
		}
		if err := appender.Append(ctx, domain.LogBookingPayments, domain.LedgerEntry{
			BookingID:   req.BookingID,
			Room:        booking.Room,
			Name:        booking.GuestName,
			Amount:      req.NewPayment,
			PaymentMode: paymentMethod,
			Date:        date,
			Time:        tod,
			Type:        "additional_payment",
		}); err != nil {
			return nil, err
		}
		totals[paymentMethod] += req.NewPayment
		totals[domain.TotalAdvanceBookings] += req.NewPayment
		batch.Set(store.CollTotals, store.KeyCurrentTotals, totals)
		appender.AddToBatch(batch)

		booking.PaidAmount += req.NewPayment
		booking.Balance = booking.TotalAmount - booking.PaidAmount
	}

	if req.GuestName != nil {
		booking.GuestName = *req.GuestName
	}
	if req.GuestMobile != nil {
		booking.GuestMobile = *req.GuestMobile
	}
	if req.CheckInDate != nil {
		booking.CheckInDate = *req.CheckInDate
	}
	if req.CheckOutDate != nil {
		booking.CheckOutDate = *req.CheckOutDate
	}
	if req.Room != nil {
		booking.Room = *req.Room
	}
	if req.Notes != nil {
		booking.Notes = *req.Notes
	}
	if req.GuestCount != nil {
		booking.GuestCount = *req.GuestCount
	}
	if req.Status != nil {
		booking.Status = domain.BookingStatus(*req.Status)
	}
	if req.TotalAmount != nil {
		booking.TotalAmount = *req.TotalAmount
		booking.Balance = booking.TotalAmount - booking.PaidAmount
	}

	batch.Set(store.CollBookings, req.BookingID, *booking)
	if err := s.st.Commit(ctx, batch); err != nil {
		return nil, err
	}
	logger.Info("booking updated", "booking_id", req.BookingID)
	return booking, nil
}

func (s *bookingService) Cancel(ctx context.Context, req CancelBookingRequest) error {
	booking, err := s.getBooking(ctx, req.BookingID)
	if err != nil {
		return err
	}

	batch := &store.Batch{}
	date, tod := stamp(s.clock)

	if req.RefundAmount > 0 {
		refundMethod := req.RefundMethod
		if refundMethod == "" {
			refundMethod = domain.ChannelCash
		}
		totals, err := loadTotals(ctx, s.st)
		if err != nil {
			return err
		}
		appender := newLogAppender(s.st)
		if err := appender.Append(ctx, domain.LogRefunds, domain.LedgerEntry{
			BookingID:   req.BookingID,
			Room:        booking.Room,
			Name:        booking.GuestName,
			Amount:      req.RefundAmount,
			Date:        date,
			Time:        tod,
			PaymentMode: refundMethod,
			Note:        "Booking cancellation refund",
		}); err != nil {
			return err
		}
		totals[domain.TotalRefunds] += req.RefundAmount
		batch.Set(store.CollTotals, store.KeyCurrentTotals, totals)
		appender.AddToBatch(batch)

		booking.PaidAmount -= req.RefundAmount
		booking.Balance = booking.TotalAmount - booking.PaidAmount
	}

	booking.Status = domain.BookingCancelled
	booking.CancellationDate = date
	booking.CancellationReason = req.Reason

	batch.Set(store.CollBookings, req.BookingID, *booking)
	if err := s.st.Commit(ctx, batch); err != nil {
		return err
	}
	logger.Info("booking cancelled", "booking_id", req.BookingID)
	return nil
}

func (s *bookingService) ConvertToCheckIn(ctx context.Context, req ConvertBookingRequest) (*ConvertBookingResult, error) {
	booking, err := s.getBooking(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != domain.BookingConfirmed {
		return nil, fmt.Errorf("%w: booking is %s, not confirmed", domain.ErrValidation, booking.Status)
	}

	roomNumber := booking.Room
	var room domain.Room
	if err := s.st.Get(ctx, store.CollRooms, roomNumber, &room); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domain.ErrRoomNotFound
		}
		return nil, err
	}
	if room.Status != domain.RoomVacant {
		return nil, domain.ErrRoomNotVacant
	}

	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = domain.ChannelCash
	}
	now := s.clock.Now()
	date, tod := now.Format(dateLayout), now.Format(timeLayout)

	var serial int64
	if s.serialEnabled {
		if serial, err = s.serial.Allocate(ctx, date); err != nil {
			return nil, err
		}
	}

	totals, err := loadTotals(ctx, s.st)
	if err != nil {
		return nil, err
	}
	appender := newLogAppender(s.st)
	batch := &store.Batch{}

	balanceAfterPayment := booking.Balance - req.RemainingPayment
	if req.RemainingPayment > 0 {
		if err := appender.Append(ctx, paymentMethod, domain.LedgerEntry{
			BookingID:    req.BookingID,
			Room:         roomNumber,
			Name:         booking.GuestName,
			Amount:       req.RemainingPayment,
			Date:         date,
			Time:         tod,
			Type:         "booking_final_payment",
			SerialNumber: serial,
		}); err != nil {
			return nil, err
		}
		if err := appender.Append(ctx, domain.LogBookingPayments, domain.LedgerEntry{
			BookingID:   req.BookingID,
			Room:        roomNumber,
			Name:        booking.GuestName,
			Amount:      req.RemainingPayment,
			PaymentMode: paymentMethod,
			Date:        date,
			Time:        tod,
			Type:        "final_payment",
		}); err != nil {
			return nil, err
		}
		totals[paymentMethod] += req.RemainingPayment
	}

	roomBalance := balanceAfterPayment
	if roomBalance < 0 {
		roomBalance = 0
	}
	price := req.RoomPrice
	if price <= 0 {
		price = booking.TotalAmount
	}

	occupied := domain.Room{
		Status: domain.RoomOccupied,
		Guest: &domain.Guest{
			Name:    booking.GuestName,
			Mobile:  booking.GuestMobile,
			Price:   price,
			Guests:  booking.GuestCount,
			Payment: paymentMethod,
			Balance: roomBalance,
			Photo:   booking.PhotoPath,
		},
		CheckinTime: now.Format(minuteLayout),
		Balance:     roomBalance,
		AddOns:      []domain.AddOn{},
	}
	batch.Set(store.CollRooms, roomNumber, occupied)

	if balanceAfterPayment > 0 {
		if err := appender.Append(ctx, domain.ChannelBalance, domain.LedgerEntry{
			BookingID:    req.BookingID,
			Room:         roomNumber,
			Name:         booking.GuestName,
			Amount:       balanceAfterPayment,
			Date:         date,
			Time:         tod,
			Note:         "Remaining balance from booking",
			SerialNumber: serial,
		}); err != nil {
			return nil, err
		}
		totals[domain.ChannelBalance] += balanceAfterPayment
	}

	booking.Status = domain.BookingCheckedIn
	booking.CheckInTime = now.Format(minuteLayout)
	batch.Set(store.CollBookings, req.BookingID, *booking)
	batch.Set(store.CollTotals, store.KeyCurrentTotals, totals)
	appender.AddToBatch(batch)

	if err := s.st.Commit(ctx, batch); err != nil {
		return nil, err
	}
	logger.Info("booking converted to check-in", "booking_id", req.BookingID, "room", roomNumber, "serial", serial)
	return &ConvertBookingResult{Room: roomNumber, SerialNumber: serial}, nil
}

func (s *bookingService) List(ctx context.Context) ([]BookingWithID, error) {
	records, err := s.st.List(ctx, store.CollBookings)
	if err != nil {
		return nil, err
	}
	bookings := make([]BookingWithID, 0, len(records))
	for _, rec := range records {
		var b domain.Booking
		if err := rec.Decode(&b); err != nil {
			return nil, err
		}
		bookings = append(bookings, BookingWithID{ID: rec.Key, Booking: b})
	}
	sort.Slice(bookings, func(i, j int) bool {
		return bookings[i].CheckInDate > bookings[j].CheckInDate
	})
	return bookings, nil
}

// CheckAvailability returns the rooms free for the requested interval. A room
// is blocked by any overlapping booking that is neither cancelled nor already
// checked in; live occupancy only blocks requests whose check-in is today.
func (s *bookingService) CheckAvailability(ctx context.Context, checkInDate, checkOutDate string) ([]string, error) {
	checkIn, err := time.Parse(dateLayout, checkInDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date format, use YYYY-MM-DD", domain.ErrValidation)
	}
	checkOut, err := time.Parse(dateLayout, checkOutDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date format, use YYYY-MM-DD", domain.ErrValidation)
	}

	bookingRecords, err := s.st.List(ctx, store.CollBookings)
	if err != nil {
		return nil, err
	}
	blocked := make(map[string]bool)
	for _, rec := range bookingRecords {
		var b domain.Booking
		if err := rec.Decode(&b); err != nil {
			return nil, err
		}
		if b.Status == domain.BookingCancelled || b.Status == domain.BookingCheckedIn {
			continue
		}
		bIn, err1 := time.Parse(dateLayout, b.CheckInDate)
		bOut, err2 := time.Parse(dateLayout, b.CheckOutDate)
		if err1 != nil || err2 != nil {
			continue
		}
		if checkIn.Before(bOut) && checkOut.After(bIn) {
			blocked[b.Room] = true
		}
	}

	roomRecords, err := s.st.List(ctx, store.CollRooms)
	if err != nil {
		return nil, err
	}
	today := s.clock.Now().Format(dateLayout)
	var available []string
	for _, rec := range roomRecords {
		if blocked[rec.Key] {
			continue
		}
		if checkInDate == today {
			var r domain.Room
			if err := rec.Decode(&r); err != nil {
				return nil, err
			}
			if r.Status == domain.RoomOccupied {
				continue
			}
		}
		available = append(available, rec.Key)
	}
	sort.Slice(available, func(i, j int) bool {
		a, errA := strconv.Atoi(available[i])
		b, errB := strconv.Atoi(available[j])
		if errA != nil || errB != nil {
			return available[i] < available[j]
		}
		return a < b
	})
	return available, nil
}

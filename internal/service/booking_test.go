package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lodge-backend/internal/domain"
	"lodge-backend/internal/store"
)

func newBookingFixture(t *testing.T) (BookingService, store.RecordStore, *fixedClock) {
	t.Helper()
	st := store.NewMemoryStore()
	clock := testClock()
	svc := NewBookingService(st, clock, NewSerialService(st), false)
	addVacantRoom(t, st, "101")
	addVacantRoom(t, st, "205")
	return svc, st, clock
}

func validBooking() CreateBookingRequest {
	return CreateBookingRequest{
		Room:         "101",
		GuestName:    "Ravi",
		GuestMobile:  "9876543210",
		CheckInDate:  "2026-03-15",
		CheckOutDate: "2026-03-18",
		TotalAmount:  3000,
	}
}

func TestCreateBookingValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newBookingFixture(t)

	for name, mutate := range map[string]func(*CreateBookingRequest){
		"missing room":     func(r *CreateBookingRequest) { r.Room = "" },
		"missing name":     func(r *CreateBookingRequest) { r.GuestName = "" },
		"missing mobile":   func(r *CreateBookingRequest) { r.GuestMobile = "" },
		"missing checkin":  func(r *CreateBookingRequest) { r.CheckInDate = "" },
		"missing checkout": func(r *CreateBookingRequest) { r.CheckOutDate = "" },
		"zero total":       func(r *CreateBookingRequest) { r.TotalAmount = 0 },
		"bad date":         func(r *CreateBookingRequest) { r.CheckInDate = "15/03/2026" },
	} {
		t.Run(name, func(t *testing.T) {
			req := validBooking()
			mutate(&req)
			_, err := svc.Create(ctx, req)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestCreateBookingWithAdvance(t *testing.T) {
	ctx := context.Background()
	svc, st, _ := newBookingFixture(t)

	req := validBooking()
	req.PaidAmount = 1000
	req.PaymentMethod = domain.ChannelOnline
	id, err := svc.Create(ctx, req)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	var booking domain.Booking
	require.NoError(t, st.Get(ctx, store.CollBookings, id, &booking))
	assert.Equal(t, domain.BookingConfirmed, booking.Status)
	assert.EqualValues(t, 2000, booking.Balance)
	assert.Equal(t, "2026-03-10", booking.BookingDate)

	totals := getTotalsDoc(t, st)
	assert.EqualValues(t, 1000, totals[domain.ChannelOnline])
	assert.EqualValues(t, 1000, totals[domain.TotalAdvanceBookings])

	online := getLogEntries(t, st, domain.ChannelOnline)
	require.Len(t, online, 1)
	assert.Equal(t, "booking_advance", online[0].Type)
	assert.Equal(t, id, online[0].BookingID)

	payments := getLogEntries(t, st, domain.LogBookingPayments)
	require.Len(t, payments, 1)
	assert.Equal(t, "advance", payments[0].Type)
}

func TestCreateBookingWithoutAdvanceWritesNoEntries(t *testing.T) {
	ctx := context.Background()
	svc, st, _ := newBookingFixture(t)

	_, err := svc.Create(ctx, validBooking())
	require.NoError(t, err)

	assert.Empty(t, getLogEntries(t, st, domain.ChannelCash))
	assert.Empty(t, getLogEntries(t, st, domain.LogBookingPayments))
}

func TestUpdateBookingAdditionalPayment(t *testing.T) {
	ctx := context.Background()
	svc, st, _ := newBookingFixture(t)

	req := validBooking()
	req.PaidAmount = 1000
	id, err := svc.Create(ctx, req)
	require.NoError(t, err)

	booking, err := svc.Update(ctx, UpdateBookingRequest{BookingID: id, NewPayment: 500, PaymentMethod: domain.ChannelCash})
	require.NoError(t, err)
	assert.EqualValues(t, 1500, booking.PaidAmount)
	assert.EqualValues(t, 1500, booking.Balance)

	payments := getLogEntries(t, st, domain.LogBookingPayments)
	require.Len(t, payments, 2)
	assert.Equal(t, "additional_payment", payments[1].Type)
}

func TestUpdateBookingFieldWhitelist(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newBookingFixture(t)

	id, err := svc.Create(ctx, validBooking())
	require.NoError(t, err)

	newRoom := "205"
	newTotal := int64(4000)
	booking, err := svc.Update(ctx, UpdateBookingRequest{BookingID: id, Room: &newRoom, TotalAmount: &newTotal})
	require.NoError(t, err)
	assert.Equal(t, "205", booking.Room)
	assert.EqualValues(t, 4000, booking.TotalAmount)
	assert.EqualValues(t, 4000, booking.Balance)
	// Untouched fields survive.
	assert.Equal(t, "Ravi", booking.GuestName)

	_, err = svc.Update(ctx, UpdateBookingRequest{BookingID: "nope"})
	assert.ErrorIs(t, err, domain.ErrBookingNotFound)
}

func TestCancelBookingWithRefund(t *testing.T) {
	ctx := context.Background()
	svc, st, _ := newBookingFixture(t)

	req := validBooking()
	req.PaidAmount = 1000
	id, err := svc.Create(ctx, req)
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(ctx, CancelBookingRequest{
		BookingID:    id,
		RefundAmount: 800,
		RefundMethod: domain.ChannelCash,
		Reason:       "plans changed",
	}))

	var booking domain.Booking
	require.NoError(t, st.Get(ctx, store.CollBookings, id, &booking))
	assert.Equal(t, domain.BookingCancelled, booking.Status)
	assert.Equal(t, "plans changed", booking.CancellationReason)
	assert.Equal(t, "2026-03-10", booking.CancellationDate)
	assert.EqualValues(t, 200, booking.PaidAmount)

	refunds := getLogEntries(t, st, domain.LogRefunds)
	require.Len(t, refunds, 1)
	assert.Equal(t, "Booking cancellation refund", refunds[0].Note)
	assert.EqualValues(t, 800, getTotalsDoc(t, st)[domain.TotalRefunds])
}

func TestConvertBookingToCheckIn(t *testing.T) {
	ctx := context.Background()
	svc, st, _ := newBookingFixture(t)

	req := validBooking()
	req.PaidAmount = 1000
	id, err := svc.Create(ctx, req)
	require.NoError(t, err)

	res, err := svc.ConvertToCheckIn(ctx, ConvertBookingRequest{
		BookingID:        id,
		RemainingPayment: 1500,
		PaymentMethod:    domain.ChannelCash,
		RoomPrice:        1000,
	})
	require.NoError(t, err)
	assert.Equal(t, "101", res.Room)

	room := getRoomDoc(t, st, "101")
	assert.Equal(t, domain.RoomOccupied, room.Status)
	require.NotNil(t, room.Guest)
	assert.Equal(t, "Ravi", room.Guest.Name)
	assert.EqualValues(t, 1000, room.Guest.Price)
	// 3000 total - 1000 advance - 1500 now = 500 carried onto the room.
	assert.EqualValues(t, 500, room.Balance)

	var booking domain.Booking
	require.NoError(t, st.Get(ctx, store.CollBookings, id, &booking))
	assert.Equal(t, domain.BookingCheckedIn, booking.Status)
	assert.Equal(t, "2026-03-10 14:30", booking.CheckInTime)

	totals := getTotalsDoc(t, st)
	assert.EqualValues(t, 1500, totals[domain.ChannelCash])
	assert.EqualValues(t, 500, totals[domain.ChannelBalance])

	balanceEntries := getLogEntries(t, st, domain.ChannelBalance)
	require.Len(t, balanceEntries, 1)
	assert.Equal(t, "Remaining balance from booking", balanceEntries[0].Note)

	// A second conversion must fail: the booking is no longer confirmed.
	_, err = svc.ConvertToCheckIn(ctx, ConvertBookingRequest{BookingID: id})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestConvertBookingRequiresVacantRoom(t *testing.T) {
	ctx := context.Background()
	svc, st, _ := newBookingFixture(t)

	rooms := NewRoomService(st, testClock(), NewSerialService(st), false)
	_, err := rooms.CheckIn(ctx, CheckInRequest{Room: "101", Name: "Walk-in", Price: 500, AmountPaid: 500, Payment: domain.ChannelCash})
	require.NoError(t, err)

	id, err := svc.Create(ctx, validBooking())
	require.NoError(t, err)

	_, err = svc.ConvertToCheckIn(ctx, ConvertBookingRequest{BookingID: id})
	assert.ErrorIs(t, err, domain.ErrRoomNotVacant)
}

func TestListBookingsSortedByCheckInDateDesc(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newBookingFixture(t)

	early := validBooking()
	early.CheckInDate = "2026-03-12"
	_, err := svc.Create(ctx, early)
	require.NoError(t, err)

	late := validBooking()
	late.Room = "205"
	late.CheckInDate = "2026-03-20"
	_, err = svc.Create(ctx, late)
	require.NoError(t, err)

	bookings, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, bookings, 2)
	assert.Equal(t, "2026-03-20", bookings[0].CheckInDate)
	assert.Equal(t, "2026-03-12", bookings[1].CheckInDate)
}

func TestCheckAvailability(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newBookingFixture(t)

	req := validBooking() // room 101, Mar 15-18
	_, err := svc.Create(ctx, req)
	require.NoError(t, err)

	// Overlapping interval blocks room 101.
	available, err := svc.CheckAvailability(ctx, "2026-03-16", "2026-03-17")
	require.NoError(t, err)
	assert.Equal(t, []string{"205"}, available)

	// Back-to-back is not an overlap: a stay ending on the 15th can hand
	// over to one starting the 15th.
	available, err = svc.CheckAvailability(ctx, "2026-03-12", "2026-03-15")
	require.NoError(t, err)
	assert.Equal(t, []string{"101", "205"}, available)
}

func TestCheckAvailabilityCancelledBookingDoesNotBlock(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newBookingFixture(t)

	id, err := svc.Create(ctx, validBooking())
	require.NoError(t, err)
	require.NoError(t, svc.Cancel(ctx, CancelBookingRequest{BookingID: id}))

	available, err := svc.CheckAvailability(ctx, "2026-03-15", "2026-03-18")
	require.NoError(t, err)
	assert.Equal(t, []string{"101", "205"}, available)
}

func TestCheckAvailabilityTodayExcludesOccupiedRooms(t *testing.T) {
	ctx := context.Background()
	svc, st, _ := newBookingFixture(t)

	rooms := NewRoomService(st, testClock(), NewSerialService(st), false)
	_, err := rooms.CheckIn(ctx, CheckInRequest{Room: "101", Name: "Walk-in", Price: 500, AmountPaid: 500, Payment: domain.ChannelCash})
	require.NoError(t, err)

	// Checking in today: the occupied room is unavailable.
	available, err := svc.CheckAvailability(ctx, "2026-03-10", "2026-03-12")
	require.NoError(t, err)
	assert.Equal(t, []string{"205"}, available)

	// A future interval ignores live occupancy.
	available, err = svc.CheckAvailability(ctx, "2026-03-20", "2026-03-22")
	require.NoError(t, err)
	assert.Equal(t, []string{"101", "205"}, available)
}

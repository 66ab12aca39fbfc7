package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lodge-backend/internal/domain"
	"lodge-backend/internal/store"
)

func newTransferFixture(t *testing.T) (TransferService, RoomService, store.RecordStore, *fixedClock) {
	t.Helper()
	st := store.NewMemoryStore()
	clock := testClock()
	rooms := NewRoomService(st, clock, NewSerialService(st), false)
	transfers := NewTransferService(st, clock)
	addVacantRoom(t, st, "101")
	addVacantRoom(t, st, "205")
	return transfers, rooms, st, clock
}

func TestTransferValidation(t *testing.T) {
	ctx := context.Background()
	transfers, rooms, _, _ := newTransferFixture(t)

	assert.ErrorIs(t, transfers.Transfer(ctx, TransferRequest{OldRoom: "101", NewRoom: "101"}), domain.ErrValidation)
	assert.ErrorIs(t, transfers.Transfer(ctx, TransferRequest{OldRoom: "101", NewRoom: "999"}), domain.ErrRoomNotFound)

	// Vacant source.
	assert.ErrorIs(t, transfers.Transfer(ctx, TransferRequest{OldRoom: "101", NewRoom: "205"}), domain.ErrRoomNotOccupied)

	// Occupied destination.
	_, err := rooms.CheckIn(ctx, CheckInRequest{Room: "101", Name: "Ravi", Price: 1000, AmountPaid: 400, Payment: domain.ChannelCash})
	require.NoError(t, err)
	_, err = rooms.CheckIn(ctx, CheckInRequest{Room: "205", Name: "Meena", Price: 800, AmountPaid: 800, Payment: domain.ChannelCash})
	require.NoError(t, err)
	assert.ErrorIs(t, transfers.Transfer(ctx, TransferRequest{OldRoom: "101", NewRoom: "205"}), domain.ErrRoomNotVacant)
}

func TestTransferMovesStayAndRewritesLogs(t *testing.T) {
	ctx := context.Background()
	transfers, rooms, st, clock := newTransferFixture(t)

	_, err := rooms.CheckIn(ctx, CheckInRequest{Room: "101", Name: "Ravi", Price: 1000, AmountPaid: 400, Payment: domain.ChannelCash})
	require.NoError(t, err)
	clock.Advance(time.Hour)
	_, err = rooms.AddOn(ctx, AddOnRequest{Room: "101", Item: "Dinner", UnitPrice: 200, PaymentMethod: domain.ChannelBalance})
	require.NoError(t, err)

	clock.Advance(time.Hour)
	require.NoError(t, transfers.Transfer(ctx, TransferRequest{OldRoom: "101", NewRoom: "205"}))

	oldRoom := getRoomDoc(t, st, "101")
	assert.Equal(t, domain.RoomVacant, oldRoom.Status)
	assert.Nil(t, oldRoom.Guest)

	newRoom := getRoomDoc(t, st, "205")
	assert.Equal(t, domain.RoomOccupied, newRoom.Status)
	require.NotNil(t, newRoom.Guest)
	assert.Equal(t, "Ravi", newRoom.Guest.Name)
	assert.EqualValues(t, 1000, newRoom.Guest.Price)
	assert.EqualValues(t, 600, newRoom.Balance)
	require.Len(t, newRoom.AddOns, 1)

	// Every ledger entry of the stay now points at the new room and is
	// marked shifted.
	for _, channel := range []string{domain.ChannelCash, domain.ChannelBalance, domain.LogAddOns} {
		for _, e := range getLogEntries(t, st, channel) {
			assert.Equal(t, "205", e.Room, "channel %s", channel)
			assert.True(t, e.Shifted, "channel %s", channel)
			assert.Equal(t, "101", e.OldRoom, "channel %s", channel)
		}
	}

	shifts := getLogEntries(t, st, domain.LogRoomShifts)
	require.Len(t, shifts, 1)
	assert.Equal(t, "Transferred from Room 101 to Room 205", shifts[0].Note)
	assert.Equal(t, "205", shifts[0].Room)
	assert.Equal(t, "101", shifts[0].OldRoom)
}

func TestTransferAppliesNewPrice(t *testing.T) {
	ctx := context.Background()
	transfers, rooms, st, _ := newTransferFixture(t)

	_, err := rooms.CheckIn(ctx, CheckInRequest{Room: "101", Name: "Ravi", Price: 1000, AmountPaid: 1000, Payment: domain.ChannelCash})
	require.NoError(t, err)

	require.NoError(t, transfers.Transfer(ctx, TransferRequest{OldRoom: "101", NewRoom: "205", NewPrice: 1500}))
	assert.EqualValues(t, 1500, getRoomDoc(t, st, "205").Guest.Price)
}

func TestTransferLeavesPriorStayUntouched(t *testing.T) {
	ctx := context.Background()
	transfers, rooms, st, clock := newTransferFixture(t)

	// An earlier guest with the same name stayed in the same room and
	// checked out before the current stay began.
	_, err := rooms.CheckIn(ctx, CheckInRequest{Room: "101", Name: "Ravi", Price: 500, AmountPaid: 500, Payment: domain.ChannelCash})
	require.NoError(t, err)
	_, err = rooms.FinalCheckout(ctx, FinalCheckoutRequest{Room: "101"})
	require.NoError(t, err)

	clock.Advance(48 * time.Hour)
	_, err = rooms.CheckIn(ctx, CheckInRequest{Room: "101", Name: "Ravi", Price: 1000, AmountPaid: 400, Payment: domain.ChannelCash})
	require.NoError(t, err)

	require.NoError(t, transfers.Transfer(ctx, TransferRequest{OldRoom: "101", NewRoom: "205"}))

	cash := getLogEntries(t, st, domain.ChannelCash)
	require.Len(t, cash, 2)

	// The prior stay's entry keeps its original room.
	assert.Equal(t, "101", cash[0].Room)
	assert.False(t, cash[0].Shifted)

	// The current stay's entry moved.
	assert.Equal(t, "205", cash[1].Room)
	assert.True(t, cash[1].Shifted)
}

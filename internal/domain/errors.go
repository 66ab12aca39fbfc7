package domain

import "errors"

// Sentinel errors for the three failure classes every operation can surface:
// invalid input, a record in the wrong state, and a business rule violation.
// All are recovered at the operation boundary and reported as a failure
// result; none are fatal.
var (
	ErrValidation = errors.New("invalid request")

	ErrRoomNotFound       = errors.New("room not found")
	ErrRoomNotOccupied    = errors.New("room is not occupied")
	ErrRoomNotVacant      = errors.New("room is not vacant")
	ErrRoomExists         = errors.New("room already exists")
	ErrBookingNotFound    = errors.New("invalid booking ID")
	ErrSettlementNotFound = errors.New("settlement not found")

	ErrBalanceNotCleared = errors.New("please clear the balance before checkout")
	ErrExcessiveRefund   = errors.New("refund amount exceeds available balance")
	ErrExcessivePayment  = errors.New("payment exceeds remaining settlement amount")
	ErrExcessiveDiscount = errors.New("discount exceeds remaining settlement amount")
)

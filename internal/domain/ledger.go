package domain

// Payment channels. Cash and online are immediate money; balance defers the
// amount onto the room.
const (
	ChannelCash    = "cash"
	ChannelOnline  = "online"
	ChannelBalance = "balance"
)

// Dedicated logs that are not payment channels.
const (
	LogAddOns          = "add_ons"
	LogRefunds         = "refunds"
	LogRenewals        = "renewals"
	LogDiscounts       = "discounts"
	LogExpenses        = "expenses"
	LogRoomShifts      = "room_shifts"
	LogBookingPayments = "booking_payments"
)

// Totals keys beyond the payment channels.
const (
	TotalRefunds         = "refunds"
	TotalAdvanceBookings = "advance_bookings"
	TotalExpenses        = "expenses"
)

// IsPaymentChannel reports whether ch is a channel money can be taken in.
func IsPaymentChannel(ch string) bool {
	return ch == ChannelCash || ch == ChannelOnline || ch == ChannelBalance
}

// LedgerEntry is one record in a channel log. Only the fields relevant to the
// originating operation are set; entries are immutable once written except for
// the room/shift fields rewritten during a room transfer.
type LedgerEntry struct {
	Room         string `json:"room,omitempty" firestore:"room,omitempty"`
	Name         string `json:"name,omitempty" firestore:"name,omitempty"`
	Amount       int64  `json:"amount" firestore:"amount"`
	Date         string `json:"date" firestore:"date"`
	Time         string `json:"time,omitempty" firestore:"time,omitempty"`
	Type         string `json:"type,omitempty" firestore:"type,omitempty"`
	Note         string `json:"note,omitempty" firestore:"note,omitempty"`
	Item         string `json:"item,omitempty" firestore:"item,omitempty"`
	Reason       string `json:"reason,omitempty" firestore:"reason,omitempty"`
	PaymentMode  string `json:"payment_mode,omitempty" firestore:"payment_mode,omitempty"`
	Day          int    `json:"day,omitempty" firestore:"day,omitempty"`
	SerialNumber int64  `json:"serial_number,omitempty" firestore:"serial_number,omitempty"`
	BookingID    string `json:"booking_id,omitempty" firestore:"booking_id,omitempty"`
	SettlementID string `json:"settlement_id,omitempty" firestore:"settlement_id,omitempty"`

	// Room-transfer rewrite fields.
	Shifted bool   `json:"shifted,omitempty" firestore:"shifted,omitempty"`
	OldRoom string `json:"old_room,omitempty" firestore:"old_room,omitempty"`

	// Expense fields.
	Category    string `json:"category,omitempty" firestore:"category,omitempty"`
	Description string `json:"description,omitempty" firestore:"description,omitempty"`
	ExpenseType string `json:"expense_type,omitempty" firestore:"expense_type,omitempty"`
}

// ChannelLog is the stored form of one append-only channel log.
type ChannelLog struct {
	Entries []LedgerEntry `json:"entries" firestore:"entries"`
}

// Totals is the single running-totals record: channel name to signed running
// total. It is maintained by incremental adjustment, never recomputed.
type Totals map[string]int64

// NewTotals returns a totals record with every standard key present at zero.
func NewTotals() Totals {
	return Totals{
		ChannelCash:          0,
		ChannelOnline:        0,
		ChannelBalance:       0,
		TotalRefunds:         0,
		TotalAdvanceBookings: 0,
		TotalExpenses:        0,
	}
}

// DailyCounter backs per-day serial number allocation. Count only ever
// increases; the document key is the calendar date.
type DailyCounter struct {
	Count int64 `json:"count" firestore:"count"`
}

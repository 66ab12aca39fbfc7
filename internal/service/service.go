// Package service implements the lodge's ledger and inventory operations.
// Every money-moving operation reads current room/totals/log state, computes
// the new state in memory, and commits all resulting writes as one atomic
// batch. Only the serial counter uses the store's transaction primitive; two
// concurrent operations over the same room or totals record can therefore
// overwrite each other's update. That lost-update window is a documented
// property of the design, accepted for the low write rates a single lodge
// produces; do not rely on these operations being linearizable.
package service

import (
	"context"
	"time"

	"lodge-backend/internal/domain"
)

// Clock supplies the calendar dates and minute-precision timestamps stamped
// on every record. Injected so tests can pin time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func SystemClock() Clock { return systemClock{} }

const (
	dateLayout     = "2006-01-02"
	timeLayout     = "15:04"
	minuteLayout   = "2006-01-02 15:04"
	settingsLayout = "2006-01-02 15:04:05"
)

// SerialService issues per-day, strictly increasing serial numbers.
type SerialService interface {
	// Allocate returns the next serial number for the given calendar date.
	// Concurrent callers for the same date never receive the same number;
	// numbers are never reused even if the caller's dependent write fails.
	Allocate(ctx context.Context, date string) (int64, error)
}

type CheckInRequest struct {
	Room       string
	Name       string
	Mobile     string
	Price      int64
	Guests     int
	AmountPaid int64
	Payment    string
	HasAC      bool
	PhotoPath  string
}

type CheckInResult struct {
	Balance      int64
	SerialNumber int64
	Message      string
}

type PaymentResult struct {
	NewBalance int64
	Message    string
}

type FinalCheckoutRequest struct {
	Room            string
	SettleLater     bool
	SettlementNotes string
	RefundMethod    string
}

type FinalCheckoutResult struct {
	SettlementID string
	Message      string
}

type AddOnRequest struct {
	Room          string
	Item          string
	UnitPrice     int64
	Quantity      int
	PaymentMethod string
}

type GuestHistory struct {
	Cash     []domain.LedgerEntry `json:"cash"`
	Online   []domain.LedgerEntry `json:"online"`
	Refunds  []domain.LedgerEntry `json:"refunds"`
	AddOns   []domain.LedgerEntry `json:"addons"`
	Renewals []domain.LedgerEntry `json:"renewals"`
}

type RoomService interface {
	CheckIn(ctx context.Context, req CheckInRequest) (*CheckInResult, error)
	RecordPayment(ctx context.Context, room string, amount int64, paymentMode string) (*PaymentResult, error)
	Refund(ctx context.Context, room string, amount int64, refundMethod string) error
	FinalCheckout(ctx context.Context, req FinalCheckoutRequest) (*FinalCheckoutResult, error)
	AddOn(ctx context.Context, req AddOnRequest) (string, error)
	ApplyDiscount(ctx context.Context, room string, amount int64, reason string) error
	RenewRent(ctx context.Context, room string) (int, error)
	UpdateCheckInTime(ctx context.Context, room, checkinTime string) error
	AddRoom(ctx context.Context, room string) error
	GetRoom(ctx context.Context, room string) (*domain.Room, error)
	ListRooms(ctx context.Context) (map[string]domain.Room, error)
	GuestHistory(ctx context.Context, room, name string) (*GuestHistory, error)
}

type TransferRequest struct {
	OldRoom  string
	NewRoom  string
	NewPrice int64 // 0 keeps the contracted price
}

type TransferService interface {
	Transfer(ctx context.Context, req TransferRequest) error
}

type CreateBookingRequest struct {
	Room          string
	GuestName     string
	GuestMobile   string
	CheckInDate   string
	CheckOutDate  string
	TotalAmount   int64
	PaidAmount    int64
	PaymentMethod string
	Notes         string
	PhotoPath     string
	GuestCount    int
}

// UpdateBookingRequest carries an optional additional payment plus the
// editable field whitelist; nil pointers leave a field unchanged.
type UpdateBookingRequest struct {
	BookingID     string
	NewPayment    int64
	PaymentMethod string

	GuestName    *string
	GuestMobile  *string
	CheckInDate  *string
	CheckOutDate *string
	Room         *string
	Notes        *string
	GuestCount   *int
	TotalAmount  *int64
	Status       *string
}

type CancelBookingRequest struct {
	BookingID    string
	RefundAmount int64
	RefundMethod string
	Reason       string
}

type ConvertBookingRequest struct {
	BookingID        string
	RemainingPayment int64
	PaymentMethod    string
	RoomPrice        int64 // 0 falls back to the booking's total amount
}

type ConvertBookingResult struct {
	Room         string
	SerialNumber int64
}

// BookingWithID pairs a booking with its document key for listings.
type BookingWithID struct {
	ID string `json:"booking_id"`
	domain.Booking
}

type BookingService interface {
	Create(ctx context.Context, req CreateBookingRequest) (string, error)
	Update(ctx context.Context, req UpdateBookingRequest) (*domain.Booking, error)
	Cancel(ctx context.Context, req CancelBookingRequest) error
	ConvertToCheckIn(ctx context.Context, req ConvertBookingRequest) (*ConvertBookingResult, error)
	List(ctx context.Context) ([]BookingWithID, error)
	CheckAvailability(ctx context.Context, checkInDate, checkOutDate string) ([]string, error)
}

type CollectSettlementRequest struct {
	SettlementID   string
	Amount         int64 // 0 collects the full remaining amount
	PaymentMethod  string
	Discount       int64
	DiscountReason string
}

type CollectSettlementResult struct {
	Paid      int64
	Remaining int64
	Status    domain.SettlementStatus
}

type SettlementWithID struct {
	ID string `json:"settlement_id"`
	domain.Settlement
}

type SettlementService interface {
	Collect(ctx context.Context, req CollectSettlementRequest) (*CollectSettlementResult, error)
	Cancel(ctx context.Context, settlementID string, hardDelete bool, reason string) error
	List(ctx context.Context) ([]SettlementWithID, error)
}

type AddExpenseRequest struct {
	Date          string
	Category      string
	Description   string
	Amount        int64
	PaymentMethod string
	ExpenseType   string // "transaction" or "report"
}

// Report summarizes money flow over an inclusive date range.
type Report struct {
	CashTotal               int64                `json:"cash_total"`
	OnlineTotal             int64                `json:"online_total"`
	AddOnTotal              int64                `json:"addon_total"`
	RefundTotal             int64                `json:"refund_total"`
	ExpenseTotal            int64                `json:"expense_total"`
	TransactionExpenseTotal int64                `json:"transaction_expense_total"`
	ReportExpenseTotal      int64                `json:"report_expense_total"`
	TotalRevenue            int64                `json:"total_revenue"`
	CheckIns                int                  `json:"checkins"`
	Renewals                int                  `json:"renewals"`
	CashLogs                []domain.LedgerEntry `json:"cash_logs"`
	OnlineLogs              []domain.LedgerEntry `json:"online_logs"`
	AddOnLogs               []domain.LedgerEntry `json:"addon_logs"`
	RefundLogs              []domain.LedgerEntry `json:"refund_logs"`
	RenewalLogs             []domain.LedgerEntry `json:"renewal_logs"`
	ExpenseLogs             []domain.LedgerEntry `json:"expense_logs"`
}

type ExpenseService interface {
	AddExpense(ctx context.Context, req AddExpenseRequest) error
	Report(ctx context.Context, startDate, endDate string) (*Report, error)
}

// Notifier delivers operational notifications. Failures are logged and
// dropped by callers; notification delivery is never part of a commit.
type Notifier interface {
	SendRentDueSummary(ctx context.Context, subject, body string) error
}

package domain

type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
	BookingCheckedIn BookingStatus = "checked_in"
	BookingCancelled BookingStatus = "cancelled"
)

// Booking is a reservation with its own payment sub-ledger. Once converted to
// a check-in the derived guest data is copied into the room and the booking is
// left behind as an audit record.
type Booking struct {
	Room          string        `json:"room" firestore:"room"`
	GuestName     string        `json:"guest_name" firestore:"guest_name"`
	GuestMobile   string        `json:"guest_mobile" firestore:"guest_mobile"`
	BookingDate   string        `json:"booking_date" firestore:"booking_date"`
	CheckInDate   string        `json:"check_in_date" firestore:"check_in_date"`
	CheckOutDate  string        `json:"check_out_date" firestore:"check_out_date"`
	Status        BookingStatus `json:"status" firestore:"status"`
	TotalAmount   int64         `json:"total_amount" firestore:"total_amount"`
	PaidAmount    int64         `json:"paid_amount" firestore:"paid_amount"`
	Balance       int64         `json:"balance" firestore:"balance"`
	PaymentMethod string        `json:"payment_method" firestore:"payment_method"`
	Notes         string        `json:"notes,omitempty" firestore:"notes,omitempty"`
	PhotoPath     string        `json:"photo_path,omitempty" firestore:"photo_path,omitempty"`
	GuestCount    int           `json:"guest_count" firestore:"guest_count"`

	CancellationDate   string `json:"cancellation_date,omitempty" firestore:"cancellation_date,omitempty"`
	CancellationReason string `json:"cancellation_reason,omitempty" firestore:"cancellation_reason,omitempty"`
	CheckInTime        string `json:"check_in_time,omitempty" firestore:"check_in_time,omitempty"`
}

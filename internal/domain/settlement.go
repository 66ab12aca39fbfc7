package domain

type SettlementStatus string

const (
	SettlementPending   SettlementStatus = "pending"
	SettlementPartial   SettlementStatus = "partial"
	SettlementPaid      SettlementStatus = "paid"
	SettlementCancelled SettlementStatus = "cancelled"
)

// SettlementPayment is one partial collection against a settlement.
type SettlementPayment struct {
	Amount      int64  `json:"amount" firestore:"amount"`
	PaymentMode string `json:"payment_mode" firestore:"payment_mode"`
	Date        string `json:"date" firestore:"date"`
	Time        string `json:"time" firestore:"time"`
}

// Settlement is a balance deferred at final checkout instead of being
// collected. Remaining tracks what is still outstanding; Amount keeps the
// amount originally deferred.
type Settlement struct {
	GuestName   string              `json:"guest_name" firestore:"guest_name"`
	GuestMobile string              `json:"guest_mobile" firestore:"guest_mobile"`
	Room        string              `json:"room" firestore:"room"`
	Amount      int64               `json:"amount" firestore:"amount"`
	Remaining   int64               `json:"remaining" firestore:"remaining"`
	Status      SettlementStatus    `json:"status" firestore:"status"`
	Notes       string              `json:"notes,omitempty" firestore:"notes,omitempty"`
	Date        string              `json:"date" firestore:"date"`
	Time        string              `json:"time" firestore:"time"`
	Payments    []SettlementPayment `json:"payments,omitempty" firestore:"payments,omitempty"`

	CancellationReason string `json:"cancellation_reason,omitempty" firestore:"cancellation_reason,omitempty"`
}

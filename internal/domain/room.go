package domain

type RoomStatus string

const (
	RoomVacant   RoomStatus = "vacant"
	RoomOccupied RoomStatus = "occupied"
)

// Guest is the occupant snapshot embedded in a Room (and copied from a
// Booking on conversion; there is no live reference back to the booking).
type Guest struct {
	Name    string `json:"name" firestore:"name"`
	Mobile  string `json:"mobile" firestore:"mobile"`
	Price   int64  `json:"price" firestore:"price"`
	Guests  int    `json:"guests" firestore:"guests"`
	Payment string `json:"payment" firestore:"payment"`
	Balance int64  `json:"balance" firestore:"balance"`
	HasAC   bool   `json:"has_ac" firestore:"has_ac"`
	Photo   string `json:"photo,omitempty" firestore:"photo,omitempty"`
}

// AddOn is one item sold to an occupied room. Price is the total
// (unit price times quantity).
type AddOn struct {
	Room          string `json:"room" firestore:"room"`
	Item          string `json:"item" firestore:"item"`
	UnitPrice     int64  `json:"unit_price" firestore:"unit_price"`
	Quantity      int    `json:"quantity" firestore:"quantity"`
	Price         int64  `json:"price" firestore:"price"`
	Date          string `json:"date" firestore:"date"`
	Time          string `json:"time" firestore:"time"`
	PaymentMethod string `json:"payment_method" firestore:"payment_method"`
}

type Discount struct {
	Amount int64  `json:"amount" firestore:"amount"`
	Reason string `json:"reason" firestore:"reason"`
	Date   string `json:"date" firestore:"date"`
	Time   string `json:"time" firestore:"time"`
}

// Room is one rentable room. Guest is non-nil exactly while the room is
// occupied; Balance is positive when the guest owes money and negative when
// the lodge owes the guest.
type Room struct {
	Status       RoomStatus `json:"status" firestore:"status"`
	Guest        *Guest     `json:"guest" firestore:"guest"`
	CheckinTime  string     `json:"checkin_time,omitempty" firestore:"checkin_time,omitempty"`
	Balance      int64      `json:"balance" firestore:"balance"`
	AddOns       []AddOn    `json:"add_ons" firestore:"add_ons"`
	Discounts    []Discount `json:"discounts,omitempty" firestore:"discounts,omitempty"`
	RenewalCount int        `json:"renewal_count" firestore:"renewal_count"`
}

// VacantRoom returns the reset state a room takes after checkout or as the
// source side of a transfer.
func VacantRoom() Room {
	return Room{Status: RoomVacant, AddOns: []AddOn{}}
}

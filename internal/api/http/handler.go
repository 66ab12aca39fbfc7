// Package http exposes every ledger operation over a JSON-over-POST API.
// Handlers are thin: decode, call the service, translate the result. All
// business rules live in internal/service.
package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"lodge-backend/internal/service"
	"lodge-backend/internal/store"
)

// Handler bundles the services behind the HTTP surface.
type Handler struct {
	rooms       service.RoomService
	transfers   service.TransferService
	bookings    service.BookingService
	settlements service.SettlementService
	expenses    service.ExpenseService
	serials     service.SerialService
	st          store.RecordStore
}

func NewHandler(
	rooms service.RoomService,
	transfers service.TransferService,
	bookings service.BookingService,
	settlements service.SettlementService,
	expenses service.ExpenseService,
	serials service.SerialService,
	st store.RecordStore,
) *Handler {
	return &Handler{
		rooms:       rooms,
		transfers:   transfers,
		bookings:    bookings,
		settlements: settlements,
		expenses:    expenses,
		serials:     serials,
		st:          st,
	}
}

// Router builds the full route table.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()

	// Rooms and the money ledger.
	r.HandleFunc("/checkin", h.CheckIn).Methods(http.MethodPost)
	r.HandleFunc("/checkout", h.Checkout).Methods(http.MethodPost)
	r.HandleFunc("/add_on", h.AddOn).Methods(http.MethodPost)
	r.HandleFunc("/apply_discount", h.ApplyDiscount).Methods(http.MethodPost)
	r.HandleFunc("/renew_rent", h.RenewRent).Methods(http.MethodPost)
	r.HandleFunc("/update_checkin_time", h.UpdateCheckInTime).Methods(http.MethodPost)
	r.HandleFunc("/transfer_room", h.TransferRoom).Methods(http.MethodPost)
	r.HandleFunc("/add_room", h.AddRoom).Methods(http.MethodPost)
	r.HandleFunc("/get_room_numbers", h.GetRoomNumbers).Methods(http.MethodGet)
	r.HandleFunc("/get_data", h.GetData).Methods(http.MethodGet)
	r.HandleFunc("/get_history", h.GetHistory).Methods(http.MethodPost)

	// Expenses and reports.
	r.HandleFunc("/add_expense", h.AddExpense).Methods(http.MethodPost)
	r.HandleFunc("/reports", h.Reports).Methods(http.MethodPost)

	// Bookings.
	r.HandleFunc("/get_bookings", h.GetBookings).Methods(http.MethodGet)
	r.HandleFunc("/create_booking", h.CreateBooking).Methods(http.MethodPost)
	r.HandleFunc("/update_booking", h.UpdateBooking).Methods(http.MethodPost)
	r.HandleFunc("/cancel_booking", h.CancelBooking).Methods(http.MethodPost)
	r.HandleFunc("/convert_booking_to_checkin", h.ConvertBookingToCheckIn).Methods(http.MethodPost)
	r.HandleFunc("/check_availability", h.CheckAvailability).Methods(http.MethodPost)

	// Settlements.
	r.HandleFunc("/get_settlements", h.GetSettlements).Methods(http.MethodGet)
	r.HandleFunc("/collect_settlement", h.CollectSettlement).Methods(http.MethodPost)
	r.HandleFunc("/cancel_settlement", h.CancelSettlement).Methods(http.MethodPost)

	// Serial numbers.
	r.HandleFunc("/allocate_serial", h.AllocateSerial).Methods(http.MethodPost)

	return r
}

package http

import (
	"fmt"
	"net/http"

	"lodge-backend/internal/service"
)

func (h *Handler) GetBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.bookings.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, "", map[string]any{"bookings": bookings})
}

func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Room          string `json:"room"`
		GuestName     string `json:"guest_name"`
		GuestMobile   string `json:"guest_mobile"`
		CheckInDate   string `json:"check_in_date"`
		CheckOutDate  string `json:"check_out_date"`
		TotalAmount   int64  `json:"total_amount"`
		PaidAmount    int64  `json:"paid_amount"`
		PaymentMethod string `json:"payment_method"`
		Notes         string `json:"notes"`
		Photo         string `json:"photo"`
		GuestCount    int    `json:"guest_count"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	id, err := h.bookings.Create(r.Context(), service.CreateBookingRequest{
		Room:          body.Room,
		GuestName:     body.GuestName,
		GuestMobile:   body.GuestMobile,
		CheckInDate:   body.CheckInDate,
		CheckOutDate:  body.CheckOutDate,
		TotalAmount:   body.TotalAmount,
		PaidAmount:    body.PaidAmount,
		PaymentMethod: body.PaymentMethod,
		Notes:         body.Notes,
		PhotoPath:     body.Photo,
		GuestCount:    body.GuestCount,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, "Booking created successfully", map[string]any{"booking_id": id})
}

func (h *Handler) UpdateBooking(w http.ResponseWriter, r *http.Request) {
	var body struct {
		BookingID     string `json:"booking_id"`
		NewPayment    int64  `json:"new_payment"`
		PaymentMethod string `json:"payment_method"`

		GuestName    *string `json:"guest_name"`
		GuestMobile  *string `json:"guest_mobile"`
		CheckInDate  *string `json:"check_in_date"`
		CheckOutDate *string `json:"check_out_date"`
		Room         *string `json:"room"`
		Notes        *string `json:"notes"`
		GuestCount   *int    `json:"guest_count"`
		TotalAmount  *int64  `json:"total_amount"`
		Status       *string `json:"status"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	booking, err := h.bookings.Update(r.Context(), service.UpdateBookingRequest{
		BookingID:     body.BookingID,
		NewPayment:    body.NewPayment,
		PaymentMethod: body.PaymentMethod,
		GuestName:     body.GuestName,
		GuestMobile:   body.GuestMobile,
		CheckInDate:   body.CheckInDate,
		CheckOutDate:  body.CheckOutDate,
		Room:          body.Room,
		Notes:         body.Notes,
		GuestCount:    body.GuestCount,
		TotalAmount:   body.TotalAmount,
		Status:        body.Status,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, "Booking updated successfully", map[string]any{"booking": booking})
}

func (h *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	var body struct {
		BookingID    string `json:"booking_id"`
		RefundAmount int64  `json:"refund_amount"`
		RefundMethod string `json:"refund_method"`
		Reason       string `json:"reason"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if err := h.bookings.Cancel(r.Context(), service.CancelBookingRequest{
		BookingID:    body.BookingID,
		RefundAmount: body.RefundAmount,
		RefundMethod: body.RefundMethod,
		Reason:       body.Reason,
	}); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, "Booking cancelled successfully", nil)
}

func (h *Handler) ConvertBookingToCheckIn(w http.ResponseWriter, r *http.Request) {
	var body struct {
		BookingID        string `json:"booking_id"`
		RemainingPayment int64  `json:"remaining_payment"`
		PaymentMethod    string `json:"payment_method"`
		RoomPrice        int64  `json:"room_price"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	res, err := h.bookings.ConvertToCheckIn(r.Context(), service.ConvertBookingRequest{
		BookingID:        body.BookingID,
		RemainingPayment: body.RemainingPayment,
		PaymentMethod:    body.PaymentMethod,
		RoomPrice:        body.RoomPrice,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	extra := map[string]any{"room": res.Room}
	if res.SerialNumber > 0 {
		extra["serial_number"] = res.SerialNumber
	}
	writeSuccess(w, fmt.Sprintf("Guest checked in to Room %s", res.Room), extra)
}

func (h *Handler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CheckInDate  string `json:"check_in_date"`
		CheckOutDate string `json:"check_out_date"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	available, err := h.bookings.CheckAvailability(r.Context(), body.CheckInDate, body.CheckOutDate)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, "", map[string]any{"available_rooms": available})
}

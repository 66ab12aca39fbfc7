package http

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"

	"lodge-backend/internal/domain"
	"lodge-backend/internal/service"
	"lodge-backend/internal/store"
)

func (h *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Room       string `json:"room"`
		Name       string `json:"name"`
		Mobile     string `json:"mobile"`
		Price      int64  `json:"price"`
		Guests     int    `json:"guests"`
		AmountPaid int64  `json:"amount_paid"`
		Payment    string `json:"payment"`
		HasAC      bool   `json:"has_ac"`
		Photo      string `json:"photo"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	res, err := h.rooms.CheckIn(r.Context(), service.CheckInRequest{
		Room:       body.Room,
		Name:       body.Name,
		Mobile:     body.Mobile,
		Price:      body.Price,
		Guests:     body.Guests,
		AmountPaid: body.AmountPaid,
		Payment:    body.Payment,
		HasAC:      body.HasAC,
		PhotoPath:  body.Photo,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	extra := map[string]any{"balance": res.Balance}
	if res.SerialNumber > 0 {
		extra["serial_number"] = res.SerialNumber
	}
	writeSuccess(w, res.Message, extra)
}

// Checkout multiplexes three operations on one route, matching the original
// client protocol: a balance payment, a standalone refund, and the final
// checkout itself.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Room            string `json:"room"`
		PaymentMode     string `json:"payment_mode"`
		Amount          int64  `json:"amount"`
		IsRefund        bool   `json:"is_refund"`
		ProcessRefund   bool   `json:"process_refund"`
		FinalCheckout   bool   `json:"final_checkout"`
		SettleLater     bool   `json:"settle_later"`
		SettlementNotes string `json:"settlement_notes"`
		RefundMethod    string `json:"refund_method"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	switch {
	case body.Amount > 0 && body.PaymentMode != "" && !body.IsRefund && !body.ProcessRefund:
		res, err := h.rooms.RecordPayment(r.Context(), body.Room, body.Amount, body.PaymentMode)
		if err != nil {
			writeError(w, err)
			return
		}
		writeSuccess(w, res.Message, map[string]any{"balance": res.NewBalance})

	case body.ProcessRefund && body.IsRefund && body.Amount > 0:
		if err := h.rooms.Refund(r.Context(), body.Room, body.Amount, body.PaymentMode); err != nil {
			writeError(w, err)
			return
		}
		writeSuccess(w, fmt.Sprintf("Refund of ₹%d processed successfully", body.Amount), nil)

	case body.FinalCheckout:
		res, err := h.rooms.FinalCheckout(r.Context(), service.FinalCheckoutRequest{
			Room:            body.Room,
			SettleLater:     body.SettleLater,
			SettlementNotes: body.SettlementNotes,
			RefundMethod:    body.RefundMethod,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		extra := map[string]any{}
		if res.SettlementID != "" {
			extra["settlement_id"] = res.SettlementID
		}
		writeSuccess(w, res.Message, extra)

	default:
		writeError(w, fmt.Errorf("%w: invalid request parameters", domain.ErrValidation))
	}
}

func (h *Handler) AddOn(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Room          string `json:"room"`
		Item          string `json:"item"`
		UnitPrice     int64  `json:"unit_price"`
		Quantity      int    `json:"quantity"`
		PaymentMethod string `json:"payment_method"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	msg, err := h.rooms.AddOn(r.Context(), service.AddOnRequest{
		Room:          body.Room,
		Item:          body.Item,
		UnitPrice:     body.UnitPrice,
		Quantity:      body.Quantity,
		PaymentMethod: body.PaymentMethod,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, msg, nil)
}

func (h *Handler) ApplyDiscount(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Room   string `json:"room"`
		Amount int64  `json:"amount"`
		Reason string `json:"reason"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if err := h.rooms.ApplyDiscount(r.Context(), body.Room, body.Amount, body.Reason); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, fmt.Sprintf("Discount of ₹%d applied successfully", body.Amount), nil)
}

func (h *Handler) RenewRent(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Room string `json:"room"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	day, err := h.rooms.RenewRent(r.Context(), body.Room)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, fmt.Sprintf("Rent renewed for Day %d", day), map[string]any{"day": day})
}

func (h *Handler) UpdateCheckInTime(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Room        string `json:"room"`
		CheckinTime string `json:"checkin_time"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if err := h.rooms.UpdateCheckInTime(r.Context(), body.Room, body.CheckinTime); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, "Check-in time updated successfully", nil)
}

func (h *Handler) TransferRoom(w http.ResponseWriter, r *http.Request) {
	var body struct {
		OldRoom  string `json:"old_room"`
		NewRoom  string `json:"new_room"`
		NewPrice int64  `json:"new_price"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if err := h.transfers.Transfer(r.Context(), service.TransferRequest{
		OldRoom:  body.OldRoom,
		NewRoom:  body.NewRoom,
		NewPrice: body.NewPrice,
	}); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, fmt.Sprintf("Transferred from Room %s to Room %s", body.OldRoom, body.NewRoom), nil)
}

func (h *Handler) AddRoom(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Room string `json:"room"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if err := h.rooms.AddRoom(r.Context(), body.Room); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, fmt.Sprintf("Room %s added successfully", body.Room), nil)
}

func (h *Handler) GetRoomNumbers(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.rooms.ListRooms(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	numbers := make([]string, 0, len(rooms))
	for num := range rooms {
		numbers = append(numbers, num)
	}
	sort.Slice(numbers, func(i, j int) bool {
		a, errA := strconv.Atoi(numbers[i])
		b, errB := strconv.Atoi(numbers[j])
		if errA == nil && errB == nil {
			return a < b
		}
		return numbers[i] < numbers[j]
	})
	writeSuccess(w, "", map[string]any{"rooms": numbers})
}

// GetData returns the dashboard snapshot: every room, every log, and the
// running totals in one response.
func (h *Handler) GetData(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.rooms.ListRooms(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	logRecords, err := h.st.List(r.Context(), store.CollLogs)
	if err != nil {
		writeError(w, err)
		return
	}
	logs := make(map[string][]domain.LedgerEntry, len(logRecords))
	for _, rec := range logRecords {
		var l domain.ChannelLog
		if err := rec.Decode(&l); err != nil {
			writeError(w, err)
			return
		}
		logs[rec.Key] = l.Entries
	}
	var totals domain.Totals
	if err := h.st.Get(r.Context(), store.CollTotals, store.KeyCurrentTotals, &totals); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			writeError(w, err)
			return
		}
		totals = domain.NewTotals()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"rooms":  rooms,
		"logs":   logs,
		"totals": totals,
	})
}

func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Room string `json:"room"`
		Name string `json:"name"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	hist, err := h.rooms.GuestHistory(r.Context(), body.Room, body.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, "", map[string]any{
		"cash":     hist.Cash,
		"online":   hist.Online,
		"refunds":  hist.Refunds,
		"addons":   hist.AddOns,
		"renewals": hist.Renewals,
	})
}

func (h *Handler) AllocateSerial(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Date string `json:"date"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if body.Date == "" {
		writeError(w, fmt.Errorf("%w: date is required", domain.ErrValidation))
		return
	}
	serial, err := h.serials.Allocate(r.Context(), body.Date)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, "", map[string]any{"serial_number": serial})
}

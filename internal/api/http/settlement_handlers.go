package http

import (
	"fmt"
	"net/http"

	"lodge-backend/internal/service"
)

func (h *Handler) GetSettlements(w http.ResponseWriter, r *http.Request) {
	settlements, err := h.settlements.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, "", map[string]any{"settlements": settlements})
}

func (h *Handler) CollectSettlement(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SettlementID   string `json:"settlement_id"`
		Amount         int64  `json:"amount"`
		PaymentMethod  string `json:"payment_method"`
		Discount       int64  `json:"discount"`
		DiscountReason string `json:"discount_reason"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	res, err := h.settlements.Collect(r.Context(), service.CollectSettlementRequest{
		SettlementID:   body.SettlementID,
		Amount:         body.Amount,
		PaymentMethod:  body.PaymentMethod,
		Discount:       body.Discount,
		DiscountReason: body.DiscountReason,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, fmt.Sprintf("Payment of ₹%d collected", res.Paid), map[string]any{
		"remaining": res.Remaining,
		"status":    res.Status,
	})
}

func (h *Handler) CancelSettlement(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SettlementID string `json:"settlement_id"`
		HardDelete   bool   `json:"hard_delete"`
		Reason       string `json:"reason"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if err := h.settlements.Cancel(r.Context(), body.SettlementID, body.HardDelete, body.Reason); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, "Settlement cancelled successfully", nil)
}

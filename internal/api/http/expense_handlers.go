package http

import (
	"net/http"

	"lodge-backend/internal/service"
)

func (h *Handler) AddExpense(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Date          string `json:"date"`
		Category      string `json:"category"`
		Description   string `json:"description"`
		Amount        int64  `json:"amount"`
		PaymentMethod string `json:"payment_method"`
		ExpenseType   string `json:"expense_type"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if err := h.expenses.AddExpense(r.Context(), service.AddExpenseRequest{
		Date:          body.Date,
		Category:      body.Category,
		Description:   body.Description,
		Amount:        body.Amount,
		PaymentMethod: body.PaymentMethod,
		ExpenseType:   body.ExpenseType,
	}); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, "Expense recorded successfully", nil)
}

func (h *Handler) Reports(w http.ResponseWriter, r *http.Request) {
	var body struct {
		StartDate string `json:"start_date"`
		EndDate   string `json:"end_date"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	report, err := h.expenses.Report(r.Context(), body.StartDate, body.EndDate)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, "", map[string]any{"report": report})
}

package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"lodge-backend/internal/domain"
	"lodge-backend/internal/logger"
)

// writeJSON serializes payload with the given status code. Every endpoint
// responds with a JSON object carrying at least {success, message}.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

func writeSuccess(w http.ResponseWriter, message string, extra map[string]any) {
	body := map[string]any{"success": true}
	if message != "" {
		body["message"] = message
	}
	for k, v := range extra {
		body[k] = v
	}
	writeJSON(w, http.StatusOK, body)
}

// writeError maps domain sentinels to HTTP status codes and reports the
// failure as {success:false, message}.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrRoomNotFound),
		errors.Is(err, domain.ErrBookingNotFound),
		errors.Is(err, domain.ErrSettlementNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrRoomNotOccupied),
		errors.Is(err, domain.ErrRoomNotVacant),
		errors.Is(err, domain.ErrRoomExists),
		errors.Is(err, domain.ErrBalanceNotCleared),
		errors.Is(err, domain.ErrExcessiveRefund),
		errors.Is(err, domain.ErrExcessivePayment),
		errors.Is(err, domain.ErrExcessiveDiscount):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, map[string]any{"success": false, "message": err.Error()})
}

// decodeBody parses a JSON request body into dest.
func decodeBody(r *http.Request, dest any) error {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return domain.ErrValidation
	}
	return nil
}

package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"donortrack/internal/domain/donor"
	"donortrack/internal/domain/mailing"
	"donortrack/internal/domain/transaction"
)

// errorResponse is the JSON shape of every non-2xx API reply.
type errorResponse struct {
	Error string       `json:"error"`
	Field string       `json:"field,omitempty"`
	Rows  []rowFailure `json:"rows,omitempty"`
}

type rowFailure struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto HTTP statuses. Validation problems
// and rejected batches are client errors; unknown IDs are 404; anything
// else is logged and hidden behind a 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var donorVal *donor.ValidationError
	var transVal *transaction.ValidationError
	var mailVal *mailing.ValidationError
	var donorBatch *donor.BatchError
	var transBatch *transaction.BatchError

	switch {
	case errors.As(err, &donorVal):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: donorVal.Message, Field: donorVal.Field})
	case errors.As(err, &transVal):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: transVal.Message, Field: transVal.Field})
	case errors.As(err, &mailVal):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: mailVal.Message, Field: mailVal.Field})
	case errors.As(err, &donorBatch):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: donorBatch.Error(), Rows: rowFailures(donorBatch.Rows)})
	case errors.As(err, &transBatch):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: transBatch.Error(), Rows: transRowFailures(transBatch.Rows)})
	case errors.Is(err, donor.ErrDonorNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "donor not found"})
	case errors.Is(err, transaction.ErrTransactionNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "transaction not found"})
	case errors.Is(err, donor.ErrDuplicateID):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "donor ID already exists"})
	default:
		log.Printf("Error handling %s %s: %v", r.Method, r.URL.Path, err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func rowFailures(rows []donor.RowError) []rowFailure {
	out := make([]rowFailure, len(rows))
	for i, r := range rows {
		out[i] = rowFailure{Row: r.Row, Message: r.Message}
	}
	return out
}

func transRowFailures(rows []transaction.RowError) []rowFailure {
	out := make([]rowFailure, len(rows))
	for i, r := range rows {
		out[i] = rowFailure{Row: r.Row, Message: r.Message}
	}
	return out
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		log.Printf("Error decoding %s %s request: %v", r.Method, r.URL.Path, err)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"donortrack/internal/domain/transaction"

	"github.com/shopspring/decimal"
)

type TransactionHandler struct {
	service *transaction.Service

	refreshCutoffDays int
	refreshBatchSize  int
}

func NewTransactionHandler(service *transaction.Service, refreshCutoffDays, refreshBatchSize int) *TransactionHandler {
	return &TransactionHandler{
		service:           service,
		refreshCutoffDays: refreshCutoffDays,
		refreshBatchSize:  refreshBatchSize,
	}
}

type TransactionRequest struct {
	DonorID int64           `json:"donorId"`
	Date    string          `json:"date"`
	Amount  decimal.Decimal `json:"amount"`

	AppealCode        *string `json:"appealCode,omitempty"`
	AppealDescription *string `json:"appealDescription,omitempty"`
	PaymentType       *string `json:"paymentType,omitempty"`
	PaymentMethod     *string `json:"paymentMethod,omitempty"`
	UpdateBatchNum    *string `json:"updateBatchNum,omitempty"`
	JobDescription    *string `json:"jobDescription,omitempty"`
	ListDescription   *string `json:"listDescription,omitempty"`
}

type TransactionUpdateRequest struct {
	Date   *string          `json:"date,omitempty"`
	Amount *decimal.Decimal `json:"amount,omitempty"`

	AppealCode        *string `json:"appealCode,omitempty"`
	AppealDescription *string `json:"appealDescription,omitempty"`
	PaymentType       *string `json:"paymentType,omitempty"`
	PaymentMethod     *string `json:"paymentMethod,omitempty"`
	UpdateBatchNum    *string `json:"updateBatchNum,omitempty"`
	JobDescription    *string `json:"jobDescription,omitempty"`
	ListDescription   *string `json:"listDescription,omitempty"`
}

// BatchRequest is a gift-entry batch: one shared header plus a row per
// donor response. Row-level values override the header.
type BatchRequest struct {
	Date           string            `json:"date"`
	UpdateBatchNum string            `json:"updateBatchNum"`
	PaymentMethod  string            `json:"paymentMethod"`
	Rows           []BatchRowRequest `json:"rows"`
}

type BatchRowRequest struct {
	DonorID int64           `json:"donorId"`
	Amount  decimal.Decimal `json:"amount"`

	Date              *string `json:"date,omitempty"`
	AppealCode        *string `json:"appealCode,omitempty"`
	AppealDescription *string `json:"appealDescription,omitempty"`
	PaymentType       *string `json:"paymentType,omitempty"`
	JobDescription    *string `json:"jobDescription,omitempty"`
	ListDescription   *string `json:"listDescription,omitempty"`
}

// HandleTransactions records a single transaction.
func (h *TransactionHandler) HandleTransactions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req TransactionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	date, err := parseTransDate(req.Date)
	if err != nil {
		writeError(w, r, err)
		return
	}

	t, err := h.service.AddTransaction(r.Context(), transaction.CreateParams{
		DonorID:           req.DonorID,
		Date:              date,
		Amount:            req.Amount,
		AppealCode:        req.AppealCode,
		AppealDescription: req.AppealDescription,
		PaymentType:       req.PaymentType,
		PaymentMethod:     req.PaymentMethod,
		UpdateBatchNum:    req.UpdateBatchNum,
		JobDescription:    req.JobDescription,
		ListDescription:   req.ListDescription,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, t)
}

// HandleBatch records a gift-entry batch atomically.
func (h *TransactionHandler) HandleBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req BatchRequest
	if !decodeBody(w, r, &req) {
		return
	}

	params := transaction.BatchParams{
		UpdateBatchNum: req.UpdateBatchNum,
		PaymentMethod:  req.PaymentMethod,
	}
	if req.Date != "" {
		date, err := parseTransDate(req.Date)
		if err != nil {
			writeError(w, r, err)
			return
		}
		params.Date = date
	}

	for i, row := range req.Rows {
		br := transaction.BatchRow{
			DonorID:           row.DonorID,
			Amount:            row.Amount,
			AppealCode:        row.AppealCode,
			AppealDescription: row.AppealDescription,
			PaymentType:       row.PaymentType,
			JobDescription:    row.JobDescription,
			ListDescription:   row.ListDescription,
		}
		if row.Date != nil && *row.Date != "" {
			date, err := parseTransDate(*row.Date)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, errorResponse{
					Error: "batch rejected",
					Rows:  []rowFailure{{Row: i, Message: "invalid date format (use YYYY-MM-DD)"}},
				})
				return
			}
			br.Date = &date
		}
		params.Rows = append(params.Rows, br)
	}

	created, err := h.service.AddBatch(r.Context(), params)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// HandleTransactionByID dispatches GET and PUT on /api/transactions/{id}.
func (h *TransactionHandler) HandleTransactionByID(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/api/transactions/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid transaction ID"})
		return
	}

	switch r.Method {
	case http.MethodGet:
		t, err := h.service.GetTransaction(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, t)

	case http.MethodPut:
		var req TransactionUpdateRequest
		if !decodeBody(w, r, &req) {
			return
		}

		params := transaction.UpdateParams{
			Amount:            req.Amount,
			AppealCode:        req.AppealCode,
			AppealDescription: req.AppealDescription,
			PaymentType:       req.PaymentType,
			PaymentMethod:     req.PaymentMethod,
			UpdateBatchNum:    req.UpdateBatchNum,
			JobDescription:    req.JobDescription,
			ListDescription:   req.ListDescription,
		}
		if req.Date != nil && *req.Date != "" {
			date, err := parseTransDate(*req.Date)
			if err != nil {
				writeError(w, r, err)
				return
			}
			params.Date = &date
		}

		t, err := h.service.EditTransaction(r.Context(), id, params)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, t)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleRefreshSummaries recomputes stored donor summaries on demand.
// The same job runs nightly off the scheduler. An explicit cutoff_days
// query parameter overrides the configured window; zero refreshes every
// donor.
func (h *TransactionHandler) HandleRefreshSummaries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	cutoffDays := h.refreshCutoffDays
	if v := r.URL.Query().Get("cutoff_days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, r, &transaction.ValidationError{Field: "cutoff_days", Message: "cutoff days must be a non-negative number"})
			return
		}
		cutoffDays = n
	}

	refreshed, err := h.service.RefreshSummaries(r.Context(), cutoffDays, h.refreshBatchSize)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"refreshed": refreshed})
}

func parseTransDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, &transaction.ValidationError{Field: "date", Message: "invalid date format (use YYYY-MM-DD)"}
	}
	return t, nil
}

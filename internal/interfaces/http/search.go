package http

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"donortrack/internal/domain/donor"
	"donortrack/internal/domain/export"
	"donortrack/internal/domain/search"
	"donortrack/internal/domain/transaction"
)

type SearchHandler struct {
	donorService       *donor.Service
	transactionService *transaction.Service

	now func() time.Time
}

func NewSearchHandler(donorService *donor.Service, transactionService *transaction.Service) *SearchHandler {
	return &SearchHandler{
		donorService:       donorService,
		transactionService: transactionService,
		now:                time.Now,
	}
}

// RefineRequest narrows a previous search by overwriting one criteria
// field and re-running from page one.
type RefineRequest struct {
	Criteria search.Criteria `json:"criteria"`
	Field    string          `json:"field"`
	Value    string          `json:"value"`
}

// DonorExportRequest selects rows by criteria and columns by ID. An empty
// column list exports the default set; kind "document" produces a
// spreadsheet instead of CSV.
type DonorExportRequest struct {
	Criteria search.Criteria `json:"criteria"`
	Columns  []string        `json:"columns,omitempty"`
	Kind     string          `json:"kind,omitempty"`
	Title    string          `json:"title,omitempty"`
}

type TransactionExportRequest struct {
	Criteria search.TransactionCriteria `json:"criteria"`
	Kind     string                     `json:"kind,omitempty"`
	Title    string                     `json:"title,omitempty"`
}

// HandleDonorSearch runs a paged donor search.
func (h *SearchHandler) HandleDonorSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var criteria search.Criteria
	if !decodeBody(w, r, &criteria) {
		return
	}

	result, err := h.donorService.Search(r.Context(), criteria, pageParam(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// HandleDonorRefine overwrites one field of the submitted criteria and
// re-runs the search.
func (h *SearchHandler) HandleDonorRefine(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req RefineRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := req.Criteria.SetField(req.Field, req.Value); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Field: "field"})
		return
	}

	result, err := h.donorService.Search(r.Context(), req.Criteria, 1)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// HandleDonorExport streams the full result set of a donor search as a
// downloadable file.
func (h *SearchHandler) HandleDonorExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req DonorExportRequest
	if !decodeBody(w, r, &req) {
		return
	}

	donors, err := h.donorService.SearchAll(r.Context(), req.Criteria)
	if err != nil {
		writeError(w, r, err)
		return
	}

	table, err := export.DonorTable(donors, req.Columns)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Field: "columns"})
		return
	}

	h.writeExport(w, r, table, req.Title, req.Kind, "query_results")
}

// HandleTransactionSearch runs a paged transaction search.
func (h *SearchHandler) HandleTransactionSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var criteria search.TransactionCriteria
	if !decodeBody(w, r, &criteria) {
		return
	}

	result, err := h.transactionService.Search(r.Context(), criteria, pageParam(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// HandleTransactionExport streams the full result set of a transaction
// search as a downloadable file.
func (h *SearchHandler) HandleTransactionExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req TransactionExportRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ts, err := h.transactionService.SearchAll(r.Context(), req.Criteria)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.writeExport(w, r, export.TransactionTable(ts), req.Title, req.Kind, "transaction_results")
}

func (h *SearchHandler) writeExport(w http.ResponseWriter, r *http.Request, table export.Table, title, kind, fallback string) {
	if title == "" {
		title = fallback
	}
	if kind == "" {
		kind = "csv"
	}

	exporter := export.ForKind(kind)
	w.Header().Set("Content-Type", exporter.ContentType())
	w.Header().Set("Content-Disposition", "attachment; filename="+export.Filename(title, kind, h.now()))

	if err := exporter.Write(w, table); err != nil {
		log.Printf("Error writing export for %s: %v", r.URL.Path, err)
	}
}

func pageParam(r *http.Request) int {
	page := 1
	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		if parsed, err := strconv.Atoi(pageStr); err == nil && parsed > 0 {
			page = parsed
		}
	}
	return page
}

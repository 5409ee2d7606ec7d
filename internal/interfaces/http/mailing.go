package http

import (
	"log"
	"net/http"
	"time"

	"donortrack/internal/domain/export"
	"donortrack/internal/domain/mailing"
)

type MailingHandler struct {
	engine *mailing.Engine

	now func() time.Time
}

func NewMailingHandler(engine *mailing.Engine) *MailingHandler {
	return &MailingHandler{engine: engine, now: time.Now}
}

// MailingRequest configures one eligibility run. Dates arrive as
// YYYY-MM-DD strings; endDate and historicalStartDate fall back to their
// defaults when omitted.
type MailingRequest struct {
	Title string `json:"title"`

	StartDate           string `json:"startDate"`
	EndDate             string `json:"endDate,omitempty"`
	HistoricalStartDate string `json:"historicalStartDate,omitempty"`

	ExclusionStartDate string `json:"exclusionStartDate,omitempty"`
	ExclusionEndDate   string `json:"exclusionEndDate,omitempty"`
}

func (req MailingRequest) params() (mailing.Params, error) {
	p := mailing.Params{Title: req.Title}

	var err error
	if p.Start, err = parseMailingDate("startDate", req.StartDate); err != nil {
		return mailing.Params{}, err
	}
	if p.End, err = parseMailingDate("endDate", req.EndDate); err != nil {
		return mailing.Params{}, err
	}
	if p.HistoricalStart, err = parseMailingDate("historicalStartDate", req.HistoricalStartDate); err != nil {
		return mailing.Params{}, err
	}

	if req.ExclusionStartDate != "" || req.ExclusionEndDate != "" {
		var w mailing.Window
		if w.Start, err = parseMailingDate("exclusionStartDate", req.ExclusionStartDate); err != nil {
			return mailing.Params{}, err
		}
		if w.End, err = parseMailingDate("exclusionEndDate", req.ExclusionEndDate); err != nil {
			return mailing.Params{}, err
		}
		p.Exclusion = &w
	}

	return p, nil
}

func parseMailingDate(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, &mailing.ValidationError{Field: field, Message: "invalid date format (use YYYY-MM-DD)"}
	}
	return t, nil
}

// HandleGenerate runs the eligibility rules and returns the resulting
// donor-ID set with per-rule counts.
func (h *MailingHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req MailingRequest
	if !decodeBody(w, r, &req) {
		return
	}

	params, err := req.params()
	if err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.engine.Generate(r.Context(), params)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// HandleGenerateExport runs the eligibility rules and streams the mailing
// list as a CSV download.
func (h *MailingHandler) HandleGenerateExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req MailingRequest
	if !decodeBody(w, r, &req) {
		return
	}

	params, err := req.params()
	if err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.engine.Generate(r.Context(), params)
	if err != nil {
		writeError(w, r, err)
		return
	}

	donors, err := h.engine.ListEligible(r.Context(), result)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.writeCSV(w, r, export.MailingTable(donors), params.Title, "allmail_query")
}

// HandleActiveExport streams the currently flagged mailing list.
func (h *MailingHandler) HandleActiveExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	donors, err := h.engine.ActiveMailingList(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.writeCSV(w, r, export.MailingTable(donors), "active", "mailing_list")
}

func (h *MailingHandler) writeCSV(w http.ResponseWriter, r *http.Request, table export.Table, title, kind string) {
	exporter := export.ForKind(kind)
	w.Header().Set("Content-Type", exporter.ContentType())
	w.Header().Set("Content-Disposition", "attachment; filename="+export.Filename(title, kind, h.now()))

	if err := exporter.Write(w, table); err != nil {
		log.Printf("Error writing mailing export for %s: %v", r.URL.Path, err)
	}
}

package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"donortrack/internal/domain/donor"
	"donortrack/internal/domain/transaction"
)

const dateLayout = "2006-01-02"

type DonorHandler struct {
	donorService       *donor.Service
	transactionService *transaction.Service
}

func NewDonorHandler(donorService *donor.Service, transactionService *transaction.Service) *DonorHandler {
	return &DonorHandler{
		donorService:       donorService,
		transactionService: transactionService,
	}
}

// DonorRequest carries the writable donor fields. Dates arrive as
// YYYY-MM-DD strings; a zero or absent donorId on create means "assign
// the next available ID".
type DonorRequest struct {
	DonorID     int64   `json:"donorId"`
	OldDonorID  *int64  `json:"oldDonorId,omitempty"`
	AlternateID *string `json:"alternateId,omitempty"`

	NamePrefix        *string `json:"namePrefix,omitempty"`
	FirstName         *string `json:"firstName,omitempty"`
	LastName          *string `json:"lastName,omitempty"`
	Suffix            *string `json:"suffix,omitempty"`
	FormattedFullName *string `json:"formattedFullName,omitempty"`

	SecondaryTitle     *string `json:"secondaryTitle,omitempty"`
	SecondaryFirstName *string `json:"secondaryFirstName,omitempty"`
	SecondaryLastName  *string `json:"secondaryLastName,omitempty"`
	SecondarySuffix    *string `json:"secondarySuffix,omitempty"`
	SecondaryFullName  *string `json:"secondaryFullName,omitempty"`

	AddressCompany   *string `json:"addressCompany,omitempty"`
	AddressSecondary *string `json:"addressSecondary,omitempty"`
	AddressPrimary   *string `json:"addressPrimary,omitempty"`
	City             *string `json:"city,omitempty"`
	State            *string `json:"state,omitempty"`
	ZipPlus4         *string `json:"zipPlus4,omitempty"`

	Phone      *string `json:"phone,omitempty"`
	WorkPhone  *string `json:"workPhone,omitempty"`
	CellPhone  *string `json:"cellPhone,omitempty"`
	Salutation *string `json:"salutation,omitempty"`
	Email      *string `json:"email,omitempty"`

	NewsletterStatus     *string `json:"newsletterStatus,omitempty"`
	NewsletterStatusDesc *string `json:"newsletterStatusDesc,omitempty"`
	DonorStatus          *string `json:"donorStatus,omitempty"`
	DonorStatusDesc      *string `json:"donorStatusDesc,omitempty"`

	DateAdded         *string `json:"dateAdded,omitempty"`
	ExpirationDate    *string `json:"expirationDate,omitempty"`
	HousePublications *string `json:"housePublications,omitempty"`

	MailingListStatus *bool   `json:"mailingListStatus,omitempty"`
	MailingUntilDate  *string `json:"mailingUntilDate,omitempty"`
	GiftedToDonorID   *int64  `json:"giftedToDonorId,omitempty"`
}

func (req DonorRequest) createParams() (donor.CreateParams, error) {
	dateAdded, err := parseOptionalDate("dateAdded", req.DateAdded)
	if err != nil {
		return donor.CreateParams{}, err
	}
	expiration, err := parseOptionalDate("expirationDate", req.ExpirationDate)
	if err != nil {
		return donor.CreateParams{}, err
	}
	mailingUntil, err := parseOptionalDate("mailingUntilDate", req.MailingUntilDate)
	if err != nil {
		return donor.CreateParams{}, err
	}

	p := donor.CreateParams{
		ID:          req.DonorID,
		OldDonorID:  req.OldDonorID,
		AlternateID: req.AlternateID,

		NamePrefix:        req.NamePrefix,
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Suffix:            req.Suffix,
		FormattedFullName: req.FormattedFullName,

		SecondaryTitle:     req.SecondaryTitle,
		SecondaryFirstName: req.SecondaryFirstName,
		SecondaryLastName:  req.SecondaryLastName,
		SecondarySuffix:    req.SecondarySuffix,
		SecondaryFullName:  req.SecondaryFullName,

		AddressCompany:   req.AddressCompany,
		AddressSecondary: req.AddressSecondary,
		AddressPrimary:   req.AddressPrimary,
		City:             req.City,
		State:            req.State,
		ZipPlus4:         req.ZipPlus4,

		Phone:      req.Phone,
		WorkPhone:  req.WorkPhone,
		CellPhone:  req.CellPhone,
		Salutation: req.Salutation,
		Email:      req.Email,

		NewsletterStatus:     req.NewsletterStatus,
		NewsletterStatusDesc: req.NewsletterStatusDesc,
		DonorStatus:          req.DonorStatus,
		DonorStatusDesc:      req.DonorStatusDesc,

		DateAdded:         dateAdded,
		ExpirationDate:    expiration,
		HousePublications: req.HousePublications,

		MailingUntilDate: mailingUntil,
		GiftedToDonorID:  req.GiftedToDonorID,
	}
	if req.MailingListStatus != nil {
		p.MailingListStatus = *req.MailingListStatus
	}
	return p, nil
}

func (req DonorRequest) updateParams() (donor.UpdateParams, error) {
	dateAdded, err := parseOptionalDate("dateAdded", req.DateAdded)
	if err != nil {
		return donor.UpdateParams{}, err
	}
	expiration, err := parseOptionalDate("expirationDate", req.ExpirationDate)
	if err != nil {
		return donor.UpdateParams{}, err
	}
	mailingUntil, err := parseOptionalDate("mailingUntilDate", req.MailingUntilDate)
	if err != nil {
		return donor.UpdateParams{}, err
	}

	return donor.UpdateParams{
		AlternateID: req.AlternateID,

		NamePrefix:        req.NamePrefix,
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Suffix:            req.Suffix,
		FormattedFullName: req.FormattedFullName,

		SecondaryTitle:     req.SecondaryTitle,
		SecondaryFirstName: req.SecondaryFirstName,
		SecondaryLastName:  req.SecondaryLastName,
		SecondarySuffix:    req.SecondarySuffix,
		SecondaryFullName:  req.SecondaryFullName,

		AddressCompany:   req.AddressCompany,
		AddressSecondary: req.AddressSecondary,
		AddressPrimary:   req.AddressPrimary,
		City:             req.City,
		State:            req.State,
		ZipPlus4:         req.ZipPlus4,

		Phone:      req.Phone,
		WorkPhone:  req.WorkPhone,
		CellPhone:  req.CellPhone,
		Salutation: req.Salutation,
		Email:      req.Email,

		NewsletterStatus:     req.NewsletterStatus,
		NewsletterStatusDesc: req.NewsletterStatusDesc,
		DonorStatus:          req.DonorStatus,
		DonorStatusDesc:      req.DonorStatusDesc,

		DateAdded:         dateAdded,
		ExpirationDate:    expiration,
		HousePublications: req.HousePublications,

		MailingListStatus: req.MailingListStatus,
		MailingUntilDate:  mailingUntil,
		GiftedToDonorID:   req.GiftedToDonorID,
	}, nil
}

func parseOptionalDate(field string, s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *s)
	if err != nil {
		return nil, &donor.ValidationError{Field: field, Message: "invalid date format (use YYYY-MM-DD)"}
	}
	return &t, nil
}

// HandleDonors creates a single donor.
func (h *DonorHandler) HandleDonors(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req DonorRequest
	if !decodeBody(w, r, &req) {
		return
	}

	params, err := req.createParams()
	if err != nil {
		writeError(w, r, err)
		return
	}

	d, err := h.donorService.CreateDonor(r.Context(), params)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, d)
}

// HandleBatchCreate is the quick-add path: many donors in one atomic
// request, with sequential IDs filled in where omitted.
func (h *DonorHandler) HandleBatchCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var reqs []DonorRequest
	if !decodeBody(w, r, &reqs) {
		return
	}

	rows := make([]donor.CreateParams, 0, len(reqs))
	for i, req := range reqs {
		params, err := req.createParams()
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{
				Error: "batch rejected",
				Rows:  []rowFailure{{Row: i, Message: err.Error()}},
			})
			return
		}
		rows = append(rows, params)
	}

	created, err := h.donorService.CreateDonors(r.Context(), rows)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// HandleNextID returns the next unassigned donor ID.
func (h *DonorHandler) HandleNextID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id, err := h.donorService.NextDonorID(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"nextDonorId": id})
}

// HandleDonorByID dispatches /api/donors/{id} and
// /api/donors/{id}/transactions.
func (h *DonorHandler) HandleDonorByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/donors/")
	idStr, sub, _ := strings.Cut(rest, "/")

	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid donor ID", Field: "donor_id"})
		return
	}

	if sub == "transactions" {
		h.listTransactions(w, r, id)
		return
	}
	if sub != "" {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		d, err := h.donorService.GetDonor(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, d)

	case http.MethodPut:
		var req DonorRequest
		if !decodeBody(w, r, &req) {
			return
		}
		params, err := req.updateParams()
		if err != nil {
			writeError(w, r, err)
			return
		}
		d, err := h.donorService.UpdateDonor(r.Context(), id, params)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, d)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *DonorHandler) listTransactions(w http.ResponseWriter, r *http.Request, donorID int64) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ts, err := h.transactionService.ListByDonor(r.Context(), donorID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ts)
}

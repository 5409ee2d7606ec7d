package donor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"donortrack/internal/domain/search"
)

// Service handles donor business logic.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateDonor validates and creates a single donor. A zero ID requests
// automatic assignment of the next available ID.
func (s *Service) CreateDonor(ctx context.Context, params CreateParams) (*Donor, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	id := params.ID
	if id == 0 {
		next, err := s.repo.NextID(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to assign donor ID: %w", err)
		}
		id = next
	} else {
		exists, err := s.repo.Exists(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to check donor ID: %w", err)
		}
		if exists {
			return nil, ErrDuplicateID
		}
	}

	d := donorFromParams(id, params)
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to create donor: %w", err)
	}

	log.Printf("Created donor %d", d.ID)
	return d, nil
}

// CreateDonors is the quick-add path: it validates every row, assigns
// sequential IDs to rows without one, and inserts the lot atomically.
// Any invalid row rejects the whole batch.
func (s *Service) CreateDonors(ctx context.Context, rows []CreateParams) ([]*Donor, error) {
	if len(rows) == 0 {
		return nil, &ValidationError{Field: "rows", Message: "at least one donor row is required"}
	}

	var batchErr BatchError
	for i, row := range rows {
		if err := row.Validate(); err != nil {
			batchErr.Rows = append(batchErr.Rows, RowError{Row: i, Message: err.Error()})
		}
	}
	if len(batchErr.Rows) > 0 {
		return nil, &batchErr
	}

	next, err := s.repo.NextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to assign donor IDs: %w", err)
	}

	seen := make(map[int64]int)
	donors := make([]*Donor, 0, len(rows))
	for i, row := range rows {
		id := row.ID
		if id == 0 {
			id = next
			next++
		} else {
			exists, err := s.repo.Exists(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("failed to check donor ID: %w", err)
			}
			if exists {
				batchErr.Rows = append(batchErr.Rows, RowError{Row: i, Message: fmt.Sprintf("donor ID %d already exists", id)})
				continue
			}
		}
		if prev, dup := seen[id]; dup {
			batchErr.Rows = append(batchErr.Rows, RowError{Row: i, Message: fmt.Sprintf("donor ID %d repeats row %d", id, prev)})
			continue
		}
		seen[id] = i
		d := donorFromParams(id, row)
		applyQuickAddDefaults(d)
		donors = append(donors, d)
	}
	if len(batchErr.Rows) > 0 {
		return nil, &batchErr
	}

	if err := s.repo.CreateBatch(ctx, donors); err != nil {
		return nil, fmt.Errorf("failed to create donor batch: %w", err)
	}

	log.Printf("Created %d donors in batch", len(donors))
	return donors, nil
}

func (s *Service) GetDonor(ctx context.Context, id int64) (*Donor, error) {
	if id <= 0 {
		return nil, &ValidationError{Field: "donor_id", Message: "donor ID must be a positive number"}
	}
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrDonorNotFound) {
			return nil, ErrDonorNotFound
		}
		return nil, fmt.Errorf("failed to get donor: %w", err)
	}
	return d, nil
}

// UpdateDonor applies non-nil fields from params to the stored donor.
// The donor ID and summary fields are never touched by this path.
func (s *Service) UpdateDonor(ctx context.Context, id int64, params UpdateParams) (*Donor, error) {
	d, err := s.GetDonor(ctx, id)
	if err != nil {
		return nil, err
	}

	applyUpdate(d, params)
	if d.LastName == nil || *d.LastName == "" {
		return nil, &ValidationError{Field: "last_name", Message: "last name is required"}
	}
	if d.GiftedToDonorID != nil && *d.GiftedToDonorID <= 0 {
		return nil, &ValidationError{Field: "gifted_to_donor_id", Message: "gift link must reference a positive donor ID"}
	}

	if err := s.repo.Update(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to update donor: %w", err)
	}
	return d, nil
}

// NextDonorID reports the ID the next auto-assigned donor would receive.
func (s *Service) NextDonorID(ctx context.Context) (int64, error) {
	id, err := s.repo.NextID(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get next donor ID: %w", err)
	}
	return id, nil
}

// SearchResult is one page of donor search results.
type SearchResult struct {
	Donors     []*Donor `json:"donors"`
	Page       int      `json:"page"`
	TotalPages int      `json:"totalPages"`
	TotalCount int64    `json:"totalCount"`

	// RedirectToSingle is set when the search matched exactly one donor;
	// callers should jump straight to that donor's detail view.
	RedirectToSingle bool  `json:"redirectToSingle"`
	RedirectID       int64 `json:"redirectId,omitempty"`

	Warnings []string `json:"warnings,omitempty"`
}

// Search runs a donor search. A numeric donor_id criterion short-circuits
// every other criterion and looks the donor up directly. A criteria set
// with no usable conditions is rejected rather than returning the whole
// table.
func (s *Service) Search(ctx context.Context, c search.Criteria, page int) (*SearchResult, error) {
	if page < 1 {
		page = 1
	}

	if raw := strings.TrimSpace(c.DonorID); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return nil, &ValidationError{Field: "donor_id", Message: "donor ID must be a positive number"}
		}
		d, err := s.GetDonor(ctx, id)
		if err != nil {
			if errors.Is(err, ErrDonorNotFound) {
				return &SearchResult{Donors: nil, Page: 1, TotalPages: 0, TotalCount: 0}, nil
			}
			return nil, err
		}
		return &SearchResult{
			Donors:           []*Donor{d},
			Page:             1,
			TotalPages:       1,
			TotalCount:       1,
			RedirectToSingle: true,
			RedirectID:       d.ID,
		}, nil
	}

	q := c.Normalize()
	if !q.AnyCriterion {
		return nil, &ValidationError{Field: "criteria", Message: "at least one search criterion is required"}
	}

	count, err := s.repo.CountSearch(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to count donors: %w", err)
	}

	result := &SearchResult{
		Page:       page,
		TotalPages: search.TotalPages(count),
		TotalCount: count,
		Warnings:   q.Warnings,
	}
	if count == 0 {
		return result, nil
	}

	donors, err := s.repo.Search(ctx, q, search.PageSize, search.Offset(page))
	if err != nil {
		return nil, fmt.Errorf("failed to search donors: %w", err)
	}
	result.Donors = donors

	if count == 1 && len(donors) == 1 {
		result.RedirectToSingle = true
		result.RedirectID = donors[0].ID
	}
	return result, nil
}

// SearchAll fetches every donor matched by the criteria, page by page.
// Used by the export path, which writes the full result set.
func (s *Service) SearchAll(ctx context.Context, c search.Criteria) ([]*Donor, error) {
	if raw := strings.TrimSpace(c.DonorID); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return nil, &ValidationError{Field: "donor_id", Message: "donor ID must be a positive number"}
		}
		d, err := s.GetDonor(ctx, id)
		if err != nil {
			if errors.Is(err, ErrDonorNotFound) {
				return nil, nil
			}
			return nil, err
		}
		return []*Donor{d}, nil
	}

	q := c.Normalize()
	if !q.AnyCriterion {
		return nil, &ValidationError{Field: "criteria", Message: "at least one search criterion is required"}
	}

	var all []*Donor
	for offset := 0; ; offset += search.PageSize {
		page, err := s.repo.Search(ctx, q, search.PageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("failed to search donors: %w", err)
		}
		all = append(all, page...)
		if len(page) < search.PageSize {
			return all, nil
		}
	}
}

func donorFromParams(id int64, p CreateParams) *Donor {
	return &Donor{
		ID:          id,
		OldDonorID:  p.OldDonorID,
		AlternateID: p.AlternateID,

		NamePrefix:        p.NamePrefix,
		FirstName:         p.FirstName,
		LastName:          p.LastName,
		Suffix:            p.Suffix,
		FormattedFullName: p.FormattedFullName,

		SecondaryTitle:     p.SecondaryTitle,
		SecondaryFirstName: p.SecondaryFirstName,
		SecondaryLastName:  p.SecondaryLastName,
		SecondarySuffix:    p.SecondarySuffix,
		SecondaryFullName:  p.SecondaryFullName,

		AddressCompany:   p.AddressCompany,
		AddressSecondary: p.AddressSecondary,
		AddressPrimary:   p.AddressPrimary,
		City:             p.City,
		State:            p.State,
		ZipPlus4:         p.ZipPlus4,

		Phone:      p.Phone,
		WorkPhone:  p.WorkPhone,
		CellPhone:  p.CellPhone,
		Salutation: p.Salutation,
		Email:      p.Email,

		NewsletterStatus:     p.NewsletterStatus,
		NewsletterStatusDesc: p.NewsletterStatusDesc,
		DonorStatus:          p.DonorStatus,
		DonorStatusDesc:      p.DonorStatusDesc,

		DateAdded:         p.DateAdded,
		ExpirationDate:    p.ExpirationDate,
		HousePublications: p.HousePublications,

		MailingListStatus: p.MailingListStatus,
		MailingUntilDate:  p.MailingUntilDate,
		GiftedToDonorID:   p.GiftedToDonorID,
	}
}

// applyQuickAddDefaults fills the fields the quick-add form leaves blank:
// active donor status and today's date-added.
func applyQuickAddDefaults(d *Donor) {
	if d.DonorStatus == nil {
		status := "A"
		d.DonorStatus = &status
	}
	if d.DateAdded == nil {
		today := time.Now()
		d.DateAdded = &today
	}
}

func applyUpdate(d *Donor, p UpdateParams) {
	if p.AlternateID != nil {
		d.AlternateID = p.AlternateID
	}
	if p.NamePrefix != nil {
		d.NamePrefix = p.NamePrefix
	}
	if p.FirstName != nil {
		d.FirstName = p.FirstName
	}
	if p.LastName != nil {
		d.LastName = p.LastName
	}
	if p.Suffix != nil {
		d.Suffix = p.Suffix
	}
	if p.FormattedFullName != nil {
		d.FormattedFullName = p.FormattedFullName
	}
	if p.SecondaryTitle != nil {
		d.SecondaryTitle = p.SecondaryTitle
	}
	if p.SecondaryFirstName != nil {
		d.SecondaryFirstName = p.SecondaryFirstName
	}
	if p.SecondaryLastName != nil {
		d.SecondaryLastName = p.SecondaryLastName
	}
	if p.SecondarySuffix != nil {
		d.SecondarySuffix = p.SecondarySuffix
	}
	if p.SecondaryFullName != nil {
		d.SecondaryFullName = p.SecondaryFullName
	}
	if p.AddressCompany != nil {
		d.AddressCompany = p.AddressCompany
	}
	if p.AddressSecondary != nil {
		d.AddressSecondary = p.AddressSecondary
	}
	if p.AddressPrimary != nil {
		d.AddressPrimary = p.AddressPrimary
	}
	if p.City != nil {
		d.City = p.City
	}
	if p.State != nil {
		d.State = p.State
	}
	if p.ZipPlus4 != nil {
		d.ZipPlus4 = p.ZipPlus4
	}
	if p.Phone != nil {
		d.Phone = p.Phone
	}
	if p.WorkPhone != nil {
		d.WorkPhone = p.WorkPhone
	}
	if p.CellPhone != nil {
		d.CellPhone = p.CellPhone
	}
	if p.Salutation != nil {
		d.Salutation = p.Salutation
	}
	if p.Email != nil {
		d.Email = p.Email
	}
	if p.NewsletterStatus != nil {
		d.NewsletterStatus = p.NewsletterStatus
	}
	if p.NewsletterStatusDesc != nil {
		d.NewsletterStatusDesc = p.NewsletterStatusDesc
	}
	if p.DonorStatus != nil {
		d.DonorStatus = p.DonorStatus
	}
	if p.DonorStatusDesc != nil {
		d.DonorStatusDesc = p.DonorStatusDesc
	}
	if p.DateAdded != nil {
		d.DateAdded = p.DateAdded
	}
	if p.ExpirationDate != nil {
		d.ExpirationDate = p.ExpirationDate
	}
	if p.HousePublications != nil {
		d.HousePublications = p.HousePublications
	}
	if p.MailingListStatus != nil {
		d.MailingListStatus = *p.MailingListStatus
	}
	if p.MailingUntilDate != nil {
		d.MailingUntilDate = p.MailingUntilDate
	}
	if p.GiftedToDonorID != nil {
		d.GiftedToDonorID = p.GiftedToDonorID
	}
}

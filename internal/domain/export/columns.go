package export

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"donortrack/internal/domain/donor"
	"donortrack/internal/domain/transaction"
)

// Column is one exportable donor column: a stable identifier, a header
// label, and the extractor producing the cell value.
type Column struct {
	ID     string
	Header string
	Value  func(d *donor.Donor) string
}

// donorColumns is the registry of every exportable donor column, keyed
// by identifier. Export requests name columns by these identifiers.
var donorColumns = map[string]Column{}

func register(c Column) string {
	donorColumns[c.ID] = c
	return c.ID
}

func strCol(id, header string, get func(d *donor.Donor) *string) string {
	return register(Column{id, header, func(d *donor.Donor) string {
		return deref(get(d))
	}})
}

func dateCol(id, header string, get func(d *donor.Donor) *time.Time) string {
	return register(Column{id, header, func(d *donor.Donor) string {
		t := get(d)
		if t == nil {
			return ""
		}
		return t.Format("2006-01-02")
	}})
}

func giftDateCol(id, header string, get func(s donor.Summary) *donor.Gift) string {
	return register(Column{id, header, func(d *donor.Donor) string {
		g := get(d.Summary)
		if g == nil {
			return ""
		}
		return g.Date.Format("2006-01-02")
	}})
}

func giftAmountCol(id, header string, get func(s donor.Summary) *donor.Gift) string {
	return register(Column{id, header, func(d *donor.Donor) string {
		g := get(d.Summary)
		if g == nil {
			return ""
		}
		return FormatCurrency(g.Amount)
	}})
}

// The registry mirrors the donor record: identifiers, name lines,
// secondary addressee, address block, contact numbers, statuses,
// dates and the summary fields.
var (
	ColDonorID = register(Column{"donor_id", "Donor ID", func(d *donor.Donor) string {
		return formatInt(d.ID)
	}})
	ColOldDonorID = register(Column{"old_donor_id", "Legacy Donor ID", func(d *donor.Donor) string {
		if d.OldDonorID == nil {
			return ""
		}
		return formatInt(*d.OldDonorID)
	}})
	ColAlternateID = strCol("alternate_id", "Alternate ID", func(d *donor.Donor) *string { return d.AlternateID })

	ColFullName   = register(Column{"full_name", "Name", DonorFullName})
	ColNamePrefix = strCol("name_prefix", "Name Prefix", func(d *donor.Donor) *string { return d.NamePrefix })
	ColFirstName  = strCol("first_name", "First Name", func(d *donor.Donor) *string { return d.FirstName })
	ColLastName   = strCol("last_name", "Last Name", func(d *donor.Donor) *string { return d.LastName })
	ColSuffix     = strCol("suffix", "Suffix", func(d *donor.Donor) *string { return d.Suffix })
	ColFormatted  = strCol("formatted_full_name", "Full Name", func(d *donor.Donor) *string { return d.FormattedFullName })

	ColSecondaryTitle     = strCol("secondary_title", "Secondary Title", func(d *donor.Donor) *string { return d.SecondaryTitle })
	ColSecondaryFirstName = strCol("secondary_first_name", "Secondary First Name", func(d *donor.Donor) *string { return d.SecondaryFirstName })
	ColSecondaryLastName  = strCol("secondary_last_name", "Secondary Last Name", func(d *donor.Donor) *string { return d.SecondaryLastName })
	ColSecondarySuffix    = strCol("secondary_suffix", "Secondary Suffix", func(d *donor.Donor) *string { return d.SecondarySuffix })
	ColSecondaryFullName  = strCol("secondary_full_name", "Secondary Full Name", func(d *donor.Donor) *string { return d.SecondaryFullName })

	ColCompany          = strCol("company", "Company", func(d *donor.Donor) *string { return d.AddressCompany })
	ColAddressSecondary = strCol("address_secondary", "Address 2", func(d *donor.Donor) *string { return d.AddressSecondary })
	ColAddress          = strCol("address", "Address", func(d *donor.Donor) *string { return d.AddressPrimary })
	ColCity             = strCol("city", "City", func(d *donor.Donor) *string { return d.City })
	ColState            = strCol("state", "State", func(d *donor.Donor) *string { return d.State })
	ColZip              = strCol("zip", "Zip", func(d *donor.Donor) *string { return d.ZipPlus4 })

	ColPhone      = strCol("phone", "Phone", func(d *donor.Donor) *string { return d.Phone })
	ColWorkPhone  = strCol("work_phone", "Work Phone", func(d *donor.Donor) *string { return d.WorkPhone })
	ColCellPhone  = strCol("cell_phone", "Cell Phone", func(d *donor.Donor) *string { return d.CellPhone })
	ColSalutation = strCol("salutation", "Salutation", func(d *donor.Donor) *string { return d.Salutation })
	ColEmail      = strCol("email", "Email", func(d *donor.Donor) *string { return d.Email })

	ColDonorStatus          = strCol("donor_status", "Donor Status", func(d *donor.Donor) *string { return d.DonorStatus })
	ColDonorStatusDesc      = strCol("donor_status_desc", "Donor Status Desc", func(d *donor.Donor) *string { return d.DonorStatusDesc })
	ColNewsletterStatus     = strCol("newsletter_status", "Newsletter Status", func(d *donor.Donor) *string { return d.NewsletterStatus })
	ColNewsletterStatusDesc = strCol("newsletter_status_desc", "Newsletter Status Desc", func(d *donor.Donor) *string { return d.NewsletterStatusDesc })

	ColDateAdded         = dateCol("date_added", "Date Added", func(d *donor.Donor) *time.Time { return d.DateAdded })
	ColExpirationDate    = dateCol("expiration_date", "Expiration Date", func(d *donor.Donor) *time.Time { return d.ExpirationDate })
	ColHousePublications = strCol("house_publications", "House Publications", func(d *donor.Donor) *string { return d.HousePublications })

	ColMailingListStatus = register(Column{"mailing_list_status", "Mailing List", func(d *donor.Donor) string {
		if d.MailingListStatus {
			return "Y"
		}
		return "N"
	}})
	ColMailingUntilDate = dateCol("mailing_until_date", "Mailing Until", func(d *donor.Donor) *time.Time { return d.MailingUntilDate })
	ColGiftedToDonorID = register(Column{"gifted_to_donor_id", "Gifted To Donor ID", func(d *donor.Donor) string {
		if d.GiftedToDonorID == nil {
			return ""
		}
		return formatInt(*d.GiftedToDonorID)
	}})

	ColLatestDate      = giftDateCol("latest_date", "Latest Gift Date", func(s donor.Summary) *donor.Gift { return s.Latest })
	ColLatestAmount    = giftAmountCol("latest_amount", "Latest Gift", func(s donor.Summary) *donor.Gift { return s.Latest })
	ColLargestDate     = giftDateCol("largest_date", "Largest Gift Date", func(s donor.Summary) *donor.Gift { return s.Largest })
	ColLargestAmount   = giftAmountCol("largest_amount", "Largest Gift", func(s donor.Summary) *donor.Gift { return s.Largest })
	ColInceptionDate   = giftDateCol("inception_date", "Inception Gift Date", func(s donor.Summary) *donor.Gift { return s.Inception })
	ColInceptionAmount = giftAmountCol("inception_amount", "Inception Gift", func(s donor.Summary) *donor.Gift { return s.Inception })

	ColTotalAmount = register(Column{"total_amount", "Total Giving", func(d *donor.Donor) string {
		return FormatCurrency(d.Summary.TotalAmount)
	}})
	ColTotalResponses = register(Column{"total_responses", "Total Responses", func(d *donor.Donor) string {
		return strconv.Itoa(d.Summary.TotalResponses)
	}})
	ColGiftResponses = register(Column{"gift_responses", "Total Responses (Non-Zero)", func(d *donor.Donor) string {
		return strconv.Itoa(d.Summary.GiftResponses)
	}})
)

// DefaultDonorColumns is the column order used when a request names none.
var DefaultDonorColumns = []string{
	ColDonorID, ColFullName, ColAddress, ColCity, ColState, ColZip,
	ColPhone, ColEmail, ColDonorStatus, ColTotalAmount,
}

// mailingColumns is the fixed layout of mailing-list exports: addressee,
// salutation, the three address lines, city, state, zip, and the date of
// the donor's latest gift. The headers name the address lines by their
// position on the label.
var mailingColumns = []Column{
	{"full_name", "Full Name", DonorFullName},
	{"salutation", "Salutation", donorColumns[ColSalutation].Value},
	{"company", "Company/Address Line 1", donorColumns[ColCompany].Value},
	{"address_secondary", "Address Line 2", donorColumns[ColAddressSecondary].Value},
	{"address", "Address Line 3", donorColumns[ColAddress].Value},
	{"city", "City", donorColumns[ColCity].Value},
	{"state", "State", donorColumns[ColState].Value},
	{"zip", "ZIP Code", donorColumns[ColZip].Value},
	{"latest_date", "Latest Transaction Date", donorColumns[ColLatestDate].Value},
}

// DonorFullName builds a display name: a precomposed full name wins,
// else the name parts are assembled, else the company name stands in.
func DonorFullName(d *donor.Donor) string {
	if v := deref(d.FormattedFullName); v != "" {
		return v
	}
	parts := make([]string, 0, 4)
	for _, p := range []*string{d.NamePrefix, d.FirstName, d.LastName, d.Suffix} {
		if v := deref(p); v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, " ")
	}
	return deref(d.AddressCompany)
}

// FormatCurrency renders an amount as $1,234.56.
func FormatCurrency(d decimal.Decimal) string {
	neg := d.IsNegative()
	s := d.Abs().StringFixed(2)

	whole, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	out := "$" + b.String() + "." + frac
	if neg {
		out = "-" + out
	}
	return out
}

// psEaglesCutoffYear bounds the display rewrite below; older rows keep
// their recorded description.
const psEaglesCutoffYear = 2018

// AppealDisplay renders a transaction's appeal description, rewriting
// recent Eagles membership dues ("DUES OR EAGLES" under payment type E
// after 2018) to the PS EAGLES program name.
func AppealDisplay(t *transaction.Transaction) string {
	desc := deref(t.AppealDescription)
	if t.Date.Year() > psEaglesCutoffYear &&
		deref(t.PaymentType) == "E" &&
		strings.EqualFold(desc, "DUES OR EAGLES") {
		return "PS EAGLES"
	}
	return desc
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatInt(n int64) string {
	return strconv.FormatInt(n, 10)
}

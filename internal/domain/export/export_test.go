package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"donortrack/internal/domain/donor"
	"donortrack/internal/domain/transaction"
)

func strPtr(s string) *string { return &s }

func TestDonorFullName(t *testing.T) {
	tests := []struct {
		name  string
		donor donor.Donor
		want  string
	}{
		{
			name:  "precomposed name wins",
			donor: donor.Donor{FormattedFullName: strPtr("Dr. Jane Q. Smith"), FirstName: strPtr("Jane"), LastName: strPtr("Smith")},
			want:  "Dr. Jane Q. Smith",
		},
		{
			name:  "assembled from parts",
			donor: donor.Donor{NamePrefix: strPtr("Mr."), FirstName: strPtr("John"), LastName: strPtr("Doe"), Suffix: strPtr("Jr.")},
			want:  "Mr. John Doe Jr.",
		},
		{
			name:  "partial parts skip blanks",
			donor: donor.Donor{FirstName: strPtr("John"), LastName: strPtr("Doe")},
			want:  "John Doe",
		},
		{
			name:  "company fallback",
			donor: donor.Donor{AddressCompany: strPtr("Acme Foundation")},
			want:  "Acme Foundation",
		},
		{
			name:  "nothing available",
			donor: donor.Donor{},
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DonorFullName(&tt.donor); got != tt.want {
				t.Errorf("DonorFullName = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"0", "$0.00"},
		{"5", "$5.00"},
		{"1234.5", "$1,234.50"},
		{"1234567.89", "$1,234,567.89"},
		{"-42.1", "-$42.10"},
		{"999", "$999.00"},
		{"1000", "$1,000.00"},
	}
	for _, tt := range tests {
		d := decimal.RequireFromString(tt.input)
		if got := FormatCurrency(d); got != tt.want {
			t.Errorf("FormatCurrency(%s) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestAppealDisplay(t *testing.T) {
	date := func(s string) time.Time {
		d, err := time.Parse("2006-01-02", s)
		if err != nil {
			t.Fatalf("bad test date %q: %v", s, err)
		}
		return d
	}

	tests := []struct {
		name string
		tr   transaction.Transaction
		want string
	}{
		{
			name: "recent eagles dues rewritten",
			tr: transaction.Transaction{
				Date:              date("2024-05-01"),
				PaymentType:       strPtr("E"),
				AppealDescription: strPtr("DUES OR EAGLES"),
			},
			want: "PS EAGLES",
		},
		{
			name: "old rows keep their description",
			tr: transaction.Transaction{
				Date:              date("2017-05-01"),
				PaymentType:       strPtr("E"),
				AppealDescription: strPtr("DUES OR EAGLES"),
			},
			want: "DUES OR EAGLES",
		},
		{
			name: "other payment types unaffected",
			tr: transaction.Transaction{
				Date:              date("2024-05-01"),
				PaymentType:       strPtr("C"),
				AppealDescription: strPtr("DUES OR EAGLES"),
			},
			want: "DUES OR EAGLES",
		},
		{
			name: "other descriptions unaffected",
			tr: transaction.Transaction{
				Date:              date("2024-05-01"),
				PaymentType:       strPtr("E"),
				AppealDescription: strPtr("EAGLE TRUST FUND"),
			},
			want: "EAGLE TRUST FUND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AppealDisplay(&tt.tr); got != tt.want {
				t.Errorf("AppealDisplay = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCSVScrubsNewlines(t *testing.T) {
	table := Table{
		Headers: []string{"Name", "Address"},
		Rows: [][]string{
			{"Jane Smith", "100 Main St\nSuite 4"},
		},
	}

	var buf bytes.Buffer
	if err := (CSV{}).Write(&buf, table); err != nil {
		t.Fatalf("Write: %v", err)
	}

	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[1], "100 Main St Suite 4") {
		t.Errorf("embedded newline not scrubbed: %q", lines[1])
	}
}

func TestDonorTable(t *testing.T) {
	d := &donor.Donor{
		ID:        7,
		FirstName: strPtr("Jane"),
		LastName:  strPtr("Smith"),
		City:      strPtr("Austin"),
		Summary: donor.Summary{
			TotalAmount: decimal.NewFromInt(1500),
		},
	}

	t.Run("named columns in order", func(t *testing.T) {
		table, err := DonorTable([]*donor.Donor{d}, []string{ColCity, ColFullName, ColTotalAmount})
		if err != nil {
			t.Fatalf("DonorTable: %v", err)
		}
		want := []string{"Austin", "Jane Smith", "$1,500.00"}
		for i, w := range want {
			if table.Rows[0][i] != w {
				t.Errorf("cell %d = %q, want %q", i, table.Rows[0][i], w)
			}
		}
	})

	t.Run("empty column list uses defaults", func(t *testing.T) {
		table, err := DonorTable([]*donor.Donor{d}, nil)
		if err != nil {
			t.Fatalf("DonorTable: %v", err)
		}
		if len(table.Headers) != len(DefaultDonorColumns) {
			t.Errorf("headers = %d, want %d", len(table.Headers), len(DefaultDonorColumns))
		}
	})

	t.Run("unknown column is an error", func(t *testing.T) {
		if _, err := DonorTable(nil, []string{"no_such_column"}); err == nil {
			t.Error("expected error for unknown column")
		}
	})
}

func TestDonorTableRegistryCoverage(t *testing.T) {
	oldID := int64(4410)
	d := &donor.Donor{
		ID:         7,
		OldDonorID: &oldID,
		FirstName:  strPtr("Jane"),
		LastName:   strPtr("Smith"),
		WorkPhone:  strPtr("555-0100"),
		CellPhone:  strPtr("555-0199"),
		Summary: donor.Summary{
			Largest:   &donor.Gift{Date: time.Date(2022, 3, 15, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(500)},
			Inception: &donor.Gift{Date: time.Date(2019, 1, 2, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(25)},
		},
	}

	table, err := DonorTable([]*donor.Donor{d}, []string{
		ColOldDonorID, ColWorkPhone, ColCellPhone,
		ColLargestDate, ColInceptionDate, ColInceptionAmount,
	})
	if err != nil {
		t.Fatalf("DonorTable: %v", err)
	}
	want := []string{"4410", "555-0100", "555-0199", "2022-03-15", "2019-01-02", "$25.00"}
	for i, w := range want {
		if table.Rows[0][i] != w {
			t.Errorf("cell %d = %q, want %q", i, table.Rows[0][i], w)
		}
	}
}

func TestMailingTableLayout(t *testing.T) {
	d := &donor.Donor{
		ID:               7,
		FirstName:        strPtr("Jane"),
		LastName:         strPtr("Smith"),
		Salutation:       strPtr("Jane"),
		AddressCompany:   strPtr("Acme Foundation"),
		AddressSecondary: strPtr("Suite 4"),
		AddressPrimary:   strPtr("100 Main St"),
		City:             strPtr("Austin"),
		State:            strPtr("TX"),
		ZipPlus4:         strPtr("73301"),
		Summary: donor.Summary{
			Latest: &donor.Gift{Date: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(50)},
		},
	}

	table := MailingTable([]*donor.Donor{d})

	wantHeaders := []string{
		"Full Name", "Salutation", "Company/Address Line 1", "Address Line 2",
		"Address Line 3", "City", "State", "ZIP Code", "Latest Transaction Date",
	}
	if len(table.Headers) != len(wantHeaders) {
		t.Fatalf("headers = %v, want %v", table.Headers, wantHeaders)
	}
	for i, w := range wantHeaders {
		if table.Headers[i] != w {
			t.Errorf("header %d = %q, want %q", i, table.Headers[i], w)
		}
	}

	wantRow := []string{
		"Jane Smith", "Jane", "Acme Foundation", "Suite 4",
		"100 Main St", "Austin", "TX", "73301", "2024-02-01",
	}
	for i, w := range wantRow {
		if table.Rows[0][i] != w {
			t.Errorf("cell %d = %q, want %q", i, table.Rows[0][i], w)
		}
	}
}

func TestFilename(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	got := Filename("Spring Drive", "allmail_query", now)
	want := "spring_drive_allmail_query_20240601T120000.csv"
	if got != want {
		t.Errorf("Filename = %q, want %q", got, want)
	}

	if got := Filename("", "document", now); !strings.HasSuffix(got, ".xlsx") {
		t.Errorf("document export should be .xlsx, got %q", got)
	}
}

func TestXLSXWritesWorkbook(t *testing.T) {
	table := Table{
		Headers: []string{"A", "B"},
		Rows:    [][]string{{"1", "2"}},
	}
	var buf bytes.Buffer
	if err := (XLSX{}).Write(&buf, table); err != nil {
		t.Fatalf("Write: %v", err)
	}
	// XLSX files are zip archives.
	if buf.Len() < 4 || buf.Bytes()[0] != 'P' || buf.Bytes()[1] != 'K' {
		t.Error("output does not look like a spreadsheet")
	}
}

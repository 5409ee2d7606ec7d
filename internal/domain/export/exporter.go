package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Table is a rendered result set ready for serialization: a header row
// plus data rows, all as strings.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Exporter serializes a table into one output format.
type Exporter interface {
	ContentType() string
	Extension() string
	Write(w io.Writer, t Table) error
}

// ForKind returns the exporter for an output kind. "document" produces a
// spreadsheet; everything else defaults to CSV.
func ForKind(kind string) Exporter {
	if kind == "document" {
		return XLSX{}
	}
	return CSV{}
}

// Filename builds a timestamped export filename, e.g.
// "spring_drive_allmail_query_20240601T120000.csv".
func Filename(prefix, kind string, now time.Time) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "export"
	}
	prefix = strings.ReplaceAll(strings.ToLower(prefix), " ", "_")
	return fmt.Sprintf("%s_%s_%s.%s", prefix, kind, now.Format("20060102T150405"), ForKind(kind).Extension())
}

// CSV writes tabular text. Embedded newlines are scrubbed from cells so
// downstream mail-merge tooling sees one line per record.
type CSV struct{}

func (CSV) ContentType() string { return "text/csv" }
func (CSV) Extension() string   { return "csv" }

func (CSV) Write(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Headers); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range t.Rows {
		clean := make([]string, len(row))
		for i, cell := range row {
			clean[i] = scrub(cell)
		}
		if err := cw.Write(clean); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func scrub(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return s
}

// XLSX writes a single-sheet spreadsheet with a bold header row.
type XLSX struct{}

func (XLSX) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}
func (XLSX) Extension() string { return "xlsx" }

func (XLSX) Write(w io.Writer, t Table) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	for i, h := range t.Headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("failed to address header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("failed to write header cell: %w", err)
		}
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil && len(t.Headers) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(t.Headers), 1)
		f.SetCellStyle(sheet, "A1", last, style)
	}

	for r, row := range t.Rows {
		for c, cell := range row {
			name, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return fmt.Errorf("failed to address cell: %w", err)
			}
			if err := f.SetCellValue(sheet, name, cell); err != nil {
				return fmt.Errorf("failed to write cell: %w", err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write spreadsheet: %w", err)
	}
	return nil
}

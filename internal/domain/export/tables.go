package export

import (
	"fmt"

	"donortrack/internal/domain/donor"
	"donortrack/internal/domain/transaction"
)

// DonorTable renders donors into a table using the named columns, in
// order. Unknown column identifiers are an error; an empty list uses the
// default column set.
func DonorTable(donors []*donor.Donor, columnIDs []string) (Table, error) {
	if len(columnIDs) == 0 {
		columnIDs = DefaultDonorColumns
	}

	cols := make([]Column, len(columnIDs))
	for i, id := range columnIDs {
		c, ok := donorColumns[id]
		if !ok {
			return Table{}, fmt.Errorf("unknown export column %q", id)
		}
		cols[i] = c
	}

	t := Table{Headers: make([]string, len(cols))}
	for i, c := range cols {
		t.Headers[i] = c.Header
	}
	for _, d := range donors {
		row := make([]string, len(cols))
		for i, c := range cols {
			row[i] = c.Value(d)
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// MailingTable renders donors in the fixed mailing-list label layout.
func MailingTable(donors []*donor.Donor) Table {
	t := Table{Headers: make([]string, len(mailingColumns))}
	for i, c := range mailingColumns {
		t.Headers[i] = c.Header
	}
	for _, d := range donors {
		row := make([]string, len(mailingColumns))
		for i, c := range mailingColumns {
			row[i] = c.Value(d)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// TransactionTable renders transactions with the appeal display rewrite
// applied.
func TransactionTable(ts []*transaction.Transaction) Table {
	t := Table{Headers: []string{
		"ID", "Donor ID", "Date", "Amount", "Appeal Code", "Appeal",
		"Payment Type", "Payment Method", "Batch", "Job", "List",
	}}
	for _, tr := range ts {
		t.Rows = append(t.Rows, []string{
			formatInt(tr.ID),
			formatInt(tr.DonorID),
			tr.Date.Format("2006-01-02"),
			FormatCurrency(tr.Amount),
			deref(tr.AppealCode),
			AppealDisplay(tr),
			deref(tr.PaymentType),
			deref(tr.PaymentMethod),
			deref(tr.UpdateBatchNum),
			deref(tr.JobDescription),
			deref(tr.ListDescription),
		})
	}
	return t
}

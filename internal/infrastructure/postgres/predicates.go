package postgres

import (
	"fmt"
	"strings"

	"donortrack/internal/domain/search"
)

// Column whitelists per entity. The translator refuses any field name it
// does not know, so criteria can never smuggle SQL.
var donorColumns = map[string]string{
	"alternate_id":           "d.alternate_id",
	"first_name":             "d.first_name",
	"last_name":              "d.last_name",
	"email_address":          "d.email_address",
	"city":                   "d.city",
	"state":                  "d.state",
	"zip_plus4":              "d.zip_plus4",
	"phone":                  "d.phone",
	"work_phone":             "d.work_phone",
	"cell_phone":             "d.cell_phone",
	"donor_status":           "d.donor_status",
	"donor_status_desc":      "d.donor_status_desc",
	"newsletter_status":      "d.newsletter_status",
	"newsletter_status_desc": "d.newsletter_status_desc",
	"total_dollar_amount":    "d.total_dollar_amount",
	"date_added":             "d.date_added",
	"expiration_date":        "d.expiration_date",
}

var transactionColumns = map[string]string{
	"trans_date":       "t.trans_date",
	"trans_amount":     "t.trans_amount",
	"appeal_code":      "t.appeal_code",
	"payment_type":     "t.payment_type",
	"update_batch_num": "t.update_batch_num",
	"job_description":  "t.job_description",
	"list_description": "t.list_description",
}

// translator converts typed predicates into a WHERE fragment with $N
// placeholders, accumulating the argument list.
type translator struct {
	args []any
}

func (tr *translator) placeholder(v any) string {
	tr.args = append(tr.args, v)
	return fmt.Sprintf("$%d", len(tr.args))
}

func (tr *translator) column(f search.Field) (string, error) {
	var cols map[string]string
	switch f.Entity {
	case search.EntityDonor:
		cols = donorColumns
	case search.EntityTransaction:
		cols = transactionColumns
	default:
		return "", fmt.Errorf("unknown entity %d", f.Entity)
	}
	col, ok := cols[f.Name]
	if !ok {
		return "", fmt.Errorf("unknown search column %q", f.Name)
	}
	return col, nil
}

func (tr *translator) predicate(p search.Predicate) (string, error) {
	switch v := p.(type) {
	case search.Substring:
		col, err := tr.column(v.Field)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s ILIKE %s", col, tr.placeholder("%"+v.Value+"%")), nil

	case search.Membership:
		col, err := tr.column(v.Field)
		if err != nil {
			return "", err
		}
		clauses := make([]string, len(v.Values))
		for i, val := range v.Values {
			clauses[i] = fmt.Sprintf("%s ILIKE %s", col, tr.placeholder("%"+val+"%"))
		}
		return "(" + strings.Join(clauses, " OR ") + ")", nil

	case search.Range:
		col, err := tr.column(v.Field)
		if err != nil {
			return "", err
		}
		var clauses []string
		if v.Min != nil {
			clauses = append(clauses, fmt.Sprintf("%s >= %s", col, tr.placeholder(v.Min)))
		}
		if v.Max != nil {
			clauses = append(clauses, fmt.Sprintf("%s <= %s", col, tr.placeholder(v.Max)))
		}
		if len(clauses) == 0 {
			return "", fmt.Errorf("range on %q has no bounds", v.Field.Name)
		}
		return "(" + strings.Join(clauses, " AND ") + ")", nil

	case search.Equality:
		col, err := tr.column(v.Field)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s = %s", col, tr.placeholder(v.Value)), nil

	case search.NotMatch:
		col, err := tr.column(v.Field)
		if err != nil {
			return "", err
		}
		// NULL never equals the marker, so keep NULL rows.
		return fmt.Sprintf("(%s IS NULL OR UPPER(%s) != %s)", col, col, tr.placeholder(strings.ToUpper(v.Value))), nil

	case search.Or:
		clauses := make([]string, len(v.Preds))
		for i, sub := range v.Preds {
			c, err := tr.predicate(sub)
			if err != nil {
				return "", err
			}
			clauses[i] = c
		}
		return "(" + strings.Join(clauses, " OR ") + ")", nil

	default:
		return "", fmt.Errorf("unknown predicate type %T", p)
	}
}

// buildWhere renders a query's filters and conditions into one WHERE
// fragment (without the keyword) plus its arguments. An empty query
// yields an empty fragment.
func buildWhere(q search.Query) (string, []any, error) {
	tr := &translator{}
	var clauses []string
	for _, p := range append(append([]search.Predicate{}, q.Filters...), q.Conditions...) {
		c, err := tr.predicate(p)
		if err != nil {
			return "", nil, err
		}
		clauses = append(clauses, c)
	}
	return strings.Join(clauses, " AND "), tr.args, nil
}

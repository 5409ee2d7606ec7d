package postgres

import (
	"reflect"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"donortrack/internal/domain/search"
)

func TestBuildWhereSubstring(t *testing.T) {
	q := search.Query{Conditions: []search.Predicate{
		search.Substring{Field: search.FieldLastName, Value: "smith"},
	}}
	where, args, err := buildWhere(q)
	if err != nil {
		t.Fatalf("buildWhere: %v", err)
	}
	if where != "d.last_name ILIKE $1" {
		t.Errorf("where = %q", where)
	}
	if !reflect.DeepEqual(args, []any{"%smith%"}) {
		t.Errorf("args = %v", args)
	}
}

func TestBuildWhereMembership(t *testing.T) {
	q := search.Query{Conditions: []search.Predicate{
		search.Membership{Field: search.FieldCity, Values: []string{"Austin", "Dallas"}},
	}}
	where, args, err := buildWhere(q)
	if err != nil {
		t.Fatalf("buildWhere: %v", err)
	}
	if where != "(d.city ILIKE $1 OR d.city ILIKE $2)" {
		t.Errorf("where = %q", where)
	}
	if len(args) != 2 {
		t.Errorf("args = %v", args)
	}
}

func TestBuildWhereRange(t *testing.T) {
	min := decimal.NewFromInt(100)
	max := decimal.NewFromInt(500)

	t.Run("both bounds", func(t *testing.T) {
		q := search.Query{Conditions: []search.Predicate{
			search.Range{Field: search.FieldTotalAmount, Min: min, Max: max},
		}}
		where, args, err := buildWhere(q)
		if err != nil {
			t.Fatalf("buildWhere: %v", err)
		}
		if where != "(d.total_dollar_amount >= $1 AND d.total_dollar_amount <= $2)" {
			t.Errorf("where = %q", where)
		}
		if len(args) != 2 {
			t.Errorf("args = %v", args)
		}
	})

	t.Run("open lower bound", func(t *testing.T) {
		q := search.Query{Conditions: []search.Predicate{
			search.Range{Field: search.FieldTotalAmount, Max: max},
		}}
		where, _, err := buildWhere(q)
		if err != nil {
			t.Fatalf("buildWhere: %v", err)
		}
		if where != "(d.total_dollar_amount <= $1)" {
			t.Errorf("where = %q", where)
		}
	})
}

func TestBuildWhereNotMatchKeepsNulls(t *testing.T) {
	q := search.Query{Filters: []search.Predicate{
		search.NotMatch{Field: search.FieldDonorStatusDesc, Value: search.NonDonorMarker},
	}}
	where, args, err := buildWhere(q)
	if err != nil {
		t.Fatalf("buildWhere: %v", err)
	}
	if !strings.Contains(where, "IS NULL OR") {
		t.Errorf("NotMatch should keep NULL rows: %q", where)
	}
	if args[0] != search.NonDonorMarker {
		t.Errorf("args = %v", args)
	}
}

func TestBuildWhereOr(t *testing.T) {
	q := search.Query{Conditions: []search.Predicate{
		search.Or{Preds: []search.Predicate{
			search.Substring{Field: search.FieldPhone, Value: "555"},
			search.Substring{Field: search.FieldWorkPhone, Value: "555"},
			search.Substring{Field: search.FieldCellPhone, Value: "555"},
		}},
	}}
	where, args, err := buildWhere(q)
	if err != nil {
		t.Fatalf("buildWhere: %v", err)
	}
	want := "(d.phone ILIKE $1 OR d.work_phone ILIKE $2 OR d.cell_phone ILIKE $3)"
	if where != want {
		t.Errorf("where = %q, want %q", where, want)
	}
	if len(args) != 3 {
		t.Errorf("args = %v", args)
	}
}

func TestBuildWhereFiltersPrecedeConditions(t *testing.T) {
	q := search.Query{
		Filters: []search.Predicate{
			search.NotMatch{Field: search.FieldNewsletterStatusDesc, Value: search.DeceasedMarker},
		},
		Conditions: []search.Predicate{
			search.Substring{Field: search.FieldLastName, Value: "smith"},
		},
	}
	where, args, err := buildWhere(q)
	if err != nil {
		t.Fatalf("buildWhere: %v", err)
	}
	parts := strings.Split(where, " AND d.last_name")
	if len(parts) != 2 {
		t.Errorf("filter should precede condition: %q", where)
	}
	if len(args) != 2 {
		t.Errorf("args = %v", args)
	}
}

func TestBuildWhereRejectsUnknownColumn(t *testing.T) {
	q := search.Query{Conditions: []search.Predicate{
		search.Substring{Field: search.Field{Entity: search.EntityDonor, Name: "evil; DROP TABLE"}, Value: "x"},
	}}
	if _, _, err := buildWhere(q); err == nil {
		t.Error("expected error for unknown column")
	}
}

func TestBuildWhereEmptyQuery(t *testing.T) {
	where, args, err := buildWhere(search.Query{})
	if err != nil {
		t.Fatalf("buildWhere: %v", err)
	}
	if where != "" || len(args) != 0 {
		t.Errorf("expected empty fragment, got %q / %v", where, args)
	}
}

package search

// Entity identifies which table a field belongs to. Any predicate on a
// transaction field forces the donor query to join the transactions table.
type Entity int

const (
	EntityDonor Entity = iota
	EntityTransaction
)

// Field names a searchable column, scoped to its entity. The store-side
// translator maps these names onto concrete columns; nothing here is SQL.
type Field struct {
	Entity Entity
	Name   string
}

// Donor fields.
var (
	FieldAlternateID          = Field{EntityDonor, "alternate_id"}
	FieldFirstName            = Field{EntityDonor, "first_name"}
	FieldLastName             = Field{EntityDonor, "last_name"}
	FieldEmail                = Field{EntityDonor, "email_address"}
	FieldCity                 = Field{EntityDonor, "city"}
	FieldState                = Field{EntityDonor, "state"}
	FieldZip                  = Field{EntityDonor, "zip_plus4"}
	FieldPhone                = Field{EntityDonor, "phone"}
	FieldWorkPhone            = Field{EntityDonor, "work_phone"}
	FieldCellPhone            = Field{EntityDonor, "cell_phone"}
	FieldDonorStatus          = Field{EntityDonor, "donor_status"}
	FieldDonorStatusDesc      = Field{EntityDonor, "donor_status_desc"}
	FieldNewsletterStatus     = Field{EntityDonor, "newsletter_status"}
	FieldNewsletterStatusDesc = Field{EntityDonor, "newsletter_status_desc"}
	FieldTotalAmount          = Field{EntityDonor, "total_dollar_amount"}
	FieldDateAdded            = Field{EntityDonor, "date_added"}
	FieldExpirationDate       = Field{EntityDonor, "expiration_date"}
)

// Transaction fields.
var (
	FieldTransDate       = Field{EntityTransaction, "trans_date"}
	FieldTransAmount     = Field{EntityTransaction, "trans_amount"}
	FieldAppealCode      = Field{EntityTransaction, "appeal_code"}
	FieldPaymentType     = Field{EntityTransaction, "payment_type"}
	FieldUpdateBatchNum  = Field{EntityTransaction, "update_batch_num"}
	FieldJobDescription  = Field{EntityTransaction, "job_description"}
	FieldListDescription = Field{EntityTransaction, "list_description"}
)

// Predicate is one typed filter condition. The concrete variants below are
// the only implementations; the store translator switches over them.
type Predicate interface {
	On() Field
}

// Substring matches when the field contains the value, case-insensitively.
type Substring struct {
	Field Field
	Value string
}

func (p Substring) On() Field { return p.Field }

// Membership matches when the field contains any one of the values
// (case-insensitive substring each). Values are ORed within the predicate.
type Membership struct {
	Field  Field
	Values []string
}

func (p Membership) On() Field { return p.Field }

// Range bounds the field between Min and Max inclusive. A nil bound is
// unbounded. Values are whatever the store can compare: time.Time for
// dates, decimal.Decimal for amounts.
type Range struct {
	Field Field
	Min   any
	Max   any
}

func (p Range) On() Field { return p.Field }

// Equality matches the field exactly.
type Equality struct {
	Field Field
	Value any
}

func (p Equality) On() Field { return p.Field }

// NotMatch excludes rows whose field equals the marker, compared
// case-insensitively. Used for the always-on exclusion toggles.
type NotMatch struct {
	Field Field
	Value string
}

func (p NotMatch) On() Field { return p.Field }

// Or matches when any sub-predicate matches. Used where a single input
// searches several columns at once (phone / work phone / cell phone).
type Or struct {
	Preds []Predicate
}

// On reports the first sub-predicate's field; an Or spanning entities is
// not constructed anywhere.
func (p Or) On() Field {
	if len(p.Preds) == 0 {
		return Field{}
	}
	return p.Preds[0].On()
}

// Query is the normalized form of one search: fixed filter predicates,
// user criteria, and whether the transactions join is needed.
type Query struct {
	// Filters are ANDed ahead of everything else, independent of whether
	// any search criterion is present.
	Filters []Predicate
	// Conditions are the user's search criteria, ANDed together.
	Conditions []Predicate
	// JoinTransactions is set when any condition touches a transaction
	// field; the store must join and deduplicate donors.
	JoinTransactions bool
	// AnyCriterion reports whether at least one search field produced a
	// condition. Filter toggles alone do not count.
	AnyCriterion bool
	// Warnings carries degraded-filter notices: predicates that could not
	// be parsed and were dropped, but did not abort the search.
	Warnings []string
}

func (q *Query) add(p Predicate) {
	q.Conditions = append(q.Conditions, p)
	q.AnyCriterion = true
	if p.On().Entity == EntityTransaction {
		q.JoinTransactions = true
	}
}

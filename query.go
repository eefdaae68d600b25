package facet

// Relation joins constraints within one constraint group.
type Relation string

const (
	// RelationAnd requires every constraint in the group to match.
	RelationAnd Relation = "AND"
	// RelationOr requires at least one constraint in the group to match.
	RelationOr Relation = "OR"
)

// Compare is the comparison operator of a meta constraint.
type Compare string

const (
	// CompareEq is exact equality.
	CompareEq Compare = "="
	// CompareLike is substring/pattern matching on character data.
	CompareLike Compare = "LIKE"
	// CompareGTE is an inclusive lower bound.
	CompareGTE Compare = ">="
	// CompareLTE is an inclusive upper bound.
	CompareLTE Compare = "<="
	// CompareBetween is an inclusive two-sided bound over two values.
	CompareBetween Compare = "BETWEEN"
)

// MetaType declares how a meta constraint's values are compared by the
// storage layer.
type MetaType string

const (
	// MetaChar compares values as character data.
	MetaChar MetaType = "CHAR"
	// MetaNumeric compares values numerically.
	MetaNumeric MetaType = "NUMERIC"
	// MetaDate compares values as calendar dates.
	MetaDate MetaType = "DATE"
)

// TaxConstraint is one taxonomy-membership condition: the listing must carry
// at least one of Terms in Taxonomy (OR within the constraint).
type TaxConstraint struct {
	Taxonomy string
	Field    string
	Terms    []int
	Operator string
}

// TaxOperatorIn is the default membership operator.
const TaxOperatorIn = "IN"

// TaxFieldTermID is the default term reference field.
const TaxFieldTermID = "term_id"

// MetaConstraint is one field-comparison condition. Values holds one entry
// for single-bound compares and two (low, high) for BETWEEN.
type MetaConstraint struct {
	Key     string
	Values  []string
	Type    MetaType
	Compare Compare
}

// Query is the shared mutable constraint accumulator filters compose into.
// Each filter reads the current constraint group, appends its own entry and
// writes the group back, so multiple filters never clobber each other. The
// engine only builds the query; execution belongs to the storage layer.
type Query struct {
	search       string
	tax          []TaxConstraint
	taxRelation  Relation
	meta         []MetaConstraint
	metaRelation Relation
}

// NewQuery returns an empty query.
func NewQuery() *Query {
	return &Query{taxRelation: RelationAnd, metaRelation: RelationAnd}
}

// Search returns the free-text search term, or "".
func (q *Query) Search() string { return q.search }

// SetSearch sets the free-text search term.
func (q *Query) SetSearch(term string) { q.search = term }

// TaxConstraints returns the accumulated taxonomy-membership group.
func (q *Query) TaxConstraints() []TaxConstraint { return q.tax }

// SetTaxConstraints replaces the taxonomy-membership group. The group
// relation is forced to AND once more than one constraint is present.
func (q *Query) SetTaxConstraints(cs []TaxConstraint) {
	q.tax = cs
	if len(cs) > 1 {
		q.taxRelation = RelationAnd
	}
}

// TaxRelation returns the relation joining the taxonomy group.
func (q *Query) TaxRelation() Relation {
	if q.taxRelation == "" {
		return RelationAnd
	}
	return q.taxRelation
}

// SetTaxRelation sets the relation joining the taxonomy group. Ignored once
// the group holds more than one constraint (AND is enforced).
func (q *Query) SetTaxRelation(r Relation) {
	if len(q.tax) > 1 {
		return
	}
	q.taxRelation = r
}

// MetaConstraints returns the accumulated field-comparison group.
func (q *Query) MetaConstraints() []MetaConstraint { return q.meta }

// SetMetaConstraints replaces the field-comparison group with the same
// relation rule as SetTaxConstraints.
func (q *Query) SetMetaConstraints(cs []MetaConstraint) {
	q.meta = cs
	if len(cs) > 1 {
		q.metaRelation = RelationAnd
	}
}

// MetaRelation returns the relation joining the meta group.
func (q *Query) MetaRelation() Relation {
	if q.metaRelation == "" {
		return RelationAnd
	}
	return q.metaRelation
}

// IsEmpty reports whether no filter contributed anything.
func (q *Query) IsEmpty() bool {
	return q.search == "" && len(q.tax) == 0 && len(q.meta) == 0
}

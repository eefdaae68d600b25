package facet

import (
	"context"
	"strconv"
	"strings"
	"sync"
)

// DefaultTagMaxItems caps how many tag choices render when no explicit cap
// is configured. The most-used terms surface first; alphabetical listing of
// a large tag vocabulary is both slow and unusable under a cap.
const DefaultTagMaxItems = 20

// Tag is the flat multi-select taxonomy filter, rendered as independent
// checkboxes over the taxonomy's most-populous terms.
type Tag struct {
	baseFilter
	terms TermSource

	once    sync.Once
	choices []Choice
}

var _ Filter = (*Tag)(nil)

// NewTag creates a tag filter over a taxonomy. Tag filters are always
// multi-select.
func NewTag(name, taxonomy string, terms TermSource, opts ...FilterOption) *Tag {
	cfg := newFilterConfig(name, SourceTaxonomy, taxonomy)
	cfg.maxItems = DefaultTagMaxItems
	for _, o := range opts {
		o(&cfg)
	}
	cfg.multiple = true
	return &Tag{baseFilter: baseFilter{cfg: cfg}, terms: terms}
}

// Kind returns KindCheckbox.
func (t *Tag) Kind() Kind { return KindCheckbox }

// MaxItems is the configured choice cap.
func (t *Tag) MaxItems() int { return t.cfg.maxItems }

// Sanitize coerces raw input to MultiValue, mapping each element through
// term-id coercion and keeping zero entries.
func (t *Tag) Sanitize(raw any) Value {
	return MultiValue(coerceTermIDs(raw))
}

// IsActive requires at least one non-zero selected identifier.
func (t *Tag) IsActive(v Value) bool {
	ids, ok := v.(MultiValue)
	return ok && anyNonZero(ids)
}

// Choices returns up to maxItems terms by descending usage count, computed
// once per instance. The static choice list is a fallback for an empty
// term set.
func (t *Tag) Choices(ctx context.Context) []Choice {
	t.once.Do(func() {
		t.choices = t.computeChoices(ctx)
	})
	return t.choices
}

func (t *Tag) computeChoices(ctx context.Context) []Choice {
	if t.terms == nil {
		return t.cfg.static
	}
	terms, err := t.terms.TopTerms(ctx, t.cfg.sourceKey, t.cfg.maxItems)
	if err != nil || len(terms) == 0 {
		return t.cfg.static
	}
	out := make([]Choice, len(terms))
	for i, term := range terms {
		out[i] = Choice{Value: strconv.Itoa(term.ID), Label: term.Name, Count: term.Count}
	}
	return out
}

// DisplayValue resolves selected tag labels, joined with ", ".
func (t *Tag) DisplayValue(ctx context.Context, v Value) string {
	ids, ok := v.(MultiValue)
	if !ok {
		return ""
	}
	return strings.Join(selectedLabels(ids, t.Choices(ctx)), ", ")
}

// ModifyQuery appends one taxonomy-membership constraint over the non-zero
// selected identifiers, OR within the constraint.
func (t *Tag) ModifyQuery(q *Query, v Value) {
	if !t.IsActive(v) {
		return
	}
	ids := nonZero(v.(MultiValue))
	tax := q.TaxConstraints()
	tax = append(tax, TaxConstraint{
		Taxonomy: t.cfg.sourceKey,
		Field:    TaxFieldTermID,
		Terms:    ids,
		Operator: TaxOperatorIn,
	})
	q.SetTaxConstraints(tax)
}

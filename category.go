package facet

import (
	"context"
	"strconv"
	"strings"
	"sync"
)

// MaxTermDepth bounds the depth-first walk over the term tree. Term graphs
// with cycles or pathological parent chains stop descending silently at
// this depth instead of erroring.
const MaxTermDepth = 10

// Category is the hierarchical taxonomy filter: single-select by default,
// rendered as an indented tree, empty terms hidden.
type Category struct {
	baseFilter
	terms TermSource

	once    sync.Once
	choices []Choice
}

var _ Filter = (*Category)(nil)

// NewCategory creates a category filter over a taxonomy.
func NewCategory(name, taxonomy string, terms TermSource, opts ...FilterOption) *Category {
	cfg := newFilterConfig(name, SourceTaxonomy, taxonomy)
	cfg.hierarchical = true
	cfg.hideEmpty = true
	cfg.emptyOptionLabel = "All"
	for _, o := range opts {
		o(&cfg)
	}
	return &Category{baseFilter: baseFilter{cfg: cfg}, terms: terms}
}

// Kind returns KindSelect.
func (c *Category) Kind() Kind { return KindSelect }

// EmptyOptionLabel is the label of the "no selection" choice.
func (c *Category) EmptyOptionLabel() string { return c.cfg.emptyOptionLabel }

// Sanitize coerces raw input to TermValue, or MultiValue when multi-select
// is enabled. Negative and non-numeric input collapse to 0.
func (c *Category) Sanitize(raw any) Value {
	if c.cfg.multiple {
		return MultiValue(coerceTermIDs(raw))
	}
	return TermValue(coerceTermID(firstOf(raw)))
}

// IsActive requires a non-zero selected term.
func (c *Category) IsActive(v Value) bool {
	switch val := v.(type) {
	case TermValue:
		return val > 0
	case MultiValue:
		return anyNonZero(val)
	default:
		return false
	}
}

// Choices walks the term tree depth-first from the root, one Depth step per
// level. The walk is computed once per instance; the static choice list is
// a fallback used only when the computed term list comes back empty.
func (c *Category) Choices(ctx context.Context) []Choice {
	c.once.Do(func() {
		c.choices = c.computeChoices(ctx)
	})
	return c.choices
}

func (c *Category) computeChoices(ctx context.Context) []Choice {
	if c.terms == nil {
		return c.cfg.static
	}
	terms, err := c.terms.Terms(ctx, c.cfg.sourceKey, TermQuery{HideEmpty: c.cfg.hideEmpty})
	if err != nil || len(terms) == 0 {
		return c.cfg.static
	}
	if !c.cfg.hierarchical {
		out := make([]Choice, len(terms))
		for i, t := range terms {
			out[i] = Choice{Value: strconv.Itoa(t.ID), Label: t.Name, Count: t.Count}
		}
		return out
	}
	return buildTermTree(terms)
}

// buildTermTree orders terms depth-first from parent 0, recursing into
// children before exhausting siblings. Descent past MaxTermDepth stops
// silently.
func buildTermTree(terms []Term) []Choice {
	children := make(map[int][]Term, len(terms))
	for _, t := range terms {
		children[t.Parent] = append(children[t.Parent], t)
	}

	out := make([]Choice, 0, len(terms))
	var walk func(parent, depth int)
	walk = func(parent, depth int) {
		if depth > MaxTermDepth {
			return
		}
		for _, t := range children[parent] {
			out = append(out, Choice{
				Value: strconv.Itoa(t.ID),
				Label: t.Name,
				Count: t.Count,
				Depth: depth,
			})
			walk(t.ID, depth+1)
		}
	}
	walk(0, 0)
	return out
}

// DisplayValue resolves selected term labels, joined with ", ".
func (c *Category) DisplayValue(ctx context.Context, v Value) string {
	var ids []int
	switch val := v.(type) {
	case TermValue:
		ids = []int{int(val)}
	case MultiValue:
		ids = val
	default:
		return ""
	}
	return strings.Join(selectedLabels(ids, c.Choices(ctx)), ", ")
}

// ModifyQuery appends one taxonomy-membership constraint carrying every
// selected term, OR within the constraint.
func (c *Category) ModifyQuery(q *Query, v Value) {
	if !c.IsActive(v) {
		return
	}
	var ids []int
	switch val := v.(type) {
	case TermValue:
		ids = []int{int(val)}
	case MultiValue:
		ids = nonZero(val)
	}
	tax := q.TaxConstraints()
	tax = append(tax, TaxConstraint{
		Taxonomy: c.cfg.sourceKey,
		Field:    TaxFieldTermID,
		Terms:    ids,
		Operator: TaxOperatorIn,
	})
	q.SetTaxConstraints(tax)
}

// firstOf unwraps list input to its first element so that a multi-submitted
// parameter still sanitizes as a scalar selection.
func firstOf(raw any) any {
	switch v := raw.(type) {
	case []string:
		if len(v) > 0 {
			return v[0]
		}
		return nil
	case []any:
		if len(v) > 0 {
			return v[0]
		}
		return nil
	default:
		return raw
	}
}

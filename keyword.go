package facet

import (
	"context"
	"strconv"
	"strings"
)

// DefaultKeywordMinLength is the minimum trimmed length below which a
// keyword does not constrain the query.
const DefaultKeywordMinLength = 2

// Keyword is the free-text search filter. With no source key it feeds the
// query's search term; bound to a field key it contributes a LIKE
// constraint on that field instead.
type Keyword struct {
	baseFilter
}

var _ Filter = (*Keyword)(nil)

// NewKeyword creates a keyword filter.
func NewKeyword(name string, opts ...FilterOption) *Keyword {
	cfg := newFilterConfig(name, SourceField, "")
	cfg.minLength = DefaultKeywordMinLength
	for _, o := range opts {
		o(&cfg)
	}
	return &Keyword{baseFilter{cfg: cfg}}
}

// Kind returns KindText.
func (k *Keyword) Kind() Kind { return KindText }

// Sanitize coerces raw input to a trimmed TextValue.
func (k *Keyword) Sanitize(raw any) Value {
	return TextValue(strings.TrimSpace(firstString(raw)))
}

// IsActive requires at least minLength trimmed characters.
func (k *Keyword) IsActive(v Value) bool {
	t, ok := v.(TextValue)
	if !ok {
		return false
	}
	return len(strings.TrimSpace(string(t))) >= k.cfg.minLength
}

// Choices returns nil; free text has no discrete universe.
func (k *Keyword) Choices(context.Context) []Choice { return nil }

// DisplayValue returns the search term itself.
func (k *Keyword) DisplayValue(_ context.Context, v Value) string {
	t, _ := v.(TextValue)
	return string(t)
}

// ModifyQuery sets the query's search term, or appends a LIKE constraint
// when the filter is bound to a specific field key.
func (k *Keyword) ModifyQuery(q *Query, v Value) {
	if !k.IsActive(v) {
		return
	}
	term := strings.TrimSpace(string(v.(TextValue)))
	if k.cfg.sourceKey == "" {
		q.SetSearch(term)
		return
	}
	meta := q.MetaConstraints()
	meta = append(meta, MetaConstraint{
		Key:     k.cfg.sourceKey,
		Values:  []string{term},
		Type:    MetaChar,
		Compare: CompareLike,
	})
	q.SetMetaConstraints(meta)
}

func (k *Keyword) attributes() map[string]string {
	return map[string]string{
		"minlength": strconv.Itoa(k.cfg.minLength),
	}
}

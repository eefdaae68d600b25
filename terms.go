package facet

import (
	"context"
	"sort"
)

// Term is one value within a categorical vocabulary: a category, a tag, an
// amenity. Parent is 0 for root terms; Count is how many listings carry it.
type Term struct {
	ID     int
	Name   string
	Parent int
	Count  int
}

// TermQuery narrows a term listing.
type TermQuery struct {
	// HideEmpty skips terms with zero usage count.
	HideEmpty bool
}

// TermSource answers taxonomy lookups for choice rendering. Implementations
// are synchronous reads against the storage collaborator; the Redis-backed
// implementation lives in internal/repository/taxonomy.
type TermSource interface {
	// Terms lists every term of a taxonomy, ordered by name.
	Terms(ctx context.Context, taxonomy string, q TermQuery) ([]Term, error)
	// TopTerms lists up to limit terms ordered by descending usage count.
	TopTerms(ctx context.Context, taxonomy string, limit int) ([]Term, error)
}

// StaticTermSource is an in-memory TermSource keyed by taxonomy, for
// embedded use and tests.
type StaticTermSource map[string][]Term

var _ TermSource = StaticTermSource{}

// Terms returns the taxonomy's terms ordered by name.
func (s StaticTermSource) Terms(_ context.Context, taxonomy string, q TermQuery) ([]Term, error) {
	out := make([]Term, 0, len(s[taxonomy]))
	for _, t := range s[taxonomy] {
		if q.HideEmpty && t.Count == 0 {
			continue
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// TopTerms returns up to limit terms ordered by descending usage count.
func (s StaticTermSource) TopTerms(_ context.Context, taxonomy string, limit int) ([]Term, error) {
	out := append([]Term(nil), s[taxonomy]...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

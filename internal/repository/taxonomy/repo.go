// Package taxonomy persists taxonomy terms as Redis hashes and serves them
// to taxonomy-backed filters.
package taxonomy

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/atlasdir/facet"
)

// DefaultKeyPrefix scopes all taxonomy keys.
const DefaultKeyPrefix = "facet:"

// topTermsCacheTTL bounds how stale a cached tag cloud may get; usage counts
// move on every listing write, so the ordering is recomputed once a minute
// instead of on every render.
const topTermsCacheTTL = time.Minute

// store is the consumer interface for taxonomy operations (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	HIncrBy(ctx context.Context, key, field string, delta int64) (int64, error)
	Del(ctx context.Context, key string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	IncrBy(ctx context.Context, key string, val int64) (int64, error)
}

// Repo stores terms under {prefix}term:{taxonomy}:{id} and allocates term
// identifiers from {prefix}seq:term:{taxonomy}.
type Repo struct {
	store  store
	prefix string
}

var _ facet.TermSource = (*Repo)(nil)

// New creates a taxonomy repository.
func New(s store) *Repo {
	return &Repo{store: s, prefix: DefaultKeyPrefix}
}

// WithKeyPrefix overrides the key prefix.
func (r *Repo) WithKeyPrefix(prefix string) *Repo {
	r.prefix = prefix
	return r
}

// Terms returns all terms of a taxonomy sorted by name.
func (r *Repo) Terms(ctx context.Context, taxonomy string, q facet.TermQuery) ([]facet.Term, error) {
	terms, err := r.load(ctx, taxonomy)
	if err != nil {
		return nil, err
	}

	if q.HideEmpty {
		kept := terms[:0]
		for _, t := range terms {
			if t.Count > 0 {
				kept = append(kept, t)
			}
		}
		terms = kept
	}

	sort.SliceStable(terms, func(i, j int) bool { return terms[i].Name < terms[j].Name })
	return terms, nil
}

// TopTerms returns up to limit terms of a taxonomy ordered by descending
// usage count. The result is cached with a short TTL; ranking a large
// vocabulary scans every term hash, which is too expensive per render.
func (r *Repo) TopTerms(ctx context.Context, taxonomy string, limit int) ([]facet.Term, error) {
	cacheKey := r.topTermsKey(taxonomy, limit)
	if data, err := r.store.Get(ctx, cacheKey); err == nil {
		var cached []facet.Term
		if json.Unmarshal(data, &cached) == nil {
			return cached, nil
		}
	}

	terms, err := r.load(ctx, taxonomy)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(terms, func(i, j int) bool { return terms[i].Count > terms[j].Count })
	if limit > 0 && len(terms) > limit {
		terms = terms[:limit]
	}

	// Cache write is best effort; a failed write only costs the next caller
	// a recompute.
	if data, err := json.Marshal(terms); err == nil {
		_ = r.store.SetWithTTL(ctx, cacheKey, data, topTermsCacheTTL)
	}
	return terms, nil
}

// UpsertTerm stores a term, allocating an identifier when the term has none.
func (r *Repo) UpsertTerm(ctx context.Context, taxonomy string, t facet.Term) (facet.Term, error) {
	if t.ID == 0 {
		id, err := r.store.IncrBy(ctx, r.seqKey(taxonomy), 1)
		if err != nil {
			return facet.Term{}, fmt.Errorf("allocate term id for %s: %w", taxonomy, err)
		}
		t.ID = int(id)
	}
	if t.ID < 0 {
		return facet.Term{}, fmt.Errorf("term id must be positive, got %d", t.ID)
	}

	if err := r.store.HSet(ctx, r.termKey(taxonomy, t.ID), termToFields(t)); err != nil {
		return facet.Term{}, fmt.Errorf("store term %s/%d: %w", taxonomy, t.ID, err)
	}
	return t, nil
}

// DeleteTerm removes a term.
func (r *Repo) DeleteTerm(ctx context.Context, taxonomy string, id int) error {
	if err := r.store.Del(ctx, r.termKey(taxonomy, id)); err != nil {
		return fmt.Errorf("delete term %s/%d: %w", taxonomy, id, err)
	}
	return nil
}

// IncrementCount adjusts a term's usage count and returns the new value.
func (r *Repo) IncrementCount(ctx context.Context, taxonomy string, id int, delta int) (int, error) {
	n, err := r.store.HIncrBy(ctx, r.termKey(taxonomy, id), fieldCount, int64(delta))
	if err != nil {
		return 0, fmt.Errorf("increment count %s/%d: %w", taxonomy, id, err)
	}
	return int(n), nil
}

func (r *Repo) load(ctx context.Context, taxonomy string) ([]facet.Term, error) {
	keys, err := r.store.Scan(ctx, r.prefix+"term:"+taxonomy+":*")
	if err != nil {
		return nil, fmt.Errorf("scan terms %s: %w", taxonomy, err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load terms %s: %w", taxonomy, err)
	}

	terms := make([]facet.Term, 0, len(hashes))
	for _, fields := range hashes {
		if t, ok := termFromFields(fields); ok {
			terms = append(terms, t)
		}
	}
	return terms, nil
}

func (r *Repo) termKey(taxonomy string, id int) string {
	return r.prefix + "term:" + taxonomy + ":" + strconv.Itoa(id)
}

func (r *Repo) seqKey(taxonomy string) string {
	return r.prefix + "seq:term:" + taxonomy
}

func (r *Repo) topTermsKey(taxonomy string, limit int) string {
	return r.prefix + "cache:topterms:" + taxonomy + ":" + strconv.Itoa(limit)
}

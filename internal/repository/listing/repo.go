// Package listing persists catalog listings as Redis hashes and executes
// composed filter queries against their FT index.
package listing

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/atlasdir/facet"

	"github.com/atlasdir/facet/internal/db"
)

// DefaultKeyPrefix scopes all listing keys.
const DefaultKeyPrefix = "facet:"

// store is the consumer interface for listing operations (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchList(ctx context.Context, index, query string, offset, limit int, fields []string) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// Repo stores listings under {prefix}listing:{id} and searches them through
// the {prefix}listing:idx FT index.
type Repo struct {
	store  store
	prefix string
}

// New creates a listing repository.
func New(s store) *Repo {
	return &Repo{store: s, prefix: DefaultKeyPrefix}
}

// WithKeyPrefix overrides the key prefix.
func (r *Repo) WithKeyPrefix(prefix string) *Repo {
	r.prefix = prefix
	return r
}

// EnsureIndex creates the listing FT index when absent, and rebuilds it when
// the filterable taxonomy set changed since the index was built. The
// taxonomies become TAG fields so term constraints can filter on them; a
// recorded schema fingerprint decides whether an existing index still
// matches. Dropping the index keeps the listing hashes, so a rebuild
// reindexes them in the background.
func (r *Repo) EnsureIndex(ctx context.Context, taxonomies []string) error {
	fingerprint := schemaFingerprint(taxonomies)

	exists, err := r.store.IndexExists(ctx, r.indexName())
	if err != nil {
		return fmt.Errorf("probe listing index: %w", err)
	}
	if exists {
		stored, err := r.store.Get(ctx, r.schemaKey())
		if err != nil && !errors.Is(err, db.ErrKeyNotFound) {
			return fmt.Errorf("load index schema: %w", err)
		}
		if string(stored) == fingerprint {
			return nil
		}
		if err := r.store.DropIndex(ctx, r.indexName()); err != nil {
			return fmt.Errorf("drop stale listing index: %w", err)
		}
	}

	b := db.NewIndex(r.indexName()).
		Prefix(r.keyPrefix()).
		Text(fieldTitle).
		Text(fieldDescription).
		Text(fieldCity).
		SortableNumeric(fieldPrice).
		SortableNumeric(fieldRating).
		SortableNumeric(fieldOpenedAt)
	for _, taxonomy := range taxonomies {
		b = b.TagWithOpts(taxFieldPrefix+taxonomy, tagSeparator, false)
	}

	def, err := b.Build()
	if err != nil {
		return fmt.Errorf("build listing index: %w", err)
	}
	if err := r.store.CreateIndex(ctx, def); err != nil {
		return fmt.Errorf("create listing index: %w", err)
	}
	if err := r.store.Set(ctx, r.schemaKey(), []byte(fingerprint)); err != nil {
		return fmt.Errorf("record index schema: %w", err)
	}
	return nil
}

// schemaFingerprint canonicalizes the taxonomy set so ordering differences
// in configuration do not force a rebuild.
func schemaFingerprint(taxonomies []string) string {
	sorted := make([]string, len(taxonomies))
	copy(sorted, taxonomies)
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}

// Upsert stores one listing.
func (r *Repo) Upsert(ctx context.Context, l Listing) error {
	if l.ID == "" {
		return fmt.Errorf("listing id is required")
	}
	if err := r.store.HSet(ctx, r.listingKey(l.ID), listingToFields(l)); err != nil {
		return fmt.Errorf("store listing %s: %w", l.ID, err)
	}
	return nil
}

// UpsertMulti stores many listings in one pipelined round-trip.
func (r *Repo) UpsertMulti(ctx context.Context, ls []Listing) error {
	if len(ls) == 0 {
		return nil
	}
	items := make([]db.HashSetItem, len(ls))
	for i, l := range ls {
		if l.ID == "" {
			return fmt.Errorf("listing %d: id is required", i)
		}
		items[i] = db.HashSetItem{Key: r.listingKey(l.ID), Fields: listingToFields(l)}
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("store listings: %w", err)
	}
	return nil
}

// Get loads one listing. Returns db.ErrKeyNotFound when absent.
func (r *Repo) Get(ctx context.Context, id string) (Listing, error) {
	fields, err := r.store.HGetAll(ctx, r.listingKey(id))
	if err != nil {
		return Listing{}, fmt.Errorf("load listing %s: %w", id, err)
	}
	l, ok := listingFromFields(fields)
	if !ok {
		return Listing{}, db.ErrKeyNotFound
	}
	return l, nil
}

// Delete removes a listing.
func (r *Repo) Delete(ctx context.Context, id string) error {
	exists, err := r.store.Exists(ctx, r.listingKey(id))
	if err != nil {
		return fmt.Errorf("probe listing %s: %w", id, err)
	}
	if !exists {
		return db.ErrKeyNotFound
	}
	if err := r.store.Del(ctx, r.listingKey(id)); err != nil {
		return fmt.Errorf("delete listing %s: %w", id, err)
	}
	return nil
}

// Search executes a composed filter query, returning the page of matching
// listings and the total match count.
func (r *Repo) Search(ctx context.Context, q *facet.Query, offset, limit int) ([]Listing, int, error) {
	query := translateQuery(q)

	sr, err := r.store.SearchList(ctx, r.indexName(), query, offset, limit, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("search listings: %w", err)
	}
	if sr == nil {
		return nil, 0, nil
	}

	listings := make([]Listing, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		if l, ok := listingFromFields(entry.Fields); ok {
			listings = append(listings, l)
		}
	}
	return listings, sr.Total, nil
}

// Count returns how many listings match a composed filter query.
func (r *Repo) Count(ctx context.Context, q *facet.Query) (int, error) {
	n, err := r.store.SearchCount(ctx, r.indexName(), translateQuery(q))
	if err != nil {
		return 0, fmt.Errorf("count listings: %w", err)
	}
	return n, nil
}

func (r *Repo) keyPrefix() string {
	return r.prefix + "listing:"
}

func (r *Repo) listingKey(id string) string {
	return r.keyPrefix() + id
}

func (r *Repo) indexName() string {
	return r.keyPrefix() + "idx"
}

// schemaKey lives outside keyPrefix() so the plain string never matches the
// index's hash prefix.
func (r *Repo) schemaKey() string {
	return r.prefix + "idxschema:listing"
}

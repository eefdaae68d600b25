package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atlasdir/facet"
	"github.com/atlasdir/facet/internal/db"
	dbRedis "github.com/atlasdir/facet/internal/db/redis"
	"github.com/atlasdir/facet/internal/repository/listing"
	"github.com/atlasdir/facet/internal/repository/taxonomy"
)

const defaultReadinessTimeout = 10 * time.Second

// Listing is the searchable catalog record.
type Listing = listing.Listing

// Page is one page of search results.
type Page struct {
	Items []Listing
	// Total is the overall match count, not the page length.
	Total int
	// Applied is how many filters contributed constraints.
	Applied int
}

// Internal interfaces for substitution in tests.
type listingStore interface {
	EnsureIndex(ctx context.Context, taxonomies []string) error
	Upsert(ctx context.Context, l listing.Listing) error
	UpsertMulti(ctx context.Context, ls []listing.Listing) error
	Get(ctx context.Context, id string) (listing.Listing, error)
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, q *facet.Query, offset, limit int) ([]listing.Listing, int, error)
}

type termStore interface {
	Terms(ctx context.Context, taxonomy string, q facet.TermQuery) ([]facet.Term, error)
	TopTerms(ctx context.Context, taxonomy string, limit int) ([]facet.Term, error)
	UpsertTerm(ctx context.Context, taxonomy string, t facet.Term) (facet.Term, error)
	DeleteTerm(ctx context.Context, taxonomy string, id int) error
}

// Client is the embedded catalog entry point.
type Client struct {
	store    db.Store
	listings listingStore
	terms    termStore
	registry *facet.Registry
	obs      *observer
}

// New creates a catalog Client and connects to the database.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		readinessTimeout: defaultReadinessTimeout,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("catalog: database address required (use WithRedis)")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("catalog: create store: %w", err)
	}

	if err := store.WaitForReady(ctx, cfg.readinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("catalog: database not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		store.Close()
		return nil, err
	}

	listings := listing.New(store)
	terms := taxonomy.New(store)
	if cfg.keyPrefix != "" {
		listings = listings.WithKeyPrefix(cfg.keyPrefix)
		terms = terms.WithKeyPrefix(cfg.keyPrefix)
	}

	registryOpts := []facet.RegistryOption{}
	if cfg.logger != nil {
		registryOpts = append(registryOpts, facet.WithRegistryLogger(cfg.logger))
	}

	return &Client{
		store:    store,
		listings: listings,
		terms:    terms,
		registry: facet.NewRegistry(registryOpts...),
		obs:      obs,
	}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Registry returns the filter registry. Register filters before searching.
func (c *Client) Registry() *facet.Registry {
	return c.registry
}

// EnsureIndex creates the listing search index when absent. The taxonomies
// become filterable tag fields.
func (c *Client) EnsureIndex(ctx context.Context, taxonomies []string) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ensure_index", start, err) }()

	return c.listings.EnsureIndex(ctx, taxonomies)
}

// Search composes every registered filter that is active in params into a
// query and returns the requested page. Page numbers start at 1.
func (c *Client) Search(ctx context.Context, params facet.Params, page, perPage int) (p Page, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err) }()

	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}

	q := facet.NewQuery()
	applied := c.registry.Apply(ctx, params, q)

	items, total, err := c.listings.Search(ctx, q, (page-1)*perPage, perPage)
	if err != nil {
		return Page{}, err
	}
	return Page{Items: items, Total: total, Applied: applied}, nil
}

// ActiveFilters returns the chip projection of every filter active in params.
func (c *Client) ActiveFilters(ctx context.Context, params facet.Params) map[string]facet.ActiveEntry {
	return c.registry.ActiveFilters(ctx, params)
}

// Describe returns render descriptors for all enabled filters.
func (c *Client) Describe(ctx context.Context, params facet.Params) []facet.Descriptor {
	return c.registry.Describe(ctx, params)
}

// UpsertListing stores one listing.
func (c *Client) UpsertListing(ctx context.Context, l Listing) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("upsert_listing", start, err) }()

	return c.listings.Upsert(ctx, l)
}

// UpsertListings stores many listings in one round-trip.
func (c *Client) UpsertListings(ctx context.Context, ls []Listing) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("upsert_listings", start, err) }()

	return c.listings.UpsertMulti(ctx, ls)
}

// GetListing loads one listing. Returns ErrNotFound when absent.
func (c *Client) GetListing(ctx context.Context, id string) (l Listing, err error) {
	start := time.Now()
	defer func() { c.obs.observe("get_listing", start, err) }()

	return c.listings.Get(ctx, id)
}

// DeleteListing removes a listing. Returns ErrNotFound when absent.
func (c *Client) DeleteListing(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("delete_listing", start, err) }()

	return c.listings.Delete(ctx, id)
}

// Terms lists a taxonomy's terms ordered by name.
func (c *Client) Terms(ctx context.Context, taxonomy string, hideEmpty bool) (ts []facet.Term, err error) {
	start := time.Now()
	defer func() { c.obs.observe("terms", start, err) }()

	return c.terms.Terms(ctx, taxonomy, facet.TermQuery{HideEmpty: hideEmpty})
}

// TopTerms lists up to limit terms ordered by descending usage count.
func (c *Client) TopTerms(ctx context.Context, taxonomy string, limit int) (ts []facet.Term, err error) {
	start := time.Now()
	defer func() { c.obs.observe("top_terms", start, err) }()

	return c.terms.TopTerms(ctx, taxonomy, limit)
}

// UpsertTerm stores a term, allocating an identifier when the term has none.
func (c *Client) UpsertTerm(ctx context.Context, taxonomy string, t facet.Term) (out facet.Term, err error) {
	start := time.Now()
	defer func() { c.obs.observe("upsert_term", start, err) }()

	return c.terms.UpsertTerm(ctx, taxonomy, t)
}

// DeleteTerm removes a term.
func (c *Client) DeleteTerm(ctx context.Context, taxonomy string, id int) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("delete_term", start, err) }()

	return c.terms.DeleteTerm(ctx, taxonomy, id)
}

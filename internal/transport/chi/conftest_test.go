package chi

import (
	"context"
	"net/http"

	gochi "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/atlasdir/facet"
	"github.com/atlasdir/facet/internal/repository/listing"
)

// mockCatalog implements catalog with overridable functions.
type mockCatalog struct {
	searchFn func(ctx context.Context, q *facet.Query, offset, limit int) ([]listing.Listing, int, error)
	upsertFn func(ctx context.Context, l listing.Listing) error
	getFn    func(ctx context.Context, id string) (listing.Listing, error)
	deleteFn func(ctx context.Context, id string) error
}

func (m *mockCatalog) Search(ctx context.Context, q *facet.Query, offset, limit int) ([]listing.Listing, int, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, q, offset, limit)
	}
	return nil, 0, nil
}

func (m *mockCatalog) Upsert(ctx context.Context, l listing.Listing) error {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, l)
	}
	return nil
}

func (m *mockCatalog) Get(ctx context.Context, id string) (listing.Listing, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return listing.Listing{}, nil
}

func (m *mockCatalog) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

// mockTermAdmin implements termAdmin with overridable functions.
type mockTermAdmin struct {
	termsFn      func(ctx context.Context, taxonomy string, q facet.TermQuery) ([]facet.Term, error)
	upsertTermFn func(ctx context.Context, taxonomy string, t facet.Term) (facet.Term, error)
	deleteTermFn func(ctx context.Context, taxonomy string, id int) error
	incrFn       func(ctx context.Context, taxonomy string, id, delta int) (int, error)
}

func (m *mockTermAdmin) Terms(ctx context.Context, taxonomy string, q facet.TermQuery) ([]facet.Term, error) {
	if m.termsFn != nil {
		return m.termsFn(ctx, taxonomy, q)
	}
	return nil, nil
}

func (m *mockTermAdmin) UpsertTerm(ctx context.Context, taxonomy string, t facet.Term) (facet.Term, error) {
	if m.upsertTermFn != nil {
		return m.upsertTermFn(ctx, taxonomy, t)
	}
	if t.ID == 0 {
		t.ID = 1
	}
	return t, nil
}

func (m *mockTermAdmin) DeleteTerm(ctx context.Context, taxonomy string, id int) error {
	if m.deleteTermFn != nil {
		return m.deleteTermFn(ctx, taxonomy, id)
	}
	return nil
}

func (m *mockTermAdmin) IncrementCount(ctx context.Context, taxonomy string, id, delta int) (int, error) {
	if m.incrFn != nil {
		return m.incrFn(ctx, taxonomy, id, delta)
	}
	return delta, nil
}

// mockPinger implements pinger with an overridable function.
type mockPinger struct {
	pingFn func(ctx context.Context) error
}

func (m *mockPinger) Ping(ctx context.Context) error {
	if m.pingFn != nil {
		return m.pingFn(ctx)
	}
	return nil
}

// testRegistry builds a registry with a keyword and a price filter.
func testRegistry() *facet.Registry {
	reg := facet.NewRegistry()
	reg.Register(facet.NewKeyword("keyword", facet.WithLabel("Search"), facet.WithPriority(10)))
	reg.Register(facet.NewRange("price", "price",
		facet.WithLabel("Price"), facet.WithPriority(20), facet.WithPrefix("$")))
	return reg
}

// newTestServer wires a server with mocks and returns the server plus a
// routed handler.
func newTestServer(cat *mockCatalog, terms *mockTermAdmin, ping *mockPinger) (*Server, http.Handler) {
	if cat == nil {
		cat = &mockCatalog{}
	}
	if terms == nil {
		terms = &mockTermAdmin{}
	}
	if ping == nil {
		ping = &mockPinger{}
	}
	s := NewServer(cat, terms, testRegistry(), ping, zap.NewNop())
	r := gochi.NewRouter()
	s.Routes(r)
	return s, r
}

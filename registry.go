package facet

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// ActiveEntry is the projection of one currently-constraining filter, used
// to render active-filter chips. It is never mutated after creation.
type ActiveEntry struct {
	Name         string
	Label        string
	Value        Value
	DisplayValue string
}

// Registry is the catalog of named filters. It is constructed explicitly at
// the composition root and shared by reference; concurrent reads are safe,
// while Register/Unregister/Reset are expected only during bootstrap and
// test teardown.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*registryEntry
	seq     int
	logger  *zap.Logger
}

type registryEntry struct {
	filter Filter
	seq    int
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithRegistryLogger attaches a logger for registration diagnostics.
func WithRegistryLogger(logger *zap.Logger) RegistryOption {
	return func(r *Registry) { r.logger = logger }
}

// NewRegistry creates an empty filter registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		entries: make(map[string]*registryEntry),
		logger:  zap.NewNop(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Register adds a filter under its name. Duplicate names and filters
// without a name are rejected with a diagnostic; the existing registration
// is never overwritten. The caller can log and continue.
func (r *Registry) Register(f Filter) bool {
	if f == nil || f.Name() == "" {
		r.logger.Warn("filter registration rejected: missing name")
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	name := f.Name()
	if _, exists := r.entries[name]; exists {
		r.logger.Warn("filter registration rejected: duplicate name",
			zap.String("filter", name))
		return false
	}
	r.seq++
	r.entries[name] = &registryEntry{filter: f, seq: r.seq}
	return true
}

// Unregister removes a filter by name. Returns false if it was not
// registered.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[name]; !exists {
		return false
	}
	delete(r.entries, name)
	return true
}

// Get returns the filter registered under name, or nil.
func (r *Registry) Get(name string) Filter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if e, ok := r.entries[name]; ok {
		return e.filter
	}
	return nil
}

// Has reports whether a filter is registered under name.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[name]
	return ok
}

// Count returns the number of registered filters.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Reset clears all registrations. Test and teardown use only; never called
// while requests are in flight.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[string]*registryEntry)
	r.seq = 0
}

// ListOption narrows a GetAll listing.
type ListOption func(*listSelector)

type listSelector struct {
	kind   Kind
	source Source
}

// OfKind keeps only filters of the given kind.
func OfKind(k Kind) ListOption {
	return func(s *listSelector) { s.kind = k }
}

// OfSource keeps only filters of the given source.
func OfSource(src Source) ListOption {
	return func(s *listSelector) { s.source = src }
}

// GetAll returns the registered filters sorted ascending by priority.
// The sort is stable: equal priorities keep registration order.
func (r *Registry) GetAll(opts ...ListOption) []Filter {
	var sel listSelector
	for _, o := range opts {
		o(&sel)
	}

	r.mu.RLock()
	matched := make([]*registryEntry, 0, len(r.entries))
	for _, e := range r.entries {
		if sel.kind != "" && e.filter.Kind() != sel.kind {
			continue
		}
		if sel.source != "" && e.filter.Source() != sel.source {
			continue
		}
		matched = append(matched, e)
	}
	r.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].filter.Priority() != matched[j].filter.Priority() {
			return matched[i].filter.Priority() < matched[j].filter.Priority()
		}
		return matched[i].seq < matched[j].seq
	})

	out := make([]Filter, len(matched))
	for i, e := range matched {
		out[i] = e.filter
	}
	return out
}

// activeValue is the single extraction path behind ActiveFilters and Apply,
// so chip display and query composition can never diverge.
func activeValue(f Filter, p Params) (Value, bool) {
	if !f.Enabled() {
		return nil, false
	}
	v := f.Sanitize(f.ValueFromParams(p))
	if !f.IsActive(v) {
		return nil, false
	}
	return v, true
}

// ActiveFilters extracts, sanitizes and activeness-checks every registered
// filter against the request parameters, returning an entry per filter that
// currently constrains the result set.
func (r *Registry) ActiveFilters(ctx context.Context, p Params) map[string]ActiveEntry {
	out := make(map[string]ActiveEntry)
	for _, f := range r.GetAll() {
		v, ok := activeValue(f, p)
		if !ok {
			continue
		}
		out[f.Name()] = ActiveEntry{
			Name:         f.Name(),
			Label:        f.Label(),
			Value:        v,
			DisplayValue: f.DisplayValue(ctx, v),
		}
	}
	return out
}

// Apply composes every active filter into the shared query in priority
// order and returns how many contributed.
func (r *Registry) Apply(_ context.Context, p Params, q *Query) int {
	applied := 0
	for _, f := range r.GetAll() {
		v, ok := activeValue(f, p)
		if !ok {
			continue
		}
		f.ModifyQuery(q, v)
		applied++
	}
	return applied
}

// Describe returns render descriptors for all enabled filters in priority
// order.
func (r *Registry) Describe(ctx context.Context, p Params) []Descriptor {
	filters := r.GetAll()
	out := make([]Descriptor, 0, len(filters))
	for _, f := range filters {
		if !f.Enabled() {
			continue
		}
		out = append(out, Describe(ctx, f, p))
	}
	return out
}

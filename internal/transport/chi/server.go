// Package chi exposes the facet catalog over HTTP using the chi router.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	gochi "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/atlasdir/facet"
	"github.com/atlasdir/facet/internal/db"
	"github.com/atlasdir/facet/internal/metrics"
	"github.com/atlasdir/facet/internal/repository/listing"
)

// catalog is the listing collaborator the server needs (ISP).
type catalog interface {
	Search(ctx context.Context, q *facet.Query, offset, limit int) ([]listing.Listing, int, error)
	Upsert(ctx context.Context, l listing.Listing) error
	Get(ctx context.Context, id string) (listing.Listing, error)
	Delete(ctx context.Context, id string) error
}

// termAdmin is the taxonomy collaborator the server needs (ISP).
type termAdmin interface {
	Terms(ctx context.Context, taxonomy string, q facet.TermQuery) ([]facet.Term, error)
	UpsertTerm(ctx context.Context, taxonomy string, t facet.Term) (facet.Term, error)
	DeleteTerm(ctx context.Context, taxonomy string, id int) error
	IncrementCount(ctx context.Context, taxonomy string, id, delta int) (int, error)
}

// pinger reports storage liveness for the health endpoint.
type pinger interface {
	Ping(ctx context.Context) error
}

// errorHandler tries to handle a storage error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the catalog API: listing search through the filter
// registry, filter render descriptors and taxonomy term administration.
type Server struct {
	listings catalog
	terms    termAdmin
	registry *facet.Registry
	health   pinger
	logger   *zap.Logger

	defaultPageSize int
	maxPageSize     int

	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	listings catalog,
	terms termAdmin,
	registry *facet.Registry,
	health pinger,
	logger *zap.Logger,
) *Server {
	s := &Server{
		listings:        listings,
		terms:           terms,
		registry:        registry,
		health:          health,
		logger:          logger,
		defaultPageSize: 20,
		maxPageSize:     100,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(db.ErrKeyNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(db.ErrIndexNotFound, http.StatusServiceUnavailable, codeIndexUnavailable),
	}
	return s
}

// WithPagination overrides the default and maximum page sizes.
func (s *Server) WithPagination(defaultSize, maxSize int) *Server {
	if defaultSize > 0 {
		s.defaultPageSize = defaultSize
	}
	if maxSize > 0 {
		s.maxPageSize = maxSize
	}
	return s
}

// Routes mounts all API routes on the router.
func (s *Server) Routes(r gochi.Router) {
	r.Get("/health", s.handleHealth)
	r.Get("/metrics", s.handleMetrics)
	r.Route("/api/v1", func(r gochi.Router) {
		r.Get("/listings", s.handleListListings)
		r.Get("/listings/{id}", s.handleGetListing)
		r.Put("/listings/{id}", s.handleUpsertListing)
		r.Delete("/listings/{id}", s.handleDeleteListing)

		r.Get("/filters", s.handleDescribeFilters)
		r.Get("/filters/active", s.handleActiveFilters)

		r.Get("/terms/{taxonomy}", s.handleListTerms)
		r.Post("/terms/{taxonomy}", s.handleUpsertTerm)
		r.Delete("/terms/{taxonomy}/{id}", s.handleDeleteTerm)
	})
}

// handleListListings composes every active filter into a query and returns
// the matching page.
func (s *Server) handleListListings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	params := facet.Params(r.URL.Query())

	q := facet.NewQuery()
	start := time.Now()
	applied := s.registry.Apply(ctx, params, q)
	metrics.ComposeDuration.Observe(time.Since(start).Seconds())

	active := s.registry.ActiveFilters(ctx, params)
	for name := range active {
		metrics.ActiveFiltersApplied.WithLabelValues(name).Inc()
	}

	page, perPage := s.pagination(params)
	items, total, err := s.listings.Search(ctx, q, (page-1)*perPage, perPage)
	if err != nil {
		s.handleStoreError(w, err)
		return
	}

	resp := listingPageResponse{
		Items:   make([]listingPayload, len(items)),
		Total:   total,
		Page:    page,
		PerPage: perPage,
		Applied: applied,
		Active:  activeToPayload(active),
	}
	for i, l := range items {
		resp.Items[i] = listingToPayload(l)
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleGetListing handles GET /api/v1/listings/{id}.
func (s *Server) handleGetListing(w http.ResponseWriter, r *http.Request) {
	id := gochi.URLParam(r, "id")
	l, err := s.listings.Get(r.Context(), id)
	if err != nil {
		s.handleStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listingToPayload(l))
}

// handleUpsertListing handles PUT /api/v1/listings/{id}. Term usage counts
// are adjusted by the difference between the previous and the new term
// assignments.
func (s *Server) handleUpsertListing(w http.ResponseWriter, r *http.Request) {
	id := gochi.URLParam(r, "id")

	var req listingPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "listing title is required")
		return
	}

	l := listingFromPayload(id, req)

	ctx := r.Context()
	var oldTerms map[string][]int
	created := true
	if prev, err := s.listings.Get(ctx, id); err == nil {
		oldTerms = prev.Terms
		created = false
	} else if !errors.Is(err, db.ErrKeyNotFound) {
		s.handleStoreError(w, err)
		return
	}

	if err := s.listings.Upsert(ctx, l); err != nil {
		s.handleStoreError(w, err)
		return
	}
	s.adjustTermCounts(ctx, oldTerms, l.Terms)

	status := http.StatusOK
	if created {
		status = http.StatusCreated
		w.Header().Set("Location", "/api/v1/listings/"+id)
	}
	writeJSON(w, status, listingToPayload(l))
}

// handleDeleteListing handles DELETE /api/v1/listings/{id}.
func (s *Server) handleDeleteListing(w http.ResponseWriter, r *http.Request) {
	id := gochi.URLParam(r, "id")
	ctx := r.Context()

	prev, err := s.listings.Get(ctx, id)
	if err != nil {
		s.handleStoreError(w, err)
		return
	}
	if err := s.listings.Delete(ctx, id); err != nil {
		s.handleStoreError(w, err)
		return
	}
	s.adjustTermCounts(ctx, prev.Terms, nil)

	w.WriteHeader(http.StatusNoContent)
}

// handleDescribeFilters handles GET /api/v1/filters.
func (s *Server) handleDescribeFilters(w http.ResponseWriter, r *http.Request) {
	params := facet.Params(r.URL.Query())
	descriptors := s.registry.Describe(r.Context(), params)

	out := make([]descriptorPayload, len(descriptors))
	for i, d := range descriptors {
		out[i] = descriptorToPayload(d)
	}
	writeJSON(w, http.StatusOK, filterListResponse{Filters: out})
}

// handleActiveFilters handles GET /api/v1/filters/active.
func (s *Server) handleActiveFilters(w http.ResponseWriter, r *http.Request) {
	params := facet.Params(r.URL.Query())
	active := s.registry.ActiveFilters(r.Context(), params)
	writeJSON(w, http.StatusOK, activeFilterResponse{Active: activeToPayload(active)})
}

// handleListTerms handles GET /api/v1/terms/{taxonomy}.
func (s *Server) handleListTerms(w http.ResponseWriter, r *http.Request) {
	taxonomy := gochi.URLParam(r, "taxonomy")
	q := facet.TermQuery{HideEmpty: r.URL.Query().Get("hide_empty") == "true"}

	terms, err := s.terms.Terms(r.Context(), taxonomy, q)
	if err != nil {
		metrics.TermLookups.WithLabelValues(taxonomy, "error").Inc()
		s.handleStoreError(w, err)
		return
	}
	metrics.TermLookups.WithLabelValues(taxonomy, "ok").Inc()

	out := make([]termPayload, len(terms))
	for i, t := range terms {
		out[i] = termToPayload(t)
	}
	writeJSON(w, http.StatusOK, termListResponse{Taxonomy: taxonomy, Terms: out})
}

// handleUpsertTerm handles POST /api/v1/terms/{taxonomy}. A request without
// an id allocates one.
func (s *Server) handleUpsertTerm(w http.ResponseWriter, r *http.Request) {
	taxonomy := gochi.URLParam(r, "taxonomy")

	var req termPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "term name is required")
		return
	}
	if req.ID < 0 {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "term id must not be negative")
		return
	}

	t, err := s.terms.UpsertTerm(r.Context(), taxonomy, facet.Term{
		ID:     req.ID,
		Name:   req.Name,
		Parent: req.Parent,
		Count:  req.Count,
	})
	if err != nil {
		s.handleStoreError(w, err)
		return
	}

	status := http.StatusOK
	if req.ID == 0 {
		status = http.StatusCreated
		w.Header().Set("Location", fmt.Sprintf("/api/v1/terms/%s/%d", taxonomy, t.ID))
	}
	writeJSON(w, status, termToPayload(t))
}

// handleDeleteTerm handles DELETE /api/v1/terms/{taxonomy}/{id}.
func (s *Server) handleDeleteTerm(w http.ResponseWriter, r *http.Request) {
	taxonomy := gochi.URLParam(r, "taxonomy")
	id, err := strconv.Atoi(gochi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "term id must be a positive integer")
		return
	}

	if err := s.terms.DeleteTerm(r.Context(), taxonomy, id); err != nil {
		s.handleStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"database": "ok"}
	status := "healthy"
	httpStatus := http.StatusOK

	if err := s.health.Ping(r.Context()); err != nil {
		s.logger.Warn("health check failed", zap.Error(err))
		checks["database"] = "failing"
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{Status: status, Checks: checks})
}

// handleMetrics handles GET /metrics.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// pagination reads page/per_page with bounds applied.
func (s *Server) pagination(p facet.Params) (page, perPage int) {
	page = 1
	if n, err := strconv.Atoi(p.Get("page")); err == nil && n > 0 {
		page = n
	}
	perPage = s.defaultPageSize
	if n, err := strconv.Atoi(p.Get("per_page")); err == nil && n > 0 {
		perPage = n
	}
	if perPage > s.maxPageSize {
		perPage = s.maxPageSize
	}
	return page, perPage
}

// adjustTermCounts applies the term-assignment difference between the old
// and the new listing to the taxonomy usage counts. Count drift is logged,
// never fatal to the request.
func (s *Server) adjustTermCounts(ctx context.Context, oldTerms, newTerms map[string][]int) {
	deltas := make(map[string]map[int]int)
	add := func(taxonomy string, id, delta int) {
		if id <= 0 {
			return
		}
		if deltas[taxonomy] == nil {
			deltas[taxonomy] = make(map[int]int)
		}
		deltas[taxonomy][id] += delta
	}
	for taxonomy, ids := range newTerms {
		for _, id := range ids {
			add(taxonomy, id, 1)
		}
	}
	for taxonomy, ids := range oldTerms {
		for _, id := range ids {
			add(taxonomy, id, -1)
		}
	}

	for taxonomy, byID := range deltas {
		for id, delta := range byID {
			if delta == 0 {
				continue
			}
			if _, err := s.terms.IncrementCount(ctx, taxonomy, id, delta); err != nil {
				s.logger.Warn("term count adjustment failed",
					zap.String("taxonomy", taxonomy),
					zap.Int("term_id", id),
					zap.Int("delta", delta),
					zap.Error(err),
				)
			}
		}
	}
}

func (s *Server) handleStoreError(w http.ResponseWriter, err error) {
	msg := safeStoreMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}

// safeStoreMessage returns a sentinel error message for the client without
// exposing internals.
func safeStoreMessage(err error) string {
	for _, sentinel := range []error{db.ErrKeyNotFound, db.ErrIndexNotFound} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// Package facet is a faceted filter and query-composition engine for
// listing directories: a registry of pluggable filter strategies (keyword,
// hierarchical category, flat tag, numeric range, date range) that extract
// their state from request parameters, sanitize it, and compose their
// constraints into one shared listing query.
//
// The engine never executes queries. It builds a Query value that a storage
// collaborator translates and runs; taxonomy choice lookups go through the
// TermSource boundary the same way.
package facet

package catalog

import "github.com/atlasdir/facet/internal/db"

// Sentinel errors re-exported from the storage layer.
// Use errors.Is() to check.
var (
	ErrNotFound      = db.ErrKeyNotFound
	ErrIndexNotFound = db.ErrIndexNotFound
	ErrIndexExists   = db.ErrIndexExists
)

// Package featurecache provides a bounded-TTL cache for expensive,
// slowly-changing per-lawyer feature sub-scores (professional maturity,
// academic qualification). Entries are keyed by (lawyer ID, feature kind)
// and expire after a configured TTL on the order of hours.
package featurecache

import (
	"context"
	"errors"
	"time"
)

// DefaultTTL is the default entry lifetime. Maturity and qualification
// inputs change on enrollment/enrichment cycles, not per request, so a
// hour-scale TTL is safe.
const DefaultTTL = 6 * time.Hour

// ErrNotFound is returned when no live entry exists for a key.
var ErrNotFound = errors.New("feature cache entry not found")

// Entry is a cached sub-score with its computation timestamp. Scores are
// cached bit-exact: a hit returns the identical float64 that was stored.
type Entry struct {
	Score      float64   `json:"score" cbor:"1,keyasint"`
	ComputedAt time.Time `json:"computed_at" cbor:"2,keyasint"`
}

// Store is a bounded-TTL feature score cache. Implementations must be safe
// for concurrent use. Get returns ErrNotFound for missing or expired keys;
// any other error means the backing store failed and callers should
// compute fresh.
type Store interface {
	// Get retrieves a live entry for (lawyerID, kind).
	Get(ctx context.Context, lawyerID, kind string) (Entry, error)
	// Set stores an entry for (lawyerID, kind) with the store's TTL.
	Set(ctx context.Context, lawyerID, kind string, entry Entry) error
	// Purge removes every entry for one lawyer. Called when profile data
	// (resume, maturity, reviews) changes upstream.
	Purge(ctx context.Context, lawyerID string) error
}

// Key builds the canonical cache key for a lawyer/kind pair.
func Key(lawyerID, kind string) string {
	return lawyerID + ":" + kind
}

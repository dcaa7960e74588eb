package store

import (
	"context"
	"errors"

	"github.com/folioview/folioview/internal/recents"
)

// Outcome reports what a save did beyond succeeding: whether it replaced an
// existing record with the same name, and whether it evicted the oldest
// record to hold the capacity bound.
type Outcome struct {
	Replaced bool
	Evicted  bool
}

// Store persists the bounded recent-document collection. Implementations
// guarantee that Save is atomic (a failed save leaves prior state intact)
// and that ListRecent never observes a partially applied save. All
// failures are *recents.StoreError values.
type Store interface {
	// Initialize opens or creates the underlying collection. Idempotent;
	// until it succeeds every other operation fails with KindUnavailable.
	Initialize(ctx context.Context) error
	// Save inserts (name, payload) stamped with the current time, replacing
	// any record with the same name and evicting the oldest record when the
	// net count would exceed capacity. Durable before returning.
	Save(ctx context.Context, name string, payload []byte) (Outcome, error)
	// ListRecent returns all live records, most recently saved first.
	// An empty collection is an empty slice, not an error.
	ListRecent(ctx context.Context) ([]recents.Record, error)
	// Close releases backing resources.
	Close() error
}

var errNotInitialized = errors.New("store not initialized")

package recents

import "time"

// DefaultMaxRecents is the capacity bound applied when a store is built
// without an explicit limit: the viewer remembers the three most recently
// opened documents.
const DefaultMaxRecents = 3

// Record is one remembered document. Name is the natural key (at most one
// live record per name); ID is assigned by the store on insertion and is
// opaque to callers; SavedAt orders the collection by recency.
type Record struct {
	ID      string    `json:"id" bson:"id"`
	Name    string    `json:"name" bson:"name"`
	Payload []byte    `json:"payload,omitempty" bson:"payload"`
	SavedAt time.Time `json:"savedAt" bson:"savedAt"`
}

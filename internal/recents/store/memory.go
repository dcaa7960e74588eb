package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/folioview/folioview/internal/recents"
)

// MemoryStore keeps the collection in process memory. Used by tests and as
// the fallback backend when no durable storage is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	ready   bool
	max     int
	records map[string]recents.Record // keyed by record id
}

// NewMemory builds an in-memory store with the given capacity. Zero or
// negative falls back to recents.DefaultMaxRecents.
func NewMemory(maxRecents int) *MemoryStore {
	if maxRecents <= 0 {
		maxRecents = recents.DefaultMaxRecents
	}
	return &MemoryStore{max: maxRecents}
}

func (m *MemoryStore) Initialize(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.records == nil {
		m.records = make(map[string]recents.Record)
	}
	m.ready = true
	return nil
}

func (m *MemoryStore) Save(ctx context.Context, name string, payload []byte) (Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.ready {
		return Outcome{}, recents.NewUnavailable("save", errNotInitialized)
	}
	existing := make([]recents.Record, 0, len(m.records))
	for _, r := range m.records {
		existing = append(existing, r)
	}
	plan := recents.PlanSave(existing, name, payload, time.Now().UTC(), m.max)
	for _, id := range plan.DeleteIDs {
		delete(m.records, id)
	}
	m.records[plan.Insert.ID] = plan.Insert
	return Outcome{Replaced: plan.Replaced, Evicted: plan.Evicted}, nil
}

func (m *MemoryStore) ListRecent(ctx context.Context) ([]recents.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.ready {
		return nil, recents.NewUnavailable("list", errNotInitialized)
	}
	out := make([]recents.Record, 0, len(m.records))
	for _, r := range m.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SavedAt.Equal(out[j].SavedAt) {
			return out[i].SavedAt.After(out[j].SavedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ready = false
	return nil
}

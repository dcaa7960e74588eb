package service

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/folioview/folioview/internal/recents"
	"github.com/folioview/folioview/internal/recents/store"
	"github.com/folioview/folioview/pkg/metrics"
)

// Service defines the recents operations used by the handler layer.
type Service interface {
	Initialize(ctx context.Context) error
	Save(ctx context.Context, name string, payload []byte) error
	ListRecent(ctx context.Context) ([]recents.Record, error)
	Close() error
}

// New wraps a store with save and eviction counters. The backend label
// is used on every metric emitted by this service.
func New(st store.Store, backend string) Service {
	return &recentsService{st: st, backend: backend}
}

// NewMemoryService returns a Service backed by the in-memory store.
func NewMemoryService(maxRecents int) Service {
	return New(store.NewMemory(maxRecents), "memory")
}

// NewSQLiteService returns a Service backed by a SQLite file at path.
func NewSQLiteService(path string, maxRecents int) (Service, error) {
	st, err := store.NewSQLite(path, maxRecents)
	if err != nil {
		return nil, err
	}
	return New(st, "sqlite"), nil
}

// NewMongoService returns a Service backed by a MongoDB collection.
// Caller is responsible for creating the collection (and client) and passing it in.
func NewMongoService(col *mongo.Collection, maxRecents int) Service {
	return New(store.NewMongo(col, maxRecents), "mongo")
}

type recentsService struct {
	st      store.Store
	backend string
}

func (s *recentsService) Initialize(ctx context.Context) error {
	return s.st.Initialize(ctx)
}

func (s *recentsService) Save(ctx context.Context, name string, payload []byte) error {
	out, err := s.st.Save(ctx, name, payload)
	if err != nil {
		return err
	}
	metrics.RecentsSaves.WithLabelValues(s.backend).Inc()
	if out.Replaced {
		metrics.RecentsReplacements.WithLabelValues(s.backend).Inc()
	}
	if out.Evicted {
		metrics.RecentsEvictions.WithLabelValues(s.backend).Inc()
	}
	return nil
}

func (s *recentsService) ListRecent(ctx context.Context) ([]recents.Record, error) {
	recs, err := s.st.ListRecent(ctx)
	if err != nil {
		metrics.RecentsListErrors.WithLabelValues(s.backend).Inc()
		return nil, err
	}
	return recs, nil
}

func (s *recentsService) Close() error {
	return s.st.Close()
}

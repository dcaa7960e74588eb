package store

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/folioview/folioview/internal/recents"
)

// MongoStore persists the collection in a single named MongoDB collection.
// Save runs inside a driver session transaction so the delete/insert/evict
// sequence commits atomically; deployments therefore need a replica set (a
// single-node replica set is enough). Name uniqueness is enforced by the
// save plan, not by the storage engine.
type MongoStore struct {
	mu    sync.RWMutex
	col   *mongo.Collection
	max   int
	ready bool
}

// NewMongo wraps the given collection. The caller owns the client; Close is
// a no-op. Initialize ensures the unique id index.
func NewMongo(col *mongo.Collection, maxRecents int) *MongoStore {
	if maxRecents <= 0 {
		maxRecents = recents.DefaultMaxRecents
	}
	return &MongoStore{col: col, max: maxRecents}
}

func (m *MongoStore) Initialize(ctx context.Context) error {
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := m.col.Indexes().CreateOne(ctx, idx); err != nil {
		return recents.NewUnavailable("initialize", err)
	}
	m.mu.Lock()
	m.ready = true
	m.mu.Unlock()
	return nil
}

func (m *MongoStore) isReady() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ready
}

func (m *MongoStore) Save(ctx context.Context, name string, payload []byte) (Outcome, error) {
	if !m.isReady() {
		return Outcome{}, recents.NewUnavailable("save", errNotInitialized)
	}

	session, err := m.col.Database().Client().StartSession()
	if err != nil {
		return Outcome{}, recents.NewWriteFailed("save", err)
	}
	defer session.EndSession(ctx)

	var out Outcome
	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		// payloads are not needed to plan the save
		cur, err := m.col.Find(sc, bson.M{}, options.Find().SetProjection(bson.M{"payload": 0}))
		if err != nil {
			return nil, err
		}
		var existing []recents.Record
		if err := cur.All(sc, &existing); err != nil {
			return nil, err
		}

		plan := recents.PlanSave(existing, name, payload, time.Now().UTC(), m.max)
		if len(plan.DeleteIDs) > 0 {
			if _, err := m.col.DeleteMany(sc, bson.M{"id": bson.M{"$in": plan.DeleteIDs}}); err != nil {
				return nil, err
			}
		}
		if _, err := m.col.InsertOne(sc, plan.Insert); err != nil {
			return nil, err
		}
		out = Outcome{Replaced: plan.Replaced, Evicted: plan.Evicted}
		return nil, nil
	})
	if err != nil {
		return Outcome{}, recents.NewWriteFailed("save", err)
	}
	return out, nil
}

func (m *MongoStore) ListRecent(ctx context.Context) ([]recents.Record, error) {
	if !m.isReady() {
		return nil, recents.NewUnavailable("list", errNotInitialized)
	}

	opts := options.Find().SetSort(bson.D{{Key: "savedAt", Value: -1}, {Key: "id", Value: 1}})
	cur, err := m.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, recents.NewReadFailed("list", err)
	}
	defer cur.Close(ctx)

	out := []recents.Record{}
	for cur.Next(ctx) {
		var r recents.Record
		if err := cur.Decode(&r); err != nil {
			return nil, recents.NewReadFailed("list", err)
		}
		out = append(out, r)
	}
	if err := cur.Err(); err != nil {
		return nil, recents.NewReadFailed("list", err)
	}
	return out, nil
}

// Close is a no-op: the mongo client is owned and disconnected by the caller.
func (m *MongoStore) Close() error {
	m.mu.Lock()
	m.ready = false
	m.mu.Unlock()
	return nil
}

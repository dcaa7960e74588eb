package store

import (
	"context"
	"database/sql"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/folioview/folioview/internal/recents"
)

// SQLiteStore persists the collection in a local SQLite database. This is
// the default durable backend: recents survive restarts on a single host
// without any external service, matching the widget's local-storage roots.
type SQLiteStore struct {
	mu    sync.RWMutex
	db    *sql.DB
	max   int
	ready bool
}

// NewSQLite opens or creates the database at path. Use ":memory:" for an
// ephemeral database in tests. The schema is created by Initialize.
func NewSQLite(path string, maxRecents int) (*SQLiteStore, error) {
	if maxRecents <= 0 {
		maxRecents = recents.DefaultMaxRecents
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, recents.NewUnavailable("open", err)
	}
	// Single connection: Save is a read-modify-write transaction, and one
	// connection also keeps ":memory:" databases stable under database/sql
	// pooling.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, recents.NewUnavailable("open", err)
	}
	return &SQLiteStore{db: db, max: maxRecents}, nil
}

func (s *SQLiteStore) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS recent_documents (
			id       TEXT PRIMARY KEY,
			name     TEXT NOT NULL,
			payload  BLOB NOT NULL,
			saved_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_recent_documents_saved_at ON recent_documents(saved_at);
	`)
	if err != nil {
		return recents.NewUnavailable("initialize", err)
	}
	s.ready = true
	return nil
}

func (s *SQLiteStore) Save(ctx context.Context, name string, payload []byte) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return Outcome{}, recents.NewUnavailable("save", errNotInitialized)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Outcome{}, recents.NewWriteFailed("save", err)
	}
	defer func() { _ = tx.Rollback() }()

	existing, err := loadForPlanning(ctx, tx)
	if err != nil {
		return Outcome{}, recents.NewWriteFailed("save", err)
	}

	plan := recents.PlanSave(existing, name, payload, time.Now().UTC(), s.max)
	for _, id := range plan.DeleteIDs {
		if _, err := tx.ExecContext(ctx, "DELETE FROM recent_documents WHERE id = ?", id); err != nil {
			return Outcome{}, recents.NewWriteFailed("save", err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO recent_documents (id, name, payload, saved_at) VALUES (?, ?, ?, ?)",
		plan.Insert.ID, plan.Insert.Name, plan.Insert.Payload, plan.Insert.SavedAt.UnixNano(),
	); err != nil {
		return Outcome{}, recents.NewWriteFailed("save", err)
	}
	if err := tx.Commit(); err != nil {
		return Outcome{}, recents.NewWriteFailed("save", err)
	}
	return Outcome{Replaced: plan.Replaced, Evicted: plan.Evicted}, nil
}

// loadForPlanning reads ids, names and timestamps inside the transaction;
// payloads are not needed to plan a save.
func loadForPlanning(ctx context.Context, tx *sql.Tx) ([]recents.Record, error) {
	rows, err := tx.QueryContext(ctx, "SELECT id, name, saved_at FROM recent_documents")
	if err != nil {
		return nil, err
	}
	var existing []recents.Record
	for rows.Next() {
		var r recents.Record
		var ns int64
		if err := rows.Scan(&r.ID, &r.Name, &ns); err != nil {
			rows.Close()
			return nil, err
		}
		r.SavedAt = time.Unix(0, ns).UTC()
		existing = append(existing, r)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *SQLiteStore) ListRecent(ctx context.Context) ([]recents.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.ready {
		return nil, recents.NewUnavailable("list", errNotInitialized)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, payload, saved_at FROM recent_documents
		ORDER BY saved_at DESC, id ASC
	`)
	if err != nil {
		return nil, recents.NewReadFailed("list", err)
	}
	defer rows.Close()

	out := []recents.Record{}
	for rows.Next() {
		var r recents.Record
		var ns int64
		if err := rows.Scan(&r.ID, &r.Name, &r.Payload, &ns); err != nil {
			return nil, recents.NewReadFailed("list", err)
		}
		r.SavedAt = time.Unix(0, ns).UTC()
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, recents.NewReadFailed("list", err)
	}
	return out, nil
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = false
	return s.db.Close()
}

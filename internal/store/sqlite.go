package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/contentops/taskflow/internal/domain/task"
	"github.com/contentops/taskflow/pkg/database"
)

// SQLiteStore persists documents as JSON rows and pushes snapshots to
// in-process subscribers on every patch. It keeps an in-memory mirror of
// each collection, loaded once at construction, so snapshot delivery
// never touches the database.
//
// Note JSON round-trips turn integers into float64; DecodeTask tolerates
// both.
type SQLiteStore struct {
	db     *database.DB
	logger *zap.Logger

	mu          sync.Mutex
	collections map[string]map[string]Document
	subs        map[string]map[int]SnapshotFunc
	nextSubID   int
}

// NewSQLiteStore creates a store over an open database and loads the
// existing documents into the mirror.
func NewSQLiteStore(db *database.DB, logger *zap.Logger) (*SQLiteStore, error) {
	s := &SQLiteStore{
		db:          db,
		logger:      logger,
		collections: make(map[string]map[string]Document),
		subs:        make(map[string]map[int]SnapshotFunc),
	}
	if err := s.loadAll(); err != nil {
		return nil, fmt.Errorf("%w: %v", task.ErrStoreUnavailable, err)
	}
	return s, nil
}

func (s *SQLiteStore) loadAll() error {
	rows, err := s.db.Query("SELECT collection, id, fields FROM documents")
	if err != nil {
		return err
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var collection, id, raw string
		if err := rows.Scan(&collection, &id, &raw); err != nil {
			return err
		}
		var doc Document
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			s.logger.Warn("Skipping malformed document",
				zap.String("collection", collection),
				zap.String("id", id),
				zap.Error(err))
			continue
		}
		if s.collections[collection] == nil {
			s.collections[collection] = make(map[string]Document)
		}
		s.collections[collection][id] = doc
		count++
	}
	if err := rows.Err(); err != nil {
		return err
	}

	s.logger.Info("Document mirror loaded", zap.Int("documents", count))
	return nil
}

// Subscribe registers fn and delivers the current snapshot immediately.
func (s *SQLiteStore) Subscribe(collection string, fn SnapshotFunc) (Unsubscribe, error) {
	s.mu.Lock()
	if s.subs[collection] == nil {
		s.subs[collection] = make(map[int]SnapshotFunc)
	}
	id := s.nextSubID
	s.nextSubID++
	s.subs[collection][id] = fn
	snap := s.snapshotLocked(collection)
	s.mu.Unlock()

	fn(snap)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs[collection], id)
			s.mu.Unlock()
		})
	}, nil
}

// Patch merges fields into the document, persists the result, and then
// notifies subscribers. The database write and the mirror update happen
// under the store lock so snapshots always reflect committed state.
func (s *SQLiteStore) Patch(ctx context.Context, collection, id string, fields map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	doc := Document{}
	if existing := s.collections[collection][id]; existing != nil {
		doc = existing.Clone()
	}
	for k, v := range fields {
		doc[k] = v
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: encode document: %v", task.ErrStoreUnavailable, err)
	}

	err = s.db.WithTransaction(func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO documents (collection, id, fields, updated_at)
			VALUES (?, ?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(collection, id) DO UPDATE SET fields = excluded.fields, updated_at = excluded.updated_at`,
			collection, id, string(raw))
		return err
	})
	if err != nil {
		s.mu.Unlock()
		s.logger.Error("Failed to persist patch",
			zap.String("collection", collection),
			zap.String("id", id),
			zap.Error(err))
		return fmt.Errorf("%w: %v", task.ErrStoreUnavailable, err)
	}

	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]Document)
	}
	s.collections[collection][id] = doc

	snap := s.snapshotLocked(collection)
	fns := make([]SnapshotFunc, 0, len(s.subs[collection]))
	for _, fn := range s.subs[collection] {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(snap.Clone())
	}
	return nil
}

func (s *SQLiteStore) snapshotLocked(collection string) Snapshot {
	snap := make(Snapshot, len(s.collections[collection]))
	for id, doc := range s.collections[collection] {
		snap[id] = doc.Clone()
	}
	return snap
}

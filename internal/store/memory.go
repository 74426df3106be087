package store

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store. It backs tests and embedded use and
// is the reference for the push semantics: every patch re-delivers the
// full collection snapshot to all subscribers of that collection before
// Patch returns.
type MemoryStore struct {
	mu          sync.Mutex
	collections map[string]map[string]Document
	subs        map[string]map[int]SnapshotFunc
	nextSubID   int
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]Document),
		subs:        make(map[string]map[int]SnapshotFunc),
	}
}

// Subscribe registers fn and delivers the current snapshot immediately.
func (m *MemoryStore) Subscribe(collection string, fn SnapshotFunc) (Unsubscribe, error) {
	m.mu.Lock()
	if m.subs[collection] == nil {
		m.subs[collection] = make(map[int]SnapshotFunc)
	}
	id := m.nextSubID
	m.nextSubID++
	m.subs[collection][id] = fn
	snap := m.snapshotLocked(collection)
	m.mu.Unlock()

	fn(snap)

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs[collection], id)
			m.mu.Unlock()
		})
	}, nil
}

// Patch merges fields into the document, creating it if absent, then
// notifies subscribers with a fresh snapshot copy.
func (m *MemoryStore) Patch(ctx context.Context, collection, id string, fields map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	if m.collections[collection] == nil {
		m.collections[collection] = make(map[string]Document)
	}
	doc := m.collections[collection][id]
	if doc == nil {
		doc = make(Document, len(fields))
	} else {
		doc = doc.Clone()
	}
	for k, v := range fields {
		doc[k] = v
	}
	m.collections[collection][id] = doc

	snap := m.snapshotLocked(collection)
	fns := make([]SnapshotFunc, 0, len(m.subs[collection]))
	for _, fn := range m.subs[collection] {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(snap.Clone())
	}
	return nil
}

// snapshotLocked copies the collection. Callers hold m.mu.
func (m *MemoryStore) snapshotLocked(collection string) Snapshot {
	snap := make(Snapshot, len(m.collections[collection]))
	for id, doc := range m.collections[collection] {
		snap[id] = doc.Clone()
	}
	return snap
}

// Package store defines the push-based document store contract the core
// consumes, plus the in-memory and SQLite-backed implementations.
//
// A store delivers full collection snapshots: the subscription callback
// fires immediately with the current state and again after every change.
// Patches merge named fields into a document; fields not named are left
// untouched (last-write-wins per field between independent writers).
package store

import (
	"context"
)

// Document is a loosely-typed field set as held by the store. Absent
// fields are unset.
type Document map[string]any

// Snapshot is a complete point-in-time copy of a collection, keyed by
// document id. Snapshots handed to subscribers are private copies and
// safe to read without synchronization.
type Snapshot map[string]Document

// SnapshotFunc receives collection snapshots.
type SnapshotFunc func(Snapshot)

// Unsubscribe tears down a subscription. Safe to call more than once.
type Unsubscribe func()

// Store is the document store contract.
type Store interface {
	// Subscribe registers fn for a collection. fn is invoked
	// synchronously with the current snapshot before Subscribe returns,
	// then again after every change, until the returned Unsubscribe is
	// called.
	Subscribe(collection string, fn SnapshotFunc) (Unsubscribe, error)

	// Patch merges the named fields into the document, creating it if
	// absent. Delivery is at-least-once; the only guarantee is eventual
	// visibility in subsequent snapshots.
	Patch(ctx context.Context, collection, id string, fields map[string]any) error
}

// Clone returns a deep-enough copy of the document for snapshot
// isolation. Field values are treated as immutable once stored.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Clone returns an independent copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for id, doc := range s {
		out[id] = doc.Clone()
	}
	return out
}

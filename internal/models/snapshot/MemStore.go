// This file contains an in-memory Store implementation. It backs the core test suites and
// keeps the override state machine testable independent of the MongoDB serialization layer.
// Snapshots are deep-copied on the way in and out so callers never share memory with the
// store, matching the isolation a database round-trip gives.

package snapshot

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MemStore struct {
	mu    sync.Mutex
	snaps map[string]*ObjectSnapshot
}

// NewMemStore creates an empty in-memory snapshot store.
func NewMemStore() *MemStore {
	return &MemStore{snaps: make(map[string]*ObjectSnapshot)}
}

// Get returns the snapshot for the given object ID, or ErrSnapshotNotFound.
func (ms *MemStore) Get(ctx context.Context, objectID string) (*ObjectSnapshot, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	snap, ok := ms.snaps[objectID]
	if !ok {
		return nil, ErrSnapshotNotFound
	}
	return snap.Clone(), nil
}

// Put inserts or replaces the snapshot for its object ID.
func (ms *MemStore) Put(ctx context.Context, snap *ObjectSnapshot) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.snaps[snap.ObjectID] = snap.Clone()
	return nil
}

// Delete removes the snapshot for the given object ID. Deleting an absent
// snapshot is a no-op.
func (ms *MemStore) Delete(ctx context.Context, objectID string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	delete(ms.snaps, objectID)
	return nil
}

// ListByScene returns all snapshots recorded for objects of the given scene.
func (ms *MemStore) ListByScene(ctx context.Context, sceneID primitive.ObjectID) ([]*ObjectSnapshot, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	var result []*ObjectSnapshot
	for _, snap := range ms.snaps {
		if snap.SceneID == sceneID {
			result = append(result, snap.Clone())
		}
	}
	return result, nil
}

// DeleteByScene removes every snapshot recorded for objects of the given scene.
func (ms *MemStore) DeleteByScene(ctx context.Context, sceneID primitive.ObjectID) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	for id, snap := range ms.snaps {
		if snap.SceneID == sceneID {
			delete(ms.snaps, id)
		}
	}
	return nil
}

package snapshot

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store is the per-object snapshot repository the override core reads and
// mutates. Get returns ErrSnapshotNotFound when an object has no snapshot.
type Store interface {
	Get(ctx context.Context, objectID string) (*ObjectSnapshot, error)
	Put(ctx context.Context, snap *ObjectSnapshot) error
	Delete(ctx context.Context, objectID string) error
}

// SceneIndex extends Store with scene-scoped queries used by the service
// layer for status reporting and stale-snapshot cleanup.
type SceneIndex interface {
	Store
	ListByScene(ctx context.Context, sceneID primitive.ObjectID) ([]*ObjectSnapshot, error)
	DeleteByScene(ctx context.Context, sceneID primitive.ObjectID) error
}

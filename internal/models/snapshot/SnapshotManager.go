// This file contains the SnapshotManager implementation, which is responsible for interacting
// with the MongoDB snapshots collection. The SnapshotManager struct contains a pointer to the
// overridedb.snapshots MongoDB collection and a logger. Documents are keyed by stable object ID
// so snapshot state survives a save/reload of the scene, and carry the scene ID for scoped queries.

package snapshot

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/SceneForge/GoMaterialOverride/internal/log"
)

type SnapshotManager struct {
	collection *mongo.Collection
	logger     *log.Logger
}

// NewSnapshotManager creates a new SnapshotManager with the given MongoDB client and logger.
func NewSnapshotManager(client *mongo.Client, logger *log.Logger, unittest bool) *SnapshotManager {
	db := client.Database("overridedb")
	return &SnapshotManager{
		collection: db.Collection("snapshots"),
		logger:     logger,
	}
}

// Get returns the snapshot for the given object ID, or ErrSnapshotNotFound.
func (sm *SnapshotManager) Get(ctx context.Context, objectID string) (*ObjectSnapshot, error) {
	var snap ObjectSnapshot
	err := sm.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&snap)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrSnapshotNotFound
		}
		return nil, err
	}
	return &snap, nil
}

// Put inserts or replaces the snapshot document for its object ID.
func (sm *SnapshotManager) Put(ctx context.Context, snap *ObjectSnapshot) error {
	_, err := sm.collection.UpdateOne(
		ctx,
		bson.M{"_id": snap.ObjectID},
		bson.M{"$set": snap},
		options.Update().SetUpsert(true),
	)
	return err
}

// Delete removes the snapshot document for the given object ID. Deleting an
// absent snapshot is a no-op.
func (sm *SnapshotManager) Delete(ctx context.Context, objectID string) error {
	_, err := sm.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	return err
}

// ListByScene returns all snapshots recorded for objects of the given scene.
func (sm *SnapshotManager) ListByScene(ctx context.Context, sceneID primitive.ObjectID) ([]*ObjectSnapshot, error) {
	cursor, err := sm.collection.Find(ctx, bson.M{"scene_id": sceneID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var snaps []*ObjectSnapshot
	if err := cursor.All(ctx, &snaps); err != nil {
		return nil, err
	}
	return snaps, nil
}

// DeleteByScene removes every snapshot recorded for objects of the given scene.
// Used after a restore pass to drop stale documents for objects that were
// deleted from the scene while overridden.
func (sm *SnapshotManager) DeleteByScene(ctx context.Context, sceneID primitive.ObjectID) error {
	_, err := sm.collection.DeleteMany(ctx, bson.M{"scene_id": sceneID})
	return err
}

// This file contains the OverrideListManager implementation, which is responsible for interacting
// with the MongoDB override_lists collection. The OverrideListManager struct contains a pointer to
// the overridedb.override_lists MongoDB collection and a logger. A single well-known document holds
// the registry of scenes with an active override.

package overridelist

import (
	"context"
	"errors"
	"slices"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/SceneForge/GoMaterialOverride/internal/log"
)

// activeListID is the registry document key.
const activeListID = "active_overrides"

var (
	// ErrSceneAlreadyActive is returned when a scene is activated twice without deactivation.
	ErrSceneAlreadyActive = errors.New("scene already has an active override")
	// ErrSceneNotActive is returned when deactivating a scene that has no active override.
	ErrSceneNotActive = errors.New("scene has no active override")
)

type OverrideListManager struct {
	collection *mongo.Collection
	logger     *log.Logger
}

// NewOverrideListManager creates a new OverrideListManager with the given MongoDB client and logger.
func NewOverrideListManager(client *mongo.Client, logger *log.Logger, unittest bool) *OverrideListManager {
	db := client.Database("overridedb")
	return &OverrideListManager{
		collection: db.Collection("override_lists"),
		logger:     logger,
	}
}

// setList sets the registry document in the database.
// It is not intended to be used outside of the OverrideListManager.
func (olm *OverrideListManager) setList(ctx context.Context, list *OverrideList) error {
	_, err := olm.collection.UpdateOne(
		ctx,
		bson.M{"_id": activeListID},
		bson.M{"$set": list},
		options.Update().SetUpsert(true),
	)
	return err
}

// getList retrieves the registry document, returning an empty registry when none exists yet.
func (olm *OverrideListManager) getList(ctx context.Context) (*OverrideList, error) {
	var list OverrideList
	err := olm.collection.FindOne(ctx, bson.M{"_id": activeListID}).Decode(&list)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return &OverrideList{ID: activeListID, SceneIDs: []primitive.ObjectID{}}, nil
		}
		return nil, err
	}
	return &list, nil
}

// Activate records the scene as carrying an active override.
// Returns ErrSceneAlreadyActive if the scene is already recorded.
func (olm *OverrideListManager) Activate(ctx context.Context, sceneID primitive.ObjectID) error {
	list, err := olm.getList(ctx)
	if err != nil {
		return err
	}

	if slices.Contains(list.SceneIDs, sceneID) {
		olm.logger.Infof("Scene %s already in the active override list", sceneID.Hex())
		return ErrSceneAlreadyActive
	}

	list.SceneIDs = append(list.SceneIDs, sceneID)
	return olm.setList(ctx, list)
}

// Deactivate removes the scene from the active override registry.
// Returns ErrSceneNotActive if the scene is not recorded.
func (olm *OverrideListManager) Deactivate(ctx context.Context, sceneID primitive.ObjectID) error {
	list, err := olm.getList(ctx)
	if err != nil {
		return err
	}

	index := slices.Index(list.SceneIDs, sceneID)
	if index == -1 {
		return ErrSceneNotActive
	}

	list.SceneIDs = slices.Delete(list.SceneIDs, index, index+1)
	return olm.setList(ctx, list)
}

// IsActive reports whether the scene carries an active override.
func (olm *OverrideListManager) IsActive(ctx context.Context, sceneID primitive.ObjectID) (bool, error) {
	list, err := olm.getList(ctx)
	if err != nil {
		return false, err
	}
	return slices.Contains(list.SceneIDs, sceneID), nil
}

// ActiveScenes returns the IDs of every scene with an active override.
func (olm *OverrideListManager) ActiveScenes(ctx context.Context) ([]primitive.ObjectID, error) {
	list, err := olm.getList(ctx)
	if err != nil {
		return nil, err
	}
	return list.SceneIDs, nil
}

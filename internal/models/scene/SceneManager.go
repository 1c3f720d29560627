// This file contains the SceneManager implementation, which is responsible for interacting with the MongoDB scenes collection.
// The SceneManager struct contains a pointer to the overridedb.scenes MongoDB collection and a logger. It provides methods to set,
// get and update scene data in the database. Interaction with scenes is almost always by ID, as the ID will (almost always) be unique.

package scene

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/SceneForge/GoMaterialOverride/internal/log"
)

type SceneManager struct {
	collection *mongo.Collection
	logger     *log.Logger
}

// NewSceneManager creates a new SceneManager with the given MongoDB client and logger.
func NewSceneManager(client *mongo.Client, logger *log.Logger, unittest bool) *SceneManager {
	db := client.Database("overridedb")
	return &SceneManager{
		collection: db.Collection("scenes"),
		logger:     logger,
	}
}

// CreateScene inserts a new scene document and returns its generated ID.
func (sm *SceneManager) CreateScene(ctx context.Context, scn *Scene) (primitive.ObjectID, error) {
	scn.ID = primitive.NewObjectID()
	if err := sm.SetScene(ctx, scn); err != nil {
		return primitive.NilObjectID, err
	}
	return scn.ID, nil
}

// SetScene updates or inserts a scene document in the database.
func (sm *SceneManager) SetScene(ctx context.Context, scn *Scene) error {
	_, err := sm.collection.UpdateOne(
		ctx,
		bson.M{"_id": scn.ID},
		bson.M{"$set": scn},
		options.Update().SetUpsert(true),
	)
	return err
}

// GetScene retrieves a scene from the database based on the given ID.
// Returns ErrSceneNotFound if no such scene exists.
func (sm *SceneManager) GetScene(ctx context.Context, id primitive.ObjectID) (*Scene, error) {
	var scn Scene
	err := sm.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&scn)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrSceneNotFound
		}
		return nil, err
	}
	return &scn, nil
}

// SetObjects replaces the scene's object list. Used after an override or
// restore pass mutated slot assignments in memory.
func (sm *SceneManager) SetObjects(ctx context.Context, id primitive.ObjectID, objects []Object) error {
	result, err := sm.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"objects": objects}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrSceneNotFound
	}
	return nil
}

// SetSettings replaces the scene's override settings subdocument.
func (sm *SceneManager) SetSettings(ctx context.Context, id primitive.ObjectID, settings *OverrideSettings) error {
	result, err := sm.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"settings": settings}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrSceneNotFound
	}
	return nil
}

// GetSettings retrieves the scene's override settings. A scene that never
// configured an override yields empty settings, not an error.
func (sm *SceneManager) GetSettings(ctx context.Context, id primitive.ObjectID) (*OverrideSettings, error) {
	var result struct {
		Settings *OverrideSettings `bson:"settings"`
	}
	err := sm.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrSceneNotFound
		}
		return nil, err
	}
	if result.Settings == nil {
		return &OverrideSettings{}, nil
	}
	return result.Settings, nil
}

// AddExcludeMaterial appends a material handle to the scene's exclude list.
// Duplicates are absorbed by $addToSet.
func (sm *SceneManager) AddExcludeMaterial(ctx context.Context, id primitive.ObjectID, material string) error {
	result, err := sm.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$addToSet": bson.M{"settings.exclude_materials": material}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrSceneNotFound
	}
	return nil
}

// RemoveExcludeMaterial removes a material handle from the scene's exclude list.
func (sm *SceneManager) RemoveExcludeMaterial(ctx context.Context, id primitive.ObjectID, material string) error {
	result, err := sm.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$pull": bson.M{"settings.exclude_materials": material}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrSceneNotFound
	}
	return nil
}

// GetSceneName returns the name of the scene for the given scene ID.
func (sm *SceneManager) GetSceneName(ctx context.Context, id primitive.ObjectID) (string, error) {
	var result struct {
		Name string `bson:"name"`
	}
	err := sm.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", ErrSceneNotFound
		}
		return "", err
	}
	return result.Name, nil
}

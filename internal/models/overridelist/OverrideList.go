// This file contains the OverrideList struct and its members.
// OverrideList is the persisted registry of scenes with an active material override,
// replacing the in-memory "override active" flag an editor session would otherwise lose
// on reload.

package overridelist

import "go.mongodb.org/mongo-driver/bson/primitive"

// OverrideList represents the set of scenes currently carrying an active override.
type OverrideList struct {
	ID       string               `bson:"_id"`
	SceneIDs []primitive.ObjectID `bson:"scene_ids"`
}

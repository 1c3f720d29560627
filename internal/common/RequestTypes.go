// This file contains the expected structure of incoming requests to the API. These structs are used to
// validate incoming requests, provide a consistent interface for handling requests, and to pass data to the
// appropriate handlers.

// Note that all structs are independent of the user id. This is because the user id is extracted from the JWT token.

package common

import (
	"github.com/SceneForge/GoMaterialOverride/internal/models/scene"
)

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type CreateSceneRequest struct {
	Name      string           `json:"name" validate:"required"`
	Objects   []scene.Object   `json:"objects" validate:"dive"`
	Materials []scene.Material `json:"materials" validate:"dive"`
}

type GetSceneRequest struct {
	SceneID string `params:"scene_id" validate:"required"`
}

type UpdateSettingsRequest struct {
	SceneID          string `params:"scene_id" validate:"required"`
	OverrideMaterial string `json:"override_material" validate:"required,materialhandle"`
}

type AddExcludeMaterialRequest struct {
	SceneID  string `params:"scene_id" validate:"required"`
	Material string `json:"material" validate:"required,materialhandle"`
}

type RemoveExcludeMaterialRequest struct {
	SceneID  string `params:"scene_id" validate:"required"`
	Material string `params:"material" validate:"required"`
}

type ApplyOverrideRequest struct {
	SceneID string `params:"scene_id" validate:"required"`
}

type CancelOverrideRequest struct {
	SceneID string `params:"scene_id" validate:"required"`
}

type CleanSlotsRequest struct {
	SceneID  string `params:"scene_id" validate:"required"`
	ObjectID string `params:"object_id" validate:"required"`
}

type OverrideStatusRequest struct {
	SceneID string `params:"scene_id" validate:"required"`
}

type TagGenericRequest struct {
	SceneID string `params:"scene_id" validate:"required"`
}

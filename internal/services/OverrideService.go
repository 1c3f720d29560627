// This file contains the OverrideService implementation: the main handler for dispatched
// http requests from the editor client. It orchestrates the override core against the
// persistence managers: load the scene document, run the state machine, write the mutated
// objects and snapshots back, keep the active-override registry current, and publish
// lifecycle events for the render pipeline.

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/SceneForge/GoMaterialOverride/internal/common"
	"github.com/SceneForge/GoMaterialOverride/internal/log"
	"github.com/SceneForge/GoMaterialOverride/internal/models/overridelist"
	"github.com/SceneForge/GoMaterialOverride/internal/models/scene"
	"github.com/SceneForge/GoMaterialOverride/internal/models/snapshot"
	"github.com/SceneForge/GoMaterialOverride/internal/models/user"
	"github.com/SceneForge/GoMaterialOverride/internal/override"
)

// SceneStore is the subset of the scene manager the service uses.
type SceneStore interface {
	CreateScene(ctx context.Context, scn *scene.Scene) (primitive.ObjectID, error)
	GetScene(ctx context.Context, id primitive.ObjectID) (*scene.Scene, error)
	GetSceneName(ctx context.Context, id primitive.ObjectID) (string, error)
	SetScene(ctx context.Context, scn *scene.Scene) error
	SetObjects(ctx context.Context, id primitive.ObjectID, objects []scene.Object) error
	GetSettings(ctx context.Context, id primitive.ObjectID) (*scene.OverrideSettings, error)
	SetSettings(ctx context.Context, id primitive.ObjectID, settings *scene.OverrideSettings) error
	AddExcludeMaterial(ctx context.Context, id primitive.ObjectID, material string) error
	RemoveExcludeMaterial(ctx context.Context, id primitive.ObjectID, material string) error
}

// UserStore is the subset of the user manager the service uses.
type UserStore interface {
	GenerateUser(ctx context.Context, username, password string) (*user.User, error)
	GetUserByID(ctx context.Context, userID primitive.ObjectID) (*user.User, error)
	GetUserByUsername(ctx context.Context, username string) (*user.User, error)
	UpdateUser(ctx context.Context, usr *user.User) error
	UserHasSceneAccess(ctx context.Context, userID, sceneID primitive.ObjectID) (bool, error)
}

// OverrideRegistry is the persisted record of which scenes carry an active override.
type OverrideRegistry interface {
	Activate(ctx context.Context, sceneID primitive.ObjectID) error
	Deactivate(ctx context.Context, sceneID primitive.ObjectID) error
	IsActive(ctx context.Context, sceneID primitive.ObjectID) (bool, error)
	ActiveScenes(ctx context.Context) ([]primitive.ObjectID, error)
}

// OverrideEvent is the lifecycle message published to the render pipeline
// whenever an override is applied or reverted.
type OverrideEvent struct {
	ID        string    `json:"id"`
	SceneID   string    `json:"scene_id"`
	Kind      string    `json:"kind"`
	SlotCount int       `json:"slot_count"`
	Timestamp time.Time `json:"timestamp"`
}

// Event kinds.
const (
	EventOverrideApplied  = "override.applied"
	EventOverrideReverted = "override.reverted"
)

// EventPublisher publishes override lifecycle events to the message broker.
type EventPublisher interface {
	PublishOverrideEvent(ctx context.Context, event OverrideEvent) error
}

// OverrideStatus reports whether a scene carries an active override and how
// many of its objects hold snapshot state.
type OverrideStatus struct {
	SceneName         string `json:"scene_name"`
	Active            bool   `json:"active"`
	OverriddenObjects int    `json:"overridden_objects"`
}

type OverrideService struct {
	scenes    SceneStore
	snapshots snapshot.SceneIndex
	users     UserStore
	registry  OverrideRegistry
	events    EventPublisher
	applier   *override.Applier
	restorer  *override.Restorer
	cleaner   *override.SlotCleaner
	logger    *log.Logger
}

// NewOverrideService creates the service wiring the override core to the given stores.
func NewOverrideService(scenes SceneStore, snapshots snapshot.SceneIndex, users UserStore, registry OverrideRegistry, events EventPublisher, logger *log.Logger, applierOpts ...override.ApplierOption) *OverrideService {
	return &OverrideService{
		scenes:    scenes,
		snapshots: snapshots,
		users:     users,
		registry:  registry,
		events:    events,
		applier:   override.NewApplier(snapshots, logger, applierOpts...),
		restorer:  override.NewRestorer(snapshots, logger),
		cleaner:   override.NewSlotCleaner(snapshots, logger),
		logger:    logger,
	}
}

// VerifyUserAccess checks if the given user has access to the given scene.
// Returns nil if the user has access, error otherwise.
func (s *OverrideService) VerifyUserAccess(ctx context.Context, userID, sceneID primitive.ObjectID) error {
	authorized, err := s.users.UserHasSceneAccess(ctx, userID, sceneID)
	if err != nil {
		return err
	}
	if !authorized {
		return user.ErrUserNoAccess
	}
	return nil
}

// LoginUser checks if the given username and password are correct and returns the user's ID.
func (s *OverrideService) LoginUser(ctx context.Context, username, password string) (string, error) {
	usr, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return "", err
	}

	if err := usr.CheckPassword(password); err != nil {
		return "", err
	}

	return usr.ID.Hex(), nil
}

// RegisterUser generates a new user document with the given username and password.
func (s *OverrideService) RegisterUser(ctx context.Context, username, password string) error {
	_, err := s.users.GenerateUser(ctx, username, password)
	return err
}

// CreateScene inserts a new scene owned by the given user and returns its ID.
func (s *OverrideService) CreateScene(ctx context.Context, userID primitive.ObjectID, req *common.CreateSceneRequest) (string, error) {
	scn := &scene.Scene{
		Name:      req.Name,
		Objects:   req.Objects,
		Materials: req.Materials,
	}

	sceneID, err := s.scenes.CreateScene(ctx, scn)
	if err != nil {
		return "", err
	}

	usr, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return "", err
	}
	usr.AddScene(sceneID)
	if err := s.users.UpdateUser(ctx, usr); err != nil {
		return "", err
	}

	return sceneID.Hex(), nil
}

// GetScene returns the scene document for the given scene ID.
func (s *OverrideService) GetScene(ctx context.Context, sceneID primitive.ObjectID) (*scene.Scene, error) {
	return s.scenes.GetScene(ctx, sceneID)
}

// SetOverrideMaterial stores the override material handle in the scene's settings.
func (s *OverrideService) SetOverrideMaterial(ctx context.Context, sceneID primitive.ObjectID, material string) error {
	settings, err := s.scenes.GetSettings(ctx, sceneID)
	if err != nil {
		return err
	}
	settings.OverrideMaterial = material
	return s.scenes.SetSettings(ctx, sceneID, settings)
}

// AddExcludeMaterial appends a material handle to the scene's exclude list.
func (s *OverrideService) AddExcludeMaterial(ctx context.Context, sceneID primitive.ObjectID, material string) error {
	return s.scenes.AddExcludeMaterial(ctx, sceneID, material)
}

// RemoveExcludeMaterial removes a material handle from the scene's exclude list.
func (s *OverrideService) RemoveExcludeMaterial(ctx context.Context, sceneID primitive.ObjectID, material string) error {
	return s.scenes.RemoveExcludeMaterial(ctx, sceneID, material)
}

// ApplyOverride runs the override applier over the scene using its persisted
// settings and returns the number of slots overridden.
func (s *OverrideService) ApplyOverride(ctx context.Context, sceneID primitive.ObjectID) (int, error) {
	scn, err := s.scenes.GetScene(ctx, sceneID)
	if err != nil {
		return 0, err
	}

	settings := scn.Settings
	if settings == nil || settings.OverrideMaterial == "" {
		return 0, override.ErrInvalidOverrideMaterial
	}

	exclude := override.NewExcludeSet(settings.ExcludeMaterials...)
	applied, err := s.applier.Apply(ctx, scn, settings.OverrideMaterial, exclude)
	if err != nil {
		return 0, err
	}

	if err := s.scenes.SetObjects(ctx, sceneID, scn.Objects); err != nil {
		return applied, fmt.Errorf("persisting overridden objects: %w", err)
	}

	if err := s.registry.Activate(ctx, sceneID); err != nil && !errors.Is(err, overridelist.ErrSceneAlreadyActive) {
		return applied, err
	}

	s.publishEvent(ctx, sceneID, EventOverrideApplied, applied)
	return applied, nil
}

// CancelOverride restores every overridden slot in the scene to its original
// material and clears all snapshot state, returning the number of slots restored.
func (s *OverrideService) CancelOverride(ctx context.Context, sceneID primitive.ObjectID) (int, error) {
	scn, err := s.scenes.GetScene(ctx, sceneID)
	if err != nil {
		return 0, err
	}

	restored, err := s.restorer.Restore(ctx, scn)
	if err != nil {
		return restored, err
	}

	if err := s.scenes.SetObjects(ctx, sceneID, scn.Objects); err != nil {
		return restored, fmt.Errorf("persisting restored objects: %w", err)
	}

	// Snapshot state is cleared only after the restored objects are durably
	// written, so a failed persist leaves the originals recoverable and the
	// cancel can be retried. This also drops snapshots of objects deleted
	// from the scene while overridden, which the restore walk cannot reach.
	if err := s.snapshots.DeleteByScene(ctx, sceneID); err != nil {
		return restored, err
	}

	if err := s.registry.Deactivate(ctx, sceneID); err != nil && !errors.Is(err, overridelist.ErrSceneNotActive) {
		return restored, err
	}

	s.publishEvent(ctx, sceneID, EventOverrideReverted, restored)
	return restored, nil
}

// CleanObjectSlots compacts the slot sequence of one object and returns the
// number of slots removed. Fails with override.ErrObjectOverridden while the
// object carries an active override.
func (s *OverrideService) CleanObjectSlots(ctx context.Context, sceneID primitive.ObjectID, objectID string) (int, error) {
	scn, err := s.scenes.GetScene(ctx, sceneID)
	if err != nil {
		return 0, err
	}

	obj, err := scn.FindObject(objectID)
	if err != nil {
		return 0, err
	}

	removed, err := s.cleaner.CleanUnusedSlots(ctx, obj)
	if err != nil {
		return 0, err
	}
	if removed == 0 {
		return 0, nil
	}

	if err := s.scenes.SetObjects(ctx, sceneID, scn.Objects); err != nil {
		return removed, fmt.Errorf("persisting cleaned objects: %w", err)
	}
	return removed, nil
}

// GetOverrideStatus reports the scene's override state.
func (s *OverrideService) GetOverrideStatus(ctx context.Context, sceneID primitive.ObjectID) (*OverrideStatus, error) {
	name, err := s.scenes.GetSceneName(ctx, sceneID)
	if err != nil {
		return nil, err
	}

	active, err := s.registry.IsActive(ctx, sceneID)
	if err != nil {
		return nil, err
	}

	snaps, err := s.snapshots.ListByScene(ctx, sceneID)
	if err != nil {
		return nil, err
	}

	return &OverrideStatus{SceneName: name, Active: active, OverriddenObjects: len(snaps)}, nil
}

// ActiveOverrides returns the hex IDs of every scene with an active override.
func (s *OverrideService) ActiveOverrides(ctx context.Context) ([]string, error) {
	ids, err := s.registry.ActiveScenes(ctx)
	if err != nil {
		return nil, err
	}

	hexIDs := make([]string, 0, len(ids))
	for _, id := range ids {
		hexIDs = append(hexIDs, id.Hex())
	}
	return hexIDs, nil
}

// TagGenericMaterial assigns the Generic material to every object that carries
// no material at all, so nothing renders unshaded during an override session.
// Objects without slots get one appended; objects with only empty slots get
// their first slot filled. Returns the number of objects tagged.
func (s *OverrideService) TagGenericMaterial(ctx context.Context, sceneID primitive.ObjectID) (int, error) {
	scn, err := s.scenes.GetScene(ctx, sceneID)
	if err != nil {
		return 0, err
	}

	tagged := 0
	for i := range scn.Objects {
		obj := &scn.Objects[i]
		if obj.HasAnyMaterial() {
			continue
		}
		if len(obj.Slots) == 0 {
			obj.Slots = append(obj.Slots, scene.Slot{Material: scene.GenericMaterialName})
		} else {
			obj.Slots[0].Material = scene.GenericMaterialName
		}
		tagged++
		s.logger.Infof("Assigned Generic material to %s", obj.Name)
	}

	if tagged == 0 {
		return 0, nil
	}

	if !scn.HasMaterial(scene.GenericMaterialName) {
		scn.Materials = append(scn.Materials, scene.Material{Name: scene.GenericMaterialName})
	}
	if err := s.scenes.SetScene(ctx, scn); err != nil {
		return tagged, fmt.Errorf("persisting tagged scene: %w", err)
	}
	return tagged, nil
}

func (s *OverrideService) publishEvent(ctx context.Context, sceneID primitive.ObjectID, kind string, count int) {
	event := OverrideEvent{
		ID:        uuid.NewString(),
		SceneID:   sceneID.Hex(),
		Kind:      kind,
		SlotCount: count,
		Timestamp: time.Now().UTC(),
	}
	if err := s.events.PublishOverrideEvent(ctx, event); err != nil {
		// Events are advisory; the override itself already committed.
		s.logger.Errorf("Failed to publish %s event for scene %s: %v", kind, event.SceneID, err)
	}
}

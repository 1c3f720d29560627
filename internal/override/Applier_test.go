package override

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/SceneForge/GoMaterialOverride/internal/log"
	"github.com/SceneForge/GoMaterialOverride/internal/models/scene"
	"github.com/SceneForge/GoMaterialOverride/internal/models/snapshot"
)

func testLogger(t *testing.T) *log.Logger {
	t.Helper()
	logger, err := log.NewLogger(true, false, "")
	require.NoError(t, err)
	return logger
}

func testScene(objects ...scene.Object) *scene.Scene {
	return &scene.Scene{
		ID:      primitive.NewObjectID(),
		Name:    "test scene",
		Objects: objects,
	}
}

func slotMaterials(obj scene.Object) []string {
	materials := make([]string, len(obj.Slots))
	for i, slot := range obj.Slots {
		materials[i] = slot.Material
	}
	return materials
}

func TestApplyConcreteScenario(t *testing.T) {
	// Object with 3 slots [A, B, empty], exclude {B}: A and the empty slot are
	// overridden, B is skipped, AppliedCount = 2.
	store := snapshot.NewMemStore()
	applier := NewApplier(store, testLogger(t))
	scn := testScene(scene.Object{
		ID:    "obj-1",
		Name:  "Cube",
		Slots: []scene.Slot{{Material: "A"}, {Material: "B"}, {}},
	})

	applied, err := applier.Apply(context.Background(), scn, "M", NewExcludeSet("B"))
	require.NoError(t, err)
	assert.Equal(t, 2, applied)
	assert.Equal(t, []string{"M", "B", "M"}, slotMaterials(scn.Objects[0]))

	snap, err := store.Get(context.Background(), "obj-1")
	require.NoError(t, err)

	entry, ok := snap.Entry(0)
	require.True(t, ok)
	assert.Equal(t, "A", entry.Original)
	assert.True(t, entry.HadMaterial)

	_, ok = snap.Entry(1)
	assert.False(t, ok, "excluded slot must have no snapshot entry")

	entry, ok = snap.Entry(2)
	require.True(t, ok)
	assert.Empty(t, entry.Original)
	assert.False(t, entry.HadMaterial, "snapshotted empty slot must be recorded as empty")
}

func TestApplyExclusionHonored(t *testing.T) {
	store := snapshot.NewMemStore()
	applier := NewApplier(store, testLogger(t))
	scn := testScene(scene.Object{
		ID:    "obj-1",
		Slots: []scene.Slot{{Material: "Glass"}, {Material: "Steel"}},
	})

	applied, err := applier.Apply(context.Background(), scn, "Clay", NewExcludeSet("Glass", "Steel"))
	require.NoError(t, err)
	assert.Zero(t, applied)
	assert.Equal(t, []string{"Glass", "Steel"}, slotMaterials(scn.Objects[0]))

	_, err = store.Get(context.Background(), "obj-1")
	assert.ErrorIs(t, err, snapshot.ErrSnapshotNotFound, "fully excluded object must have no snapshot")
}

func TestApplyInvalidOverrideMaterial(t *testing.T) {
	store := snapshot.NewMemStore()
	applier := NewApplier(store, testLogger(t))
	scn := testScene(scene.Object{
		ID:    "obj-1",
		Slots: []scene.Slot{{Material: "A"}},
	})

	applied, err := applier.Apply(context.Background(), scn, "", NewExcludeSet())
	assert.ErrorIs(t, err, ErrInvalidOverrideMaterial)
	assert.Zero(t, applied)
	assert.Equal(t, []string{"A"}, slotMaterials(scn.Objects[0]), "no mutation on refused apply")
}

func TestApplyRejectsMaterialOutsideCatalog(t *testing.T) {
	store := snapshot.NewMemStore()
	applier := NewApplier(store, testLogger(t))
	scn := testScene(scene.Object{
		ID:    "obj-1",
		Slots: []scene.Slot{{Material: "A"}},
	})
	scn.Materials = []scene.Material{{Name: "A"}}

	applied, err := applier.Apply(context.Background(), scn, "NotInScene", NewExcludeSet())
	assert.ErrorIs(t, err, ErrInvalidOverrideMaterial)
	assert.Zero(t, applied)
}

func TestApplyEmptySceneIsNoOp(t *testing.T) {
	store := snapshot.NewMemStore()
	applier := NewApplier(store, testLogger(t))
	scn := testScene()

	applied, err := applier.Apply(context.Background(), scn, "M", NewExcludeSet())
	require.NoError(t, err)
	assert.Zero(t, applied)
}

func TestReapplyPreservesOriginalSnapshot(t *testing.T) {
	store := snapshot.NewMemStore()
	applier := NewApplier(store, testLogger(t))
	scn := testScene(scene.Object{
		ID:    "obj-1",
		Slots: []scene.Slot{{Material: "A"}, {Material: "B"}},
	})

	_, err := applier.Apply(context.Background(), scn, "M1", NewExcludeSet())
	require.NoError(t, err)

	applied, err := applier.Apply(context.Background(), scn, "M2", NewExcludeSet())
	require.NoError(t, err)
	assert.Equal(t, 2, applied)
	assert.Equal(t, []string{"M2", "M2"}, slotMaterials(scn.Objects[0]), "re-apply updates the visible override")

	snap, err := store.Get(context.Background(), "obj-1")
	require.NoError(t, err)
	entry, ok := snap.Entry(0)
	require.True(t, ok)
	assert.Equal(t, "A", entry.Original, "snapshot must not be overwritten with M1")
	entry, ok = snap.Entry(1)
	require.True(t, ok)
	assert.Equal(t, "B", entry.Original)
}

func TestReapplyWithChangedExcludeSetIsStickyByDefault(t *testing.T) {
	store := snapshot.NewMemStore()
	applier := NewApplier(store, testLogger(t))
	scn := testScene(scene.Object{
		ID:    "obj-1",
		Slots: []scene.Slot{{Material: "A"}},
	})

	_, err := applier.Apply(context.Background(), scn, "M", NewExcludeSet())
	require.NoError(t, err)

	// A is excluded now, but the slot was already overridden: the earlier
	// decision stays until a full restore.
	applied, err := applier.Apply(context.Background(), scn, "M", NewExcludeSet("A"))
	require.NoError(t, err)
	assert.Equal(t, 1, applied)
	assert.Equal(t, []string{"M"}, slotMaterials(scn.Objects[0]))
}

func TestReapplyRestoresNewlyExcludedWhenConfigured(t *testing.T) {
	store := snapshot.NewMemStore()
	applier := NewApplier(store, testLogger(t), WithRestoreNewlyExcluded())
	scn := testScene(scene.Object{
		ID:    "obj-1",
		Slots: []scene.Slot{{Material: "A"}, {Material: "B"}},
	})

	_, err := applier.Apply(context.Background(), scn, "M", NewExcludeSet())
	require.NoError(t, err)

	applied, err := applier.Apply(context.Background(), scn, "M", NewExcludeSet("A"))
	require.NoError(t, err)
	assert.Equal(t, 1, applied)
	assert.Equal(t, []string{"A", "M"}, slotMaterials(scn.Objects[0]))

	snap, err := store.Get(context.Background(), "obj-1")
	require.NoError(t, err)
	_, ok := snap.Entry(0)
	assert.False(t, ok, "restored slot must have its snapshot entry cleared")
	_, ok = snap.Entry(1)
	assert.True(t, ok)
}

func TestApplySkipsNewlyEligibleSlotAfterExcludeRemoval(t *testing.T) {
	// A slot skipped on the first apply still holds its true material, so a
	// re-apply with a smaller exclude set overrides it with a fresh snapshot.
	store := snapshot.NewMemStore()
	applier := NewApplier(store, testLogger(t))
	scn := testScene(scene.Object{
		ID:    "obj-1",
		Slots: []scene.Slot{{Material: "A"}, {Material: "B"}},
	})

	_, err := applier.Apply(context.Background(), scn, "M", NewExcludeSet("B"))
	require.NoError(t, err)
	assert.Equal(t, []string{"M", "B"}, slotMaterials(scn.Objects[0]))

	applied, err := applier.Apply(context.Background(), scn, "M", NewExcludeSet())
	require.NoError(t, err)
	assert.Equal(t, 2, applied)
	assert.Equal(t, []string{"M", "M"}, slotMaterials(scn.Objects[0]))

	snap, err := store.Get(context.Background(), "obj-1")
	require.NoError(t, err)
	entry, ok := snap.Entry(1)
	require.True(t, ok)
	assert.Equal(t, "B", entry.Original)
}

func TestApplyProcessesObjectsInSceneOrder(t *testing.T) {
	store := snapshot.NewMemStore()
	applier := NewApplier(store, testLogger(t))
	scn := testScene(
		scene.Object{ID: "obj-1", Slots: []scene.Slot{{Material: "A"}}},
		scene.Object{ID: "obj-2", Slots: []scene.Slot{{Material: "B"}, {Material: "C"}}},
		scene.Object{ID: "obj-3"},
	)

	applied, err := applier.Apply(context.Background(), scn, "M", NewExcludeSet())
	require.NoError(t, err)
	assert.Equal(t, 3, applied)
	assert.Equal(t, []string{"M"}, slotMaterials(scn.Objects[0]))
	assert.Equal(t, []string{"M", "M"}, slotMaterials(scn.Objects[1]))

	_, err = store.Get(context.Background(), "obj-3")
	assert.ErrorIs(t, err, snapshot.ErrSnapshotNotFound, "slotless object must have no snapshot")
}

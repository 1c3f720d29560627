package override

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SceneForge/GoMaterialOverride/internal/models/scene"
	"github.com/SceneForge/GoMaterialOverride/internal/models/snapshot"
)

func TestCleanRefusesOverriddenObject(t *testing.T) {
	// Compaction would corrupt the snapshot's index-based addressing, so an
	// overridden object must be refused until the override is cancelled.
	store := snapshot.NewMemStore()
	logger := testLogger(t)
	applier := NewApplier(store, logger)
	cleaner := NewSlotCleaner(store, logger)

	scn := testScene(scene.Object{
		ID:    "obj-1",
		Slots: []scene.Slot{{Material: "A"}, {}},
	})

	_, err := applier.Apply(context.Background(), scn, "M", NewExcludeSet())
	require.NoError(t, err)

	removed, err := cleaner.CleanUnusedSlots(context.Background(), &scn.Objects[0])
	assert.ErrorIs(t, err, ErrObjectOverridden)
	assert.Zero(t, removed)
	assert.Len(t, scn.Objects[0].Slots, 2, "refused clean must not mutate slots")
}

func TestCleanWorksAfterRestore(t *testing.T) {
	store := snapshot.NewMemStore()
	logger := testLogger(t)
	applier := NewApplier(store, logger)
	restorer := NewRestorer(store, logger)
	cleaner := NewSlotCleaner(store, logger)

	scn := testScene(scene.Object{
		ID:    "obj-1",
		Slots: []scene.Slot{{Material: "A"}, {}},
	})

	_, err := applier.Apply(context.Background(), scn, "M", NewExcludeSet())
	require.NoError(t, err)
	_, err = restorer.Restore(context.Background(), scn)
	require.NoError(t, err)
	require.NoError(t, store.Delete(context.Background(), "obj-1"))

	removed, err := cleaner.CleanUnusedSlots(context.Background(), &scn.Objects[0])
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, []string{"A"}, slotMaterials(scn.Objects[0]))
}

func TestCleanRemovesEmptyUnreferencedSlots(t *testing.T) {
	store := snapshot.NewMemStore()
	cleaner := NewSlotCleaner(store, testLogger(t))

	obj := scene.Object{
		ID:        "obj-1",
		Slots:     []scene.Slot{{Material: "A"}, {}, {Material: "B"}, {}},
		FaceSlots: []int{0, 2, 2},
	}

	removed, err := cleaner.CleanUnusedSlots(context.Background(), &obj)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.Equal(t, []string{"A", "B"}, slotMaterials(obj))
	assert.Equal(t, []int{0, 1, 1}, obj.FaceSlots)
}

func TestCleanKeepsReferencedEmptySlot(t *testing.T) {
	store := snapshot.NewMemStore()
	cleaner := NewSlotCleaner(store, testLogger(t))

	obj := scene.Object{
		ID:        "obj-1",
		Slots:     []scene.Slot{{Material: "A"}, {}},
		FaceSlots: []int{0, 1},
	}

	removed, err := cleaner.CleanUnusedSlots(context.Background(), &obj)
	require.NoError(t, err)
	assert.Zero(t, removed)
	assert.Len(t, obj.Slots, 2)
	assert.Equal(t, []int{0, 1}, obj.FaceSlots)
}

func TestCleanDeduplicatesSlotsAndRemapsFaces(t *testing.T) {
	store := snapshot.NewMemStore()
	cleaner := NewSlotCleaner(store, testLogger(t))

	obj := scene.Object{
		ID:        "obj-1",
		Slots:     []scene.Slot{{Material: "A"}, {Material: "B"}, {Material: "A"}},
		FaceSlots: []int{0, 2, 1, 2},
	}

	removed, err := cleaner.CleanUnusedSlots(context.Background(), &obj)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, []string{"A", "B"}, slotMaterials(obj))
	assert.Equal(t, []int{0, 0, 1, 0}, obj.FaceSlots, "faces on the duplicate must point at the first occurrence")
}

func TestCleanNoOpOnCompactObject(t *testing.T) {
	store := snapshot.NewMemStore()
	cleaner := NewSlotCleaner(store, testLogger(t))

	obj := scene.Object{
		ID:        "obj-1",
		Slots:     []scene.Slot{{Material: "A"}, {Material: "B"}},
		FaceSlots: []int{0, 1},
	}

	removed, err := cleaner.CleanUnusedSlots(context.Background(), &obj)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

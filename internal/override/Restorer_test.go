package override

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SceneForge/GoMaterialOverride/internal/models/scene"
	"github.com/SceneForge/GoMaterialOverride/internal/models/snapshot"
)

func TestRestoreRoundTrip(t *testing.T) {
	store := snapshot.NewMemStore()
	logger := testLogger(t)
	applier := NewApplier(store, logger)
	restorer := NewRestorer(store, logger)

	scn := testScene(
		scene.Object{ID: "obj-1", Slots: []scene.Slot{{Material: "A"}, {Material: "B"}, {}}},
		scene.Object{ID: "obj-2", Slots: []scene.Slot{{Material: "C"}}},
	)

	applied, err := applier.Apply(context.Background(), scn, "M", NewExcludeSet("B"))
	require.NoError(t, err)
	require.Equal(t, 3, applied)

	restored, err := restorer.Restore(context.Background(), scn)
	require.NoError(t, err)
	assert.Equal(t, 3, restored)
	assert.Equal(t, []string{"A", "B", ""}, slotMaterials(scn.Objects[0]))
	assert.Equal(t, []string{"C"}, slotMaterials(scn.Objects[1]))

	_, err = store.Get(context.Background(), "obj-1")
	assert.NoError(t, err, "snapshots survive the walk until the caller clears them")
}

func TestRestoreIsRepeatableUntilCleared(t *testing.T) {
	// The walk leaves snapshot state in place, so a restore whose persist
	// failed can run again and still recover the originals. Once the caller
	// clears the snapshots a further restore is a no-op.
	store := snapshot.NewMemStore()
	logger := testLogger(t)
	applier := NewApplier(store, logger)
	restorer := NewRestorer(store, logger)

	scn := testScene(scene.Object{ID: "obj-1", Slots: []scene.Slot{{Material: "A"}}})

	_, err := applier.Apply(context.Background(), scn, "M", NewExcludeSet())
	require.NoError(t, err)

	restored, err := restorer.Restore(context.Background(), scn)
	require.NoError(t, err)
	assert.Equal(t, 1, restored)

	restored, err = restorer.Restore(context.Background(), scn)
	require.NoError(t, err)
	assert.Equal(t, 1, restored, "repeated restore still walks the live snapshot")
	assert.Equal(t, []string{"A"}, slotMaterials(scn.Objects[0]))

	require.NoError(t, store.Delete(context.Background(), "obj-1"))

	restored, err = restorer.Restore(context.Background(), scn)
	require.NoError(t, err)
	assert.Zero(t, restored, "restore after snapshot clearing must be a no-op")
	assert.Equal(t, []string{"A"}, slotMaterials(scn.Objects[0]))
}

func TestRestoreOnNeverOverriddenSceneIsNoOp(t *testing.T) {
	store := snapshot.NewMemStore()
	restorer := NewRestorer(store, testLogger(t))

	scn := testScene(scene.Object{ID: "obj-1", Slots: []scene.Slot{{Material: "A"}}})

	restored, err := restorer.Restore(context.Background(), scn)
	require.NoError(t, err)
	assert.Zero(t, restored)
}

func TestRestoreSurvivesSlotCountShrink(t *testing.T) {
	store := snapshot.NewMemStore()
	logger := testLogger(t)
	applier := NewApplier(store, logger)
	restorer := NewRestorer(store, logger)

	scn := testScene(scene.Object{
		ID:    "obj-1",
		Slots: []scene.Slot{{Material: "A"}, {Material: "B"}, {Material: "C"}},
	})

	_, err := applier.Apply(context.Background(), scn, "M", NewExcludeSet())
	require.NoError(t, err)

	// Slots removed externally while overridden.
	scn.Objects[0].Slots = scn.Objects[0].Slots[:2]

	restored, err := restorer.Restore(context.Background(), scn)
	require.NoError(t, err)
	assert.Equal(t, 2, restored, "only surviving indices are restored")
	assert.Equal(t, []string{"A", "B"}, slotMaterials(scn.Objects[0]))
}

func TestRestoreClearsSnapshottedEmptySlot(t *testing.T) {
	store := snapshot.NewMemStore()
	logger := testLogger(t)
	applier := NewApplier(store, logger)
	restorer := NewRestorer(store, logger)

	scn := testScene(scene.Object{ID: "obj-1", Slots: []scene.Slot{{}}})

	_, err := applier.Apply(context.Background(), scn, "M", NewExcludeSet())
	require.NoError(t, err)
	require.Equal(t, []string{"M"}, slotMaterials(scn.Objects[0]))

	restored, err := restorer.Restore(context.Background(), scn)
	require.NoError(t, err)
	assert.Equal(t, 1, restored)
	assert.Equal(t, []string{""}, slotMaterials(scn.Objects[0]), "slot must be cleared, not left at the override")
}

func TestRoundTripAfterReapply(t *testing.T) {
	// apply(apply(S, M1), M2) then restore recovers S, not M1.
	store := snapshot.NewMemStore()
	logger := testLogger(t)
	applier := NewApplier(store, logger)
	restorer := NewRestorer(store, logger)

	scn := testScene(scene.Object{
		ID:    "obj-1",
		Slots: []scene.Slot{{Material: "A"}, {}},
	})

	_, err := applier.Apply(context.Background(), scn, "M1", NewExcludeSet())
	require.NoError(t, err)
	_, err = applier.Apply(context.Background(), scn, "M2", NewExcludeSet())
	require.NoError(t, err)

	restored, err := restorer.Restore(context.Background(), scn)
	require.NoError(t, err)
	assert.Equal(t, 2, restored)
	assert.Equal(t, []string{"A", ""}, slotMaterials(scn.Objects[0]))
}

// This file contains the Restorer implementation: the reverse half of the override state
// machine. It walks the scene's objects and reassigns each overridden slot back to its
// snapshotted original material. Objects without a snapshot are skipped silently.
//
// The walk never deletes snapshot state. The caller clears it only after the restored
// slots are durably persisted; until then the snapshots remain the sole record of the
// original assignments, and a failed persist can simply retry the restore.

package override

import (
	"context"
	"errors"
	"fmt"

	"github.com/SceneForge/GoMaterialOverride/internal/log"
	"github.com/SceneForge/GoMaterialOverride/internal/models/scene"
	"github.com/SceneForge/GoMaterialOverride/internal/models/snapshot"
)

type Restorer struct {
	store  snapshot.Store
	logger *log.Logger
}

// NewRestorer creates a Restorer reading snapshots from the given store.
func NewRestorer(store snapshot.Store, logger *log.Logger) *Restorer {
	return &Restorer{store: store, logger: logger}
}

// Restore reassigns every overridden slot back to its snapshotted original
// material, returning the number of slots restored. A snapshotted empty slot
// is cleared, not left pointing at the override material. Snapshot state is
// left in place; the caller deletes it once the restored slots are persisted.
//
// Snapshot entries whose slot index is beyond the object's current slot count
// (slots removed externally while overridden) are dropped with a diagnostic
// log, never an error.
func (r *Restorer) Restore(ctx context.Context, scn *scene.Scene) (int, error) {
	restored := 0
	for objIdx := range scn.Objects {
		obj := &scn.Objects[objIdx]

		snap, err := r.store.Get(ctx, obj.ID)
		if err != nil {
			if errors.Is(err, snapshot.ErrSnapshotNotFound) {
				continue
			}
			return restored, fmt.Errorf("loading snapshot for object %s: %w", obj.ID, err)
		}

		for _, entry := range snap.Entries {
			if entry.Index >= len(obj.Slots) {
				r.logger.Warnf("Snapshot mismatch on object %s: slot %d no longer exists, dropping entry", obj.ID, entry.Index)
				continue
			}
			if entry.HadMaterial {
				obj.Slots[entry.Index].Material = entry.Original
			} else {
				obj.Slots[entry.Index].Material = ""
			}
			restored++
		}
	}

	r.logger.Infof("Override restored on %d slots", restored)
	return restored, nil
}

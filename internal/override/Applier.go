// This file contains the Applier implementation: the forward half of the override state
// machine. It walks the scene's objects and slots in their native order, snapshots each
// slot's original material before the first mutation, and reassigns eligible slots to
// the override material. Re-applying without restoring never touches an existing
// snapshot entry, so the true original can always be recovered.

package override

import (
	"context"
	"errors"
	"fmt"

	"github.com/SceneForge/GoMaterialOverride/internal/log"
	"github.com/SceneForge/GoMaterialOverride/internal/models/scene"
	"github.com/SceneForge/GoMaterialOverride/internal/models/snapshot"
)

var (
	// ErrInvalidOverrideMaterial is returned when the override material handle is
	// unset or not part of the scene's material catalog. Apply refuses to run and
	// no slot is mutated.
	ErrInvalidOverrideMaterial = errors.New("override material is not set or not in the scene")
)

// ApplierOption configures an Applier.
type ApplierOption func(*Applier)

// WithRestoreNewlyExcluded makes re-apply undo overrides on slots whose
// snapshotted original material has since been added to the exclude set.
// Without this option the earlier skip decision is sticky until a full restore.
func WithRestoreNewlyExcluded() ApplierOption {
	return func(a *Applier) {
		a.restoreNewlyExcluded = true
	}
}

type Applier struct {
	store  snapshot.Store
	logger *log.Logger

	restoreNewlyExcluded bool
}

// NewApplier creates an Applier writing snapshots to the given store.
func NewApplier(store snapshot.Store, logger *log.Logger, opts ...ApplierOption) *Applier {
	a := &Applier{store: store, logger: logger}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Apply assigns overrideMaterial to every eligible slot of every object in the
// scene and returns the number of slots now carrying the override.
//
// A slot is skipped when its current material is in the exclude set. A slot
// already overridden from a prior un-restored apply is reassigned to the new
// override material without rewriting its snapshot entry. An empty scene is a
// no-op with count 0.
func (a *Applier) Apply(ctx context.Context, scn *scene.Scene, overrideMaterial string, exclude ExcludeSet) (int, error) {
	if overrideMaterial == "" {
		return 0, ErrInvalidOverrideMaterial
	}
	if len(scn.Materials) > 0 && !scn.HasMaterial(overrideMaterial) {
		return 0, ErrInvalidOverrideMaterial
	}

	applied := 0
	for objIdx := range scn.Objects {
		obj := &scn.Objects[objIdx]
		if len(obj.Slots) == 0 {
			continue
		}

		snap, err := a.store.Get(ctx, obj.ID)
		if err != nil {
			if !errors.Is(err, snapshot.ErrSnapshotNotFound) {
				return applied, fmt.Errorf("loading snapshot for object %s: %w", obj.ID, err)
			}
			snap = &snapshot.ObjectSnapshot{ObjectID: obj.ID, SceneID: scn.ID}
		}

		snapDirty := false
		for i := range obj.Slots {
			current := obj.Slots[i].Material
			entry, overridden := snap.Entry(i)

			if a.restoreNewlyExcluded && overridden && entry.HadMaterial && exclude.Contains(entry.Original) {
				obj.Slots[i].Material = entry.Original
				snap.RemoveEntry(i)
				snapDirty = true
				a.logger.Debugf("Restored newly excluded slot %d on object %s", i, obj.ID)
				continue
			}

			// The exclusion policy's single decision point.
			if current != "" && exclude.Contains(current) {
				continue
			}

			if overridden {
				// Re-apply: update the visible override, keep the true original.
				obj.Slots[i].Material = overrideMaterial
				applied++
				continue
			}

			snap.SetEntry(snapshot.SlotEntry{
				Index:       i,
				Original:    current,
				HadMaterial: current != "",
			})
			snapDirty = true
			obj.Slots[i].Material = overrideMaterial
			applied++
		}

		if !snapDirty {
			continue
		}
		if snap.Empty() {
			if err := a.store.Delete(ctx, obj.ID); err != nil {
				return applied, fmt.Errorf("deleting emptied snapshot for object %s: %w", obj.ID, err)
			}
			continue
		}
		if err := a.store.Put(ctx, snap); err != nil {
			return applied, fmt.Errorf("storing snapshot for object %s: %w", obj.ID, err)
		}
	}

	a.logger.Infof("Override applied to %d slots", applied)
	return applied, nil
}

// This file contains the SlotCleaner implementation. It compacts an object's slot
// sequence by removing slots that hold no material and are not referenced by any face
// assignment, and slots that duplicate an earlier slot's material. Face assignments are
// remapped to the surviving indices.
//
// Cleaning refuses to run on an object with an active override: snapshot entries address
// slots by index, and compaction would silently corrupt that addressing.

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
	// ErrObjectOverridden is returned when slot cleaning is attempted on an
	// object with an active override. Cancel the override first.
	ErrObjectOverridden = errors.New("object has an active material override")
)

type SlotCleaner struct {
	store  snapshot.Store
	logger *log.Logger
}

// NewSlotCleaner creates a SlotCleaner consulting the given snapshot store for
// active overrides.
func NewSlotCleaner(store snapshot.Store, logger *log.Logger) *SlotCleaner {
	return &SlotCleaner{store: store, logger: logger}
}

// CleanUnusedSlots removes unused and duplicate material slots from the object,
// compacting the slot sequence and remapping face assignments. Returns the
// number of slots removed.
//
// A slot is removed when it is empty and no face references it, or when an
// earlier slot holds the same material (faces are remapped to the earlier slot).
func (c *SlotCleaner) CleanUnusedSlots(ctx context.Context, obj *scene.Object) (int, error) {
	_, err := c.store.Get(ctx, obj.ID)
	if err == nil {
		return 0, ErrObjectOverridden
	}
	if !errors.Is(err, snapshot.ErrSnapshotNotFound) {
		return 0, fmt.Errorf("checking override state for object %s: %w", obj.ID, err)
	}

	referenced := make(map[int]bool, len(obj.FaceSlots))
	for _, slotIdx := range obj.FaceSlots {
		referenced[slotIdx] = true
	}

	// remap[old] is the surviving index an old slot collapses to, or -1.
	remap := make([]int, len(obj.Slots))
	kept := make([]scene.Slot, 0, len(obj.Slots))
	firstWithMaterial := make(map[string]int)

	for i, slot := range obj.Slots {
		if slot.Material == "" && !referenced[i] {
			remap[i] = -1
			continue
		}
		if slot.Material != "" {
			if first, ok := firstWithMaterial[slot.Material]; ok {
				remap[i] = first
				continue
			}
			firstWithMaterial[slot.Material] = len(kept)
		}
		remap[i] = len(kept)
		kept = append(kept, slot)
	}

	removed := len(obj.Slots) - len(kept)
	if removed == 0 {
		return 0, nil
	}

	for f, slotIdx := range obj.FaceSlots {
		if slotIdx >= 0 && slotIdx < len(remap) && remap[slotIdx] >= 0 {
			obj.FaceSlots[f] = remap[slotIdx]
		}
	}
	obj.Slots = kept

	c.logger.Infof("Removed %d unused slots from object %s", removed, obj.ID)
	return removed, nil
}

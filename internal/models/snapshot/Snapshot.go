// This file contains the ObjectSnapshot struct and its members: the persisted record of an
// object's pre-override slot assignments, keyed by stable object ID.

// When interacting with MongoDB, bson tags are used to specify the field names in the database.
// The original material handle must round-trip bit-stable through BSON, and a snapshotted
// empty slot must stay distinguishable from "no snapshot entry": presence of a SlotEntry for
// an index is the overridden flag, and HadMaterial encodes whether the slot held anything.

package snapshot

import (
	"errors"
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrSnapshotNotFound is returned when no snapshot is stored for an object.
	ErrSnapshotNotFound = errors.New("snapshot not found")
)

// SlotEntry records one slot's pre-override material. The entry existing at
// all means the slot is currently overridden.
type SlotEntry struct {
	Index       int    `bson:"index" json:"index"`
	Original    string `bson:"original,omitempty" json:"original,omitempty"`
	HadMaterial bool   `bson:"had_material" json:"had_material"`
}

// ObjectSnapshot groups the overridden-slot records for one object.
// Entries are kept sorted by slot index so restore order is deterministic.
type ObjectSnapshot struct {
	ObjectID string             `bson:"_id" json:"object_id"`
	SceneID  primitive.ObjectID `bson:"scene_id" json:"scene_id"`
	Entries  []SlotEntry        `bson:"entries" json:"entries"`
}

// Entry returns the snapshot entry for the given slot index, if one exists.
func (s *ObjectSnapshot) Entry(index int) (SlotEntry, bool) {
	for _, e := range s.Entries {
		if e.Index == index {
			return e, true
		}
	}
	return SlotEntry{}, false
}

// SetEntry inserts or replaces the entry for the given slot index,
// keeping the entry list sorted by index.
func (s *ObjectSnapshot) SetEntry(entry SlotEntry) {
	for i, e := range s.Entries {
		if e.Index == entry.Index {
			s.Entries[i] = entry
			return
		}
	}
	s.Entries = append(s.Entries, entry)
	sort.Slice(s.Entries, func(i, j int) bool {
		return s.Entries[i].Index < s.Entries[j].Index
	})
}

// RemoveEntry drops the entry for the given slot index, if present.
func (s *ObjectSnapshot) RemoveEntry(index int) {
	for i, e := range s.Entries {
		if e.Index == index {
			s.Entries = append(s.Entries[:i], s.Entries[i+1:]...)
			return
		}
	}
}

// Empty reports whether the snapshot carries no overridden-slot records.
func (s *ObjectSnapshot) Empty() bool {
	return len(s.Entries) == 0
}

// Clone returns a deep copy of the snapshot.
func (s *ObjectSnapshot) Clone() *ObjectSnapshot {
	c := &ObjectSnapshot{
		ObjectID: s.ObjectID,
		SceneID:  s.SceneID,
		Entries:  make([]SlotEntry, len(s.Entries)),
	}
	copy(c.Entries, s.Entries)
	return c
}

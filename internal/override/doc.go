// Package override contains the override/restore state machine: the bookkeeping that
// records, per object and per slot, enough information to undo a material override
// applied at an arbitrary later time, possibly after the scene has been saved and
// reloaded, and possibly after the exclude list or the override material has changed.
//
// The Applier walks the object graph, snapshots original assignments, and reassigns
// slots to the override material. The Restorer reads the snapshots back, reassigns
// original materials, and clears the snapshot state. The SlotCleaner is an independent
// utility that compacts slot sequences, refusing to run while an override is active
// because snapshots address slots by index.
//
// The package is host-independent: it operates on scene types and a snapshot.Store,
// and never touches HTTP or the database directly.
package override

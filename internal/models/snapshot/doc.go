// Package snapshot contains the persisted override bookkeeping: per-object records of
// pre-override slot assignments, keyed by stable object ID.
// The SnapshotManager struct is responsible for interacting with the MongoDB snapshots collection.
// The Store interface abstracts the repository so the override core can run against the
// in-memory MemStore in tests. BSON is used to interact with the database.
package snapshot

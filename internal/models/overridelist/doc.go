// Package overridelist contains the persisted registry of scenes with an active material override.
// The OverrideListManager struct is responsible for interacting with the MongoDB override_lists collection.
// The OverrideList struct represents the registry document. Strings are used to interact with the database.
package overridelist

// Package scene contains the implementation of interacting with the MongoDB scenes collection.
// The SceneManager struct is responsible for interacting with the MongoDB scenes collection.
// The Scene, Object, Slot, Material, and OverrideSettings structs are used to represent the data stored in the MongoDB database.
// Interaction is primarily by ID, as the ID will (almost always) be unique. BSON is used to interact with the database.
package scene

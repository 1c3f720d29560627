// This file contains the Scene struct and its members: the object graph the override
// operations walk, the material catalog, and the per-scene override settings.

// When interacting with MongoDB, bson tags are used to specify the field names in the database.
// For each struct field, you should add a bson tag with the field name in the database, to allow ease of serialization and deserialization.
// Optional fields should be marked with omitempty; i.e. a scene that never configured an override has no settings subdocument.

// When interacting with the editor client (json payloads), json tags are used to specify the field names in the JSON payload.

package scene

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrSceneNotFound is returned when a requested scene is not found in the database.
	ErrSceneNotFound = errors.New("scene not found")
	// ErrObjectNotFound is returned when a requested object ID is not present in a scene.
	ErrObjectNotFound = errors.New("object not found in scene")
)

// GenericMaterialName is assigned to objects that carry no material at all,
// so every object renders with something during an override session.
const GenericMaterialName = "Generic"

// Material is a named material handle. Equality is by name, never by content;
// the service never creates or destroys materials, only reassigns slots.
type Material struct {
	Name string `bson:"name" json:"name"`
}

// Slot is an indexed attachment point on an object holding at most one
// material reference. An empty Material string means the slot is empty.
type Slot struct {
	Material string `bson:"material,omitempty" json:"material,omitempty"`
}

// Object is a scene object with an ordered slot sequence. FaceSlots maps each
// geometry face to the slot index it draws its material from.
type Object struct {
	ID        string `bson:"id" json:"id"`
	Name      string `bson:"name" json:"name"`
	Slots     []Slot `bson:"slots" json:"slots"`
	FaceSlots []int  `bson:"face_slots,omitempty" json:"face_slots,omitempty"`
}

// OverrideSettings is the scene-persisted override configuration the editor UI
// edits: the override material handle and the exclude list.
type OverrideSettings struct {
	OverrideMaterial string   `bson:"override_material,omitempty" json:"override_material,omitempty"`
	ExcludeMaterials []string `bson:"exclude_materials,omitempty" json:"exclude_materials,omitempty"`
}

// Scene represents a scene document: an ordered collection of objects plus the
// material catalog and override settings.
type Scene struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name      string             `bson:"name" json:"name"`
	Objects   []Object           `bson:"objects" json:"objects"`
	Materials []Material         `bson:"materials,omitempty" json:"materials,omitempty"`
	Settings  *OverrideSettings  `bson:"settings,omitempty" json:"settings,omitempty"`
}

// HasMaterial reports whether the scene's material catalog contains the given handle.
func (s *Scene) HasMaterial(name string) bool {
	for _, m := range s.Materials {
		if m.Name == name {
			return true
		}
	}
	return false
}

// FindObject returns a pointer into the scene's object list for the given object ID.
func (s *Scene) FindObject(objectID string) (*Object, error) {
	for i := range s.Objects {
		if s.Objects[i].ID == objectID {
			return &s.Objects[i], nil
		}
	}
	return nil, ErrObjectNotFound
}

// HasAnyMaterial reports whether any slot on the object holds a material.
func (o *Object) HasAnyMaterial() bool {
	for _, slot := range o.Slots {
		if slot.Material != "" {
			return true
		}
	}
	return false
}

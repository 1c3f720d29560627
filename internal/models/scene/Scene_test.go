package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasMaterial(t *testing.T) {
	scn := &Scene{Materials: []Material{{Name: "Clay"}, {Name: "Glass"}}}

	assert.True(t, scn.HasMaterial("Clay"))
	assert.False(t, scn.HasMaterial("Steel"))
	assert.False(t, scn.HasMaterial(""))
}

func TestFindObject(t *testing.T) {
	scn := &Scene{Objects: []Object{
		{ID: "obj-1", Name: "Cube"},
		{ID: "obj-2", Name: "Sphere"},
	}}

	obj, err := scn.FindObject("obj-2")
	require.NoError(t, err)
	assert.Equal(t, "Sphere", obj.Name)

	// The pointer aliases the scene's object list, so mutations stick.
	obj.Slots = append(obj.Slots, Slot{Material: "Clay"})
	assert.Len(t, scn.Objects[1].Slots, 1)

	_, err = scn.FindObject("obj-9")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestHasAnyMaterial(t *testing.T) {
	assert.False(t, (&Object{}).HasAnyMaterial())
	assert.False(t, (&Object{Slots: []Slot{{}, {}}}).HasAnyMaterial())
	assert.True(t, (&Object{Slots: []Slot{{}, {Material: "Clay"}}}).HasAnyMaterial())
}

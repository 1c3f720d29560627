package web

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SceneForge/GoMaterialOverride/internal/common"
)

func TestMaterialHandleValidator(t *testing.T) {
	cases := []struct {
		name   string
		handle string
		valid  bool
	}{
		{"simple", "Steel", true},
		{"unicode", "Stahl.Brünniert", true},
		{"with inner spaces", "Brushed Steel 01", true},
		{"empty", "", false},
		{"leading space", " Steel", false},
		{"trailing space", "Steel ", false},
		{"trailing newline", "Steel\n", false},
		{"nul byte", "Ste\x00el", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validate.Var(tc.handle, "materialhandle")
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidateRequestStructRules(t *testing.T) {
	require.NoError(t, validate.Struct(&common.UpdateSettingsRequest{
		SceneID:          "66cf2a1b9d3e4f5a6b7c8d9e",
		OverrideMaterial: "Clay",
	}))

	assert.Error(t, validate.Struct(&common.UpdateSettingsRequest{
		SceneID:          "66cf2a1b9d3e4f5a6b7c8d9e",
		OverrideMaterial: " Clay",
	}))

	assert.Error(t, validate.Struct(&common.AddExcludeMaterialRequest{
		SceneID:  "66cf2a1b9d3e4f5a6b7c8d9e",
		Material: "",
	}))

	assert.Error(t, validate.Struct(&common.CreateSceneRequest{}))
}

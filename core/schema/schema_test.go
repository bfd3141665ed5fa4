package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }

func TestSchema_AddField(t *testing.T) {
	s := New("users", "1.0.0")

	require.NoError(t, s.AddField("email", &FieldDefinition{Type: FieldTypeString}))
	require.NoError(t, s.AddField("age", &FieldDefinition{Type: FieldTypeInteger}))

	assert.True(t, s.HasPath("email"))
	assert.True(t, s.HasPath("age"))
	assert.False(t, s.HasPath("missing"))
	assert.Equal(t, []string{"email", "age"}, s.Paths())

	// The registered name becomes the definition's identity.
	assert.Equal(t, "email", s.Path("email").Path)
}

func TestSchema_AddField_Duplicate(t *testing.T) {
	s := New("users", "1.0.0")
	require.NoError(t, s.AddField("email", &FieldDefinition{Type: FieldTypeString}))

	err := s.AddField("email", &FieldDefinition{Type: FieldTypeString})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already defined")
}

func TestSchema_AddField_Invalid(t *testing.T) {
	s := New("users", "1.0.0")
	assert.Error(t, s.AddField("", &FieldDefinition{Type: FieldTypeString}))
	assert.Error(t, s.AddField("email", nil))
}

func TestSchema_PathsIsSnapshot(t *testing.T) {
	s := New("users", "1.0.0")
	require.NoError(t, s.AddField("a", &FieldDefinition{Type: FieldTypeString}))

	snapshot := s.Paths()
	require.NoError(t, s.AddField("b", &FieldDefinition{Type: FieldTypeString}))

	assert.Equal(t, []string{"a"}, snapshot)
	assert.Equal(t, []string{"a", "b"}, s.Paths())
}

func TestSchema_TreeMirror(t *testing.T) {
	s := New("users", "1.0.0")
	require.NoError(t, s.AddField("email", &FieldDefinition{Type: FieldTypeString}))
	require.NoError(t, s.AddField("profile.name", &FieldDefinition{Type: FieldTypeString}))

	tree := s.Tree()
	assert.Same(t, s.Path("email"), tree["email"])

	profile, ok := tree["profile"].(map[string]any)
	require.True(t, ok, "nested segment should be an interior node")
	assert.Same(t, s.Path("profile.name"), profile["name"])
}

func TestFieldDefinition_Clone(t *testing.T) {
	original := &FieldDefinition{
		Path:        "email",
		Type:        FieldTypeString,
		Required:    boolPtr(true),
		Description: strPtr("primary address"),
		Options: FieldOptions{
			CaseInsensitive: true,
			Select:          boolPtr(true),
		},
	}

	clone := original.Clone()
	require.NotNil(t, clone)
	assert.Equal(t, original, clone)

	// Mutating the clone must not leak into the original.
	clone.Path = "__email"
	*clone.Required = false
	*clone.Options.Select = false
	clone.Options.Lowercase = true

	assert.Equal(t, "email", original.Path)
	assert.True(t, *original.Required)
	assert.True(t, *original.Options.Select)
	assert.False(t, original.Options.Lowercase)
}

func TestFieldOptions_Selected(t *testing.T) {
	tests := []struct {
		name     string
		options  FieldOptions
		expected bool
	}{
		{"unset means included", FieldOptions{}, true},
		{"explicit true", FieldOptions{Select: boolPtr(true)}, true},
		{"explicit false", FieldOptions{Select: boolPtr(false)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.options.Selected())
		})
	}
}

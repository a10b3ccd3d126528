package vfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"root", "/", "/", false},
		{"simple", "/App.jsx", "/App.jsx", false},
		{"nested", "/src/components/Button.jsx", "/src/components/Button.jsx", false},
		{"trailing slash", "/src/", "/src", false},
		{"case kept", "/Src/A.JS", "/Src/A.JS", false},
		{"backslash is a name char", `/a\b`, `/a\b`, false},
		{"empty", "", "", true},
		{"relative", "src/a.js", "", true},
		{"double slash", "/a//b", "", true},
		{"two trailing slashes", "/a//", "", true},
		{"dot segment", "/a/./b", "", true},
		{"dotdot segment", "/a/../b", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Normalize(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidPath)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPathHelpers(t *testing.T) {
	t.Parallel()

	assert.Nil(t, Segments("/"))
	assert.Equal(t, []string{"a", "b"}, Segments("/a/b"))

	parent, ok := ParentOf("/a/b")
	assert.True(t, ok)
	assert.Equal(t, "/a", parent)
	parent, ok = ParentOf("/a")
	assert.True(t, ok)
	assert.Equal(t, "/", parent)
	_, ok = ParentOf("/")
	assert.False(t, ok)

	assert.Equal(t, "root", Filename("/"))
	assert.Equal(t, "b.js", Filename("/a/b.js"))

	assert.Equal(t, "/a", Join("/", "a"))
	assert.Equal(t, "/a/b", Join("/a", "b"))

	assert.True(t, isWithin("/a/b", "/a"))
	assert.True(t, isWithin("/a", "/a"))
	assert.False(t, isWithin("/ab", "/a"))
	assert.True(t, isWithin("/anything", "/"))
}

func TestNormalize_ErrorMessage(t *testing.T) {
	t.Parallel()

	_, err := normalizeFor("create", "relative")
	var pe *PathError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "create", pe.Op)
	assert.Contains(t, pe.Error(), "must be absolute")
}

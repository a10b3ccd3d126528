package vfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSystem_ReplaceInFile(t *testing.T) {
	t.Parallel()

	t.Run("Unique match", func(t *testing.T) {
		t.Parallel()
		fs := createTestFS(t, "/a.js", "const a = 1;\nconst b = 2;\n")

		require.NoError(t, fs.ReplaceInFile("/a.js", "b = 2", "b = 3"))

		content, _ := fs.ReadFile("/a.js")
		assert.Equal(t, "const a = 1;\nconst b = 3;\n", content)
	})
	t.Run("Replacement may be empty", func(t *testing.T) {
		t.Parallel()
		fs := createTestFS(t, "/a.js", "keep drop")

		require.NoError(t, fs.ReplaceInFile("/a.js", " drop", ""))

		content, _ := fs.ReadFile("/a.js")
		assert.Equal(t, "keep", content)
	})
	t.Run("No match", func(t *testing.T) {
		t.Parallel()
		fs := createTestFS(t, "/a.js", "hello")

		err := fs.ReplaceInFile("/a.js", "bye", "x")

		assert.ErrorIs(t, err, ErrNoMatch)
		assert.Equal(t, `String not found in file: "bye"`, err.Error())
	})
	t.Run("Empty search string", func(t *testing.T) {
		t.Parallel()
		fs := createTestFS(t, "/a.js", "hello")

		assert.ErrorIs(t, fs.ReplaceInFile("/a.js", "", "x"), ErrNoMatch)
	})
	t.Run("Ambiguous match lists lines", func(t *testing.T) {
		t.Parallel()
		fs := createTestFS(t, "/a.js", "x = 1\ny = 2\nx = 3\n")

		err := fs.ReplaceInFile("/a.js", "x =", "z =")

		assert.ErrorIs(t, err, ErrAmbiguousMatch)
		assert.Contains(t, err.Error(), "String appears 2 times")
		assert.Contains(t, err.Error(), "lines 1, 3")
		content, _ := fs.ReadFile("/a.js")
		assert.Equal(t, "x = 1\ny = 2\nx = 3\n", content, "file must be untouched")
	})
	t.Run("Missing file and directory", func(t *testing.T) {
		t.Parallel()
		fs := createTestFS(t, "/src/a.js", "")

		assert.ErrorIs(t, fs.ReplaceInFile("/nope", "a", "b"), ErrNotFound)
		assert.ErrorIs(t, fs.ReplaceInFile("/src", "a", "b"), ErrNotAFile)
	})
}

func TestFileSystem_InsertInFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		line    int
		want    string
	}{
		{"prepend", "a\nb", 0, "new\na\nb"},
		{"middle", "a\nb", 1, "a\nnew\nb"},
		{"append", "a\nb", 2, "a\nb\nnew"},
		{"empty file prepend", "", 0, "new\n"},
		{"empty file append", "", 1, "\nnew"},
		{"trailing newline counts a line", "a\n", 2, "a\n\nnew"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			fs := createTestFS(t, "/f.txt", tt.content)

			require.NoError(t, fs.InsertInFile("/f.txt", tt.line, "new"))

			content, _ := fs.ReadFile("/f.txt")
			assert.Equal(t, tt.want, content)
		})
	}
}

func TestFileSystem_InsertInFile_OutOfRange(t *testing.T) {
	t.Parallel()

	fs := createTestFS(t, "/f.txt", "a\nb", "/dir/x", "")

	err := fs.InsertInFile("/f.txt", 3, "x")
	assert.ErrorIs(t, err, ErrOutOfRange)
	assert.Equal(t, "Invalid line number: 3. File has 2 lines.", err.Error())
	assert.ErrorIs(t, fs.InsertInFile("/f.txt", -1, "x"), ErrOutOfRange)
	assert.ErrorIs(t, fs.InsertInFile("/dir", 0, "x"), ErrNotAFile)
	assert.ErrorIs(t, fs.InsertInFile("/none", 0, "x"), ErrNotFound)

	content, _ := fs.ReadFile("/f.txt")
	assert.Equal(t, "a\nb", content)
}

func TestMatchLines(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []int{1, 3}, matchLines("ab\ncd\nab", "ab"))
	assert.Equal(t, []int{1}, matchLines("aaa", "aa"), "occurrences do not overlap")
	assert.Nil(t, matchLines("abc", "x"))
}

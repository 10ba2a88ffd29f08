package ops

import (
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/specdiff/internal/errors"
)

func TestValidatePath_TraversalRejected(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"parent traversal", "../diff.html"},
		{"deep traversal", "../../etc/diff.html"},
		{"mid-path traversal", "/tmp/../etc/diff.html"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePath(tc.path, PathCheckWrite)
			assert.True(t, errors.Is(err, errors.ErrInvalidRequest), "got %v", err)
		})
	}
}

func TestValidatePath_WriteExtension(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"diff", "diff.txt", "diff.jsonl"} {
		err := ValidatePath(filepath.Join(dir, name), PathCheckWrite)
		assert.True(t, errors.Is(err, errors.ErrInvalidRequest), name)
	}
	for _, name := range []string{"diff.html", "DIFF.HTM"} {
		assert.NoError(t, ValidatePath(filepath.Join(dir, name), PathCheckWrite), name)
	}
}

func TestValidatePath_Read(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")

	err := ValidatePath(path, PathCheckRead)
	assert.True(t, errors.Is(err, errors.ErrFileNotFound))

	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	assert.NoError(t, ValidatePath(path, PathCheckRead))

	assert.True(t, errors.Is(ValidatePath("", PathCheckRead), errors.ErrInvalidRequest))
}

func TestValidatePath_SymlinkRejected(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	dir := t.TempDir()
	target := filepath.Join(dir, "real.html")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0644))
	link := filepath.Join(dir, "link.html")
	require.NoError(t, os.Symlink(target, link))

	err := ValidatePath(link, PathCheckWrite)
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))

	linkDir := filepath.Join(t.TempDir(), "linked")
	require.NoError(t, os.Symlink(dir, linkDir))
	err = ValidatePath(filepath.Join(linkDir, "new.html"), PathCheckWrite)
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestContainsTraversal(t *testing.T) {
	assert.True(t, containsTraversal("../x"))
	assert.True(t, containsTraversal("a/../b"))
	assert.False(t, containsTraversal("a/..b/c"))
	assert.False(t, containsTraversal("/tmp/diff.html"))
}

func TestSanitizeForFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"TS-101:A", "TS-101-A"},
		{"../../etc", "etc"},
		{"a/b\\c", "a-b-c"},
		{"ctrl\x00\x1fchars", "ctrlchars"},
		{"", "unnamed"},
		{"::", "unnamed"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, SanitizeForFilename(tc.in), tc.in)
	}
}

func TestWriteFileAtomic_KeepsOldFileOnFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "diff.html")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0644))

	err := writeFileAtomic(path, func(w io.Writer) error {
		_, _ = w.Write([]byte("partial"))
		return assert.AnError
	})
	require.Error(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

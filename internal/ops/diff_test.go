package ops

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/specdiff/internal/errors"
	"github.com/hpungsan/specdiff/internal/textdiff"
)

func TestDiffFiles_Text(t *testing.T) {
	te := newTestEnv(t)

	out, err := DiffFiles(context.Background(), te.Env, DiffInput{
		ContentType:     ContentText,
		A:               "cat",
		B:               "hat",
		IncludeSegments: true,
	})
	require.NoError(t, err)
	assert.Equal(t, textdiff.ModeEfficiency, out.Mode)
	assert.Equal(t, 1, out.Stats.Deletes)
	assert.Equal(t, 1, out.Stats.Inserts)
	assert.NotEmpty(t, out.Segments)
	assert.FileExists(t, out.OutputPath)
}

func TestDiffFiles_Files(t *testing.T) {
	te := newTestEnv(t)
	a := te.writeFile(t, "a.txt", "one\ntwo\n")
	b := te.writeFile(t, "b.txt", "one\n2\n")
	outPath := filepath.Join(te.dir, "out", "ab.htm")

	out, err := DiffFiles(context.Background(), te.Env, DiffInput{A: a, B: b, Mode: "raw", OutputPath: outPath, Open: true})
	require.NoError(t, err)
	assert.Equal(t, outPath, out.OutputPath)
	assert.Equal(t, textdiff.ModeRaw, out.Mode)
	assert.Nil(t, out.Segments)
	assert.True(t, out.Opened)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "a.txt")
}

func TestDiffFiles_Errors(t *testing.T) {
	te := newTestEnv(t)
	a := te.writeFile(t, "a.txt", "x")

	tests := []struct {
		name  string
		input DiffInput
		code  errors.ErrorCode
	}{
		{"missing file", DiffInput{A: a, B: filepath.Join(te.dir, "nope.txt")}, errors.ErrFileNotFound},
		{"traversal", DiffInput{A: "../a.txt", B: a}, errors.ErrInvalidRequest},
		{"bad content type", DiffInput{ContentType: "url", A: "x", B: "y"}, errors.ErrInvalidRequest},
		{"bad output", DiffInput{ContentType: ContentText, A: "x", B: "y", OutputPath: filepath.Join(te.dir, "out.pdf")}, errors.ErrInvalidRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DiffFiles(context.Background(), te.Env, tc.input)
			assert.True(t, errors.Is(err, tc.code), "got %v", err)
		})
	}
}

func TestDiffFiles_SymlinkInputRejected(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	te := newTestEnv(t)
	target := te.writeFile(t, "real.txt", "x")
	link := filepath.Join(te.dir, "src", "link.txt")
	require.NoError(t, os.Symlink(target, link))

	_, err := DiffFiles(context.Background(), te.Env, DiffInput{A: link, B: target})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

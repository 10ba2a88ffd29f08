package ops

import (
	"bufio"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hpungsan/specdiff/internal/errors"
)

// resolveOutputPath returns the validated absolute destination for a rendered
// document: the caller's path, or diff.html in the configured output dir.
func (e *Env) resolveOutputPath(path string) (string, error) {
	if path == "" {
		path = filepath.Join(e.OutputDir(), DefaultOutputName)
	}
	if err := ValidatePath(path, PathCheckWrite); err != nil {
		return "", err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.NewInvalidRequest(fmt.Sprintf("invalid path: %v", err))
	}
	return abs, nil
}

// writeFileAtomic writes through a temp file next to path and renames it into
// place. On failure the previous file at path is left untouched.
func writeFileAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.NewIO("mkdir", dir, err)
	}

	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := path + "." + hex.EncodeToString(randBytes) + ".tmp"
	file, err := openFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		if _, ok := errors.As(err); ok {
			return err
		}
		return errors.NewIO("create", tempPath, err)
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	bw := bufio.NewWriter(file)
	if err := write(bw); err != nil {
		if _, ok := errors.As(err); ok {
			return err
		}
		return errors.NewIO("write", tempPath, err)
	}
	if err := bw.Flush(); err != nil {
		return errors.NewIO("write", tempPath, err)
	}
	if err := file.Sync(); err != nil {
		return errors.NewIO("sync", tempPath, err)
	}

	// Close before replace (required on Windows; fine elsewhere).
	if err := file.Close(); err != nil {
		return errors.NewIO("close", tempPath, err)
	}
	file = nil

	// os.Rename would follow a symlinked destination
	if info, err := os.Lstat(path); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return errors.NewInvalidRequest("output path is a symlink")
	}

	if err := replaceFile(tempPath, path); err != nil {
		return errors.NewIO("rename", path, err)
	}

	success = true
	return nil
}

// readInputFile reads a caller-supplied file without following a final symlink.
func readInputFile(path string) ([]byte, error) {
	if err := ValidatePath(path, PathCheckRead); err != nil {
		return nil, err
	}
	f, err := openFileNoFollowRead(path)
	if err != nil {
		if _, ok := errors.As(err); ok {
			return nil, err
		}
		return nil, errors.NewIO("open", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.NewIO("read", path, err)
	}
	return data, nil
}

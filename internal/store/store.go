// Package store is the content-addressed file repository. Files are copied in
// under <hex-hash><ext> and made read-only; identical bytes always resolve to
// the same stored name.
package store

import (
	"crypto/md5"
	"encoding/hex"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"lukechampine.com/blake3"

	"github.com/hpungsan/specdiff/internal/errors"
	"github.com/hpungsan/specdiff/internal/logging"
)

// HashAlgorithm selects the digest used for stored file names.
type HashAlgorithm string

const (
	HashMD5    HashAlgorithm = "md5"
	HashBLAKE3 HashAlgorithm = "blake3"
)

// ParseHashAlgorithm maps a config value to a HashAlgorithm. Empty means md5.
func ParseHashAlgorithm(s string) (HashAlgorithm, error) {
	switch HashAlgorithm(strings.ToLower(strings.TrimSpace(s))) {
	case "", HashMD5:
		return HashMD5, nil
	case HashBLAKE3:
		return HashBLAKE3, nil
	}
	return "", errors.NewInvalidRequest(fmt.Sprintf("unknown hash algorithm %q (want md5 or blake3)", s))
}

// Sum returns the lowercase hex digest of data.
func (a HashAlgorithm) Sum(data []byte) string {
	if a == HashBLAKE3 {
		h := blake3.Sum256(data)
		return hex.EncodeToString(h[:])
	}
	h := md5.Sum(data)
	return hex.EncodeToString(h[:])
}

// blobMode is applied to every stored file.
const blobMode fs.FileMode = 0444

// refPattern matches <hex-hash><ext>: md5 (32) or blake3 (64) hex digits, then an optional extension.
var refPattern = regexp.MustCompile(`^([a-f0-9]{32}|[a-f0-9]{64})(\.[A-Za-z0-9]+)?$`)

// ContentRef names a stored blob: <hex-hash><ext>.
type ContentRef string

// NewRef builds a ref from a digest and an extension (with or without leading dot).
func NewRef(hash, ext string) ContentRef {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ContentRef(hash + ext)
}

// Valid reports whether the ref has the <hex-hash><ext> shape.
func (r ContentRef) Valid() bool {
	return refPattern.MatchString(string(r))
}

// Hash returns the digest part of the ref.
func (r ContentRef) Hash() string {
	return strings.TrimSuffix(string(r), r.Ext())
}

// Ext returns the extension part of the ref, including the dot.
func (r ContentRef) Ext() string {
	return filepath.Ext(string(r))
}

func (r ContentRef) String() string {
	return string(r)
}

// Store is a flat directory of content-addressed, read-only files.
// No locking is done: ingesting identical content concurrently writes identical bytes.
type Store struct {
	dir  string
	algo HashAlgorithm
}

// New opens (creating if needed) the content directory.
func New(dir string, algo HashAlgorithm) (*Store, error) {
	if algo == "" {
		algo = HashMD5
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create content directory: %w", err)
	}
	return &Store{dir: dir, algo: algo}, nil
}

// Dir returns the content directory.
func (s *Store) Dir() string {
	return s.dir
}

// Algorithm returns the hash algorithm used for new blobs.
func (s *Store) Algorithm() HashAlgorithm {
	return s.algo
}

// Path returns the filesystem path for ref.
func (s *Store) Path(ref ContentRef) string {
	return filepath.Join(s.dir, string(ref))
}

// Ingest copies the file at path into the store and returns its reference.
// An unreadable source returns an empty ref and a FILE_NOT_FOUND or IO_ERROR.
func (s *Store) Ingest(path string) (ContentRef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return "", errors.NewFileNotFound(path)
		}
		return "", errors.NewIO("read", path, err)
	}
	return s.IngestBytes(data, filepath.Ext(path))
}

// IngestBytes stores data under <hash><ext>. Storing content that is already
// present is a no-op returning the existing reference.
func (s *Store) IngestBytes(data []byte, ext string) (ContentRef, error) {
	ref := NewRef(s.algo.Sum(data), ext)
	if !ref.Valid() {
		return "", errors.NewInvalidRequest(fmt.Sprintf("unsupported file extension %q", ext))
	}

	blobPath := s.Path(ref)
	if _, err := os.Stat(blobPath); err == nil {
		logging.Debug("blob already stored", "ref", ref.String())
		return ref, nil
	}

	tempFile, err := os.CreateTemp(s.dir, ".blob-*")
	if err != nil {
		return "", errors.NewIO("create", s.dir, err)
	}
	tempPath := tempFile.Name()

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		os.Remove(tempPath)
		return "", errors.NewIO("write", tempPath, err)
	}
	if err := tempFile.Close(); err != nil {
		os.Remove(tempPath)
		return "", errors.NewIO("close", tempPath, err)
	}
	if err := os.Chmod(tempPath, blobMode); err != nil {
		os.Remove(tempPath)
		return "", errors.NewIO("chmod", tempPath, err)
	}
	if err := os.Rename(tempPath, blobPath); err != nil {
		os.Remove(tempPath)
		return "", errors.NewIO("rename", blobPath, err)
	}

	logging.Info("blob stored", "ref", ref.String(), "bytes", len(data))
	return ref, nil
}

// Exists reports whether the blob for ref is present.
func (s *Store) Exists(ref ContentRef) bool {
	if !ref.Valid() {
		return false
	}
	_, err := os.Stat(s.Path(ref))
	return err == nil
}

// Resolve returns the bytes of a stored blob. A blob that was removed from the
// directory is CONTENT_GONE, a recoverable condition.
func (s *Store) Resolve(ref ContentRef) ([]byte, error) {
	if !ref.Valid() {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("invalid content reference %q", ref))
	}
	if !s.Exists(ref) {
		return nil, errors.NewContentGone("", ref.String())
	}

	data, err := os.ReadFile(s.Path(ref))
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.NewContentGone("", ref.String())
		}
		return nil, errors.NewIO("read", s.Path(ref), err)
	}
	return data, nil
}

// List returns every stored ref in name order. Temp files and foreign names are skipped.
func (s *Store) List() ([]ContentRef, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.NewIO("list", s.dir, err)
	}

	refs := make([]ContentRef, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ref := ContentRef(e.Name())
		if ref.Valid() {
			refs = append(refs, ref)
		}
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i] < refs[j] })
	return refs, nil
}

// Remove deletes a stored blob. Used only to drop unreferenced files.
func (s *Store) Remove(ref ContentRef) error {
	if !ref.Valid() {
		return errors.NewInvalidRequest(fmt.Sprintf("invalid content reference %q", ref))
	}
	path := s.Path(ref)
	// read-only files need write permission on some platforms before removal
	_ = os.Chmod(path, 0644)
	if err := os.Remove(path); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return errors.NewIO("remove", path, err)
	}
	return nil
}

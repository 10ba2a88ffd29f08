// Package convert turns source documents into plain UTF-8 text.
package convert

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/hpungsan/specdiff/internal/config"
	"github.com/hpungsan/specdiff/internal/errors"
	"github.com/hpungsan/specdiff/internal/logging"
)

// DocumentConverter converts one family of document formats to UTF-8 text.
type DocumentConverter interface {
	// Name identifies the converter in logs and error details.
	Name() string
	// Extensions lists the lowercase extensions (with dot) handled.
	Extensions() []string
	// Convert writes the text of src to dst.
	Convert(ctx context.Context, src, dst string) error
}

// Normalizer dispatches documents to a converter by extension.
type Normalizer struct {
	byExt map[string]DocumentConverter
}

// NewNormalizer registers converters in order. A later converter claiming an
// extension replaces the earlier one.
func NewNormalizer(converters ...DocumentConverter) *Normalizer {
	n := &Normalizer{byExt: make(map[string]DocumentConverter)}
	for _, c := range converters {
		n.Register(c)
	}
	return n
}

// NewDefaultNormalizer builds the standard set: .docx parsed in-process, .txt
// passed through, and legacy formats sent to the configured external command.
func NewDefaultNormalizer(cfg *config.Config) *Normalizer {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	legacy := &LegacyConverter{
		Command: cfg.LegacyConverter,
		Timeout: time.Duration(cfg.ConvertTimeoutSeconds) * time.Second,
	}
	return NewNormalizer(TextConverter{}, DocxConverter{}, legacy)
}

// Register adds c for each of its extensions.
func (n *Normalizer) Register(c DocumentConverter) {
	for _, ext := range c.Extensions() {
		n.byExt[strings.ToLower(ext)] = c
	}
}

// Supported returns the registered extensions, sorted.
func (n *Normalizer) Supported() []string {
	exts := make([]string, 0, len(n.byExt))
	for ext := range n.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// ConverterFor returns the converter registered for path's extension.
func (n *Normalizer) ConverterFor(path string) (DocumentConverter, bool) {
	c, ok := n.byExt[strings.ToLower(filepath.Ext(path))]
	return c, ok
}

// Normalize converts src to UTF-8 text at dst. On any failure dst is removed
// and the error is CONVERSION_FAILED (or FILE_NOT_FOUND / CANCELLED).
func (n *Normalizer) Normalize(ctx context.Context, src, dst string) error {
	if err := ctx.Err(); err != nil {
		return errors.NewCancelled("normalize")
	}
	if _, err := os.Stat(src); err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return errors.NewFileNotFound(src)
		}
		return errors.NewIO("stat", src, err)
	}

	c, ok := n.ConverterFor(src)
	if !ok {
		return errors.NewConversionFailed(src, fmt.Errorf("unsupported format %q (supported: %s)",
			filepath.Ext(src), strings.Join(n.Supported(), ", ")))
	}

	start := time.Now()
	if err := c.Convert(ctx, src, dst); err != nil {
		os.Remove(dst)
		if ctx.Err() != nil {
			return errors.NewCancelled("normalize")
		}
		if se, ok := errors.As(err); ok && se.Code == errors.ErrConversionFailed {
			return se
		}
		return errors.NewConversionFailed(src, err)
	}

	logging.Info("document converted",
		"converter", c.Name(),
		"src", src,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// writeText writes text to dst through a temp file in the same directory, so a
// failed write leaves nothing at dst.
func writeText(dst string, text []byte) error {
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".convert-*.txt")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(text); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

package ops

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/hpungsan/specdiff/internal/errors"
	"github.com/hpungsan/specdiff/internal/logging"
	"github.com/hpungsan/specdiff/internal/textdiff"
)

// Content types accepted by DiffFiles.
const (
	ContentFile = "file"
	ContentText = "text"
)

// DiffInput contains parameters for the DiffFiles operation.
type DiffInput struct {
	// ContentType is "file" (A and B are paths) or "text" (A and B are the texts). Default: file.
	ContentType     string
	A               string
	B               string
	Mode            string
	OutputPath      string // optional, default: <output_dir>/diff.html
	Open            bool
	IncludeSegments bool
}

// DiffOutput contains the result of the DiffFiles operation.
type DiffOutput struct {
	OutputPath string             `json:"output_path"`
	Mode       textdiff.Mode      `json:"mode"`
	Stats      textdiff.Stats     `json:"stats"`
	Identical  bool               `json:"identical"`
	Opened     bool               `json:"opened"`
	Segments   []textdiff.Segment `json:"segments,omitempty"`
}

// DiffFiles diffs two files or two texts directly, without the record store.
func DiffFiles(ctx context.Context, env *Env, input DiffInput) (*DiffOutput, error) {
	contentType := strings.ToLower(strings.TrimSpace(input.ContentType))
	if contentType == "" {
		contentType = ContentFile
	}

	var a, b, labelA, labelB string
	switch contentType {
	case ContentFile:
		dataA, err := readInputFile(input.A)
		if err != nil {
			return nil, err
		}
		dataB, err := readInputFile(input.B)
		if err != nil {
			return nil, err
		}
		a, b = string(dataA), string(dataB)
		labelA, labelB = filepath.Base(input.A), filepath.Base(input.B)
	case ContentText:
		a, b = input.A, input.B
		labelA, labelB = "text A", "text B"
	default:
		return nil, errors.NewInvalidRequest("content_type must be file or text")
	}

	opts, err := env.DiffOptions(input.Mode)
	if err != nil {
		return nil, err
	}
	outPath, err := env.resolveOutputPath(input.OutputPath)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.NewCancelled("diff")
	}

	result := textdiff.Diff(strings.ToValidUTF8(a, "\uFFFD"), strings.ToValidUTF8(b, "\uFFFD"), opts)
	header := textdiff.Header{
		Title:       labelA + " vs " + labelB,
		SourceLabel: labelA,
		TargetLabel: labelB,
	}
	err = writeFileAtomic(outPath, func(w io.Writer) error {
		return textdiff.WriteDocument(w, result, header)
	})
	if err != nil {
		return nil, err
	}

	stats := result.Stats()
	logging.Info("diff written", "output", outPath, "mode", string(result.Mode),
		"inserts", stats.Inserts, "deletes", stats.Deletes)

	out := &DiffOutput{
		OutputPath: outPath,
		Mode:       result.Mode,
		Stats:      stats,
		Identical:  result.Identical(),
		Opened:     reveal(env, input.Open, outPath),
	}
	if input.IncludeSegments {
		out.Segments = result.Segments
	}
	return out, nil
}

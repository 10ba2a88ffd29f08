package ops

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/specdiff/internal/db"
	"github.com/hpungsan/specdiff/internal/errors"
	"github.com/hpungsan/specdiff/internal/logging"
	"github.com/hpungsan/specdiff/internal/record"
	"github.com/hpungsan/specdiff/internal/store"
	"github.com/hpungsan/specdiff/internal/textdiff"
)

// CompareInput contains parameters for the Compare operation.
type CompareInput struct {
	KeyA       string
	KeyB       string
	Mode       string // optional, default from config (efficiency)
	OutputPath string // optional, default: <output_dir>/diff.html
	Open       bool   // reveal the document with the viewer afterwards
}

// CompareOutput contains the result of the Compare operation.
type CompareOutput struct {
	ID         string         `json:"id"`
	KeyA       string         `json:"key_a"`
	KeyB       string         `json:"key_b"`
	OutputPath string         `json:"output_path"`
	Mode       textdiff.Mode  `json:"mode"`
	Stats      textdiff.Stats `json:"stats"`
	Identical  bool           `json:"identical"`
	Opened     bool           `json:"opened"`
}

// comparedText is one resolved side of a comparison.
type comparedText struct {
	key   record.Key
	title string
	text  string
}

// Compare diffs the normalized text of two records, writes the rendered
// document and records the comparison in the history.
func Compare(ctx context.Context, env *Env, input CompareInput) (*CompareOutput, error) {
	keyA, err := parseKey("key_a", input.KeyA)
	if err != nil {
		return nil, err
	}
	keyB, err := parseKey("key_b", input.KeyB)
	if err != nil {
		return nil, err
	}
	opts, err := env.DiffOptions(input.Mode)
	if err != nil {
		return nil, err
	}
	outPath, err := env.resolveOutputPath(input.OutputPath)
	if err != nil {
		return nil, err
	}

	// both sides resolve before anything is diffed or written
	a, err := resolveText(ctx, env, keyA)
	if err != nil {
		return nil, err
	}
	b, err := resolveText(ctx, env, keyB)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.NewCancelled("compare")
	}

	result := textdiff.Diff(a.text, b.text, opts)
	header := textdiff.Header{
		Title:       fmt.Sprintf("%s vs %s", keyA, keyB),
		SourceLabel: a.label(),
		TargetLabel: b.label(),
	}
	err = writeFileAtomic(outPath, func(w io.Writer) error {
		return textdiff.WriteDocument(w, result, header)
	})
	if err != nil {
		return nil, err
	}

	stats := result.Stats()
	id, err := newID()
	if err != nil {
		return nil, err
	}
	c := &record.Comparison{
		ID:         id,
		KeyA:       keyA.String(),
		KeyB:       keyB.String(),
		Mode:       string(result.Mode),
		OutputPath: outPath,
		Inserts:    stats.Inserts,
		Deletes:    stats.Deletes,
		CreatedAt:  time.Now().Unix(),
	}
	if err := db.InsertComparison(ctx, env.DB, c); err != nil {
		return nil, err
	}

	logging.Info("comparison written",
		"id", id,
		"key_a", c.KeyA,
		"key_b", c.KeyB,
		"mode", c.Mode,
		"inserts", stats.Inserts,
		"deletes", stats.Deletes,
		"elapsed_ms", result.Elapsed.Milliseconds(),
	)

	return &CompareOutput{
		ID:         id,
		KeyA:       c.KeyA,
		KeyB:       c.KeyB,
		OutputPath: outPath,
		Mode:       result.Mode,
		Stats:      stats,
		Identical:  result.Identical(),
		Opened:     reveal(env, input.Open, outPath),
	}, nil
}

// resolveText loads the normalized text attached to key. A missing record or
// a NULL reference is ATTACHMENT_MISSING; a removed blob is CONTENT_GONE.
func resolveText(ctx context.Context, env *Env, key record.Key) (*comparedText, error) {
	rec, err := db.GetRecord(ctx, env.DB, key)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, errors.NewAttachmentMissing(key.String(), string(record.KindText))
		}
		return nil, err
	}
	ref := rec.Attachment(record.KindText)
	if ref == nil || *ref == "" {
		return nil, errors.NewAttachmentMissing(key.String(), string(record.KindText))
	}

	data, err := env.Store.Resolve(store.ContentRef(*ref))
	if err != nil {
		if errors.Is(err, errors.ErrContentGone) {
			return nil, errors.NewContentGone(key.String(), *ref)
		}
		return nil, err
	}

	title := ""
	if rec.Title != nil {
		title = *rec.Title
	}
	return &comparedText{key: key, title: title, text: strings.ToValidUTF8(string(data), "\uFFFD")}, nil
}

func (c *comparedText) label() string {
	if c.title == "" {
		return c.key.String()
	}
	return c.key.String() + " (" + c.title + ")"
}

// reveal hands path to the viewer when requested. Viewer failures are logged,
// never returned: the document is already written.
func reveal(env *Env, open bool, path string) bool {
	if !open || env.Viewer == nil {
		return false
	}
	if err := env.Viewer.Open(path); err != nil {
		logging.Warn("viewer failed", "path", path, "error", err.Error())
		return false
	}
	return true
}

// idEntropy keeps ids strictly increasing within a millisecond, so history
// ordered by id matches insertion order.
var (
	idMu      sync.Mutex
	idEntropy = ulid.Monotonic(rand.Reader, 0)
)

func newID() (string, error) {
	idMu.Lock()
	defer idMu.Unlock()
	id, err := ulid.New(ulid.Timestamp(time.Now()), idEntropy)
	if err != nil {
		return "", errors.NewInternal(err)
	}
	return id.String(), nil
}

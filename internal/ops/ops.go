package ops

import (
	"database/sql"
	"fmt"

	"github.com/hpungsan/specdiff/internal/config"
	"github.com/hpungsan/specdiff/internal/convert"
	"github.com/hpungsan/specdiff/internal/errors"
	"github.com/hpungsan/specdiff/internal/record"
	"github.com/hpungsan/specdiff/internal/store"
	"github.com/hpungsan/specdiff/internal/textdiff"
	"github.com/hpungsan/specdiff/internal/viewer"
)

// Pagination limits
const (
	DefaultListLimit    = 20
	MaxListLimit        = 100
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 200
)

// DefaultOutputName is the file written under the output dir when no output path is given.
const DefaultOutputName = "diff.html"

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

// Env carries the shared handles every operation needs.
type Env struct {
	DB         *sql.DB
	Config     *config.Config
	Store      *store.Store
	Normalizer *convert.Normalizer
	Viewer     viewer.Viewer
	// BaseDir anchors relative config directories (~/.specdiff by default).
	BaseDir string
}

// NewEnv builds an Env from config: the content store under the configured
// content dir, the default normalizer and the system viewer.
func NewEnv(database *sql.DB, cfg *config.Config, baseDir string) (*Env, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	algo, err := store.ParseHashAlgorithm(cfg.HashAlgorithm)
	if err != nil {
		return nil, err
	}
	st, err := store.New(cfg.ResolveContentDir(baseDir), algo)
	if err != nil {
		return nil, err
	}
	return &Env{
		DB:         database,
		Config:     cfg,
		Store:      st,
		Normalizer: convert.NewDefaultNormalizer(cfg),
		Viewer:     viewer.System{},
		BaseDir:    baseDir,
	}, nil
}

// OutputDir returns the directory for generated documents.
func (e *Env) OutputDir() string {
	return e.Config.ResolveOutputDir(e.BaseDir)
}

// DiffOptions resolves diff options from config, overridden by a non-empty mode.
func (e *Env) DiffOptions(mode string) (textdiff.Options, error) {
	opts := textdiff.DefaultOptions()
	if e.Config != nil {
		if e.Config.DiffTimeoutSeconds != 0 {
			opts.Timeout = secondsToDuration(e.Config.DiffTimeoutSeconds)
		}
		if e.Config.DiffEditCost > 0 {
			opts.EditCost = e.Config.DiffEditCost
		}
		if mode == "" {
			mode = e.Config.DiffMode
		}
	}
	m, err := textdiff.ParseMode(mode)
	if err != nil {
		return opts, err
	}
	opts.Mode = m
	return opts, nil
}

// parseKey parses a key, labelling errors with the input field name.
func parseKey(field, text string) (record.Key, error) {
	if text == "" {
		return nil, errors.NewInvalidRequest(field + " is required")
	}
	key, err := record.ParseKey(text)
	if err != nil {
		if se, ok := errors.As(err); ok {
			se.Message = fmt.Sprintf("%s: %s", field, se.Message)
			return nil, se
		}
		return nil, err
	}
	return key, nil
}

func clampLimit(limit, def, maxLimit int) int {
	if limit <= 0 {
		return def
	}
	return min(limit, maxLimit)
}

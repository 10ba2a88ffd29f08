package ops

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hpungsan/specdiff/internal/db"
	"github.com/hpungsan/specdiff/internal/errors"
	"github.com/hpungsan/specdiff/internal/logging"
	"github.com/hpungsan/specdiff/internal/record"
	"github.com/hpungsan/specdiff/internal/store"
)

// AttachInput contains parameters for the Attach operation.
type AttachInput struct {
	Key  string
	Kind string // kind name, column name, or doc/txt/pdf
	Path string
}

// AttachOutput contains the result of the Attach operation.
type AttachOutput struct {
	Key     string      `json:"key"`
	Kind    record.Kind `json:"kind"`
	Ref     string      `json:"ref"`
	Path    string      `json:"path"`
	Changed bool        `json:"changed"`
}

// Attach copies a file into the content store and points the record's
// attachment of the given kind at it.
func Attach(ctx context.Context, env *Env, input AttachInput) (*AttachOutput, error) {
	key, err := parseKey("key", input.Key)
	if err != nil {
		return nil, err
	}
	kind, err := record.ParseKind(input.Kind)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Path) == "" {
		return nil, errors.NewInvalidRequest("path is required")
	}
	if !kind.Allows(input.Path) {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("%s attachments must have extension %s, got %q",
			kind, strings.Join(kind.Extensions(), " or "), filepath.Ext(input.Path)))
	}

	// record must exist before anything is copied into the store
	prev, err := db.GetAttachment(ctx, env.DB, key, kind)
	if err != nil {
		return nil, err
	}

	ref, err := env.Store.Ingest(input.Path)
	if err != nil {
		return nil, err
	}

	refStr := ref.String()
	if err := db.SetAttachment(ctx, env.DB, key, kind, &refStr); err != nil {
		return nil, err
	}

	changed := prev == nil || *prev != refStr
	logging.Info("attachment set", "key", key.String(), "kind", string(kind), "ref", refStr, "changed", changed)
	return &AttachOutput{
		Key:     key.String(),
		Kind:    kind,
		Ref:     refStr,
		Path:    env.Store.Path(ref),
		Changed: changed,
	}, nil
}

// OpenInput contains parameters for the Open operation.
type OpenInput struct {
	Key  string
	Kind string
}

// OpenOutput contains the result of the Open operation.
type OpenOutput struct {
	Key  string      `json:"key"`
	Kind record.Kind `json:"kind"`
	Path string      `json:"path"`
}

// Open reveals a record's attachment with the viewer.
func Open(ctx context.Context, env *Env, input OpenInput) (*OpenOutput, error) {
	key, err := parseKey("key", input.Key)
	if err != nil {
		return nil, err
	}
	kind, err := record.ParseKind(input.Kind)
	if err != nil {
		return nil, err
	}

	ref, err := attachedRef(ctx, env, key, kind, false)
	if err != nil {
		return nil, err
	}

	path := env.Store.Path(ref)
	if err := env.Viewer.Open(path); err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	return &OpenOutput{Key: key.String(), Kind: kind, Path: path}, nil
}

// attachedRef resolves key's attachment of kind to a stored blob that exists.
// With missingAsAttachment, an unknown record is reported as ATTACHMENT_MISSING
// rather than NOT_FOUND.
func attachedRef(ctx context.Context, env *Env, key record.Key, kind record.Kind, missingAsAttachment bool) (store.ContentRef, error) {
	ref, err := db.GetAttachment(ctx, env.DB, key, kind)
	if err != nil {
		if missingAsAttachment && errors.Is(err, errors.ErrNotFound) {
			return "", errors.NewAttachmentMissing(key.String(), string(kind))
		}
		return "", err
	}
	if ref == nil || *ref == "" {
		return "", errors.NewAttachmentMissing(key.String(), string(kind))
	}
	cr := store.ContentRef(*ref)
	if !env.Store.Exists(cr) {
		return "", errors.NewContentGone(key.String(), *ref)
	}
	return cr, nil
}

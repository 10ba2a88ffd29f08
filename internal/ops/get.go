package ops

import (
	"context"

	"github.com/hpungsan/specdiff/internal/db"
	"github.com/hpungsan/specdiff/internal/record"
	"github.com/hpungsan/specdiff/internal/store"
)

// GetInput contains parameters for the Get operation.
type GetInput struct {
	Key string
}

// AttachmentInfo describes one attachment of a record.
type AttachmentInfo struct {
	Kind    record.Kind `json:"kind"`
	Ref     string      `json:"ref"`
	Path    string      `json:"path"`
	Present bool        `json:"present"` // false when the blob was removed from the content dir
}

// GetOutput contains the result of the Get operation.
type GetOutput struct {
	record.Record
	Key         string           `json:"key"`
	Attachments []AttachmentInfo `json:"attachments"`
}

// Get retrieves a record and the state of its attachments.
func Get(ctx context.Context, env *Env, input GetInput) (*GetOutput, error) {
	key, err := parseKey("key", input.Key)
	if err != nil {
		return nil, err
	}

	rec, err := db.GetRecord(ctx, env.DB, key)
	if err != nil {
		return nil, err
	}

	return &GetOutput{
		Record:      *rec,
		Key:         key.String(),
		Attachments: attachmentInfo(env.Store, rec),
	}, nil
}

func attachmentInfo(st *store.Store, rec *record.Record) []AttachmentInfo {
	infos := make([]AttachmentInfo, 0, len(record.Kinds))
	for _, kind := range record.Kinds {
		ref := rec.Attachment(kind)
		if ref == nil {
			continue
		}
		cr := store.ContentRef(*ref)
		infos = append(infos, AttachmentInfo{
			Kind:    kind,
			Ref:     *ref,
			Path:    st.Path(cr),
			Present: st.Exists(cr),
		})
	}
	return infos
}

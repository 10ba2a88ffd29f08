package ops

import (
	"context"
	"os"
	"path/filepath"

	"github.com/hpungsan/specdiff/internal/db"
	"github.com/hpungsan/specdiff/internal/errors"
	"github.com/hpungsan/specdiff/internal/logging"
	"github.com/hpungsan/specdiff/internal/record"
)

// NormalizeInput contains parameters for the Normalize operation.
type NormalizeInput struct {
	Key string
}

// NormalizeOutput contains the result of the Normalize operation.
type NormalizeOutput struct {
	Key    string `json:"key"`
	DocRef string `json:"doc_ref"`
	TxtRef string `json:"txt_ref"`
}

// Normalize converts a record's original document to text, stores the text and
// attaches it as the record's normalized text.
func Normalize(ctx context.Context, env *Env, input NormalizeInput) (*NormalizeOutput, error) {
	key, err := parseKey("key", input.Key)
	if err != nil {
		return nil, err
	}
	return normalizeKey(ctx, env, key)
}

func normalizeKey(ctx context.Context, env *Env, key record.Key) (*NormalizeOutput, error) {
	docRef, err := attachedRef(ctx, env, key, record.KindOriginal, false)
	if err != nil {
		return nil, err
	}

	scratch, err := os.MkdirTemp("", "specdiff-normalize-*")
	if err != nil {
		return nil, errors.NewIO("mkdir", os.TempDir(), err)
	}
	defer os.RemoveAll(scratch)

	txtPath := filepath.Join(scratch, "~"+SanitizeForFilename(key.String())+".txt")
	if err := env.Normalizer.Normalize(ctx, env.Store.Path(docRef), txtPath); err != nil {
		return nil, err
	}

	txtRef, err := env.Store.Ingest(txtPath)
	if err != nil {
		return nil, err
	}
	refStr := txtRef.String()
	if err := db.SetAttachment(ctx, env.DB, key, record.KindText, &refStr); err != nil {
		return nil, err
	}

	logging.Info("record normalized", "key", key.String(), "doc_ref", docRef.String(), "txt_ref", refStr)
	return &NormalizeOutput{Key: key.String(), DocRef: docRef.String(), TxtRef: refStr}, nil
}

// BatchNormalizeInput contains parameters for the BatchNormalize operation.
type BatchNormalizeInput struct {
	// Keys to normalize. Empty means every record with an original document.
	Keys []string
}

// BatchItem is the outcome for one key of a batch.
type BatchItem struct {
	Key    string          `json:"key"`
	TxtRef string          `json:"txt_ref,omitempty"`
	Error  *BatchItemError `json:"error,omitempty"`
}

// BatchItemError describes why one item of a batch failed.
type BatchItemError struct {
	Code    errors.ErrorCode `json:"code"`
	Message string           `json:"message"`
}

// BatchNormalizeOutput contains the result of the BatchNormalize operation.
type BatchNormalizeOutput struct {
	Items     []BatchItem `json:"items"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
}

// BatchNormalize runs Normalize for each key. A failing key is reported in its
// item and the batch moves on; only cancellation stops it.
func BatchNormalize(ctx context.Context, env *Env, input BatchNormalizeInput) (*BatchNormalizeOutput, error) {
	texts := input.Keys
	if len(texts) == 0 {
		keys, err := db.ListKeysWithAttachment(ctx, env.DB, record.KindOriginal)
		if err != nil {
			return nil, err
		}
		for _, k := range keys {
			texts = append(texts, k.String())
		}
	}

	out := &BatchNormalizeOutput{Items: make([]BatchItem, 0, len(texts))}
	for _, text := range texts {
		select {
		case <-ctx.Done():
			return nil, errors.NewCancelled("batch normalize")
		default:
		}

		item := BatchItem{Key: text}
		res, err := Normalize(ctx, env, NormalizeInput{Key: text})
		if err != nil {
			if ctx.Err() != nil {
				return nil, errors.NewCancelled("batch normalize")
			}
			logging.ItemFailed("normalize", text, err)
			item.Error = toBatchItemError(err)
			out.Failed++
		} else {
			item.Key = res.Key
			item.TxtRef = res.TxtRef
			out.Succeeded++
		}
		out.Items = append(out.Items, item)
	}

	logging.Info("batch normalize finished", "succeeded", out.Succeeded, "failed", out.Failed)
	return out, nil
}

func toBatchItemError(err error) *BatchItemError {
	if se, ok := errors.As(err); ok {
		return &BatchItemError{Code: se.Code, Message: se.Message}
	}
	return &BatchItemError{Code: errors.ErrInternal, Message: err.Error()}
}

package ops

import (
	"context"

	"github.com/hpungsan/specdiff/internal/db"
	"github.com/hpungsan/specdiff/internal/errors"
	"github.com/hpungsan/specdiff/internal/logging"
)

// CleanInput contains parameters for the Clean operation.
type CleanInput struct {
	DryRun bool
}

// CleanOutput contains the result of the Clean operation.
type CleanOutput struct {
	Unreferenced []string `json:"unreferenced"`
	Removed      int      `json:"removed"`
	Kept         int      `json:"kept"`
	DryRun       bool     `json:"dry_run"`
}

// Clean finds stored blobs that no record references and, unless DryRun,
// removes them.
func Clean(ctx context.Context, env *Env, input CleanInput) (*CleanOutput, error) {
	referenced, err := db.ReferencedRefs(ctx, env.DB)
	if err != nil {
		return nil, err
	}
	refs, err := env.Store.List()
	if err != nil {
		return nil, err
	}

	out := &CleanOutput{Unreferenced: []string{}, DryRun: input.DryRun}
	for _, ref := range refs {
		if referenced[ref.String()] {
			out.Kept++
			continue
		}
		out.Unreferenced = append(out.Unreferenced, ref.String())
		if input.DryRun {
			continue
		}

		select {
		case <-ctx.Done():
			return nil, errors.NewCancelled("clean")
		default:
		}

		if err := env.Store.Remove(ref); err != nil {
			logging.ItemFailed("clean", ref.String(), err)
			continue
		}
		out.Removed++
	}

	logging.Info("content store cleaned", "unreferenced", len(out.Unreferenced), "removed", out.Removed, "dry_run", input.DryRun)
	return out, nil
}

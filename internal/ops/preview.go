package ops

import (
	"context"

	"github.com/hpungsan/specdiff/internal/errors"
	"github.com/hpungsan/specdiff/internal/textdiff"
)

// PreviewInput contains parameters for the Preview operation.
type PreviewInput struct {
	KeyA string
	KeyB string
	Mode string
}

// PreviewOutput contains the in-memory result of the Preview operation.
type PreviewOutput struct {
	KeyA   string          `json:"key_a"`
	KeyB   string          `json:"key_b"`
	LabelA string          `json:"label_a"`
	LabelB string          `json:"label_b"`
	Result textdiff.Result `json:"result"`
	Stats  textdiff.Stats  `json:"stats"`
}

// Preview diffs two records like Compare but writes nothing and records no history.
func Preview(ctx context.Context, env *Env, input PreviewInput) (*PreviewOutput, error) {
	keyA, err := parseKey("a", input.KeyA)
	if err != nil {
		return nil, err
	}
	keyB, err := parseKey("b", input.KeyB)
	if err != nil {
		return nil, err
	}
	opts, err := env.DiffOptions(input.Mode)
	if err != nil {
		return nil, err
	}

	a, err := resolveText(ctx, env, keyA)
	if err != nil {
		return nil, err
	}
	b, err := resolveText(ctx, env, keyB)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.NewCancelled("preview")
	}

	result := textdiff.Diff(a.text, b.text, opts)
	return &PreviewOutput{
		KeyA:   keyA.String(),
		KeyB:   keyB.String(),
		LabelA: a.label(),
		LabelB: b.label(),
		Result: result,
		Stats:  result.Stats(),
	}, nil
}

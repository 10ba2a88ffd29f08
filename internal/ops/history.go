package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/specdiff/internal/db"
	"github.com/hpungsan/specdiff/internal/record"
)

// HistoryInput contains parameters for the History operation.
type HistoryInput struct {
	Limit int // default: 20, max: 200
}

// HistoryOutput contains the result of the History operation.
type HistoryOutput struct {
	Items []record.Comparison `json:"items"`
}

// History returns recent comparisons, newest first.
func History(ctx context.Context, database *sql.DB, input HistoryInput) (*HistoryOutput, error) {
	items, err := db.ListComparisons(ctx, database, clampLimit(input.Limit, DefaultHistoryLimit, MaxHistoryLimit))
	if err != nil {
		return nil, err
	}
	return &HistoryOutput{Items: items}, nil
}

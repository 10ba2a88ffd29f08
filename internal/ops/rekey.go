package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/specdiff/internal/db"
	"github.com/hpungsan/specdiff/internal/logging"
)

// RekeyInput contains parameters for the Rekey operation.
type RekeyInput struct {
	OldKey string
	NewKey string
}

// RekeyOutput contains the result of the Rekey operation.
type RekeyOutput struct {
	OldKey string `json:"old_key"`
	NewKey string `json:"new_key"`
}

// Rekey moves a record to a new key. Attachments and metadata move with it.
func Rekey(ctx context.Context, database *sql.DB, input RekeyInput) (*RekeyOutput, error) {
	oldKey, err := parseKey("old_key", input.OldKey)
	if err != nil {
		return nil, err
	}
	newKey, err := parseKey("new_key", input.NewKey)
	if err != nil {
		return nil, err
	}

	if err := db.Rekey(ctx, database, oldKey, newKey); err != nil {
		return nil, err
	}

	logging.Info("record rekeyed", "old_key", oldKey.String(), "new_key", newKey.String())
	return &RekeyOutput{OldKey: oldKey.String(), NewKey: newKey.String()}, nil
}

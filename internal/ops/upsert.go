package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/specdiff/internal/db"
	"github.com/hpungsan/specdiff/internal/errors"
	"github.com/hpungsan/specdiff/internal/logging"
	"github.com/hpungsan/specdiff/internal/record"
)

// UpsertInput contains parameters for the Upsert operation.
type UpsertInput struct {
	SpecNo   string
	Revision string
	Title    *string // nil leaves the stored value unchanged
	Notes    *string // nil leaves the stored value unchanged
}

// UpsertOutput contains the result of the Upsert operation.
type UpsertOutput struct {
	Key      string        `json:"key"`
	Inserted bool          `json:"inserted"`
	Record   record.Record `json:"record"`
}

// UpsertRow builds an UpsertInput from a positional row in schema column order
// (spec_no, revision, title, notes). A row of the wrong width is MISMATCH.
func UpsertRow(values []*string) (UpsertInput, error) {
	rec, err := record.Specs.FromRow(values)
	if err != nil {
		return UpsertInput{}, err
	}
	return UpsertInput{SpecNo: rec.SpecNo, Revision: rec.Revision, Title: rec.Title, Notes: rec.Notes}, nil
}

// Upsert updates the non-null fields of an existing record, or inserts a new one.
func Upsert(ctx context.Context, database *sql.DB, input UpsertInput) (*UpsertOutput, error) {
	rec := &record.Record{
		SpecNo:   record.NormalizeField(input.SpecNo),
		Revision: record.NormalizeField(input.Revision),
		Title:    input.Title,
		Notes:    input.Notes,
	}
	if rec.SpecNo == "" {
		return nil, errors.NewInvalidRequest("spec_no is required")
	}
	if rec.Revision == "" {
		return nil, errors.NewInvalidRequest("revision is required")
	}
	if err := record.Specs.CheckKey(rec.Key()); err != nil {
		return nil, err
	}

	inserted, err := db.Upsert(ctx, database, rec)
	if err != nil {
		return nil, err
	}

	stored, err := db.GetRecord(ctx, database, rec.Key())
	if err != nil {
		return nil, err
	}

	logging.Info("record upserted", "key", rec.Key().String(), "inserted", inserted)
	return &UpsertOutput{
		Key:      rec.Key().String(),
		Inserted: inserted,
		Record:   *stored,
	}, nil
}

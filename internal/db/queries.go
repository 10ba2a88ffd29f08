package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/hpungsan/specdiff/internal/errors"
	"github.com/hpungsan/specdiff/internal/record"
)

const recordColumns = `spec_no, revision, title, notes, doc_file, txt_file, pdf_file, created_at, updated_at`

// GetRecord retrieves a record by key.
func GetRecord(ctx context.Context, db *sql.DB, key record.Key) (*record.Record, error) {
	if err := record.Specs.CheckKey(key); err != nil {
		return nil, err
	}

	query := `SELECT ` + recordColumns + ` FROM specs WHERE ` + record.Specs.WhereKey()
	row := db.QueryRowContext(ctx, query, key.Args()...)
	r, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(key.String())
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return r, nil
}

// Exists reports whether a record with the given key exists.
func Exists(ctx context.Context, db *sql.DB, key record.Key) (bool, error) {
	if err := record.Specs.CheckKey(key); err != nil {
		return false, err
	}

	query := `SELECT 1 FROM specs WHERE ` + record.Specs.WhereKey() + ` LIMIT 1`
	var exists int
	err := db.QueryRowContext(ctx, query, key.Args()...).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, errors.NewInternal(err)
	}
	return true, nil
}

// Upsert updates the non-key, non-nil fields of an existing record, or inserts
// a new one. Attachment columns are never touched. Returns true if inserted.
func Upsert(ctx context.Context, db *sql.DB, r *record.Record) (bool, error) {
	key := r.Key()
	exists, err := Exists(ctx, db, key)
	if err != nil {
		return false, err
	}

	now := time.Now().Unix()

	if !exists {
		query := `
			INSERT INTO specs (spec_no, revision, title, notes, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`
		_, err := db.ExecContext(ctx, query,
			r.SpecNo, r.Revision, toNullString(r.Title), toNullString(r.Notes), now, now,
		)
		if err != nil {
			return false, errors.NewInternal(err)
		}
		r.CreatedAt = now
		r.UpdatedAt = now
		return true, nil
	}

	sets := []string{"updated_at = ?"}
	args := []any{now}
	if r.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *r.Title)
	}
	if r.Notes != nil {
		sets = append(sets, "notes = ?")
		args = append(args, *r.Notes)
	}
	args = append(args, key.Args()...)

	query := `UPDATE specs SET ` + strings.Join(sets, ", ") + ` WHERE ` + record.Specs.WhereKey()
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return false, errors.NewInternal(err)
	}
	r.UpdatedAt = now
	return false, nil
}

// Rekey changes the key of an existing record.
func Rekey(ctx context.Context, db *sql.DB, oldKey, newKey record.Key) error {
	if len(oldKey) != len(newKey) {
		return errors.NewMismatch("new key", len(oldKey), len(newKey))
	}
	if err := record.Specs.CheckKey(oldKey); err != nil {
		return err
	}
	if err := record.Specs.CheckKey(newKey); err != nil {
		return err
	}

	keys := record.Specs.KeyFields()
	sets := make([]string, len(keys))
	for i, k := range keys {
		sets[i] = k + " = ?"
	}
	sets = append(sets, "updated_at = ?")

	args := append(newKey.Args(), time.Now().Unix())
	args = append(args, oldKey.Args()...)

	query := `UPDATE specs SET ` + strings.Join(sets, ", ") + ` WHERE ` + record.Specs.WhereKey()
	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueConstraintError(err) {
			return errors.NewInvalidRequest(fmt.Sprintf("record %s already exists", newKey))
		}
		return errors.NewInternal(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound(oldKey.String())
	}
	return nil
}

// GetAttachment returns the content reference stored for kind, or nil if the column is NULL.
// A missing record is NOT_FOUND.
func GetAttachment(ctx context.Context, db *sql.DB, key record.Key, kind record.Kind) (*string, error) {
	if err := record.Specs.CheckKey(key); err != nil {
		return nil, err
	}

	query := `SELECT ` + kind.Column() + ` FROM specs WHERE ` + record.Specs.WhereKey()
	var ref sql.NullString
	err := db.QueryRowContext(ctx, query, key.Args()...).Scan(&ref)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(key.String())
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return fromNullString(ref), nil
}

// SetAttachment stores ref in the column for kind. A nil ref clears it.
func SetAttachment(ctx context.Context, db *sql.DB, key record.Key, kind record.Kind, ref *string) error {
	if err := record.Specs.CheckKey(key); err != nil {
		return err
	}

	query := `UPDATE specs SET ` + kind.Column() + ` = ?, updated_at = ? WHERE ` + record.Specs.WhereKey()
	args := append([]any{toNullString(ref), time.Now().Unix()}, key.Args()...)
	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return errors.NewInternal(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound(key.String())
	}
	return nil
}

// ListRecords returns records ordered by key, plus the total count.
func ListRecords(ctx context.Context, db *sql.DB, limit, offset int) ([]record.Record, int, error) {
	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM specs`).Scan(&total); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	query := `SELECT ` + recordColumns + ` FROM specs ORDER BY spec_no, revision LIMIT ? OFFSET ?`
	rows, err := db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	defer rows.Close()

	items := make([]record.Record, 0)
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, 0, errors.NewInternal(err)
		}
		items = append(items, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	return items, total, nil
}

// ListKeysWithAttachment returns the keys of records whose kind column is set, ordered by key.
func ListKeysWithAttachment(ctx context.Context, db *sql.DB, kind record.Kind) ([]record.Key, error) {
	query := `SELECT spec_no, revision FROM specs WHERE ` + kind.Column() + ` IS NOT NULL ORDER BY spec_no, revision`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	keys := make([]record.Key, 0)
	for rows.Next() {
		var specNo, revision string
		if err := rows.Scan(&specNo, &revision); err != nil {
			return nil, errors.NewInternal(err)
		}
		keys = append(keys, record.Key{specNo, revision})
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return keys, nil
}

// ReferencedRefs returns the set of content references held by any record.
func ReferencedRefs(ctx context.Context, db *sql.DB) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, `SELECT doc_file, txt_file, pdf_file FROM specs`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	refs := make(map[string]bool)
	for rows.Next() {
		var doc, txt, pdf sql.NullString
		if err := rows.Scan(&doc, &txt, &pdf); err != nil {
			return nil, errors.NewInternal(err)
		}
		for _, ns := range []sql.NullString{doc, txt, pdf} {
			if ns.Valid && ns.String != "" {
				refs[ns.String] = true
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return refs, nil
}

// InsertComparison records a rendered comparison in the history table.
func InsertComparison(ctx context.Context, db *sql.DB, c *record.Comparison) error {
	query := `
		INSERT INTO comparisons (id, key_a, key_b, mode, output_path, inserts, deletes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := db.ExecContext(ctx, query,
		c.ID, c.KeyA, c.KeyB, c.Mode, c.OutputPath, c.Inserts, c.Deletes, c.CreatedAt,
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// ListComparisons returns the most recent comparisons first.
func ListComparisons(ctx context.Context, db *sql.DB, limit int) ([]record.Comparison, error) {
	query := `
		SELECT id, key_a, key_b, mode, output_path, inserts, deletes, created_at
		FROM comparisons
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`
	rows, err := db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	items := make([]record.Comparison, 0)
	for rows.Next() {
		var c record.Comparison
		if err := rows.Scan(&c.ID, &c.KeyA, &c.KeyB, &c.Mode, &c.OutputPath, &c.Inserts, &c.Deletes, &c.CreatedAt); err != nil {
			return nil, errors.NewInternal(err)
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return items, nil
}

// isUniqueConstraintError checks if the error is a SQLite UNIQUE/PRIMARY KEY constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanRecord scans a single row into a Record struct.
func scanRecord(row scanner) (*record.Record, error) {
	var (
		r                      record.Record
		title, notes           sql.NullString
		docFile, txtFile, pdfF sql.NullString
	)

	err := row.Scan(
		&r.SpecNo, &r.Revision, &title, &notes,
		&docFile, &txtFile, &pdfF, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.Title = fromNullString(title)
	r.Notes = fromNullString(notes)
	r.DocFile = fromNullString(docFile)
	r.TxtFile = fromNullString(txtFile)
	r.PdfFile = fromNullString(pdfF)

	return &r, nil
}

// toNullString converts a *string to sql.NullString.
func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// fromNullString converts a sql.NullString to *string.
func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

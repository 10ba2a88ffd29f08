package record

import (
	"fmt"
	"strings"

	"github.com/hpungsan/specdiff/internal/errors"
)

// Field describes one column of a table.
type Field struct {
	Name       string
	Key        bool // part of the composite primary key
	Nullable   bool
	Attachment bool // holds a content reference; written only through attachment operations
}

// Schema is an explicit table descriptor. Row and key shapes are checked against it.
type Schema struct {
	Table  string
	Fields []Field
}

// Specs describes the specs table, in column order.
var Specs = Schema{
	Table: "specs",
	Fields: []Field{
		{Name: "spec_no", Key: true},
		{Name: "revision", Key: true},
		{Name: "title", Nullable: true},
		{Name: "notes", Nullable: true},
		{Name: "doc_file", Nullable: true, Attachment: true},
		{Name: "txt_file", Nullable: true, Attachment: true},
		{Name: "pdf_file", Nullable: true, Attachment: true},
	},
}

// KeyFields returns the names of the key columns in order.
func (s Schema) KeyFields() []string {
	var names []string
	for _, f := range s.Fields {
		if f.Key {
			names = append(names, f.Name)
		}
	}
	return names
}

// RowFields returns the columns accepted by an upsert row, in order.
// Attachment columns are excluded.
func (s Schema) RowFields() []string {
	var names []string
	for _, f := range s.Fields {
		if !f.Attachment {
			names = append(names, f.Name)
		}
	}
	return names
}

// Field returns the descriptor for name.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// WhereKey returns "a = ? AND b = ?" for the key columns.
func (s Schema) WhereKey() string {
	keys := s.KeyFields()
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + " = ?"
	}
	return strings.Join(parts, " AND ")
}

// CheckKey validates a key against the schema: correct width, no empty fields,
// and no field containing KeySeparator, so the key's text form parses back.
func (s Schema) CheckKey(key Key) error {
	want := len(s.KeyFields())
	if len(key) != want {
		return errors.NewMismatch("key", want, len(key))
	}
	for i, v := range key {
		if strings.TrimSpace(v) == "" {
			return errors.NewInvalidRequest(s.KeyFields()[i] + " must not be empty")
		}
		if strings.Contains(v, KeySeparator) {
			return errors.NewInvalidRequest(fmt.Sprintf("%s must not contain %q", s.KeyFields()[i], KeySeparator))
		}
	}
	return nil
}

// FromRow maps a positional row (RowFields order) onto a Record.
// A nil value leaves the column unchanged on update.
func (s Schema) FromRow(values []*string) (*Record, error) {
	fields := s.RowFields()
	if len(values) != len(fields) {
		return nil, errors.NewMismatch("row", len(fields), len(values))
	}

	rec := &Record{}
	for i, name := range fields {
		f, _ := s.Field(name)
		v := values[i]
		if v == nil && !f.Nullable {
			return nil, errors.NewInvalidRequest(name + " must not be null")
		}
		switch name {
		case "spec_no":
			rec.SpecNo = NormalizeField(*v)
		case "revision":
			rec.Revision = NormalizeField(*v)
		case "title":
			rec.Title = v
		case "notes":
			rec.Notes = v
		}
	}
	if err := s.CheckKey(rec.Key()); err != nil {
		return nil, err
	}
	return rec, nil
}

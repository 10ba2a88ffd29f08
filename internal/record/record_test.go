package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/specdiff/internal/errors"
)

func strPtr(s string) *string { return &s }

func TestParseKey(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Key
		wantErr errors.ErrorCode
	}{
		{name: "simple", input: "TS-101:B", want: Key{"TS-101", "B"}},
		{name: "trims and collapses", input: "  TS  101 : B ", want: Key{"TS 101", "B"}},
		{name: "case preserved", input: "ts-101:b", want: Key{"ts-101", "b"}},
		{name: "too few fields", input: "TS-101", wantErr: errors.ErrMismatch},
		{name: "too many fields", input: "TS-101:B:C", wantErr: errors.ErrMismatch},
		{name: "empty field", input: "TS-101: ", wantErr: errors.ErrInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseKey(tt.input)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.String(), got.String())
		})
	}
}

func TestSchema_KeyAndRowFields(t *testing.T) {
	assert.Equal(t, []string{"spec_no", "revision"}, Specs.KeyFields())
	assert.Equal(t, []string{"spec_no", "revision", "title", "notes"}, Specs.RowFields())
	assert.Equal(t, "spec_no = ? AND revision = ?", Specs.WhereKey())
}

func TestSchema_CheckKey(t *testing.T) {
	assert.NoError(t, Specs.CheckKey(Key{"TS-1", "A"}))
	assert.True(t, errors.Is(Specs.CheckKey(Key{"TS-1"}), errors.ErrMismatch))
	assert.True(t, errors.Is(Specs.CheckKey(Key{"TS-1", " "}), errors.ErrInvalidRequest))
	assert.True(t, errors.Is(Specs.CheckKey(Key{"TS:1", "A"}), errors.ErrInvalidRequest))
	assert.True(t, errors.Is(Specs.CheckKey(Key{"TS-1", "A:1"}), errors.ErrInvalidRequest))
}

func TestSchema_FromRow(t *testing.T) {
	t.Run("full row", func(t *testing.T) {
		rec, err := Specs.FromRow([]*string{strPtr("TS-1"), strPtr("A"), strPtr("Title"), nil})
		require.NoError(t, err)
		assert.Equal(t, Key{"TS-1", "A"}, rec.Key())
		require.NotNil(t, rec.Title)
		assert.Equal(t, "Title", *rec.Title)
		assert.Nil(t, rec.Notes)
	})

	t.Run("wrong width is a mismatch", func(t *testing.T) {
		_, err := Specs.FromRow([]*string{strPtr("TS-1"), strPtr("A")})
		assert.True(t, errors.Is(err, errors.ErrMismatch))
	})

	t.Run("null key field", func(t *testing.T) {
		_, err := Specs.FromRow([]*string{nil, strPtr("A"), nil, nil})
		assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
	})
}

func TestParseKind(t *testing.T) {
	for _, in := range []string{"doc", "doc_file", "original-document", " DOC "} {
		k, err := ParseKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, KindOriginal, k)
	}
	k, err := ParseKind("txt")
	require.NoError(t, err)
	assert.Equal(t, KindText, k)
	assert.Equal(t, "txt_file", k.Column())

	_, err = ParseKind("xls")
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestKind_Allows(t *testing.T) {
	assert.True(t, KindOriginal.Allows("/a/b/spec.DOCX"))
	assert.True(t, KindOriginal.Allows("spec.doc"))
	assert.False(t, KindOriginal.Allows("spec.txt"))
	assert.True(t, KindText.Allows("x.txt"))
	assert.True(t, KindSupplement.Allows("x.pdf"))
	assert.False(t, KindSupplement.Allows("x"))
}

func TestRecord_Attachments(t *testing.T) {
	rec := &Record{SpecNo: "TS-1", Revision: "A"}
	assert.Empty(t, rec.Refs())

	rec.SetAttachment(KindText, strPtr("abc.txt"))
	rec.SetAttachment(KindOriginal, strPtr("def.docx"))

	require.NotNil(t, rec.Attachment(KindText))
	assert.Equal(t, "abc.txt", *rec.Attachment(KindText))
	assert.Nil(t, rec.Attachment(KindSupplement))
	assert.ElementsMatch(t, []string{"abc.txt", "def.docx"}, rec.Refs())
}

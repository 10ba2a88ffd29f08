package record

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/hpungsan/specdiff/internal/errors"
)

// Kind is the type of an attachment.
type Kind string

const (
	KindOriginal   Kind = "original-document"
	KindText       Kind = "normalized-text"
	KindSupplement Kind = "rendered-supplement"
)

// Kinds lists all attachment kinds.
var Kinds = []Kind{KindOriginal, KindText, KindSupplement}

// kindInfo maps a kind to its column and allowed file extensions.
var kindInfo = map[Kind]struct {
	column     string
	extensions []string
}{
	KindOriginal:   {"doc_file", []string{".doc", ".docx"}},
	KindText:       {"txt_file", []string{".txt"}},
	KindSupplement: {"pdf_file", []string{".pdf"}},
}

// Column returns the specs column holding this kind.
func (k Kind) Column() string {
	return kindInfo[k].column
}

// Extensions returns the file extensions accepted for this kind.
func (k Kind) Extensions() []string {
	return kindInfo[k].extensions
}

// Allows reports whether path has an extension accepted for this kind.
func (k Kind) Allows(path string) bool {
	return slices.Contains(k.Extensions(), strings.ToLower(filepath.Ext(path)))
}

// ParseKind accepts the kind name, its column name, or the short forms doc, txt and pdf.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, k := range Kinds {
		col := k.Column()
		if s == string(k) || s == col || s == strings.TrimSuffix(col, "_file") {
			return k, nil
		}
	}
	return "", errors.NewInvalidRequest("unknown attachment kind: " + s + " (want doc, txt or pdf)")
}

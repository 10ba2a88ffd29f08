package record

// Record is one row of the specs table: a specification identified by its
// composite key, plus its metadata and attachment references.
type Record struct {
	// SpecNo is the specification number (first key field)
	SpecNo string `json:"spec_no"`

	// Revision is the specification revision (second key field)
	Revision string `json:"revision"`

	// Title is an optional human-readable title
	Title *string `json:"title,omitempty"`

	// Notes is optional free text in markdown
	Notes *string `json:"notes,omitempty"`

	// DocFile is the content reference of the original document (nullable)
	DocFile *string `json:"doc_file,omitempty"`

	// TxtFile is the content reference of the normalized text (nullable)
	TxtFile *string `json:"txt_file,omitempty"`

	// PdfFile is the content reference of the rendered supplement (nullable)
	PdfFile *string `json:"pdf_file,omitempty"`

	// CreatedAt is the Unix timestamp when the record was created
	CreatedAt int64 `json:"created_at"`

	// UpdatedAt is the Unix timestamp when the record was last updated
	UpdatedAt int64 `json:"updated_at"`
}

// Key returns the record's composite key.
func (r *Record) Key() Key {
	return Key{r.SpecNo, r.Revision}
}

// Attachment returns the content reference stored for kind, or nil.
func (r *Record) Attachment(kind Kind) *string {
	switch kind {
	case KindOriginal:
		return r.DocFile
	case KindText:
		return r.TxtFile
	case KindSupplement:
		return r.PdfFile
	}
	return nil
}

// SetAttachment sets the content reference stored for kind.
func (r *Record) SetAttachment(kind Kind, ref *string) {
	switch kind {
	case KindOriginal:
		r.DocFile = ref
	case KindText:
		r.TxtFile = ref
	case KindSupplement:
		r.PdfFile = ref
	}
}

// Refs returns every non-null content reference held by the record.
func (r *Record) Refs() []string {
	var refs []string
	for _, kind := range Kinds {
		if ref := r.Attachment(kind); ref != nil && *ref != "" {
			refs = append(refs, *ref)
		}
	}
	return refs
}

// Comparison is a history entry for one rendered diff between two records.
type Comparison struct {
	ID         string `json:"id"`
	KeyA       string `json:"key_a"`
	KeyB       string `json:"key_b"`
	Mode       string `json:"mode"`
	OutputPath string `json:"output_path"`
	Inserts    int    `json:"inserts"`
	Deletes    int    `json:"deletes"`
	CreatedAt  int64  `json:"created_at"`
}

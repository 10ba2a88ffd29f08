package record

import (
	"regexp"
	"strings"
)

// KeySeparator joins key fields in the text form of a key.
const KeySeparator = ":"

// whitespaceRegex matches one or more whitespace characters
var whitespaceRegex = regexp.MustCompile(`\s+`)

// Key is a composite record key, one value per key field.
type Key []string

// String returns the text form of the key, e.g. "TS-101:B".
func (k Key) String() string {
	return strings.Join(k, KeySeparator)
}

// Args returns the key as SQL arguments.
func (k Key) Args() []any {
	args := make([]any, len(k))
	for i, v := range k {
		args[i] = v
	}
	return args
}

// NormalizeField trims a key value and collapses internal whitespace.
// Case is preserved: spec numbers and revisions are case-significant.
func NormalizeField(s string) string {
	return whitespaceRegex.ReplaceAllString(strings.TrimSpace(s), " ")
}

// ParseKey parses the text form of a key and checks it against the Specs schema.
func ParseKey(s string) (Key, error) {
	return Specs.ParseKey(s)
}

// ParseKey parses the text form of a key and checks it against the schema.
func (s Schema) ParseKey(text string) (Key, error) {
	parts := strings.Split(text, KeySeparator)
	key := make(Key, len(parts))
	for i, p := range parts {
		key[i] = NormalizeField(p)
	}
	if err := s.CheckKey(key); err != nil {
		return nil, err
	}
	return key, nil
}

// ParseKeys parses several keys, stopping at the first invalid one.
func ParseKeys(texts []string) ([]Key, error) {
	keys := make([]Key, 0, len(texts))
	for _, t := range texts {
		k, err := ParseKey(t)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, nil
}

package convert

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// TextConverter copies plain text, dropping a UTF-8 byte order mark.
type TextConverter struct{}

func (TextConverter) Name() string { return "text" }

func (TextConverter) Extensions() []string { return []string{".txt"} }

func (TextConverter) Convert(ctx context.Context, src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	data, err = cleanText(data)
	if err != nil {
		return err
	}
	return writeText(dst, data)
}

// cleanText strips a BOM and rejects bytes that are not UTF-8.
func cleanText(data []byte) ([]byte, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("content is not valid UTF-8")
	}
	return data, nil
}

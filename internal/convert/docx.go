package convert

import (
	"archive/zip"
	"context"
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"
)

// documentPart is the main story of a WordprocessingML package.
const documentPart = "word/document.xml"

// bodyParagraphs selects the top-level paragraphs of the document body.
// Paragraphs nested in tables and text boxes are not part of the output.
const bodyParagraphs = "/*[local-name()='document']/*[local-name()='body']/*[local-name()='p']"

// DocxConverter reads .docx packages in-process.
type DocxConverter struct{}

func (DocxConverter) Name() string { return "docx" }

func (DocxConverter) Extensions() []string { return []string{".docx"} }

func (DocxConverter) Convert(ctx context.Context, src, dst string) error {
	text, err := ExtractDocxText(src)
	if err != nil {
		return err
	}
	return writeText(dst, []byte(text))
}

// ExtractDocxText returns the body paragraphs of a .docx file joined by newlines.
func ExtractDocxText(path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open package: %w", err)
	}
	defer zr.Close()

	var part *zip.File
	for _, f := range zr.File {
		if f.Name == documentPart {
			part = f
			break
		}
	}
	if part == nil {
		return "", fmt.Errorf("package has no %s", documentPart)
	}

	rc, err := part.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", documentPart, err)
	}
	defer rc.Close()

	root, err := xmlquery.Parse(rc)
	if err != nil {
		return "", fmt.Errorf("parsing %s: %w", documentPart, err)
	}

	paragraphs, err := xmlquery.QueryAll(root, bodyParagraphs)
	if err != nil {
		return "", fmt.Errorf("xpath query failed: %w", err)
	}

	lines := make([]string, len(paragraphs))
	for i, p := range paragraphs {
		var b strings.Builder
		paragraphText(&b, p)
		lines[i] = b.String()
	}
	return strings.Join(lines, "\n"), nil
}

// paragraphText appends the visible run text under n in document order.
func paragraphText(b *strings.Builder, n *xmlquery.Node) {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != xmlquery.ElementNode {
			continue
		}
		switch child.Data {
		case "t":
			b.WriteString(child.InnerText())
		case "tab":
			b.WriteByte('\t')
		case "br", "cr":
			b.WriteByte('\n')
		case "delText", "instrText":
			// tracked deletions and field codes are not visible text
		default:
			paragraphText(b, child)
		}
	}
}

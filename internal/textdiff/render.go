package textdiff

import (
	"bytes"
	"html"
	"html/template"
	"io"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
)

const (
	delOpen  = `<del style="background-color: #ffe6e6;">`
	insOpen  = `<ins style="background-color: #e6ffe6;">`
	preOpen  = `<pre style="font-family: inherit; white-space: pre-wrap; word-wrap: break-word;">`
	preClose = `</pre>`
)

// RenderHTML renders the script as a single whitespace-preserving block.
// Deletions and insertions are wrapped in styled del/ins elements; all text is escaped.
func RenderHTML(r Result) string {
	var b strings.Builder
	b.WriteString(preOpen)
	for _, s := range r.Segments {
		text := html.EscapeString(s.Text)
		switch s.Op {
		case OpDelete:
			b.WriteString(delOpen)
			b.WriteString(text)
			b.WriteString("</del>")
		case OpInsert:
			b.WriteString(insOpen)
			b.WriteString(text)
			b.WriteString("</ins>")
		default:
			b.WriteString(text)
		}
	}
	b.WriteString(preClose)
	return b.String()
}

// Header describes the two sides of a rendered comparison.
type Header struct {
	Title       string
	SourceLabel string
	TargetLabel string
	// Notes is markdown placed under the summary table.
	Notes string
}

var documentTmpl = template.Must(template.New("diff").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem; }
.summary table { border-collapse: collapse; }
.summary td, .summary th { border: 1px solid #ddd; padding: 0.25rem 0.75rem; text-align: left; }
</style>
</head>
<body>
<header class="summary">
{{.Summary}}
</header>
<hr>
{{.Body}}
</body>
</html>
`))

// WriteDocument writes a self-contained HTML page: a markdown-rendered summary
// of both sides followed by the rendered diff.
func WriteDocument(w io.Writer, r Result, h Header) error {
	if h.Title == "" {
		h.Title = "Comparison"
	}
	return documentTmpl.Execute(w, struct {
		Title   string
		Summary template.HTML
		Body    template.HTML
	}{
		Title:   h.Title,
		Summary: renderMarkdown(summaryMarkdown(r, h)),
		Body:    template.HTML(RenderHTML(r)),
	})
}

func summaryMarkdown(r Result, h Header) string {
	st := r.Stats()
	var b strings.Builder
	b.WriteString("# " + escapeMarkdown(h.Title) + "\n\n")
	if h.SourceLabel != "" || h.TargetLabel != "" {
		b.WriteString("- **From:** " + escapeMarkdown(h.SourceLabel) + "\n")
		b.WriteString("- **To:** " + escapeMarkdown(h.TargetLabel) + "\n")
	}
	b.WriteString("- **Mode:** " + string(r.Mode) + "\n")
	if r.Identical() {
		b.WriteString("- **Result:** identical\n")
	} else {
		b.WriteString("- **Deleted:** " + strconv.Itoa(st.Deletes) + " spans, " + strconv.Itoa(st.DeletedChars) + " chars\n")
		b.WriteString("- **Inserted:** " + strconv.Itoa(st.Inserts) + " spans, " + strconv.Itoa(st.InsertedChars) + " chars\n")
	}
	if strings.TrimSpace(h.Notes) != "" {
		b.WriteString("\n" + h.Notes + "\n")
	}
	return b.String()
}

// renderMarkdown converts markdown text to HTML using goldmark. Raw HTML in
// the input is not passed through.
func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "*", `\*`, "_", `\_`, "`", "\\`", "[", `\[`, "]", `\]`, "<", `\<`, "#", `\#`,
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

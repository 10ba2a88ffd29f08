package textdiff

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/specdiff/internal/errors"
)

var pairs = []struct{ a, b string }{
	{"", ""},
	{"", "new text"},
	{"old text", ""},
	{"abc", "abc"},
	{"cat", "hat"},
	{"The quick brown fox jumps over the lazy dog.", "The quick red fox leaped over the lazy dogs!"},
	{"line one\nline two\nline three\n", "line one\nline 2\nline three\nline four\n"},
	{"Torque <= 40 Nm & angle 90°", "Torque <= 45 Nm & angle 95° ✓"},
	{strings.Repeat("spec clause 4.1 applies. ", 50), strings.Repeat("spec clause 4.2 applies! ", 50)},
}

func TestDiff_ReconstructsBothInputs(t *testing.T) {
	for _, mode := range Modes {
		for _, p := range pairs {
			opts := DefaultOptions()
			opts.Mode = mode
			r := Diff(p.a, p.b, opts)

			assert.Equal(t, p.a, r.Source(), "mode=%s a=%q", mode, p.a)
			assert.Equal(t, p.b, r.Target(), "mode=%s b=%q", mode, p.b)
			assert.Equal(t, mode, r.Mode)
		}
	}
}

func TestDiff_IdenticalSingleEqual(t *testing.T) {
	for _, mode := range Modes {
		r := Diff("abc", "abc", Options{Mode: mode, Timeout: time.Second})

		require.Len(t, r.Segments, 1, "mode=%s", mode)
		assert.Equal(t, Segment{Op: OpEqual, Text: "abc"}, r.Segments[0])
		assert.True(t, r.Identical())

		html := RenderHTML(r)
		assert.NotContains(t, html, "<del")
		assert.NotContains(t, html, "<ins")
		assert.Contains(t, html, "abc")
	}
}

func TestDiff_EfficiencyMergesSingleCharEdits(t *testing.T) {
	r := Diff("cat", "hat", DefaultOptions())

	st := r.Stats()
	assert.Equal(t, 1, st.Deletes)
	assert.Equal(t, 1, st.Inserts)

	html := RenderHTML(r)
	assert.Equal(t, 1, strings.Count(html, "<del "))
	assert.Equal(t, 1, strings.Count(html, "<ins "))
	assert.Contains(t, html, `<del style="background-color: #ffe6e6;">c</del>`)
	assert.Contains(t, html, `<ins style="background-color: #e6ffe6;">h</ins>`)
}

func TestDiff_SemanticCleanup(t *testing.T) {
	raw := Diff("mouse", "sofas", Options{Mode: ModeRaw, Timeout: time.Second})
	sem := Diff("mouse", "sofas", Options{Mode: ModeSemantic, Timeout: time.Second})

	assert.Greater(t, len(raw.Segments), 2, "raw keeps the single-character edits: %v", raw.Segments)
	assert.Greater(t, raw.Stats().Equals, 0)
	assert.Equal(t, []Segment{
		{Op: OpDelete, Text: "mouse"},
		{Op: OpInsert, Text: "sofas"},
	}, sem.Segments)
	assert.NotEqual(t, raw.Segments, sem.Segments)
}

func TestDiff_EditCostControlsEfficiency(t *testing.T) {
	a, b := "ab12345cd", "xy12345zw"

	cheap := Diff(a, b, Options{Mode: ModeEfficiency, Timeout: time.Second, EditCost: 4})
	assert.Contains(t, cheap.Segments, Segment{Op: OpEqual, Text: "12345"})
	assert.Len(t, cheap.Segments, 5)

	costly := Diff(a, b, Options{Mode: ModeEfficiency, Timeout: time.Second, EditCost: 20})
	assert.Equal(t, []Segment{
		{Op: OpDelete, Text: a},
		{Op: OpInsert, Text: b},
	}, costly.Segments)

	for _, r := range []Result{cheap, costly} {
		assert.Equal(t, a, r.Source())
		assert.Equal(t, b, r.Target())
	}
}

func TestDiff_UnknownModeRunsRaw(t *testing.T) {
	r := Diff("mouse", "sofas", Options{Mode: Mode("bogus"), Timeout: time.Second})
	raw := Diff("mouse", "sofas", Options{Mode: ModeRaw, Timeout: time.Second})

	assert.Equal(t, ModeRaw, r.Mode)
	assert.Equal(t, raw.Segments, r.Segments)
}

func TestDiff_EfficiencyNeverAddsSegments(t *testing.T) {
	for _, p := range pairs {
		raw := Diff(p.a, p.b, Options{Mode: ModeRaw, Timeout: time.Second})
		eff := Diff(p.a, p.b, Options{Mode: ModeEfficiency, Timeout: time.Second, EditCost: 4})
		assert.LessOrEqual(t, len(eff.Segments), len(raw.Segments), "a=%q", p.a)
	}
}

func TestDiff_TimeoutReturnsBestEffort(t *testing.T) {
	a := strings.Repeat("alpha beta gamma delta ", 400)
	b := strings.Repeat("alpha beta gamma epsilon ", 400)

	r := Diff(a, b, Options{Mode: ModeRaw, Timeout: time.Nanosecond})
	assert.Equal(t, a, r.Source())
	assert.Equal(t, b, r.Target())
}

func TestDiff_EmptyInputs(t *testing.T) {
	r := Diff("", "", DefaultOptions())
	assert.Empty(t, r.Segments)
	assert.True(t, r.Identical())
	assert.Equal(t, preOpen+preClose, RenderHTML(r))
}

func TestStats_CountsRunes(t *testing.T) {
	r := Result{Segments: []Segment{
		{Op: OpEqual, Text: "a"},
		{Op: OpDelete, Text: "°C"},
		{Op: OpInsert, Text: "✓"},
	}}
	assert.Equal(t, Stats{Equals: 1, Deletes: 1, Inserts: 1, DeletedChars: 2, InsertedChars: 1}, r.Stats())
}

func TestRenderHTML_EscapesText(t *testing.T) {
	r := Result{Segments: []Segment{
		{Op: OpEqual, Text: "if a < b && c > d "},
		{Op: OpDelete, Text: "<script>"},
		{Op: OpInsert, Text: `"q" & 'q'`},
	}}

	html := RenderHTML(r)
	assert.Contains(t, html, "if a &lt; b &amp;&amp; c &gt; d ")
	assert.Contains(t, html, "&lt;script&gt;</del>")
	assert.Contains(t, html, "&#34;q&#34; &amp; &#39;q&#39;</ins>")
	assert.NotContains(t, html, "<script>")
	assert.True(t, strings.HasPrefix(html, preOpen))
	assert.True(t, strings.HasSuffix(html, preClose))
	assert.Equal(t, 1, strings.Count(html, "</pre>"))
}

func TestParseMode(t *testing.T) {
	cases := map[string]Mode{
		"":           ModeEfficiency,
		"eff":        ModeEfficiency,
		"Efficiency": ModeEfficiency,
		"sem":        ModeSemantic,
		"semantic":   ModeSemantic,
		" raw ":      ModeRaw,
	}
	for in, want := range cases {
		got, err := ParseMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseMode("fancy")
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestOp_MarshalText(t *testing.T) {
	b, err := OpInsert.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "insert", string(b))
	assert.Equal(t, "delete", OpDelete.String())
	assert.Equal(t, "equal", OpEqual.String())
}

func TestWriteDocument(t *testing.T) {
	r := Diff("Max torque 40 Nm", "Max torque 45 Nm", DefaultOptions())

	var buf bytes.Buffer
	err := WriteDocument(&buf, r, Header{
		Title:       "TS-101 A <vs> B",
		SourceLabel: "TS-101:A",
		TargetLabel: "TS-101:B",
		Notes:       "Reviewed by *QA*.",
	})
	require.NoError(t, err)

	doc := buf.String()
	assert.True(t, strings.HasPrefix(doc, "<!DOCTYPE html>"))
	assert.Contains(t, doc, `<meta charset="utf-8">`)
	assert.Contains(t, doc, "<h1>")
	assert.Contains(t, doc, "TS-101:A")
	assert.Contains(t, doc, "<em>QA</em>")
	assert.Contains(t, doc, "efficiency")
	assert.NotContains(t, doc, "<vs>")
	assert.Contains(t, doc, RenderHTML(r))
}

func TestWriteDocument_IdenticalSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDocument(&buf, Diff("same", "same", DefaultOptions()), Header{}))

	doc := buf.String()
	assert.Contains(t, doc, "<title>Comparison</title>")
	assert.Contains(t, doc, "identical")
}

package web

import (
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"github.com/hpungsan/specdiff/internal/ops"
	"github.com/hpungsan/specdiff/internal/textdiff"
)

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	env      *ops.Env
	renderer *Renderer
}

// HandleList handles GET /specs.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	result, err := ops.List(r.Context(), h.env.DB, ops.ListInput{
		Limit:  parseIntParam(r, "limit", ops.DefaultListLimit),
		Offset: parseIntParam(r, "offset", 0),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	h.renderer.renderPage(w, r, "list", ListPageData{
		PageData:   h.renderer.page("Specifications", "specs"),
		Items:      result.Items,
		Pagination: result.Pagination,
	})
}

// HandleDetail handles GET /specs/{key}.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	spec, err := ops.Get(r.Context(), h.env, ops.GetInput{Key: r.PathValue("key")})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, spec)
		return
	}

	data := DetailPageData{
		PageData:   h.renderer.page(spec.Key, "specs"),
		Spec:       spec,
		Normalized: r.URL.Query().Get("normalized"),
	}
	if spec.Notes != nil {
		data.RenderedNotes = renderMarkdown(*spec.Notes)
	}
	h.renderer.renderPage(w, r, "detail", data)
}

// HandleNormalize handles POST /specs/{key}/normalize.
func (h *Handlers) HandleNormalize(w http.ResponseWriter, r *http.Request) {
	result, err := ops.Normalize(r.Context(), h.env, ops.NormalizeInput{Key: r.PathValue("key")})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	// HTMX request: return HTML fragment
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`<div class="normalize-result">normalized: ` + template.HTMLEscapeString(result.TxtRef) + `</div>`))
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	http.Redirect(w, r, "/specs/"+url.PathEscape(result.Key)+"?normalized="+url.QueryEscape(result.TxtRef), http.StatusSeeOther)
}

// HandleCompare handles GET /compare?a=&b=&mode=. The diff is rendered in
// memory; nothing is written and no history entry is recorded.
func (h *Handlers) HandleCompare(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	data := ComparePageData{
		PageData: h.renderer.page("Compare", "compare"),
		A:        q.Get("a"),
		B:        q.Get("b"),
		Mode:     q.Get("mode"),
		Modes:    []textdiff.Mode{textdiff.ModeEfficiency, textdiff.ModeSemantic, textdiff.ModeRaw},
	}

	if data.A == "" || data.B == "" {
		h.renderer.renderPage(w, r, "compare", data)
		return
	}

	preview, err := ops.Preview(r.Context(), h.env, ops.PreviewInput{KeyA: data.A, KeyB: data.B, Mode: data.Mode})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, preview)
		return
	}

	data.Title = preview.KeyA + " vs " + preview.KeyB
	data.Mode = string(preview.Result.Mode)
	data.Preview = preview
	data.Diff = template.HTML(textdiff.RenderHTML(preview.Result))
	h.renderer.renderPage(w, r, "compare", data)
}

// HandleHistory handles GET /history.
func (h *Handlers) HandleHistory(w http.ResponseWriter, r *http.Request) {
	result, err := ops.History(r.Context(), h.env.DB, ops.HistoryInput{
		Limit: parseIntParam(r, "limit", ops.DefaultHistoryLimit),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	h.renderer.renderPage(w, r, "history", HistoryPageData{
		PageData: h.renderer.page("History", "history"),
		Items:    result.Items,
	})
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

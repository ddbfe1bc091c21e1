// Package pagerender centralizes module page rendering behavior.
package pagerender

import (
	"bytes"
	"net/http"

	"github.com/a-h/templ"

	module "github.com/louisbranch/typeshelf/internal/services/web/module"
	"github.com/louisbranch/typeshelf/internal/services/web/platform/httpx"
	webi18n "github.com/louisbranch/typeshelf/internal/services/web/platform/i18n"
	webtemplates "github.com/louisbranch/typeshelf/internal/services/web/templates"
)

// ModulePage describes a module page response for both full-page and HTMX flows.
type ModulePage struct {
	Title      string
	StatusCode int
	Fragment   templ.Component
}

// WriteModulePage renders page inside the app shell, or the bare fragment for
// HTMX requests. Output is buffered so render errors never produce partial
// pages.
func WriteModulePage(w http.ResponseWriter, r *http.Request, resolver module.RequestResolver, page ModulePage) error {
	if w == nil {
		return nil
	}
	fragment := page.Fragment
	if fragment == nil {
		fragment = templ.NopComponent
	}
	var resolveLanguage module.ResolveLanguage
	viewer := module.Viewer{}
	if resolver != nil {
		resolveLanguage = resolver.ResolveRequestLanguage
		viewer = resolver.ResolveRequestViewer(r)
	}
	loc, lang := webi18n.ResolveLocalizer(w, r, resolveLanguage)
	ctx := httpx.RequestContext(r)

	var buf bytes.Buffer
	if httpx.IsHTMXRequest(r) {
		if err := fragment.Render(ctx, &buf); err != nil {
			return err
		}
	} else {
		layout := webtemplates.AppLayout(layoutOptions(r, page.Title, lang, loc, viewer))
		if err := layout.Render(templ.WithChildren(ctx, fragment), &buf); err != nil {
			return err
		}
	}
	writeHTML(w, page.StatusCode, buf.Bytes())
	return nil
}

// WritePublicPage renders body inside the unauthenticated layout.
func WritePublicPage(w http.ResponseWriter, r *http.Request, title string, statusCode int, body templ.Component) {
	if w == nil {
		return
	}
	if body == nil {
		body = templ.NopComponent
	}
	loc, lang := webi18n.ResolveLocalizer(w, r, nil)
	var buf bytes.Buffer
	layout := webtemplates.PublicLayout(layoutOptions(r, title, lang, loc, module.Viewer{}))
	if err := layout.Render(templ.WithChildren(httpx.RequestContext(r), body), &buf); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	writeHTML(w, statusCode, buf.Bytes())
}

func layoutOptions(r *http.Request, title string, lang string, loc webtemplates.Localizer, viewer module.Viewer) webtemplates.LayoutOptions {
	opts := webtemplates.LayoutOptions{Title: title, Lang: lang, Loc: loc, Viewer: viewer}
	if r != nil && r.URL != nil {
		opts.CurrentPath = r.URL.Path
		opts.CurrentQuery = r.URL.RawQuery
	}
	return opts
}

func writeHTML(w http.ResponseWriter, statusCode int, body []byte) {
	if statusCode <= 0 {
		statusCode = http.StatusOK
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	_, _ = w.Write(body)
}

package templates

import (
	"context"

	"github.com/a-h/templ"
	"golang.org/x/text/language"

	module "github.com/louisbranch/typeshelf/internal/services/web/module"
	webi18n "github.com/louisbranch/typeshelf/internal/services/web/platform/i18n"
	"github.com/louisbranch/typeshelf/internal/services/web/routepath"
)

// LayoutOptions carries the page chrome shared by every layout.
type LayoutOptions struct {
	Title        string
	Lang         string
	Loc          Localizer
	CurrentPath  string
	CurrentQuery string
	Viewer       module.Viewer
}

// AppLayout renders the authenticated app shell around the context children.
func AppLayout(opts LayoutOptions) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		writeHead(h, opts)
		h.raw(`<body class="app">`)
		h.raw(`<header class="app-nav"><a class="brand"`)
		h.attr("href", routepath.AppBrandTypography)
		h.raw(">")
		h.text(T(opts.Loc, "core.app_name"))
		h.raw("</a><nav>")
		navLink(h, opts, routepath.AppBrandTypography, "core.nav.brand_typography")
		navLink(h, opts, routepath.AppSettingsTypography, "core.nav.typography_settings")
		h.raw("</nav>")
		writeLanguageMenu(h, opts)
		if opts.Viewer.SignedIn() {
			h.raw(`<span class="viewer">`)
			h.text(viewerName(opts.Viewer))
			h.raw(`</span><form method="post"`)
			h.attr("action", routepath.Logout)
			h.raw(`><button type="submit">`)
			h.text(T(opts.Loc, "core.nav.sign_out"))
			h.raw("</button></form>")
		}
		h.raw(`</header><main id="main">`)
		h.render(ctx, templ.GetChildren(ctx))
		h.raw(`</main></body></html>`)
	})
}

// PublicLayout renders the unauthenticated shell around the context children.
func PublicLayout(opts LayoutOptions) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		writeHead(h, opts)
		h.raw(`<body class="public"><header class="public-nav"><span class="brand">`)
		h.text(T(opts.Loc, "core.app_name"))
		h.raw("</span>")
		writeLanguageMenu(h, opts)
		h.raw(`</header><main id="main">`)
		h.render(ctx, templ.GetChildren(ctx))
		h.raw(`</main></body></html>`)
	})
}

func writeHead(h *htmlWriter, opts LayoutOptions) {
	h.raw("<!doctype html><html")
	h.attr("lang", opts.Lang)
	h.raw(`><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>`)
	title := T(opts.Loc, "core.app_name")
	if opts.Title != "" {
		title = opts.Title + " | " + title
	}
	h.text(title)
	h.raw(`</title><link rel="stylesheet"`)
	h.attr("href", routepath.StaticPrefix+"app.css")
	h.raw(`><script defer`)
	h.attr("src", routepath.StaticPrefix+"app.js")
	h.raw(`></script></head>`)
}

func navLink(h *htmlWriter, opts LayoutOptions, href string, key string) {
	h.raw("<a")
	h.attr("href", href)
	if opts.CurrentPath == href {
		h.raw(` aria-current="page"`)
	}
	h.raw(">")
	h.text(T(opts.Loc, key))
	h.raw("</a>")
}

func writeLanguageMenu(h *htmlWriter, opts LayoutOptions) {
	active, err := language.Parse(opts.Lang)
	if err != nil {
		active = language.Und
	}
	h.raw(`<nav class="lang"`)
	h.attr("aria-label", T(opts.Loc, "core.nav.language"))
	h.raw(">")
	for _, option := range webi18n.LanguageOptions(active, nil, opts.CurrentPath, opts.CurrentQuery) {
		h.raw("<a")
		h.attr("href", option.URL)
		h.attr("hreflang", option.Tag)
		if option.Active {
			h.raw(` aria-current="true"`)
		}
		h.raw(">")
		h.text(T(opts.Loc, webi18n.LanguageKey(language.Make(option.Tag))))
		h.raw("</a>")
	}
	h.raw("</nav>")
}

func viewerName(viewer module.Viewer) string {
	if viewer.DisplayName != "" {
		return viewer.DisplayName
	}
	return viewer.UserID
}

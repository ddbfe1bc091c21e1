package templates

import (
	"context"
	"strings"

	"github.com/a-h/templ"

	"github.com/louisbranch/typeshelf/internal/fonts"
	"github.com/louisbranch/typeshelf/internal/services/web/routepath"
)

// ViewerOptions customizes BrandTypographyViewer output.
type ViewerOptions struct {
	Loc Localizer
	// ViewerID enables delete actions on fonts the viewer uploaded.
	ViewerID string
}

// BrandTypographyViewer renders the font showcase for list.
func BrandTypographyViewer(list []fonts.Font, opts ViewerOptions) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.raw(`<section id="brand-typography-viewer" class="font-viewer"`)
		h.attr("data-count", itoa(len(list)))
		h.raw(">")
		if len(list) == 0 {
			h.raw(`<p class="empty">`)
			h.text(T(opts.Loc, "typography.brand.empty"))
			h.raw("</p></section>")
			return
		}
		h.raw(`<p class="count">`)
		h.text(T(opts.Loc, "typography.brand.count", len(list)))
		h.raw("</p><style>")
		h.raw(FontFaceCSS(list))
		h.raw("</style>")
		sample := T(opts.Loc, "typography.brand.sample")
		for _, font := range list {
			writeFontCard(h, font, sample, opts)
		}
		h.raw("</section>")
	})
}

func writeFontCard(h *htmlWriter, font fonts.Font, sample string, opts ViewerOptions) {
	h.raw(`<article class="font-card"`)
	h.attr("data-font-id", font.ID)
	h.raw("><header><h2>")
	h.text(font.DisplayName())
	h.raw(`</h2><span class="meta">`)
	h.text(T(opts.Loc, "typography.font.weight", font.Weight))
	h.raw(" · ")
	h.text(strings.ToUpper(string(font.Format)))
	h.raw("</span></header><p")
	h.attr("class", "sample")
	h.attr("style", fontStyle(font))
	h.raw(">")
	h.text(sample)
	h.raw("</p>")
	if opts.ViewerID != "" && font.UploadedBy == opts.ViewerID {
		h.raw(`<form method="post"`)
		h.attr("action", routepath.AppSettingsFontDelete(font.ID))
		h.raw(`><button type="submit">`)
		h.text(T(opts.Loc, "typography.font.delete"))
		h.raw("</button></form>")
	}
	h.raw("</article>")
}

// FontFaceCSS returns one @font-face rule per font, each bound to the font's
// unique CSS family name.
func FontFaceCSS(list []fonts.Font) string {
	var b strings.Builder
	for _, font := range list {
		family := cssIdent(font.CSSFamily())
		if family == "" {
			continue
		}
		b.WriteString(`@font-face{font-family:"`)
		b.WriteString(family)
		b.WriteString(`";src:url("`)
		b.WriteString(routepath.AppFontFile(cssIdent(font.ID)))
		b.WriteString(`") format("`)
		b.WriteString(cssFormat(font.Format))
		b.WriteString(`");font-weight:`)
		b.WriteString(itoa(fonts.NormalizeWeight(font.Weight)))
		b.WriteString(";font-style:")
		if font.Italic {
			b.WriteString("italic")
		} else {
			b.WriteString("normal")
		}
		b.WriteString(";font-display:swap}")
	}
	return b.String()
}

func fontStyle(font fonts.Font) string {
	style := `font-family:"` + cssIdent(font.CSSFamily()) + `",system-ui;font-weight:` + itoa(fonts.NormalizeWeight(font.Weight))
	if font.Italic {
		style += ";font-style:italic"
	}
	return style
}

func cssFormat(format fonts.Format) string {
	if format == fonts.FormatOTF {
		return "opentype"
	}
	return "truetype"
}

// cssIdent keeps only characters that are safe inside quoted CSS strings and
// URL path segments.
func cssIdent(raw string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return -1
	}, raw)
}

// QueryForm is the state of the brand page filter controls.
type QueryForm struct {
	Filter  string
	OrderBy string
	Invalid bool
}

// BrandTypographyControls renders the filter and ordering form.
func BrandTypographyControls(form QueryForm, loc Localizer) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.raw(`<form class="font-query" method="get"`)
		h.attr("action", routepath.AppBrandTypography)
		h.raw("><label>")
		h.text(T(loc, "typography.brand.filter_label"))
		h.raw(`<input type="text"`)
		h.attr("name", routepath.FilterQueryKey)
		h.attr("value", form.Filter)
		h.attr("placeholder", `family = "Inter"`)
		h.raw("></label><label>")
		h.text(T(loc, "typography.brand.order_label"))
		h.raw(`<input type="text"`)
		h.attr("name", routepath.OrderByQueryKey)
		h.attr("value", form.OrderBy)
		h.attr("placeholder", "family desc")
		h.raw(`></label><button type="submit">`)
		h.text(T(loc, "typography.brand.apply"))
		h.raw("</button></form>")
		if form.Invalid {
			h.raw(`<p class="notice" role="status">`)
			h.text(T(loc, "error.query.invalid"))
			h.raw("</p>")
		}
	})
}

// LiveRegion wraps the viewer in a container the browser script keeps in
// sync with the live endpoint.
func LiveRegion(liveURL string, loc Localizer, viewer templ.Component) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<div id="typography-live"`)
		h.attr("data-live-url", liveURL)
		h.attr("data-live-label", T(loc, "typography.brand.live"))
		h.raw(">")
		h.render(ctx, viewer)
		h.raw("</div>")
	})
}

// UploaderForm is the state of the font upload form.
type UploaderForm struct {
	Action   string
	Error    string
	Uploaded string
}

// FontUploader renders the font upload form. It takes no font list.
func FontUploader(form UploaderForm, loc Localizer) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		action := form.Action
		if action == "" {
			action = routepath.AppSettingsFonts
		}
		h.raw(`<section id="font-uploader" class="font-uploader"><h2>`)
		h.text(T(loc, "typography.uploader.heading"))
		h.raw("</h2>")
		if form.Error != "" {
			h.raw(`<p class="error" role="alert">`)
			h.text(form.Error)
			h.raw("</p>")
		}
		if form.Uploaded != "" {
			h.raw(`<p class="notice" role="status">`)
			h.text(T(loc, "typography.uploader.uploaded", form.Uploaded))
			h.raw("</p>")
		}
		h.raw(`<form method="post" enctype="multipart/form-data"`)
		h.attr("action", action)
		h.raw("><label>")
		h.text(T(loc, "typography.uploader.file_label"))
		h.raw(`<input type="file" name="font" accept=".ttf,.otf,font/ttf,font/otf" required></label><p class="help">`)
		h.text(T(loc, "typography.uploader.help"))
		h.raw(`</p><button type="submit">`)
		h.text(T(loc, "typography.uploader.submit"))
		h.raw("</button></form></section>")
	})
}

// PageHeading renders a page title heading.
func PageHeading(title string) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.raw("<h1>")
		h.text(title)
		h.raw("</h1>")
	})
}

// Group renders components in order.
func Group(parts ...templ.Component) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		for _, part := range parts {
			h.render(ctx, part)
		}
	})
}

// SignInRequired is the render-level guard fallback for protected content.
func SignInRequired(loc Localizer) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.raw(`<p class="notice" role="alert"><a`)
		h.attr("href", routepath.Login)
		h.raw(">")
		h.text(T(loc, "auth.guard.required"))
		h.raw("</a></p>")
	})
}

package templates

import (
	"context"
	"net/http"

	"github.com/a-h/templ"

	"github.com/louisbranch/typeshelf/internal/services/web/routepath"
)

// AppErrorPageTitle returns the browser title for app error pages.
func AppErrorPageTitle(statusCode int, loc Localizer) string {
	return T(loc, "core.error.title")
}

// AppErrorState renders the error body for 404 and 5xx responses.
func AppErrorState(statusCode int, loc Localizer) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.raw(`<section class="app-error"`)
		h.attr("data-status", itoa(statusCode))
		h.raw("><h1>")
		h.text(AppErrorPageTitle(statusCode, loc))
		h.raw("</h1><p>")
		h.text(T(loc, appErrorMessageKey(statusCode)))
		h.raw("</p><a")
		h.attr("href", routepath.AppBrandTypography)
		h.raw(">")
		h.text(T(loc, "core.error.back"))
		h.raw("</a></section>")
	})
}

func appErrorMessageKey(statusCode int) string {
	if statusCode == http.StatusNotFound {
		return "core.error.not_found"
	}
	return "core.error.unavailable"
}

// Package weberror renders shared app-shell error responses for web modules.
package weberror

import (
	"net/http"
	"strings"

	"github.com/a-h/templ"

	module "github.com/louisbranch/typeshelf/internal/services/web/module"
	apperrors "github.com/louisbranch/typeshelf/internal/services/web/platform/errors"
	"github.com/louisbranch/typeshelf/internal/services/web/platform/httpx"
	webi18n "github.com/louisbranch/typeshelf/internal/services/web/platform/i18n"
	webtemplates "github.com/louisbranch/typeshelf/internal/services/web/templates"
)

// ShouldRenderAppError reports whether status should use app error-page UX.
func ShouldRenderAppError(statusCode int) bool {
	return statusCode == http.StatusNotFound || statusCode >= http.StatusInternalServerError
}

// PublicMessage resolves a user-safe localized error message.
func PublicMessage(loc webi18n.Localizer, err error) string {
	if err == nil {
		return ""
	}
	if loc != nil {
		if key := apperrors.LocalizationKey(err); key != "" {
			if localized := strings.TrimSpace(loc.Sprintf(key)); localized != "" {
				return localized
			}
		}
	}
	statusCode := apperrors.HTTPStatus(err)
	if statusCode < http.StatusBadRequest {
		statusCode = http.StatusInternalServerError
	}
	return http.StatusText(statusCode)
}

// WriteAppError writes a localized app-shell error response.
func WriteAppError(w http.ResponseWriter, r *http.Request, statusCode int, resolver module.RequestResolver) {
	if w == nil {
		return
	}
	if !ShouldRenderAppError(statusCode) {
		statusCode = http.StatusInternalServerError
	}
	var resolveLanguage module.ResolveLanguage
	viewer := module.Viewer{}
	if resolver != nil {
		resolveLanguage = resolver.ResolveRequestLanguage
		viewer = resolver.ResolveRequestViewer(r)
	}
	loc, lang := webi18n.ResolveLocalizer(w, r, resolveLanguage)
	fragment := webtemplates.AppErrorState(statusCode, loc)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	ctx := httpx.RequestContext(r)
	if httpx.IsHTMXRequest(r) {
		_ = fragment.Render(ctx, w)
		return
	}
	opts := webtemplates.LayoutOptions{
		Title:  webtemplates.AppErrorPageTitle(statusCode, loc),
		Lang:   lang,
		Loc:    loc,
		Viewer: viewer,
	}
	if r != nil && r.URL != nil {
		opts.CurrentPath = r.URL.Path
	}
	_ = webtemplates.AppLayout(opts).Render(templ.WithChildren(ctx, fragment), w)
}

// WriteModuleError writes a module-safe localized error response.
func WriteModuleError(w http.ResponseWriter, r *http.Request, err error, resolver module.RequestResolver) {
	if w == nil {
		return
	}
	statusCode := apperrors.HTTPStatus(err)
	if ShouldRenderAppError(statusCode) {
		WriteAppError(w, r, statusCode, resolver)
		return
	}
	var resolveLanguage module.ResolveLanguage
	if resolver != nil {
		resolveLanguage = resolver.ResolveRequestLanguage
	}
	loc, _ := webi18n.ResolveLocalizer(w, r, resolveLanguage)
	http.Error(w, PublicMessage(loc, err), statusCode)
}

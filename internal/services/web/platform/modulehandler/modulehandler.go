// Package modulehandler provides a composable base for protected web module
// handlers.
//
// Protected modules (those mounted under /app/) share user resolution,
// localization, page rendering, and error handling. Modules embed Base rather
// than duplicating that scaffold.
package modulehandler

import (
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"golang.org/x/text/language"

	module "github.com/louisbranch/typeshelf/internal/services/web/module"
	webi18n "github.com/louisbranch/typeshelf/internal/services/web/platform/i18n"
	"github.com/louisbranch/typeshelf/internal/services/web/platform/pagerender"
	"github.com/louisbranch/typeshelf/internal/services/web/platform/weberror"
	webtemplates "github.com/louisbranch/typeshelf/internal/services/web/templates"
)

// Base carries the request-scoped resolvers used by protected module handlers.
type Base struct {
	resolveUserID   module.ResolveUserID
	resolveLanguage module.ResolveLanguage
	resolveViewer   module.ResolveViewer
}

// NewBase builds a handler base from explicit resolver functions.
func NewBase(resolveUserID module.ResolveUserID, resolveLanguage module.ResolveLanguage, resolveViewer module.ResolveViewer) Base {
	return Base{
		resolveUserID:   resolveUserID,
		resolveLanguage: resolveLanguage,
		resolveViewer:   resolveViewer,
	}
}

// NewTestBase builds a base whose resolvers report userID as the signed-in
// user and no language preference.
func NewTestBase(userID string) Base {
	return Base{
		resolveUserID:   func(*http.Request) string { return userID },
		resolveLanguage: func(*http.Request) string { return "" },
		resolveViewer:   func(*http.Request) module.Viewer { return module.Viewer{UserID: userID} },
	}
}

// ResolveRequestViewer resolves app chrome viewer state for a request.
func (b Base) ResolveRequestViewer(r *http.Request) module.Viewer {
	if b.resolveViewer == nil {
		return module.Viewer{}
	}
	return b.resolveViewer(r)
}

// ResolveRequestLanguage returns the effective request language.
func (b Base) ResolveRequestLanguage(r *http.Request) string {
	if b.resolveLanguage == nil {
		return ""
	}
	return b.resolveLanguage(r)
}

// PageLocalizer resolves a localizer and language tag from the request.
func (b Base) PageLocalizer(w http.ResponseWriter, r *http.Request) (webtemplates.Localizer, string) {
	return webi18n.ResolveLocalizer(w, r, b.resolveLanguage)
}

// RequestLocaleTag returns the resolved language tag for the request.
func (b Base) RequestLocaleTag(r *http.Request) language.Tag {
	return webi18n.ResolveRequestTag(r, b.resolveLanguage)
}

// RequestUserID extracts the authenticated user ID from the request.
func (b Base) RequestUserID(r *http.Request) string {
	if r == nil || b.resolveUserID == nil {
		return ""
	}
	return strings.TrimSpace(b.resolveUserID(r))
}

// Authorized reports whether the request carries a signed-in user.
func (b Base) Authorized(r *http.Request) bool {
	return b.RequestUserID(r) != ""
}

// WriteError renders a localized module error response.
func (b Base) WriteError(w http.ResponseWriter, r *http.Request, err error) {
	weberror.WriteModuleError(w, r, err, b)
}

// WriteNotFound renders a 404 error page within the app shell.
func (b Base) WriteNotFound(w http.ResponseWriter, r *http.Request) {
	weberror.WriteAppError(w, r, http.StatusNotFound, b)
}

// WritePage renders a module page (HTMX-aware) with the given title and
// content fragment.
func (b Base) WritePage(w http.ResponseWriter, r *http.Request, title string, statusCode int, fragment templ.Component) {
	if err := pagerender.WriteModulePage(w, r, b, pagerender.ModulePage{
		Title:      title,
		StatusCode: statusCode,
		Fragment:   fragment,
	}); err != nil {
		b.WriteError(w, r, err)
	}
}

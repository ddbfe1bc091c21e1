// Package authguard gates handlers and components behind an authorization
// predicate with an explicit fallback.
package authguard

import (
	"context"
	"io"
	"net/http"

	"github.com/a-h/templ"

	"github.com/louisbranch/typeshelf/internal/services/web/platform/httpx"
)

// Predicate reports whether a request carries an authorized session.
type Predicate func(*http.Request) bool

// Guard serves next for authorized requests and fallback otherwise. A nil
// predicate denies every request.
func Guard(authorized Predicate, fallback http.Handler) httpx.Middleware {
	if fallback == nil {
		fallback = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
	}
	return func(next http.Handler) http.Handler {
		if next == nil {
			next = http.NotFoundHandler()
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if authorized == nil || !authorized(r) {
				fallback.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RedirectTo returns a fallback that sends the browser to path.
func RedirectTo(path string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteRedirect(w, r, path)
	})
}

// Protect renders child when authorized and fallback otherwise. The child is
// never rendered for unauthorized callers.
func Protect(authorized bool, child templ.Component, fallback templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if authorized {
			if child == nil {
				return nil
			}
			return child.Render(ctx, w)
		}
		if fallback == nil {
			return nil
		}
		return fallback.Render(ctx, w)
	})
}

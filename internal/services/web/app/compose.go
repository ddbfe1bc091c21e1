// Package app composes web modules into the root HTTP handler.
package app

import (
	"fmt"
	"net/http"
	"strings"

	module "github.com/louisbranch/typeshelf/internal/services/web/module"
	"github.com/louisbranch/typeshelf/internal/services/web/platform/authguard"
	"github.com/louisbranch/typeshelf/internal/services/web/platform/httpx"
	"github.com/louisbranch/typeshelf/internal/services/web/platform/requestmeta"
	"github.com/louisbranch/typeshelf/internal/services/web/platform/sessioncookie"
	"github.com/louisbranch/typeshelf/internal/services/web/routepath"
)

// ComposeInput carries module groups and shared composition contracts.
type ComposeInput struct {
	// Authorized reports whether a request may reach protected modules.
	Authorized          authguard.Predicate
	PublicModules       []module.Module
	ProtectedModules    []module.Module
	RequestSchemePolicy requestmeta.SchemePolicy
}

// Compose builds a root HTTP handler from module groups. Protected modules
// must mount under /app/ and are wrapped with the auth guard and the
// same-origin mutation check.
func Compose(input ComposeInput) (http.Handler, error) {
	root := http.NewServeMux()
	seen := make(map[string]string)

	for _, feature := range input.PublicModules {
		if feature == nil {
			return nil, fmt.Errorf("public module is nil")
		}
		mount, err := resolveMount(feature)
		if err != nil {
			return nil, err
		}
		if isProtectedPrefix(mount.Prefix) {
			return nil, fmt.Errorf("module %q has protected prefix %q in public group", feature.ID(), mount.Prefix)
		}
		if err := register(root, seen, feature.ID(), mount.Prefix, mount.Handler); err != nil {
			return nil, err
		}
	}

	protect := protectedMiddleware(input.Authorized, input.RequestSchemePolicy)
	for _, feature := range input.ProtectedModules {
		if feature == nil {
			return nil, fmt.Errorf("protected module is nil")
		}
		mount, err := resolveMount(feature)
		if err != nil {
			return nil, err
		}
		if !isProtectedPrefix(mount.Prefix) {
			return nil, fmt.Errorf("module %q must mount under %s, got %q", feature.ID(), routepath.AppPrefix, mount.Prefix)
		}
		handler := httpx.Chain(mount.Handler, protect...)
		if err := register(root, seen, feature.ID(), mount.Prefix, handler); err != nil {
			return nil, err
		}
		if err := register(root, seen, feature.ID(), strings.TrimSuffix(mount.Prefix, "/"), handler); err != nil {
			return nil, err
		}
	}
	return root, nil
}

func register(root *http.ServeMux, seen map[string]string, id string, pattern string, handler http.Handler) error {
	if previous, ok := seen[pattern]; ok {
		return fmt.Errorf("module %q duplicates prefix %q owned by module %q", id, pattern, previous)
	}
	seen[pattern] = id
	root.Handle(pattern, handler)
	return nil
}

func resolveMount(feature module.Module) (module.Mount, error) {
	mount, err := feature.Mount()
	if err != nil {
		return module.Mount{}, fmt.Errorf("mount module %q: %w", feature.ID(), err)
	}
	if err := validatePrefix(mount.Prefix); err != nil {
		return module.Mount{}, fmt.Errorf("mount module %q has invalid prefix %q: %w", feature.ID(), mount.Prefix, err)
	}
	if mount.Handler == nil {
		return module.Mount{}, fmt.Errorf("mount module %q: handler is required", feature.ID())
	}
	return mount, nil
}

func validatePrefix(prefix string) error {
	switch {
	case prefix == "":
		return fmt.Errorf("prefix is required")
	case strings.TrimSpace(prefix) != prefix:
		return fmt.Errorf("prefix must not include surrounding whitespace")
	case !strings.HasPrefix(prefix, "/"):
		return fmt.Errorf("prefix must begin with /")
	case !strings.HasSuffix(prefix, "/"):
		return fmt.Errorf("prefix must end with /")
	}
	return nil
}

func isProtectedPrefix(prefix string) bool {
	return strings.HasPrefix(prefix, routepath.AppPrefix)
}

func protectedMiddleware(authorized authguard.Predicate, policy requestmeta.SchemePolicy) []httpx.Middleware {
	return []httpx.Middleware{
		authguard.Guard(authorized, loginRedirect()),
		requireCookieSessionSameOrigin(policy),
	}
}

// loginRedirect sends unauthorized page requests to the login page and
// remembers where they were headed.
func loginRedirect() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next := ""
		if r.Method == http.MethodGet && r.URL != nil {
			next = r.URL.RequestURI()
		}
		httpx.WriteRedirect(w, r, routepath.LoginWithNext(next))
	})
}

func requireCookieSessionSameOrigin(policy requestmeta.SchemePolicy) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isMutationMethod(r.Method) {
				next.ServeHTTP(w, r)
				return
			}
			if _, ok := sessioncookie.Read(r); ok && !requestmeta.HasSameOriginProof(r, policy) {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func isMutationMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

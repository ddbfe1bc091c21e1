// Package public serves the unauthenticated entry routes: the root redirect,
// sign-in and sign-out, liveness, and static assets.
package public

import (
	"context"
	"io/fs"
	"net/http"

	"go.uber.org/zap"

	"github.com/louisbranch/typeshelf/internal/services/web/module"
	"github.com/louisbranch/typeshelf/internal/services/web/platform/session"
	"github.com/louisbranch/typeshelf/internal/services/web/platform/sessioncookie"
	"github.com/louisbranch/typeshelf/internal/services/web/routepath"
)

// Sessions verifies and ends signed session tokens.
type Sessions interface {
	VerifySession(ctx context.Context, token string) (session.Principal, error)
	EndSession(ctx context.Context, token string) error
}

// Option configures a public module.
type Option func(*Module)

// WithSessions sets the session verifier used by sign-in and sign-out.
func WithSessions(sessions Sessions) Option {
	return func(m *Module) { m.sessions = sessions }
}

// WithCookiePolicy sets session cookie attributes.
func WithCookiePolicy(policy sessioncookie.Policy) Option {
	return func(m *Module) { m.cookie = policy }
}

// WithSignedIn sets the predicate used by the root redirect.
func WithSignedIn(signedIn module.ResolveSignedIn) Option {
	return func(m *Module) { m.signedIn = signedIn }
}

// WithAssets sets the static asset filesystem.
func WithAssets(assets fs.FS) Option {
	return func(m *Module) { m.assets = assets }
}

// WithLogger sets the module logger.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Module) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// Module provides unauthenticated root and auth routes.
type Module struct {
	sessions Sessions
	cookie   sessioncookie.Policy
	signedIn module.ResolveSignedIn
	assets   fs.FS
	logger   *zap.Logger
}

// New returns a public module configured by opts.
func New(opts ...Option) Module {
	m := Module{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// ID returns a stable module identifier.
func (Module) ID() string { return "public" }

// Mount wires public route handlers.
func (m Module) Mount() (module.Mount, error) {
	mux := http.NewServeMux()
	registerRoutes(mux, newHandlers(m))
	return module.Mount{Prefix: routepath.Root, Handler: mux}, nil
}

func registerRoutes(mux *http.ServeMux, h handlers) {
	if mux == nil {
		return
	}
	mux.HandleFunc(http.MethodGet+" "+routepath.Root+"{$}", h.handleRoot)
	mux.HandleFunc(http.MethodGet+" "+routepath.AppRoot, h.handleRoot)
	mux.HandleFunc(http.MethodGet+" "+routepath.Login, h.handleLoginPage)
	mux.HandleFunc(http.MethodPost+" "+routepath.Login, h.handleLogin)
	mux.HandleFunc(http.MethodPost+" "+routepath.Logout, h.handleLogout)
	mux.HandleFunc(http.MethodGet+" "+routepath.Health, h.handleHealth)
	if h.assets != nil {
		mux.Handle(http.MethodGet+" "+routepath.StaticPrefix, http.StripPrefix(routepath.StaticPrefix, http.FileServerFS(h.assets)))
	}
	mux.HandleFunc(routepath.Root, h.handleNotFound)
}

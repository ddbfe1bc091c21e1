// Package brand serves the brand typography showcase.
package brand

import (
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"go.uber.org/zap"

	"github.com/louisbranch/typeshelf/internal/fonts"
	"github.com/louisbranch/typeshelf/internal/services/web/fontstore"
	"github.com/louisbranch/typeshelf/internal/services/web/module"
	"github.com/louisbranch/typeshelf/internal/services/web/platform/modulehandler"
	"github.com/louisbranch/typeshelf/internal/services/web/platform/requestmeta"
	"github.com/louisbranch/typeshelf/internal/services/web/routepath"
	webtemplates "github.com/louisbranch/typeshelf/internal/services/web/templates"
)

// ViewerFunc builds the presentational component for a font list.
type ViewerFunc func(list []fonts.Font, opts webtemplates.ViewerOptions) templ.Component

// Option configures a brand module.
type Option func(*Module)

// WithStore sets the shared font store.
func WithStore(store fontstore.Source) Option {
	return func(m *Module) { m.store = store }
}

// WithBase sets the handler base for authenticated routes.
func WithBase(b modulehandler.Base) Option {
	return func(m *Module) { m.base = b }
}

// WithLogger sets the module logger.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Module) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithSchemePolicy sets the scheme policy used by the live origin check.
func WithSchemePolicy(p requestmeta.SchemePolicy) Option {
	return func(m *Module) { m.policy = p }
}

// WithViewer replaces the presentational component.
func WithViewer(viewer ViewerFunc) Option {
	return func(m *Module) {
		if viewer != nil {
			m.viewer = viewer
		}
	}
}

// Module provides the brand typography routes.
type Module struct {
	store  fontstore.Source
	base   modulehandler.Base
	logger *zap.Logger
	policy requestmeta.SchemePolicy
	viewer ViewerFunc
}

// New returns a brand module configured by opts.
func New(opts ...Option) Module {
	m := Module{logger: zap.NewNop(), viewer: webtemplates.BrandTypographyViewer}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// ID returns a stable module identifier.
func (Module) ID() string { return "brand" }

// Healthy reports whether the module has a font store.
func (m Module) Healthy() bool { return m.store != nil }

// Mount wires brand route handlers.
func (m Module) Mount() (module.Mount, error) {
	mux := http.NewServeMux()
	h := newHandlers(m)
	registerRoutes(mux, h)
	return module.Mount{Prefix: routepath.BrandPrefix, Handler: mux}, nil
}

func registerRoutes(mux *http.ServeMux, h handlers) {
	if mux == nil {
		return
	}
	mux.HandleFunc(http.MethodGet+" "+strings.TrimSuffix(routepath.BrandPrefix, "/"), h.redirectBrandRoot)
	mux.HandleFunc(http.MethodGet+" "+routepath.AppBrandTypography, h.handleTypography)
	mux.Handle(http.MethodGet+" "+routepath.AppBrandTypographyLive, h.liveServer())
	mux.HandleFunc(routepath.BrandPrefix+"{rest...}", h.WriteNotFound)
}

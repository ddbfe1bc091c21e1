// Package typographysettings serves the typography settings page and the font
// upload actions behind it.
package typographysettings

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/louisbranch/typeshelf/internal/fonts"
	"github.com/louisbranch/typeshelf/internal/services/web/fontstore"
	"github.com/louisbranch/typeshelf/internal/services/web/module"
	"github.com/louisbranch/typeshelf/internal/services/web/platform/modulehandler"
	"github.com/louisbranch/typeshelf/internal/services/web/routepath"
)

// Catalog is the write side of the font catalog used by the upload actions.
type Catalog interface {
	PutFont(ctx context.Context, font fonts.Font, data []byte) (fonts.Font, error)
	DeleteFont(ctx context.Context, fontID string, uploadedBy string) (bool, error)
}

// Option configures a typography settings module.
type Option func(*Module)

// WithStore sets the shared font store.
func WithStore(store fontstore.Source) Option {
	return func(m *Module) { m.store = store }
}

// WithCatalog enables the upload and delete actions.
func WithCatalog(catalog Catalog) Option {
	return func(m *Module) { m.catalog = catalog }
}

// WithBase sets the handler base for authenticated routes.
func WithBase(b modulehandler.Base) Option {
	return func(m *Module) { m.base = b }
}

// WithLogger sets the logger that receives the mount diagnostic.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Module) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// Module provides typography settings routes.
type Module struct {
	store   fontstore.Source
	catalog Catalog
	base    modulehandler.Base
	logger  *zap.Logger
}

// New returns a typography settings module configured by opts.
func New(opts ...Option) Module {
	m := Module{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// ID returns a stable module identifier.
func (Module) ID() string { return "typographysettings" }

// Healthy reports whether the module can render and accept uploads.
func (m Module) Healthy() bool { return m.store != nil && m.catalog != nil }

// Mount wires settings route handlers.
func (m Module) Mount() (module.Mount, error) {
	mux := http.NewServeMux()
	registerRoutes(mux, newHandlers(m))
	return module.Mount{Prefix: routepath.SettingsPrefix, Handler: mux}, nil
}

func registerRoutes(mux *http.ServeMux, h handlers) {
	if mux == nil {
		return
	}
	mux.HandleFunc(http.MethodGet+" "+strings.TrimSuffix(routepath.SettingsPrefix, "/"), h.redirectSettingsRoot)
	mux.HandleFunc(http.MethodGet+" "+routepath.AppSettingsTypography, h.handleSettings)
	mux.HandleFunc(http.MethodPost+" "+routepath.AppSettingsFonts, h.handleUpload)
	mux.HandleFunc(http.MethodPost+" "+routepath.AppSettingsFontDeletePattern, h.handleDelete)
	mux.HandleFunc(routepath.SettingsPrefix+"{rest...}", h.WriteNotFound)
}

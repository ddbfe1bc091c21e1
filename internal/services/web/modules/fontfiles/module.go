// Package fontfiles serves stored font binaries for @font-face rules.
package fontfiles

import (
	"bytes"
	"context"
	"net/http"

	"github.com/louisbranch/typeshelf/internal/fonts"
	"github.com/louisbranch/typeshelf/internal/services/web/module"
	apperrors "github.com/louisbranch/typeshelf/internal/services/web/platform/errors"
	"github.com/louisbranch/typeshelf/internal/services/web/platform/modulehandler"
	"github.com/louisbranch/typeshelf/internal/services/web/routepath"
)

// cacheControl marks binaries immutable; a record's bytes never change.
const cacheControl = "private, max-age=31536000, immutable"

// Catalog reads font binaries.
type Catalog interface {
	FontData(ctx context.Context, fontID string) (fonts.Font, []byte, bool, error)
}

// Option configures a font files module.
type Option func(*Module)

// WithCatalog sets the binary source.
func WithCatalog(catalog Catalog) Option {
	return func(m *Module) { m.catalog = catalog }
}

// WithBase sets the handler base for authenticated routes.
func WithBase(b modulehandler.Base) Option {
	return func(m *Module) { m.base = b }
}

// Module provides font binary routes.
type Module struct {
	catalog Catalog
	base    modulehandler.Base
}

// New returns a font files module configured by opts.
func New(opts ...Option) Module {
	m := Module{}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// ID returns a stable module identifier.
func (Module) ID() string { return "fontfiles" }

// Healthy reports whether the module has a catalog.
func (m Module) Healthy() bool { return m.catalog != nil }

// Mount wires font file handlers.
func (m Module) Mount() (module.Mount, error) {
	mux := http.NewServeMux()
	h := handlers{Base: m.base, catalog: m.catalog}
	mux.HandleFunc(http.MethodGet+" "+routepath.AppFontFilePattern, h.handleFile)
	mux.HandleFunc(routepath.FontsPrefix+"{rest...}", h.WriteNotFound)
	return module.Mount{Prefix: routepath.FontsPrefix, Handler: mux}, nil
}

type handlers struct {
	modulehandler.Base
	catalog Catalog
}

var errCatalogUnavailable = apperrors.E(apperrors.KindUnavailable, "font catalog is not configured")

func (h handlers) handleFile(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		h.WriteError(w, r, errCatalogUnavailable)
		return
	}
	font, data, ok, err := h.catalog.FontData(r.Context(), r.PathValue("fontID"))
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	if !ok {
		h.WriteNotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", font.Format.ContentType())
	w.Header().Set("Cache-Control", cacheControl)
	if font.SHA256 != "" {
		w.Header().Set("ETag", `"`+font.SHA256+`"`)
	}
	http.ServeContent(w, r, font.ID, font.CreatedAt, bytes.NewReader(data))
}

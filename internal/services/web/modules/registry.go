// Package modules builds the web module lists handed to composition.
package modules

import (
	"io/fs"

	"go.uber.org/zap"

	"github.com/louisbranch/typeshelf/internal/services/web/fontstore"
	module "github.com/louisbranch/typeshelf/internal/services/web/module"
	"github.com/louisbranch/typeshelf/internal/services/web/modules/brand"
	"github.com/louisbranch/typeshelf/internal/services/web/modules/fontfiles"
	"github.com/louisbranch/typeshelf/internal/services/web/modules/public"
	"github.com/louisbranch/typeshelf/internal/services/web/modules/typographysettings"
	"github.com/louisbranch/typeshelf/internal/services/web/platform/modulehandler"
	"github.com/louisbranch/typeshelf/internal/services/web/platform/requestmeta"
	"github.com/louisbranch/typeshelf/internal/services/web/platform/sessioncookie"
)

// Module aliases the module interface contract.
type Module = module.Module

// Catalog is the union of the narrow catalog contracts the modules consume.
type Catalog interface {
	typographysettings.Catalog
	fontfiles.Catalog
}

// ModuleResolvers carries request-scoped resolver functions derived from the
// principal resolver.
type ModuleResolvers struct {
	ResolveViewer   module.ResolveViewer
	ResolveSignedIn module.ResolveSignedIn
	ResolveUserID   module.ResolveUserID
	ResolveLanguage module.ResolveLanguage
}

// Dependencies carries the shared collaborators of the web modules. Each
// field is typed as the narrow interface its consumers declare.
type Dependencies struct {
	Store    fontstore.Source
	Catalog  Catalog
	Sessions public.Sessions
	Assets   fs.FS
	Cookie   sessioncookie.Policy
	Scheme   requestmeta.SchemePolicy
	Logger   *zap.Logger
}

// DefaultPublicModules returns the unauthenticated modules.
func DefaultPublicModules(deps Dependencies, res ModuleResolvers) []Module {
	return []Module{
		public.New(
			public.WithSessions(deps.Sessions),
			public.WithCookiePolicy(deps.Cookie),
			public.WithSignedIn(res.ResolveSignedIn),
			public.WithAssets(deps.Assets),
			public.WithLogger(named(deps.Logger, "public")),
		),
	}
}

// DefaultProtectedModules returns the modules mounted under /app/.
func DefaultProtectedModules(deps Dependencies, res ModuleResolvers) []Module {
	base := modulehandler.NewBase(res.ResolveUserID, res.ResolveLanguage, res.ResolveViewer)
	return []Module{
		brand.New(
			brand.WithStore(deps.Store),
			brand.WithBase(base),
			brand.WithSchemePolicy(deps.Scheme),
			brand.WithLogger(named(deps.Logger, "brand")),
		),
		typographysettings.New(
			typographysettings.WithStore(deps.Store),
			typographysettings.WithCatalog(deps.Catalog),
			typographysettings.WithBase(base),
			typographysettings.WithLogger(named(deps.Logger, "typographysettings")),
		),
		fontfiles.New(
			fontfiles.WithCatalog(deps.Catalog),
			fontfiles.WithBase(base),
		),
	}
}

func named(logger *zap.Logger, name string) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger.Named(name)
}

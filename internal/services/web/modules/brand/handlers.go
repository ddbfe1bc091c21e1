package brand

import (
	"context"
	"net/http"
	"net/url"

	"github.com/a-h/templ"
	"go.uber.org/zap"

	"github.com/louisbranch/typeshelf/internal/fonts"
	"github.com/louisbranch/typeshelf/internal/fonts/query"
	"github.com/louisbranch/typeshelf/internal/services/web/fontstore"
	"github.com/louisbranch/typeshelf/internal/services/web/platform/authguard"
	"github.com/louisbranch/typeshelf/internal/services/web/platform/httpx"
	"github.com/louisbranch/typeshelf/internal/services/web/platform/lifecycle"
	"github.com/louisbranch/typeshelf/internal/services/web/platform/modulehandler"
	"github.com/louisbranch/typeshelf/internal/services/web/platform/requestmeta"
	"github.com/louisbranch/typeshelf/internal/services/web/routepath"
	webtemplates "github.com/louisbranch/typeshelf/internal/services/web/templates"
)

const loadEffect = "load-fonts"

type handlers struct {
	modulehandler.Base
	store  fontstore.Source
	logger *zap.Logger
	policy requestmeta.SchemePolicy
	viewer ViewerFunc
}

func newHandlers(m Module) handlers {
	return handlers{Base: m.base, store: m.store, logger: m.logger, policy: m.policy, viewer: m.viewer}
}

func (h handlers) redirectBrandRoot(w http.ResponseWriter, r *http.Request) {
	httpx.WriteRedirect(w, r, routepath.AppBrandTypography)
}

func (h handlers) handleTypography(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		h.WriteError(w, r, errStoreUnavailable)
		return
	}
	mount := lifecycle.NewMount()
	defer mount.Unmount()
	h.requestLoad(r.Context(), mount)

	loc, _ := h.PageLocalizer(w, r)
	view := h.currentView(r, loc)
	title := webtemplates.T(loc, "typography.brand.title")
	fragment := webtemplates.Group(
		webtemplates.PageHeading(title),
		webtemplates.BrandTypographyControls(view.form, loc),
		webtemplates.LiveRegion(liveURL(r), loc, view.component),
	)
	h.WritePage(w, r, title, http.StatusOK, fragment)
}

// requestLoad triggers the store load once per mount, keyed by store identity.
func (h handlers) requestLoad(ctx context.Context, mount *lifecycle.Mount) {
	mount.Effect(loadEffect, h.store, func() func() {
		h.store.LoadFonts(ctx)
		return nil
	})
}

type view struct {
	list      []fonts.Font
	form      webtemplates.QueryForm
	component templ.Component
}

// currentView reads the store's list now and builds the guarded viewer for it.
func (h handlers) currentView(r *http.Request, loc webtemplates.Localizer) view {
	values := url.Values{}
	if r.URL != nil {
		values = r.URL.Query()
	}
	form := webtemplates.QueryForm{
		Filter:  values.Get(routepath.FilterQueryKey),
		OrderBy: values.Get(routepath.OrderByQueryKey),
	}
	list := h.store.Fonts()
	if form.Filter != "" || form.OrderBy != "" {
		shown, err := applyQuery(list, form.Filter, form.OrderBy)
		if err != nil {
			h.logger.Debug("brand typography query rejected", zap.Error(err))
			form.Invalid = true
		} else {
			list = shown
		}
	}
	viewer := h.viewer(list, webtemplates.ViewerOptions{Loc: loc, ViewerID: h.RequestUserID(r)})
	return view{
		list:      list,
		form:      form,
		component: authguard.Protect(h.Authorized(r), viewer, webtemplates.SignInRequired(loc)),
	}
}

func applyQuery(list []fonts.Font, filter string, orderBy string) ([]fonts.Font, error) {
	q, err := query.Parse(filter, orderBy)
	if err != nil {
		return nil, err
	}
	return q.Apply(list)
}

func liveURL(r *http.Request) string {
	target := url.URL{Path: routepath.AppBrandTypographyLive}
	if r != nil && r.URL != nil {
		target.RawQuery = r.URL.RawQuery
	}
	return target.String()
}

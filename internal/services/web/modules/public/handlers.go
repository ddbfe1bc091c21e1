package public

import (
	"errors"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/louisbranch/typeshelf/internal/services/web/module"
	"github.com/louisbranch/typeshelf/internal/services/web/platform/httpx"
	webi18n "github.com/louisbranch/typeshelf/internal/services/web/platform/i18n"
	"github.com/louisbranch/typeshelf/internal/services/web/platform/pagerender"
	"github.com/louisbranch/typeshelf/internal/services/web/platform/session"
	"github.com/louisbranch/typeshelf/internal/services/web/platform/sessioncookie"
	"github.com/louisbranch/typeshelf/internal/services/web/platform/weberror"
	"github.com/louisbranch/typeshelf/internal/services/web/routepath"
	webtemplates "github.com/louisbranch/typeshelf/internal/services/web/templates"
)

type handlers struct {
	sessions Sessions
	cookie   sessioncookie.Policy
	signedIn module.ResolveSignedIn
	assets   fs.FS
	logger   *zap.Logger
}

func newHandlers(m Module) handlers {
	return handlers{
		sessions: m.sessions,
		cookie:   m.cookie,
		signedIn: m.signedIn,
		assets:   m.assets,
		logger:   m.logger,
	}
}

func (h handlers) handleRoot(w http.ResponseWriter, r *http.Request) {
	if h.signedIn != nil && h.signedIn(r) {
		httpx.WriteRedirect(w, r, routepath.AppBrandTypography)
		return
	}
	httpx.WriteRedirect(w, r, routepath.Login)
}

func (h handlers) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	next := routepath.SafeNext(r.URL.Query().Get(routepath.NextQueryKey))
	if h.signedIn != nil && h.signedIn(r) {
		httpx.WriteRedirect(w, r, destination(next))
		return
	}
	h.renderLogin(w, r, http.StatusOK, webtemplates.LoginForm{Next: next, Notice: next != ""})
}

func (h handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderLogin(w, r, http.StatusBadRequest, webtemplates.LoginForm{})
		return
	}
	next := routepath.SafeNext(r.PostForm.Get(routepath.NextQueryKey))
	token := strings.TrimSpace(r.PostForm.Get("token"))
	if h.sessions == nil {
		weberror.WriteAppError(w, r, http.StatusServiceUnavailable, nil)
		return
	}
	principal, err := h.sessions.VerifySession(r.Context(), token)
	if err != nil {
		h.logger.Info("sign-in rejected", zap.Error(err), zap.String("request_id", httpx.RequestIDFrom(r)))
		loc, _ := webi18n.ResolveLocalizer(w, r, nil)
		h.renderLogin(w, r, http.StatusUnauthorized, webtemplates.LoginForm{
			Next:  next,
			Error: webtemplates.T(loc, "auth.login.invalid"),
		})
		return
	}
	sessioncookie.Write(w, r, token, sessioncookie.Policy{
		Scheme: h.cookie.Scheme,
		TTL:    principal.Remaining(time.Now()),
	})
	h.logger.Info("signed in", zap.String("user_id", principal.UserID), zap.String("session_id", principal.SessionID))
	httpx.WriteRedirect(w, r, destination(next))
}

func (h handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token, ok := sessioncookie.Read(r); ok && h.sessions != nil {
		if err := h.sessions.EndSession(r.Context(), token); err != nil && !errors.Is(err, session.ErrInvalid) && !errors.Is(err, session.ErrExpired) {
			h.logger.Warn("end session", zap.Error(err))
		}
	}
	sessioncookie.Clear(w, r, h.cookie)
	httpx.WriteRedirect(w, r, routepath.Login)
}

func (h handlers) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h handlers) handleNotFound(w http.ResponseWriter, r *http.Request) {
	loc, _ := webi18n.ResolveLocalizer(w, r, nil)
	pagerender.WritePublicPage(w, r, webtemplates.AppErrorPageTitle(http.StatusNotFound, loc), http.StatusNotFound,
		webtemplates.AppErrorState(http.StatusNotFound, loc))
}

func (h handlers) renderLogin(w http.ResponseWriter, r *http.Request, status int, form webtemplates.LoginForm) {
	loc, _ := webi18n.ResolveLocalizer(w, r, nil)
	pagerender.WritePublicPage(w, r, webtemplates.T(loc, "auth.login.title"), status, webtemplates.LoginPage(form, loc))
}

func destination(next string) string {
	if next != "" {
		return next
	}
	return routepath.AppBrandTypography
}

package web

import (
	"context"
	"net/http"
	"sync"

	"go.uber.org/zap"

	module "github.com/louisbranch/typeshelf/internal/services/web/module"
	"github.com/louisbranch/typeshelf/internal/services/web/platform/authguard"
	"github.com/louisbranch/typeshelf/internal/services/web/platform/httpx"
	"github.com/louisbranch/typeshelf/internal/services/web/platform/session"
	"github.com/louisbranch/typeshelf/internal/services/web/platform/sessioncookie"
)

type requestPrincipalState struct {
	once      sync.Once
	principal session.Principal
	ok        bool
}

type requestPrincipalStateKey struct{}

type sessionVerifier interface {
	VerifySession(ctx context.Context, token string) (session.Principal, error)
}

type principalResolver struct {
	sessions sessionVerifier
	logger   *zap.Logger
}

func newPrincipalResolver(sessions sessionVerifier, logger *zap.Logger) principalResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return principalResolver{sessions: sessions, logger: logger}
}

func (r principalResolver) resolvePrincipalUncached(req *http.Request) (session.Principal, bool) {
	if req == nil || r.sessions == nil {
		return session.Principal{}, false
	}
	token, ok := sessioncookie.Read(req)
	if !ok {
		return session.Principal{}, false
	}
	principal, err := r.sessions.VerifySession(req.Context(), token)
	if err != nil {
		r.logger.Debug("session cookie rejected", zap.Error(err))
		return session.Principal{}, false
	}
	return principal, principal.UserID != ""
}

// resolvePrincipal verifies the session cookie at most once per request.
func (r principalResolver) resolvePrincipal(req *http.Request) (session.Principal, bool) {
	if state := requestPrincipalStateFromRequest(req); state != nil {
		state.once.Do(func() {
			state.principal, state.ok = r.resolvePrincipalUncached(req)
		})
		return state.principal, state.ok
	}
	return r.resolvePrincipalUncached(req)
}

func (r principalResolver) resolveRequestUserID(req *http.Request) string {
	principal, ok := r.resolvePrincipal(req)
	if !ok {
		return ""
	}
	return principal.UserID
}

func (r principalResolver) resolveSignedIn(req *http.Request) bool {
	_, ok := r.resolvePrincipal(req)
	return ok
}

func (r principalResolver) resolveViewer(req *http.Request) module.Viewer {
	principal, ok := r.resolvePrincipal(req)
	if !ok {
		return module.Viewer{}
	}
	return module.Viewer{UserID: principal.UserID, DisplayName: principal.UserID}
}

func (r principalResolver) authRequired() authguard.Predicate {
	return r.resolveSignedIn
}

func withRequestPrincipalState() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		if next == nil {
			next = http.NotFoundHandler()
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r == nil {
				next.ServeHTTP(w, r)
				return
			}
			state := &requestPrincipalState{}
			ctx := context.WithValue(r.Context(), requestPrincipalStateKey{}, state)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func requestPrincipalStateFromRequest(r *http.Request) *requestPrincipalState {
	if r == nil {
		return nil
	}
	state, _ := r.Context().Value(requestPrincipalStateKey{}).(*requestPrincipalState)
	return state
}

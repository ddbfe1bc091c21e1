// Package sessioncookie reads and writes the signed session token cookie.
package sessioncookie

import (
	"net/http"
	"strings"
	"time"

	"github.com/louisbranch/typeshelf/internal/services/web/platform/requestmeta"
)

// Name is the session cookie name.
const Name = "web_session"

// Policy controls cookie attributes derived from deployment settings.
type Policy struct {
	Scheme requestmeta.SchemePolicy
	// TTL bounds the browser-side cookie lifetime; zero writes a session cookie.
	TTL time.Duration
}

// Read returns the trimmed session token when present.
func Read(r *http.Request) (string, bool) {
	if r == nil {
		return "", false
	}
	cookie, err := r.Cookie(Name)
	if err != nil {
		return "", false
	}
	value := strings.TrimSpace(cookie.Value)
	return value, value != ""
}

// Write sets the session cookie to token.
func Write(w http.ResponseWriter, r *http.Request, token string, policy Policy) {
	if w == nil {
		return
	}
	cookie := base(r, policy)
	cookie.Value = strings.TrimSpace(token)
	if policy.TTL > 0 {
		cookie.MaxAge = int(policy.TTL / time.Second)
	}
	http.SetCookie(w, cookie)
}

// Clear expires the session cookie.
func Clear(w http.ResponseWriter, r *http.Request, policy Policy) {
	if w == nil {
		return
	}
	cookie := base(r, policy)
	cookie.MaxAge = -1
	http.SetCookie(w, cookie)
}

func base(r *http.Request, policy Policy) *http.Cookie {
	return &http.Cookie{
		Name:     Name,
		Path:     "/",
		HttpOnly: true,
		Secure:   requestmeta.IsHTTPS(r, policy.Scheme),
		SameSite: http.SameSiteLaxMode,
	}
}

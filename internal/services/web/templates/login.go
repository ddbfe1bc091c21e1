package templates

import (
	"context"

	"github.com/a-h/templ"

	"github.com/louisbranch/typeshelf/internal/services/web/routepath"
)

// LoginForm is the state of the sign-in form.
type LoginForm struct {
	Next  string
	Error string
	// Notice is shown when the visitor was redirected from a guarded page.
	Notice bool
}

// LoginPage renders the session token sign-in form.
func LoginPage(form LoginForm, loc Localizer) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.raw(`<section class="login"><h1>`)
		h.text(T(loc, "auth.login.title"))
		h.raw("</h1>")
		if form.Notice {
			h.raw(`<p class="notice" role="status">`)
			h.text(T(loc, "auth.guard.required"))
			h.raw("</p>")
		}
		if form.Error != "" {
			h.raw(`<p class="error" role="alert">`)
			h.text(form.Error)
			h.raw("</p>")
		}
		h.raw(`<form method="post"`)
		h.attr("action", routepath.Login)
		h.raw(`><input type="hidden"`)
		h.attr("name", routepath.NextQueryKey)
		h.attr("value", form.Next)
		h.raw("><label>")
		h.text(T(loc, "auth.login.token_label"))
		h.raw(`<textarea name="token" rows="4" required autocomplete="off"></textarea></label><p class="help">`)
		h.text(T(loc, "auth.login.help"))
		h.raw(`</p><button type="submit">`)
		h.text(T(loc, "auth.login.submit"))
		h.raw("</button></form></section>")
	})
}

// Package i18n resolves the request locale for web pages.
package i18n

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	platformi18n "github.com/louisbranch/typeshelf/internal/platform/i18n"
)

const (
	// LangParam is the query parameter used to select a language.
	LangParam = "lang"
	// LangCookieName stores the user's language preference.
	LangCookieName = "ts_lang"

	langCookieMaxAge = 365 * 24 * time.Hour
)

// LanguageOption is one entry of the language switcher.
type LanguageOption struct {
	Tag    string
	Label  string
	URL    string
	Active bool
}

// Localizer provides translated strings for templates.
type Localizer interface {
	Sprintf(key message.Reference, args ...any) string
}

// Printer returns a message printer for tag.
func Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag)
}

// ResolveTag picks the request locale from the lang query param, the
// preference cookie, then Accept-Language. The bool reports whether the query
// param chose it and should be persisted.
func ResolveTag(r *http.Request) (language.Tag, bool) {
	if r == nil {
		return platformi18n.DefaultTag(), false
	}
	if r.URL != nil {
		if tag, ok := platformi18n.ParseTag(r.URL.Query().Get(LangParam)); ok {
			return tag, true
		}
	}
	if cookie, err := r.Cookie(LangCookieName); err == nil {
		if tag, ok := platformi18n.ParseTag(cookie.Value); ok {
			return tag, false
		}
	}
	if accept := strings.TrimSpace(r.Header.Get("Accept-Language")); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil {
			return platformi18n.MatchTags(tags), false
		}
	}
	return platformi18n.DefaultTag(), false
}

// ResolveLocalizer returns a printer and tag string for the request. A
// non-empty resolveLanguage result wins over request negotiation; a lang
// query param is persisted as a cookie.
func ResolveLocalizer(w http.ResponseWriter, r *http.Request, resolveLanguage func(*http.Request) string) (*message.Printer, string) {
	tag := resolveRequestTag(w, r, resolveLanguage)
	return Printer(tag), tag.String()
}

// ResolveRequestTag is ResolveTag with an optional preference override and no
// cookie write.
func ResolveRequestTag(r *http.Request, resolveLanguage func(*http.Request) string) language.Tag {
	return resolveRequestTag(nil, r, resolveLanguage)
}

func resolveRequestTag(w http.ResponseWriter, r *http.Request, resolveLanguage func(*http.Request) string) language.Tag {
	if resolveLanguage != nil && r != nil {
		if tag, ok := platformi18n.ParseTag(resolveLanguage(r)); ok {
			return tag
		}
	}
	tag, persist := ResolveTag(r)
	if persist && w != nil {
		SetLanguageCookie(w, tag)
	}
	return tag
}

// SetLanguageCookie persists tag as the preferred language.
func SetLanguageCookie(w http.ResponseWriter, tag language.Tag) {
	if w == nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     LangCookieName,
		Value:    tag.String(),
		Path:     "/",
		MaxAge:   int(langCookieMaxAge / time.Second),
		SameSite: http.SameSiteLaxMode,
	})
}

// LanguageURL returns path with the lang param set to tag.
func LanguageURL(path string, rawQuery string, tag string) string {
	if strings.TrimSpace(path) == "" {
		path = "/"
	}
	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		query = url.Values{}
	}
	query.Set(LangParam, tag)
	return (&url.URL{Path: path, RawQuery: query.Encode()}).String()
}

// LanguageOptions lists the served locales with the active one marked.
func LanguageOptions(active language.Tag, printer *message.Printer, path string, rawQuery string) []LanguageOption {
	tags := platformi18n.SupportedTags()
	options := make([]LanguageOption, 0, len(tags))
	for _, tag := range tags {
		label := tag.String()
		if printer != nil {
			label = printer.Sprintf(LanguageKey(tag))
		}
		options = append(options, LanguageOption{
			Tag:    tag.String(),
			Label:  label,
			URL:    LanguageURL(path, rawQuery, tag.String()),
			Active: tag == active,
		})
	}
	return options
}

// LanguageKey returns the catalog key naming tag.
func LanguageKey(tag language.Tag) string {
	base, _ := tag.Base()
	switch base.String() {
	case "pt":
		return "core.lang.pt_br"
	case "en":
		return "core.lang.en"
	}
	return tag.String()
}

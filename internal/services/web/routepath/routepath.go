// Package routepath stores canonical HTTP paths for web modules.
package routepath

import (
	"net/url"
	"strings"
)

const (
	Root         = "/"
	Login        = "/login"
	Logout       = "/logout"
	Health       = "/up"
	StaticPrefix = "/static/"
	AppPrefix    = "/app/"
	AppRoot      = "/app"

	BrandPrefix                  = "/app/brand/"
	AppBrandTypography           = "/app/brand/typography"
	AppBrandTypographyLive       = "/app/brand/typography/live"
	SettingsPrefix               = "/app/settings/"
	AppSettingsTypography        = "/app/settings/typography"
	AppSettingsFonts             = "/app/settings/typography/fonts"
	AppSettingsFontDeletePattern = AppSettingsFonts + "/{fontID}/delete"
	FontsPrefix                  = "/app/fonts/"
	AppFontFilePattern           = FontsPrefix + "{fontID}/file"

	// FilterQueryKey and OrderByQueryKey carry catalog query expressions.
	FilterQueryKey  = "filter"
	OrderByQueryKey = "order_by"
	// NextQueryKey carries the post-login destination.
	NextQueryKey = "next"
	// UploadedQueryKey names the font shown in the post-upload notice.
	UploadedQueryKey = "uploaded"
)

// AppFontFile returns the binary download path for a font.
func AppFontFile(fontID string) string {
	return FontsPrefix + escapeSegment(fontID) + "/file"
}

// AppSettingsFontDelete returns the delete action path for a font.
func AppSettingsFontDelete(fontID string) string {
	return AppSettingsFonts + "/" + escapeSegment(fontID) + "/delete"
}

// LoginWithNext returns the login path that returns to next after sign-in.
func LoginWithNext(next string) string {
	next = SafeNext(next)
	if next == "" {
		return Login
	}
	return Login + "?" + url.Values{NextQueryKey: {next}}.Encode()
}

// SafeNext accepts only local app paths as redirect targets.
func SafeNext(next string) string {
	next = strings.TrimSpace(next)
	if !strings.HasPrefix(next, AppPrefix) || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return ""
	}
	return next
}

func escapeSegment(raw string) string {
	return url.PathEscape(strings.TrimSpace(raw))
}

package weberror

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	_ "github.com/louisbranch/typeshelf/internal/platform/i18n"
	apperrors "github.com/louisbranch/typeshelf/internal/services/web/platform/errors"
)

func TestShouldRenderAppError(t *testing.T) {
	t.Parallel()

	for status, want := range map[int]bool{
		http.StatusNotFound:            true,
		http.StatusInternalServerError: true,
		http.StatusServiceUnavailable:  true,
		http.StatusBadRequest:          false,
		http.StatusConflict:            false,
	} {
		if got := ShouldRenderAppError(status); got != want {
			t.Fatalf("ShouldRenderAppError(%d) = %v, want %v", status, got, want)
		}
	}
}

func TestPublicMessage(t *testing.T) {
	t.Parallel()

	loc := message.NewPrinter(language.AmericanEnglish)
	if got := PublicMessage(loc, apperrors.EK(apperrors.KindTooLarge, "error.font.too_large", "413 internal")); got != "Font files must be 8 MiB or smaller." {
		t.Fatalf("localized = %q", got)
	}
	if got := PublicMessage(loc, errors.New("db exploded")); got != http.StatusText(http.StatusInternalServerError) {
		t.Fatalf("unknown error = %q", got)
	}
	if got := PublicMessage(loc, nil); got != "" {
		t.Fatalf("nil error = %q", got)
	}
}

func TestWriteModuleErrorRendersAppShellForNotFound(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	WriteModuleError(rr, httptest.NewRequest(http.MethodGet, "/app/fonts/x/file", nil), apperrors.E(apperrors.KindNotFound, "font x"), nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "<!doctype html>") || !strings.Contains(body, `data-status="404"`) {
		t.Fatalf("body = %q", body)
	}
	if strings.Contains(body, "font x") {
		t.Fatalf("internal message leaked: %q", body)
	}
}

func TestWriteModuleErrorPlainForClientErrors(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	WriteModuleError(rr, httptest.NewRequest(http.MethodPost, "/app/settings/typography/fonts", nil), apperrors.EK(apperrors.KindConflict, "error.font.duplicate", "dup"), nil)
	if rr.Code != http.StatusConflict {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "This font is already in the catalog.") {
		t.Fatalf("body = %q", rr.Body.String())
	}
}

func TestWriteAppErrorHTMXFragment(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/app/brand/typography", nil)
	req.Header.Set("HX-Request", "true")
	rr := httptest.NewRecorder()
	WriteAppError(rr, req, http.StatusBadGateway, nil)
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "<html") {
		t.Fatalf("expected fragment: %q", rr.Body.String())
	}
}

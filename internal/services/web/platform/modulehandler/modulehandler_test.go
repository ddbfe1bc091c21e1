package modulehandler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"golang.org/x/text/language"

	module "github.com/louisbranch/typeshelf/internal/services/web/module"
)

func TestBaseResolversAreNilSafe(t *testing.T) {
	t.Parallel()

	var base Base
	req := httptest.NewRequest(http.MethodGet, "/app/brand/typography", nil)
	if got := base.ResolveRequestViewer(req); got != (module.Viewer{}) {
		t.Fatalf("viewer = %+v", got)
	}
	if base.ResolveRequestLanguage(req) != "" || base.RequestUserID(req) != "" || base.Authorized(req) {
		t.Fatal("zero base should resolve nothing")
	}
}

func TestBaseUsesInjectedResolvers(t *testing.T) {
	t.Parallel()

	base := NewBase(
		func(*http.Request) string { return "  user-1 " },
		func(*http.Request) string { return "pt-BR" },
		func(*http.Request) module.Viewer { return module.Viewer{UserID: "user-1", DisplayName: "Ana"} },
	)
	req := httptest.NewRequest(http.MethodGet, "/app/brand/typography", nil)
	if got := base.RequestUserID(req); got != "user-1" {
		t.Fatalf("user = %q", got)
	}
	if !base.Authorized(req) {
		t.Fatal("expected authorized")
	}
	if got := base.RequestLocaleTag(req); got != language.BrazilianPortuguese {
		t.Fatalf("tag = %v", got)
	}
	if _, lang := base.PageLocalizer(httptest.NewRecorder(), req); lang != "pt-BR" {
		t.Fatalf("lang = %q", lang)
	}
}

func TestWritePageFallsBackToErrorOnRenderFailure(t *testing.T) {
	t.Parallel()

	base := NewTestBase("user-1")
	rr := httptest.NewRecorder()
	base.WritePage(rr, httptest.NewRequest(http.MethodGet, "/app/brand/typography", nil), "Brand", http.StatusOK,
		templ.ComponentFunc(func(context.Context, io.Writer) error { return errors.New("render failed") }))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestWriteNotFound(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	NewTestBase("user-1").WriteNotFound(rr, httptest.NewRequest(http.MethodGet, "/app/nope", nil))
	if rr.Code != http.StatusNotFound || !strings.Contains(rr.Body.String(), `data-status="404"`) {
		t.Fatalf("response = %d %q", rr.Code, rr.Body.String())
	}
}

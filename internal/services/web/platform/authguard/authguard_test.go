package authguard

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/a-h/templ"
)

func TestGuardRoutesByPredicate(t *testing.T) {
	t.Parallel()

	protected := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "secret")
	})
	allow := func(r *http.Request) bool { return r.Header.Get("X-Allow") == "yes" }
	h := Guard(allow, RedirectTo("/login"))(protected)

	denied := httptest.NewRecorder()
	h.ServeHTTP(denied, httptest.NewRequest(http.MethodGet, "/app/brand/typography", nil))
	if denied.Code != http.StatusFound || denied.Header().Get("Location") != "/login" {
		t.Fatalf("denied response = %d %q", denied.Code, denied.Header().Get("Location"))
	}
	if bytes.Contains(denied.Body.Bytes(), []byte("secret")) {
		t.Fatal("protected handler ran for denied request")
	}

	req := httptest.NewRequest(http.MethodGet, "/app/brand/typography", nil)
	req.Header.Set("X-Allow", "yes")
	allowed := httptest.NewRecorder()
	h.ServeHTTP(allowed, req)
	if allowed.Code != http.StatusOK || allowed.Body.String() != "secret" {
		t.Fatalf("allowed response = %d %q", allowed.Code, allowed.Body.String())
	}
}

func TestGuardNilPredicateDenies(t *testing.T) {
	t.Parallel()

	ran := false
	h := Guard(nil, nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { ran = true }))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if ran || rr.Code != http.StatusUnauthorized {
		t.Fatalf("ran=%v status=%d", ran, rr.Code)
	}
}

func TestRedirectToUsesHXRedirectForHTMX(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/app/settings/typography", nil)
	req.Header.Set("HX-Request", "true")
	rr := httptest.NewRecorder()
	RedirectTo("/login").ServeHTTP(rr, req)
	if rr.Header().Get("HX-Redirect") != "/login" {
		t.Fatalf("HX-Redirect = %q", rr.Header().Get("HX-Redirect"))
	}
}

func TestProtect(t *testing.T) {
	t.Parallel()

	rendered := 0
	child := templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		rendered++
		_, err := io.WriteString(w, "child")
		return err
	})
	fallback := templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, "fallback")
		return err
	})

	tests := []struct {
		name       string
		authorized bool
		want       string
		wantRender int
	}{
		{name: "authorized", authorized: true, want: "child", wantRender: 1},
		{name: "unauthorized", authorized: false, want: "fallback", wantRender: 0},
	}
	for _, tc := range tests {
		rendered = 0
		var buf bytes.Buffer
		if err := Protect(tc.authorized, child, fallback).Render(context.Background(), &buf); err != nil {
			t.Fatalf("%s: render: %v", tc.name, err)
		}
		if buf.String() != tc.want || rendered != tc.wantRender {
			t.Fatalf("%s: output=%q rendered=%d", tc.name, buf.String(), rendered)
		}
	}

	var buf bytes.Buffer
	if err := Protect(false, child, nil).Render(context.Background(), &buf); err != nil || buf.Len() != 0 {
		t.Fatalf("nil fallback output=%q err=%v", buf.String(), err)
	}
}

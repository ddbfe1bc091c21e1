package requestmeta

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHasSameOriginProof(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		host    string
		origin  string
		referer string
		proto   string
		policy  SchemePolicy
		want    bool
	}{
		{name: "matching origin", host: "example.com", origin: "http://example.com", want: true},
		{name: "explicit default port", host: "example.com:80", origin: "http://example.com", want: true},
		{name: "referer fallback", host: "example.com", referer: "http://example.com/app/settings/typography", want: true},
		{name: "foreign origin", host: "example.com", origin: "http://evil.test", want: false},
		{name: "port mismatch", host: "example.com:8080", origin: "http://example.com", want: false},
		{name: "scheme mismatch", host: "example.com", origin: "https://example.com", want: false},
		{name: "no proof", host: "example.com", want: false},
		{name: "forwarded proto ignored", host: "example.com", origin: "https://example.com", proto: "https", want: false},
		{name: "forwarded proto trusted", host: "example.com", origin: "https://example.com", proto: "https", policy: SchemePolicy{TrustForwardedProto: true}, want: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodPost, "/app/x", nil)
			req.Host = tc.host
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			if tc.referer != "" {
				req.Header.Set("Referer", tc.referer)
			}
			if tc.proto != "" {
				req.Header.Set("X-Forwarded-Proto", tc.proto)
			}
			if got := HasSameOriginProof(req, tc.policy); got != tc.want {
				t.Fatalf("HasSameOriginProof() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestIsHTTPS(t *testing.T) {
	t.Parallel()

	plain := httptest.NewRequest(http.MethodGet, "/", nil)
	if IsHTTPS(plain, SchemePolicy{}) {
		t.Fatal("plain request reported as https")
	}
	secure := httptest.NewRequest(http.MethodGet, "/", nil)
	secure.TLS = &tls.ConnectionState{}
	if !IsHTTPS(secure, SchemePolicy{}) {
		t.Fatal("tls request not reported as https")
	}
	if IsHTTPS(nil, SchemePolicy{}) {
		t.Fatal("nil request reported as https")
	}
}

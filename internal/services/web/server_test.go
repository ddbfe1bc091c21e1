package web

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/image/font/gofont/goregular"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/louisbranch/typeshelf/internal/fonts"
	"github.com/louisbranch/typeshelf/internal/fonts/query"
	platformgrpc "github.com/louisbranch/typeshelf/internal/platform/grpc"
	"github.com/louisbranch/typeshelf/internal/services/web/platform/session"
	"github.com/louisbranch/typeshelf/internal/services/web/platform/sessioncookie"
	"github.com/louisbranch/typeshelf/internal/services/web/routepath"
	webstorage "github.com/louisbranch/typeshelf/internal/services/web/storage"
	redisstore "github.com/louisbranch/typeshelf/internal/services/web/storage/redis"
	"github.com/louisbranch/typeshelf/internal/services/web/storage/sqlite"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type testEnv struct {
	server   *httptest.Server
	client   *http.Client
	sessions *session.Manager
	catalog  *sqlite.Store
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	catalog, err := sqlite.Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("open catalog: %v", err)
	}
	t.Cleanup(func() { _ = catalog.Close() })

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	t.Cleanup(mr.Close)
	cache := redisstore.NewStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "test", time.Minute)
	t.Cleanup(func() { _ = cache.Close() })

	manager, err := session.NewManager(session.Config{Secret: []byte(testSecret)})
	if err != nil {
		t.Fatalf("new session manager: %v", err)
	}
	handler, err := NewHandler(Config{
		Catalog:     catalog,
		Cache:       cache,
		Revocations: cache,
		Sessions:    manager,
	})
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := srv.Client()
	client.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }
	return testEnv{server: srv, client: client, sessions: manager, catalog: catalog}
}

func (e testEnv) do(t *testing.T, method string, path string, token string, body io.Reader, contentType string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, e.server.URL+path, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: sessioncookie.Name, Value: token})
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if method != http.MethodGet {
		req.Header.Set("Origin", e.server.URL)
	}
	resp, err := e.client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (e testEnv) issue(t *testing.T, userID string) string {
	t.Helper()
	token, _, err := e.sessions.Issue(userID)
	if err != nil {
		t.Fatalf("issue session: %v", err)
	}
	return token
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(data)
}

func TestNewHandlerRequiresCollaborators(t *testing.T) {
	t.Parallel()

	if _, err := NewHandler(Config{}); err == nil {
		t.Fatal("expected error without catalog")
	}
}

func TestProtectedPageRedirectsToLogin(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	resp := env.do(t, http.MethodGet, routepath.AppBrandTypography, "", nil, "")
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusFound)
	}
	if got, want := resp.Header.Get("Location"), routepath.LoginWithNext(routepath.AppBrandTypography); got != want {
		t.Fatalf("Location = %q, want %q", got, want)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Fatal("missing request id header")
	}
}

func TestSignInThenRenderBrandPage(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	token := env.issue(t, "user-1")

	form := url.Values{"token": {token}, routepath.NextQueryKey: {routepath.AppBrandTypography}}
	resp := env.do(t, http.MethodPost, routepath.Login, "", strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("login status = %d, want %d", resp.StatusCode, http.StatusSeeOther)
	}
	var cookie string
	for _, c := range resp.Cookies() {
		if c.Name == sessioncookie.Name {
			cookie = c.Value
		}
	}
	if cookie != token {
		t.Fatalf("session cookie = %q, want issued token", cookie)
	}

	resp = env.do(t, http.MethodGet, routepath.AppBrandTypography, cookie, nil, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("brand status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if body := readBody(t, resp); !strings.Contains(body, `id="brand-typography-viewer"`) {
		t.Fatalf("brand page missing viewer: %s", body)
	}
}

func TestUploadAppearsOnBrandPage(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	token := env.issue(t, "user-1")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("font", "goregular.ttf")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(goregular.TTF); err != nil {
		t.Fatalf("write font: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	resp := env.do(t, http.MethodPost, routepath.AppSettingsFonts, token, &body, mw.FormDataContentType())
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("upload status = %d, want %d: %s", resp.StatusCode, http.StatusSeeOther, readBody(t, resp))
	}

	deadline := time.Now().Add(3 * time.Second)
	for {
		page := readBody(t, env.do(t, http.MethodGet, routepath.AppBrandTypography, token, nil, ""))
		if strings.Contains(page, `class="font-card"`) && strings.Contains(page, "Go Regular") {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("uploaded font never appeared: %s", page)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestMutationWithoutSameOriginIsForbidden(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	token := env.issue(t, "user-1")

	req, err := http.NewRequest(http.MethodPost, env.server.URL+routepath.AppSettingsFontDelete("font-1"), nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.AddCookie(&http.Cookie{Name: sessioncookie.Name, Value: token})
	req.Header.Set("Origin", "https://evil.example")
	resp, err := env.client.Do(req)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusForbidden)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	token := env.issue(t, "user-1")

	if resp := env.do(t, http.MethodGet, routepath.AppSettingsTypography, token, nil, ""); resp.StatusCode != http.StatusOK {
		t.Fatalf("settings status before logout = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	resp := env.do(t, http.MethodPost, routepath.Logout, token, nil, "")
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("logout status = %d, want %d", resp.StatusCode, http.StatusSeeOther)
	}
	resp = env.do(t, http.MethodGet, routepath.AppSettingsTypography, token, nil, "")
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("settings status after logout = %d, want %d", resp.StatusCode, http.StatusFound)
	}
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func TestHealthReporterFollowsCatalog(t *testing.T) {
	t.Parallel()

	reporter, err := newHealthReporter("127.0.0.1:0", stubPinger{}, 20*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("newHealthReporter() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- reporter.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	conn, err := platformgrpc.Dial(reporter.Addr())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer waitCancel()
	if err := platformgrpc.WaitForHealth(waitCtx, conn, FontsHealthService, nil); err != nil {
		t.Fatalf("WaitForHealth() error = %v", err)
	}
	status, err := platformgrpc.CheckHealth(waitCtx, grpc_health_v1.NewHealthClient(conn), FontsHealthService)
	if err != nil {
		t.Fatalf("CheckHealth() error = %v", err)
	}
	if status != grpc_health_v1.HealthCheckResponse_SERVING {
		t.Fatalf("status = %v, want SERVING", status)
	}
}

func TestHealthReporterNotServingWhenCatalogFails(t *testing.T) {
	t.Parallel()

	reporter, err := newHealthReporter("127.0.0.1:0", stubPinger{err: errors.New("disk gone")}, 20*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("newHealthReporter() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- reporter.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	conn, err := platformgrpc.Dial(reporter.Addr())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	client := grpc_health_v1.NewHealthClient(conn)
	deadline := time.Now().Add(3 * time.Second)
	for {
		status, err := platformgrpc.CheckHealth(context.Background(), client, FontsHealthService)
		if err == nil {
			if status != grpc_health_v1.HealthCheckResponse_NOT_SERVING {
				t.Fatalf("status = %v, want NOT_SERVING", status)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("CheckHealth() error = %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

// heldCatalog blocks ListFonts until release is closed. Other catalog
// methods are not reached by these tests.
type heldCatalog struct {
	webstorage.FontCatalog
	started chan struct{}
	release chan struct{}
}

func (c heldCatalog) ListFonts(context.Context, query.Query) ([]fonts.Font, error) {
	close(c.started)
	<-c.release
	return nil, nil
}

func TestServerCloseWaitsForFontLoads(t *testing.T) {
	t.Parallel()

	manager, err := session.NewManager(session.Config{Secret: []byte(testSecret)})
	if err != nil {
		t.Fatalf("new session manager: %v", err)
	}
	catalog := heldCatalog{started: make(chan struct{}), release: make(chan struct{})}
	srv, err := NewServer(context.Background(), Config{
		HTTPAddr: "127.0.0.1:0",
		Catalog:  catalog,
		Sessions: manager,
	})
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}

	srv.store.LoadFonts(context.Background())
	<-catalog.started

	closed := make(chan struct{})
	go func() {
		srv.Close()
		close(closed)
	}()
	select {
	case <-closed:
		t.Fatal("Close returned while a catalog read was in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(catalog.release)
	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not return after the catalog read finished")
	}
}

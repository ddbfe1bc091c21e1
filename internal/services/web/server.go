// Package web hosts the browser-facing typeshelf service.
package web

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/louisbranch/typeshelf/internal/platform/timeouts"
	webapp "github.com/louisbranch/typeshelf/internal/services/web/app"
	"github.com/louisbranch/typeshelf/internal/services/web/fontstore"
	"github.com/louisbranch/typeshelf/internal/services/web/modules"
	"github.com/louisbranch/typeshelf/internal/services/web/platform/httpx"
	"github.com/louisbranch/typeshelf/internal/services/web/platform/observability"
	"github.com/louisbranch/typeshelf/internal/services/web/platform/requestmeta"
	"github.com/louisbranch/typeshelf/internal/services/web/platform/session"
	"github.com/louisbranch/typeshelf/internal/services/web/platform/sessioncookie"
	webstatic "github.com/louisbranch/typeshelf/internal/services/web/static"
	webstorage "github.com/louisbranch/typeshelf/internal/services/web/storage"
)

// Config defines startup inputs for the web service.
type Config struct {
	HTTPAddr string
	// GRPCAddr serves grpc.health.v1 when set.
	GRPCAddr string

	Catalog     webstorage.FontCatalog
	Cache       webstorage.FontListCache
	Revocations webstorage.SessionRevocations
	Sessions    *session.Manager

	RequestSchemePolicy requestmeta.SchemePolicy
	ReadinessInterval   time.Duration
	Logger              *zap.Logger
	// Assets overrides the embedded static files.
	Assets fs.FS
}

// Server hosts the web HTTP surface and lifecycle.
type Server struct {
	httpAddr   string
	httpServer *http.Server
	health     *healthReporter
	store      *fontstore.Store
	logger     *zap.Logger
}

// NewHandler builds the root handler from the default module registry.
func NewHandler(cfg Config) (http.Handler, error) {
	h, _, err := newHandler(cfg)
	return h, err
}

func newHandler(cfg Config) (http.Handler, *fontstore.Store, error) {
	if cfg.Catalog == nil {
		return nil, nil, errors.New("font catalog is required")
	}
	if cfg.Sessions == nil {
		return nil, nil, errors.New("session manager is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	storeOpts := []fontstore.Option{fontstore.WithLogger(logger.Named("fontstore"))}
	if cfg.Cache != nil {
		storeOpts = append(storeOpts, fontstore.WithCache(cfg.Cache))
	}
	store := fontstore.New(cfg.Catalog, storeOpts...)

	sessions := newSessionService(cfg.Sessions, cfg.Revocations)
	principal := newPrincipalResolver(sessions, logger.Named("principal"))
	assets := cfg.Assets
	if assets == nil {
		assets = webstatic.FS
	}
	deps := modules.Dependencies{
		Store:    store,
		Catalog:  cfg.Catalog,
		Sessions: sessions,
		Assets:   assets,
		Cookie:   sessioncookie.Policy{Scheme: cfg.RequestSchemePolicy, TTL: cfg.Sessions.TTL()},
		Scheme:   cfg.RequestSchemePolicy,
		Logger:   logger,
	}
	resolvers := modules.ModuleResolvers{
		ResolveViewer:   principal.resolveViewer,
		ResolveSignedIn: principal.resolveSignedIn,
		ResolveUserID:   principal.resolveRequestUserID,
	}
	h, err := webapp.Compose(webapp.ComposeInput{
		Authorized:          principal.authRequired(),
		PublicModules:       modules.DefaultPublicModules(deps, resolvers),
		ProtectedModules:    modules.DefaultProtectedModules(deps, resolvers),
		RequestSchemePolicy: cfg.RequestSchemePolicy,
	})
	if err != nil {
		return nil, nil, err
	}
	return httpx.Chain(h,
		httpx.RecoverPanic(logger),
		httpx.RequestID(),
		withRequestPrincipalState(),
		observability.RequestLogger(logger.Named("http")),
	), store, nil
}

// NewServer validates config and constructs a web server.
func NewServer(_ context.Context, cfg Config) (*Server, error) {
	httpAddr := strings.TrimSpace(cfg.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	handler, store, err := newHandler(cfg)
	if err != nil {
		return nil, fmt.Errorf("compose web handler: %w", err)
	}
	var health *healthReporter
	if addr := strings.TrimSpace(cfg.GRPCAddr); addr != "" {
		health, err = newHealthReporter(addr, cfg.Catalog, cfg.ReadinessInterval, logger.Named("health"))
		if err != nil {
			return nil, fmt.Errorf("init health server: %w", err)
		}
	}
	return &Server{
		httpAddr: httpAddr,
		httpServer: &http.Server{
			Addr:              httpAddr,
			Handler:           handler,
			ReadHeaderTimeout: timeouts.ReadHeader,
		},
		health: health,
		store:  store,
		logger: logger,
	}, nil
}

// ListenAndServe serves HTTP traffic until context cancellation or server stop.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("web server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	healthDone := make(chan error, 1)
	if s.health != nil {
		go func() { healthDone <- s.health.Run(ctx) }()
	} else {
		close(healthDone)
	}

	serveErr := make(chan error, 1)
	go func() {
		s.logger.Info("web listening", zap.String("addr", s.httpAddr))
		serveErr <- s.httpServer.ListenAndServe()
	}()

	var err error
	select {
	case <-ctx.Done():
		shutdownCtx, stop := context.WithTimeout(context.Background(), timeouts.Shutdown)
		if shutdownErr := s.httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
			err = fmt.Errorf("shutdown web http server: %w", shutdownErr)
		}
		stop()
	case result := <-serveErr:
		if !errors.Is(result, http.ErrServerClosed) {
			err = fmt.Errorf("serve web http: %w", result)
		}
	}
	cancel()
	if healthErr := <-healthDone; healthErr != nil && err == nil {
		err = healthErr
	}
	return err
}

// Close closes open server resources and waits for background font loads,
// so the catalog can be released after it returns.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.httpServer != nil {
		_ = s.httpServer.Close()
	}
	s.health.Close()
	if s.store != nil {
		s.store.Wait()
	}
}

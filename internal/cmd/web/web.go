// Package web parses web command configuration and wires the server's
// storage, sessions, and logging.
package web

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	platformcmd "github.com/louisbranch/typeshelf/internal/platform/cmd"
	"github.com/louisbranch/typeshelf/internal/platform/logging"
	"github.com/louisbranch/typeshelf/internal/services/web"
	"github.com/louisbranch/typeshelf/internal/services/web/platform/requestmeta"
	"github.com/louisbranch/typeshelf/internal/services/web/platform/session"
	webstorage "github.com/louisbranch/typeshelf/internal/services/web/storage"
	"github.com/louisbranch/typeshelf/internal/services/web/storage/redis"
	"github.com/louisbranch/typeshelf/internal/services/web/storage/sqlite"
)

// Config holds the web command configuration.
type Config struct {
	HTTPAddr            string        `env:"WEB_HTTP_ADDR"         envDefault:":8080"`
	GRPCAddr            string        `env:"WEB_GRPC_ADDR"         envDefault:":8081"`
	DBPath              string        `env:"DB_PATH"               envDefault:"data/typeshelf.db"`
	RedisAddr           string        `env:"REDIS_ADDR"`
	SessionSecret       string        `env:"SESSION_SECRET"`
	SessionIssuer       string        `env:"SESSION_ISSUER"        envDefault:"typeshelf"`
	SessionTTL          time.Duration `env:"SESSION_TTL"           envDefault:"12h"`
	TrustForwardedProto bool          `env:"TRUST_FORWARDED_PROTO"`
	// Diagnostics forces debug logging so font load diagnostics are emitted.
	Diagnostics bool `env:"DIAGNOSTICS"`
	Logging     logging.Config
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := platformcmd.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.GRPCAddr, "grpc-addr", cfg.GRPCAddr, "gRPC health listen address (empty disables)")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "SQLite font catalog path")
	fs.StringVar(&cfg.RedisAddr, "redis-addr", cfg.RedisAddr, "Redis address for the font list cache and session revocations")
	fs.BoolVar(&cfg.TrustForwardedProto, "trust-forwarded-proto", cfg.TrustForwardedProto, "Honor X-Forwarded-Proto")
	fs.BoolVar(&cfg.Diagnostics, "diagnostics", cfg.Diagnostics, "Log font load diagnostics")
	fs.StringVar(&cfg.Logging.Level, "log-level", cfg.Logging.Level, "Log level")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports configuration that cannot start a server.
func (c Config) Validate() error {
	if strings.TrimSpace(c.HTTPAddr) == "" {
		return errors.New("http address is required")
	}
	if strings.TrimSpace(c.DBPath) == "" {
		return errors.New("db path is required")
	}
	if len(c.SessionSecret) < session.MinSecretLength {
		return fmt.Errorf("session secret must be at least %d bytes", session.MinSecretLength)
	}
	return nil
}

// Run starts the web server and blocks until ctx ends.
func Run(ctx context.Context, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	logCfg := cfg.Logging
	if cfg.Diagnostics {
		logCfg.Level = "debug"
	}
	logger, err := logging.New(platformcmd.ServiceWeb, logCfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	return platformcmd.RunWithTelemetry(ctx, platformcmd.ServiceWeb, platformcmd.RunOptions{Logger: logger}, func(ctx context.Context) error {
		return serve(ctx, cfg, logger)
	})
}

func serve(ctx context.Context, cfg Config, logger *zap.Logger) error {
	catalog, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open font catalog: %w", err)
	}
	defer func() { _ = catalog.Close() }()

	var (
		cache       webstorage.FontListCache
		revocations webstorage.SessionRevocations
	)
	if addr := strings.TrimSpace(cfg.RedisAddr); addr != "" {
		store, err := redis.Dial(ctx, addr)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer func() { _ = store.Close() }()
		cache, revocations = store, store
	} else {
		logger.Info("redis not configured; font list cache and session revocation disabled")
	}

	sessions, err := session.NewManager(session.Config{
		Secret: []byte(cfg.SessionSecret),
		Issuer: cfg.SessionIssuer,
		TTL:    cfg.SessionTTL,
	})
	if err != nil {
		return fmt.Errorf("init sessions: %w", err)
	}

	server, err := web.NewServer(ctx, web.Config{
		HTTPAddr:            cfg.HTTPAddr,
		GRPCAddr:            cfg.GRPCAddr,
		Catalog:             catalog,
		Cache:               cache,
		Revocations:         revocations,
		Sessions:            sessions,
		RequestSchemePolicy: requestmeta.SchemePolicy{TrustForwardedProto: cfg.TrustForwardedProto},
		Logger:              logger,
	})
	if err != nil {
		return fmt.Errorf("init web server: %w", err)
	}
	defer server.Close()

	if err := server.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("serve web: %w", err)
	}
	return nil
}

package web

import (
	"context"
	"time"

	"go.uber.org/zap"

	platformgrpc "github.com/louisbranch/typeshelf/internal/platform/grpc"
	"github.com/louisbranch/typeshelf/internal/platform/timeouts"
)

// FontsHealthService is the grpc.health.v1 service name that tracks catalog
// readiness.
const FontsHealthService = "typeshelf.fonts"

const defaultReadinessInterval = 10 * time.Second

type pinger interface {
	Ping(ctx context.Context) error
}

// healthReporter serves grpc.health.v1 and keeps FontsHealthService in step
// with the catalog.
type healthReporter struct {
	server   *platformgrpc.HealthServer
	catalog  pinger
	interval time.Duration
	logger   *zap.Logger
}

func newHealthReporter(addr string, catalog pinger, interval time.Duration, logger *zap.Logger) (*healthReporter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	server, err := platformgrpc.NewHealthServer(addr, logger, FontsHealthService)
	if err != nil {
		return nil, err
	}
	if interval <= 0 {
		interval = defaultReadinessInterval
	}
	return &healthReporter{server: server, catalog: catalog, interval: interval, logger: logger}, nil
}

// Addr returns the bound gRPC address.
func (h *healthReporter) Addr() string {
	if h == nil {
		return ""
	}
	return h.server.Addr()
}

// Run probes the catalog until ctx ends while serving health checks.
func (h *healthReporter) Run(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.watch(ctx)
	}()
	err := h.server.Serve(ctx)
	<-done
	return err
}

func (h *healthReporter) watch(ctx context.Context) {
	ready := h.probe(ctx)
	h.server.SetReady(FontsHealthService, ready)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			next := h.probe(ctx)
			if next != ready {
				h.logger.Info("font catalog readiness changed", zap.Bool("ready", next))
			}
			ready = next
			h.server.SetReady(FontsHealthService, ready)
		}
	}
}

func (h *healthReporter) probe(ctx context.Context) bool {
	if h.catalog == nil {
		return false
	}
	probeCtx, cancel := context.WithTimeout(ctx, timeouts.HealthProbe)
	defer cancel()
	if err := h.catalog.Ping(probeCtx); err != nil {
		h.logger.Warn("font catalog ping failed", zap.Error(err))
		return false
	}
	return true
}

// Close stops the health server immediately.
func (h *healthReporter) Close() {
	if h == nil {
		return
	}
	h.server.Close()
}

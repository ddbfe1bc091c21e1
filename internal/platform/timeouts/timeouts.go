// Package timeouts defines shared timeout constants used across typeshelf
// processes.
package timeouts

import "time"

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long servers wait for in-flight requests during
// graceful shutdown.
const Shutdown = 5 * time.Second

// FontLoad caps one font catalog read triggered by a page mount.
const FontLoad = 5 * time.Second

// HealthProbe caps a single gRPC health check round trip.
const HealthProbe = time.Second

// LiveWrite caps one live-view frame write.
const LiveWrite = 2 * time.Second

// Package duration provides canonical time constants for dirhunter.
// Every timeout, poll interval and refresh rate used by the scanner is
// declared here so that tuning happens in one place.
//
// Usage:
//
//	ctx, cancel := context.WithTimeout(ctx, duration.ConnectivityCheck)
//	ticker := time.NewTicker(duration.PollInterval)
//
// Do not write literal durations such as `7 * time.Second` in struct fields
// named Timeout or Interval; reference a constant from this package instead.
package duration

import "time"

// ============================================================================
// HTTP CLIENT TIMEOUTS
// ============================================================================

const (
	// HTTPProbing is the default per-request timeout while scanning (7s)
	HTTPProbing = 7 * time.Second

	// ConnectivityCheck bounds the reachability request sent to every
	// target before scanning starts (5s)
	ConnectivityCheck = 5 * time.Second
)

// ============================================================================
// CONTROL LOOP INTERVALS
// ============================================================================

const (
	// PollInterval is how long the pause/resume controller waits for a key
	// press before it re-checks the completion flag (500ms)
	PollInterval = 500 * time.Millisecond

	// PauseCheck is how often a paused scan task re-reads the pause flag (100ms)
	PauseCheck = 100 * time.Millisecond

	// ProgressRefresh is the progress bar redraw throttle (65ms)
	ProgressRefresh = 65 * time.Millisecond

	// InterruptGrace is how long a second interrupt forces an immediate
	// exit after the first one started a drain (30s)
	InterruptGrace = 30 * time.Second
)

// ============================================================================
// NETWORK/TRANSPORT
// ============================================================================

const (
	// DialTimeout is for establishing TCP connections (10s)
	DialTimeout = 10 * time.Second

	// KeepAlive is for TCP keep-alive interval (30s)
	KeepAlive = 30 * time.Second

	// IdleConnTimeout is for idle connection pool timeout (90s)
	IdleConnTimeout = 90 * time.Second

	// TLSHandshake is for TLS handshake timeout (10s)
	TLSHandshake = 10 * time.Second
)

// ============================================================================
// TELEMETRY
// ============================================================================

const (
	// ExporterConnect bounds the OTLP exporter connection attempt (10s)
	ExporterConnect = 10 * time.Second

	// ExporterShutdown bounds flushing spans on exit (5s)
	ExporterShutdown = 5 * time.Second

	// MetricsReadTimeout is the read timeout of the /metrics server (5s)
	MetricsReadTimeout = 5 * time.Second

	// MetricsWriteTimeout is the write timeout of the /metrics server (10s)
	MetricsWriteTimeout = 10 * time.Second
)

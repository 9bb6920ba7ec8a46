// Package defaults provides canonical default values for dirhunter.
// This is the single source of truth for runtime configuration defaults.
//
// Usage:
//
//	cfg.Threads = defaults.Threads
//	req.Header.Set("User-Agent", defaults.UserAgent(""))
package defaults

import "fmt"

// ToolName is the binary and service name used in banners, telemetry and
// the default user agent.
const ToolName = "dirhunter"

// Version is the current dirhunter version
const Version = "1.2.0"

// ============================================================================
// SCAN SETTINGS
// ============================================================================

const (
	// Threads is the default number of concurrent probes per scanned directory (50)
	Threads = 50

	// Depth is the default maximum recursion depth below a target (4).
	// Zero means unlimited.
	Depth = 4

	// ConnectivityWorkers bounds the reachability checks run in parallel (16)
	ConnectivityWorkers = 16

	// WildcardProbes is the number of random paths requested to build a
	// wildcard baseline for a directory (1)
	WildcardProbes = 1
)

// StatusCodes is the default allow-list of response codes that are reported.
var StatusCodes = []int{200, 204, 301, 302, 307, 308, 401, 403, 405}

// ============================================================================
// CHANNEL SIZES
// ============================================================================

const (
	// ChannelSmall is for consumer inboxes with few producers (100)
	ChannelSmall = 100

	// ChannelLarge is for reporting channels shared by every scan task (10000)
	ChannelLarge = 10000
)

// ============================================================================
// FILES
// ============================================================================

const (
	// ConfigFile is loaded from the working directory when present and no
	// -config flag is given.
	ConfigFile = "dirhunter.yaml"

	// CommentPrefix marks wordlist lines that are skipped.
	CommentPrefix = "#"
)

// ============================================================================
// USER AGENTS
// ============================================================================

const (
	// UAMinimal is the default user agent
	UAMinimal = "dirhunter/" + Version
)

// UserAgent returns the dirhunter user agent with context
func UserAgent(context string) string {
	if context == "" {
		return UAMinimal
	}
	return fmt.Sprintf("dirhunter/%s (%s)", Version, context)
}

package scanner

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// fingerprint identifies a response body without keeping it.
type fingerprint struct {
	status int
	hash   uint64
	lines  int
	words  int
	length int64
}

// matches reports whether a response looks like the catch-all response
// recorded in the baseline. Pages that echo the requested path change
// their hash but keep line and word counts.
func (f fingerprint) matches(other fingerprint) bool {
	if f.status != other.status {
		return false
	}
	return f.hash == other.hash || (f.lines == other.lines && f.words == other.words)
}

// wildcardBaseline requests a random path under dir. When the server
// answers it with a reported status code, every response that matches the
// returned fingerprint is treated as a wildcard. ok is false when the
// directory has no wildcard behavior.
func (s *HTTPScanner) wildcardBaseline(ctx context.Context, dir string) (fp fingerprint, probeURL string, ok bool) {
	probeURL = dir + strings.ReplaceAll(uuid.NewString(), "-", "")

	resp, err := s.fetch(ctx, probeURL)
	if err != nil {
		s.logger.Debug("wildcard probe failed", slog.String("url", probeURL), slog.String("error", err.Error()))
		return fingerprint{}, probeURL, false
	}
	if !s.reportable(resp.status) {
		return fingerprint{}, probeURL, false
	}

	s.logger.Info("wildcard response detected",
		slog.String("directory", dir),
		slog.Int("status", resp.status),
		slog.Int64("length", resp.length))
	return resp.fingerprint(), probeURL, true
}

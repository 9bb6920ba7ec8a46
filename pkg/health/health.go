// Package health removes unreachable targets before any scan task is
// spawned.
package health

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/waftester/dirhunter/pkg/defaults"
	"github.com/waftester/dirhunter/pkg/duration"
	"github.com/waftester/dirhunter/pkg/iohelper"
	"github.com/waftester/dirhunter/pkg/ui"
	"github.com/waftester/dirhunter/pkg/workerpool"
)

// Checker performs one GET against each target. Any HTTP response, of any
// status, counts as reachable; only transport failures remove a target.
type Checker struct {
	Client  *http.Client
	Workers int
	Logger  *slog.Logger

	// Warn reports an unreachable target. Defaults to ui.PrintWarning.
	Warn func(msg string)
}

// NewChecker creates a Checker with default concurrency.
func NewChecker(client *http.Client, logger *slog.Logger) *Checker {
	return &Checker{
		Client:  client,
		Workers: defaults.ConnectivityWorkers,
		Logger:  logger,
	}
}

// Filter probes targets concurrently and returns the reachable subset.
// Output order is not guaranteed to match input order. Each unreachable
// target is reported as a warning; an all-unreachable input yields an
// empty, non-nil slice.
func (c *Checker) Filter(ctx context.Context, targets []string) []string {
	if len(targets) == 0 {
		return []string{}
	}

	pool := workerpool.New(min(c.Workers, len(targets)))
	defer pool.Close()

	return workerpool.Filter(pool, targets, func(target string) bool {
		return c.reachable(ctx, target)
	})
}

func (c *Checker) reachable(ctx context.Context, target string) bool {
	log := c.logger()

	ctx, cancel := context.WithTimeout(ctx, duration.ConnectivityCheck)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		c.warn(target, err)
		return false
	}

	resp, err := c.client().Do(req)
	if err != nil {
		c.warn(target, err)
		return false
	}
	iohelper.DrainAndClose(resp.Body)

	log.Debug("target reachable", slog.String("target", target), slog.Int("status", resp.StatusCode))
	return true
}

func (c *Checker) warn(target string, err error) {
	c.logger().Warn("target unreachable", slog.String("target", target), slog.String("error", err.Error()))
	msg := "Could not connect to " + target + ", skipping..."
	if c.Warn != nil {
		c.Warn(msg)
		return
	}
	ui.PrintWarning(msg)
}

func (c *Checker) client() *http.Client {
	if c.Client != nil {
		return c.Client
	}
	return http.DefaultClient
}

func (c *Checker) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// Package runner spawns one scan task per target and tears the reporting
// pipeline down in order once they have all finished.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/waftester/dirhunter/pkg/report"
	"github.com/waftester/dirhunter/pkg/scanner"
	"github.com/waftester/dirhunter/pkg/wordlist"
)

// Config configures an Orchestrator.
type Config struct {
	// WordlistPath is loaded once, on the first Load or Scan.
	WordlistPath string

	// Scanner runs each target.
	Scanner scanner.Scanner

	// OnTaskStart and OnTaskEnd, when set, bracket every task. err wraps
	// ErrTaskPanic if the task panicked.
	OnTaskStart func(target string)
	OnTaskEnd   func(target string, elapsed time.Duration, err error)

	Tracer trace.Tracer
	Logger *slog.Logger
}

// Stats counts top-level tasks. Recursive sub-scans are internal to the
// scanner and not counted.
type Stats struct {
	Spawned   int64
	Completed int64
	Failed    int64
}

// Orchestrator runs one goroutine per base target and joins them all.
type Orchestrator struct {
	cfg    Config
	tracer trace.Tracer
	logger *slog.Logger

	loadOnce sync.Once
	words    *wordlist.Wordlist
	loadErr  error

	spawned   atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
}

// New creates an Orchestrator.
func New(cfg Config) *Orchestrator {
	o := &Orchestrator{cfg: cfg, tracer: cfg.Tracer, logger: cfg.Logger}
	if o.tracer == nil {
		o.tracer = otel.Tracer("github.com/waftester/dirhunter/pkg/runner")
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

// Load reads the wordlist the first time it is called and returns the
// same result on every later call. Errors wrap the wordlist sentinels.
func (o *Orchestrator) Load() (*wordlist.Wordlist, error) {
	o.loadOnce.Do(func() {
		o.words, o.loadErr = wordlist.Load(o.cfg.WordlistPath)
		if o.loadErr == nil {
			o.logger.Info("wordlist ready", slog.String("path", o.cfg.WordlistPath), slog.Int("words", o.words.Len()))
		}
	})
	return o.words, o.loadErr
}

// Scan loads the wordlist, then starts one task per target. Each task gets
// its own clones of term and file and closes them when its scanner
// returns. Scan waits for every task.
//
// Only a wordlist failure (or a missing scanner) is returned, and then no
// task is started. A panicking task is recovered, logged and counted in
// Stats().Failed; it does not affect sibling tasks or the return value.
func (o *Orchestrator) Scan(ctx context.Context, targets []string, term, file *report.Sender) error {
	words, err := o.Load()
	if err != nil {
		return err
	}
	if o.cfg.Scanner == nil {
		return ErrNoScanner
	}

	var wg sync.WaitGroup
	for _, target := range targets {
		depth := scanner.Depth(target)
		taskTerm := term.Clone()
		taskFile := file.Clone()

		o.spawned.Add(1)
		wg.Add(1)
		go func() {
			defer wg.Done()
			o.runTask(ctx, target, depth, words, taskTerm, taskFile)
		}()
	}
	o.logger.Debug("scan tasks spawned", slog.Int("count", len(targets)))

	wg.Wait()
	o.logger.Debug("scan tasks joined", slog.Int64("completed", o.completed.Load()), slog.Int64("failed", o.failed.Load()))
	return nil
}

func (o *Orchestrator) runTask(ctx context.Context, target string, depth int, words *wordlist.Wordlist, term, file *report.Sender) {
	ctx, span := o.tracer.Start(ctx, "scan.target", trace.WithAttributes(
		attribute.String("dirhunter.target", target),
		attribute.Int("dirhunter.base_depth", depth),
	))
	start := time.Now()
	if o.cfg.OnTaskStart != nil {
		o.cfg.OnTaskStart(target)
	}

	defer term.Close()
	defer file.Close()
	defer func() {
		var taskErr error
		if r := recover(); r != nil {
			taskErr = fmt.Errorf("%w: %s: %v", ErrTaskPanic, target, r)
			o.failed.Add(1)
			o.logger.Error("scan task failed",
				slog.String("target", target),
				slog.String("error", taskErr.Error()),
				slog.String("stack", string(debug.Stack())))
			span.RecordError(taskErr)
			span.SetStatus(codes.Error, "task panicked")
		} else {
			o.completed.Add(1)
		}
		span.End()
		if o.cfg.OnTaskEnd != nil {
			o.cfg.OnTaskEnd(target, time.Since(start), taskErr)
		}
	}()

	o.cfg.Scanner.Scan(ctx, target, words, depth, term, file)
}

// Stats returns the task counters.
func (o *Orchestrator) Stats() Stats {
	return Stats{
		Spawned:   o.spawned.Load(),
		Completed: o.completed.Load(),
		Failed:    o.failed.Load(),
	}
}

// Command dirhunter discovers hidden content on web servers by brute
// forcing paths from a wordlist, recursing into every directory it finds.
//
// Usage:
//
//	dirhunter -u https://example.com -w words.txt
//	cat targets.txt | dirhunter -stdin -w words.txt -x php,txt -o found.txt
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/waftester/dirhunter/pkg/cli"
	"github.com/waftester/dirhunter/pkg/config"
	"github.com/waftester/dirhunter/pkg/defaults"
	"github.com/waftester/dirhunter/pkg/duration"
	"github.com/waftester/dirhunter/pkg/health"
	"github.com/waftester/dirhunter/pkg/httpclient"
	"github.com/waftester/dirhunter/pkg/input"
	"github.com/waftester/dirhunter/pkg/interactive"
	"github.com/waftester/dirhunter/pkg/metrics"
	"github.com/waftester/dirhunter/pkg/report"
	"github.com/waftester/dirhunter/pkg/runner"
	"github.com/waftester/dirhunter/pkg/scanner"
	"github.com/waftester/dirhunter/pkg/tracing"
	"github.com/waftester/dirhunter/pkg/ui"
)

// env is everything run touches outside its arguments.
type env struct {
	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer
	terminal bool // stderr is a TTY: draw the progress bar, read pause keys

	keys       func(stdinCarriesTargets bool) interactive.KeySource
	newScanner func(scanner.Config) scanner.Scanner
	filter     func(ctx context.Context, client *http.Client, targets []string) []string
}

func main() {
	ctx, stop := cli.SignalContext(duration.InterruptGrace)
	code := run(ctx, os.Args[1:], processEnv())
	stop()
	os.Exit(code)
}

func processEnv() env {
	return env{
		stdin:    os.Stdin,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		terminal: ui.StderrIsTerminal(),
		keys:     interactive.OpenTerminal,
		newScanner: func(cfg scanner.Config) scanner.Scanner {
			return scanner.New(cfg)
		},
		filter: func(ctx context.Context, client *http.Client, targets []string) []string {
			return health.NewChecker(client, slog.Default()).Filter(ctx, targets)
		},
	}
}

// run executes one scan and returns the process exit code.
func run(ctx context.Context, args []string, e env) int {
	cfg, err := config.Parse(args, e.stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return defaults.ExitSuccess
		}
		return fatal(defaults.ExitConfigError, "config", err)
	}
	ui.SetNoColor(cfg.NoColor)
	ui.SetSilent(cfg.Quiet)

	logger, closeLog, err := newLogger(cfg.Verbosity, cfg.DebugLog, e.stderr)
	if err != nil {
		return fatal(defaults.ExitConfigError, "config", err)
	}
	defer closeLog()
	logger = logger.With(slog.String("scan_id", uuid.NewString()))
	slog.SetDefault(logger)

	tracer, shutdownTracing, err := tracing.Setup(ctx, cfg.OTelEndpoint)
	if err != nil {
		logger.Warn("tracing disabled", slog.String("error", err.Error()))
		tracer, shutdownTracing, _ = tracing.Setup(ctx, "")
	}
	defer func() {
		if err := shutdownTracing(); err != nil {
			logger.Warn("flushing traces", slog.String("error", err.Error()))
		}
	}()

	recorder := metrics.New()
	defer recorder.Close()
	if cfg.MetricsAddr != "" {
		addr, err := recorder.Serve(cfg.MetricsAddr, logger)
		if err != nil {
			logger.Warn("metrics server disabled", slog.String("error", err.Error()))
		} else {
			ui.PrintInfo("Metrics at http://" + addr.String() + metrics.Path)
		}
	}

	client, err := httpclient.New(httpclient.Config{
		Timeout:            cfg.Timeout,
		InsecureSkipVerify: cfg.Insecure,
		Proxy:              cfg.Proxy,
		UserAgent:          cfg.UserAgent,
		Headers:            httpclient.HeadersFromMap(cfg.Headers),
		MaxConnsPerHost:    cfg.Threads,
	})
	if err != nil {
		return fatal(defaults.ExitConfigError, "proxy", err)
	}

	pause := interactive.NewFlag(false)
	completed := interactive.NewFlag(false)
	printer := ui.NewProgressPrinter(ui.ProgressConfig{
		Out:     e.stdout,
		BarOut:  e.stderr,
		Visible: e.terminal && !cfg.Quiet,
	})

	sc := e.newScanner(scanner.Config{
		Client:      client,
		Threads:     cfg.Threads,
		MaxDepth:    cfg.Depth,
		Extensions:  cfg.Extensions,
		StatusCodes: cfg.StatusCodes,
		RateLimit:   cfg.RateLimit,
		DontFilter:  cfg.DontFilter,
		Pause:       pause,
		Progress:    printer,
		Observer:    recorder,
		Tracer:      tracer,
		Logger:      logger,
	})

	o := runner.New(runner.Config{
		WordlistPath: cfg.Wordlist,
		Scanner:      sc,
		OnTaskStart: func(target string) {
			recorder.TaskStarted(target)
			logger.Info("scan started", slog.String("target", target))
		},
		OnTaskEnd: func(target string, elapsed time.Duration, err error) {
			recorder.TaskFinished(target, elapsed, err)
			if err != nil {
				logger.Warn("scan failed", slog.String("target", target), slog.String("error", err.Error()))
				return
			}
			logger.Info("scan finished", slog.String("target", target), slog.Duration("elapsed", elapsed))
		},
		Tracer: tracer,
		Logger: logger,
	})

	// The wordlist is read before any target so a bad list never costs a request.
	words, err := o.Load()
	if err != nil {
		return fatal(defaults.ExitConfigError, "wordlist", err)
	}

	source := &input.TargetSource{
		URL:      cfg.TargetURL,
		ListFile: cfg.ListFile,
		Stdin:    cfg.Stdin,
		Reader:   e.stdin,
	}
	targets, err := source.Collect()
	if err != nil {
		return fatal(defaults.ExitInputError, "input", err)
	}

	live := e.filter(ctx, client, targets)
	logger.Debug("targets resolved", slog.Int("given", len(targets)), slog.Int("reachable", len(live)))
	if len(live) == 0 {
		ui.PrintWarning("No reachable targets")
	}

	if !cfg.Quiet {
		ui.PrintBanner()
		ui.PrintConfigBanner(bannerOptions(cfg, live, words.Len()))
		if e.terminal {
			ui.PrintInteractiveHint()
		}
	}

	var reported atomic.Int64
	pipeline, err := report.Initialize(report.Options{
		Terminal:   report.NewTerminalSink(printer),
		OutputPath: cfg.Output,
		JSON:       cfg.JSON,
		Observe:    func(report.Result) { reported.Add(1) },
		Logger:     logger,
	})
	if err != nil {
		return fatal(defaults.ExitConfigError, "output", err)
	}

	var keys interactive.KeySource
	if e.keys != nil && e.terminal {
		keys = e.keys(cfg.Stdin)
	}
	handler := interactive.NewHandler(interactive.HandlerConfig{
		Pause:     pause,
		Completed: completed,
		Keys:      keys,
		Logger:    logger,
	})
	handler.Start()

	start := time.Now()
	if err := o.Scan(ctx, live, pipeline.Term, pipeline.File); err != nil {
		logger.Error("scan aborted", slog.String("error", err.Error()))
	}

	runner.Shutdown(runner.ShutdownConfig{
		Pipeline:   pipeline,
		SaveOutput: cfg.SaveOutput(),
		Completed:  completed,
		Cleanup:    printer.Finish,
		Logger:     logger,
	})
	<-handler.Done()

	stats := o.Stats()
	if stats.Failed > 0 {
		ui.PrintWarning(fmt.Sprintf("%d of %d scan task(s) failed", stats.Failed, stats.Spawned))
	}
	if !cfg.Quiet {
		ui.PrintSuccess(fmt.Sprintf("%d result(s) from %d target(s) in %s",
			reported.Load(), stats.Spawned, time.Since(start).Round(time.Millisecond)))
	}

	if ctx.Err() != nil {
		return defaults.ExitInterrupted
	}
	return defaults.ExitSuccess
}

// bannerOptions renders the active configuration for ui.PrintConfigBanner.
func bannerOptions(cfg *config.Config, targets []string, words int) map[string]string {
	opts := map[string]string{
		"Wordlist":        cfg.Wordlist,
		"Words":           strconv.Itoa(words),
		"Extensions":      strings.Join(cfg.Extensions, ", "),
		"Status Codes":    joinInts(cfg.StatusCodes),
		"Threads":         strconv.Itoa(cfg.Threads),
		"Recursion Depth": strconv.Itoa(cfg.Depth),
		"Timeout":         cfg.Timeout.String(),
		"User-Agent":      cfg.UserAgent,
		"Proxy":           cfg.Proxy,
		"Output":          cfg.Output,
		"Config File":     cfg.ConfigPath,
	}
	if len(targets) == 1 {
		opts["Target"] = targets[0]
	} else {
		opts["Targets"] = strconv.Itoa(len(targets))
	}
	if cfg.Depth == 0 {
		opts["Recursion Depth"] = "unlimited"
	}
	if cfg.RateLimit > 0 {
		opts["Rate Limit"] = strconv.Itoa(cfg.RateLimit) + " req/s"
	}
	if cfg.Insecure {
		opts["Insecure"] = "true"
	}
	if cfg.DontFilter {
		opts["Wildcard Filter"] = "disabled"
	}
	if cfg.Output != "" {
		opts["Format"] = "text"
		if cfg.JSON {
			opts["Format"] = "json"
		}
	}
	return opts
}

func joinInts(vals []int) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

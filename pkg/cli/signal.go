// Package cli holds process-level helpers for the dirhunter command.
package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/waftester/dirhunter/pkg/defaults"
	"github.com/waftester/dirhunter/pkg/ui"
)

// SignalContext returns a context cancelled on SIGINT/SIGTERM. Cancelling
// stops new probes; results already queued are still flushed by the
// shutdown sequence. A second signal within gracePeriod exits the process
// with defaults.ExitInterrupted.
//
// Usage:
//
//	ctx, stop := cli.SignalContext(duration.InterruptGrace)
//	defer stop()
func SignalContext(gracePeriod time.Duration) (context.Context, context.CancelFunc) {
	return signalContextWithNotifier(gracePeriod, nil, nil)
}

// signalContextWithNotifier lets tests inject the signal channel and exit.
func signalContextWithNotifier(
	gracePeriod time.Duration,
	sigChan chan os.Signal,
	exitFn func(int),
) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	ownChannel := sigChan == nil
	if ownChannel {
		sigChan = make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	}
	if exitFn == nil {
		exitFn = os.Exit
	}

	go func() {
		select {
		case sig := <-sigChan:
			slog.Debug("interrupt received", slog.String("signal", sig.String()))
			ui.PrintWarning("Interrupted, flushing results (press Ctrl+C again to quit)")
			cancel()

			select {
			case <-sigChan:
				exitFn(defaults.ExitInterrupted)
			case <-time.After(gracePeriod):
			}
		case <-ctx.Done():
		}
		if ownChannel {
			signal.Stop(sigChan)
		}
	}()

	return ctx, cancel
}

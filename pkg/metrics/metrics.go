// Package metrics exposes scan counters for Prometheus scraping.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/waftester/dirhunter/pkg/defaults"
	"github.com/waftester/dirhunter/pkg/duration"
)

// Path is where the metrics handler is mounted.
const Path = "/metrics"

// Recorder holds the scan collectors. It satisfies scanner.Observer and
// provides the orchestrator task hooks. All methods are safe for
// concurrent use and a nil Recorder is a no-op.
type Recorder struct {
	registry *prometheus.Registry

	requestsTotal    *prometheus.CounterVec
	resultsTotal     *prometheus.CounterVec
	directoriesTotal prometheus.Counter
	tasksStarted     prometheus.Counter
	tasksFinished    *prometheus.CounterVec
	taskDuration     prometheus.Histogram

	mu     sync.Mutex
	server *http.Server
	closed bool
}

// New creates a Recorder backed by its own registry.
func New() *Recorder {
	// Custom registry keeps the default one clean for embedding callers.
	r := &Recorder{registry: prometheus.NewRegistry()}

	ns := defaults.ToolName
	r.requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns,
		Name:      "requests_total",
		Help:      "Probes sent, by response status (0 on transport error)",
	}, []string{"status"})
	r.resultsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns,
		Name:      "results_total",
		Help:      "Results delivered to the reporting pipeline, by status",
	}, []string{"status"})
	r.directoriesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: ns,
		Name:      "directories_total",
		Help:      "Directories scanned, including targets",
	})
	r.tasksStarted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: ns,
		Name:      "tasks_started_total",
		Help:      "Per-target scan tasks started",
	})
	r.tasksFinished = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns,
		Name:      "tasks_finished_total",
		Help:      "Per-target scan tasks finished, by outcome",
	}, []string{"outcome"})
	r.taskDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: ns,
		Name:      "task_duration_seconds",
		Help:      "Wall time of per-target scan tasks",
		Buckets:   []float64{1, 5, 15, 30, 60, 300, 900, 3600},
	})

	r.registry.MustRegister(
		r.requestsTotal,
		r.resultsTotal,
		r.directoriesTotal,
		r.tasksStarted,
		r.tasksFinished,
		r.taskDuration,
	)
	return r
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// RequestDone counts one probe.
func (r *Recorder) RequestDone(status int) {
	if r == nil {
		return
	}
	r.requestsTotal.WithLabelValues(strconv.Itoa(status)).Inc()
}

// DirectoryQueued counts one scanned directory.
func (r *Recorder) DirectoryQueued() {
	if r == nil {
		return
	}
	r.directoriesTotal.Inc()
}

// ResultReported counts one delivered result.
func (r *Recorder) ResultReported(status int) {
	if r == nil {
		return
	}
	r.resultsTotal.WithLabelValues(strconv.Itoa(status)).Inc()
}

// TaskStarted is an orchestrator OnTaskStart hook.
func (r *Recorder) TaskStarted(string) {
	if r == nil {
		return
	}
	r.tasksStarted.Inc()
}

// TaskFinished is an orchestrator OnTaskEnd hook.
func (r *Recorder) TaskFinished(_ string, elapsed time.Duration, err error) {
	if r == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "failed"
	}
	r.tasksFinished.WithLabelValues(outcome).Inc()
	r.taskDuration.Observe(elapsed.Seconds())
}

// Handler returns the scrape handler for the registry.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Serve listens on addr and serves the registry at Path until Close. The
// listener is bound before Serve returns so bind errors surface here.
func (r *Recorder) Serve(addr string, logger *slog.Logger) (net.Addr, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, errors.New("metrics: recorder closed")
	}
	if r.server != nil {
		return nil, errors.New("metrics: already serving")
	}
	if logger == nil {
		logger = slog.Default()
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics: listen %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle(Path, r.Handler())
	r.server = &http.Server{
		Handler:      mux,
		ReadTimeout:  duration.MetricsReadTimeout,
		WriteTimeout: duration.MetricsWriteTimeout,
	}

	srv := r.server
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server stopped", "error", err)
		}
	}()
	logger.Debug("metrics server listening", "addr", ln.Addr().String(), "path", Path)
	return ln.Addr(), nil
}

// Close stops the metrics server, if any. It is safe to call more than once.
func (r *Recorder) Close() error {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	if r.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), duration.ExporterShutdown)
		defer cancel()
		return r.server.Shutdown(ctx)
	}
	return nil
}

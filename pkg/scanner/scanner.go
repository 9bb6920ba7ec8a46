// Package scanner probes one base target for hidden content. A scan
// appends every wordlist entry (and entry.ext for each extension) to the
// target, reports responses with an allowed status code, and recurses into
// discovered directories.
package scanner

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spaolacci/murmur3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/waftester/dirhunter/pkg/bufpool"
	"github.com/waftester/dirhunter/pkg/defaults"
	"github.com/waftester/dirhunter/pkg/interactive"
	"github.com/waftester/dirhunter/pkg/iohelper"
	"github.com/waftester/dirhunter/pkg/report"
	"github.com/waftester/dirhunter/pkg/wordlist"
	"github.com/waftester/dirhunter/pkg/workerpool"
)

// Scanner scans a single base target. Scan returns only after every
// recursive sub-scan it started has finished. It never closes term or
// file; the caller owns those handles.
type Scanner interface {
	Scan(ctx context.Context, target string, words *wordlist.Wordlist, baseDepth int, term, file *report.Sender)
}

// Progress receives request accounting for display.
type Progress interface {
	AddDirectory(url string, requests int)
	Increment()
}

// Observer receives per-request accounting for metrics.
type Observer interface {
	// RequestDone is called once per probe; status is 0 on transport error.
	RequestDone(status int)
	// DirectoryQueued is called for each directory scanned.
	DirectoryQueued()
	// ResultReported is called for each reported result.
	ResultReported(status int)
}

// Config configures an HTTPScanner.
type Config struct {
	Client      *http.Client
	Threads     int      // concurrent probes per target
	MaxDepth    int      // levels below the base to recurse into, 0 = unlimited
	Extensions  []string // probe word.ext as well as word
	StatusCodes []int    // reported status codes
	RateLimit   int      // requests per second per target, 0 = unlimited
	DontFilter  bool     // skip wildcard detection

	Pause    *interactive.Flag // checked between probes; nil never pauses
	Progress Progress
	Observer Observer
	Tracer   trace.Tracer
	Logger   *slog.Logger
}

// HTTPScanner is the default Scanner.
type HTTPScanner struct {
	cfg      Config
	statuses map[int]bool
	exts     []string
	pause    *interactive.Flag
	tracer   trace.Tracer
	logger   *slog.Logger

	requests atomic.Int64
	errors   atomic.Int64
	found    atomic.Int64
}

// Stats summarizes everything an HTTPScanner has done so far.
type Stats struct {
	Requests int64
	Errors   int64
	Found    int64
}

// New creates an HTTPScanner. Zero-valued fields take defaults.
func New(cfg Config) *HTTPScanner {
	if cfg.Client == nil {
		cfg.Client = http.DefaultClient
	}
	if cfg.Client.CheckRedirect == nil {
		// Redirects are findings and drive recursion; never follow them.
		c := *cfg.Client
		c.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
		cfg.Client = &c
	}
	if cfg.Threads <= 0 {
		cfg.Threads = defaults.Threads
	}
	if len(cfg.StatusCodes) == 0 {
		cfg.StatusCodes = defaults.StatusCodes
	}

	s := &HTTPScanner{
		cfg:      cfg,
		statuses: make(map[int]bool, len(cfg.StatusCodes)),
		pause:    cfg.Pause,
		tracer:   cfg.Tracer,
		logger:   cfg.Logger,
	}
	for _, code := range cfg.StatusCodes {
		s.statuses[code] = true
	}
	for _, ext := range cfg.Extensions {
		ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
		if ext != "" {
			s.exts = append(s.exts, ext)
		}
	}
	if s.pause == nil {
		s.pause = interactive.NewFlag(false)
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer("github.com/waftester/dirhunter/pkg/scanner")
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Stats returns the current counters.
func (s *HTTPScanner) Stats() Stats {
	return Stats{
		Requests: s.requests.Load(),
		Errors:   s.errors.Load(),
		Found:    s.found.Load(),
	}
}

// scan holds the state of one Scan call.
type scan struct {
	*HTTPScanner
	target    string
	baseDepth int
	paths     []string
	term      *report.Sender
	file      *report.Sender
	pool      *workerpool.Pool
	limiter   *rate.Limiter
	dirs      sync.WaitGroup
	visited   sync.Map
}

// Scan implements Scanner.
func (s *HTTPScanner) Scan(ctx context.Context, target string, words *wordlist.Wordlist, baseDepth int, term, file *report.Sender) {
	base, err := directoryURL(target)
	if err != nil {
		s.logger.Warn("skipping target", slog.String("target", target), slog.String("error", err.Error()))
		return
	}

	sc := &scan{
		HTTPScanner: s,
		target:      target,
		baseDepth:   baseDepth,
		paths:       s.candidates(words),
		term:        term,
		file:        file,
		pool:        workerpool.New(s.cfg.Threads),
		limiter:     newLimiter(s.cfg.RateLimit),
	}
	defer sc.pool.Close()

	root := base.String()
	sc.visited.Store(root, struct{}{})
	sc.dirs.Add(1)
	sc.scanDirectory(ctx, root, baseDepth)
	sc.dirs.Wait()
}

// candidates expands the wordlist with extensions in a stable order.
func (s *HTTPScanner) candidates(words *wordlist.Wordlist) []string {
	if words == nil {
		return nil
	}
	sorted := words.Sorted()
	out := make([]string, 0, len(sorted)*(1+len(s.exts)))
	for _, w := range sorted {
		w = strings.TrimPrefix(w, "/")
		if w == "" {
			continue
		}
		out = append(out, w)
		for _, ext := range s.exts {
			out = append(out, w+"."+ext)
		}
	}
	return out
}

func newLimiter(perSecond int) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(perSecond), perSecond)
}

// scanDirectory probes every candidate under dir. Must be preceded by
// dirs.Add(1).
func (sc *scan) scanDirectory(ctx context.Context, dir string, depth int) {
	defer sc.dirs.Done()

	ctx, span := sc.tracer.Start(ctx, "scan.directory",
		trace.WithAttributes(
			attribute.String("dirhunter.directory", dir),
			attribute.Int("dirhunter.depth", depth),
		))
	defer span.End()

	if err := sc.pause.Wait(ctx); err != nil {
		return
	}

	if sc.cfg.Observer != nil {
		sc.cfg.Observer.DirectoryQueued()
	}
	if sc.cfg.Progress != nil {
		sc.cfg.Progress.AddDirectory(dir, len(sc.paths))
	}
	sc.logger.Debug("scanning directory", slog.String("url", dir), slog.Int("depth", depth))

	var baseline fingerprint
	var wildcard bool
	if !sc.cfg.DontFilter {
		var probeURL string
		baseline, probeURL, wildcard = sc.wildcardBaseline(ctx, dir)
		if wildcard {
			_ = sc.term.Send(report.Result{
				URL:           probeURL,
				Target:        sc.target,
				Method:        http.MethodGet,
				Status:        baseline.status,
				ContentLength: baseline.length,
				Lines:         baseline.lines,
				Words:         baseline.words,
				Depth:         depth,
				Wildcard:      true,
				Timestamp:     time.Now(),
			})
		}
	}

	var probes sync.WaitGroup
	for _, path := range sc.paths {
		if err := sc.pause.Wait(ctx); err != nil {
			break
		}
		if sc.limiter != nil {
			if err := sc.limiter.Wait(ctx); err != nil {
				break
			}
		}

		probes.Add(1)
		if !sc.pool.Submit(func() {
			defer probes.Done()
			sc.probe(ctx, dir, path, baseline, wildcard)
		}) {
			probes.Done()
			break
		}
	}
	probes.Wait()

	span.SetAttributes(attribute.Int("dirhunter.requests", len(sc.paths)))
}

// probe requests dir+path and reports the response when it is allowed
// and not a wildcard. Discovered directories are queued for recursion.
func (sc *scan) probe(ctx context.Context, dir, path string, baseline fingerprint, wildcard bool) {
	if err := sc.pause.Wait(ctx); err != nil {
		return
	}

	target := dir + escapePath(path)
	resp, err := sc.fetch(ctx, target)
	if sc.cfg.Progress != nil {
		sc.cfg.Progress.Increment()
	}
	if err != nil {
		sc.errors.Add(1)
		if sc.cfg.Observer != nil {
			sc.cfg.Observer.RequestDone(0)
		}
		sc.logger.Debug("request failed", slog.String("url", target), slog.String("error", err.Error()))
		return
	}
	if sc.cfg.Observer != nil {
		sc.cfg.Observer.RequestDone(resp.status)
	}

	if !sc.reportable(resp.status) {
		return
	}
	if wildcard && baseline.matches(resp.fingerprint()) {
		return
	}

	res := report.Result{
		URL:           target,
		Target:        sc.target,
		Method:        http.MethodGet,
		Status:        resp.status,
		ContentLength: resp.length,
		Lines:         resp.lines,
		Words:         resp.words,
		Depth:         Depth(target),
		Redirect:      resp.location,
		Timestamp:     time.Now(),
	}
	sc.found.Add(1)
	if sc.cfg.Observer != nil {
		sc.cfg.Observer.ResultReported(resp.status)
	}
	if err := sc.term.Send(res); err != nil {
		sc.logger.Debug("terminal channel closed", slog.String("url", target))
	}
	if err := sc.file.Send(res); err != nil {
		sc.logger.Debug("file channel closed", slog.String("url", target))
	}

	if next, ok := sc.directoryOf(target, resp); ok {
		sc.recurse(ctx, next)
	}
}

// recurse schedules a sub-scan of dir if it is new and within the depth
// limit. Called from a probe, so the parent directory still holds a dirs
// reference and the Add cannot race Wait.
func (sc *scan) recurse(ctx context.Context, dir string) {
	depth := Depth(dir)
	if sc.cfg.MaxDepth > 0 && depth-sc.baseDepth > sc.cfg.MaxDepth {
		return
	}
	if _, seen := sc.visited.LoadOrStore(dir, struct{}{}); seen {
		return
	}
	sc.dirs.Add(1)
	go sc.scanSubdirectory(ctx, dir, depth)
}

// scanSubdirectory runs scanDirectory on its own goroutine. A panic is
// logged and abandons only that directory.
func (sc *scan) scanSubdirectory(ctx context.Context, dir string, depth int) {
	defer func() {
		if r := recover(); r != nil {
			sc.logger.Error("directory scan failed",
				slog.String("target", sc.target),
				slog.String("url", dir),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
		}
	}()
	sc.scanDirectory(ctx, dir, depth)
}

// directoryOf decides whether target is a directory: either it redirects
// to itself with a trailing slash, or its URL already ends in a slash and
// it answered with a non-error status.
func (sc *scan) directoryOf(target string, resp *response) (string, bool) {
	if resp.location != "" && resp.status >= 300 && resp.status < 400 {
		if resp.location == target+"/" {
			return resp.location, true
		}
		return "", false
	}
	if strings.HasSuffix(target, "/") && (resp.status < 300 || resp.status == http.StatusUnauthorized || resp.status == http.StatusForbidden) {
		return target, true
	}
	return "", false
}

func (s *HTTPScanner) reportable(status int) bool {
	return s.statuses[status]
}

// response is the part of an HTTP response a scan needs.
type response struct {
	status   int
	hash     uint64 // murmur3 of the body read
	length   int64
	lines    int
	words    int
	location string // absolute
}

func (r *response) fingerprint() fingerprint {
	return fingerprint{
		status: r.status,
		hash:   r.hash,
		lines:  r.lines,
		words:  r.words,
		length: r.length,
	}
}

func (s *HTTPScanner) fetch(ctx context.Context, target string) (*response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}

	s.requests.Add(1)
	resp, err := s.cfg.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer iohelper.DrainAndClose(resp.Body)

	buf := bufpool.Get()
	defer bufpool.Put(buf)
	if _, err := iohelper.ReadBody(buf, resp.Body, iohelper.MaxBodySize); err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	body := buf.Bytes()

	out := &response{
		status: resp.StatusCode,
		hash:   murmur3.Sum64(body),
		length: resp.ContentLength,
		words:  len(bytes.Fields(body)),
	}
	if out.length < 0 {
		out.length = int64(len(body))
	}
	if len(body) > 0 {
		out.lines = bytes.Count(body, []byte{'\n'})
		if body[len(body)-1] != '\n' {
			out.lines++
		}
	}
	if loc := resp.Header.Get("Location"); loc != "" {
		if u, err := resp.Request.URL.Parse(loc); err == nil {
			out.location = u.String()
		} else {
			out.location = loc
		}
	}
	return out, nil
}

// escapePath escapes each segment of a wordlist entry, keeping slashes.
func escapePath(p string) string {
	segs := strings.Split(p, "/")
	for i, seg := range segs {
		segs[i] = url.PathEscape(seg)
	}
	return strings.Join(segs, "/")
}

package scanner

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waftester/dirhunter/pkg/interactive"
	"github.com/waftester/dirhunter/pkg/report"
	"github.com/waftester/dirhunter/pkg/wordlist"
)

func TestDepth(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"http://h", 0},
		{"http://h/", 0},
		{"http://h/a", 1},
		{"http://h/a/", 1},
		{"http://h/a/b", 2},
		{"http://h//a//b/", 2},
		{"http://h/a/b?x=/c/d", 2},
		{"://bad", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Depth(tt.in), tt.in)
	}
}

func TestDirectoryURL(t *testing.T) {
	u, err := directoryURL("http://h/a?q=1#frag")
	require.NoError(t, err)
	assert.Equal(t, "http://h/a/", u.String())

	u, err = directoryURL("http://h")
	require.NoError(t, err)
	assert.Equal(t, "http://h/", u.String())
}

// collect runs one scan and returns what reached each channel.
func collect(t *testing.T, s *HTTPScanner, target string, words *wordlist.Wordlist, fileOn bool) (term, file []report.Result) {
	t.Helper()

	termS, termC := report.NewChannel(10000)
	var fileS *report.Sender
	var fileC <-chan report.Result
	if fileOn {
		fileS, fileC = report.NewChannel(10000)
	} else {
		fileS = report.Discard()
	}

	s.Scan(context.Background(), target, words, Depth(target), termS, fileS)
	termS.Close()
	fileS.Close()

	for r := range termC {
		term = append(term, r)
	}
	if fileC != nil {
		for r := range fileC {
			file = append(file, r)
		}
	}
	return term, file
}

func urls(results []report.Result) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		if !r.Wildcard {
			out = append(out, r.URL)
		}
	}
	sort.Strings(out)
	return out
}

func TestScan_ReportsAllowedStatuses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/admin":
			_, _ = w.Write([]byte("admin panel\nline two\n"))
		case "/login.php":
			w.WriteHeader(http.StatusForbidden)
		case "/broken":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	s := New(Config{Client: srv.Client(), Threads: 4, Extensions: []string{".php"}})
	term, file := collect(t, s, srv.URL, wordlist.New("admin", "login", "broken", "missing"), true)

	want := []string{srv.URL + "/admin", srv.URL + "/login.php"}
	assert.Equal(t, want, urls(term))
	assert.Equal(t, want, urls(file))

	for _, r := range term {
		if r.URL == srv.URL+"/admin" {
			assert.Equal(t, 200, r.Status)
			assert.Equal(t, 2, r.Lines)
			assert.Equal(t, 4, r.Words)
			assert.Equal(t, 1, r.Depth)
			assert.Equal(t, srv.URL, r.Target)
		}
	}
	assert.Equal(t, int64(8), s.Stats().Requests-1, "8 candidates plus one wildcard probe")
}

func TestScan_RecursesIntoRedirectDirectories(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/admin":
			http.Redirect(w, r, "/admin/", http.StatusMovedPermanently)
		case "/admin/admin":
			http.Redirect(w, r, "/admin/admin/", http.StatusMovedPermanently)
		case "/admin/secret", "/admin/admin/secret":
			_, _ = w.Write([]byte("found"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	words := wordlist.New("admin", "secret")

	t.Run("unlimited", func(t *testing.T) {
		s := New(Config{Client: srv.Client(), Threads: 2})
		term, _ := collect(t, s, srv.URL, words, false)
		assert.Equal(t, []string{
			srv.URL + "/admin",
			srv.URL + "/admin/admin",
			srv.URL + "/admin/admin/secret",
			srv.URL + "/admin/secret",
		}, urls(term))
	})

	t.Run("depth one", func(t *testing.T) {
		s := New(Config{Client: srv.Client(), Threads: 2, MaxDepth: 1})
		term, _ := collect(t, s, srv.URL, words, false)
		assert.Equal(t, []string{
			srv.URL + "/admin",
			srv.URL + "/admin/admin",
			srv.URL + "/admin/secret",
		}, urls(term))
	})

	t.Run("depth relative to base", func(t *testing.T) {
		s := New(Config{Client: srv.Client(), Threads: 2, MaxDepth: 1})
		term, _ := collect(t, s, srv.URL+"/admin/", words, false)
		assert.Equal(t, []string{
			srv.URL + "/admin/admin",
			srv.URL + "/admin/admin/secret",
			srv.URL + "/admin/secret",
		}, urls(term))
	})
}

func TestScan_WildcardFiltering(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/real" {
			_, _ = w.Write([]byte("a genuinely different page\nwith more lines\nthan the catch-all"))
			return
		}
		_, _ = w.Write([]byte("catch all for " + r.URL.Path))
	}))
	defer srv.Close()

	words := wordlist.New("one", "two", "real")

	t.Run("filtered", func(t *testing.T) {
		s := New(Config{Client: srv.Client(), Threads: 2})
		term, file := collect(t, s, srv.URL, words, true)

		assert.Equal(t, []string{srv.URL + "/real"}, urls(term))
		assert.Equal(t, []string{srv.URL + "/real"}, urls(file))

		var wildcards int
		for _, r := range term {
			if r.Wildcard {
				wildcards++
			}
		}
		assert.Equal(t, 1, wildcards)
	})

	t.Run("dont filter", func(t *testing.T) {
		s := New(Config{Client: srv.Client(), Threads: 2, DontFilter: true})
		term, _ := collect(t, s, srv.URL, words, false)
		assert.Len(t, urls(term), 3)
		assert.Equal(t, int64(3), s.Stats().Requests)
	})
}

func TestScan_WaitsWhilePaused(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	pause := interactive.NewFlag(true)
	s := New(Config{Client: srv.Client(), Threads: 2, Pause: pause})

	done := make(chan struct{})
	go func() {
		defer close(done)
		collect(t, s, srv.URL, wordlist.New("a", "b", "c"), false)
	}()

	time.Sleep(200 * time.Millisecond)
	assert.Zero(t, hits.Load(), "no request may be sent while paused")

	pause.Set(false)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("scan did not resume")
	}
	assert.Equal(t, int32(4), hits.Load())
}

func TestScan_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	term, _ := report.NewChannel(10)
	s := New(Config{Client: srv.Client()})

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Scan(ctx, srv.URL, wordlist.New("a", "b"), 0, term, report.Discard())
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scan ignored cancellation")
	}
}

func TestScan_TransportErrorsCounted(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	s := New(Config{Client: &http.Client{Timeout: time.Second}, DontFilter: true})
	term, _ := collect(t, s, url, wordlist.New("a", "b"), false)

	assert.Empty(t, term)
	assert.Equal(t, int64(2), s.Stats().Errors)
}

type countingObserver struct {
	mu        sync.Mutex
	requests  int
	dirs      int
	reported  int
	lastCodes []int
}

func (o *countingObserver) RequestDone(status int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.requests++
	o.lastCodes = append(o.lastCodes, status)
}

func (o *countingObserver) DirectoryQueued() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.dirs++
}

func (o *countingObserver) ResultReported(int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.reported++
}

type countingProgress struct {
	dirs  atomic.Int32
	total atomic.Int32
	done  atomic.Int32
}

func (p *countingProgress) AddDirectory(_ string, n int) {
	p.dirs.Add(1)
	p.total.Add(int32(n))
}

func (p *countingProgress) Increment() { p.done.Add(1) }

func TestScan_ObserverAndProgress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/ok") {
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	obs := &countingObserver{}
	prog := &countingProgress{}
	s := New(Config{Client: srv.Client(), DontFilter: true, Observer: obs, Progress: prog})
	collect(t, s, srv.URL, wordlist.New("ok", "nope"), false)

	assert.Equal(t, 2, obs.requests)
	assert.Equal(t, 1, obs.dirs)
	assert.Equal(t, 1, obs.reported)
	assert.Equal(t, int32(1), prog.dirs.Load())
	assert.Equal(t, int32(2), prog.total.Load())
	assert.Equal(t, int32(2), prog.done.Load())
}

// panickyProgress panics when a sub-directory is queued.
type panickyProgress struct{ root string }

func (p *panickyProgress) AddDirectory(dir string, _ int) {
	if dir != p.root {
		panic("progress callback exploded")
	}
}

func (p *panickyProgress) Increment() {}

func TestScan_SubdirectoryPanicIsContained(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/admin":
			http.Redirect(w, r, "/admin/", http.StatusMovedPermanently)
		case "/login":
			_, _ = w.Write([]byte("login"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	var logs bytes.Buffer
	var mu sync.Mutex
	logger := slog.New(slog.NewTextHandler(&lockedWriter{mu: &mu, w: &logs}, nil))

	s := New(Config{
		Client:     srv.Client(),
		Threads:    2,
		DontFilter: true,
		Progress:   &panickyProgress{root: srv.URL + "/"},
		Logger:     logger,
	})

	var term []report.Result
	require.NotPanics(t, func() {
		term, _ = collect(t, s, srv.URL, wordlist.New("admin", "login"), false)
	})

	assert.Equal(t, []string{srv.URL + "/admin", srv.URL + "/login"}, urls(term))
	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, logs.String(), "directory scan failed")
	assert.Contains(t, logs.String(), srv.URL+"/admin/")
}

type lockedWriter struct {
	mu *sync.Mutex
	w  *bytes.Buffer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

func TestNewLimiter(t *testing.T) {
	assert.Nil(t, newLimiter(0))
	l := newLimiter(50)
	require.NotNil(t, l)
	assert.Equal(t, 50, l.Burst())
}

func TestEscapePath(t *testing.T) {
	assert.Equal(t, "my%20docs/a%3Fb", escapePath("my docs/a?b"))
	assert.Equal(t, "admin/", escapePath("admin/"))
}

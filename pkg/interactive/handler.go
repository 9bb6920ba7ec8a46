package interactive

import (
	"log/slog"
	"runtime"
	"time"

	"github.com/waftester/dirhunter/pkg/duration"
	"github.com/waftester/dirhunter/pkg/ui"
)

// HandlerConfig configures a Handler.
type HandlerConfig struct {
	Pause     *Flag     // toggled by Enter
	Completed *Flag     // set once by shutdown; ends the loop
	Keys      KeySource // defaults to an idle source

	// PollInterval bounds each wait for a key (default duration.PollInterval).
	PollInterval time.Duration

	// Notify is called after every toggle with the new pause state.
	// Defaults to printing a status line.
	Notify func(paused bool)

	Logger *slog.Logger
}

// Handler watches the terminal for Enter and flips the pause flag. It
// exits only when a poll times out and the completion flag is set, so a
// key press is never lost mid-scan.
type Handler struct {
	cfg    HandlerConfig
	exited chan struct{}

	// line-editing state: Enter toggles only on an otherwise empty line
	pending bool
	sawCR   bool
}

// NewHandler creates a Handler. Pause and Completed must not be nil.
func NewHandler(cfg HandlerConfig) *Handler {
	if cfg.Keys == nil {
		cfg.Keys = idleKeySource{}
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = duration.PollInterval
	}
	if cfg.Notify == nil {
		cfg.Notify = printState
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Handler{cfg: cfg, exited: make(chan struct{})}
}

// Start runs the loop on its own goroutine locked to a dedicated OS
// thread, keeping blocking terminal reads off the scheduler's shared
// threads.
func (h *Handler) Start() {
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		h.Run()
	}()
}

// Run executes the loop on the calling goroutine until completion.
func (h *Handler) Run() {
	defer close(h.exited)
	defer h.cfg.Keys.Close()

	h.cfg.Logger.Debug("pause controller started")
	for {
		key, ok := h.cfg.Keys.Next(h.cfg.PollInterval)
		if !ok {
			if h.cfg.Completed.IsSet() {
				h.cfg.Logger.Debug("pause controller exiting")
				return
			}
			continue
		}
		h.handleKey(key)
	}
}

// Done is closed when Run returns.
func (h *Handler) Done() <-chan struct{} {
	return h.exited
}

func (h *Handler) handleKey(key byte) {
	switch key {
	case '\r':
		if !h.pending {
			h.toggle()
		}
		h.pending = false
		h.sawCR = true
	case '\n':
		if h.sawCR {
			h.sawCR = false
			return
		}
		if !h.pending {
			h.toggle()
		}
		h.pending = false
	default:
		h.pending = true
		h.sawCR = false
	}
}

func (h *Handler) toggle() {
	paused := h.cfg.Pause.Toggle()
	h.cfg.Logger.Debug("pause toggled", slog.Bool("paused", paused))
	h.cfg.Notify(paused)
}

func printState(paused bool) {
	if paused {
		ui.PrintWarning("Scan paused, press [ENTER] to resume")
		return
	}
	ui.PrintInfo("Resuming scan...")
}

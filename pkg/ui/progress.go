package ui

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/schollz/progressbar/v3"

	"github.com/waftester/dirhunter/pkg/duration"
)

// ProgressPrinter owns the progress bar and every line printed while it is
// on screen. Result lines go through Println so the bar is cleared before
// the line and redrawn after it.
//
// The bar tracks requests across all queued directories: AddDirectory grows
// the total, Increment advances it. A hidden printer still writes lines.
type ProgressPrinter struct {
	mu       sync.Mutex
	out      io.Writer
	bar      *progressbar.ProgressBar
	visible  bool
	dirs     int
	total    int64
	finished bool
}

// ProgressConfig configures a ProgressPrinter.
type ProgressConfig struct {
	Out     io.Writer // Result lines; defaults to os.Stdout
	BarOut  io.Writer // Bar rendering; defaults to os.Stderr
	Visible bool      // Draw the bar at all
}

// NewProgressPrinter creates a printer. The bar is drawn only when
// cfg.Visible is set; callers pass false in quiet mode or without a TTY.
func NewProgressPrinter(cfg ProgressConfig) *ProgressPrinter {
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if cfg.BarOut == nil {
		cfg.BarOut = os.Stderr
	}

	theme := progressbar.Theme{
		Saucer:        "=",
		SaucerHead:    ">",
		SaucerPadding: " ",
		BarStart:      "[",
		BarEnd:        "]",
	}
	if UnicodeTerminal() && !IsNoColor() {
		theme.Saucer = "[green]━[reset]"
		theme.SaucerHead = "[green]╸[reset]"
		theme.SaucerPadding = "[dark_gray]━[reset]"
		theme.BarStart = ""
		theme.BarEnd = ""
	}

	bar := progressbar.NewOptions64(0,
		progressbar.OptionSetWriter(cfg.BarOut),
		progressbar.OptionSetVisibility(cfg.Visible),
		progressbar.OptionEnableColorCodes(!IsNoColor()),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("req"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(duration.ProgressRefresh),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(theme),
	)

	return &ProgressPrinter{
		out:     cfg.Out,
		bar:     bar,
		visible: cfg.Visible,
	}
}

// AddDirectory registers another directory of requests to be made.
func (p *ProgressPrinter) AddDirectory(url string, requests int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.finished {
		return
	}
	p.dirs++
	p.total += int64(requests)
	p.bar.ChangeMax64(p.total)
	p.bar.Describe(fmt.Sprintf("%d dirs", p.dirs))
}

// Increment records one completed request.
func (p *ProgressPrinter) Increment() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.finished {
		return
	}
	_ = p.bar.Add64(1)
}

// Println writes line followed by a newline without tearing the bar.
func (p *ProgressPrinter) Println(line string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.visible && !p.finished {
		_ = p.bar.Clear()
	}
	_, err := fmt.Fprintln(p.out, line)
	if p.visible && !p.finished {
		_ = p.bar.RenderBlank()
	}
	return err
}

// Finish clears the bar. Safe to call more than once; later calls are no-ops.
func (p *ProgressPrinter) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.finished {
		return
	}
	p.finished = true
	if p.visible {
		_ = p.bar.Finish()
	}
}

// Directories returns how many directories were registered.
func (p *ProgressPrinter) Directories() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dirs
}

package report

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/waftester/dirhunter/pkg/jsonutil"
	"github.com/waftester/dirhunter/pkg/ui"
)

// Printer prints whole lines. ui.ProgressPrinter implements it so result
// lines do not tear the progress bar.
type Printer interface {
	Println(line string) error
}

// TerminalSink renders styled result lines through a Printer.
type TerminalSink struct {
	out Printer
}

// NewTerminalSink creates a sink printing through p.
func NewTerminalSink(p Printer) *TerminalSink {
	return &TerminalSink{out: p}
}

// Write prints one result line.
func (s *TerminalSink) Write(r Result) error {
	return s.out.Println(Render(r))
}

// Close is a no-op; the printer is finished by the shutdown sequence.
func (s *TerminalSink) Close() error { return nil }

// Render formats r for the terminal with status-code coloring.
func Render(r Result) string {
	method := r.Method
	if method == "" {
		method = "GET"
	}

	var b strings.Builder
	b.WriteString(ui.StatusCodeStyle(r.Status).Render(fmt.Sprintf("%d", r.Status)))
	fmt.Fprintf(&b, " %9s %9dl %9dw %9dc ", method, r.Lines, r.Words, r.ContentLength)
	b.WriteString(ui.URLStyle.Render(r.URL))
	if r.Redirect != "" {
		b.WriteString(" => ")
		b.WriteString(r.Redirect)
	}
	if r.Wildcard {
		b.WriteString(" ")
		b.WriteString(ui.WildcardStyle.Render("(wildcard)"))
	}
	return b.String()
}

// FileSink writes results to a file as plain text lines, or as JSON lines
// when created in JSON mode. Each result is flushed as it is written so the
// file follows the scan in real time.
type FileSink struct {
	out    io.Writer
	w      *bufio.Writer
	closer io.Closer
	enc    *jsonutil.LineEncoder
}

// NewFileSink opens path for appending, creating it if needed.
func NewFileSink(path string, jsonOut bool) (*FileSink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOutputFile, err)
	}
	return NewWriterSink(f, f, jsonOut), nil
}

// NewWriterSink writes to w; closer, if not nil, is closed by Close.
func NewWriterSink(w io.Writer, closer io.Closer, jsonOut bool) *FileSink {
	s := &FileSink{out: w, w: bufio.NewWriter(w), closer: closer}
	if jsonOut {
		s.enc = jsonutil.NewLineEncoder(s.w)
	}
	return s
}

// Write appends one result.
func (s *FileSink) Write(r Result) error {
	var err error
	if s.enc != nil {
		err = s.enc.Encode(r)
	} else {
		_, err = s.w.WriteString(r.String() + "\n")
	}
	if err == nil {
		err = s.w.Flush()
	}
	if err != nil {
		// bufio.Writer keeps its first error; drop the failed line so the
		// next result gets a fresh attempt.
		s.w.Reset(s.out)
	}
	return err
}

// Close flushes and closes the underlying file.
func (s *FileSink) Close() error {
	err := s.w.Flush()
	if s.closer != nil {
		err = errors.Join(err, s.closer.Close())
	}
	return err
}

// Package input resolves the base targets of a scan: either the single
// configured URL or a newline-delimited stream read from standard input.
package input

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"os"
	"strings"
	"unicode/utf8"
)

// maxLineLength caps a single target line.
const maxLineLength = 64 * 1024

// TargetSource consolidates the target input methods
type TargetSource struct {
	URL      string    // From -u
	ListFile string    // Newline-delimited targets in a file
	Stdin    bool      // Read targets from Reader (or os.Stdin)
	Reader   io.Reader // Stream for stdin mode; nil means os.Stdin
}

// Targets yields base targets in arrival order. In stdin mode the sequence
// is lazy: each line is yielded as soon as it is read, and the sequence ends
// when the stream reaches EOF. A malformed line yields an error wrapping
// ErrInputStream and ends the sequence.
func (ts *TargetSource) Targets() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		switch {
		case ts.Stdin:
			r := ts.Reader
			if r == nil {
				r = os.Stdin
			}
			readLines(r, "stdin", yield)
		case ts.ListFile != "":
			f, err := os.Open(ts.ListFile)
			if err != nil {
				yield("", fmt.Errorf("%w: %v", ErrInputStream, err))
				return
			}
			defer f.Close()
			readLines(f, ts.ListFile, yield)
		case ts.URL != "":
			yield(normalize(ts.URL), nil)
		}
	}
}

// Collect drains Targets into a slice, stopping at the first error.
func (ts *TargetSource) Collect() ([]string, error) {
	var targets []string
	for target, err := range ts.Targets() {
		if err != nil {
			return nil, err
		}
		targets = append(targets, target)
	}
	return targets, nil
}

func readLines(r io.Reader, name string, yield func(string, error) bool) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineLength)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := scanner.Bytes()
		if !utf8.Valid(raw) {
			yield("", fmt.Errorf("%w: %s line %d is not valid UTF-8", ErrInputStream, name, lineNo))
			return
		}
		line := strings.TrimSpace(string(raw))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !yield(normalize(line), nil) {
			return
		}
	}
	if err := scanner.Err(); err != nil {
		yield("", fmt.Errorf("%w: reading %s after line %d: %v", ErrInputStream, name, lineNo, err))
	}
}

// normalize adds https:// when the target has no scheme.
func normalize(t string) string {
	if !strings.HasPrefix(t, "http://") && !strings.HasPrefix(t, "https://") {
		return "https://" + t
	}
	return t
}

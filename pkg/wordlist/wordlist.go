// Package wordlist loads the probe words appended to every scanned
// directory. A loaded Wordlist is immutable and safe to share by pointer
// between any number of goroutines.
package wordlist

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/waftester/dirhunter/pkg/defaults"
)

// Wordlist is a deduplicated, read-only set of probe words.
type Wordlist struct {
	path  string
	words map[string]struct{}
}

// Load reads path line by line. Empty lines and lines starting with "#"
// are skipped; duplicates collapse silently. A UTF-8 byte order mark is
// dropped and UTF-16 files with a BOM are transcoded.
//
// The returned error wraps ErrOpen, ErrRead or ErrEmpty. On ErrEmpty the
// (empty) Wordlist is returned alongside the error.
func Load(path string) (*Wordlist, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	defer f.Close()

	wl, err := Read(f)
	if wl != nil {
		wl.path = path
	}
	if err != nil {
		return wl, fmt.Errorf("%s: %w", path, err)
	}

	slog.Debug("wordlist loaded", slog.String("path", path), slog.Int("words", wl.Len()))
	return wl, nil
}

// utf8BOM is stripped from the first line before validation.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Read builds a Wordlist from r using the same rules as Load.
func Read(r io.Reader) (*Wordlist, error) {
	br := bufio.NewReader(r)
	var src io.Reader = br
	if hasUTF16BOM(br) {
		src = transform.NewReader(br, unicode.BOMOverride(transform.Nop))
	}
	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, 4096), 1024*1024)

	words := make(map[string]struct{})
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := scanner.Bytes()
		if lineNo == 1 {
			raw = bytes.TrimPrefix(raw, utf8BOM)
		}
		if !utf8.Valid(raw) {
			return nil, fmt.Errorf("%w: line %d is not valid UTF-8", ErrRead, lineNo)
		}
		line := strings.TrimSuffix(string(raw), "\r")
		if line == "" || strings.HasPrefix(line, defaults.CommentPrefix) {
			continue
		}
		words[line] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: after line %d: %v", ErrRead, lineNo, err)
	}

	wl := &Wordlist{words: words}
	if len(words) == 0 {
		return wl, ErrEmpty
	}
	return wl, nil
}

func hasUTF16BOM(br *bufio.Reader) bool {
	b, _ := br.Peek(2)
	if len(b) < 2 {
		return false
	}
	return (b[0] == 0xFF && b[1] == 0xFE) || (b[0] == 0xFE && b[1] == 0xFF)
}

// New builds a Wordlist from literal words, applying the same filtering as
// Load. Intended for tests and embedded lists.
func New(words ...string) *Wordlist {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		if w == "" || strings.HasPrefix(w, defaults.CommentPrefix) {
			continue
		}
		set[w] = struct{}{}
	}
	return &Wordlist{words: set}
}

// Path returns the file the list was loaded from, if any.
func (wl *Wordlist) Path() string { return wl.path }

// Len returns the number of distinct words.
func (wl *Wordlist) Len() int { return len(wl.words) }

// Contains reports whether word is in the list.
func (wl *Wordlist) Contains(word string) bool {
	_, ok := wl.words[word]
	return ok
}

// All iterates the words in unspecified order.
func (wl *Wordlist) All() iter.Seq[string] {
	return maps.Keys(wl.words)
}

// Sorted returns a sorted copy of the words.
func (wl *Wordlist) Sorted() []string {
	return slices.Sorted(maps.Keys(wl.words))
}

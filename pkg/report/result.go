// Package report carries scan results from scan tasks to output sinks.
//
// Each sink is fed by one channel. Producers hold reference-counted Sender
// handles; when the last handle is closed the channel closes and the
// consumer drains what is buffered, then finishes. Nothing that was sent
// is lost as long as every handle is closed before the consumer is
// awaited.
package report

import (
	"fmt"
	"net/http"
	"time"
)

// Result is one probe outcome. It is passed by value and never modified
// after it is sent.
type Result struct {
	URL           string    `json:"url"`
	Target        string    `json:"target"`
	Method        string    `json:"method"`
	Status        int       `json:"status"`
	ContentLength int64     `json:"content_length"`
	Lines         int       `json:"line_count"`
	Words         int       `json:"word_count"`
	Depth         int       `json:"depth"`
	Redirect      string    `json:"redirect,omitempty"`
	Wildcard      bool      `json:"wildcard,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// String renders the plain-text line used by the file sink:
//
//	200      GET       12l       34w      567c http://host/admin
func (r Result) String() string {
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}
	line := fmt.Sprintf("%d %9s %9dl %9dw %9dc %s", r.Status, method, r.Lines, r.Words, r.ContentLength, r.URL)
	if r.Redirect != "" {
		line += " => " + r.Redirect
	}
	return line
}

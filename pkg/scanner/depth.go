package scanner

import (
	"net/url"
	"strings"
)

// Depth returns the number of non-empty path segments in target:
//
//	http://h      -> 0
//	http://h/a    -> 1
//	http://h/a/   -> 1
//	http://h/a/b  -> 2
//
// An unparsable target has depth 0.
func Depth(target string) int {
	u, err := url.Parse(target)
	if err != nil {
		return 0
	}
	n := 0
	for _, seg := range strings.Split(u.Path, "/") {
		if seg != "" {
			n++
		}
	}
	return n
}

// directoryURL returns target with query and fragment removed and a
// trailing slash on the path.
func directoryURL(target string) (*url.URL, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, err
	}
	u.RawQuery = ""
	u.Fragment = ""
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
		u.RawPath = ""
	}
	return u, nil
}

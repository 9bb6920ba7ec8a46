package wordlist

import "errors"

// Sentinel errors for wordlist loading. All three are configuration errors:
// the scan cannot start without a usable wordlist.
var (
	// ErrOpen indicates the wordlist file could not be opened.
	ErrOpen = errors.New("wordlist: cannot open file")

	// ErrRead indicates a line could not be read or decoded.
	ErrRead = errors.New("wordlist: cannot read line")

	// ErrEmpty indicates the file held no usable entries.
	ErrEmpty = errors.New("wordlist: no words found")
)

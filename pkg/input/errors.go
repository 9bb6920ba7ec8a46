package input

import "errors"

// ErrInputStream indicates a target line could not be decoded from the
// input stream. Target resolution stops at the first such line because a
// partial target list would silently under-scan.
var ErrInputStream = errors.New("input: malformed target stream")

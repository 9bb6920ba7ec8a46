package main

import (
	"github.com/waftester/dirhunter/pkg/ui"
)

// fatal prints the one-line error for component and returns code, so call
// sites read `return fatal(...)` from run.
func fatal(code int, component string, err error) int {
	ui.PrintFatal(component, err.Error())
	return code
}

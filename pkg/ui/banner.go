package ui

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/waftester/dirhunter/pkg/defaults"
)

// Global UI state
var (
	silentMode  bool
	noColorMode bool
	uiMu        sync.RWMutex

	// stderr is where banners and status lines go. Swapped in tests.
	stderr io.Writer = os.Stderr
)

// SetSilent enables or disables silent mode (suppresses banner and info lines)
func SetSilent(silent bool) {
	uiMu.Lock()
	defer uiMu.Unlock()
	silentMode = silent
}

// IsSilent returns whether silent mode is enabled
func IsSilent() bool {
	uiMu.RLock()
	defer uiMu.RUnlock()
	return silentMode
}

// SetOutput redirects banners and status lines and returns the previous
// writer.
func SetOutput(w io.Writer) io.Writer {
	uiMu.Lock()
	defer uiMu.Unlock()
	prev := stderr
	stderr = w
	return prev
}

// SetNoColor disables colored output
func SetNoColor(noColor bool) {
	uiMu.Lock()
	defer uiMu.Unlock()
	noColorMode = noColor
	if noColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// IsNoColor returns whether color is disabled
func IsNoColor() bool {
	uiMu.RLock()
	defer uiMu.RUnlock()
	return noColorMode
}

const bannerSeparator = "________________________________________________"

// PrintBanner prints the ffuf-style title box.
func PrintBanner() {
	if IsSilent() {
		return
	}
	fmt.Fprintln(stderr, DividerStyle.Render(bannerSeparator))
	fmt.Fprintln(stderr)
	fmt.Fprintf(stderr, " %s %s\n", BannerStyle.Render(defaults.ToolName), VersionStyle.Render("v"+defaults.Version))
	fmt.Fprintln(stderr, DividerStyle.Render(bannerSeparator))
	fmt.Fprintln(stderr)
}

func printOption(name, value string) {
	fmt.Fprintf(stderr, " :: %s : %s\n", ConfigLabelStyle.Render(name), ConfigValueStyle.Render(value))
}

// configOrder is the display order for PrintConfigBanner.
var configOrder = []string{
	"Target", "Targets", "Wordlist", "Words", "Extensions", "Status Codes",
	"Threads", "Recursion Depth", "Rate Limit", "Timeout", "User-Agent",
	"Proxy", "Insecure", "Wildcard Filter", "Output", "Format", "Config File",
}

// PrintConfigBanner prints the active settings before the scan starts.
// Empty values are skipped; keys outside the known order print last, sorted.
func PrintConfigBanner(options map[string]string) {
	if IsSilent() {
		return
	}

	printed := make(map[string]bool, len(options))
	for _, name := range configOrder {
		if value, ok := options[name]; ok && value != "" {
			printOption(name, value)
			printed[name] = true
		}
	}

	var rest []string
	for name, value := range options {
		if !printed[name] && value != "" {
			rest = append(rest, name)
		}
	}
	slices.Sort(rest)
	for _, name := range rest {
		printOption(name, options[name])
	}

	fmt.Fprintf(stderr, "%s\n\n", DividerStyle.Render(bannerSeparator))
}

// PrintInteractiveHint tells the user how to pause the scan.
func PrintInteractiveHint() {
	if IsSilent() {
		return
	}
	fmt.Fprintf(stderr, " %s\n\n", BracketStyle.Render("Press [ENTER] to pause/resume the scan"))
}

// PrintSuccess prints a success message (to stderr)
func PrintSuccess(message string) {
	fmt.Fprintln(stderr, SuccessStyle.Render("  "+Icon("✔", "[+]")+" "+message))
}

// PrintError prints an error message (to stderr)
func PrintError(message string) {
	fmt.Fprintln(stderr, ErrorStyle.Render("  "+Icon("✖", "[X]")+" "+message))
}

// PrintWarning prints a warning message (to stderr)
func PrintWarning(message string) {
	fmt.Fprintln(stderr, WarningStyle.Render("  "+Icon("⚠", "[!]")+" "+message))
}

// PrintInfo prints an info message (to stderr). Suppressed in silent mode.
func PrintInfo(message string) {
	if IsSilent() {
		return
	}
	fmt.Fprintf(stderr, "  %s %s\n", InfoStyle.Render("*"), message)
}

// PrintFatal prints the one-line fatal error format used before a
// non-zero exit:
//
//	ERROR <component> <message>
//
// It is never suppressed by silent mode.
func PrintFatal(component, message string) {
	message = strings.TrimSpace(message)
	fmt.Fprintf(stderr, "%s %s %s\n", ErrorStyle.Render("ERROR"), component, message)
}

// Package config holds the dirhunter runtime configuration.
//
// Values are resolved in three layers: built-in defaults, an optional YAML
// file (-config, or dirhunter.yaml in the working directory), then
// command-line flags. A flag given on the command line always wins.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/waftester/dirhunter/pkg/defaults"
	"github.com/waftester/dirhunter/pkg/duration"
	"github.com/waftester/dirhunter/pkg/input"
)

// Config holds all CLI configuration options
type Config struct {
	// Target settings
	TargetURL string `yaml:"target_url"`
	Stdin     bool   `yaml:"stdin"` // Read newline-delimited targets from stdin
	ListFile  string `yaml:"list"`  // File of newline-delimited targets

	// Wordlist settings
	Wordlist   string   `yaml:"wordlist"`
	Extensions []string `yaml:"extensions"` // Also probe word.ext for each extension

	// Execution settings
	Threads     int           `yaml:"threads"`      // Concurrent probes per directory
	Depth       int           `yaml:"depth"`        // Max recursion below a target (0 = unlimited)
	Timeout     time.Duration `yaml:"timeout"`      // Per-request timeout
	RateLimit   int           `yaml:"rate_limit"`   // Requests per second per directory (0 = unlimited)
	StatusCodes []int         `yaml:"status_codes"` // Reported response codes
	DontFilter  bool          `yaml:"dont_filter"`  // Disable wildcard filtering

	// Request settings
	UserAgent string            `yaml:"user_agent"`
	Headers   map[string]string `yaml:"headers"`
	Proxy     string            `yaml:"proxy"`
	Insecure  bool              `yaml:"insecure"`

	// Output settings
	Output    string `yaml:"output"` // File sink path (empty = terminal only)
	JSON      bool   `yaml:"json"`   // Write the file sink as JSON lines
	Quiet     bool   `yaml:"quiet"`  // No banner, no progress bars
	NoColor   bool   `yaml:"no_color"`
	Verbosity int    `yaml:"verbosity"`
	DebugLog  string `yaml:"debug_log"` // Send logs to this file instead of stderr

	// Telemetry
	MetricsAddr  string `yaml:"metrics_addr"`  // Serve Prometheus metrics on this address
	OTelEndpoint string `yaml:"otel_endpoint"` // OTLP/gRPC collector for traces

	// ConfigPath is the YAML file the values were read from, if any.
	ConfigPath string `yaml:"-"`
}

// Default returns a Config populated with built-in defaults.
func Default() *Config {
	return &Config{
		Threads:     defaults.Threads,
		Depth:       defaults.Depth,
		Timeout:     duration.HTTPProbing,
		StatusCodes: append([]int(nil), defaults.StatusCodes...),
		UserAgent:   defaults.UAMinimal,
		Headers:     make(map[string]string),
	}
}

// SaveOutput reports whether a file sink was requested.
func (c *Config) SaveOutput() bool {
	return c.Output != ""
}

// LoadFile overlays the YAML document at path onto c.
// Keys absent from the document keep their current values.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: reading %s: %v", ErrInvalidConfig, path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("%w: parsing %s: %v", ErrInvalidConfig, path, err)
	}
	if c.Headers == nil {
		c.Headers = make(map[string]string)
	}
	c.ConfigPath = path
	return nil
}

// Parse resolves a Config from defaults, the optional YAML file and args
// (without the program name). Help output and parse errors go to errOut.
func Parse(args []string, errOut io.Writer) (*Config, error) {
	cfg := Default()

	path, explicit := configPathFromArgs(args)
	if !explicit {
		if _, err := os.Stat(defaults.ConfigFile); err == nil {
			path = defaults.ConfigFile
		}
	}
	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}

	fs := flag.NewFlagSet(defaults.ToolName, flag.ContinueOnError)
	fs.SetOutput(errOut)
	cfg.register(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: unexpected argument %q", ErrInvalidConfig, fs.Arg(0))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// register binds every flag to c. Current field values become the flag
// defaults, so only flags present on the command line override the file.
func (c *Config) register(fs *flag.FlagSet) {
	// === INPUT ===
	fs.StringVar(&c.TargetURL, "u", c.TargetURL, "Target URL")
	fs.StringVar(&c.TargetURL, "url", c.TargetURL, "Target URL (alias)")
	fs.BoolVar(&c.Stdin, "stdin", c.Stdin, "Read targets from stdin")
	fs.StringVar(&c.ListFile, "l", c.ListFile, "File containing target URLs")
	fs.StringVar(&c.ListFile, "list", c.ListFile, "Target list file (alias)")
	fs.StringVar(&c.Wordlist, "w", c.Wordlist, "Wordlist path")
	fs.StringVar(&c.Wordlist, "wordlist", c.Wordlist, "Wordlist path (alias)")
	fs.String("config", c.ConfigPath, "YAML configuration file (default ./"+defaults.ConfigFile+" if present)")

	exts := (*input.StringSliceFlag)(&c.Extensions)
	fs.Var(exts, "x", "File extension(s) to append - comma-separated or repeated")
	fs.Var(exts, "extensions", "File extensions (alias)")

	// === EXECUTION ===
	fs.IntVar(&c.Threads, "t", c.Threads, "Concurrent probes per directory")
	fs.IntVar(&c.Threads, "threads", c.Threads, "Concurrent probes (alias)")
	fs.IntVar(&c.Depth, "d", c.Depth, "Maximum recursion depth, 0 for unlimited")
	fs.IntVar(&c.Depth, "depth", c.Depth, "Maximum recursion depth (alias)")
	fs.DurationVar(&c.Timeout, "T", c.Timeout, "Request timeout")
	fs.DurationVar(&c.Timeout, "timeout", c.Timeout, "Request timeout (alias)")
	fs.IntVar(&c.RateLimit, "rate-limit", c.RateLimit, "Max requests per second per directory, 0 for unlimited")
	codes := &intSliceFlag{vals: &c.StatusCodes}
	fs.Var(codes, "s", "Status codes to report (default "+codes.String()+")")
	fs.Var(codes, "status-codes", "Status codes to report (alias)")
	fs.BoolVar(&c.DontFilter, "dont-filter", c.DontFilter, "Do not filter wildcard responses")

	// === REQUEST ===
	fs.StringVar(&c.UserAgent, "a", c.UserAgent, "User-Agent header")
	fs.StringVar(&c.UserAgent, "user-agent", c.UserAgent, "User-Agent header (alias)")
	hdrs := headerFlag(c.Headers)
	fs.Var(hdrs, "H", "Header 'Name: value' - repeatable")
	fs.Var(hdrs, "headers", "Header (alias)")
	fs.StringVar(&c.Proxy, "p", c.Proxy, "HTTP or SOCKS5 proxy URL")
	fs.StringVar(&c.Proxy, "proxy", c.Proxy, "Proxy (alias)")
	fs.BoolVar(&c.Insecure, "k", c.Insecure, "Skip TLS certificate verification")
	fs.BoolVar(&c.Insecure, "insecure", c.Insecure, "Skip TLS verification (alias)")

	// === OUTPUT ===
	fs.StringVar(&c.Output, "o", c.Output, "Write results to file")
	fs.StringVar(&c.Output, "output", c.Output, "Output file (alias)")
	fs.BoolVar(&c.JSON, "json", c.JSON, "Write the output file as JSON lines")
	fs.BoolVar(&c.Quiet, "q", c.Quiet, "Hide banner and progress bars")
	fs.BoolVar(&c.Quiet, "quiet", c.Quiet, "Quiet (alias)")
	fs.BoolVar(&c.NoColor, "no-color", c.NoColor, "Disable colored output")
	fs.Var((*countFlag)(&c.Verbosity), "v", "Increase log verbosity (repeatable)")
	fs.StringVar(&c.DebugLog, "debug-log", c.DebugLog, "Write logs to file instead of stderr")

	// === TELEMETRY ===
	fs.StringVar(&c.MetricsAddr, "metrics-addr", c.MetricsAddr, "Serve Prometheus metrics on addr (e.g. :9090)")
	fs.StringVar(&c.OTelEndpoint, "otel-endpoint", c.OTelEndpoint, "OTLP/gRPC collector endpoint for traces")
}

// Validate checks field ranges and required values.
func (c *Config) Validate() error {
	if c.Wordlist == "" {
		return fmt.Errorf("%w: wordlist (-w)", ErrMissingRequired)
	}
	if c.TargetURL == "" && c.ListFile == "" && !c.Stdin {
		return fmt.Errorf("%w: target (-u, -l or -stdin)", ErrMissingRequired)
	}
	if c.TargetURL != "" && c.ListFile == "" && !c.Stdin {
		u, err := url.Parse(c.TargetURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: target %q is not an absolute URL", ErrInvalidConfig, c.TargetURL)
		}
	}
	if c.Threads <= 0 {
		return fmt.Errorf("%w: threads must be positive, got %d", ErrInvalidConfig, c.Threads)
	}
	if c.Depth < 0 {
		return fmt.Errorf("%w: depth must not be negative, got %d", ErrInvalidConfig, c.Depth)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("%w: rate limit must not be negative, got %d", ErrInvalidConfig, c.RateLimit)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive, got %v", ErrInvalidConfig, c.Timeout)
	}
	for _, code := range c.StatusCodes {
		if code < 100 || code > 599 {
			return fmt.Errorf("%w: status code %d out of range", ErrInvalidConfig, code)
		}
	}
	return nil
}

// configPathFromArgs pre-scans args for -config so the file can be applied
// before flags are bound.
func configPathFromArgs(args []string) (string, bool) {
	for i, arg := range args {
		if arg == "--" {
			break
		}
		name := strings.TrimLeft(arg, "-")
		if name == arg {
			continue
		}
		if v, ok := strings.CutPrefix(name, "config="); ok {
			return v, true
		}
		if name == "config" && i+1 < len(args) {
			return args[i+1], true
		}
	}
	return "", false
}

// intSliceFlag implements flag.Value for comma-separated integer lists.
// The first Set replaces the defaults; later ones append.
type intSliceFlag struct {
	vals *[]int
	set  bool
}

func (s *intSliceFlag) String() string {
	if s == nil || s.vals == nil {
		return ""
	}
	parts := make([]string, len(*s.vals))
	for i, v := range *s.vals {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

func (s *intSliceFlag) Set(value string) error {
	if !s.set {
		*s.vals = nil
		s.set = true
	}
	for _, v := range strings.Split(value, ",") {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid status code %q", v)
		}
		*s.vals = append(*s.vals, n)
	}
	return nil
}

// headerFlag implements flag.Value for repeated "Name: value" headers.
type headerFlag map[string]string

func (h headerFlag) String() string {
	parts := make([]string, 0, len(h))
	for k, v := range h {
		parts = append(parts, k+": "+v)
	}
	return strings.Join(parts, ", ")
}

func (h headerFlag) Set(value string) error {
	name, val, ok := strings.Cut(value, ":")
	if !ok || strings.TrimSpace(name) == "" {
		return errors.New("header must be 'Name: value'")
	}
	h[strings.TrimSpace(name)] = strings.TrimSpace(val)
	return nil
}

// countFlag is a boolean-style flag that counts its occurrences (-v -v).
type countFlag int

func (c *countFlag) String() string {
	if c == nil {
		return "0"
	}
	return strconv.Itoa(int(*c))
}

func (c *countFlag) Set(value string) error {
	if n, err := strconv.Atoi(value); err == nil && value != "1" {
		*c = countFlag(n)
		return nil
	}
	if b, err := strconv.ParseBool(value); err == nil && !b {
		return nil
	}
	*c++
	return nil
}

// IsBoolFlag lets -v be given without a value.
func (c *countFlag) IsBoolFlag() bool { return true }

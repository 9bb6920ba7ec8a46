package defaults

// Exit codes for the CLI.
const (
	ExitSuccess       = 0   // All scans finished and output was flushed
	ExitConfigError   = 2   // Unreadable or empty wordlist, invalid configuration
	ExitInputError    = 3   // Target stream could not be decoded
	ExitInternalError = 4   // Unexpected internal error
	ExitInterrupted   = 130 // Scan was interrupted by a signal
)

package report

import (
	"log/slog"

	"github.com/waftester/dirhunter/pkg/defaults"
)

// Options configures Initialize.
type Options struct {
	// Terminal receives every result sent to the terminal channel.
	Terminal Sink

	// OutputPath enables the file channel when not empty.
	OutputPath string

	// JSON writes the output file as JSON lines.
	JSON bool

	// Buffer is the capacity of each channel (default defaults.ChannelLarge).
	Buffer int

	// Observe is called with every message reaching the terminal consumer.
	Observe func(Result)

	Logger *slog.Logger
}

// Pipeline holds the two channel owners and their consumers.
type Pipeline struct {
	Term         *Sender
	File         *Sender
	TermConsumer *Consumer
	FileConsumer *Consumer // nil when no output file was requested
}

// Initialize wires the terminal channel to opts.Terminal and, when an
// output path is set, a file channel to a FileSink. Without an output path
// File is a discarding Sender and FileConsumer is nil.
func Initialize(opts Options) (*Pipeline, error) {
	if opts.Buffer <= 0 {
		opts.Buffer = defaults.ChannelLarge
	}
	log := orDefault(opts.Logger)

	p := &Pipeline{}

	var termIn <-chan Result
	p.Term, termIn = NewChannel(opts.Buffer)

	if opts.OutputPath != "" {
		sink, err := NewFileSink(opts.OutputPath, opts.JSON)
		if err != nil {
			p.Term.Close()
			return nil, err
		}
		var fileIn <-chan Result
		p.File, fileIn = NewChannel(opts.Buffer)
		p.FileConsumer = StartConsumer("file", fileIn, sink, nil, log)
		log.Debug("file output enabled", slog.String("path", opts.OutputPath), slog.Bool("json", opts.JSON))
	} else {
		p.File = Discard()
	}

	p.TermConsumer = StartConsumer("terminal", termIn, opts.Terminal, opts.Observe, log)
	return p, nil
}

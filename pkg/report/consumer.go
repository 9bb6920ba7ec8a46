package report

import (
	"fmt"
	"log/slog"
	"sync/atomic"
)

// Sink receives messages one at a time, in the order they arrived at the
// channel. Close is called once after the last message.
type Sink interface {
	Write(r Result) error
	Close() error
}

// Consumer drains one channel into one Sink on its own goroutine.
type Consumer struct {
	name    string
	sink    Sink
	observe func(Result)
	logger  *slog.Logger
	done    chan struct{}
	written atomic.Int64
	failed  atomic.Int64
}

// StartConsumer starts draining in into sink. observe, if not nil, sees
// every message before it is written.
func StartConsumer(name string, in <-chan Result, sink Sink, observe func(Result), logger *slog.Logger) *Consumer {
	c := &Consumer{
		name:    name,
		sink:    sink,
		observe: observe,
		logger:  orDefault(logger),
		done:    make(chan struct{}),
	}
	go c.run(in)
	return c
}

func (c *Consumer) run(in <-chan Result) {
	defer close(c.done)

	for r := range in {
		if c.observe != nil {
			c.observe(r)
		}
		if err := c.sink.Write(r); err != nil {
			c.failed.Add(1)
			err = fmt.Errorf("%w: %s: %v", ErrSink, c.name, err)
			c.logger.Warn("dropping result", slog.String("url", r.URL), slog.String("error", err.Error()))
			continue
		}
		c.written.Add(1)
	}

	if err := c.sink.Close(); err != nil {
		c.logger.Warn("closing sink", slog.String("sink", c.name), slog.String("error", err.Error()))
	}
	c.logger.Debug("consumer finished",
		slog.String("sink", c.name),
		slog.Int64("written", c.written.Load()),
		slog.Int64("failed", c.failed.Load()))
}

// Wait blocks until the channel is closed and fully drained.
func (c *Consumer) Wait() {
	<-c.done
}

// Done is closed when the consumer has finished.
func (c *Consumer) Done() <-chan struct{} {
	return c.done
}

// Written returns how many messages reached the sink.
func (c *Consumer) Written() int64 { return c.written.Load() }

// Failed returns how many sink writes failed.
func (c *Consumer) Failed() int64 { return c.failed.Load() }

func orDefault(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.Default()
}

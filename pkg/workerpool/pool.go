// Package workerpool provides a bounded goroutine pool for I/O-bound work:
// connectivity probes and per-target HTTP requests.
package workerpool

import (
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool runs submitted tasks on at most Cap() goroutines. Workers start
// lazily and exit when the pool is closed. A panicking task is recovered
// and logged; the worker keeps running.
type Pool struct {
	workers int32
	running atomic.Int32
	closed  atomic.Bool

	mu    sync.RWMutex // guards send on tasks against close
	tasks chan func()
	wg    sync.WaitGroup
}

// New creates a pool with the given number of workers.
// Non-positive values fall back to GOMAXPROCS.
func New(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Pool{
		workers: int32(workers),
		tasks:   make(chan func(), workers*4),
	}
}

// Submit queues task for execution, blocking while the queue is full.
// Returns false if the pool is closed.
func (p *Pool) Submit(task func()) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed.Load() {
		return false
	}

	for {
		n := p.running.Load()
		if n >= p.workers {
			break
		}
		if p.running.CompareAndSwap(n, n+1) {
			p.wg.Add(1)
			go p.worker()
			break
		}
	}

	p.tasks <- task
	return true
}

func (p *Pool) worker() {
	defer func() {
		p.running.Add(-1)
		p.wg.Done()
	}()
	for task := range p.tasks {
		p.run(task)
	}
}

func (p *Pool) run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("workerpool: task panicked", slog.Any("panic", r))
		}
	}()
	if task != nil {
		task()
	}
}

// Running returns the current number of running workers.
func (p *Pool) Running() int {
	return int(p.running.Load())
}

// Cap returns the worker capacity.
func (p *Pool) Cap() int {
	return int(p.workers)
}

// Close stops accepting tasks and waits for queued tasks to finish.
// Calling Close more than once is safe.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed.Swap(true) {
		p.mu.Unlock()
		return
	}
	close(p.tasks)
	p.mu.Unlock()
	p.wg.Wait()
}

// IsClosed returns true if the pool is closed.
func (p *Pool) IsClosed() bool {
	return p.closed.Load()
}

// Filter applies fn to each item in parallel and returns the items for
// which fn returned true, in input order. Items that could not be
// submitted (pool closed) are dropped.
func Filter[T any](p *Pool, items []T, fn func(T) bool) []T {
	keep := make([]bool, len(items))
	var wg sync.WaitGroup
	wg.Add(len(items))

	for i, item := range items {
		if !p.Submit(func() {
			defer wg.Done()
			keep[i] = fn(item)
		}) {
			wg.Done()
		}
	}
	wg.Wait()

	results := make([]T, 0, len(items))
	for i, item := range items {
		if keep[i] {
			results = append(results, item)
		}
	}
	return results
}

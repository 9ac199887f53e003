package async

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/crimson-sun/attune/internal/model"
	"github.com/crimson-sun/attune/internal/output"
)

const (
	defaultBufferSize   = 256
	defaultDrainTimeout = 5 * time.Second
)

// ErrClosed is returned by Write after Close.
var ErrClosed = errors.New("async output: closed")

// Option configures an Async wrapper.
type Option func(*Async)

// WithBufferSize sets the channel buffer capacity. Default: 256.
func WithBufferSize(n int) Option {
	return func(a *Async) { a.bufSize = n }
}

// WithOnError sets the callback invoked when the inner output's Write fails.
// Default: logs a warning via slog.
func WithOnError(f func(error)) Option {
	return func(a *Async) { a.errFunc = f }
}

// WithDropOnFull makes Write drop the analysis instead of blocking when the
// buffer is full.
func WithDropOnFull() Option {
	return func(a *Async) { a.dropOnFull = true }
}

// WithDrainTimeout bounds how long Close waits for buffered analyses.
func WithDrainTimeout(d time.Duration) Option {
	return func(a *Async) { a.drainTimeout = d }
}

// Async decouples request handling from slow outputs via a buffered channel.
// A background goroutine drains the channel into the wrapped output; its
// errors go to errFunc rather than the caller.
type Async struct {
	inner        output.Output
	ch           chan model.Analysis
	done         chan struct{}
	errFunc      func(error)
	bufSize      int
	dropOnFull   bool
	drainTimeout time.Duration

	mu     sync.RWMutex
	closed bool
}

// New wraps inner and starts the drain goroutine.
func New(inner output.Output, opts ...Option) *Async {
	a := &Async{
		inner:        inner,
		bufSize:      defaultBufferSize,
		drainTimeout: defaultDrainTimeout,
		errFunc:      func(err error) { slog.Warn("async output write error", "error", err) },
	}
	for _, opt := range opts {
		opt(a)
	}
	a.ch = make(chan model.Analysis, a.bufSize)
	a.done = make(chan struct{})
	go a.drain()
	return a
}

// Write queues a. It blocks while the buffer is full unless WithDropOnFull
// is set, and honors ctx while blocked.
func (a *Async) Write(ctx context.Context, an model.Analysis) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return ErrClosed
	}

	if a.dropOnFull {
		select {
		case a.ch <- an:
		default:
			slog.Warn("async output buffer full, dropping analysis",
				"id", an.ID, "emotion", an.Final.Label)
		}
		return nil
	}
	select {
	case a.ch <- an:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting analyses, waits for the drain (bounded by the drain
// timeout), then closes the inner output. Safe to call more than once.
func (a *Async) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	close(a.ch)
	a.mu.Unlock()

	t := time.NewTimer(a.drainTimeout)
	defer t.Stop()
	select {
	case <-a.done:
	case <-t.C:
		slog.Warn("async output drain timed out", "pending", len(a.ch))
	}
	return a.inner.Close()
}

func (a *Async) drain() {
	defer close(a.done)
	for an := range a.ch {
		if err := a.inner.Write(context.Background(), an); err != nil {
			a.errFunc(err)
		}
	}
}

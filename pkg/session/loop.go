package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/vango-dev/shirtform/pkg/reactive"
)

// DefaultQueueSize is the task buffer of a Loop.
const DefaultQueueSize = 256

var (
	// ErrClosed is returned when a Loop has stopped.
	ErrClosed = errors.New("session: loop closed")

	// ErrQueueFull is returned when a task cannot be queued without blocking.
	ErrQueueFull = errors.New("session: queue full")
)

// PanicError wraps a value recovered from a task.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("session: task panicked: %v", e.Value)
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithQueueSize sets the task buffer size.
func WithQueueSize(n int) LoopOption {
	return func(l *Loop) {
		if n > 0 {
			l.size = n
		}
	}
}

// WithPanicHandler is called on the loop goroutine after a task panics.
func WithPanicHandler(fn func(*PanicError)) LoopOption {
	return func(l *Loop) {
		l.onPanic = fn
	}
}

// Loop serializes functions onto one goroutine. It implements
// reactive.WaitDispatcher.
type Loop struct {
	logger  *slog.Logger
	size    int
	onPanic func(*PanicError)

	tasks chan func()
	done  chan struct{}

	closeOnce sync.Once
	running   atomic.Bool
	processed atomic.Uint64
}

var _ reactive.WaitDispatcher = (*Loop)(nil)

// NewLoop creates a stopped loop. Call Run to start it.
func NewLoop(logger *slog.Logger, opts ...LoopOption) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Loop{
		logger: logger,
		size:   DefaultQueueSize,
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.tasks = make(chan func(), l.size)
	return l
}

// Run processes tasks until ctx is cancelled or Close is called. It must be
// called at most once.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return errors.New("session: loop already running")
	}
	defer reactive.ReleaseGoroutine()
	defer l.Close()

	for {
		select {
		case fn := <-l.tasks:
			l.execute(fn)
		case <-l.done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// execute runs fn with panic recovery.
func (l *Loop) execute(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			pe := &PanicError{Value: r, Stack: debug.Stack()}
			l.logger.Error("task panic", "panic", r, "stack", string(pe.Stack))
			if l.onPanic != nil {
				l.onPanic(pe)
			}
		}
	}()
	fn()
	l.processed.Add(1)
}

// Dispatch queues fn without blocking. Functions queued after Close, or
// while the queue is full, are dropped.
func (l *Loop) Dispatch(fn func()) {
	if err := l.TryDispatch(fn); err != nil && !errors.Is(err, ErrClosed) {
		l.logger.Warn("dispatch queue full, discarding task")
	}
}

// TryDispatch is Dispatch that reports why fn was not queued.
func (l *Loop) TryDispatch(fn func()) error {
	select {
	case <-l.done:
		return ErrClosed
	default:
	}
	select {
	case l.tasks <- fn:
		return nil
	case <-l.done:
		return ErrClosed
	default:
		return ErrQueueFull
	}
}

// DispatchWait queues fn, waiting while the queue is full. It returns
// ErrClosed once the loop stops, or ctx's error. It must not be called from
// the loop goroutine.
func (l *Loop) DispatchWait(ctx context.Context, fn func()) error {
	select {
	case <-l.done:
		return ErrClosed
	default:
	}
	select {
	case l.tasks <- fn:
		return nil
	case <-l.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Do runs fn on the loop and waits for it. A panic in fn is returned as a
// *PanicError.
func (l *Loop) Do(ctx context.Context, fn func() error) error {
	result := make(chan error, 1)
	task := func() {
		defer func() {
			if r := recover(); r != nil {
				result <- &PanicError{Value: r, Stack: debug.Stack()}
				panic(r)
			}
		}()
		result <- fn()
	}

	select {
	case l.tasks <- task:
	case <-l.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-result:
		return err
	case <-l.done:
		// The task may have run just before close.
		select {
		case err := <-result:
			return err
		default:
			return ErrClosed
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the loop. Queued tasks that have not started are dropped.
func (l *Loop) Close() {
	l.closeOnce.Do(func() {
		close(l.done)
	})
}

// Done is closed when the loop stops.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Processed returns the number of tasks that completed without panicking.
func (l *Loop) Processed() uint64 {
	return l.processed.Load()
}

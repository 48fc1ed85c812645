package reactive

import (
	"context"
	"sync"
)

// Dispatcher schedules fn on the goroutine that owns reactive state.
type Dispatcher interface {
	Dispatch(fn func())
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(fn func())

// Dispatch implements Dispatcher.
func (f DispatcherFunc) Dispatch(fn func()) { f(fn) }

// WaitDispatcher is a Dispatcher that can wait for room instead of dropping
// fn. DispatchWait returns an error only when fn will never run.
type WaitDispatcher interface {
	Dispatcher
	DispatchWait(ctx context.Context, fn func()) error
}

// Inline runs dispatched functions immediately on the caller's goroutine.
var Inline Dispatcher = DispatcherFunc(func(fn func()) { fn() })

// Slot serializes asynchronous work for one key (a form field, say). Each
// Begin issues a new token and cancels the work started by the previous one;
// a result may only be applied while its token is still current.
type Slot struct {
	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

// Begin starts a new generation of work and returns its context and token.
func (s *Slot) Begin(parent context.Context) (context.Context, uint64) {
	if parent == nil {
		parent = context.Background()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	s.cancel = cancel
	s.seq++
	return ctx, s.seq
}

// Current reports whether token is the latest one issued.
func (s *Slot) Current(token uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq == token
}

// Token returns the latest issued token, 0 if none.
func (s *Slot) Token() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

// Cancel cancels in-flight work and invalidates its token.
func (s *Slot) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.seq++
}

// Latest describes one unit of latest-wins work.
type Latest[R any] struct {
	// Work computes the result. It runs off the dispatcher goroutine when
	// started with Go.
	Work func(ctx context.Context) R

	// Apply receives the result on the dispatcher goroutine, only if the
	// token is still current.
	Apply func(R)

	// Stale is called on the dispatcher goroutine instead of Apply when a
	// newer generation superseded this one. Optional.
	Stale func()
}

// Run evaluates l inline and applies the result if still current. It returns
// the token issued for this run.
func Run[R any](ctx context.Context, s *Slot, l Latest[R]) uint64 {
	workCtx, token := s.Begin(ctx)
	result := l.Work(workCtx)
	settle(s, token, workCtx, result, l)
	return token
}

// Go evaluates l on a new goroutine and applies the result through d. When d
// is a WaitDispatcher the goroutine waits for room until ctx is done. It
// returns the token issued for this run.
func Go[R any](ctx context.Context, s *Slot, d Dispatcher, l Latest[R]) uint64 {
	if ctx == nil {
		ctx = context.Background()
	}
	workCtx, token := s.Begin(ctx)
	go func() {
		result := l.Work(workCtx)
		apply := func() {
			settle(s, token, workCtx, result, l)
		}
		if wd, ok := d.(WaitDispatcher); ok {
			// Stale results are still delivered so Stale observes them.
			_ = wd.DispatchWait(ctx, apply)
			return
		}
		d.Dispatch(apply)
	}()
	return token
}

func settle[R any](s *Slot, token uint64, workCtx context.Context, result R, l Latest[R]) {
	if workCtx.Err() != nil || !s.Current(token) {
		if l.Stale != nil {
			l.Stale()
		}
		return
	}
	l.Apply(result)
}

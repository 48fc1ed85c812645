package reactive

import (
	"context"
	"sync"
	"testing"
	"time"
)

// queue is a Dispatcher that collects functions until drained.
type queue struct {
	mu  sync.Mutex
	fns []func()
	ch  chan struct{}
}

func newQueue() *queue {
	return &queue{ch: make(chan struct{}, 16)}
}

func (q *queue) Dispatch(fn func()) {
	q.mu.Lock()
	q.fns = append(q.fns, fn)
	q.mu.Unlock()
	q.ch <- struct{}{}
}

func (q *queue) wait(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-q.ch:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for dispatch %d", i+1)
		}
	}
}

func (q *queue) drain() {
	q.mu.Lock()
	fns := q.fns
	q.fns = nil
	q.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func TestSlotTokensIncrease(t *testing.T) {
	var s Slot
	_, t1 := s.Begin(context.Background())
	_, t2 := s.Begin(context.Background())

	if t2 <= t1 {
		t.Errorf("expected increasing tokens, got %d then %d", t1, t2)
	}
	if s.Current(t1) {
		t.Error("superseded token should not be current")
	}
	if !s.Current(t2) {
		t.Error("latest token should be current")
	}
}

func TestSlotBeginCancelsPrevious(t *testing.T) {
	var s Slot
	ctx1, _ := s.Begin(context.Background())
	s.Begin(context.Background())

	if ctx1.Err() == nil {
		t.Error("expected previous context to be cancelled")
	}
}

func TestRunAppliesInline(t *testing.T) {
	var s Slot
	var got string
	Run(context.Background(), &s, Latest[string]{
		Work:  func(context.Context) string { return "ok" },
		Apply: func(v string) { got = v },
	})
	if got != "ok" {
		t.Errorf("expected ok, got %q", got)
	}
}

func TestGoDiscardsStaleResult(t *testing.T) {
	var s Slot
	q := newQueue()

	release := make(chan struct{})
	var applied []string
	stale := 0

	// The first, slow generation finishes after the second.
	Go(context.Background(), &s, q, Latest[string]{
		Work: func(context.Context) string {
			<-release
			return "old"
		},
		Apply: func(v string) { applied = append(applied, v) },
		Stale: func() { stale++ },
	})
	Go(context.Background(), &s, q, Latest[string]{
		Work:  func(context.Context) string { return "new" },
		Apply: func(v string) { applied = append(applied, v) },
		Stale: func() { stale++ },
	})

	q.wait(t, 1)
	q.drain()
	close(release)
	q.wait(t, 1)
	q.drain()

	if len(applied) != 1 || applied[0] != "new" {
		t.Errorf("expected only the newest result applied, got %v", applied)
	}
	if stale != 1 {
		t.Errorf("expected 1 stale result, got %d", stale)
	}
}

func TestSlotCancelInvalidates(t *testing.T) {
	var s Slot
	q := newQueue()
	applied := false
	stale := false

	Go(context.Background(), &s, q, Latest[int]{
		Work:  func(ctx context.Context) int { <-ctx.Done(); return 0 },
		Apply: func(int) { applied = true },
		Stale: func() { stale = true },
	})
	s.Cancel()

	q.wait(t, 1)
	q.drain()

	if applied {
		t.Error("cancelled work should not apply")
	}
	if !stale {
		t.Error("cancelled work should be reported stale")
	}
}

// waitQueue is a WaitDispatcher with no buffer: every send waits for the
// test to receive it.
type waitQueue struct {
	t   *testing.T
	fns chan func()
}

func (q *waitQueue) Dispatch(func()) {
	q.t.Error("Dispatch used instead of DispatchWait")
}

func (q *waitQueue) DispatchWait(ctx context.Context, fn func()) error {
	select {
	case q.fns <- fn:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestGoWaitsForWaitDispatcher(t *testing.T) {
	var s Slot
	q := &waitQueue{t: t, fns: make(chan func())}
	applied := make(chan string, 1)

	Go(context.Background(), &s, q, Latest[string]{
		Work:  func(context.Context) string { return "ok" },
		Apply: func(v string) { applied <- v },
	})

	// The result is held until the dispatcher has room.
	time.Sleep(20 * time.Millisecond)
	select {
	case fn := <-q.fns:
		fn()
	case <-time.After(2 * time.Second):
		t.Fatal("result was never dispatched")
	}

	if got := <-applied; got != "ok" {
		t.Errorf("expected ok, got %q", got)
	}
}

func TestGoStopsWaitingWhenContextEnds(t *testing.T) {
	var s Slot
	q := &waitQueue{t: t, fns: make(chan func())}
	ctx, cancel := context.WithCancel(context.Background())
	worked := make(chan struct{})

	Go(ctx, &s, q, Latest[int]{
		Work:  func(context.Context) int { close(worked); return 1 },
		Apply: func(int) { t.Error("result applied after its context ended") },
	})
	<-worked
	cancel()

	select {
	case fn := <-q.fns:
		// The send raced the cancel; settle must still refuse it.
		fn()
	case <-time.After(50 * time.Millisecond):
	}
}

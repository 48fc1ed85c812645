package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/vango-dev/shirtform/pkg/form"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startLoop(t *testing.T, opts ...LoopOption) *Loop {
	t.Helper()
	l := NewLoop(quietLogger(), opts...)
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		l.Run(ctx)
		close(stopped)
	}()
	t.Cleanup(func() {
		cancel()
		<-stopped
	})
	return l
}

func TestLoopRunsTasksInOrder(t *testing.T) {
	l := startLoop(t)

	var got []int
	for i := 0; i < 10; i++ {
		i := i
		l.Dispatch(func() { got = append(got, i) })
	}
	if err := l.Do(context.Background(), func() error { return nil }); err != nil {
		t.Fatalf("Do: %v", err)
	}

	for i, v := range got {
		if v != i {
			t.Fatalf("expected tasks in order, got %v", got)
		}
	}
	if len(got) != 10 {
		t.Errorf("expected 10 tasks, got %d", len(got))
	}
}

func TestLoopDoReturnsError(t *testing.T) {
	l := startLoop(t)

	want := errors.New("boom")
	if err := l.Do(context.Background(), func() error { return want }); !errors.Is(err, want) {
		t.Errorf("expected %v, got %v", want, err)
	}
}

func TestLoopRecoversPanics(t *testing.T) {
	var mu sync.Mutex
	var panics []*PanicError
	l := startLoop(t, WithPanicHandler(func(pe *PanicError) {
		mu.Lock()
		panics = append(panics, pe)
		mu.Unlock()
	}))

	l.Dispatch(func() { panic("dispatch") })
	err := l.Do(context.Background(), func() error { panic("do") })

	var pe *PanicError
	if !errors.As(err, &pe) || pe.Value != "do" {
		t.Fatalf("expected PanicError from Do, got %v", err)
	}

	// The loop keeps running after both panics.
	if err := l.Do(context.Background(), func() error { return nil }); err != nil {
		t.Fatalf("loop stopped after panic: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(panics) != 2 {
		t.Errorf("expected 2 panics reported, got %d", len(panics))
	}
}

func TestLoopClosed(t *testing.T) {
	l := NewLoop(quietLogger())
	l.Close()

	if err := l.TryDispatch(func() {}); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
	if err := l.Do(context.Background(), func() error { return nil }); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
	if err := l.Run(context.Background()); err != nil {
		t.Errorf("Run on closed loop should return nil, got %v", err)
	}
}

func TestLoopQueueFull(t *testing.T) {
	l := NewLoop(quietLogger(), WithQueueSize(1))
	defer l.Close()

	if err := l.TryDispatch(func() {}); err != nil {
		t.Fatalf("first dispatch: %v", err)
	}
	if err := l.TryDispatch(func() {}); !errors.Is(err, ErrQueueFull) {
		t.Errorf("expected ErrQueueFull, got %v", err)
	}
}

func TestLoopStopsOnContext(t *testing.T) {
	l := NewLoop(quietLogger())
	ctx, cancel := context.WithCancel(context.Background())

	errc := make(chan error, 1)
	go func() { errc <- l.Run(ctx) }()
	cancel()

	select {
	case err := <-errc:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop")
	}

	select {
	case <-l.Done():
	default:
		t.Error("expected Done to be closed")
	}
}

// The loop drives an async controller: validation runs on workers and the
// results come back through Dispatch.
func TestLoopDrivesAsyncController(t *testing.T) {
	l := startLoop(t)
	ctx := context.Background()

	ctl := form.NewController(form.DefaultSchema(),
		form.WithLogger(quietLogger()),
		form.WithMode(form.ModeAsync),
		form.WithDispatcher(l),
	)

	states := make(chan form.State, 64)
	err := l.Do(ctx, func() error {
		if err := ctl.Mount(); err != nil {
			return err
		}
		_, err := ctl.Subscribe(func(s form.State) { states <- s })
		return err
	})
	if err != nil {
		t.Fatalf("mount: %v", err)
	}
	defer l.Do(ctx, func() error { ctl.Dispose(); return nil })

	err = l.Do(ctx, func() error {
		if err := ctl.SetText(form.FieldFullName, "Jacob Smith"); err != nil {
			return err
		}
		if err := ctl.SetText(form.FieldShirtSize, "M"); err != nil {
			return err
		}
		return ctl.ToggleAnimal("1", true)
	})
	if err != nil {
		t.Fatalf("input: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case s := <-states:
			if s.SubmitEnabled {
				return
			}
		case <-deadline:
			t.Fatal("submit never became enabled")
		}
	}
}

func TestLoopDispatchWaitBlocksUntilRoom(t *testing.T) {
	l := NewLoop(quietLogger(), WithQueueSize(1))
	l.Dispatch(func() {})
	if err := l.TryDispatch(func() {}); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}

	ran := make(chan struct{})
	queued := make(chan error, 1)
	go func() {
		queued <- l.DispatchWait(context.Background(), func() { close(ran) })
	}()

	select {
	case err := <-queued:
		t.Fatalf("expected DispatchWait to wait for room, returned %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		l.Run(ctx)
		close(stopped)
	}()
	t.Cleanup(func() {
		cancel()
		<-stopped
	})

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("task queued by DispatchWait never ran")
	}
	if err := <-queued; err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestLoopDispatchWaitStops(t *testing.T) {
	l := NewLoop(quietLogger(), WithQueueSize(1))
	l.Dispatch(func() {})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := l.DispatchWait(ctx, func() {}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}

	l.Close()
	if err := l.DispatchWait(context.Background(), func() {}); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

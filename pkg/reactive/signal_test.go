package reactive

import (
	"sync"
	"testing"
)

func TestSignalBasic(t *testing.T) {
	count := NewSignal(0)

	if count.Get() != 0 {
		t.Errorf("expected initial value 0, got %d", count.Get())
	}

	count.Set(5)
	if count.Get() != 5 {
		t.Errorf("expected value 5, got %d", count.Get())
	}

	count.Update(func(n int) int { return n * 2 })
	if count.Get() != 10 {
		t.Errorf("expected value 10, got %d", count.Get())
	}
}

func TestSignalPeek(t *testing.T) {
	count := NewSignal(42)
	listener := newTestListener()

	WithListener(listener, func() {
		if v := count.Peek(); v != 42 {
			t.Errorf("expected 42, got %d", v)
		}
	})

	count.Set(100)
	if listener.getDirtyCount() != 0 {
		t.Errorf("Peek should not subscribe listener, got %d notifications", listener.getDirtyCount())
	}
}

func TestSignalSubscription(t *testing.T) {
	count := NewSignal(0)
	listener := newTestListener()

	WithListener(listener, func() {
		_ = count.Get()
		_ = count.Get()
	})

	if n := count.base.subscriberCount(); n != 1 {
		t.Errorf("expected 1 subscriber after duplicate reads, got %d", n)
	}

	count.Set(1)
	if listener.getDirtyCount() != 1 {
		t.Errorf("expected 1 notification, got %d", listener.getDirtyCount())
	}
}

func TestSignalNoNotifyOnEqual(t *testing.T) {
	name := NewSignal("abc")
	listener := newTestListener()
	WithListener(listener, func() { _ = name.Get() })

	name.Set("abc")
	if listener.getDirtyCount() != 0 {
		t.Errorf("expected no notification for equal value, got %d", listener.getDirtyCount())
	}
}

func TestSignalSliceEquality(t *testing.T) {
	ids := NewSignal([]string{"1"})
	listener := newTestListener()
	WithListener(listener, func() { _ = ids.Get() })

	ids.Set([]string{"1"})
	if listener.getDirtyCount() != 0 {
		t.Errorf("expected deep-equal slice to be a no-op, got %d", listener.getDirtyCount())
	}

	ids.Set([]string{"1", "2"})
	if listener.getDirtyCount() != 1 {
		t.Errorf("expected 1 notification, got %d", listener.getDirtyCount())
	}
}

func TestSignalWithEquals(t *testing.T) {
	s := NewSignal(1).WithEquals(func(a, b int) bool { return a%2 == b%2 })
	listener := newTestListener()
	WithListener(listener, func() { _ = s.Get() })

	s.Set(3)
	if listener.getDirtyCount() != 0 {
		t.Error("custom equality should suppress notification")
	}
	if s.Peek() != 1 {
		t.Errorf("expected value to stay 1, got %d", s.Peek())
	}
}

func TestSignalUpdateSeesLatest(t *testing.T) {
	m := NewSignal(map[string]string{})

	var wg sync.WaitGroup
	for _, key := range []string{"a", "b", "c", "d"} {
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			defer ReleaseGoroutine()
			m.Update(func(old map[string]string) map[string]string {
				next := make(map[string]string, len(old)+1)
				for k, v := range old {
					next[k] = v
				}
				next[key] = key
				return next
			})
		}(key)
	}
	wg.Wait()

	if got := len(m.Peek()); got != 4 {
		t.Errorf("expected 4 merged keys, got %d", got)
	}
}

func TestBatchDeduplicates(t *testing.T) {
	a := NewSignal(0)
	b := NewSignal(0)
	listener := newTestListener()
	WithListener(listener, func() {
		_ = a.Get()
		_ = b.Get()
	})

	Batch(func() {
		a.Set(1)
		b.Set(1)
		if listener.getDirtyCount() != 0 {
			t.Error("listener notified before batch completed")
		}
	})

	if listener.getDirtyCount() != 1 {
		t.Errorf("expected 1 notification after batch, got %d", listener.getDirtyCount())
	}
}

func TestUntracked(t *testing.T) {
	count := NewSignal(0)
	listener := newTestListener()

	WithListener(listener, func() {
		Untracked(func() { _ = count.Get() })
	})

	count.Set(1)
	if listener.getDirtyCount() != 0 {
		t.Error("Untracked read should not subscribe")
	}
}

package reactive

import "testing"

func TestOwnerDisposeOrder(t *testing.T) {
	root := NewOwner(nil)
	child := NewOwner(root)

	var order []string
	root.OnCleanup(func() { order = append(order, "root-1") })
	root.OnCleanup(func() { order = append(order, "root-2") })
	child.OnCleanup(func() { order = append(order, "child") })

	root.Dispose()

	want := []string{"child", "root-2", "root-1"}
	if len(order) != len(want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("expected %v, got %v", want, order)
			break
		}
	}

	if !child.IsDisposed() {
		t.Error("child should be disposed with its parent")
	}
}

func TestOwnerCleanupAfterDispose(t *testing.T) {
	owner := NewOwner(nil)
	owner.Dispose()

	ran := false
	owner.OnCleanup(func() { ran = true })
	if !ran {
		t.Error("cleanup registered on a disposed owner should run immediately")
	}
}

func TestOwnerChildPendingEffects(t *testing.T) {
	root := NewOwner(nil)
	defer root.Dispose()
	child := NewOwner(root)

	s := NewSignal(0)
	runs := 0
	WithOwner(child, func() {
		CreateEffect(func() Cleanup {
			_ = s.Get()
			runs++
			return nil
		})
	})

	s.Set(1)
	if !root.HasPendingEffects() {
		t.Fatal("root should report pending effects of its children")
	}
	root.RunPendingEffects()
	if runs != 2 {
		t.Errorf("expected 2 runs, got %d", runs)
	}
}

func TestOnUnmount(t *testing.T) {
	owner := NewOwner(nil)
	ran := false
	WithOwner(owner, func() {
		OnUnmount(func() { ran = true })
	})
	owner.Dispose()
	if !ran {
		t.Error("OnUnmount callback should run on dispose")
	}
}

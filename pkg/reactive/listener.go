package reactive

// Listener is anything that can be notified when a dependency changes.
type Listener interface {
	// MarkDirty notifies the listener that one of its dependencies changed.
	MarkDirty()

	// ID returns a unique identifier used for deduplication.
	ID() uint64
}

// Cleanup is returned by effects. It runs before the effect re-runs and when
// the effect is disposed.
type Cleanup func()

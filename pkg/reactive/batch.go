package reactive

// Batch groups signal writes so each affected listener is notified once,
// after the outermost batch completes.
//
//	reactive.Batch(func() {
//	    name.Set("Jacob Smith")
//	    size.Set("M")
//	})
func Batch(fn func()) {
	incrementBatchDepth()

	defer func() {
		if decrementBatchDepth() {
			processPendingUpdates()
		}
	}()

	fn()
}

// processPendingUpdates deduplicates and notifies all pending listeners.
func processPendingUpdates() {
	updates := drainPendingUpdates()
	if len(updates) == 0 {
		return
	}

	seen := make(map[uint64]bool, len(updates))
	for _, listener := range updates {
		id := listener.ID()
		if seen[id] {
			continue
		}
		seen[id] = true
		listener.MarkDirty()
	}
}

// Untracked runs fn without subscribing to the signals it reads.
func Untracked(fn func()) {
	old := setCurrentListener(nil)
	defer setCurrentListener(old)
	fn()
}

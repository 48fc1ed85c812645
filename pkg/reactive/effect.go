package reactive

import (
	"sync"
	"sync/atomic"
)

// Effect is a reactive side effect. It runs once when created and again,
// via its owner's pending queue, whenever a signal it read changes.
type Effect struct {
	id uint64

	fn      func() Cleanup
	cleanup Cleanup

	// sources are the signals read during the last run.
	sources   []*signalBase
	sourcesMu sync.Mutex

	owner *Owner

	pending  atomic.Bool
	disposed atomic.Bool

	// name labels the effect in debug logs.
	name string
}

// MarkDirty schedules the effect on its owner. Implements Listener.
func (e *Effect) MarkDirty() {
	if e.disposed.Load() {
		return
	}
	if e.pending.CompareAndSwap(false, true) {
		if e.owner != nil {
			e.owner.scheduleEffect(e)
		}
	}
}

// ID implements Listener.
func (e *Effect) ID() uint64 {
	return e.id
}

// Name returns the label given with EffectName, if any.
func (e *Effect) Name() string {
	return e.name
}

// run executes the effect, re-collecting its sources.
func (e *Effect) run() {
	if e.disposed.Load() {
		return
	}

	e.pending.Store(false)

	if e.cleanup != nil {
		e.cleanup()
		e.cleanup = nil
	}

	e.sourcesMu.Lock()
	for _, source := range e.sources {
		source.unsubscribe(e)
	}
	e.sources = e.sources[:0]
	e.sourcesMu.Unlock()

	old := setCurrentListener(e)
	defer setCurrentListener(old)

	e.cleanup = e.fn()
}

func (e *Effect) addSource(source *signalBase) {
	e.sourcesMu.Lock()
	defer e.sourcesMu.Unlock()

	for _, s := range e.sources {
		if s == source {
			return
		}
	}
	e.sources = append(e.sources, source)
}

// dispose runs the last cleanup and unsubscribes from all sources.
func (e *Effect) dispose() {
	if e.disposed.Swap(true) {
		return
	}

	if e.cleanup != nil {
		e.cleanup()
		e.cleanup = nil
	}

	e.sourcesMu.Lock()
	for _, source := range e.sources {
		source.unsubscribe(e)
	}
	e.sources = nil
	e.sourcesMu.Unlock()
}

// EffectOption configures an Effect.
type EffectOption func(*Effect)

// EffectName labels an effect for logging.
func EffectName(name string) EffectOption {
	return func(e *Effect) {
		e.name = name
	}
}

// CreateEffect creates an effect owned by the current owner and runs it
// immediately. Effects created without an owner run once and never re-run.
func CreateEffect(fn func() Cleanup, opts ...EffectOption) *Effect {
	owner := getCurrentOwner()

	e := &Effect{
		id:    nextID(),
		fn:    fn,
		owner: owner,
	}
	for _, opt := range opts {
		opt(e)
	}

	if owner != nil {
		owner.registerEffect(e)
	}

	e.run()
	return e
}

// OnUnmount registers fn to run when the current owner is disposed.
func OnUnmount(fn func()) {
	if owner := getCurrentOwner(); owner != nil {
		owner.OnCleanup(fn)
	}
}

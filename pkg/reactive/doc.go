// Package reactive provides the fine-grained reactivity primitives the form
// controller is built on.
//
// # Signals
//
// A Signal holds a value. Reading it with Get inside a tracked context (an
// effect body) subscribes the running effect; writing it with Set or Update
// marks every subscriber dirty.
//
//	name := reactive.NewSignal("")
//	reactive.CreateEffect(func() reactive.Cleanup {
//	    fmt.Println("name is", name.Get())
//	    return nil
//	})
//	name.Set("Jacob")
//	owner.RunPendingEffects()
//
// # Owners
//
// Effects belong to the Owner that was current when they were created (see
// WithOwner). Dirty effects are queued on their owner and run by
// RunPendingEffects; Dispose tears the whole scope down.
//
// # Latest-wins async work
//
// Slot guards asynchronous work with a monotonically increasing token. Go
// starts work for a slot and applies its result through a Dispatcher only if
// no newer work was started on the same slot in the meantime.
package reactive

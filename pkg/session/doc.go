// Package session provides the event loop that owns a live form.
//
// A Loop is a single goroutine that runs queued functions one at a time.
// Everything that touches a form.Controller (events from the socket,
// validation results from worker goroutines, snapshot reads) is funnelled
// through it, so the controller never sees concurrent calls:
//
//	loop := session.NewLoop(logger)
//	go loop.Run(ctx)
//
//	ctl := form.NewController(schema, form.WithDispatcher(loop))
//	loop.Do(ctx, func() error { return ctl.Mount() })
//
// Dispatch is fire-and-forget and safe from any goroutine; Do waits for the
// function's result.
package session

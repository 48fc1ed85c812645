// Package tui fills the shirt form from a terminal.
//
// A Filler asks for each field in turn through a PromptDriver, feeding every
// answer to a form.Controller and re-asking while the controller reports a
// message for that field:
//
//	ctl := form.NewController(form.DefaultSchema())
//	ctl.Mount()
//	defer ctl.Dispose()
//	values, err := tui.New().Fill(ctx, ctl)
package tui

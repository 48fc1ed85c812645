package form

// Observer receives validation telemetry from a Controller. Implementations
// must be safe for concurrent use.
type Observer interface {
	// Validated is called when a validation result is applied. field is a
	// form field name or "form" for whole-form validity.
	Validated(field string, valid bool)

	// Discarded is called when a result is dropped because a newer
	// validation for the same field superseded it.
	Discarded(field string)
}

type nopObserver struct{}

func (nopObserver) Validated(string, bool) {}
func (nopObserver) Discarded(string)       {}

package form

import "errors"

var (
	// ErrUnknownField is returned when a field name is not part of the form.
	ErrUnknownField = errors.New("form: unknown field")

	// ErrUnknownAnimal is returned when toggling an id that is not in the
	// catalog.
	ErrUnknownAnimal = errors.New("form: unknown animal")

	// ErrNotSubmittable is returned by Submit while any field is invalid.
	ErrNotSubmittable = errors.New("form: not submittable")

	// ErrDisposed is returned by controller operations after Dispose.
	ErrDisposed = errors.New("form: controller disposed")

	// ErrNotMounted is returned by controller operations before Mount.
	ErrNotMounted = errors.New("form: controller not mounted")

	// ErrCatalogMismatch is returned by CheckCatalog when the schema's
	// allowed values disagree with the catalog.
	ErrCatalogMismatch = errors.New("form: schema does not match catalog")
)

// Package form implements the shirt order form: its values, the declarative
// validation schema and the Controller state machine that keeps errors and
// submit-enablement in step with the values.
//
// A Schema is loaded once and shared. Each mounted Controller holds its own
// state in reactive signals:
//
//	c := form.NewController(form.DefaultSchema())
//	if err := c.Mount(); err != nil {
//		return err
//	}
//	defer c.Dispose()
//
//	c.SetText(form.FieldFullName, "Jacob Smith")
//	c.SetText(form.FieldShirtSize, "M")
//	c.ToggleAnimal("1", true)
//	c.SubmitEnabled() // true
package form

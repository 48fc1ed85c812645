// Package errors provides structured, actionable errors for the shirtform
// command and its configuration.
//
// Every error carries a code that maps to a registered template:
//   - E1xx: configuration (shirtform.json, .env, environment)
//   - E2xx: schema and catalog files
//   - E3xx: command-line usage and input files
//
// Form validation messages are not errors of this package; they are shown
// next to the fields.
//
// # Usage
//
//	err := errors.New("E201").
//	    WithLocation("schema.yaml", 7, 0).
//	    WithSuggestion("Use one of: required, min, max, oneOf, minItems, each").
//	    Wrap(cause)
//
//	fmt.Fprint(os.Stderr, err.Format())
//	// Output:
//	// ERROR E201: Invalid schema file
//	//
//	//   schema.yaml:7
//	//
//	//       5 │   - name: fullName
//	//       6 │     rules:
//	//   →   7 │       - rule: long
//	//       8 │         value: 5
//	//       9 │
//	//
//	//   Hint: Use one of: required, min, max, oneOf, minItems, each
package errors

package form

import (
	"fmt"
	"strings"
)

// Validator checks one value.
type Validator interface {
	// Validate returns nil if value is valid, or an error carrying the
	// user-facing message.
	Validate(value any) error
}

// ValidatorFunc is a function that implements Validator.
type ValidatorFunc func(value any) error

// Validate calls f(value).
func (f ValidatorFunc) Validate(value any) error {
	return f(value)
}

// ValidationError is the only error kind a user ever sees: a message scoped
// to one field.
type ValidationError struct {
	Field   Field
	Message string
}

// Error returns the user-facing message.
func (e ValidationError) Error() string {
	return e.Message
}

// ----------------------------------------------------------------------------
// String Validators
// ----------------------------------------------------------------------------

// Required fails for nil, the empty string and empty collections.
func Required(msg string) Validator {
	if msg == "" {
		msg = "This field is required"
	}
	return ValidatorFunc(func(value any) error {
		if isEmpty(value) {
			return ValidationError{Message: msg}
		}
		return nil
	})
}

// MinLength validates that a string has at least n characters. Empty values
// pass; pair it with Required.
func MinLength(n int, msg string) Validator {
	if msg == "" {
		msg = fmt.Sprintf("Must be at least %d characters", n)
	}
	return ValidatorFunc(func(value any) error {
		s := toString(value)
		if s == "" {
			return nil
		}
		if len([]rune(s)) < n {
			return ValidationError{Message: msg}
		}
		return nil
	})
}

// MaxLength validates that a string has at most n characters.
func MaxLength(n int, msg string) Validator {
	if msg == "" {
		msg = fmt.Sprintf("Must be at most %d characters", n)
	}
	return ValidatorFunc(func(value any) error {
		if len([]rune(toString(value))) > n {
			return ValidationError{Message: msg}
		}
		return nil
	})
}

// OneOf validates that a string is one of allowed. Empty values pass; pair
// it with Required.
func OneOf(allowed []string, msg string) Validator {
	if msg == "" {
		msg = "Must be one of " + strings.Join(allowed, ", ")
	}
	set := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		set[a] = true
	}
	return ValidatorFunc(func(value any) error {
		s := toString(value)
		if s == "" {
			return nil
		}
		if !set[s] {
			return ValidationError{Message: msg}
		}
		return nil
	})
}

// ----------------------------------------------------------------------------
// Collection Validators
// ----------------------------------------------------------------------------

// MinItems validates that a collection has at least n elements.
func MinItems(n int, msg string) Validator {
	if msg == "" {
		msg = fmt.Sprintf("Must select at least %d", n)
	}
	return ValidatorFunc(func(value any) error {
		if len(toStrings(value)) < n {
			return ValidationError{Message: msg}
		}
		return nil
	})
}

// Each applies v to every element of a collection. An empty element always
// fails, since element validators let "" through. The first failing element
// decides the error; msg replaces the element's message when non-empty.
func Each(v Validator, msg string) Validator {
	return ValidatorFunc(func(value any) error {
		for _, item := range toStrings(value) {
			if item == "" {
				if msg == "" {
					return ValidationError{Message: "Items must not be empty"}
				}
				return ValidationError{Message: msg}
			}
			if err := v.Validate(item); err != nil {
				if msg != "" {
					return ValidationError{Message: msg}
				}
				return err
			}
		}
		return nil
	})
}

// ----------------------------------------------------------------------------
// Helpers
// ----------------------------------------------------------------------------

// isEmpty reports whether value counts as missing. Whitespace is content:
// "   " is not empty.
func isEmpty(value any) bool {
	if value == nil {
		return true
	}
	switch v := value.(type) {
	case string:
		return v == ""
	case []string:
		return len(v) == 0
	case []any:
		return len(v) == 0
	default:
		return false
	}
}

// toString converts a value to a string.
func toString(value any) string {
	if value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// toStrings converts a collection value to a string slice. Scalars become a
// one-element slice; nil becomes an empty slice.
func toStrings(value any) []string {
	switch v := value.(type) {
	case nil:
		return nil
	case []string:
		return v
	case []any:
		out := make([]string, len(v))
		for i, item := range v {
			out[i] = toString(item)
		}
		return out
	default:
		return []string{toString(v)}
	}
}

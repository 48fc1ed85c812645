package form

import "slices"

// Field names a form field. The string value is the field's input name.
type Field string

const (
	FieldFullName  Field = "fullName"
	FieldShirtSize Field = "shirtSize"
	FieldAnimals   Field = "animals"
)

// Fields lists every field in display order.
var Fields = []Field{FieldFullName, FieldShirtSize, FieldAnimals}

// ParseField resolves an input name to a Field.
func ParseField(name string) (Field, bool) {
	for _, f := range Fields {
		if string(f) == name {
			return f, true
		}
	}
	return "", false
}

// String implements fmt.Stringer.
func (f Field) String() string {
	return string(f)
}

// Values is a snapshot of the user's input.
type Values struct {
	FullName  string   `json:"fullName" yaml:"fullName"`
	ShirtSize string   `json:"shirtSize" yaml:"shirtSize"`
	Animals   []string `json:"animals" yaml:"animals"`
}

// Get returns the value of one field. Unknown fields return nil.
func (v Values) Get(field Field) any {
	switch field {
	case FieldFullName:
		return v.FullName
	case FieldShirtSize:
		return v.ShirtSize
	case FieldAnimals:
		return v.Animals
	default:
		return nil
	}
}

// Clone returns a copy that shares no memory with v.
func (v Values) Clone() Values {
	v.Animals = slices.Clone(v.Animals)
	if v.Animals == nil {
		v.Animals = []string{}
	}
	return v
}

// Errors maps each field to its current message. An empty message means the
// last validation of that field succeeded.
type Errors map[Field]string

// NewErrors returns an Errors value with an empty entry for every field.
func NewErrors() Errors {
	e := make(Errors, len(Fields))
	for _, f := range Fields {
		e[f] = ""
	}
	return e
}

// Get returns the message for field.
func (e Errors) Get(field Field) string {
	return e[field]
}

// Merge returns a copy of e with field set to msg. The receiver is not
// modified, so Merge can be passed the latest map inside Signal.Update and
// sibling entries written concurrently are preserved.
func (e Errors) Merge(field Field, msg string) Errors {
	next := make(Errors, len(e)+1)
	for k, v := range e {
		next[k] = v
	}
	next[field] = msg
	return next
}

// Valid reports whether every entry is empty.
func (e Errors) Valid() bool {
	for _, msg := range e {
		if msg != "" {
			return false
		}
	}
	return true
}

// Clone returns a copy of e.
func (e Errors) Clone() Errors {
	next := make(Errors, len(e))
	for k, v := range e {
		next[k] = v
	}
	return next
}

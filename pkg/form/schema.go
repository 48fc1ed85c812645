package form

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/shirtform/pkg/catalog"
)

//go:embed schema.yaml
var defaultSchemaYAML []byte

// Rule kinds accepted in schema files.
const (
	RuleRequired = "required"
	RuleMin      = "min"
	RuleMax      = "max"
	RuleOneOf    = "oneOf"
	RuleMinItems = "minItems"
	RuleEach     = "each"
)

// ErrInvalidRule is returned when a schema rule is malformed.
var ErrInvalidRule = errors.New("form: invalid rule")

// Rule is the declarative form of one validator.
type Rule struct {
	Rule    string   `yaml:"rule" json:"rule"`
	Value   int      `yaml:"value,omitempty" json:"value,omitempty"`
	Values  []string `yaml:"values,omitempty" json:"values,omitempty"`
	Message string   `yaml:"message,omitempty" json:"message,omitempty"`
	Each    *Rule    `yaml:"each,omitempty" json:"each,omitempty"`
}

// Group is the ordered rule group of one field.
type Group struct {
	Name  Field  `yaml:"name" json:"name"`
	Rules []Rule `yaml:"rules" json:"rules"`
}

type schemaFile struct {
	Fields []Group `yaml:"fields" json:"fields"`
}

// compiledGroup pairs a group with its validators.
type compiledGroup struct {
	group      Group
	validators []Validator
}

// Schema is an immutable set of rule groups, one per field. A Schema is safe
// for concurrent use and is shared by every controller.
type Schema struct {
	groups map[Field]compiledGroup
}

var (
	defaultSchemaOnce sync.Once
	defaultSchema     *Schema
)

// DefaultSchema returns the embedded schema.
func DefaultSchema() *Schema {
	defaultSchemaOnce.Do(func() {
		s, err := LoadSchema(bytes.NewReader(defaultSchemaYAML))
		if err != nil {
			panic(fmt.Sprintf("form: embedded schema is invalid: %v", err))
		}
		defaultSchema = s
	})
	return defaultSchema
}

// LoadSchema reads a schema from YAML.
func LoadSchema(r io.Reader) (*Schema, error) {
	var file schemaFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("form: decode schema: %w", err)
	}
	return NewSchema(file.Fields...)
}

// LoadSchemaFile reads a schema from a YAML file.
func LoadSchemaFile(path string) (*Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadSchema(f)
}

// NewSchema compiles groups into a Schema. Every form field needs exactly one
// group.
func NewSchema(groups ...Group) (*Schema, error) {
	s := &Schema{groups: make(map[Field]compiledGroup, len(groups))}

	for _, g := range groups {
		if _, ok := ParseField(string(g.Name)); !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownField, g.Name)
		}
		if _, dup := s.groups[g.Name]; dup {
			return nil, fmt.Errorf("%w: field %q declared twice", ErrInvalidRule, g.Name)
		}

		validators := make([]Validator, 0, len(g.Rules))
		for i, r := range g.Rules {
			v, err := compileRule(r)
			if err != nil {
				return nil, fmt.Errorf("field %q rule %d: %w", g.Name, i, err)
			}
			validators = append(validators, v)
		}
		s.groups[g.Name] = compiledGroup{group: cloneGroup(g), validators: validators}
	}

	for _, f := range Fields {
		if _, ok := s.groups[f]; !ok {
			return nil, fmt.Errorf("%w: no rules for field %q", ErrInvalidRule, f)
		}
	}

	return s, nil
}

// compileRule turns a declarative rule into a Validator.
func compileRule(r Rule) (Validator, error) {
	switch r.Rule {
	case RuleRequired:
		return Required(r.Message), nil
	case RuleMin:
		if r.Value < 0 {
			return nil, fmt.Errorf("%w: min must be >= 0", ErrInvalidRule)
		}
		return MinLength(r.Value, r.Message), nil
	case RuleMax:
		if r.Value < 0 {
			return nil, fmt.Errorf("%w: max must be >= 0", ErrInvalidRule)
		}
		return MaxLength(r.Value, r.Message), nil
	case RuleOneOf:
		if len(r.Values) == 0 {
			return nil, fmt.Errorf("%w: oneOf needs values", ErrInvalidRule)
		}
		return OneOf(r.Values, r.Message), nil
	case RuleMinItems:
		if r.Value < 0 {
			return nil, fmt.Errorf("%w: minItems must be >= 0", ErrInvalidRule)
		}
		return MinItems(r.Value, r.Message), nil
	case RuleEach:
		if r.Each == nil {
			return nil, fmt.Errorf("%w: each needs an element rule", ErrInvalidRule)
		}
		inner, err := compileRule(*r.Each)
		if err != nil {
			return nil, err
		}
		return Each(inner, r.Message), nil
	default:
		return nil, fmt.Errorf("%w: unknown rule %q", ErrInvalidRule, r.Rule)
	}
}

// ValidateField validates value against field's group only. It returns nil
// or the ValidationError of the first failing rule.
func (s *Schema) ValidateField(field Field, value any) error {
	g, ok := s.groups[field]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	for _, v := range g.validators {
		if err := v.Validate(value); err != nil {
			var ve ValidationError
			if errors.As(err, &ve) {
				ve.Field = field
				return ve
			}
			return ValidationError{Field: field, Message: err.Error()}
		}
	}
	return nil
}

// ValidateAnimals validates the whole animal selection of values.
func (s *Schema) ValidateAnimals(values Values) error {
	return s.ValidateField(FieldAnimals, values.Animals)
}

// IsFormValid reports whether every group passes for values. It never
// panics; a panicking validator counts as a failure.
func (s *Schema) IsFormValid(values Values) (valid bool) {
	defer func() {
		if recover() != nil {
			valid = false
		}
	}()
	for _, f := range Fields {
		if s.ValidateField(f, values.Get(f)) != nil {
			return false
		}
	}
	return true
}

// ValidateAll validates every field and returns one entry per field.
func (s *Schema) ValidateAll(values Values) Errors {
	errs := NewErrors()
	for _, f := range Fields {
		errs[f] = Message(s.ValidateField(f, values.Get(f)))
	}
	return errs
}

// Groups returns the declarative rule groups in field order.
func (s *Schema) Groups() []Group {
	out := make([]Group, 0, len(Fields))
	for _, f := range Fields {
		out = append(out, cloneGroup(s.groups[f].group))
	}
	return out
}

// MarshalYAML renders the schema in the same shape LoadSchema reads.
func (s *Schema) MarshalYAML() (any, error) {
	return schemaFile{Fields: s.Groups()}, nil
}

// Describe returns the schema as YAML that LoadSchema accepts.
func (s *Schema) Describe() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Allowed returns the values permitted by field's oneOf rule, looking inside
// each rules. It returns nil if the field has no such rule.
func (s *Schema) Allowed(field Field) []string {
	g, ok := s.groups[field]
	if !ok {
		return nil
	}
	for _, r := range g.group.Rules {
		if vals := allowedValues(r); vals != nil {
			return slices.Clone(vals)
		}
	}
	return nil
}

func allowedValues(r Rule) []string {
	switch {
	case r.Rule == RuleOneOf:
		return r.Values
	case r.Rule == RuleEach && r.Each != nil:
		return allowedValues(*r.Each)
	default:
		return nil
	}
}

// CheckCatalog verifies that the schema's allowed shirt sizes and animal ids
// are exactly the catalog's.
func CheckCatalog(s *Schema, c *catalog.Catalog) error {
	if !sameSet(s.Allowed(FieldShirtSize), c.SizeCodes()) {
		return fmt.Errorf("%w: shirt sizes %v vs catalog %v", ErrCatalogMismatch, s.Allowed(FieldShirtSize), c.SizeCodes())
	}
	if !sameSet(s.Allowed(FieldAnimals), c.IDs()) {
		return fmt.Errorf("%w: animals %v vs catalog %v", ErrCatalogMismatch, s.Allowed(FieldAnimals), c.IDs())
	}
	return nil
}

// Message extracts the user-facing message from a validation result; nil
// yields "".
func Message(err error) string {
	if err == nil {
		return ""
	}
	var ve ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	return err.Error()
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	x := slices.Clone(a)
	y := slices.Clone(b)
	slices.Sort(x)
	slices.Sort(y)
	return slices.Equal(x, y)
}

func cloneGroup(g Group) Group {
	rules := make([]Rule, len(g.Rules))
	for i, r := range g.Rules {
		rules[i] = cloneRule(r)
	}
	return Group{Name: g.Name, Rules: rules}
}

func cloneRule(r Rule) Rule {
	r.Values = slices.Clone(r.Values)
	if r.Each != nil {
		inner := cloneRule(*r.Each)
		r.Each = &inner
	}
	return r
}

package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"html"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

var (
	// ErrEmptyCatalog is returned when a catalog has no animals or no sizes.
	ErrEmptyCatalog = errors.New("catalog: no entries")

	// ErrDuplicateID is returned when an animal id or size code repeats.
	ErrDuplicateID = errors.New("catalog: duplicate identifier")

	// ErrInvalidEntry is returned for entries with a blank identifier or a
	// display name that is empty after sanitizing.
	ErrInvalidEntry = errors.New("catalog: invalid entry")
)

// Animal is one selectable animal.
type Animal struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

// Size is one shirt size option.
type Size struct {
	Code  string `yaml:"code" json:"code"`
	Label string `yaml:"label" json:"label"`
}

// Catalog is an ordered, immutable set of animals and sizes.
type Catalog struct {
	animals []Animal
	sizes   []Size
	index   map[string]int
	codes   map[string]int
}

type catalogFile struct {
	Animals []Animal `yaml:"animals"`
	Sizes   []Size   `yaml:"sizes"`
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog

	namePolicyOnce sync.Once
	namePolicy     *bluemonday.Policy
)

// Default returns the embedded catalog: dog, cat, bird, fish and sizes
// Small, Medium, Large.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Load(bytes.NewReader(defaultCatalogYAML))
		if err != nil {
			panic(fmt.Sprintf("catalog: embedded catalog is invalid: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Load reads a catalog from YAML.
func Load(r io.Reader) (*Catalog, error) {
	var file catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}
	return New(file.Animals, file.Sizes)
}

// LoadFile reads a catalog from a YAML file.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// New builds a catalog, preserving the given order.
func New(animals []Animal, sizes []Size) (*Catalog, error) {
	if len(animals) == 0 || len(sizes) == 0 {
		return nil, ErrEmptyCatalog
	}

	c := &Catalog{
		animals: make([]Animal, 0, len(animals)),
		sizes:   make([]Size, 0, len(sizes)),
		index:   make(map[string]int, len(animals)),
		codes:   make(map[string]int, len(sizes)),
	}

	for _, a := range animals {
		id := strings.TrimSpace(a.ID)
		name := sanitizeName(a.Name)
		if id == "" || name == "" {
			return nil, fmt.Errorf("%w: animal %q", ErrInvalidEntry, a.ID)
		}
		if _, dup := c.index[id]; dup {
			return nil, fmt.Errorf("%w: animal %q", ErrDuplicateID, id)
		}
		c.index[id] = len(c.animals)
		c.animals = append(c.animals, Animal{ID: id, Name: name})
	}

	for _, s := range sizes {
		code := strings.TrimSpace(s.Code)
		label := sanitizeName(s.Label)
		if code == "" || label == "" {
			return nil, fmt.Errorf("%w: size %q", ErrInvalidEntry, s.Code)
		}
		if _, dup := c.codes[code]; dup {
			return nil, fmt.Errorf("%w: size %q", ErrDuplicateID, code)
		}
		c.codes[code] = len(c.sizes)
		c.sizes = append(c.sizes, Size{Code: code, Label: label})
	}

	return c, nil
}

// sanitizeName strips all markup from a display name. The policy escapes
// text; the renderer escapes again on output, so entities are decoded here.
func sanitizeName(raw string) string {
	namePolicyOnce.Do(func() {
		namePolicy = bluemonday.StrictPolicy()
	})
	return strings.TrimSpace(html.UnescapeString(namePolicy.Sanitize(strings.TrimSpace(raw))))
}

// Animals returns the animals in catalog order.
func (c *Catalog) Animals() []Animal {
	out := make([]Animal, len(c.animals))
	copy(out, c.animals)
	return out
}

// Sizes returns the sizes in catalog order.
func (c *Catalog) Sizes() []Size {
	out := make([]Size, len(c.sizes))
	copy(out, c.sizes)
	return out
}

// Len returns the number of animals.
func (c *Catalog) Len() int {
	return len(c.animals)
}

// Contains reports whether id names a catalog animal.
func (c *Catalog) Contains(id string) bool {
	_, ok := c.index[id]
	return ok
}

// Animal returns the animal with the given id.
func (c *Catalog) Animal(id string) (Animal, bool) {
	i, ok := c.index[id]
	if !ok {
		return Animal{}, false
	}
	return c.animals[i], true
}

// IDs returns the animal identifiers in catalog order.
func (c *Catalog) IDs() []string {
	out := make([]string, len(c.animals))
	for i, a := range c.animals {
		out[i] = a.ID
	}
	return out
}

// SizeCodes returns the size codes in catalog order.
func (c *Catalog) SizeCodes() []string {
	out := make([]string, len(c.sizes))
	for i, s := range c.sizes {
		out[i] = s.Code
	}
	return out
}

// HasSize reports whether code names a catalog size.
func (c *Catalog) HasSize(code string) bool {
	_, ok := c.codes[code]
	return ok
}

// Ordered returns the known ids from ids, deduplicated and sorted into
// catalog order. Unknown ids are dropped.
func (c *Catalog) Ordered(ids []string) []string {
	present := make(map[string]bool, len(ids))
	for _, id := range ids {
		present[id] = true
	}
	out := make([]string, 0, len(ids))
	for _, a := range c.animals {
		if present[a.ID] {
			out = append(out, a.ID)
		}
	}
	return out
}

package form

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/vango-dev/shirtform/pkg/catalog"
	"github.com/vango-dev/shirtform/pkg/reactive"
)

// formSlot labels whole-form validity in logs and telemetry.
const formSlot = "form"

// Mode selects how validation is evaluated.
type Mode int

const (
	// ModeSync evaluates validation inline, before the triggering call
	// returns.
	ModeSync Mode = iota

	// ModeAsync evaluates validation on worker goroutines and applies the
	// results through the controller's Dispatcher.
	ModeAsync
)

// ParseMode parses "sync" or "async".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sync":
		return ModeSync, nil
	case "async":
		return ModeAsync, nil
	default:
		return ModeSync, fmt.Errorf("form: unknown validation mode %q", s)
	}
}

// String implements fmt.Stringer.
func (m Mode) String() string {
	if m == ModeAsync {
		return "async"
	}
	return "sync"
}

// Checker is the validation surface a Controller depends on. *Schema
// implements it.
type Checker interface {
	IsFormValid(values Values) bool
	ValidateField(field Field, value any) error
	ValidateAnimals(values Values) error
	ValidateAll(values Values) Errors
}

// State is a snapshot of everything the form renders.
type State struct {
	Values        Values `json:"values"`
	Errors        Errors `json:"errors"`
	SubmitEnabled bool   `json:"submitEnabled"`
}

// Option configures a Controller.
type Option func(*Controller)

// WithCatalog sets the animal catalog. Defaults to catalog.Default().
func WithCatalog(c *catalog.Catalog) Option {
	return func(ctl *Controller) {
		ctl.catalog = c
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(ctl *Controller) {
		ctl.logger = l
	}
}

// WithMode sets the validation mode. Defaults to ModeSync.
func WithMode(m Mode) Option {
	return func(ctl *Controller) {
		ctl.mode = m
	}
}

// WithDispatcher sets where asynchronous results are applied. It must run
// functions on the goroutine that drives the controller. Defaults to
// reactive.Inline.
func WithDispatcher(d reactive.Dispatcher) Option {
	return func(ctl *Controller) {
		ctl.dispatcher = d
	}
}

// WithObserver sets the telemetry observer.
func WithObserver(o Observer) Option {
	return func(ctl *Controller) {
		ctl.observer = o
	}
}

// WithContext sets the parent context of validation work. Cancelling it
// discards all in-flight results.
func WithContext(ctx context.Context) Option {
	return func(ctl *Controller) {
		ctl.parent = ctx
	}
}

// Controller owns the form state and its transitions.
//
// Values, errors and submit-enablement live in signals. Text changes
// validate the changed field; an effect watching the animal selection
// validates animals; an effect watching every value re-derives
// submit-enablement. Each validation stream has its own token slot, so a
// result is only applied while it belongs to the latest input, and error
// writes merge into whatever map is current when they are applied.
//
// A Controller is not safe for concurrent use. All methods must be called
// from one goroutine, the same one its Dispatcher runs functions on.
type Controller struct {
	checker    Checker
	catalog    *catalog.Catalog
	logger     *slog.Logger
	mode       Mode
	dispatcher reactive.Dispatcher
	observer   Observer
	parent     context.Context

	ctx    context.Context
	cancel context.CancelFunc
	owner  *reactive.Owner

	fullName      *reactive.Signal[string]
	shirtSize     *reactive.Signal[string]
	animals       *reactive.Signal[[]string]
	errors        *reactive.Signal[Errors]
	submitEnabled *reactive.Signal[bool]

	fieldSlots map[Field]*reactive.Slot
	formSlot   reactive.Slot

	mounted  bool
	disposed bool
}

// NewController creates an unmounted controller validating with checker.
func NewController(checker Checker, opts ...Option) *Controller {
	c := &Controller{
		checker:    checker,
		catalog:    catalog.Default(),
		logger:     slog.Default(),
		mode:       ModeSync,
		dispatcher: reactive.Inline,
		observer:   nopObserver{},
		parent:     context.Background(),
		fieldSlots: make(map[Field]*reactive.Slot, len(Fields)),
	}
	for _, opt := range opts {
		opt(c)
	}
	for _, f := range Fields {
		c.fieldSlots[f] = &reactive.Slot{}
	}
	return c
}

// Mount creates the form state at its defaults and installs the watchers.
// The animals watcher runs immediately, so the animals message is present
// right after mounting.
func (c *Controller) Mount() error {
	if c.disposed {
		return ErrDisposed
	}
	if c.mounted {
		return nil
	}

	c.ctx, c.cancel = context.WithCancel(c.parent)
	c.owner = reactive.NewOwner(nil)

	c.fullName = reactive.NewSignal("")
	c.shirtSize = reactive.NewSignal("")
	c.animals = reactive.NewSignal([]string{}).WithEquals(func(a, b []string) bool { return slices.Equal(a, b) })
	c.errors = reactive.NewSignal(NewErrors())
	c.submitEnabled = reactive.NewSignal(false)

	reactive.WithOwner(c.owner, func() {
		reactive.CreateEffect(c.watchAnimals, reactive.EffectName("animals"))
		reactive.CreateEffect(c.watchValidity, reactive.EffectName("validity"))
	})
	c.mounted = true

	c.logger.Debug("form mounted", "mode", c.mode.String())
	return c.flush()
}

// Dispose unmounts the controller. In-flight validations are cancelled and
// their results discarded.
func (c *Controller) Dispose() {
	if c.disposed {
		return
	}
	c.disposed = true
	if c.cancel != nil {
		c.cancel()
	}
	if c.owner != nil {
		c.owner.Dispose()
	}
	c.logger.Debug("form disposed")
}

// SetText handles a change of the full name input or the shirt size select.
func (c *Controller) SetText(field Field, value string) error {
	if err := c.ready(); err != nil {
		return err
	}

	switch field {
	case FieldFullName:
		c.fullName.Set(value)
	case FieldShirtSize:
		c.shirtSize.Set(value)
	default:
		return fmt.Errorf("%w: %q is not a text field", ErrUnknownField, field)
	}

	launch(c, c.fieldSlots[field], string(field),
		func() string { return Message(c.checker.ValidateField(field, value)) },
		func(msg string) {
			c.mergeError(field, msg)
			c.observer.Validated(string(field), msg == "")
		},
	)

	return c.flush()
}

// ToggleAnimal adds or removes an animal from the selection. The selection
// stays in catalog order and toggling is idempotent.
func (c *Controller) ToggleAnimal(id string, checked bool) error {
	if err := c.ready(); err != nil {
		return err
	}
	if !c.catalog.Contains(id) {
		return fmt.Errorf("%w: %q", ErrUnknownAnimal, id)
	}

	c.animals.Update(func(current []string) []string {
		next := make([]string, 0, len(current)+1)
		for _, a := range current {
			if a != id {
				next = append(next, a)
			}
		}
		if checked {
			next = append(next, id)
		}
		return c.catalog.Ordered(next)
	})

	return c.flush()
}

// Submit validates every field, shows every message and returns the values
// if the form is valid. It returns ErrNotSubmittable otherwise.
func (c *Controller) Submit() (Values, error) {
	if err := c.ready(); err != nil {
		return Values{}, err
	}

	values := c.peekValues()
	all := c.checker.ValidateAll(values)
	c.errors.Update(func(current Errors) Errors {
		next := current.Clone()
		for f, msg := range all {
			next[f] = msg
		}
		return next
	})
	if err := c.flush(); err != nil {
		return Values{}, err
	}

	if !all.Valid() {
		return Values{}, ErrNotSubmittable
	}
	return values, nil
}

// Reset restores the state right after Mount.
func (c *Controller) Reset() error {
	if err := c.ready(); err != nil {
		return err
	}

	c.fieldSlots[FieldFullName].Cancel()
	c.fieldSlots[FieldShirtSize].Cancel()

	reactive.Batch(func() {
		c.fullName.Set("")
		c.shirtSize.Set("")
		c.animals.Set([]string{})
		c.errors.Set(NewErrors())
	})

	// The watchers only re-run for values that changed; the restored
	// defaults still need their messages and enablement.
	initial := Values{Animals: []string{}}
	c.validateAnimals(initial)
	c.validateForm(initial)
	return c.flush()
}

// Values returns the current values.
func (c *Controller) Values() Values {
	if !c.mounted {
		return Values{Animals: []string{}}
	}
	return Values{
		FullName:  c.fullName.Get(),
		ShirtSize: c.shirtSize.Get(),
		Animals:   slices.Clone(c.animals.Get()),
	}
}

// Errors returns a copy of the current error map.
func (c *Controller) Errors() Errors {
	if !c.mounted {
		return NewErrors()
	}
	return c.errors.Get().Clone()
}

// SubmitEnabled reports whether the submit button is enabled.
func (c *Controller) SubmitEnabled() bool {
	if !c.mounted {
		return false
	}
	return c.submitEnabled.Get()
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() State {
	return State{
		Values:        c.Values(),
		Errors:        c.Errors(),
		SubmitEnabled: c.SubmitEnabled(),
	}
}

// Catalog returns the catalog the controller validates toggles against.
func (c *Controller) Catalog() *catalog.Catalog {
	return c.catalog
}

// Subscribe calls fn with the current state now and after every change that
// touches it. The returned function stops the subscription.
func (c *Controller) Subscribe(fn func(State)) (func(), error) {
	if err := c.ready(); err != nil {
		return nil, err
	}

	sub := reactive.NewOwner(c.owner)
	reactive.WithOwner(sub, func() {
		reactive.CreateEffect(func() reactive.Cleanup {
			fn(c.Snapshot())
			return nil
		}, reactive.EffectName("subscriber"))
	})
	return sub.Dispose, nil
}

// watchAnimals re-validates the animal selection whenever it changes.
func (c *Controller) watchAnimals() reactive.Cleanup {
	ids := c.animals.Get()

	var values Values
	reactive.Untracked(func() {
		values = c.peekValues()
	})
	values.Animals = ids

	c.validateAnimals(values)
	return nil
}

// watchValidity re-derives submit-enablement whenever any value changes.
func (c *Controller) watchValidity() reactive.Cleanup {
	c.validateForm(Values{
		FullName:  c.fullName.Get(),
		ShirtSize: c.shirtSize.Get(),
		Animals:   c.animals.Get(),
	})
	return nil
}

func (c *Controller) validateAnimals(values Values) {
	launch(c, c.fieldSlots[FieldAnimals], string(FieldAnimals),
		func() string { return Message(c.checker.ValidateAnimals(values)) },
		func(msg string) {
			c.mergeError(FieldAnimals, msg)
			c.observer.Validated(string(FieldAnimals), msg == "")
		},
	)
}

func (c *Controller) validateForm(values Values) {
	launch(c, &c.formSlot, formSlot,
		func() bool { return c.checker.IsFormValid(values) },
		func(valid bool) {
			c.submitEnabled.Set(valid)
			c.observer.Validated(formSlot, valid)
		},
	)
}

// mergeError writes one entry through an updater that sees the latest map.
func (c *Controller) mergeError(field Field, msg string) {
	c.errors.Update(func(current Errors) Errors {
		if current[field] == msg {
			return current
		}
		return current.Merge(field, msg)
	})
}

func (c *Controller) peekValues() Values {
	return Values{
		FullName:  c.fullName.Peek(),
		ShirtSize: c.shirtSize.Peek(),
		Animals:   slices.Clone(c.animals.Peek()),
	}
}

func (c *Controller) ready() error {
	if c.disposed {
		return ErrDisposed
	}
	if !c.mounted {
		return ErrNotMounted
	}
	return nil
}

func (c *Controller) flush() error {
	if err := c.owner.Flush(); err != nil {
		c.logger.Error("form effects did not settle", "error", err)
		return err
	}
	return nil
}

// launch runs one validation through slot. In ModeSync it completes before
// launch returns; in ModeAsync the result is applied later on the dispatcher
// goroutine, followed by an effect flush.
func launch[R any](c *Controller, slot *reactive.Slot, name string, work func() R, apply func(R)) {
	l := reactive.Latest[R]{
		Work: func(context.Context) R {
			return work()
		},
		Apply: func(result R) {
			if c.disposed {
				return
			}
			apply(result)
			if c.mode == ModeAsync {
				_ = c.flush()
			}
		},
		Stale: func() {
			c.logger.Debug("discarding stale validation", "field", name)
			c.observer.Discarded(name)
		},
	}

	if c.mode == ModeAsync {
		reactive.Go(c.ctx, slot, c.dispatcher, l)
		return
	}
	reactive.Run(c.ctx, slot, l)
}

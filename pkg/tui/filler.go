package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/vango-dev/shirtform/pkg/catalog"
	"github.com/vango-dev/shirtform/pkg/form"
)

// Filler fills a mounted form controller from terminal prompts. Every answer
// goes through the controller, so the terminal sees the same messages and
// submit rules as the browser.
//
// The controller must run in sync mode on the calling goroutine.
type Filler struct {
	driver      PromptDriver
	maxAttempts int
	theme       Theme
	confirm     bool
}

// New returns a Filler prompting through survey unless another driver is set.
func New(opts ...Option) *Filler {
	f := &Filler{
		maxAttempts: 3,
		theme:       DefaultTheme,
		confirm:     true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	if f.driver == nil {
		f.driver = NewSurveyDriver()
	}
	return f
}

// Fill prompts for each field until it is valid, then submits.
func (f *Filler) Fill(ctx context.Context, ctl *form.Controller) (form.Values, error) {
	if ctx == nil {
		return form.Values{}, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return form.Values{}, err
	}
	cat := ctl.Catalog()

	if err := f.until(ctx, ctl, form.FieldFullName, func() error {
		return f.askFullName(ctx, ctl)
	}); err != nil {
		return form.Values{}, err
	}
	if err := f.until(ctx, ctl, form.FieldShirtSize, func() error {
		return f.askShirtSize(ctx, ctl, cat)
	}); err != nil {
		return form.Values{}, err
	}
	if err := f.until(ctx, ctl, form.FieldAnimals, func() error {
		return f.askAnimals(ctx, ctl, cat)
	}); err != nil {
		return form.Values{}, err
	}

	if f.confirm {
		ok, err := f.driver.Confirm(ctx, ConfirmConfig{Message: "Submit?", Default: true})
		if err != nil {
			return form.Values{}, err
		}
		if !ok {
			return form.Values{}, ErrAborted
		}
	}
	return ctl.Submit()
}

// until repeats ask while field has a message.
func (f *Filler) until(ctx context.Context, ctl *form.Controller, field form.Field, ask func() error) error {
	for attempt := 1; ; attempt++ {
		if err := ask(); err != nil {
			return err
		}
		msg := ctl.Errors().Get(field)
		if msg == "" {
			return nil
		}
		if err := f.driver.Info(ctx, f.theme.ErrorPrefix+msg); err != nil {
			return err
		}
		if f.maxAttempts > 0 && attempt >= f.maxAttempts {
			return fmt.Errorf("%w: %s: %s", ErrTooManyAttempts, field, msg)
		}
	}
}

func (f *Filler) askFullName(ctx context.Context, ctl *form.Controller) error {
	name, err := f.driver.Input(ctx, InputConfig{
		Message: "Full name",
		Default: ctl.Values().FullName,
	})
	if err != nil {
		return err
	}
	return ctl.SetText(form.FieldFullName, name)
}

func (f *Filler) askShirtSize(ctx context.Context, ctl *form.Controller, cat *catalog.Catalog) error {
	var labels, codes []string
	current := ctl.Values().ShirtSize
	defaultIdx := 0
	for _, s := range cat.Sizes() {
		if s.Code == "" {
			continue
		}
		if s.Code == current {
			defaultIdx = len(codes)
		}
		labels = append(labels, s.Label)
		codes = append(codes, s.Code)
	}

	idx, err := f.driver.Select(ctx, SelectConfig{
		Message:      "Shirt size",
		Options:      labels,
		DefaultIndex: defaultIdx,
	})
	if err != nil {
		return err
	}
	code := ""
	if idx >= 0 && idx < len(codes) {
		code = codes[idx]
	}
	return ctl.SetText(form.FieldShirtSize, code)
}

func (f *Filler) askAnimals(ctx context.Context, ctl *form.Controller, cat *catalog.Catalog) error {
	animals := cat.Animals()
	names := make([]string, len(animals))
	var defaults []int
	selected := make(map[string]bool)
	for _, id := range ctl.Values().Animals {
		selected[id] = true
	}
	for i, a := range animals {
		names[i] = a.Name
		if selected[a.ID] {
			defaults = append(defaults, i)
		}
	}

	picked, err := f.driver.MultiSelect(ctx, SelectConfig{
		Message:  "Favorite animals",
		Options:  names,
		Defaults: defaults,
		Help:     "Space to toggle, enter to confirm",
	})
	if err != nil {
		return err
	}

	checked := make([]bool, len(animals))
	for _, i := range picked {
		if i >= 0 && i < len(checked) {
			checked[i] = true
		}
	}
	for i, a := range animals {
		if err := ctl.ToggleAnimal(a.ID, checked[i]); err != nil {
			return err
		}
	}
	return nil
}

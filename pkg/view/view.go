// Package view renders form state as a vdom tree and a full page.
package view

import (
	_ "embed"
	"slices"

	"github.com/vango-dev/shirtform/pkg/catalog"
	"github.com/vango-dev/shirtform/pkg/form"
	"github.com/vango-dev/shirtform/pkg/render"
	. "github.com/vango-dev/shirtform/pkg/vdom"
)

// SubmitLabel is the text of the submit button.
const SubmitLabel = "Submit"

// FormID is the id of the rendered form element.
const FormID = "shirt-form"

// ClientPath is where the server serves ClientJS.
const ClientPath = "/_shirtform/client.js"

// ClientJS is the thin client that forwards input events over the live
// socket and applies the state the server sends back.
//
//go:embed client.js
var ClientJS []byte

const stylesheet = `
form { max-width: 24rem; font-family: sans-serif; }
form > div { margin-bottom: .75rem; }
p.error { color: red; margin: .25rem 0; }
`

// Render renders the form for state. Checkboxes follow the catalog order;
// the size options are the blank option followed by the catalog sizes.
func Render(state form.State, cat *catalog.Catalog) *VNode {
	v := state.Values

	return Form(ID(FormID), Method("post"), Action("/"),
		Div(
			Input(Type("text"), ID("fullName"), Name(string(form.FieldFullName)), Value(v.FullName), Autocomplete("name")),
			errorText(state.Errors, form.FieldFullName),
		),
		Div(
			Select(ID("shirtSize"), Name(string(form.FieldShirtSize)),
				Option(Value(""), Selected(v.ShirtSize == "")),
				Range(cat.Sizes(), func(_ int, s catalog.Size) *VNode {
					return Option(Value(s.Code), Selected(v.ShirtSize == s.Code), s.Label)
				}),
			),
			errorText(state.Errors, form.FieldShirtSize),
		),
		Range(cat.Animals(), func(_ int, a catalog.Animal) *VNode {
			return Div(Key(a.ID),
				Input(Type("checkbox"), ID("animal-"+a.ID), Name(a.ID), Data("field", string(form.FieldAnimals)),
					Checked(slices.Contains(v.Animals, a.ID))),
				" ",
				Label(For("animal-"+a.ID), a.Name),
			)
		}),
		errorText(state.Errors, form.FieldAnimals),
		Button(Type("submit"), Disabled(!state.SubmitEnabled), SubmitLabel),
	)
}

// errorText renders field's message, or nothing when it has none. The
// paragraph carries the field name so the client can update it in place.
func errorText(errs form.Errors, field form.Field) *VNode {
	msg := errs.Get(field)
	return If(msg != "", P(Class("error"), Data("error", string(field)), msg))
}

// PageOptions configures Page.
type PageOptions struct {
	// Title defaults to "Order a shirt".
	Title string

	// Live loads the client script that connects to the socket at
	// SocketPath. Without it the page is a plain form.
	Live bool

	// SocketPath defaults to "/ws".
	SocketPath string
}

// Page wraps Render in a complete document.
func Page(state form.State, cat *catalog.Catalog, opts PageOptions) render.PageData {
	if opts.Title == "" {
		opts.Title = "Order a shirt"
	}
	if opts.SocketPath == "" {
		opts.SocketPath = "/ws"
	}

	page := render.PageData{
		Title:  opts.Title,
		Body:   Main(Data("socket", opts.SocketPath), Render(state, cat)),
		Styles: []string{stylesheet},
	}
	if opts.Live {
		page.Scripts = []render.ScriptTag{{Src: ClientPath, Defer: true}}
	}
	return page
}

package vdom

import "strings"

// attr creates an Attr with the given key and value.
func attr(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

// Attribute sets an arbitrary attribute.
func Attribute(key string, value any) Attr { return attr(key, value) }

// Key sets the node's sibling key. It is not rendered.
func Key(key string) Attr { return attr("key", key) }

// Identity attributes

// ID sets the id attribute.
func ID(id string) Attr { return attr("id", id) }

// Class sets the class attribute, joining multiple classes with spaces.
func Class(classes ...string) Attr { return attr("class", strings.Join(classes, " ")) }

// Data creates a data-* attribute.
// Example: Data("field", "fullName") → data-field="fullName"
func Data(key, value string) Attr { return attr("data-"+key, value) }

// Form attributes

// Name sets the name attribute.
func Name(name string) Attr { return attr("name", name) }

// Type sets the type attribute.
func Type(t string) Attr { return attr("type", t) }

// Value sets the value attribute.
func Value(v string) Attr { return attr("value", v) }

// For sets the for attribute of a label.
func For(id string) Attr { return attr("for", id) }

// Method sets the method attribute of a form.
func Method(m string) Attr { return attr("method", m) }

// Action sets the action attribute of a form.
func Action(url string) Attr { return attr("action", url) }

// Placeholder sets the placeholder attribute.
func Placeholder(text string) Attr { return attr("placeholder", text) }

// Autocomplete sets the autocomplete attribute.
func Autocomplete(value string) Attr { return attr("autocomplete", value) }

// Boolean attributes. false renders nothing.

// Checked sets the checked attribute.
func Checked(checked bool) Attr { return attr("checked", checked) }

// Selected sets the selected attribute.
func Selected(selected bool) Attr { return attr("selected", selected) }

// Disabled sets the disabled attribute.
func Disabled(disabled bool) Attr { return attr("disabled", disabled) }

// Link and script attributes

// Href sets the href attribute.
func Href(url string) Attr { return attr("href", url) }

// Src sets the src attribute.
func Src(url string) Attr { return attr("src", url) }

// Lang sets the lang attribute.
func Lang(lang string) Attr { return attr("lang", lang) }

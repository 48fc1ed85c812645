// Package vdom provides the virtual node tree the form is rendered from.
//
// Elements are built with variadic factory functions that accept attributes,
// child nodes and strings in any order:
//
//	Form(ID("shirt-form"),
//	    Label(For("fullName"), "Full name"),
//	    Input(Type("text"), Name("fullName"), Value(name)),
//	    If(msg != "", P(Class("error"), msg)),
//	)
//
// nil arguments are skipped, so conditional children and attributes can be
// passed inline.
package vdom

// Package render provides server-side rendering of vdom trees to HTML.
//
// Text is HTML-escaped, attribute values are attribute-escaped, boolean
// attributes render only when true and void elements have no closing tag.
// Attributes are written in sorted order so output is deterministic.
//
//	r := render.NewRenderer(render.RendererConfig{})
//	html, err := r.RenderToString(node)
//
// RenderPage wraps a body tree in a complete document with head, inline
// styles and scripts.
package render

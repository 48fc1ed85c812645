package render

import "github.com/vango-dev/shirtform/pkg/vdom"

// inlineElements don't get newlines in pretty-printed output.
var inlineElements = map[string]bool{
	"a":      true,
	"b":      true,
	"br":     true,
	"code":   true,
	"em":     true,
	"i":      true,
	"label":  true,
	"option": true,
	"small":  true,
	"span":   true,
	"strong": true,
	"button": true,
	"legend": true,
	"title":  true,
	"p":      true,
}

// booleanAttrs render as a bare name when true and are omitted when false.
var booleanAttrs = map[string]bool{
	"autofocus": true,
	"checked":   true,
	"disabled":  true,
	"hidden":    true,
	"multiple":  true,
	"readonly":  true,
	"required":  true,
	"selected":  true,
	"defer":     true,
	"async":     true,
}

func isVoidElement(tag string) bool {
	return vdom.IsVoidElement(tag)
}

func isInlineElement(tag string) bool {
	return inlineElements[tag]
}

func isBooleanAttr(name string) bool {
	return booleanAttrs[name]
}

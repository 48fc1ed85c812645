package render

import "strings"

// htmlEscaper escapes text content.
var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// attrEscaper additionally escapes whitespace that would break attribute
// parsing.
var attrEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
	"\n", "&#10;",
	"\r", "&#13;",
	"\t", "&#9;",
)

// EscapeHTML escapes s for inclusion in HTML text.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// EscapeAttr escapes s for inclusion in a quoted attribute value.
func EscapeAttr(s string) string {
	return attrEscaper.Replace(s)
}

// scriptEscaper keeps inline script content from closing its element.
var scriptEscaper = strings.NewReplacer("</", `<\/`)

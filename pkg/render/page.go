package render

import (
	"bufio"
	"io"

	"github.com/vango-dev/shirtform/pkg/vdom"
)

// PageData contains all data needed to render a complete HTML page.
type PageData struct {
	// Body is the root VNode for the page content.
	Body *vdom.VNode

	// Title is the page title.
	Title string

	// Lang is the language attribute for the html element.
	// Defaults to "en" if not specified.
	Lang string

	// Styles contains inline CSS blocks.
	Styles []string

	// Scripts are appended to the end of the body.
	Scripts []ScriptTag
}

// ScriptTag represents a script element.
type ScriptTag struct {
	Src    string // src attribute
	Defer  bool   // defer attribute
	Inline string // inline script content
}

// RenderPage renders a complete HTML document to the given writer.
func (r *Renderer) RenderPage(w io.Writer, page PageData) error {
	lang := page.Lang
	if lang == "" {
		lang = "en"
	}

	head := vdom.Head(
		vdom.Meta(vdom.Attribute("charset", "utf-8")),
		vdom.Meta(vdom.Name("viewport"), vdom.Attribute("content", "width=device-width, initial-scale=1")),
		vdom.If(page.Title != "", vdom.Title(page.Title)),
		vdom.Range(page.Styles, func(_ int, css string) *vdom.VNode {
			return vdom.Style(css)
		}),
	)

	body := vdom.Body(
		page.Body,
		vdom.Range(page.Scripts, func(_ int, s ScriptTag) *vdom.VNode {
			if s.Src != "" {
				return vdom.Script(vdom.Src(s.Src), vdom.Attribute("defer", s.Defer))
			}
			return vdom.Script(s.Inline)
		}),
	)

	bw := bufio.NewWriter(w)
	bw.WriteString("<!DOCTYPE html>\n")
	if err := r.renderNode(bw, vdom.Html(vdom.Lang(lang), head, body), 0); err != nil {
		return err
	}
	bw.WriteByte('\n')
	return bw.Flush()
}

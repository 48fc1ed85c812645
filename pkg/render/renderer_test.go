package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/vango-dev/shirtform/pkg/vdom"
)

func TestRenderText(t *testing.T) {
	renderer := NewRenderer(RendererConfig{})

	html, err := renderer.RenderToString(vdom.Text("Hello, World!"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if html != "Hello, World!" {
		t.Errorf("got %q, want %q", html, "Hello, World!")
	}
}

func TestRenderTextEscaping(t *testing.T) {
	renderer := NewRenderer(RendererConfig{})

	html, err := renderer.RenderToString(vdom.Text("<script>alert('xss')</script>"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(html, "<script>") {
		t.Errorf("HTML should be escaped, got %q", html)
	}
	if !strings.Contains(html, "&lt;script&gt;") {
		t.Errorf("should contain escaped script tag, got %q", html)
	}
}

func TestRenderElement(t *testing.T) {
	renderer := NewRenderer(RendererConfig{})

	node := vdom.Div(vdom.Class("container"),
		vdom.H1("Title"),
		vdom.P("Content"),
	)
	html, err := renderer.RenderToString(node)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := `<div class="container"><h1>Title</h1><p>Content</p></div>`
	if html != want {
		t.Errorf("got %q, want %q", html, want)
	}
}

func TestRenderAttributesSortedAndEscaped(t *testing.T) {
	renderer := NewRenderer(RendererConfig{})

	node := vdom.Input(vdom.Type("text"), vdom.Name("fullName"), vdom.Value(`a "b" <c>`), vdom.ID("fullName"))
	html, err := renderer.RenderToString(node)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := `<input id="fullName" name="fullName" type="text" value="a &quot;b&quot; &lt;c&gt;">`
	if html != want {
		t.Errorf("got %q, want %q", html, want)
	}
}

func TestRenderBooleanAttributes(t *testing.T) {
	renderer := NewRenderer(RendererConfig{})

	tests := []struct {
		node *vdom.VNode
		want string
	}{
		{vdom.Button(vdom.Disabled(true), "Submit"), `<button disabled>Submit</button>`},
		{vdom.Button(vdom.Disabled(false), "Submit"), `<button>Submit</button>`},
		{vdom.Input(vdom.Type("checkbox"), vdom.Checked(true)), `<input checked type="checkbox">`},
		{vdom.Option(vdom.Value(""), vdom.Selected(true)), `<option selected value=""></option>`},
	}

	for _, tt := range tests {
		got, err := renderer.RenderToString(tt.node)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != tt.want {
			t.Errorf("got %q, want %q", got, tt.want)
		}
	}
}

func TestRenderFragmentAndTextf(t *testing.T) {
	renderer := NewRenderer(RendererConfig{})

	node := vdom.Fragment(vdom.Span("a"), vdom.Textf("<%d>", 1), "b&c")
	html, err := renderer.RenderToString(node)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if html != "<span>a</span>&lt;1&gt;b&amp;c" {
		t.Errorf("got %q", html)
	}
}

func TestRenderScriptContent(t *testing.T) {
	renderer := NewRenderer(RendererConfig{})

	html, err := renderer.RenderToString(vdom.Script(`if (a < b) { x = "</script>" }`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `<script>if (a < b) { x = "<\/script>" }</script>`
	if html != want {
		t.Errorf("got %q, want %q", html, want)
	}
}

func TestRenderUnknownKind(t *testing.T) {
	renderer := NewRenderer(RendererConfig{})

	if _, err := renderer.RenderToString(&vdom.VNode{Kind: vdom.VKind(99)}); err == nil {
		t.Error("expected error for unknown node kind")
	}
	if _, err := renderer.RenderToString(&vdom.VNode{Kind: vdom.KindElement}); err == nil {
		t.Error("expected error for element without tag")
	}
}

func TestRenderPretty(t *testing.T) {
	renderer := NewRenderer(RendererConfig{Pretty: true})

	html, err := renderer.RenderToString(vdom.Div(vdom.Div(vdom.Span("x"))))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "<div>\n  <div>\n    <span>x</span>\n  </div>\n</div>\n"
	if html != want {
		t.Errorf("got %q, want %q", html, want)
	}
}

func TestRenderPage(t *testing.T) {
	renderer := NewRenderer(RendererConfig{})

	var buf bytes.Buffer
	err := renderer.RenderPage(&buf, PageData{
		Title:   "Order <shirt>",
		Body:    vdom.Main("hi"),
		Styles:  []string{"p { color: red }"},
		Scripts: []ScriptTag{{Inline: "start()"}, {Src: "/app.js", Defer: true}},
	})
	if err != nil {
		t.Fatalf("RenderPage: %v", err)
	}
	html := buf.String()

	for _, want := range []string{
		"<!DOCTYPE html>\n",
		`<html lang="en">`,
		`<meta charset="utf-8">`,
		"<title>Order &lt;shirt&gt;</title>",
		"<style>p { color: red }</style>",
		"<main>hi</main>",
		"<script>start()</script>",
		`<script defer src="/app.js"></script>`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("expected %q in page, got %q", want, html)
		}
	}
}

func TestEscapeAttr(t *testing.T) {
	if got := EscapeAttr("a\nb\t'c'"); got != "a&#10;b&#9;&#39;c&#39;" {
		t.Errorf("got %q", got)
	}
}

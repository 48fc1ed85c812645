package render

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/vango-dev/shirtform/pkg/vdom"
)

// RendererConfig configures the HTML renderer.
type RendererConfig struct {
	// Pretty enables pretty-printed HTML output with indentation.
	// Should only be used in development as it increases output size.
	Pretty bool

	// Indent is the string used for each indentation level in pretty mode.
	// Defaults to two spaces if not specified.
	Indent string
}

// Renderer handles server-side rendering of VNode trees to HTML. A Renderer
// holds no per-render state and may be shared.
type Renderer struct {
	config RendererConfig
}

// NewRenderer creates a new Renderer with the given configuration.
func NewRenderer(config RendererConfig) *Renderer {
	if config.Indent == "" {
		config.Indent = "  "
	}
	return &Renderer{config: config}
}

// RenderToString renders a VNode tree to an HTML string.
func (r *Renderer) RenderToString(node *vdom.VNode) (string, error) {
	var buf bytes.Buffer
	if err := r.RenderToWriter(&buf, node); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToWriter streams a VNode tree to the given writer.
func (r *Renderer) RenderToWriter(w io.Writer, node *vdom.VNode) error {
	bw := bufio.NewWriter(w)
	if err := r.renderNode(bw, node, 0); err != nil {
		return err
	}
	return bw.Flush()
}

// renderNode dispatches rendering based on node kind.
func (r *Renderer) renderNode(w *bufio.Writer, node *vdom.VNode, depth int) error {
	if node == nil {
		return nil
	}

	switch node.Kind {
	case vdom.KindElement:
		return r.renderElement(w, node, depth)
	case vdom.KindText:
		_, err := w.WriteString(EscapeHTML(node.Text))
		return err
	case vdom.KindFragment:
		for _, child := range node.Children {
			if err := r.renderNode(w, child, depth); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("render: unknown node kind %d", node.Kind)
	}
}

// renderElement renders an HTML element with its attributes and children.
func (r *Renderer) renderElement(w *bufio.Writer, node *vdom.VNode, depth int) error {
	tag := node.Tag
	if tag == "" {
		return fmt.Errorf("render: element without tag")
	}

	if r.config.Pretty && depth > 0 {
		r.writeIndent(w, depth)
	}

	w.WriteByte('<')
	w.WriteString(tag)
	r.renderAttributes(w, node)
	w.WriteByte('>')

	if isVoidElement(tag) {
		if r.config.Pretty {
			w.WriteByte('\n')
		}
		return nil
	}

	block := r.config.Pretty && len(node.Children) > 0 && !isInlineElement(tag)
	if block {
		w.WriteByte('\n')
	}

	for _, child := range node.Children {
		if tag == "script" || tag == "style" {
			if child.Kind == vdom.KindText {
				w.WriteString(scriptEscaper.Replace(child.Text))
				continue
			}
		}
		if err := r.renderNode(w, child, depth+1); err != nil {
			return err
		}
	}

	if block {
		r.writeIndent(w, depth)
	}

	w.WriteString("</")
	w.WriteString(tag)
	_, err := w.WriteString(">")
	if r.config.Pretty {
		w.WriteByte('\n')
	}
	return err
}

// renderAttributes renders all attributes for an element in sorted order.
func (r *Renderer) renderAttributes(w *bufio.Writer, node *vdom.VNode) {
	if len(node.Props) == 0 {
		return
	}

	keys := make([]string, 0, len(node.Props))
	for key := range node.Props {
		if strings.HasPrefix(key, "_") {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := node.Props[key]

		if isBooleanAttr(key) {
			if b, ok := value.(bool); ok {
				if b {
					w.WriteByte(' ')
					w.WriteString(key)
				}
				continue
			}
		}

		// The value attribute is significant even when empty (the blank
		// select option, a cleared input).
		s := attrToString(value)
		if s == "" && key != "value" {
			continue
		}
		fmt.Fprintf(w, ` %s="%s"`, key, EscapeAttr(s))
	}
}

// attrToString converts an attribute value to a string.
func attrToString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// writeIndent writes indentation for pretty printing.
func (r *Renderer) writeIndent(w *bufio.Writer, depth int) {
	for i := 0; i < depth; i++ {
		w.WriteString(r.config.Indent)
	}
}

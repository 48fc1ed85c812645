package vdom

// VKind is the node type discriminator.
type VKind uint8

const (
	KindElement  VKind = iota // <div>, <button>, etc.
	KindText                  // Plain text node
	KindFragment              // Grouping without wrapper
)

// String returns the string representation of the VKind.
func (k VKind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindFragment:
		return "Fragment"
	default:
		return "Unknown"
	}
}

// VNode is the virtual DOM node.
type VNode struct {
	Kind     VKind    // Node type
	Tag      string   // Element tag name (e.g., "div")
	Props    Props    // Attributes
	Children []*VNode // Child nodes
	Key      string   // Stable identity among siblings
	Text     string   // For KindText
}

// Props holds attributes.
type Props map[string]any

// Attr represents a single attribute.
type Attr struct {
	Key   string
	Value any
}

// IsEmpty returns true if this is an empty/nil attribute.
func (a Attr) IsEmpty() bool {
	return a.Key == ""
}

// Prop returns the attribute key, or nil.
func (v *VNode) Prop(key string) any {
	if v == nil || v.Props == nil {
		return nil
	}
	return v.Props[key]
}

// TextContent concatenates the text of v and its descendants.
func (v *VNode) TextContent() string {
	if v == nil {
		return ""
	}
	if v.Kind == KindText {
		return v.Text
	}
	var out string
	for _, c := range v.Children {
		out += c.TextContent()
	}
	return out
}

// Walk calls fn for v and every descendant in document order. Returning
// false from fn skips the node's children.
func Walk(v *VNode, fn func(*VNode) bool) {
	if v == nil {
		return
	}
	if !fn(v) {
		return
	}
	for _, c := range v.Children {
		Walk(c, fn)
	}
}

// Find returns the first node in document order matching pred.
func Find(root *VNode, pred func(*VNode) bool) *VNode {
	var found *VNode
	Walk(root, func(n *VNode) bool {
		if found != nil {
			return false
		}
		if pred(n) {
			found = n
			return false
		}
		return true
	})
	return found
}

// FindAll returns every node in document order matching pred.
func FindAll(root *VNode, pred func(*VNode) bool) []*VNode {
	var out []*VNode
	Walk(root, func(n *VNode) bool {
		if pred(n) {
			out = append(out, n)
		}
		return true
	})
	return out
}

package doctree

import (
	"fmt"
	"unicode/utf8"
)

// Node type names used by the default schema.
const (
	TypeDoc            = "doc"
	TypeParagraph      = "paragraph"
	TypeHeading        = "heading"
	TypeBulletList     = "bulletList"
	TypeOrderedList    = "orderedList"
	TypeListItem       = "listItem"
	TypeBlockquote     = "blockquote"
	TypeCodeBlock      = "codeBlock"
	TypeHorizontalRule = "horizontalRule"
	TypeHardBreak      = "hardBreak"
	TypeText           = "text"
)

// Mark is a style annotation attached to a text leaf.
type Mark struct {
	Type  string
	Attrs map[string]string
}

// Attr returns the named attribute, or "" if unset.
func (m Mark) Attr(key string) string {
	if m.Attrs == nil {
		return ""
	}
	return m.Attrs[key]
}

// Eq reports whether two marks have the same type and attributes.
func (m Mark) Eq(o Mark) bool {
	if m.Type != o.Type || len(m.Attrs) != len(o.Attrs) {
		return false
	}
	for k, v := range m.Attrs {
		if o.Attrs[k] != v {
			return false
		}
	}
	return true
}

// marksEq reports whether two mark lists are equal element-wise.
func marksEq(a, b []Mark) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Eq(b[i]) {
			return false
		}
	}
	return true
}

// Node is a single node in the document tree. A node has either children
// (element node), a text payload (text leaf), or neither (void leaf).
type Node struct {
	Type     string
	Attrs    map[string]string
	Children []*Node
	Text     string
	Marks    []Mark
}

// IsText reports whether the node is a text leaf.
func (n *Node) IsText() bool {
	return n.Type == TypeText
}

// IsVoid reports whether the node is a contentless leaf.
func (n *Node) IsVoid() bool {
	return n.Type == TypeHorizontalRule || n.Type == TypeHardBreak
}

// IsLeaf reports whether the node can hold no children.
func (n *Node) IsLeaf() bool {
	return n.IsText() || n.IsVoid()
}

// Size returns the node's token size, including its opening and closing
// boundary tokens for element nodes.
func (n *Node) Size() int {
	if n.IsText() {
		return utf8.RuneCountInString(n.Text)
	}
	if n.IsVoid() {
		return 1
	}
	return 2 + n.contentSize()
}

// contentSize returns the summed size of the node's children.
func (n *Node) contentSize() int {
	total := 0
	for _, c := range n.Children {
		total += c.Size()
	}
	return total
}

// TextContent returns the concatenated text of the node's subtree.
func (n *Node) TextContent() string {
	if n.IsText() {
		return n.Text
	}
	out := ""
	for _, c := range n.Children {
		out += c.TextContent()
	}
	return out
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	c := &Node{Type: n.Type, Text: n.Text}
	if n.Attrs != nil {
		c.Attrs = make(map[string]string, len(n.Attrs))
		for k, v := range n.Attrs {
			c.Attrs[k] = v
		}
	}
	if n.Marks != nil {
		c.Marks = make([]Mark, len(n.Marks))
		for i, m := range n.Marks {
			c.Marks[i] = Mark{Type: m.Type}
			if m.Attrs != nil {
				c.Marks[i].Attrs = make(map[string]string, len(m.Attrs))
				for k, v := range m.Attrs {
					c.Marks[i].Attrs[k] = v
				}
			}
		}
	}
	if n.Children != nil {
		c.Children = make([]*Node, len(n.Children))
		for i, ch := range n.Children {
			c.Children[i] = ch.Clone()
		}
	}
	return c
}

// Tag returns the display tag name for the node, the form used in
// structural paths: p, h1..h6, ul, ol, li, blockquote, pre, hr, br.
func (n *Node) Tag() string {
	switch n.Type {
	case TypeDoc:
		return "body"
	case TypeParagraph:
		return "p"
	case TypeHeading:
		level := n.Attrs["level"]
		if level == "" {
			level = "1"
		}
		return "h" + level
	case TypeBulletList:
		return "ul"
	case TypeOrderedList:
		return "ol"
	case TypeListItem:
		return "li"
	case TypeBlockquote:
		return "blockquote"
	case TypeCodeBlock:
		return "pre"
	case TypeHorizontalRule:
		return "hr"
	case TypeHardBreak:
		return "br"
	default:
		return n.Type
	}
}

// inlineParent reports whether the node holds inline content directly.
func (n *Node) inlineParent() bool {
	switch n.Type {
	case TypeParagraph, TypeHeading, TypeCodeBlock:
		return true
	}
	return false
}

// runeLen returns the number of runes in s.
func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// runeSlice returns the substring of s between rune offsets from and to,
// clamped to the string's bounds.
func runeSlice(s string, from, to int) string {
	r := []rune(s)
	if from < 0 {
		from = 0
	}
	if to > len(r) {
		to = len(r)
	}
	if from >= to {
		return ""
	}
	return string(r[from:to])
}

// validate checks basic structural well-formedness of a parsed node.
func (n *Node) validate() error {
	if n.Type == "" {
		return fmt.Errorf("node missing type")
	}
	if n.IsText() {
		if len(n.Children) > 0 {
			return fmt.Errorf("text node with children")
		}
		if n.Text == "" {
			return fmt.Errorf("empty text node")
		}
		return nil
	}
	if n.Text != "" {
		return fmt.Errorf("%s node with text payload", n.Type)
	}
	for _, c := range n.Children {
		if err := c.validate(); err != nil {
			return err
		}
	}
	return nil
}

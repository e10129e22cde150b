package doctree

import "strconv"

// Builders for assembling documents in code and tests.

// Text creates a text leaf with optional marks.
func Text(text string, marks ...Mark) *Node {
	return &Node{Type: TypeText, Text: text, Marks: marks}
}

// Paragraph creates a paragraph node.
func Paragraph(content ...*Node) *Node {
	return &Node{Type: TypeParagraph, Children: content}
}

// Heading creates a heading node of the given level.
func Heading(level int, content ...*Node) *Node {
	return &Node{
		Type:     TypeHeading,
		Attrs:    map[string]string{"level": strconv.Itoa(level)},
		Children: content,
	}
}

// BulletList creates an unordered list node.
func BulletList(items ...*Node) *Node {
	return &Node{Type: TypeBulletList, Children: items}
}

// OrderedList creates an ordered list node.
func OrderedList(items ...*Node) *Node {
	return &Node{Type: TypeOrderedList, Children: items}
}

// ListItem creates a list item node.
func ListItem(content ...*Node) *Node {
	return &Node{Type: TypeListItem, Children: content}
}

// Blockquote creates a blockquote node.
func Blockquote(content ...*Node) *Node {
	return &Node{Type: TypeBlockquote, Children: content}
}

// CodeBlock creates a code block node.
func CodeBlock(content ...*Node) *Node {
	return &Node{Type: TypeCodeBlock, Children: content}
}

// HorizontalRule creates a horizontal rule void node.
func HorizontalRule() *Node {
	return &Node{Type: TypeHorizontalRule}
}

// HardBreak creates a hard line break void node.
func HardBreak() *Node {
	return &Node{Type: TypeHardBreak}
}

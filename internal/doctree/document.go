package doctree

import (
	"errors"
	"fmt"
	"strings"
)

// Package errors returned by document queries and mutation commands.
var (
	// ErrBadPosition indicates a position or range outside the document,
	// or one that no command can act on.
	ErrBadPosition = errors.New("position out of range")

	// ErrMarkUnsupported indicates the document's schema lacks the
	// requested mark type.
	ErrMarkUnsupported = errors.New("mark type not in schema")
)

// Document is a rich-text document: a root node plus the schema that
// governs it. The root node's own boundary tokens are excluded from the
// position space, so positions run over [0, ContentSize()].
type Document struct {
	Root   *Node
	Schema *Schema
}

// New creates an empty document using the default schema.
func New() *Document {
	return &Document{Root: &Node{Type: TypeDoc}, Schema: DefaultSchema()}
}

// NewWithSchema creates a document from the given root content under a
// specific schema.
func NewWithSchema(schema *Schema, content ...*Node) *Document {
	return &Document{Root: &Node{Type: TypeDoc, Children: content}, Schema: schema}
}

// ContentSize returns the size of the document's position space.
func (d *Document) ContentSize() int {
	return d.Root.contentSize()
}

// SupportsMark reports whether the document's schema accepts the mark type.
func (d *Document) SupportsMark(markType string) bool {
	return d.Schema.SupportsMark(markType)
}

// checkRange validates 0 <= from <= to <= ContentSize().
func (d *Document) checkRange(from, to int) error {
	if from < 0 || to < from || to > d.ContentSize() {
		return fmt.Errorf("%w: [%d, %d) in document of size %d", ErrBadPosition, from, to, d.ContentSize())
	}
	return nil
}

// EachTextLeaf visits every text leaf in document order, passing its
// absolute [from, to) span, text and marks. Returning false stops the walk.
func (d *Document) EachTextLeaf(fn func(from, to int, text string, marks []Mark) bool) {
	eachTextLeaf(d.Root, 0, fn)
}

func eachTextLeaf(n *Node, contentStart int, fn func(from, to int, text string, marks []Mark) bool) bool {
	pos := contentStart
	for _, c := range n.Children {
		size := c.Size()
		if c.IsText() {
			if !fn(pos, pos+size, c.Text, c.Marks) {
				return false
			}
		} else if !c.IsVoid() {
			if !eachTextLeaf(c, pos+1, fn) {
				return false
			}
		}
		pos += size
	}
	return true
}

// TextBetween returns the concatenated text content of the range [from, to).
// Non-text tokens (node boundaries, void leaves) contribute nothing.
func (d *Document) TextBetween(from, to int) (string, error) {
	if err := d.checkRange(from, to); err != nil {
		return "", err
	}
	var b strings.Builder
	d.EachTextLeaf(func(lf, lt int, text string, _ []Mark) bool {
		if lf >= to {
			return false
		}
		if lt <= from {
			return true
		}
		b.WriteString(runeSlice(text, max(from, lf)-lf, min(to, lt)-lf))
		return true
	})
	return b.String(), nil
}

// TextContent returns the document's full text content.
func (d *Document) TextContent() string {
	return d.Root.TextContent()
}

// Ancestor describes one element node on the chain from the root down to
// a resolved position.
type Ancestor struct {
	// Node is the element itself.
	Node *Node

	// Index is the node's 1-based index among its siblings.
	Index int

	// Start is the position immediately before the node's opening token.
	Start int
}

// AncestorsOf resolves a position to its chain of element ancestors in
// root-to-node order, the root excluded. A position inside a text or void
// leaf resolves to the leaf's parent chain.
func (d *Document) AncestorsOf(pos int) ([]Ancestor, error) {
	if pos < 0 || pos > d.ContentSize() {
		return nil, fmt.Errorf("%w: %d in document of size %d", ErrBadPosition, pos, d.ContentSize())
	}
	var chain []Ancestor
	cur := d.Root
	contentStart := 0
	for {
		descended := false
		p := contentStart
		for i, c := range cur.Children {
			size := c.Size()
			if pos >= p && pos < p+size {
				if c.IsLeaf() {
					return chain, nil
				}
				chain = append(chain, Ancestor{Node: c, Index: i + 1, Start: p})
				cur = c
				contentStart = p + 1
				descended = true
				break
			}
			p += size
		}
		if !descended {
			return chain, nil
		}
	}
}

// NodeStart returns the absolute position immediately before the given
// node's opening token, or -1 if the node is not in the document.
func (d *Document) NodeStart(target *Node) int {
	found := -1
	var walk func(n *Node, contentStart int) bool
	walk = func(n *Node, contentStart int) bool {
		pos := contentStart
		for _, c := range n.Children {
			if c == target {
				found = pos
				return false
			}
			if !c.IsLeaf() {
				if !walk(c, pos+1) {
					return false
				}
			}
			pos += c.Size()
		}
		return true
	}
	walk(d.Root, 0)
	return found
}

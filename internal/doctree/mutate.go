package doctree

import "fmt"

// MapRange records one replaced span of the position space: OldSize tokens
// starting at Start were replaced by NewSize tokens.
type MapRange struct {
	Start   int
	OldSize int
	NewSize int
}

// Mapping carries positions across one or more mutations. Every mutation
// command returns one, so selections and anchors can be remapped through
// the edit.
type Mapping struct {
	Ranges []MapRange
}

// Append folds another mapping's ranges onto this one.
func (m *Mapping) Append(o Mapping) {
	m.Ranges = append(m.Ranges, o.Ranges...)
}

// Map maps a position through the mutation, biasing left at boundaries.
func (m Mapping) Map(pos int) int {
	return m.MapAssoc(pos, -1)
}

// MapAssoc maps a position through the mutation. assoc > 0 biases the
// position to the right of content inserted at exactly that point.
func (m Mapping) MapAssoc(pos, assoc int) int {
	for _, r := range m.Ranges {
		end := r.Start + r.OldSize
		switch {
		case pos < r.Start:
			// untouched
		case pos == r.Start:
			if r.OldSize == 0 && assoc > 0 {
				pos += r.NewSize
			}
		case pos >= end:
			pos += r.NewSize - r.OldSize
		default:
			if assoc > 0 {
				pos = r.Start + r.NewSize
			} else {
				pos = r.Start
			}
		}
	}
	return pos
}

// textLeafLoc locates a text leaf within its parent.
type textLeafLoc struct {
	parent *Node
	index  int
	node   *Node
	start  int
}

func collectTextLeaves(n *Node, contentStart int, out *[]textLeafLoc) {
	pos := contentStart
	for i, c := range n.Children {
		if c.IsText() {
			*out = append(*out, textLeafLoc{parent: n, index: i, node: c, start: pos})
		} else if !c.IsVoid() {
			collectTextLeaves(c, pos+1, out)
		}
		pos += c.Size()
	}
}

func (d *Document) textLeaves() []textLeafLoc {
	var out []textLeafLoc
	collectTextLeaves(d.Root, 0, &out)
	return out
}

// InsertText inserts text at the given position. The text joins the text
// leaf the position falls in (or touches), inheriting its marks; a position
// inside an empty inline parent gets a fresh unmarked leaf.
func (d *Document) InsertText(pos int, text string) (Mapping, error) {
	if text == "" {
		return Mapping{}, nil
	}
	if err := d.checkRange(pos, pos); err != nil {
		return Mapping{}, err
	}
	mapping := Mapping{Ranges: []MapRange{{Start: pos, OldSize: 0, NewSize: runeLen(text)}}}

	leaves := d.textLeaves()
	// Prefer the leaf the position is strictly inside, then the leaf
	// ending at it, then the leaf starting at it.
	var target *textLeafLoc
	for i := range leaves {
		l := &leaves[i]
		end := l.start + l.node.Size()
		if pos > l.start && pos < end {
			target = l
			break
		}
		if pos == end {
			target = l
		}
		if pos == l.start && target == nil {
			target = l
		}
	}
	if target != nil {
		at := pos - target.start
		target.node.Text = runeSlice(target.node.Text, 0, at) + text + runeSlice(target.node.Text, at, runeLen(target.node.Text))
		return mapping, nil
	}

	// No adjacent text leaf. The position must sit inside an inline
	// parent; create a leaf there.
	chain, err := d.AncestorsOf(pos)
	if err != nil {
		return Mapping{}, err
	}
	if len(chain) == 0 {
		return Mapping{}, fmt.Errorf("%w: no inline context at %d", ErrBadPosition, pos)
	}
	parent := chain[len(chain)-1]
	if !parent.Node.inlineParent() {
		return Mapping{}, fmt.Errorf("%w: cannot insert text at %d", ErrBadPosition, pos)
	}
	idx, ok := childIndexAt(parent.Node, parent.Start+1, pos)
	if !ok {
		return Mapping{}, fmt.Errorf("%w: cannot insert text at %d", ErrBadPosition, pos)
	}
	parent.Node.Children = insertChildren(parent.Node.Children, idx, &Node{Type: TypeText, Text: text})
	return mapping, nil
}

// DeleteRange removes the tokens in [from, to). Text leaves overlapping the
// range are trimmed, leaves and void nodes fully covered are removed, and
// element nodes fully covered are removed whole; partially covered elements
// keep their structure.
func (d *Document) DeleteRange(from, to int) (Mapping, error) {
	if err := d.checkRange(from, to); err != nil {
		return Mapping{}, err
	}
	if from == to {
		return Mapping{}, nil
	}
	deleteInNode(d.Root, 0, from, to)
	return Mapping{Ranges: []MapRange{{Start: from, OldSize: to - from, NewSize: 0}}}, nil
}

func deleteInNode(n *Node, contentStart int, from, to int) {
	var kept []*Node
	pos := contentStart
	for _, c := range n.Children {
		size := c.Size()
		start, end := pos, pos+size
		pos += size
		switch {
		case to <= start || from >= end:
			kept = append(kept, c)
		case from <= start && to >= end:
			// fully covered, dropped
		case c.IsText():
			c.Text = runeSlice(c.Text, 0, max(from, start)-start) + runeSlice(c.Text, min(to, end)-start, size)
			if c.Text != "" {
				kept = append(kept, c)
			}
		case c.IsVoid():
			kept = append(kept, c)
		default:
			deleteInNode(c, start+1, from, to)
			kept = append(kept, c)
		}
	}
	n.Children = kept
}

// ReplaceTextRange rewrites the text in [from, to) with the replacement
// string. The range must lie within a single text leaf; marks are kept.
func (d *Document) ReplaceTextRange(from, to int, text string) (Mapping, error) {
	if err := d.checkRange(from, to); err != nil {
		return Mapping{}, err
	}
	for _, l := range d.textLeaves() {
		end := l.start + l.node.Size()
		if from >= l.start && to <= end {
			at, upto := from-l.start, to-l.start
			l.node.Text = runeSlice(l.node.Text, 0, at) + text + runeSlice(l.node.Text, upto, runeLen(l.node.Text))
			if l.node.Text == "" {
				l.parent.Children = removeChild(l.parent.Children, l.index)
			}
			return Mapping{Ranges: []MapRange{{Start: from, OldSize: to - from, NewSize: runeLen(text)}}}, nil
		}
	}
	return Mapping{}, fmt.Errorf("%w: [%d, %d) does not lie within one text leaf", ErrBadPosition, from, to)
}

// InsertFragment inserts the fragment's nodes at the given position. Inline
// fragments splice into the surrounding inline content, splitting a text
// leaf when the position falls inside one; block fragments are inserted at
// a top-level block boundary.
func (d *Document) InsertFragment(pos int, fragment []*Node) (Mapping, error) {
	if len(fragment) == 0 {
		return Mapping{}, nil
	}
	if err := d.checkRange(pos, pos); err != nil {
		return Mapping{}, err
	}
	total := 0
	inline := true
	for _, f := range fragment {
		total += f.Size()
		if !f.IsText() && f.Type != TypeHardBreak {
			inline = false
		}
	}
	mapping := Mapping{Ranges: []MapRange{{Start: pos, OldSize: 0, NewSize: total}}}

	if !inline {
		idx, ok := childIndexAt(d.Root, 0, pos)
		if !ok {
			return Mapping{}, fmt.Errorf("%w: block fragment needs a block boundary at %d", ErrBadPosition, pos)
		}
		d.Root.Children = insertChildren(d.Root.Children, idx, fragment...)
		return mapping, nil
	}

	// Inline fragment: split the containing text leaf if needed.
	for _, l := range d.textLeaves() {
		end := l.start + l.node.Size()
		if pos > l.start && pos < end {
			at := pos - l.start
			before := &Node{Type: TypeText, Text: runeSlice(l.node.Text, 0, at), Marks: l.node.Marks}
			after := &Node{Type: TypeText, Text: runeSlice(l.node.Text, at, runeLen(l.node.Text)), Marks: l.node.Marks}
			repl := append([]*Node{before}, fragment...)
			repl = append(repl, after)
			l.parent.Children = replaceChild(l.parent.Children, l.index, repl...)
			return mapping, nil
		}
	}
	chain, err := d.AncestorsOf(pos)
	if err != nil {
		return Mapping{}, err
	}
	if len(chain) == 0 {
		return Mapping{}, fmt.Errorf("%w: no inline context at %d", ErrBadPosition, pos)
	}
	parent := chain[len(chain)-1]
	if !parent.Node.inlineParent() {
		return Mapping{}, fmt.Errorf("%w: cannot insert inline fragment at %d", ErrBadPosition, pos)
	}
	idx, ok := childIndexAt(parent.Node, parent.Start+1, pos)
	if !ok {
		return Mapping{}, fmt.Errorf("%w: cannot insert inline fragment at %d", ErrBadPosition, pos)
	}
	parent.Node.Children = insertChildren(parent.Node.Children, idx, fragment...)
	return mapping, nil
}

// childIndexAt returns the child index whose boundary sits exactly at pos
// within the node's content starting at contentStart.
func childIndexAt(n *Node, contentStart, pos int) (int, bool) {
	p := contentStart
	for i, c := range n.Children {
		if p == pos {
			return i, true
		}
		p += c.Size()
	}
	if p == pos {
		return len(n.Children), true
	}
	return 0, false
}

func insertChildren(children []*Node, at int, nodes ...*Node) []*Node {
	out := make([]*Node, 0, len(children)+len(nodes))
	out = append(out, children[:at]...)
	out = append(out, nodes...)
	out = append(out, children[at:]...)
	return out
}

func removeChild(children []*Node, at int) []*Node {
	return replaceChild(children, at)
}

func replaceChild(children []*Node, at int, with ...*Node) []*Node {
	out := make([]*Node, 0, len(children)-1+len(with))
	out = append(out, children[:at]...)
	out = append(out, with...)
	out = append(out, children[at+1:]...)
	return out
}

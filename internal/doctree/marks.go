package doctree

import "fmt"

// AddMark applies a mark over [from, to), splitting text leaves at the
// range boundaries. Leaves already carrying an equal mark are untouched.
func (d *Document) AddMark(from, to int, mark Mark) error {
	if !d.Schema.SupportsMark(mark.Type) {
		return fmt.Errorf("%w: %q", ErrMarkUnsupported, mark.Type)
	}
	if err := d.checkRange(from, to); err != nil {
		return err
	}
	if from == to {
		return nil
	}
	addMarkInNode(d.Root, 0, from, to, mark)
	return nil
}

func addMarkInNode(n *Node, contentStart int, from, to int, mark Mark) {
	var rebuilt []*Node
	pos := contentStart
	for _, c := range n.Children {
		size := c.Size()
		start, end := pos, pos+size
		pos += size
		if to <= start || from >= end || c.IsVoid() {
			rebuilt = append(rebuilt, c)
			continue
		}
		if !c.IsText() {
			addMarkInNode(c, start+1, from, to, mark)
			rebuilt = append(rebuilt, c)
			continue
		}
		if hasMark(c.Marks, mark) {
			rebuilt = append(rebuilt, c)
			continue
		}
		lo, hi := max(from, start)-start, min(to, end)-start
		if pre := runeSlice(c.Text, 0, lo); pre != "" {
			rebuilt = append(rebuilt, &Node{Type: TypeText, Text: pre, Marks: c.Marks})
		}
		marked := &Node{Type: TypeText, Text: runeSlice(c.Text, lo, hi)}
		marked.Marks = append(append([]Mark{}, c.Marks...), mark)
		rebuilt = append(rebuilt, marked)
		if post := runeSlice(c.Text, hi, size); post != "" {
			rebuilt = append(rebuilt, &Node{Type: TypeText, Text: post, Marks: c.Marks})
		}
	}
	n.Children = rebuilt
}

// RemoveCommentMarks strips every comment mark bearing the given comment id
// and re-merges text leaves left with identical mark sets.
func (d *Document) RemoveCommentMarks(commentID string) {
	stripCommentMark(d.Root, commentID)
	mergeTextLeaves(d.Root)
}

func stripCommentMark(n *Node, commentID string) {
	if n.IsText() {
		var kept []Mark
		for _, m := range n.Marks {
			if m.Type == MarkComment && m.Attr(AttrCommentID) == commentID {
				continue
			}
			kept = append(kept, m)
		}
		n.Marks = kept
		return
	}
	for _, c := range n.Children {
		stripCommentMark(c, commentID)
	}
}

// mergeTextLeaves joins adjacent sibling text leaves whose mark sets are
// equal, restoring the canonical form after mark removal.
func mergeTextLeaves(n *Node) {
	if n.IsLeaf() {
		return
	}
	var merged []*Node
	for _, c := range n.Children {
		mergeTextLeaves(c)
		if len(merged) > 0 {
			last := merged[len(merged)-1]
			if last.IsText() && c.IsText() && marksEq(last.Marks, c.Marks) {
				last.Text += c.Text
				continue
			}
		}
		merged = append(merged, c)
	}
	n.Children = merged
}

// CleanProjection returns a deep copy of the document with every comment
// mark removed and adjacent text leaves re-merged. Structure, order and
// text content are preserved exactly.
func (d *Document) CleanProjection() *Document {
	clean := &Document{Root: d.Root.Clone(), Schema: d.Schema}
	dropCommentMarks(clean.Root)
	mergeTextLeaves(clean.Root)
	return clean
}

func dropCommentMarks(n *Node) {
	if n.IsText() {
		var kept []Mark
		for _, m := range n.Marks {
			if m.Type != MarkComment {
				kept = append(kept, m)
			}
		}
		n.Marks = kept
		return
	}
	for _, c := range n.Children {
		dropCommentMarks(c)
	}
}

func hasMark(marks []Mark, mark Mark) bool {
	for _, m := range marks {
		if m.Eq(mark) {
			return true
		}
	}
	return false
}

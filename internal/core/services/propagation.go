package services

import (
	"strings"

	"github.com/frostholm/marginalia/internal/doctree"
	"github.com/frostholm/marginalia/internal/logger"
)

// Marker propagation: the text normalization pass coupled to every edit
// and every paste. Runs of two or more plain spaces are rewritten to the
// same number of non-breaking spaces before any anchor snapshots text, so
// stored fragments stay faithful to what the document renders. Single
// spaces are never touched.

// nbsp is the stable visible substitute for a plain space inside a run.
const nbsp = ' '

// NormalizeSpaces rewrites every run of 2+ plain spaces in s to the same
// count of non-breaking spaces. The returned bool reports whether anything
// changed.
func NormalizeSpaces(s string) (string, bool) {
	var b strings.Builder
	run := 0
	changed := false
	flush := func() {
		if run >= 2 {
			b.WriteString(strings.Repeat(string(nbsp), run))
			changed = true
		} else if run == 1 {
			b.WriteByte(' ')
		}
		run = 0
	}
	for _, r := range s {
		if r == ' ' {
			run++
			continue
		}
		flush()
		b.WriteRune(r)
	}
	flush()
	if !changed {
		return s, false
	}
	return b.String(), true
}

// Propagation applies the normalization pass.
type Propagation struct{}

// NormalizeFragment rewrites multi-space runs in every text leaf of an
// incoming fragment, in place, before it is inserted. Returns whether any
// leaf changed; callers dispatch the substituted fragment instead of the
// raw paste when it did.
func (p Propagation) NormalizeFragment(n *doctree.Node) bool {
	if n.IsText() {
		text, changed := NormalizeSpaces(n.Text)
		n.Text = text
		return changed
	}
	changed := false
	for _, c := range n.Children {
		if p.NormalizeFragment(c) {
			changed = true
		}
	}
	return changed
}

// Amend scans the just-committed document for remaining plain multi-space
// runs and rewrites them as a follow-up amendment within the same edit
// step. The returned mapping remaps the caller's selection through the
// amendment; since every substitution is length-preserving, positions are
// stable but the mapping is still reported for uniformity.
func (p Propagation) Amend(doc *doctree.Document) (doctree.Mapping, error) {
	type edit struct {
		from, to int
		text     string
	}
	var edits []edit
	doc.EachTextLeaf(func(from, _ int, text string, _ []doctree.Mark) bool {
		runes := []rune(text)
		i := 0
		for i < len(runes) {
			if runes[i] != ' ' {
				i++
				continue
			}
			j := i
			for j < len(runes) && runes[j] == ' ' {
				j++
			}
			if j-i >= 2 {
				edits = append(edits, edit{
					from: from + i,
					to:   from + j,
					text: strings.Repeat(string(nbsp), j-i),
				})
			}
			i = j
		}
		return true
	})

	var mapping doctree.Mapping
	for _, e := range edits {
		m, err := doc.ReplaceTextRange(e.from, e.to, e.text)
		if err != nil {
			return mapping, err
		}
		mapping.Append(m)
	}
	if len(edits) > 0 {
		logger.Debug("propagation: rewrote %d multi-space run(s)", len(edits))
	}
	return mapping, nil
}

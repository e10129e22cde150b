package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Validity tracks whether an Offset anchor still has a live marker.
// Other strategies do not carry a validity state.
type Validity string

const (
	// ValidityBound means the anchor's marker is present in the document.
	ValidityBound Validity = "bound"

	// ValidityOrphaned means the marker disappeared. The transition is
	// one-way: an orphaned comment never re-binds, even if identical
	// text reappears elsewhere. Identity is the marker, never the text.
	ValidityOrphaned Validity = "orphaned"
)

// OrphanedFragmentPrefix marks a retained text fragment whose anchor was
// orphaned, kept for audit.
const OrphanedFragmentPrefix = "⚠ "

// Reply is a threaded response to a comment.
type Reply struct {
	ID        string
	Author    string
	Text      string
	CreatedAt time.Time
}

// NewReply creates a reply with a fresh id.
func NewReply(author, text string) Reply {
	return Reply{ID: uuid.New().String(), Author: author, Text: text, CreatedAt: time.Now().UTC()}
}

// Comment is a free-form annotation anchored to a document region.
// The id is unique within a store and immutable. Position fields are
// mutated only by the synchronizer or by restore; a comment is destroyed
// only by explicit deletion.
type Comment struct {
	ID        string
	Author    string
	Text      string
	CreatedAt time.Time
	Resolved  bool
	Replies   []Reply
	Anchor    Anchor

	// Validity is meaningful for Offset anchors only.
	Validity Validity
}

// NewComment creates a comment with a fresh id around the given anchor.
func NewComment(author, text string, anchor Anchor) Comment {
	c := Comment{
		ID:        uuid.New().String(),
		Author:    author,
		Text:      text,
		CreatedAt: time.Now().UTC(),
		Anchor:    anchor,
	}
	if anchor.Type() == AnchorOffset {
		c.Validity = ValidityBound
	}
	return c
}

// Orphaned reports whether the comment's anchor has lost its marker.
func (c *Comment) Orphaned() bool {
	return c.Validity == ValidityOrphaned
}

// Orphan transitions an Offset comment to the orphaned state: positions
// are cleared and the retained fragment is prefixed with the orphan
// marker. Calling it on an already-orphaned comment is a no-op.
func (c *Comment) Orphan() {
	oa, ok := c.Anchor.(*OffsetAnchor)
	if !ok || c.Orphaned() {
		return
	}
	c.Validity = ValidityOrphaned
	oa.From, oa.To = 0, 0
	if !strings.HasPrefix(oa.TextFragment, OrphanedFragmentPrefix) {
		oa.TextFragment = OrphanedFragmentPrefix + oa.TextFragment
	}
}

package doctree

// Mark type names used by the default schema.
const (
	MarkComment = "comment"
	MarkStrong  = "strong"
	MarkEm      = "em"
)

// AttrCommentID is the mark attribute carrying the owning comment's id.
const AttrCommentID = "id"

// Schema declares which mark types a document accepts. Mutation commands
// that attach marks consult it before touching the tree.
type Schema struct {
	marks map[string]bool
}

// NewSchema creates a schema accepting the given mark types.
func NewSchema(markTypes ...string) *Schema {
	s := &Schema{marks: make(map[string]bool, len(markTypes))}
	for _, t := range markTypes {
		s.marks[t] = true
	}
	return s
}

// DefaultSchema returns the standard schema: comment, strong and em marks.
func DefaultSchema() *Schema {
	return NewSchema(MarkComment, MarkStrong, MarkEm)
}

// SupportsMark reports whether the schema accepts the given mark type.
func (s *Schema) SupportsMark(markType string) bool {
	return s != nil && s.marks[markType]
}

// CommentMark builds a comment mark bearing the given comment id.
func CommentMark(commentID string) Mark {
	return Mark{Type: MarkComment, Attrs: map[string]string{AttrCommentID: commentID}}
}

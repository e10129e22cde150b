package driving

import (
	"context"

	"github.com/frostholm/marginalia/internal/core/domain"
)

// Editor is the single-writer editing session the driving adapters work
// against: document mutations, selection, and the comment operations of
// all three anchoring strategies. Implementations serialize mutation
// handling end-to-end; one mutation is fully processed (normalization
// amendment, synchronizer scan, persistence) before the next begins.
type Editor interface {
	// Select sets the current selection.
	Select(from, to int) error

	// Selection returns the current selection.
	Selection() domain.Span

	// InsertText inserts text at the given position and commits.
	InsertText(ctx context.Context, pos int, text string) error

	// DeleteRange deletes [from, to) and commits.
	DeleteRange(ctx context.Context, from, to int) error

	// Paste inserts a serialized fragment at the given position, with
	// incoming text normalized before insertion.
	Paste(ctx context.Context, pos int, fragmentJSON string) error

	// AddComment anchors a new comment over the current selection using
	// the given strategy. Fails with domain.ErrEmptySelection when the
	// selection is empty; nothing is mutated in that case.
	AddComment(ctx context.Context, author, text string, strategy domain.AnchorType) (domain.Comment, error)

	// DeleteComment removes the comment and every marker bearing its id.
	DeleteComment(ctx context.Context, id string) error

	// ToggleResolved flips the comment's resolved flag.
	ToggleResolved(ctx context.Context, id string) error

	// Reply appends a reply to the comment.
	Reply(ctx context.Context, commentID, author, text string) error

	// Comments lists the comments stored under one strategy, in order.
	Comments(strategy domain.AnchorType) []domain.Comment

	// ResolveAnchor maps a stored comment's anchor to a live range in
	// the current document.
	ResolveAnchor(id string) (domain.Span, error)

	// Load reads all comment namespaces from storage and restores
	// anchors against the current document.
	Load(ctx context.Context) error

	// DocumentJSON returns the serialized document, markers inline.
	DocumentJSON() (string, error)

	// CleanDocumentJSON returns the serialized clean projection, with
	// marker wrappers stripped and surrounding structure preserved.
	CleanDocumentJSON() (string, error)
}

package services

import (
	"context"
	"fmt"

	"github.com/frostholm/marginalia/internal/core/domain"
	"github.com/frostholm/marginalia/internal/core/ports/driven"
	"github.com/frostholm/marginalia/internal/core/ports/driving"
	"github.com/frostholm/marginalia/internal/doctree"
	"github.com/frostholm/marginalia/internal/logger"
)

// Ensure Session implements the driving port.
var _ driving.Editor = (*Session)(nil)

// Session is the single-writer editing loop over one document. Every
// mutation commits through the same pipeline: apply the edit, run the
// space normalization amendment and remap the selection through it, then
// run the synchronizer's scan and batch-persist whatever moved. The
// amendment always settles before the synchronizer reads positions.
//
// Session methods must be called from one goroutine; the host event loop
// serializes mutations by construction.
type Session struct {
	doc    *doctree.Document
	stores map[domain.AnchorType]*CommentStore
	sync   *Synchronizer
	prop   Propagation

	offset   OffsetStrategy
	nodePath NodePathStrategy
	embedded EmbeddedSpanStrategy

	selection domain.Span
}

// NewSession creates a session over the document, persisting comments
// through kv under "<scope>/comments/<strategy>" namespaces.
func NewSession(doc *doctree.Document, kv driven.KVStore, scope string) *Session {
	stores := make(map[domain.AnchorType]*CommentStore, 3)
	for _, t := range domain.AnchorTypes() {
		stores[t] = NewCommentStore(kv, scope+"/comments/"+string(t))
	}
	return &Session{
		doc:    doc,
		stores: stores,
		sync:   NewSynchronizer(stores[domain.AnchorOffset]),
	}
}

// Document exposes the live document tree.
func (s *Session) Document() *doctree.Document {
	return s.doc
}

// Select sets the current selection.
func (s *Session) Select(from, to int) error {
	if from < 0 || to < from || to > s.doc.ContentSize() {
		return fmt.Errorf("%w: selection [%d, %d)", domain.ErrInvalidInput, from, to)
	}
	s.selection = domain.Span{From: from, To: to}
	return nil
}

// Selection returns the current selection.
func (s *Session) Selection() domain.Span {
	return s.selection
}

// commit runs the post-edit pipeline for one mutation: normalization
// amendment (selection remapped through it), then the synchronizer scan.
func (s *Session) commit(ctx context.Context) error {
	amend, err := s.prop.Amend(s.doc)
	if err != nil {
		return fmt.Errorf("normalization amendment: %w", err)
	}
	s.remapSelection(amend)
	if _, err := s.sync.Sync(ctx, s.doc); err != nil {
		return err
	}
	return nil
}

func (s *Session) remapSelection(m doctree.Mapping) {
	s.selection = domain.Span{
		From: m.Map(s.selection.From),
		To:   m.Map(s.selection.To),
	}
}

// InsertText inserts text at pos and commits the mutation.
func (s *Session) InsertText(ctx context.Context, pos int, text string) error {
	mapping, err := s.doc.InsertText(pos, text)
	if err != nil {
		return err
	}
	s.remapSelection(mapping)
	return s.commit(ctx)
}

// DeleteRange deletes [from, to) and commits the mutation.
func (s *Session) DeleteRange(ctx context.Context, from, to int) error {
	mapping, err := s.doc.DeleteRange(from, to)
	if err != nil {
		return err
	}
	s.remapSelection(mapping)
	return s.commit(ctx)
}

// Paste inserts a serialized fragment at pos. The incoming fragment's
// text leaves are normalized before insertion, so the dispatched edit
// already carries the substituted text; the commit's amendment then has
// nothing left to rewrite for this paste.
func (s *Session) Paste(ctx context.Context, pos int, fragmentJSON string) error {
	nodes, err := doctree.ParseFragment(fragmentJSON)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	changed := false
	for _, n := range nodes {
		if s.prop.NormalizeFragment(n) {
			changed = true
		}
	}
	if changed {
		logger.Debug("paste: fragment normalized before insertion")
	}
	mapping, err := s.doc.InsertFragment(pos, nodes)
	if err != nil {
		return err
	}
	s.remapSelection(mapping)
	return s.commit(ctx)
}

// AddComment anchors a new comment over the current selection. The three
// strategies are mutually exclusive per comment; attaching a marker on a
// schema without the comment mark aborts without touching the document.
func (s *Session) AddComment(ctx context.Context, author, text string, strategy domain.AnchorType) (domain.Comment, error) {
	sel := s.selection
	if sel.Empty() {
		return domain.Comment{}, domain.ErrEmptySelection
	}

	var c domain.Comment
	switch strategy {
	case domain.AnchorOffset:
		anchor, err := s.offset.Compute(s.doc, sel.From, sel.To)
		if err != nil {
			return domain.Comment{}, err
		}
		c = domain.NewComment(author, text, anchor)
		if err := s.offset.Attach(s.doc, c.ID, sel.From, sel.To); err != nil {
			return domain.Comment{}, err
		}
	case domain.AnchorNodePath:
		anchor, err := s.nodePath.Compute(s.doc, sel.From)
		if err != nil {
			return domain.Comment{}, err
		}
		c = domain.NewComment(author, text, anchor)
	case domain.AnchorEmbeddedSpan:
		c = domain.NewComment(author, text, &domain.EmbeddedSpanAnchor{})
		anchor, err := s.embedded.Compute(s.doc, c.ID, sel.From, sel.To)
		if err != nil {
			return domain.Comment{}, err
		}
		c.Anchor = anchor
	default:
		return domain.Comment{}, fmt.Errorf("%w: unknown strategy %q", domain.ErrInvalidInput, strategy)
	}

	if err := s.stores[strategy].Add(ctx, c); err != nil {
		return domain.Comment{}, err
	}
	return c, nil
}

// DeleteComment removes every marker bearing the comment's id from the
// document and exactly that one record from its store. Other comments'
// markers and records are untouched.
func (s *Session) DeleteComment(ctx context.Context, id string) error {
	store, _, err := s.find(id)
	if err != nil {
		return err
	}
	s.doc.RemoveCommentMarks(id)
	return store.Remove(ctx, id)
}

// ToggleResolved flips the comment's resolved flag.
func (s *Session) ToggleResolved(ctx context.Context, id string) error {
	store, c, err := s.find(id)
	if err != nil {
		return err
	}
	c.Resolved = !c.Resolved
	return store.Update(ctx, c)
}

// Reply appends a reply to the comment.
func (s *Session) Reply(ctx context.Context, commentID, author, text string) error {
	store, c, err := s.find(commentID)
	if err != nil {
		return err
	}
	c.Replies = append(c.Replies, domain.NewReply(author, text))
	return store.Update(ctx, c)
}

// Comments lists the comments stored under one strategy, in order.
func (s *Session) Comments(strategy domain.AnchorType) []domain.Comment {
	store, ok := s.stores[strategy]
	if !ok {
		return nil
	}
	return store.List()
}

// ResolveAnchor maps a stored comment's anchor to a live range in the
// current document.
func (s *Session) ResolveAnchor(id string) (domain.Span, error) {
	_, c, err := s.find(id)
	if err != nil {
		return domain.Span{}, err
	}
	switch a := c.Anchor.(type) {
	case *domain.OffsetAnchor:
		if c.Orphaned() {
			return domain.Span{}, fmt.Errorf("%w: comment %s is orphaned", domain.ErrAnchorResolution, id)
		}
		span, ok := s.offset.Resolve(s.doc, id)
		if !ok {
			return domain.Span{}, fmt.Errorf("%w: no marker for comment %s", domain.ErrAnchorResolution, id)
		}
		return span, nil
	case *domain.NodePathAnchor:
		return s.nodePath.Restore(s.doc, a)
	case *domain.EmbeddedSpanAnchor:
		span, ok := s.embedded.Resolve(s.doc, id)
		if !ok {
			return domain.Span{}, fmt.Errorf("%w: no embedded marker for comment %s", domain.ErrAnchorResolution, id)
		}
		return span, nil
	}
	return domain.Span{}, fmt.Errorf("%w: comment %s has no anchor", domain.ErrInvalidInput, id)
}

// Load reads all comment namespaces from storage and restores anchors
// against the current document. Individual restoration failures are
// logged and leave that comment unattached; the batch always completes.
func (s *Session) Load(ctx context.Context) error {
	for _, store := range s.stores {
		if err := store.Load(ctx); err != nil {
			return err
		}
	}

	// Offset anchors need their markers re-attached on a cold start.
	for _, c := range s.stores[domain.AnchorOffset].List() {
		if err := s.offset.Restore(s.doc, &c); err != nil {
			logger.Warn("load: offset comment %s not restored: %v", c.ID, err)
		}
	}

	// Node path anchors are recomputed on demand; resolving here only
	// surfaces drift early.
	for _, c := range s.stores[domain.AnchorNodePath].List() {
		if _, err := s.nodePath.Verify(s.doc, &c); err != nil {
			logger.Warn("load: node path comment %s does not resolve: %v", c.ID, err)
		}
	}

	return nil
}

// DocumentJSON returns the serialized document, markers inline.
func (s *Session) DocumentJSON() (string, error) {
	return s.doc.Serialize()
}

// CleanDocumentJSON returns the serialized clean projection.
func (s *Session) CleanDocumentJSON() (string, error) {
	return s.embedded.Clean(s.doc).Serialize()
}

func (s *Session) find(id string) (*CommentStore, domain.Comment, error) {
	for _, store := range s.stores {
		if c, ok := store.Get(id); ok {
			return store, c, nil
		}
	}
	return nil, domain.Comment{}, fmt.Errorf("%w: comment %s", domain.ErrNotFound, id)
}

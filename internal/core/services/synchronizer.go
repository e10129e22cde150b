package services

import (
	"context"
	"fmt"

	"github.com/frostholm/marginalia/internal/core/domain"
	"github.com/frostholm/marginalia/internal/doctree"
	"github.com/frostholm/marginalia/internal/logger"
)

// CollectCommentSpans is a pure visitor over an immutable document
// snapshot. It scans every text leaf once and coalesces all marker runs
// sharing a comment id to [min(from), max(to)). A single comment's marker
// may appear as several disjoint runs when its selection crossed node
// boundaries.
func CollectCommentSpans(doc *doctree.Document) map[string]domain.Span {
	spans := make(map[string]domain.Span)
	doc.EachTextLeaf(func(from, to int, _ string, marks []doctree.Mark) bool {
		for _, m := range marks {
			if m.Type != doctree.MarkComment {
				continue
			}
			id := m.Attr(doctree.AttrCommentID)
			if id == "" {
				continue
			}
			if cur, ok := spans[id]; ok {
				spans[id] = domain.Span{From: min(cur.From, from), To: max(cur.To, to)}
			} else {
				spans[id] = domain.Span{From: from, To: to}
			}
		}
		return true
	})
	return spans
}

// Synchronizer recomputes offset anchors' live coordinates once per
// committed mutation and detects orphaning. It runs after the space
// normalization amendment has settled, so the positions it reads are
// final for that mutation.
type Synchronizer struct {
	store *CommentStore
}

// NewSynchronizer creates a synchronizer over the offset comment store.
func NewSynchronizer(store *CommentStore) *Synchronizer {
	return &Synchronizer{store: store}
}

// Sync performs one linear scan of the document's leaves and updates every
// offset comment whose span or fragment changed, in a single batch per
// mutation. A previously bound comment whose marker is gone transitions
// one-way to orphaned: positions cleared, fragment retained with the
// orphan prefix. Orphaned comments are never re-bound. Running Sync twice
// on an unchanged document changes nothing the second time.
func (s *Synchronizer) Sync(ctx context.Context, doc *doctree.Document) (int, error) {
	spans := CollectCommentSpans(doc)

	var changed []domain.Comment
	for _, c := range s.store.List() {
		a, ok := c.Anchor.(*domain.OffsetAnchor)
		if !ok || c.Orphaned() {
			continue
		}
		span, live := spans[c.ID]
		if !live {
			c.Orphan()
			logger.Info("synchronizer: comment %s lost its marker, orphaned", c.ID)
			changed = append(changed, c)
			continue
		}
		fragment, err := doc.TextBetween(span.From, span.To)
		if err != nil {
			return 0, fmt.Errorf("synchronizer scan: %w", err)
		}
		if span.From != a.From || span.To != a.To || fragment != a.TextFragment {
			a.From, a.To = span.From, span.To
			a.TextFragment = fragment
			changed = append(changed, c)
		}
	}

	if len(changed) == 0 {
		return 0, nil
	}
	if err := s.store.UpdateBatch(ctx, changed); err != nil {
		return 0, fmt.Errorf("synchronizer update: %w", err)
	}
	return len(changed), nil
}

package services

import (
	"context"
	"fmt"

	"github.com/frostholm/marginalia/internal/core/domain"
	"github.com/frostholm/marginalia/internal/core/ports/driven"
	"github.com/frostholm/marginalia/internal/logger"
)

// CommentStore is the ordered in-memory collection of comments for one
// strategy, persisted through the key-value collaborator under a
// strategy-specific namespace key. Each strategy gets its own store; no
// shared singleton exists.
//
// List returns comment value copies whose Anchor pointers are live: in the
// single-writer model only the synchronizer and restore mutate anchors,
// and every mutation is followed by a batch persist.
type CommentStore struct {
	kv        driven.KVStore
	namespace string
	comments  []domain.Comment
}

// NewCommentStore creates a store persisting under the given namespace key.
func NewCommentStore(kv driven.KVStore, namespace string) *CommentStore {
	return &CommentStore{kv: kv, namespace: namespace}
}

// Namespace returns the store's persistence key.
func (s *CommentStore) Namespace() string {
	return s.namespace
}

// Load reads the namespace from storage. Records failing shape validation
// are dropped silently (logged); the rest of the batch loads normally. An
// absent key loads an empty collection.
func (s *CommentStore) Load(ctx context.Context) error {
	value, ok, err := s.kv.Get(ctx, s.namespace)
	if err != nil {
		return fmt.Errorf("loading %s: %w", s.namespace, err)
	}
	if !ok {
		s.comments = nil
		return nil
	}
	comments, dropped := domain.UnmarshalComments(value)
	for _, derr := range dropped {
		logger.Warn("comment store %s: dropped %v", s.namespace, derr)
	}
	s.comments = comments
	return nil
}

// Save overwrites the namespace with the current collection.
func (s *CommentStore) Save(ctx context.Context) error {
	data, err := domain.MarshalComments(s.comments)
	if err != nil {
		return fmt.Errorf("saving %s: %w", s.namespace, err)
	}
	if err := s.kv.Set(ctx, s.namespace, data); err != nil {
		return fmt.Errorf("saving %s: %w", s.namespace, err)
	}
	return nil
}

// Add appends a comment and persists.
func (s *CommentStore) Add(ctx context.Context, c domain.Comment) error {
	if _, ok := s.index(c.ID); ok {
		return fmt.Errorf("%w: comment %s already stored", domain.ErrInvalidInput, c.ID)
	}
	s.comments = append(s.comments, c)
	return s.Save(ctx)
}

// Update replaces the stored comment with the same id and persists.
func (s *CommentStore) Update(ctx context.Context, c domain.Comment) error {
	i, ok := s.index(c.ID)
	if !ok {
		return domain.ErrNotFound
	}
	s.comments[i] = c
	return s.Save(ctx)
}

// UpdateBatch replaces several stored comments and persists once, so one
// mutation causes at most one downstream write.
func (s *CommentStore) UpdateBatch(ctx context.Context, comments []domain.Comment) error {
	for _, c := range comments {
		i, ok := s.index(c.ID)
		if !ok {
			return fmt.Errorf("%w: comment %s", domain.ErrNotFound, c.ID)
		}
		s.comments[i] = c
	}
	return s.Save(ctx)
}

// Remove deletes exactly the record with the given id and persists.
func (s *CommentStore) Remove(ctx context.Context, id string) error {
	i, ok := s.index(id)
	if !ok {
		return domain.ErrNotFound
	}
	s.comments = append(s.comments[:i], s.comments[i+1:]...)
	return s.Save(ctx)
}

// Get returns the stored comment with the given id.
func (s *CommentStore) Get(id string) (domain.Comment, bool) {
	i, ok := s.index(id)
	if !ok {
		return domain.Comment{}, false
	}
	return s.comments[i], true
}

// List returns the collection in insertion order.
func (s *CommentStore) List() []domain.Comment {
	out := make([]domain.Comment, len(s.comments))
	copy(out, s.comments)
	return out
}

// Len returns the number of stored comments.
func (s *CommentStore) Len() int {
	return len(s.comments)
}

func (s *CommentStore) index(id string) (int, bool) {
	for i := range s.comments {
		if s.comments[i].ID == id {
			return i, true
		}
	}
	return 0, false
}

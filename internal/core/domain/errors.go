package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptySelection indicates a comment was requested over an empty
	// selection. Nothing is mutated.
	ErrEmptySelection = errors.New("selection is empty")

	// ErrAnchorResolution indicates an anchor could not be mapped to a
	// live range in the current document. The comment is retained and
	// flagged unattached, never deleted.
	ErrAnchorResolution = errors.New("anchor cannot be resolved")

	// ErrMarkerCapabilityMissing indicates the document's schema lacks
	// the comment mark type. The single operation aborts and the
	// document is left unchanged.
	ErrMarkerCapabilityMissing = errors.New("document schema lacks the comment mark")

	// ErrMalformedRecord indicates a persisted comment record failed
	// shape validation. The record is dropped; the batch load continues.
	ErrMalformedRecord = errors.New("malformed comment record")
)

// Package domain holds the core types of the annotation system: comments,
// the anchor sum type that ties a comment to a document region, and the
// persisted record codec. Domain types carry no reference to any storage
// or editor adapter.
package domain

package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// AnchorType discriminates the three anchoring strategies. The values
// double as the persisted record type tags and the storage namespaces.
type AnchorType string

const (
	// AnchorOffset anchors by absolute positions backed by a live marker.
	AnchorOffset AnchorType = "offset"

	// AnchorNodePath anchors by a structural path from the document root.
	AnchorNodePath AnchorType = "nodePath"

	// AnchorEmbeddedSpan anchors by a marker embedded in the persisted
	// document body itself; no separate coordinates exist.
	AnchorEmbeddedSpan AnchorType = "contentSpan"
)

// AnchorTypes lists all strategies in display order.
func AnchorTypes() []AnchorType {
	return []AnchorType{AnchorOffset, AnchorNodePath, AnchorEmbeddedSpan}
}

// ParseAnchorType validates a strategy name.
func ParseAnchorType(s string) (AnchorType, error) {
	switch AnchorType(s) {
	case AnchorOffset, AnchorNodePath, AnchorEmbeddedSpan:
		return AnchorType(s), nil
	}
	return "", fmt.Errorf("%w: unknown anchor type %q", ErrInvalidInput, s)
}

// Span is a half-open position range [From, To) in a document.
type Span struct {
	From int
	To   int
}

// Empty reports whether the span covers no positions.
func (s Span) Empty() bool {
	return s.To <= s.From
}

// Anchor is the persisted description of where a comment attaches within a
// document. It is a sealed sum type: exactly one of the three variants is
// active per comment, and invalid field combinations are unrepresentable.
type Anchor interface {
	// Type returns the strategy discriminator.
	Type() AnchorType

	// Fragment returns the text snapshot retained for integrity checks
	// and display. It is never authoritative for resolution.
	Fragment() string

	anchor()
}

// OffsetAnchor is the Offset strategy's anchor: absolute positions plus a
// text snapshot. It requires a live marker in the document to stay valid.
type OffsetAnchor struct {
	From         int
	To           int
	TextFragment string
}

func (*OffsetAnchor) Type() AnchorType   { return AnchorOffset }
func (a *OffsetAnchor) Fragment() string { return a.TextFragment }
func (*OffsetAnchor) anchor()            {}

// NodePathAnchor is the NodePath strategy's anchor: a structural path from
// the root to the target node, with the node's full range. An empty path
// is the whole-document sentinel.
type NodePathAnchor struct {
	Path         []PathStep
	StartOffset  int
	EndOffset    int
	TextFragment string
}

func (*NodePathAnchor) Type() AnchorType   { return AnchorNodePath }
func (a *NodePathAnchor) Fragment() string { return a.TextFragment }
func (*NodePathAnchor) anchor()            {}

// WholeDocument reports whether the anchor targets the entire document.
func (a *NodePathAnchor) WholeDocument() bool {
	return len(a.Path) == 0
}

// EmbeddedSpanAnchor is the EmbeddedSpan strategy's anchor. Identity lives
// entirely in a marker inside the persisted document body; only the text
// snapshot is kept alongside the comment.
type EmbeddedSpanAnchor struct {
	TextFragment string
}

func (*EmbeddedSpanAnchor) Type() AnchorType   { return AnchorEmbeddedSpan }
func (a *EmbeddedSpanAnchor) Fragment() string { return a.TextFragment }
func (*EmbeddedSpanAnchor) anchor()            {}

// PathStep is one segment of a structural path: a display tag name and a
// 1-based index among the node's siblings.
type PathStep struct {
	Tag   string
	Index int
}

// String renders the segment in its persisted form, "tag:nth-child(N)".
func (s PathStep) String() string {
	return fmt.Sprintf("%s:nth-child(%d)", s.Tag, s.Index)
}

// pathSeparator joins path segments in the persisted form.
const pathSeparator = " > "

// FormatPath renders a structural path as its persisted string form.
// An empty path renders as the empty string.
func FormatPath(steps []PathStep) string {
	parts := make([]string, len(steps))
	for i, s := range steps {
		parts[i] = s.String()
	}
	return strings.Join(parts, pathSeparator)
}

// ParsePath parses the persisted path form. The empty string yields the
// whole-document sentinel (nil steps).
func ParsePath(path string) ([]PathStep, error) {
	if path == "" {
		return nil, nil
	}
	segments := strings.Split(path, pathSeparator)
	steps := make([]PathStep, 0, len(segments))
	for _, seg := range segments {
		step, err := parsePathStep(seg)
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	return steps, nil
}

func parsePathStep(seg string) (PathStep, error) {
	tag, rest, ok := strings.Cut(seg, ":nth-child(")
	if !ok || tag == "" || !strings.HasSuffix(rest, ")") {
		return PathStep{}, fmt.Errorf("%w: malformed path segment %q", ErrInvalidInput, seg)
	}
	n, err := strconv.Atoi(strings.TrimSuffix(rest, ")"))
	if err != nil || n < 1 {
		return PathStep{}, fmt.Errorf("%w: malformed child index in segment %q", ErrInvalidInput, seg)
	}
	return PathStep{Tag: tag, Index: n}, nil
}

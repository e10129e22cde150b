package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Persisted record shapes, one per strategy. The store namespaces persist
// a JSON array of these records; the key-value collaborator enforces no
// schema, so all validation lives here.

type replyRecord struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

type commentRecord struct {
	ID        string          `json:"id"`
	Author    string          `json:"author"`
	Text      string          `json:"text"`
	CreatedAt time.Time       `json:"createdAt"`
	Resolved  bool            `json:"resolved"`
	Type      AnchorType      `json:"type"`
	Position  json.RawMessage `json:"position"`
	Replies   []replyRecord   `json:"replies,omitempty"`
	Validity  Validity        `json:"validity,omitempty"`
}

type offsetPosition struct {
	From         *int   `json:"from"`
	To           *int   `json:"to"`
	TextFragment string `json:"textFragment"`
}

type nodePathPosition struct {
	Path         *string `json:"path"`
	StartOffset  *int    `json:"startOffset"`
	EndOffset    *int    `json:"endOffset"`
	TextFragment string  `json:"textFragment"`
}

type spanPosition struct {
	TextFragment string `json:"textFragment"`
}

// MarshalComment encodes a comment as its persisted record.
func MarshalComment(c Comment) ([]byte, error) {
	rec := commentRecord{
		ID:        c.ID,
		Author:    c.Author,
		Text:      c.Text,
		CreatedAt: c.CreatedAt,
		Resolved:  c.Resolved,
		Type:      c.Anchor.Type(),
		Validity:  c.Validity,
	}
	for _, r := range c.Replies {
		rec.Replies = append(rec.Replies, replyRecord(r))
	}

	var pos any
	switch a := c.Anchor.(type) {
	case *OffsetAnchor:
		from, to := a.From, a.To
		pos = offsetPosition{From: &from, To: &to, TextFragment: a.TextFragment}
	case *NodePathAnchor:
		path := FormatPath(a.Path)
		start, end := a.StartOffset, a.EndOffset
		pos = nodePathPosition{Path: &path, StartOffset: &start, EndOffset: &end, TextFragment: a.TextFragment}
	case *EmbeddedSpanAnchor:
		pos = spanPosition{TextFragment: a.TextFragment}
	default:
		return nil, fmt.Errorf("%w: unknown anchor variant %T", ErrInvalidInput, c.Anchor)
	}

	raw, err := json.Marshal(pos)
	if err != nil {
		return nil, err
	}
	rec.Position = raw
	return json.Marshal(rec)
}

// UnmarshalComment decodes one persisted record. Records missing required
// fields or carrying malformed position sub-fields fail with
// ErrMalformedRecord.
func UnmarshalComment(data []byte) (Comment, error) {
	var rec commentRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return Comment{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	if rec.ID == "" || rec.Author == "" || rec.Text == "" || rec.CreatedAt.IsZero() {
		return Comment{}, fmt.Errorf("%w: missing id, author, text or createdAt", ErrMalformedRecord)
	}

	c := Comment{
		ID:        rec.ID,
		Author:    rec.Author,
		Text:      rec.Text,
		CreatedAt: rec.CreatedAt,
		Resolved:  rec.Resolved,
		Validity:  rec.Validity,
	}
	for _, r := range rec.Replies {
		c.Replies = append(c.Replies, Reply(r))
	}

	switch rec.Type {
	case AnchorOffset:
		var pos offsetPosition
		if err := json.Unmarshal(rec.Position, &pos); err != nil {
			return Comment{}, fmt.Errorf("%w: offset position: %v", ErrMalformedRecord, err)
		}
		a := &OffsetAnchor{TextFragment: pos.TextFragment}
		if c.Validity != ValidityOrphaned {
			if pos.From == nil || pos.To == nil || *pos.From > *pos.To {
				return Comment{}, fmt.Errorf("%w: offset position missing or inverted from/to", ErrMalformedRecord)
			}
			a.From, a.To = *pos.From, *pos.To
			c.Validity = ValidityBound
		}
		c.Anchor = a
	case AnchorNodePath:
		var pos nodePathPosition
		if err := json.Unmarshal(rec.Position, &pos); err != nil {
			return Comment{}, fmt.Errorf("%w: nodePath position: %v", ErrMalformedRecord, err)
		}
		if pos.Path == nil || pos.StartOffset == nil || pos.EndOffset == nil {
			return Comment{}, fmt.Errorf("%w: nodePath position missing path or offsets", ErrMalformedRecord)
		}
		steps, err := ParsePath(*pos.Path)
		if err != nil {
			return Comment{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
		}
		c.Anchor = &NodePathAnchor{
			Path:         steps,
			StartOffset:  *pos.StartOffset,
			EndOffset:    *pos.EndOffset,
			TextFragment: pos.TextFragment,
		}
	case AnchorEmbeddedSpan:
		var pos spanPosition
		if err := json.Unmarshal(rec.Position, &pos); err != nil {
			return Comment{}, fmt.Errorf("%w: contentSpan position: %v", ErrMalformedRecord, err)
		}
		c.Anchor = &EmbeddedSpanAnchor{TextFragment: pos.TextFragment}
	default:
		return Comment{}, fmt.Errorf("%w: unknown record type %q", ErrMalformedRecord, rec.Type)
	}

	return c, nil
}

// MarshalComments encodes an ordered collection as one JSON array.
func MarshalComments(comments []Comment) (string, error) {
	records := make([]json.RawMessage, 0, len(comments))
	for _, c := range comments {
		raw, err := MarshalComment(c)
		if err != nil {
			return "", err
		}
		records = append(records, raw)
	}
	data, err := json.Marshal(records)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// UnmarshalComments decodes a persisted JSON array. Individual records
// failing validation are dropped; their errors are returned for logging
// and the rest of the batch loads normally.
func UnmarshalComments(data string) ([]Comment, []error) {
	var records []json.RawMessage
	if err := json.Unmarshal([]byte(data), &records); err != nil {
		return nil, []error{fmt.Errorf("%w: %v", ErrMalformedRecord, err)}
	}
	var comments []Comment
	var dropped []error
	for i, raw := range records {
		c, err := UnmarshalComment(raw)
		if err != nil {
			dropped = append(dropped, fmt.Errorf("record %d: %w", i, err))
			continue
		}
		comments = append(comments, c)
	}
	return comments, dropped
}

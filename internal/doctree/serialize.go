package doctree

import (
	"encoding/json"
	"fmt"
)

// jsonMark is the wire form of a Mark.
type jsonMark struct {
	Type  string            `json:"type"`
	Attrs map[string]string `json:"attrs,omitempty"`
}

// jsonNode is the wire form of a Node.
type jsonNode struct {
	Type    string            `json:"type"`
	Attrs   map[string]string `json:"attrs,omitempty"`
	Content []*jsonNode       `json:"content,omitempty"`
	Text    string            `json:"text,omitempty"`
	Marks   []jsonMark        `json:"marks,omitempty"`
}

func toJSONNode(n *Node) *jsonNode {
	j := &jsonNode{Type: n.Type, Attrs: n.Attrs, Text: n.Text}
	for _, m := range n.Marks {
		j.Marks = append(j.Marks, jsonMark{Type: m.Type, Attrs: m.Attrs})
	}
	for _, c := range n.Children {
		j.Content = append(j.Content, toJSONNode(c))
	}
	return j
}

func fromJSONNode(j *jsonNode) *Node {
	n := &Node{Type: j.Type, Attrs: j.Attrs, Text: j.Text}
	for _, m := range j.Marks {
		n.Marks = append(n.Marks, Mark{Type: m.Type, Attrs: m.Attrs})
	}
	for _, c := range j.Content {
		n.Children = append(n.Children, fromJSONNode(c))
	}
	return n
}

// Serialize renders the whole document, marks included, as a JSON string.
// Comment markers ride along inline, so saving the document also saves
// embedded-span identities.
func (d *Document) Serialize() (string, error) {
	data, err := json.Marshal(toJSONNode(d.Root))
	if err != nil {
		return "", fmt.Errorf("serializing document: %w", err)
	}
	return string(data), nil
}

// ParseFragment parses a pasted fragment: either a single node object or
// an array of nodes.
func ParseFragment(data string) ([]*Node, error) {
	trimmed := []byte(data)
	var list []*jsonNode
	if err := json.Unmarshal(trimmed, &list); err != nil {
		var single jsonNode
		if err := json.Unmarshal(trimmed, &single); err != nil {
			return nil, fmt.Errorf("parsing fragment: %w", err)
		}
		list = []*jsonNode{&single}
	}
	nodes := make([]*Node, 0, len(list))
	for _, j := range list {
		n := fromJSONNode(j)
		if err := n.validate(); err != nil {
			return nil, fmt.Errorf("parsing fragment: %w", err)
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

// Parse builds a document from its serialized JSON form under the given
// schema. The tree is validated structurally; unknown node types are kept
// as-is so foreign documents still round-trip.
func Parse(schema *Schema, data string) (*Document, error) {
	var j jsonNode
	if err := json.Unmarshal([]byte(data), &j); err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}
	root := fromJSONNode(&j)
	if root.Type != TypeDoc {
		return nil, fmt.Errorf("parsing document: root node is %q, want %q", root.Type, TypeDoc)
	}
	if err := root.validate(); err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}
	return &Document{Root: root, Schema: schema}, nil
}

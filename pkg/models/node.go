package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

type idKind uint8

const (
	idAbsent idKind = iota
	idInt
	idString
)

// NodeID identifies a node within a definition. Platforms use either integers
// or strings, so the value keeps whichever form it was created with.
// The zero value means the id is absent.
type NodeID struct {
	kind idKind
	num  int64
	str  string
}

// IntID returns an integer node id.
func IntID(n int64) NodeID {
	return NodeID{kind: idInt, num: n}
}

// StringID returns a string node id.
func StringID(s string) NodeID {
	return NodeID{kind: idString, str: s}
}

func (id NodeID) IsZero() bool {
	return id.kind == idAbsent
}

func (id NodeID) IsInt() bool {
	return id.kind == idInt
}

// Int returns the numeric form of the id. ok is false for string or absent ids.
func (id NodeID) Int() (int64, bool) {
	return id.num, id.kind == idInt
}

func (id NodeID) String() string {
	switch id.kind {
	case idInt:
		return strconv.FormatInt(id.num, 10)
	case idString:
		return id.str
	default:
		return "<none>"
	}
}

// DeepCopy lets deepcopy.Copy clone ids despite their unexported fields.
func (id NodeID) DeepCopy() any {
	return id
}

func (id NodeID) MarshalJSON() ([]byte, error) {
	switch id.kind {
	case idInt:
		return []byte(strconv.FormatInt(id.num, 10)), nil
	case idString:
		return json.Marshal(id.str)
	default:
		return []byte("null"), nil
	}
}

func (id *NodeID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	switch {
	case bytes.Equal(data, []byte("null")):
		*id = NodeID{}

		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}

		*id = StringID(s)

		return nil
	}

	if n, err := strconv.ParseInt(string(data), 10, 64); err == nil {
		*id = IntID(n)

		return nil
	}

	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil || f != math.Trunc(f) {
		return fmt.Errorf("node id must be an integer or a string, got %s", data)
	}

	*id = IntID(int64(f))

	return nil
}

// Position is the visual location of a node in the platform designer.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NodeMetadata holds designer information. Keys other than designerPosition
// and label are kept in Extra and written back unchanged.
type NodeMetadata struct {
	DesignerPosition *Position
	Label            string
	Extra            map[string]any
}

func (m NodeMetadata) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(m.Extra)+2)
	for k, v := range m.Extra {
		out[k] = v
	}

	if m.DesignerPosition != nil {
		out["designerPosition"] = m.DesignerPosition
	}

	if m.Label != "" {
		out["label"] = m.Label
	}

	return json.Marshal(out)
}

func (m *NodeMetadata) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*m = NodeMetadata{}

	for key, value := range raw {
		switch key {
		case "designerPosition":
			if bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
				continue
			}

			var pos Position
			if err := json.Unmarshal(value, &pos); err != nil {
				return fmt.Errorf("metadata.designerPosition: %w", err)
			}

			m.DesignerPosition = &pos
		case "label":
			if err := json.Unmarshal(value, &m.Label); err != nil {
				return fmt.Errorf("metadata.label: %w", err)
			}
		default:
			var v any
			if err := json.Unmarshal(value, &v); err != nil {
				return err
			}

			if m.Extra == nil {
				m.Extra = make(map[string]any)
			}

			m.Extra[key] = v
		}
	}

	return nil
}

// Node is one step of a workflow.
type Node struct {
	ID         NodeID         `json:"id,omitzero"`
	ModuleName string         `json:"moduleName,omitempty"`
	Version    *int           `json:"version,omitempty"`
	Parameters map[string]any `json:"parameters,omitzero"`
	Metadata   *NodeMetadata  `json:"metadata,omitempty"`
}

// Position returns the designer position, or nil when the node has none.
func (n *Node) Position() *Position {
	if n.Metadata == nil {
		return nil
	}

	return n.Metadata.DesignerPosition
}

// Label returns the node's display label, empty when unset.
func (n *Node) Label() string {
	if n.Metadata == nil {
		return ""
	}

	return n.Metadata.Label
}

// Connection is a directed edge between two nodes.
type Connection struct {
	From            NodeID `json:"from,omitzero"`
	To              NodeID `json:"to,omitzero"`
	BranchCondition string `json:"branchCondition,omitempty"`
	Output          int    `json:"output,omitempty"` // Source output slot for multi-output nodes
	// Type is the connection type for links outside the main data flow,
	// such as n8n's "ai_languageModel".
	Type string `json:"type,omitempty"`
}

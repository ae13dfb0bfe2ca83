// Package models defines the blueprint document model shared by every component
package models

import (
	"encoding/json"
	"fmt"

	"github.com/mohae/deepcopy"
)

// Definition is one workflow blueprint: nodes, the connections between them and
// platform settings. A nil Nodes slice or Settings map means the key was absent
// from the document, which is different from an empty value.
type Definition struct {
	Name        string         `json:"name,omitempty"`
	Description string         `json:"description,omitempty"`
	Platform    string         `json:"platform,omitempty"`
	Nodes       []*Node        `json:"nodes,omitzero"`
	Connections []*Connection  `json:"connections,omitempty"`
	Settings    map[string]any `json:"settings,omitzero"`
}

// Clone returns a deep copy of the definition. Components clone before
// mutating so callers' documents are never touched.
func (d *Definition) Clone() *Definition {
	if d == nil {
		return nil
	}

	cloned, ok := deepcopy.Copy(d).(*Definition)
	if !ok {
		panic("models: deepcopy returned unexpected type")
	}

	return cloned
}

// NodeByID returns the first node carrying id.
func (d *Definition) NodeByID(id NodeID) (*Node, bool) {
	for _, n := range d.Nodes {
		if n != nil && n.ID == id {
			return n, true
		}
	}

	return nil, false
}

// ParseDefinition decodes a JSON document into a Definition.
func ParseDefinition(data []byte) (*Definition, error) {
	var def Definition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to parse blueprint: %w", err)
	}

	return &def, nil
}

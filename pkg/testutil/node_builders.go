// Package testutil provides test data builders and utilities for testing.
package testutil

import (
	"github.com/dukex/blueprint/pkg/models"
)

// CreateTestNode creates a complete node with default values that can be overridden.
func CreateTestNode(id int64, moduleName string, overrides ...func(*models.Node)) *models.Node {
	version := 1
	node := &models.Node{
		ID:         models.IntID(id),
		ModuleName: moduleName,
		Version:    &version,
		Parameters: map[string]any{},
		Metadata: &models.NodeMetadata{
			DesignerPosition: &models.Position{X: float64(id-1) * 300, Y: 0},
		},
	}

	for _, override := range overrides {
		override(node)
	}

	return node
}

// WithStringID replaces the node id with a string id.
func WithStringID(id string) func(*models.Node) {
	return func(n *models.Node) {
		n.ID = models.StringID(id)
	}
}

// WithParameters sets the node parameters.
func WithParameters(params map[string]any) func(*models.Node) {
	return func(n *models.Node) {
		n.Parameters = params
	}
}

// WithPosition sets the node position.
func WithPosition(x, y float64) func(*models.Node) {
	return func(n *models.Node) {
		if n.Metadata == nil {
			n.Metadata = &models.NodeMetadata{}
		}

		n.Metadata.DesignerPosition = &models.Position{X: x, Y: y}
	}
}

// WithLabel sets the node display label.
func WithLabel(label string) func(*models.Node) {
	return func(n *models.Node) {
		if n.Metadata == nil {
			n.Metadata = &models.NodeMetadata{}
		}

		n.Metadata.Label = label
	}
}

// WithoutPosition removes the designer position but keeps the metadata object.
func WithoutPosition() func(*models.Node) {
	return func(n *models.Node) {
		n.Metadata = &models.NodeMetadata{}
	}
}

// WithoutVersion removes the module version.
func WithoutVersion() func(*models.Node) {
	return func(n *models.Node) {
		n.Version = nil
	}
}

// WithoutParameters removes the parameters object.
func WithoutParameters() func(*models.Node) {
	return func(n *models.Node) {
		n.Parameters = nil
	}
}

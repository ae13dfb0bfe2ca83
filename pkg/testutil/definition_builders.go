package testutil

import (
	"github.com/dukex/blueprint/pkg/models"
	"github.com/dukex/blueprint/pkg/platform"
)

// CreateTestDefinition creates a valid definition for p: nodes get ids 1..N,
// consecutive nodes are connected, and settings hold the platform defaults.
func CreateTestDefinition(p platform.Platform, moduleNames []string, overrides ...func(*models.Definition)) *models.Definition {
	def := &models.Definition{
		Name:        "Test Blueprint",
		Description: "Blueprint used in tests",
		Platform:    p.String(),
		Nodes:       make([]*models.Node, 0, len(moduleNames)),
		Connections: make([]*models.Connection, 0, len(moduleNames)),
		Settings:    platform.MustProfile(p).DefaultSettings(),
	}

	for i, name := range moduleNames {
		def.Nodes = append(def.Nodes, CreateTestNode(int64(i+1), name))

		if i > 0 {
			def.Connections = append(def.Connections, &models.Connection{
				From: models.IntID(int64(i)),
				To:   models.IntID(int64(i + 1)),
			})
		}
	}

	for _, override := range overrides {
		override(def)
	}

	return def
}

// WithConnections replaces the connections.
func WithConnections(conns ...*models.Connection) func(*models.Definition) {
	return func(d *models.Definition) {
		d.Connections = conns
	}
}

// WithSettings replaces the settings object. A nil map removes it.
func WithSettings(settings map[string]any) func(*models.Definition) {
	return func(d *models.Definition) {
		d.Settings = settings
	}
}

// WithNodes replaces the node sequence.
func WithNodes(nodes ...*models.Node) func(*models.Definition) {
	return func(d *models.Definition) {
		d.Nodes = nodes
	}
}

// Edge builds an integer-id connection.
func Edge(from, to int64) *models.Connection {
	return &models.Connection{From: models.IntID(from), To: models.IntID(to)}
}

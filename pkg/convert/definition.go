package convert

import (
	"maps"
	"math"

	"github.com/dukex/blueprint/pkg/catalog"
	"github.com/dukex/blueprint/pkg/models"
	"github.com/dukex/blueprint/pkg/platform"
	"github.com/mohae/deepcopy"
)

// FromDefinition builds a graph from a definition. Node keys are the node ids.
// When cat is not nil the nodes are classified against it.
func FromDefinition(def *models.Definition, cat *catalog.Catalog) *Graph {
	g := graphFromDefinition(def)

	if cat != nil {
		Classify(g, cat)
	}

	return g
}

// ToDefinition projects g onto the definition model of profile's platform.
// Sequential platforms get ids 1..N in node order; the others keep the node
// keys as string ids.
func ToDefinition(g *Graph, profile platform.Profile, cat *catalog.Catalog) *models.Definition {
	def := &models.Definition{
		Name:        g.Name,
		Description: g.Description,
		Platform:    profile.Platform.String(),
		Nodes:       make([]*models.Node, 0, len(g.Nodes)),
		Connections: make([]*models.Connection, 0, len(g.Edges)),
		Settings:    cloneMap(g.Settings),
	}

	ids := make(map[string]models.NodeID, len(g.Nodes))

	for i, n := range g.Nodes {
		id := models.StringID(n.Key)
		if profile.SequentialIDs {
			id = models.IntID(int64(i + 1))
		}

		if _, exists := ids[n.Key]; !exists {
			ids[n.Key] = id
		}

		def.Nodes = append(def.Nodes, definitionNode(id, n, cat))
	}

	for _, e := range g.Edges {
		from, fromOK := ids[e.From]
		to, toOK := ids[e.To]

		if !fromOK {
			from = models.StringID(e.From)
		}

		if !toOK {
			to = models.StringID(e.To)
		}

		def.Connections = append(def.Connections, &models.Connection{
			From:            from,
			To:              to,
			BranchCondition: e.Condition,
			Type:            e.Type,
			Output:          e.Output,
		})
	}

	return def
}

func definitionNode(id models.NodeID, n GraphNode, cat *catalog.Catalog) *models.Node {
	version := int(math.Round(n.Version))
	if version <= 0 {
		version = 1

		if cat != nil {
			if entry, ok := cat.LookupAny(n.Type); ok {
				version = entry.DefaultVersion()
			}
		}
	}

	pos := n.Position

	node := &models.Node{
		ID:         id,
		ModuleName: n.Type,
		Version:    &version,
		Parameters: cloneMap(n.Parameters),
		Metadata: &models.NodeMetadata{
			DesignerPosition: &pos,
			Label:            n.Label,
		},
	}

	if node.Parameters == nil {
		node.Parameters = map[string]any{}
	}

	return node
}

func graphFromDefinition(def *models.Definition) *Graph {
	g := &Graph{
		Platform:    platform.Platform(def.Platform),
		Name:        def.Name,
		Description: def.Description,
		Nodes:       make([]GraphNode, 0, len(def.Nodes)),
		Edges:       make([]Edge, 0, len(def.Connections)),
		Settings:    cloneMap(def.Settings),
	}

	for _, n := range def.Nodes {
		if n == nil {
			continue
		}

		gn := GraphNode{
			Key:        n.ID.String(),
			Kind:       KindUnknown,
			Type:       n.ModuleName,
			SourceType: n.ModuleName,
			Label:      n.Label(),
			Parameters: cloneMap(n.Parameters),
		}

		if n.Version != nil {
			gn.Version = float64(*n.Version)
		}

		if pos := n.Position(); pos != nil {
			gn.Position = *pos
		}

		g.Nodes = append(g.Nodes, gn)
	}

	for _, c := range def.Connections {
		if c == nil || c.From.IsZero() || c.To.IsZero() {
			continue
		}

		g.Edges = append(g.Edges, Edge{
			From:      c.From.String(),
			To:        c.To.String(),
			Output:    c.Output,
			Condition: c.BranchCondition,
			Type:      c.Type,
		})
	}

	return g
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}

	cloned, ok := deepcopy.Copy(m).(map[string]any)
	if !ok {
		return maps.Clone(m)
	}

	return cloned
}

// Package convert translates blueprints between platforms through a
// platform-neutral graph. Every platform has a Codec that decodes its native
// document into a Graph and encodes a Graph back, so adding a platform never
// requires pairwise converters.
package convert

import (
	"strings"

	"github.com/dukex/blueprint/pkg/models"
	"github.com/dukex/blueprint/pkg/platform"
)

// Kind is the platform-neutral role of a node.
type Kind string

const (
	KindWebhookTrigger  Kind = "trigger.webhook"
	KindScheduleTrigger Kind = "trigger.schedule"
	KindEmailTrigger    Kind = "trigger.email"
	KindAppTrigger      Kind = "trigger.app"
	KindManualTrigger   Kind = "trigger.manual"
	KindHTTP            Kind = "action.http"
	KindJSON            Kind = "action.json"
	KindCode            Kind = "action.code"
	KindLLM             Kind = "action.llm"
	KindChat            Kind = "action.chat"
	KindEmail           Kind = "action.email"
	KindSpreadsheet     Kind = "action.spreadsheet"
	KindVariable        Kind = "action.variable"
	KindRespond         Kind = "action.respond"
	KindRouter          Kind = "flow.router"
	KindCondition       Kind = "flow.condition"
	KindIterator        Kind = "flow.iterator"
	KindUnknown         Kind = "unknown"
)

func (k Kind) IsTrigger() bool {
	return strings.HasPrefix(string(k), "trigger.")
}

func (k Kind) IsFlow() bool {
	return strings.HasPrefix(string(k), "flow.")
}

// GraphNode is one step of a Graph.
type GraphNode struct {
	// Key identifies the node inside the graph. Codecs derive it from the
	// native identifier and edges refer to it.
	Key string
	// Kind is unknown until the graph is classified against a catalog.
	Kind Kind
	// Type is the native module type on Graph.Platform.
	Type string
	// SourceType is the native module type on the platform the graph was
	// decoded from.
	SourceType  string
	Label       string
	Version     float64
	Parameters  map[string]any
	Credentials map[string]any
	Position    models.Position
}

// Edge is a directed connection between two node keys.
type Edge struct {
	From      string
	To        string
	Output    int
	Condition string
	// Type is the native connection type of edges outside the main data
	// flow, such as "ai_languageModel". Empty means main.
	Type string
}

// Graph is the platform-neutral form of a blueprint.
type Graph struct {
	// Platform is the platform the node types currently belong to.
	Platform    platform.Platform
	Name        string
	Description string
	Nodes       []GraphNode
	Edges       []Edge
	// Settings holds native settings of Platform. Encoders start from the
	// platform defaults and overlay these.
	Settings map[string]any
}

// Index maps node keys to their position in Nodes. When keys repeat, the first
// node wins.
func (g *Graph) Index() map[string]int {
	idx := make(map[string]int, len(g.Nodes))

	for i, n := range g.Nodes {
		if _, exists := idx[n.Key]; !exists {
			idx[n.Key] = i
		}
	}

	return idx
}

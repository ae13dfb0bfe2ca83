package convert

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/dukex/blueprint/pkg/models"
	"github.com/dukex/blueprint/pkg/platform"
	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// n8nNamespace seeds the name-derived node and webhook ids of encoded workflows.
var n8nNamespace = uuid.MustParse("0d5b6e7a-41f2-5b8c-8e3d-7c9a1b2f4e60")

const n8nMainOutput = "main"

type n8nWorkflow struct {
	Name        string                              `json:"name"`
	Nodes       []n8nNode                           `json:"nodes"`
	Connections map[string]map[string][][]n8nTarget `json:"connections"`
	Settings    map[string]any                      `json:"settings,omitempty"`
	Active      bool                                `json:"active"`
}

type n8nNode struct {
	ID          string         `json:"id,omitempty"`
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	TypeVersion float64        `json:"typeVersion,omitempty"`
	Position    []float64      `json:"position"`
	Parameters  map[string]any `json:"parameters"`
	Credentials map[string]any `json:"credentials,omitempty"`
	WebhookID   string         `json:"webhookId,omitempty"`
}

type n8nTarget struct {
	Node  string `json:"node"`
	Type  string `json:"type"`
	Index int    `json:"index"`
}

// N8nCodec reads and writes n8n workflow exports. Nodes are keyed by their
// unique name and connections form an adjacency map keyed by source name.
type N8nCodec struct {
	schema  *documentSchema
	profile platform.Profile
}

func NewN8nCodec() *N8nCodec {
	return &N8nCodec{
		schema:  mustLoadSchema(platform.N8n),
		profile: platform.MustProfile(platform.N8n),
	}
}

func (c *N8nCodec) Platform() platform.Platform {
	return platform.N8n
}

func (c *N8nCodec) Decode(data []byte) (*Graph, error) {
	if err := c.schema.check(data); err != nil {
		return nil, err
	}

	var wf n8nWorkflow
	if err := json.Unmarshal(data, &wf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	g := &Graph{
		Platform: platform.N8n,
		Name:     wf.Name,
		Nodes:    make([]GraphNode, 0, len(wf.Nodes)),
		Settings: wf.Settings,
	}

	for _, n := range wf.Nodes {
		gn := GraphNode{
			Key:         n.Name,
			Kind:        KindUnknown,
			Type:        n.Type,
			SourceType:  n.Type,
			Label:       n.Name,
			Version:     n.TypeVersion,
			Parameters:  n.Parameters,
			Credentials: n.Credentials,
		}

		if len(n.Position) == 2 {
			gn.Position = models.Position{X: n.Position[0], Y: n.Position[1]}
		}

		g.Nodes = append(g.Nodes, gn)
	}

	// Edges follow node order, then connection type with main first, then
	// output slot, then target order, so the result does not depend on map
	// iteration.
	seen := make(map[string]bool, len(wf.Nodes))

	for _, n := range wf.Nodes {
		if seen[n.Name] {
			continue
		}

		seen[n.Name] = true
		g.Edges = appendN8nEdges(g.Edges, n.Name, wf.Connections[n.Name])
	}

	// Connections from names that match no node are kept so the converter can
	// report them.
	for _, source := range slices.Sorted(maps.Keys(wf.Connections)) {
		if seen[source] {
			continue
		}

		g.Edges = appendN8nEdges(g.Edges, source, wf.Connections[source])
	}

	return g, nil
}

func appendN8nEdges(edges []Edge, source string, outputs map[string][][]n8nTarget) []Edge {
	types := slices.SortedFunc(maps.Keys(outputs), func(a, b string) int {
		switch {
		case a == b:
			return 0
		case a == n8nMainOutput:
			return -1
		case b == n8nMainOutput:
			return 1
		default:
			return strings.Compare(a, b)
		}
	})

	for _, connType := range types {
		edgeType := connType
		if connType == n8nMainOutput {
			edgeType = ""
		}

		for output, targets := range outputs[connType] {
			for _, target := range targets {
				edges = append(edges, Edge{From: source, To: target.Node, Output: output, Type: edgeType})
			}
		}
	}

	return edges
}

func (c *N8nCodec) Encode(g *Graph) ([]byte, error) {
	wf := n8nWorkflow{
		Name:        g.Name,
		Nodes:       make([]n8nNode, 0, len(g.Nodes)),
		Connections: make(map[string]map[string][][]n8nTarget),
		Settings:    c.profile.DefaultSettings(),
	}

	maps.Copy(wf.Settings, g.Settings)

	names := make(map[string]string, len(g.Nodes))
	taken := make(map[string]bool, len(g.Nodes))

	for _, n := range g.Nodes {
		name := uniqueName(displayName(n), taken)
		taken[name] = true

		if _, exists := names[n.Key]; !exists {
			names[n.Key] = name
		}

		node := n8nNode{
			ID:          uuid.NewSHA1(n8nNamespace, []byte(name)).String(),
			Name:        name,
			Type:        n.Type,
			TypeVersion: n.Version,
			Position:    []float64{n.Position.X, n.Position.Y},
			Parameters:  cloneMap(n.Parameters),
			Credentials: cloneMap(n.Credentials),
		}

		if node.Parameters == nil {
			node.Parameters = map[string]any{}
		}

		if n.Kind == KindWebhookTrigger {
			node.WebhookID = uuid.NewSHA1(n8nNamespace, []byte("webhook:"+name)).String()
		}

		wf.Nodes = append(wf.Nodes, node)
	}

	for _, e := range g.Edges {
		from, fromOK := names[e.From]
		to, toOK := names[e.To]

		if !fromOK || !toOK {
			return nil, fmt.Errorf("edge %s -> %s references an unknown node", e.From, e.To)
		}

		outputs := wf.Connections[from]
		if outputs == nil {
			outputs = make(map[string][][]n8nTarget)
			wf.Connections[from] = outputs
		}

		connType := e.Type
		if connType == "" {
			connType = n8nMainOutput
		}

		slots := outputs[connType]
		for len(slots) <= e.Output {
			slots = append(slots, []n8nTarget{})
		}

		slots[e.Output] = append(slots[e.Output], n8nTarget{Node: to, Type: connType, Index: 0})
		outputs[connType] = slots
	}

	data, err := json.Marshal(wf)
	if err != nil {
		return nil, fmt.Errorf("failed to encode n8n workflow: %w", err)
	}

	return data, nil
}

// displayName is the node label, or a title derived from the node type such
// as "Http Request" for "n8n-nodes-base.httpRequest".
func displayName(n GraphNode) string {
	if label := strings.TrimSpace(n.Label); label != "" {
		return label
	}

	base := n.Type
	if i := strings.LastIndexAny(base, ".:/"); i >= 0 {
		base = base[i+1:]
	}

	var words strings.Builder

	for i, r := range base {
		switch {
		case r == '-' || r == '_':
			words.WriteRune(' ')
		case i > 0 && unicode.IsUpper(r):
			words.WriteRune(' ')
			words.WriteRune(r)
		default:
			words.WriteRune(r)
		}
	}

	name := cases.Title(language.English).String(strings.Join(strings.Fields(words.String()), " "))
	if name == "" {
		return "Node"
	}

	return name
}

// uniqueName appends a counter the way the n8n editor does: "Set", "Set1", "Set2".
func uniqueName(name string, taken map[string]bool) string {
	if !taken[name] {
		return name
	}

	for i := 1; ; i++ {
		candidate := name + strconv.Itoa(i)
		if !taken[candidate] {
			return candidate
		}
	}
}

package convert

import (
	"encoding/json"
	"fmt"
	"maps"
	"strconv"
	"strings"

	"github.com/dukex/blueprint/pkg/models"
	"github.com/dukex/blueprint/pkg/platform"
)

type zapierZap struct {
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Steps       []zapierStep   `json:"steps"`
	Links       []zapierLink   `json:"links"`
	Settings    map[string]any `json:"settings,omitempty"`
}

type zapierStep struct {
	ID       int64            `json:"id"`
	App      string           `json:"app"`
	Action   string           `json:"action"`
	Type     string           `json:"type,omitempty"`
	Title    string           `json:"title,omitempty"`
	Version  float64          `json:"version,omitempty"`
	Params   map[string]any   `json:"params"`
	Position *models.Position `json:"position,omitempty"`
}

type zapierLink struct {
	Source      int64  `json:"source"`
	Destination int64  `json:"destination"`
	Filter      string `json:"filter,omitempty"`
	Output      int    `json:"output,omitempty"`
}

const (
	zapierStepTrigger = "trigger"
	zapierStepAction  = "action"
	zapierStepControl = "control"
)

// ZapierCodec reads and writes zap exports. A step's native type is
// "<app>:<action>" and links refer to numeric step ids.
type ZapierCodec struct {
	schema  *documentSchema
	profile platform.Profile
}

func NewZapierCodec() *ZapierCodec {
	return &ZapierCodec{
		schema:  mustLoadSchema(platform.Zapier),
		profile: platform.MustProfile(platform.Zapier),
	}
}

func (c *ZapierCodec) Platform() platform.Platform {
	return platform.Zapier
}

func (c *ZapierCodec) Decode(data []byte) (*Graph, error) {
	if err := c.schema.check(data); err != nil {
		return nil, err
	}

	var zap zapierZap
	if err := json.Unmarshal(data, &zap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	g := &Graph{
		Platform:    platform.Zapier,
		Name:        zap.Title,
		Description: zap.Description,
		Nodes:       make([]GraphNode, 0, len(zap.Steps)),
		Edges:       make([]Edge, 0, len(zap.Links)),
		Settings:    zap.Settings,
	}

	for _, step := range zap.Steps {
		typ := step.App
		if step.Action != "" {
			typ += ":" + step.Action
		}

		gn := GraphNode{
			Key:        strconv.FormatInt(step.ID, 10),
			Kind:       KindUnknown,
			Type:       typ,
			SourceType: typ,
			Label:      step.Title,
			Version:    step.Version,
			Parameters: step.Params,
		}

		if step.Position != nil {
			gn.Position = *step.Position
		}

		g.Nodes = append(g.Nodes, gn)
	}

	for _, link := range zap.Links {
		g.Edges = append(g.Edges, Edge{
			From:      strconv.FormatInt(link.Source, 10),
			To:        strconv.FormatInt(link.Destination, 10),
			Output:    link.Output,
			Condition: link.Filter,
		})
	}

	return g, nil
}

func (c *ZapierCodec) Encode(g *Graph) ([]byte, error) {
	zap := zapierZap{
		Title:       g.Name,
		Description: g.Description,
		Steps:       make([]zapierStep, 0, len(g.Nodes)),
		Links:       make([]zapierLink, 0, len(g.Edges)),
		Settings:    c.profile.DefaultSettings(),
	}

	maps.Copy(zap.Settings, g.Settings)

	ids := make(map[string]int64, len(g.Nodes))

	for i, n := range g.Nodes {
		id := int64(i + 1)
		if _, exists := ids[n.Key]; !exists {
			ids[n.Key] = id
		}

		app, action, _ := strings.Cut(n.Type, ":")
		pos := n.Position

		step := zapierStep{
			ID:       id,
			App:      app,
			Action:   action,
			Type:     zapierStepType(n.Kind),
			Title:    n.Label,
			Version:  n.Version,
			Params:   cloneMap(n.Parameters),
			Position: &pos,
		}

		if step.Params == nil {
			step.Params = map[string]any{}
		}

		zap.Steps = append(zap.Steps, step)
	}

	for _, e := range g.Edges {
		source, sourceOK := ids[e.From]
		destination, destinationOK := ids[e.To]

		if !sourceOK || !destinationOK {
			return nil, fmt.Errorf("edge %s -> %s references an unknown node", e.From, e.To)
		}

		zap.Links = append(zap.Links, zapierLink{
			Source:      source,
			Destination: destination,
			Filter:      e.Condition,
			Output:      e.Output,
		})
	}

	data, err := json.Marshal(zap)
	if err != nil {
		return nil, fmt.Errorf("failed to encode zap: %w", err)
	}

	return data, nil
}

func zapierStepType(kind Kind) string {
	switch {
	case kind.IsTrigger():
		return zapierStepTrigger
	case kind.IsFlow():
		return zapierStepControl
	default:
		return zapierStepAction
	}
}

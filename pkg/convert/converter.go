package convert

import (
	"encoding/json"
	"fmt"

	"github.com/dukex/blueprint/pkg/catalog"
	"github.com/dukex/blueprint/pkg/models"
	"github.com/dukex/blueprint/pkg/platform"
	"github.com/dukex/blueprint/pkg/validation"
)

// Result is the outcome of a conversion.
type Result struct {
	From          platform.Platform        `json:"from"`
	To            platform.Platform        `json:"to"`
	Document      json.RawMessage          `json:"document"`
	DegradedNodes []DegradedNode           `json:"degradedNodes"`
	Warnings      []string                 `json:"warnings"`
	Validation    *models.ValidationResult `json:"validation,omitempty"`
}

// Option configures a Converter.
type Option func(*Converter)

// WithRegistry replaces the default codec registry.
func WithRegistry(r *Registry) Option {
	return func(c *Converter) {
		c.registry = r
	}
}

// WithValidation validates every converted document against the target
// platform and attaches the report to the result.
func WithValidation() Option {
	return func(c *Converter) {
		c.validate = true
	}
}

// Converter translates documents between the platforms of its registry. It
// holds no per-call state and is safe for concurrent use.
type Converter struct {
	registry *Registry
	catalogs catalog.Set
	validate bool
}

func New(catalogs catalog.Set, opts ...Option) *Converter {
	c := &Converter{
		registry: NewDefaultRegistry(),
		catalogs: catalogs,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Convert decodes data as a from document and encodes it as a to document.
// Unrecognized node types never fail a conversion: they are replaced by the
// target's generic modules and listed in Result.DegradedNodes. Branch
// conditions the target cannot express are dropped with a warning.
func (c *Converter) Convert(from, to platform.Platform, data []byte) (*Result, error) {
	src, err := c.registry.Codec(from)
	if err != nil {
		return nil, err
	}

	dst, err := c.registry.Codec(to)
	if err != nil {
		return nil, err
	}

	srcCatalog, err := c.catalog(from)
	if err != nil {
		return nil, err
	}

	dstCatalog, err := c.catalog(to)
	if err != nil {
		return nil, err
	}

	profile, err := platform.ProfileFor(to)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedPlatform, err)
	}

	g, err := src.Decode(data)
	if err != nil {
		return nil, err
	}

	result := &Result{
		From:     from,
		To:       to,
		Warnings: []string{},
	}

	result.Warnings = append(result.Warnings, pruneEdges(g)...)

	Classify(g, srcCatalog)
	result.DegradedNodes = Retarget(g, dstCatalog)

	if from != to {
		g.Settings = nil
	}

	if !profile.SupportsBranchConditions {
		result.Warnings = append(result.Warnings, dropConditions(g, to)...)
	}

	if !profile.SupportsConnectionTypes {
		result.Warnings = append(result.Warnings, flattenConnectionTypes(g, to)...)
	}

	Layout(g, profile.NodeSpacing)

	doc, err := dst.Encode(g)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s document: %w", to, err)
	}

	result.Document = doc

	if c.validate {
		validated, err := dst.Decode(doc)
		if err != nil {
			return nil, fmt.Errorf("converted %s document does not decode: %w", to, err)
		}

		def := ToDefinition(validated, profile, dstCatalog)
		result.Validation = validation.New(dstCatalog, profile).Validate(def)
	}

	return result, nil
}

func (c *Converter) catalog(p platform.Platform) (*catalog.Catalog, error) {
	cat, err := c.catalogs.For(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedPlatform, err)
	}

	return cat, nil
}

// pruneEdges removes edges whose endpoints are not nodes of g.
func pruneEdges(g *Graph) []string {
	index := g.Index()
	kept := g.Edges[:0]

	var warnings []string

	for _, e := range g.Edges {
		_, fromOK := index[e.From]
		_, toOK := index[e.To]

		if fromOK && toOK {
			kept = append(kept, e)

			continue
		}

		warnings = append(warnings, fmt.Sprintf("connection %s -> %s references a missing node and was dropped", e.From, e.To))
	}

	g.Edges = kept

	return warnings
}

func dropConditions(g *Graph, to platform.Platform) []string {
	var warnings []string

	for i := range g.Edges {
		e := &g.Edges[i]
		if e.Condition == "" {
			continue
		}

		warnings = append(warnings, fmt.Sprintf("branch condition %q on connection %s -> %s dropped, %s has no equivalent",
			e.Condition, e.From, e.To, to))
		e.Condition = ""
	}

	return warnings
}

// flattenConnectionTypes turns typed edges into plain connections so the
// target keeps every edge and its direction.
func flattenConnectionTypes(g *Graph, to platform.Platform) []string {
	var warnings []string

	for i := range g.Edges {
		e := &g.Edges[i]
		if e.Type == "" {
			continue
		}

		warnings = append(warnings, fmt.Sprintf("connection %s -> %s of type %q kept as a plain connection, %s has no equivalent",
			e.From, e.To, e.Type, to))
		e.Type = ""
	}

	return warnings
}

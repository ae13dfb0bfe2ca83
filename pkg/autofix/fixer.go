// Package autofix repairs the mechanical defects the validator reports.
package autofix

import (
	"fmt"

	"github.com/dukex/blueprint/pkg/catalog"
	"github.com/dukex/blueprint/pkg/models"
	"github.com/dukex/blueprint/pkg/platform"
	"github.com/google/uuid"
)

// Resolver resolves module names against a catalog.
type Resolver interface {
	Resolve(name string) catalog.Resolution
	Lookup(name string) (catalog.Entry, bool)
}

// nodeIDNamespace seeds the ids generated for nodes on platforms with free-form ids.
var nodeIDNamespace = uuid.MustParse("6f1c2a8e-3b7d-5c4e-9a0f-1d2e3f4a5b6c")

// Option configures a Fixer.
type Option func(*Fixer)

// WithLegacyConnectionEndpoints renumbers node ids without touching the
// connections that point at them. Connections keep their old endpoints and
// may dangle afterwards.
func WithLegacyConnectionEndpoints() Option {
	return func(f *Fixer) {
		f.remapConnections = false
	}
}

// Fixer applies deterministic repairs to definitions of one platform.
type Fixer struct {
	resolver         Resolver
	profile          platform.Profile
	remapConnections bool
}

func New(resolver Resolver, profile platform.Profile, opts ...Option) *Fixer {
	f := &Fixer{
		resolver:         resolver,
		profile:          profile,
		remapConnections: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Fix returns a repaired copy of def and the list of repairs applied, in the
// order they were applied. def is not modified. Running Fix on its own output
// applies nothing.
func (f *Fixer) Fix(def *models.Definition) (*models.Definition, []models.Fix) {
	var out *models.Definition
	if def == nil {
		out = &models.Definition{}
	} else {
		out = def.Clone()
	}

	var fixes []models.Fix

	if out.Nodes == nil {
		out.Nodes = []*models.Node{}
		fixes = append(fixes, models.Fix{
			Kind:        models.FixStructure,
			Description: "added an empty node sequence",
			NewValue:    []any{},
			Applied:     true,
		})
	}

	fixes = append(fixes, f.fixModuleNames(out)...)
	fixes = append(fixes, f.fixSettings(out)...)
	fixes = append(fixes, f.fixIDs(out)...)
	fixes = append(fixes, f.fixNodeFields(out)...)

	return out, fixes
}

func (f *Fixer) fixModuleNames(def *models.Definition) []models.Fix {
	var fixes []models.Fix

	for i, node := range def.Nodes {
		if node == nil || node.ModuleName == "" {
			continue
		}

		res := f.resolver.Resolve(node.ModuleName)
		if res.Valid || !res.Suggested() {
			continue
		}

		fixes = append(fixes, models.Fix{
			Kind:        models.FixModuleName,
			Description: fmt.Sprintf("nodes[%d]: replaced alias %q with %q", i, node.ModuleName, res.CanonicalName),
			OldValue:    node.ModuleName,
			NewValue:    res.CanonicalName,
			Applied:     true,
		})

		node.ModuleName = res.CanonicalName
	}

	return fixes
}

func (f *Fixer) fixSettings(def *models.Definition) []models.Fix {
	if def.Settings == nil {
		def.Settings = f.profile.DefaultSettings()

		return []models.Fix{{
			Kind:        models.FixSettings,
			Description: fmt.Sprintf("added default %s settings", f.profile.Platform),
			OldValue:    nil,
			NewValue:    f.profile.DefaultSettings(),
			Applied:     true,
		}}
	}

	var fixes []models.Fix

	for _, setting := range f.profile.Settings {
		if _, ok := def.Settings[setting.Key]; ok {
			continue
		}

		def.Settings[setting.Key] = setting.Default
		fixes = append(fixes, models.Fix{
			Kind:        models.FixSettings,
			Description: fmt.Sprintf("set missing setting %q to its default", setting.Key),
			OldValue:    nil,
			NewValue:    setting.Default,
			Applied:     true,
		})
	}

	return fixes
}

func (f *Fixer) fixIDs(def *models.Definition) []models.Fix {
	if !f.profile.SequentialIDs {
		return f.fillMissingIDs(def)
	}

	var fixes []models.Fix

	renamed := make(map[models.NodeID]models.NodeID)

	for i, node := range def.Nodes {
		if node == nil {
			continue
		}

		want := models.IntID(int64(i + 1))

		// The first node holding an id owns it when connections are remapped,
		// including a node that keeps its id.
		if _, seen := renamed[node.ID]; !seen && !node.ID.IsZero() {
			renamed[node.ID] = want
		}

		if node.ID == want {
			continue
		}

		fixes = append(fixes, models.Fix{
			Kind:        models.FixIDSequence,
			Description: fmt.Sprintf("nodes[%d]: renumbered id %s to %s", i, node.ID, want),
			OldValue:    node.ID,
			NewValue:    want,
			Applied:     true,
		})

		node.ID = want
	}

	if f.remapConnections {
		fixes = append(fixes, remapConnections(def, renamed)...)
	}

	return fixes
}

func remapConnections(def *models.Definition, renamed map[models.NodeID]models.NodeID) []models.Fix {
	if len(renamed) == 0 {
		return nil
	}

	var fixes []models.Fix

	for i, conn := range def.Connections {
		if conn == nil {
			continue
		}

		from, fromOK := renamed[conn.From]
		to, toOK := renamed[conn.To]

		if !fromOK && !toOK {
			continue
		}

		old := endpoints{From: conn.From, To: conn.To}

		if fromOK {
			conn.From = from
		}

		if toOK {
			conn.To = to
		}

		if conn.From == old.From && conn.To == old.To {
			continue
		}

		fixes = append(fixes, models.Fix{
			Kind:        models.FixConnections,
			Description: fmt.Sprintf("connections[%d]: remapped %s->%s to %s->%s", i, old.From, old.To, conn.From, conn.To),
			OldValue:    old,
			NewValue:    endpoints{From: conn.From, To: conn.To},
			Applied:     true,
		})
	}

	return fixes
}

type endpoints struct {
	From models.NodeID `json:"from"`
	To   models.NodeID `json:"to"`
}

// fillMissingIDs gives id-less nodes a stable id derived from their position
// and module name. Platforms with free-form ids are never renumbered.
func (f *Fixer) fillMissingIDs(def *models.Definition) []models.Fix {
	var fixes []models.Fix

	for i, node := range def.Nodes {
		if node == nil || !node.ID.IsZero() {
			continue
		}

		id := models.StringID(uuid.NewSHA1(nodeIDNamespace, fmt.Appendf(nil, "%d:%s", i, node.ModuleName)).String())

		fixes = append(fixes, models.Fix{
			Kind:        models.FixIDSequence,
			Description: fmt.Sprintf("nodes[%d]: assigned id %s", i, id),
			OldValue:    nil,
			NewValue:    id,
			Applied:     true,
		})

		node.ID = id
	}

	return fixes
}

func (f *Fixer) fixNodeFields(def *models.Definition) []models.Fix {
	var fixes []models.Fix

	for i, node := range def.Nodes {
		if node == nil {
			continue
		}

		if node.Position() == nil {
			pos := models.Position{X: float64(i) * f.profile.NodeSpacing, Y: 0}

			if node.Metadata == nil {
				node.Metadata = &models.NodeMetadata{}
			}

			node.Metadata.DesignerPosition = &pos
			fixes = append(fixes, models.Fix{
				Kind:        models.FixDesignerPosition,
				Description: fmt.Sprintf("nodes[%d]: placed node at {x: %g, y: %g}", i, pos.X, pos.Y),
				OldValue:    nil,
				NewValue:    pos,
				Applied:     true,
			})
		}

		if node.Parameters == nil {
			node.Parameters = map[string]any{}
			fixes = append(fixes, models.Fix{
				Kind:        models.FixStructure,
				Description: fmt.Sprintf("nodes[%d]: added empty parameters", i),
				NewValue:    map[string]any{},
				Applied:     true,
			})
		}

		if node.Version == nil {
			version := 1
			if entry, ok := f.resolver.Lookup(node.ModuleName); ok {
				version = entry.DefaultVersion()
			}

			node.Version = &version
			fixes = append(fixes, models.Fix{
				Kind:        models.FixStructure,
				Description: fmt.Sprintf("nodes[%d]: set version to %d", i, version),
				NewValue:    version,
				Applied:     true,
			})
		}
	}

	return fixes
}

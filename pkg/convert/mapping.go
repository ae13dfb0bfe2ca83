package convert

import (
	"fmt"

	"github.com/dukex/blueprint/pkg/catalog"
)

// DegradedNode records a node that could not be mapped to an exact native
// equivalent on the target platform.
type DegradedNode struct {
	Key        string `json:"key"`
	Label      string `json:"label,omitempty"`
	SourceType string `json:"sourceType"`
	TargetType string `json:"targetType"`
	Reason     string `json:"reason"`
}

// approximations lists, per kind, the kinds that can stand in for it when the
// target catalog has no module of that kind. Order is preference.
var approximations = map[Kind][]Kind{
	KindCondition: {KindRouter},
	KindRouter:    {KindCondition},
	KindJSON:      {KindCode, KindVariable},
	KindVariable:  {KindJSON, KindCode},
	KindCode:      {KindJSON},
}

// Classify sets the kind of every node from cat. Aliases resolve to their
// canonical module; types cat does not know become KindUnknown.
func Classify(g *Graph, cat *catalog.Catalog) {
	for i := range g.Nodes {
		n := &g.Nodes[i]

		entry, ok := cat.LookupAny(n.Type)
		if !ok {
			n.Kind = KindUnknown

			continue
		}

		n.Kind = Kind(entry.Kind)
		n.Type = entry.CanonicalName
	}
}

// Retarget rewrites the node types of a classified graph to the modules of
// target and returns the nodes that had no exact equivalent. Retarget never
// fails: triggers fall back to the target's webhook trigger and everything
// else to its generic HTTP action.
func Retarget(g *Graph, target *catalog.Catalog) []DegradedNode {
	degraded := []DegradedNode{}

	for i := range g.Nodes {
		n := &g.Nodes[i]

		entry, reason := pickModule(n, target)
		if reason != "" {
			degraded = append(degraded, DegradedNode{
				Key:        n.Key,
				Label:      n.Label,
				SourceType: n.SourceType,
				TargetType: entry.CanonicalName,
				Reason:     reason,
			})
		}

		if entry.CanonicalName == "" {
			continue
		}

		if n.Type != entry.CanonicalName {
			n.Version = float64(entry.DefaultVersion())
		}

		n.Type = entry.CanonicalName
		n.Kind = Kind(entry.Kind)
	}

	g.Platform = target.Platform()

	return degraded
}

// pickModule returns the target entry for n and, when the match is not exact,
// the reason. The returned entry is empty when the target has no fallback
// either; the node then keeps its type.
func pickModule(n *GraphNode, target *catalog.Catalog) (catalog.Entry, string) {
	if entry, ok := target.LookupAny(n.Type); ok && (n.Kind == KindUnknown || Kind(entry.Kind) == n.Kind) {
		return entry, ""
	}

	if n.Kind != KindUnknown {
		if entry, ok := target.ByKind(string(n.Kind)); ok {
			return entry, ""
		}

		for _, alt := range approximations[n.Kind] {
			if entry, ok := target.ByKind(string(alt)); ok {
				return entry, fmt.Sprintf("no %s module on %s, approximated as %s", n.Kind, target.Platform(), alt)
			}
		}
	}

	fallback := KindHTTP
	if n.Kind.IsTrigger() {
		fallback = KindWebhookTrigger
	}

	reason := fmt.Sprintf("no %s module on %s, replaced by the generic %s module", n.Kind, target.Platform(), fallback)
	if n.Kind == KindUnknown {
		reason = fmt.Sprintf("module type %q is not recognized, replaced by the generic %s module", n.SourceType, fallback)
	}

	entry, ok := target.ByKind(string(fallback))
	if !ok {
		return catalog.Entry{}, fmt.Sprintf("%s has no %s module to fall back to, type kept", target.Platform(), fallback)
	}

	return entry, reason
}

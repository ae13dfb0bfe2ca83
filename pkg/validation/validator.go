// Package validation checks blueprint documents against a platform profile and
// its module catalog, reporting every problem as data.
package validation

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/dukex/blueprint/pkg/catalog"
	"github.com/dukex/blueprint/pkg/models"
	"github.com/dukex/blueprint/pkg/platform"
)

// Resolver resolves module names against a catalog.
type Resolver interface {
	Resolve(name string) catalog.Resolution
	Lookup(name string) (catalog.Entry, bool)
	IsTrigger(name string) bool
}

const minTextLength = 3

// Option configures a Validator.
type Option func(*Validator)

// WithLinearChainThreshold overrides the node count above which an unbranched
// graph is reported.
func WithLinearChainThreshold(n int) Option {
	return func(v *Validator) {
		v.linearChainThreshold = n
	}
}

// WithMinNodeSpacing overrides the minimum distance between adjacent nodes.
func WithMinNodeSpacing(d float64) Option {
	return func(v *Validator) {
		v.minNodeSpacing = d
	}
}

// Validator checks definitions written for one platform. It holds no state
// between calls and is safe for concurrent use.
type Validator struct {
	resolver             Resolver
	profile              platform.Profile
	linearChainThreshold int
	minNodeSpacing       float64
}

// New returns a validator for profile resolving module names with resolver.
func New(resolver Resolver, profile platform.Profile, opts ...Option) *Validator {
	v := &Validator{
		resolver:             resolver,
		profile:              profile,
		linearChainThreshold: profile.LinearChainThreshold,
		minNodeSpacing:       profile.MinNodeSpacing,
	}

	for _, opt := range opts {
		opt(v)
	}

	return v
}

// ValidateJSON decodes and validates a raw document. Input that is not a JSON
// object, or whose shape cannot be decoded, yields a single fatal error.
func (v *Validator) ValidateJSON(data []byte) *models.ValidationResult {
	var probe any
	if err := json.Unmarshal(data, &probe); err != nil {
		return fatal("", "document is not valid JSON: "+err.Error())
	}

	if _, ok := probe.(map[string]any); !ok {
		return fatal("", "document must be a JSON object")
	}

	def, err := models.ParseDefinition(data)
	if err != nil {
		return fatal("", err.Error())
	}

	return v.Validate(def)
}

// Validate runs every check in a fixed order. The result is the same for the
// same input; the definition is not modified.
func (v *Validator) Validate(def *models.Definition) *models.ValidationResult {
	if def == nil {
		return fatal("", "document is empty")
	}

	result := models.NewValidationResult()

	if !v.checkShape(def, result) {
		return result
	}

	v.checkNodes(def, result)
	v.checkIDs(def, result)
	v.checkSettings(def, result)
	v.checkConnections(def, result)
	v.checkBestPractices(def, result)

	return result
}

func fatal(path, message string) *models.ValidationResult {
	result := models.NewValidationResult()
	result.AddError(models.Issue{
		Kind:    models.IssueStructure,
		Path:    path,
		Message: message,
	})

	return result
}

func (v *Validator) checkShape(def *models.Definition, result *models.ValidationResult) bool {
	ok := true

	if def.Nodes == nil {
		result.AddError(models.Issue{
			Kind:    models.IssueStructure,
			Path:    "nodes",
			Message: "document has no node sequence",
		})

		ok = false
	}

	if def.Settings == nil {
		result.AddError(models.Issue{
			Kind:         models.IssueStructure,
			Path:         "settings",
			Message:      "document has no settings object",
			SuggestedFix: "add a settings object with the " + v.profile.Platform.String() + " defaults",
		})

		ok = false
	}

	return ok
}

func (v *Validator) checkNodes(def *models.Definition, result *models.ValidationResult) {
	for i, node := range def.Nodes {
		prefix := fmt.Sprintf("nodes[%d]", i)

		if node == nil {
			result.AddError(models.Issue{
				Kind:    models.IssueStructure,
				Path:    prefix,
				Message: "node is null",
			})

			continue
		}

		v.checkRequiredFields(i, prefix, node, result)
		v.checkModuleName(prefix, node, result)
	}
}

func (v *Validator) checkRequiredFields(i int, prefix string, node *models.Node, result *models.ValidationResult) {
	if node.ID.IsZero() {
		issue := models.Issue{
			Kind:    models.IssueStructure,
			Path:    prefix + ".id",
			Message: "node id is missing",
		}
		if v.profile.SequentialIDs {
			issue.SuggestedFix = fmt.Sprintf("set id to %d", i+1)
		}

		result.AddError(issue)
	}

	if node.ModuleName == "" {
		result.AddError(models.Issue{
			Kind:    models.IssueStructure,
			Path:    prefix + ".moduleName",
			Message: "module name is missing",
			NodeID:  node.ID,
		})
	}

	if node.Version == nil {
		result.AddError(models.Issue{
			Kind:         models.IssueStructure,
			Path:         prefix + ".version",
			Message:      "module version is missing",
			NodeID:       node.ID,
			SuggestedFix: "set version to 1",
		})
	}

	if node.Position() == nil {
		result.AddError(models.Issue{
			Kind:    models.IssueStructure,
			Path:    prefix + ".metadata.designerPosition",
			Message: "designer position is missing",
			NodeID:  node.ID,
			SuggestedFix: fmt.Sprintf("place the node at {x: %g, y: 0}",
				float64(i)*v.profile.NodeSpacing),
		})
	}

	if node.Parameters == nil {
		result.AddError(models.Issue{
			Kind:         models.IssueStructure,
			Path:         prefix + ".parameters",
			Message:      "parameters are missing",
			NodeID:       node.ID,
			SuggestedFix: "set parameters to an empty object",
		})
	}
}

func (v *Validator) checkModuleName(prefix string, node *models.Node, result *models.ValidationResult) {
	if node.ModuleName == "" {
		return
	}

	res := v.resolver.Resolve(node.ModuleName)

	switch {
	case res.Valid:
		if node.Parameters != nil {
			if entry, ok := v.resolver.Lookup(res.CanonicalName); ok {
				checkParameters(prefix, node, entry, result)
			}
		}
	case res.Suggested():
		result.AddError(models.Issue{
			Kind:         models.IssueModuleName,
			Path:         prefix + ".moduleName",
			Message:      fmt.Sprintf("module name %q is an alias of %q", node.ModuleName, res.CanonicalName),
			NodeID:       node.ID,
			SuggestedFix: fmt.Sprintf("replace %q with %q", node.ModuleName, res.CanonicalName),
		})
	default:
		result.AddWarning(models.Issue{
			Kind:    models.IssueModuleName,
			Path:    prefix + ".moduleName",
			Message: fmt.Sprintf("module %q is not in the %s catalog", node.ModuleName, v.profile.Platform),
			NodeID:  node.ID,
		})
	}
}

func (v *Validator) checkIDs(def *models.Definition, result *models.ValidationResult) {
	seen := make(map[models.NodeID]int, len(def.Nodes))

	for i, node := range def.Nodes {
		if node == nil || node.ID.IsZero() {
			continue
		}

		prefix := fmt.Sprintf("nodes[%d].id", i)

		if first, dup := seen[node.ID]; dup {
			result.AddError(models.Issue{
				Kind:         models.IssueStructure,
				Path:         prefix,
				Message:      fmt.Sprintf("duplicate node id %s (first used by nodes[%d])", node.ID, first),
				NodeID:       node.ID,
				SuggestedFix: v.renumberHint(),
			})
		} else {
			seen[node.ID] = i
		}

		if !v.profile.SequentialIDs {
			continue
		}

		if n, ok := node.ID.Int(); !ok || n != int64(i+1) {
			result.AddError(models.Issue{
				Kind:         models.IssueStructure,
				Path:         prefix,
				Message:      fmt.Sprintf("expected id %d, got %s", i+1, node.ID),
				NodeID:       node.ID,
				SuggestedFix: v.renumberHint(),
			})
		}
	}
}

func (v *Validator) renumberHint() string {
	if !v.profile.SequentialIDs {
		return ""
	}

	return "renumber node ids to 1..N in node order"
}

func (v *Validator) checkSettings(def *models.Definition, result *models.ValidationResult) {
	for _, setting := range v.profile.Settings {
		if _, ok := def.Settings[setting.Key]; ok {
			continue
		}

		result.AddError(models.Issue{
			Kind:         models.IssueMetadata,
			Path:         "settings." + setting.Key,
			Message:      fmt.Sprintf("setting %q is missing (default %v)", setting.Key, setting.Default),
			SuggestedFix: fmt.Sprintf("set settings.%s to %v", setting.Key, setting.Default),
		})
	}
}

func (v *Validator) checkBestPractices(def *models.Definition, result *models.ValidationResult) {
	checkText(result, "name", def.Name)
	checkText(result, "description", def.Description)

	var prev *models.Position

	for i, node := range def.Nodes {
		if node == nil {
			prev = nil

			continue
		}

		pos := node.Position()
		if pos != nil && prev != nil {
			if d := math.Hypot(pos.X-prev.X, pos.Y-prev.Y); d < v.minNodeSpacing {
				result.AddWarning(models.Issue{
					Kind:    models.IssueMetadata,
					Path:    fmt.Sprintf("nodes[%d].metadata.designerPosition", i),
					Message: fmt.Sprintf("node is %.0fpx from the previous node, keep at least %.0fpx", d, v.minNodeSpacing),
					NodeID:  node.ID,
				})
			}
		}

		prev = pos
	}

	if len(def.Nodes) == 0 {
		result.AddWarning(models.Issue{
			Kind:    models.IssueStructure,
			Path:    "nodes",
			Message: "blueprint has no nodes",
		})

		return
	}

	for _, node := range def.Nodes {
		if node != nil && v.resolver.IsTrigger(node.ModuleName) {
			return
		}
	}

	result.AddWarning(models.Issue{
		Kind:    models.IssueStructure,
		Path:    "nodes",
		Message: "no trigger module found, the blueprint can only run as a sub-workflow",
	})
}

func checkText(result *models.ValidationResult, field, value string) {
	value = strings.TrimSpace(value)

	switch {
	case value == "":
		result.AddWarning(models.Issue{
			Kind:    models.IssueMetadata,
			Path:    field,
			Message: "blueprint has no " + field,
		})
	case len([]rune(value)) < minTextLength:
		result.AddWarning(models.Issue{
			Kind:    models.IssueMetadata,
			Path:    field,
			Message: fmt.Sprintf("blueprint %s %q is too short", field, value),
		})
	}
}

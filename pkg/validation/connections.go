package validation

import (
	"fmt"
	"strings"

	"github.com/dukex/blueprint/pkg/models"
	"github.com/expr-lang/expr"
)

func (v *Validator) checkConnections(def *models.Definition, result *models.ValidationResult) {
	ids := make(map[models.NodeID]bool, len(def.Nodes))
	for _, node := range def.Nodes {
		if node != nil && !node.ID.IsZero() {
			ids[node.ID] = true
		}
	}

	outDegree := make(map[models.NodeID]int)

	for i, conn := range def.Connections {
		prefix := fmt.Sprintf("connections[%d]", i)

		if conn == nil {
			result.AddError(models.Issue{
				Kind:    models.IssueConnections,
				Path:    prefix,
				Message: "connection is null",
			})

			continue
		}

		if conn.From.IsZero() || conn.To.IsZero() {
			result.AddError(models.Issue{
				Kind:    models.IssueConnections,
				Path:    prefix,
				Message: "connection is missing an endpoint",
			})

			continue
		}

		outDegree[conn.From]++

		if !ids[conn.From] {
			result.AddWarning(models.Issue{
				Kind:    models.IssueConnections,
				Path:    prefix + ".from",
				Message: fmt.Sprintf("connection starts at unknown node %s", conn.From),
				NodeID:  conn.From,
			})
		}

		if !ids[conn.To] {
			result.AddWarning(models.Issue{
				Kind:    models.IssueConnections,
				Path:    prefix + ".to",
				Message: fmt.Sprintf("connection ends at unknown node %s", conn.To),
				NodeID:  conn.To,
			})
		}

		v.checkBranchCondition(prefix, conn, result)
	}

	v.checkLinearChain(def, outDegree, result)
}

func (v *Validator) checkBranchCondition(prefix string, conn *models.Connection, result *models.ValidationResult) {
	condition := strings.TrimSpace(conn.BranchCondition)
	if condition == "" {
		return
	}

	if !v.profile.SupportsBranchConditions {
		result.AddWarning(models.Issue{
			Kind:    models.IssueConnections,
			Path:    prefix + ".branchCondition",
			Message: fmt.Sprintf("%s does not evaluate conditions on connections, the condition is ignored", v.profile.Platform),
		})

		return
	}

	if _, err := expr.Compile(condition, expr.AllowUndefinedVariables(), expr.AsBool()); err != nil {
		result.AddWarning(models.Issue{
			Kind:    models.IssueConnections,
			Path:    prefix + ".branchCondition",
			Message: fmt.Sprintf("branch condition %q does not parse: %s", condition, firstLine(err.Error())),
		})
	}
}

func (v *Validator) checkLinearChain(def *models.Definition, outDegree map[models.NodeID]int, result *models.ValidationResult) {
	if v.linearChainThreshold <= 0 || len(def.Nodes) <= v.linearChainThreshold {
		return
	}

	for _, degree := range outDegree {
		if degree > 1 {
			return
		}
	}

	for _, node := range def.Nodes {
		if node == nil {
			continue
		}

		if entry, ok := v.resolver.Lookup(node.ModuleName); ok && strings.HasPrefix(entry.Kind, "flow.") {
			return
		}
	}

	result.AddWarning(models.Issue{
		Kind: models.IssueConnections,
		Path: "connections",
		Message: fmt.Sprintf("%d nodes run in a single linear chain, consider a router to branch the flow",
			len(def.Nodes)),
	})
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}

	return s
}

package validation

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dukex/blueprint/pkg/catalog"
	"github.com/dukex/blueprint/pkg/models"
	"github.com/xeipuuv/gojsonschema"
)

// rootField is the field gojsonschema reports for document-level errors.
const rootField = "(root)"

// checkParameters validates node parameters against the catalog entry's JSON
// schema, when the entry has one.
func checkParameters(prefix string, node *models.Node, entry catalog.Entry, result *models.ValidationResult) {
	if entry.Parameters == nil {
		return
	}

	schemaLoader := gojsonschema.NewGoLoader(entry.Parameters)
	dataLoader := gojsonschema.NewGoLoader(node.Parameters)

	res, err := gojsonschema.Validate(schemaLoader, dataLoader)
	if err != nil {
		result.AddWarning(models.Issue{
			Kind:    models.IssueParameters,
			Path:    prefix + ".parameters",
			Message: fmt.Sprintf("parameters of %q could not be checked: %v", entry.CanonicalName, err),
			NodeID:  node.ID,
		})

		return
	}

	if res.Valid() {
		return
	}

	issues := make([]models.Issue, 0, len(res.Errors()))

	for _, desc := range res.Errors() {
		path := prefix + ".parameters"
		if field := desc.Field(); field != "" && field != rootField {
			path += "." + field
		}

		issues = append(issues, models.Issue{
			Kind:    models.IssueParameters,
			Path:    path,
			Message: fmt.Sprintf("%s: %s", entry.CanonicalName, desc.Description()),
			NodeID:  node.ID,
		})
	}

	slices.SortFunc(issues, func(a, b models.Issue) int {
		if c := strings.Compare(a.Path, b.Path); c != 0 {
			return c
		}

		return strings.Compare(a.Message, b.Message)
	})

	for _, issue := range issues {
		result.AddError(issue)
	}
}

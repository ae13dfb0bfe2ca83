package convert

import (
	"embed"
	"fmt"
	"strings"

	"github.com/dukex/blueprint/pkg/platform"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// maxReportedViolations caps the schema violations quoted in an error.
const maxReportedViolations = 3

// documentSchema is a compiled native document schema.
type documentSchema struct {
	platform platform.Platform
	schema   *gojsonschema.Schema
}

func mustLoadSchema(p platform.Platform) *documentSchema {
	data, err := schemaFS.ReadFile("schemas/" + p.String() + ".json")
	if err != nil {
		panic(fmt.Sprintf("convert: missing %s document schema: %v", p, err))
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
	if err != nil {
		panic(fmt.Sprintf("convert: invalid %s document schema: %v", p, err))
	}

	return &documentSchema{platform: p, schema: schema}
}

// check validates data, wrapping every failure in ErrInvalidDocument.
func (s *documentSchema) check(data []byte) error {
	res, err := s.schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %s document is not valid JSON: %v", ErrInvalidDocument, s.platform, err)
	}

	if res.Valid() {
		return nil
	}

	violations := make([]string, 0, maxReportedViolations)

	for i, desc := range res.Errors() {
		if i == maxReportedViolations {
			violations = append(violations, fmt.Sprintf("and %d more", len(res.Errors())-i))

			break
		}

		violations = append(violations, desc.String())
	}

	return fmt.Errorf("%w: %s document: %s", ErrInvalidDocument, s.platform, strings.Join(violations, "; "))
}

package models

// IssueKind classifies validation errors and warnings.
type IssueKind string

const (
	IssueStructure   IssueKind = "structure"
	IssueModuleName  IssueKind = "module_name"
	IssueParameters  IssueKind = "parameters"
	IssueConnections IssueKind = "connections"
	IssueMetadata    IssueKind = "metadata"
)

// Issue is a single validation finding. Errors with a mechanical repair carry
// a SuggestedFix.
type Issue struct {
	Kind         IssueKind `json:"kind"`
	Path         string    `json:"path"`
	Message      string    `json:"message"`
	NodeID       NodeID    `json:"nodeId,omitzero"`
	SuggestedFix string    `json:"suggestedFix,omitempty"`
}

// ValidationResult is the report produced by the validator.
type ValidationResult struct {
	IsValid  bool    `json:"isValid"`
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings"`
	Fixes    []Fix   `json:"fixes,omitempty"`
}

// NewValidationResult returns an empty, valid result.
func NewValidationResult() *ValidationResult {
	return &ValidationResult{
		IsValid:  true,
		Errors:   []Issue{},
		Warnings: []Issue{},
	}
}

func (r *ValidationResult) AddError(issue Issue) {
	r.Errors = append(r.Errors, issue)
	r.IsValid = false
}

func (r *ValidationResult) AddWarning(issue Issue) {
	r.Warnings = append(r.Warnings, issue)
}

// ErrorsOfKind returns the errors of the given kind, in report order.
func (r *ValidationResult) ErrorsOfKind(kind IssueKind) []Issue {
	var out []Issue

	for _, e := range r.Errors {
		if e.Kind == kind {
			out = append(out, e)
		}
	}

	return out
}

// FixKind classifies auto-fix records.
type FixKind string

const (
	FixModuleName       FixKind = "module_name"
	FixSettings         FixKind = "settings"
	FixIDSequence       FixKind = "id_sequence"
	FixConnections      FixKind = "connections"
	FixDesignerPosition FixKind = "designer_position"
	FixStructure        FixKind = "structure"
)

// Fix is the audit record of one deterministic repair.
type Fix struct {
	Kind        FixKind `json:"kind"`
	Description string  `json:"description"`
	OldValue    any     `json:"oldValue"`
	NewValue    any     `json:"newValue"`
	Applied     bool    `json:"applied"`
}

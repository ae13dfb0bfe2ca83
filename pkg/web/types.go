// Package web provides HTTP request and response types for the blueprint API.
package web

import (
	"encoding/json"

	"github.com/dukex/blueprint/pkg/catalog"
)

// ConvertRequest represents the request body for converting a document between platforms.
type ConvertRequest struct {
	From     string          `json:"from"     validate:"required,oneof=make n8n zapier"`
	To       string          `json:"to"       validate:"required,oneof=make n8n zapier"`
	Document json.RawMessage `json:"document" validate:"required"`
}

// ModuleResponse represents one catalog entry. The parameter schema is only
// reported as present or absent.
type ModuleResponse struct {
	Name               string   `json:"name"`
	Category           string   `json:"category"`
	Description        string   `json:"description,omitempty"`
	Kind               string   `json:"kind"`
	Trigger            bool     `json:"trigger"`
	Version            int      `json:"version"`
	Aliases            []string `json:"aliases,omitempty"`
	HasParameterSchema bool     `json:"has_parameter_schema"`
}

// ModuleListResponse represents the result of a module search.
type ModuleListResponse struct {
	Platform string           `json:"platform"`
	Modules  []ModuleResponse `json:"modules"`
	Count    int              `json:"count"`
}

// TransformModuleResponse transforms a catalog Entry into a ModuleResponse.
func TransformModuleResponse(entry catalog.Entry) ModuleResponse {
	return ModuleResponse{
		Name:               entry.CanonicalName,
		Category:           entry.Category,
		Description:        entry.Description,
		Kind:               entry.Kind,
		Trigger:            entry.Trigger,
		Version:            entry.DefaultVersion(),
		Aliases:            entry.KnownAliases,
		HasParameterSchema: len(entry.Parameters) > 0,
	}
}

package web_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/dukex/blueprint/pkg/catalog"
	"github.com/dukex/blueprint/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertRequest_Validation(t *testing.T) {
	t.Parallel()

	v := validator.New(validator.WithRequiredStructEnabled())

	tests := []struct {
		name      string
		request   web.ConvertRequest
		wantErr   bool
		errFields []string
	}{
		{
			name:    "valid request",
			request: web.ConvertRequest{From: "make", To: "n8n", Document: json.RawMessage(`{}`)},
		},
		{
			name:      "missing from",
			request:   web.ConvertRequest{To: "n8n", Document: json.RawMessage(`{}`)},
			wantErr:   true,
			errFields: []string{"From"},
		},
		{
			name:      "unsupported target",
			request:   web.ConvertRequest{From: "make", To: "ifttt", Document: json.RawMessage(`{}`)},
			wantErr:   true,
			errFields: []string{"To"},
		},
		{
			name:      "missing document and platforms",
			request:   web.ConvertRequest{},
			wantErr:   true,
			errFields: []string{"From", "To", "Document"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := v.Struct(tt.request)
			if !tt.wantErr {
				assert.NoError(t, err)

				return
			}

			var validationErrors validator.ValidationErrors
			require.True(t, errors.As(err, &validationErrors))

			fields := make([]string, 0, len(validationErrors))
			for _, fe := range validationErrors {
				fields = append(fields, fe.Field())
			}

			assert.ElementsMatch(t, tt.errFields, fields)
		})
	}
}

func TestTransformModuleResponse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		entry    catalog.Entry
		expected web.ModuleResponse
	}{
		{
			name: "trigger with aliases and no schema",
			entry: catalog.Entry{
				CanonicalName: "gateway:CustomWebHook",
				Category:      "triggers",
				Kind:          "trigger.webhook",
				Trigger:       true,
				Version:       1,
				KnownAliases:  []string{"webhook"},
			},
			expected: web.ModuleResponse{
				Name:     "gateway:CustomWebHook",
				Category: "triggers",
				Kind:     "trigger.webhook",
				Trigger:  true,
				Version:  1,
				Aliases:  []string{"webhook"},
			},
		},
		{
			name: "unversioned action with parameter schema",
			entry: catalog.Entry{
				CanonicalName: "http:ActionSendData",
				Category:      "http",
				Description:   "Make a request",
				Kind:          "action.http",
				Parameters:    map[string]any{"type": "object"},
			},
			expected: web.ModuleResponse{
				Name:               "http:ActionSendData",
				Category:           "http",
				Description:        "Make a request",
				Kind:               "action.http",
				Version:            1,
				HasParameterSchema: true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, web.TransformModuleResponse(tt.entry))
		})
	}
}

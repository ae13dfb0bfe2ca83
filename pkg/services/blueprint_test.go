package services_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/dukex/blueprint/pkg/catalog"
	"github.com/dukex/blueprint/pkg/convert"
	"github.com/dukex/blueprint/pkg/log"
	"github.com/dukex/blueprint/pkg/models"
	"github.com/dukex/blueprint/pkg/platform"
	"github.com/dukex/blueprint/pkg/sanitize"
	"github.com/dukex/blueprint/pkg/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

var catalogs = catalog.MustLoadEmbedded()

const brokenOrderSync = `{"name":"Order sync","description":"Sync new orders","nodes":[{"id":3,"moduleName":"webhook"},{"id":3,"moduleName":"sheets"},{"moduleName":"Slack:CreateMessage"}],"connections":[{"from":3,"to":3}]}`

const n8nOrderSync = `{
	"name": "Order sync",
	"nodes": [
		{"id": "a1", "name": "New order", "type": "n8n-nodes-base.webhook", "typeVersion": 2, "position": [0, 0], "parameters": {"path": "orders"}},
		{"id": "a2", "name": "Notify", "type": "n8n-nodes-base.slack", "typeVersion": 2, "position": [220, 0], "parameters": {"channel": "#orders"},
		 "credentials": {"slackApi": {"id": "7", "name": "Ops Slack"}}}
	],
	"connections": {"New order": {"main": [[{"node": "Notify", "type": "main", "index": 0}]]}}
}`

func newService(t *testing.T, opts ...services.Option) *services.Blueprint {
	t.Helper()

	return services.NewBlueprint(catalogs, opts...)
}

func TestBlueprint_Validate(t *testing.T) {
	t.Parallel()

	svc := newService(t)

	result, err := svc.Validate(t.Context(), "make", []byte(brokenOrderSync))
	require.NoError(t, err)
	assert.False(t, result.IsValid)
	assert.NotEmpty(t, result.ErrorsOfKind(models.IssueStructure))

	result, err = svc.Validate(t.Context(), "MAKE", []byte(`not json`))
	require.NoError(t, err, "broken documents are reported, not returned as errors")
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0].Message, "not valid JSON")

	_, err = svc.Validate(t.Context(), "ifttt", []byte(`{}`))
	require.Error(t, err)
	assert.True(t, services.IsNotFoundError(err))
	assert.ErrorIs(t, err, platform.ErrUnknownPlatform)

	var serviceErr *services.ServiceError
	require.ErrorAs(t, err, &serviceErr)
	assert.Equal(t, "Validate", serviceErr.Op)
	assert.Equal(t, services.CodeUnknownPlatform, serviceErr.Code)
}

func TestBlueprint_AutoFix(t *testing.T) {
	t.Parallel()

	svc := newService(t)

	result, err := svc.AutoFix(t.Context(), "make", []byte(brokenOrderSync))
	require.NoError(t, err)

	require.Len(t, result.Definition.Nodes, 3)
	assert.Equal(t, models.IntID(1), result.Definition.Nodes[0].ID)
	assert.Equal(t, "gateway:CustomWebHook", result.Definition.Nodes[0].ModuleName)
	assert.NotEmpty(t, result.Fixes)
	assert.True(t, result.Validation.IsValid)

	original, err := models.ParseDefinition([]byte(brokenOrderSync))
	require.NoError(t, err)
	assert.Equal(t, models.IntID(3), original.Nodes[0].ID)

	tests := []struct {
		name     string
		platform string
		doc      string
		check    func(error) bool
		code     string
	}{
		{name: "empty body", platform: "make", doc: "", check: services.IsValidationError, code: services.CodeInvalidDocument},
		{name: "not an object", platform: "make", doc: `[1]`, check: services.IsValidationError, code: services.CodeInvalidDocument},
		{name: "unknown platform", platform: "tray", doc: `{}`, check: services.IsNotFoundError, code: services.CodeUnknownPlatform},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := svc.AutoFix(t.Context(), tt.platform, []byte(tt.doc))
			require.Error(t, err)
			assert.True(t, tt.check(err))

			var serviceErr *services.ServiceError
			require.ErrorAs(t, err, &serviceErr)
			assert.Equal(t, tt.code, serviceErr.Code)
		})
	}
}

func TestBlueprint_Convert(t *testing.T) {
	t.Parallel()

	svc := newService(t)

	result, err := svc.Convert(t.Context(), "n8n", "make", []byte(n8nOrderSync))
	require.NoError(t, err)

	assert.Equal(t, platform.N8n, result.From)
	assert.Equal(t, platform.Make, result.To)
	require.NotNil(t, result.Validation)
	assert.Empty(t, result.Validation.ErrorsOfKind(models.IssueStructure))

	def, err := models.ParseDefinition(result.Document)
	require.NoError(t, err)
	assert.Len(t, def.Nodes, 2)
	assert.Len(t, def.Connections, 1)

	_, err = svc.Convert(t.Context(), "n8n", "make", []byte(`{"nodes": "nope"}`))
	require.Error(t, err)
	assert.True(t, services.IsValidationError(err))
	assert.ErrorIs(t, err, convert.ErrInvalidDocument)

	_, err = svc.Convert(t.Context(), "n8n", "make", nil)
	assert.ErrorIs(t, err, services.ErrEmptyDocument)
	assert.EqualError(t, err, "Convert: request carries no document")

	_, err = svc.Convert(t.Context(), "n8n", "workato", []byte(n8nOrderSync))
	assert.True(t, services.IsNotFoundError(err))
}

func TestBlueprint_ConvertWithoutCatalog(t *testing.T) {
	t.Parallel()

	svc := services.NewBlueprint(catalog.Set{platform.Make: catalogs[platform.Make]})

	_, err := svc.Convert(t.Context(), "make", "zapier", []byte(`{"nodes": [], "connections": []}`))
	require.Error(t, err)
	assert.True(t, services.IsNotFoundError(err))

	var serviceErr *services.ServiceError
	require.ErrorAs(t, err, &serviceErr)
	assert.Equal(t, services.CodeUnsupportedPlatform, serviceErr.Code)

	assert.Equal(t, []platform.Platform{platform.Make}, svc.Platforms())

	message, ok := svc.HealthCheck(t.Context())
	assert.False(t, ok)
	assert.Equal(t, "missing platforms: n8n, zapier", message)
}

func TestBlueprint_Sanitize(t *testing.T) {
	t.Parallel()

	svc := newService(t, services.WithSanitizer(sanitize.New(sanitize.WithTokenGenerator(func() string { return "x" }))))

	out, err := svc.Sanitize(t.Context(), []byte(n8nOrderSync))
	require.NoError(t, err)
	assert.Contains(t, string(out), sanitize.CredentialSentinel)
	assert.NotContains(t, string(out), "Ops Slack")

	_, err = svc.Sanitize(t.Context(), []byte(`{`))
	require.Error(t, err)
	assert.True(t, services.IsValidationError(err))

	_, err = svc.Sanitize(t.Context(), nil)
	assert.ErrorIs(t, err, services.ErrEmptyDocument)
}

func TestBlueprint_Import(t *testing.T) {
	t.Parallel()

	svc := newService(t)

	def, err := svc.Import(t.Context(), "n8n", []byte(n8nOrderSync))
	require.NoError(t, err)

	assert.Equal(t, "n8n", def.Platform)
	require.Len(t, def.Nodes, 2)
	assert.Equal(t, "n8n-nodes-base.webhook", def.Nodes[0].ModuleName)
	require.Len(t, def.Connections, 1)
	assert.Equal(t, def.Nodes[0].ID, def.Connections[0].From)
	assert.Equal(t, def.Nodes[1].ID, def.Connections[0].To)

	data, err := json.Marshal(def)
	require.NoError(t, err)

	report, err := svc.Validate(t.Context(), "n8n", data)
	require.NoError(t, err)
	assert.Empty(t, report.ErrorsOfKind(models.IssueModuleName))
	assert.Empty(t, report.ErrorsOfKind(models.IssueConnections))

	_, err = svc.Import(t.Context(), "zapier", []byte(`{"steps": [{"id": 0}]}`))
	assert.ErrorIs(t, err, services.ErrInvalidDocument)
}

func TestBlueprint_SearchModules(t *testing.T) {
	t.Parallel()

	svc := newService(t)
	cat := catalogs[platform.Make]

	all, err := svc.SearchModules(t.Context(), "make", "", "")
	require.NoError(t, err)
	assert.Len(t, all, cat.Len())

	categories, err := svc.Categories(t.Context(), "make")
	require.NoError(t, err)
	require.NotEmpty(t, categories)

	inCategory, err := svc.SearchModules(t.Context(), "make", "", categories[0])
	require.NoError(t, err)
	assert.Len(t, inCategory, len(cat.ByCategory(categories[0])))

	for _, e := range inCategory {
		assert.Equal(t, categories[0], e.Category)
	}

	none, err := svc.SearchModules(t.Context(), "make", "no-such-module-anywhere", "")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	_, err = svc.Categories(t.Context(), "nope")
	assert.True(t, services.IsNotFoundError(err))
}

func TestBlueprint_HealthCheck(t *testing.T) {
	t.Parallel()

	message, ok := newService(t).HealthCheck(t.Context())
	assert.True(t, ok)
	assert.Equal(t, "ok", message)
}

func TestBlueprint_TracesOperations(t *testing.T) {
	t.Parallel()

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	svc := newService(t, services.WithTracer(provider.Tracer("test")))

	_, err := svc.Validate(t.Context(), "make", []byte(brokenOrderSync))
	require.NoError(t, err)

	_, err = svc.Convert(t.Context(), "make", "oops", []byte(brokenOrderSync))
	require.Error(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "blueprint.validate", spans[0].Name())
	assert.Equal(t, "blueprint.convert", spans[1].Name())
	assert.Equal(t, "Error", spans[1].Status().Code.String())
}

func TestBlueprint_UsesRequestLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	svc := newService(t, services.WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))))
	ctx := log.WithLogger(context.Background(), slog.New(slog.NewTextHandler(&buf, nil)))

	_, err := svc.AutoFix(ctx, "make", []byte(brokenOrderSync))
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "Auto-fixed blueprint")
}

package web_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dukex/blueprint/pkg/catalog"
	"github.com/dukex/blueprint/pkg/convert"
	"github.com/dukex/blueprint/pkg/mocks"
	"github.com/dukex/blueprint/pkg/platform"
	"github.com/dukex/blueprint/pkg/sanitize"
	"github.com/dukex/blueprint/pkg/services"
	"github.com/dukex/blueprint/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var catalogs = catalog.MustLoadEmbedded()

const makeOrderSync = `{"name":"Order sync","description":"Sync new orders","nodes":[{"id":3,"moduleName":"webhook"},{"id":3,"moduleName":"sheets"},{"moduleName":"Slack:CreateMessage"}],"connections":[{"from":3,"to":3}]}`

const n8nOrderSync = `{
	"name": "Order sync",
	"nodes": [
		{"id": "a1", "name": "New order", "type": "n8n-nodes-base.webhook", "typeVersion": 2, "position": [0, 0], "parameters": {"path": "orders"}, "webhookId": "2f1d"},
		{"id": "a2", "name": "Notify", "type": "n8n-nodes-base.slack", "typeVersion": 2, "position": [220, 0], "parameters": {"channel": "#orders", "text": "mail ops@acme.io"},
		 "credentials": {"slackApi": {"id": "7", "name": "Ops Slack"}}}
	],
	"connections": {"New order": {"main": [[{"node": "Notify", "type": "main", "index": 0}]]}}
}`

func setupTestApp(t *testing.T, set catalog.Set) *fiber.App {
	t.Helper()

	blueprint := services.NewBlueprint(set,
		services.WithSanitizer(sanitize.New(sanitize.WithTokenGenerator(func() string { return "t" }))))
	handlers := web.NewAPIHandlers(blueprint, validator.New(validator.WithRequiredStructEnabled()))

	app := fiber.New()
	handlers.Register(app)

	return app
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, data
}

func decodeMap(t *testing.T, data []byte) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out), string(data))

	return out
}

func TestAPIHandlers_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		expectedStatus int
		expectedType   string
	}{
		{
			name:           "validate without body",
			method:         http.MethodPost,
			path:           "/platforms/make/validate",
			expectedStatus: http.StatusBadRequest,
			expectedType:   "validation_error",
		},
		{
			name:           "validate unknown platform",
			method:         http.MethodPost,
			path:           "/platforms/tray/validate",
			body:           `{}`,
			expectedStatus: http.StatusNotFound,
			expectedType:   services.CodeUnknownPlatform,
		},
		{
			name:           "autofix non object",
			method:         http.MethodPost,
			path:           "/platforms/make/autofix",
			body:           `[1, 2]`,
			expectedStatus: http.StatusBadRequest,
			expectedType:   services.CodeInvalidDocument,
		},
		{
			name:           "import schema violation",
			method:         http.MethodPost,
			path:           "/platforms/n8n/import",
			body:           `{"nodes": {}}`,
			expectedStatus: http.StatusBadRequest,
			expectedType:   services.CodeInvalidDocument,
		},
		{
			name:           "convert invalid JSON",
			method:         http.MethodPost,
			path:           "/convert",
			body:           `invalid-json`,
			expectedStatus: http.StatusBadRequest,
			expectedType:   "validation_error",
		},
		{
			name:           "convert unknown target",
			method:         http.MethodPost,
			path:           "/convert",
			body:           `{"from": "make", "to": "workato", "document": {}}`,
			expectedStatus: http.StatusBadRequest,
			expectedType:   "validation_error",
		},
		{
			name:           "convert missing document",
			method:         http.MethodPost,
			path:           "/convert",
			body:           `{"from": "make", "to": "n8n"}`,
			expectedStatus: http.StatusBadRequest,
			expectedType:   "validation_error",
		},
		{
			name:           "convert schema violation",
			method:         http.MethodPost,
			path:           "/convert",
			body:           `{"from": "zapier", "to": "n8n", "document": {"steps": "none"}}`,
			expectedStatus: http.StatusBadRequest,
			expectedType:   services.CodeInvalidDocument,
		},
		{
			name:           "sanitize broken JSON",
			method:         http.MethodPost,
			path:           "/sanitize",
			body:           `{"a":`,
			expectedStatus: http.StatusBadRequest,
			expectedType:   services.CodeInvalidDocument,
		},
		{
			name:           "modules of unknown platform",
			method:         http.MethodGet,
			path:           "/platforms/tray/modules",
			expectedStatus: http.StatusNotFound,
			expectedType:   services.CodeUnknownPlatform,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			app := setupTestApp(t, catalogs)

			status, body := do(t, app, tt.method, tt.path, tt.body)

			assert.Equal(t, tt.expectedStatus, status)

			problem := decodeMap(t, body)
			assert.Equal(t, tt.expectedType, problem["type"])
			assert.Equal(t, tt.path, problem["instance"])
			assert.NotEmpty(t, problem["detail"])
		})
	}
}

func TestAPIHandlers_Validate(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t, catalogs)

	status, body := do(t, app, http.MethodPost, "/platforms/make/validate", makeOrderSync)
	require.Equal(t, http.StatusOK, status)

	result := decodeMap(t, body)
	assert.Equal(t, false, result["isValid"])
	assert.NotEmpty(t, result["errors"])
}

func TestAPIHandlers_AutoFix(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t, catalogs)

	status, body := do(t, app, http.MethodPost, "/platforms/make/autofix", makeOrderSync)
	require.Equal(t, http.StatusOK, status)

	var result struct {
		Definition struct {
			Nodes []struct {
				ID         int    `json:"id"`
				ModuleName string `json:"moduleName"`
			} `json:"nodes"`
			Settings map[string]any `json:"settings"`
		} `json:"definition"`
		Fixes      []map[string]any `json:"fixes"`
		Validation struct {
			IsValid bool `json:"isValid"`
		} `json:"validation"`
	}
	require.NoError(t, json.Unmarshal(body, &result))

	require.Len(t, result.Definition.Nodes, 3)
	assert.Equal(t, 1, result.Definition.Nodes[0].ID)
	assert.Equal(t, 3, result.Definition.Nodes[2].ID)
	assert.Equal(t, "gateway:CustomWebHook", result.Definition.Nodes[0].ModuleName)
	assert.NotEmpty(t, result.Definition.Settings)
	assert.NotEmpty(t, result.Fixes)
	assert.True(t, result.Validation.IsValid)
}

func TestAPIHandlers_Convert(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t, catalogs)

	req, err := json.Marshal(web.ConvertRequest{From: "n8n", To: "zapier", Document: json.RawMessage(n8nOrderSync)})
	require.NoError(t, err)

	status, body := do(t, app, http.MethodPost, "/convert", string(req))
	require.Equal(t, http.StatusOK, status, string(body))

	var result struct {
		From          string           `json:"from"`
		To            string           `json:"to"`
		Document      map[string]any   `json:"document"`
		DegradedNodes []map[string]any `json:"degradedNodes"`
		Warnings      []string         `json:"warnings"`
	}
	require.NoError(t, json.Unmarshal(body, &result))

	assert.Equal(t, "n8n", result.From)
	assert.Equal(t, "zapier", result.To)
	assert.Len(t, result.Document["steps"], 2)
	assert.Len(t, result.Document["links"], 1)
	assert.NotNil(t, result.DegradedNodes)
	assert.NotNil(t, result.Warnings)
}

func TestAPIHandlers_Import(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t, catalogs)

	status, body := do(t, app, http.MethodPost, "/platforms/n8n/import", n8nOrderSync)
	require.Equal(t, http.StatusOK, status)

	def := decodeMap(t, body)
	assert.Equal(t, "n8n", def["platform"])
	assert.Len(t, def["nodes"], 2)
	assert.Len(t, def["connections"], 1)
}

func TestAPIHandlers_Sanitize(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t, catalogs)

	status, body := do(t, app, http.MethodPost, "/sanitize", n8nOrderSync)
	require.Equal(t, http.StatusOK, status)

	text := string(body)
	assert.Contains(t, text, `"USER_CREDENTIAL"`)
	assert.Contains(t, text, `"PLACEHOLDER_t"`)
	assert.Contains(t, text, "mail user@example.com")
	assert.NotContains(t, text, "ops@acme.io")
	assert.NotContains(t, text, "Ops Slack")
}

func TestAPIHandlers_SearchModules(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t, catalogs)

	status, body := do(t, app, http.MethodGet, "/platforms/make/modules", "")
	require.Equal(t, http.StatusOK, status)

	var all web.ModuleListResponse
	require.NoError(t, json.Unmarshal(body, &all))
	assert.Equal(t, "make", all.Platform)
	assert.Equal(t, catalogs[platform.Make].Len(), all.Count)
	assert.Len(t, all.Modules, all.Count)

	status, body = do(t, app, http.MethodGet, "/platforms/make/modules?q=CustomWebHook", "")
	require.Equal(t, http.StatusOK, status)

	var found web.ModuleListResponse
	require.NoError(t, json.Unmarshal(body, &found))
	require.NotEmpty(t, found.Modules)
	assert.Equal(t, "gateway:CustomWebHook", found.Modules[0].Name)
	assert.True(t, found.Modules[0].Trigger)

	status, body = do(t, app, http.MethodGet, "/platforms/make/modules?q=zzz-nothing", "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"platform": "make", "modules": [], "count": 0}`, string(body))
}

func TestAPIHandlers_Categories(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t, catalogs)

	status, body := do(t, app, http.MethodGet, "/platforms/zapier/categories", "")
	require.Equal(t, http.StatusOK, status)

	var result struct {
		Categories []string `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(body, &result))
	assert.Equal(t, catalogs[platform.Zapier].Categories(), result.Categories)
}

func TestAPIHandlers_Platforms(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t, catalogs)

	status, body := do(t, app, http.MethodGet, "/platforms", "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"platforms": ["make", "n8n", "zapier"]}`, string(body))
}

func TestAPIHandlers_HealthCheck(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		catalogs       catalog.Set
		expectedStatus int
		expectedState  string
	}{
		{
			name:           "every catalog loaded",
			catalogs:       catalogs,
			expectedStatus: http.StatusOK,
			expectedState:  "healthy",
		},
		{
			name:           "missing catalog",
			catalogs:       catalog.Set{platform.Make: catalogs[platform.Make]},
			expectedStatus: http.StatusInternalServerError,
			expectedState:  "unhealthy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			status, body := do(t, setupTestApp(t, tt.catalogs), http.MethodGet, "/health", "")

			assert.Equal(t, tt.expectedStatus, status)
			assert.Equal(t, tt.expectedState, decodeMap(t, body)["status"])
		})
	}
}

func TestAPIHandlers_InternalError(t *testing.T) {
	t.Parallel()

	codec := mocks.NewMockCodec(platform.N8n)
	codec.On("Decode", mock.Anything).Return(nil, errors.New("codec crashed"))

	registry := convert.NewRegistry()
	registry.Register(codec)

	blueprint := services.NewBlueprint(catalogs, services.WithRegistry(registry))
	handlers := web.NewAPIHandlers(blueprint, validator.New(validator.WithRequiredStructEnabled()))

	app := fiber.New()
	handlers.Register(app)

	status, body := do(t, app, http.MethodPost, "/platforms/n8n/import", n8nOrderSync)

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal_error", decodeMap(t, body)["type"])
	codec.AssertExpectations(t)
}

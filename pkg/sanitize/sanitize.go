// Package sanitize strips operator-identifying data from exported blueprints so
// they can be shared as templates.
package sanitize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/dukex/blueprint/pkg/models"
	"github.com/google/uuid"
	"github.com/mohae/deepcopy"
)

const (
	// CredentialSentinel replaces credential ids and make connection ids.
	CredentialSentinel = "USER_CREDENTIAL"
	// CredentialLabel replaces credential display names.
	CredentialLabel = "Configure after import"
	// PlaceholderPrefix starts every regenerated volatile id.
	PlaceholderPrefix = "PLACEHOLDER_"
	// EmailPlaceholder replaces every email address found in string values.
	EmailPlaceholder = "user@example.com"
)

const (
	credentialsKey    = "credentials"
	credentialIDKey   = "id"
	credentialNameKey = "name"
	makeConnectionKey = "__IMTCONN__"
)

var instanceKeys = map[string]bool{
	"instanceId":     true,
	"tenantId":       true,
	"teamId":         true,
	"organizationId": true,
	"orgId":          true,
}

var volatileKeys = map[string]bool{
	"webhookId":   true,
	"__IMTHOOK__": true,
	"hookId":      true,
}

var emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9\-]+(?:\.[A-Za-z0-9\-]+)*\.[A-Za-z]{2,}`)

// Option configures a Sanitizer.
type Option func(*Sanitizer)

// WithTokenGenerator replaces the random suffix of regenerated volatile ids.
func WithTokenGenerator(gen func() string) Option {
	return func(s *Sanitizer) {
		s.token = gen
	}
}

// Sanitizer rewrites blueprint trees. The input is never modified.
type Sanitizer struct {
	token func() string
}

func New(opts ...Option) *Sanitizer {
	s := &Sanitizer{
		token: uuid.NewString,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Sanitize returns a sanitized copy of a decoded JSON tree:
// instance and tenant ids are dropped, credential references point at
// CredentialSentinel, volatile ids become fresh placeholders and email
// addresses inside strings become EmailPlaceholder. Values that already carry
// a placeholder are kept, so sanitizing twice changes nothing.
func (s *Sanitizer) Sanitize(tree any) any {
	switch v := tree.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))

		for key, value := range v {
			switch {
			case instanceKeys[key]:
				continue
			case key == credentialsKey:
				out[key] = s.sanitizeCredentials(value)
			case key == makeConnectionKey:
				out[key] = CredentialSentinel
			case volatileKeys[key]:
				out[key] = s.placeholder(value)
			default:
				out[key] = s.Sanitize(value)
			}
		}

		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = s.Sanitize(item)
		}

		return out
	case string:
		return emailPattern.ReplaceAllLiteralString(v, EmailPlaceholder)
	default:
		return deepcopy.Copy(tree)
	}
}

// sanitizeCredentials handles both the map form ({"slackApi": {"id", "name"}})
// and the list form ([{"id", "name"}]) of credential references.
func (s *Sanitizer) sanitizeCredentials(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, ref := range v {
			out[key] = s.sanitizeCredential(ref)
		}

		return out
	case []any:
		out := make([]any, len(v))
		for i, ref := range v {
			out[i] = s.sanitizeCredential(ref)
		}

		return out
	default:
		return s.Sanitize(value)
	}
}

func (s *Sanitizer) sanitizeCredential(ref any) any {
	sanitized := s.Sanitize(ref)

	m, ok := sanitized.(map[string]any)
	if !ok {
		return sanitized
	}

	if _, ok := m[credentialIDKey]; ok {
		m[credentialIDKey] = CredentialSentinel
	}

	if _, ok := m[credentialNameKey]; ok {
		m[credentialNameKey] = CredentialLabel
	}

	return m
}

func (s *Sanitizer) placeholder(value any) any {
	if value == nil {
		return nil
	}

	if str, ok := value.(string); ok && strings.HasPrefix(str, PlaceholderPrefix) {
		return str
	}

	return PlaceholderPrefix + s.token()
}

// SanitizeJSON sanitizes a JSON document. Numbers keep their original text.
func (s *Sanitizer) SanitizeJSON(data []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}

	out, err := json.Marshal(s.Sanitize(tree))
	if err != nil {
		return nil, fmt.Errorf("failed to encode sanitized document: %w", err)
	}

	return out, nil
}

// SanitizeDefinition returns a sanitized copy of def.
func (s *Sanitizer) SanitizeDefinition(def *models.Definition) (*models.Definition, error) {
	data, err := json.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("failed to encode blueprint: %w", err)
	}

	clean, err := s.SanitizeJSON(data)
	if err != nil {
		return nil, err
	}

	return models.ParseDefinition(clean)
}
